package domain

// Envelope is the output of one message encryption and the input to
// decryption. It travels through the message store as-is.
//
// (SenderPublicKey, MessageIndex) is unique per conversation; decrypt flags a
// previously seen pair as a likely replay. SenderPublicKey also lets the
// receiver pick the matching key epoch across rotations.
type Envelope struct {
	Ciphertext      []byte       `json:"content"`
	Nonce           []byte       `json:"iv"`
	SenderPublicKey X25519Public `json:"sender_public_key"`
	MessageIndex    uint64       `json:"message_index"`
}

// DecryptResult carries one decrypted plaintext plus the replay verdict.
type DecryptResult struct {
	Plaintext []byte
	// Replayed is set when the envelope's (sender, index) pair was already
	// seen or did not advance. Ordering glitches from concurrent devices are
	// expected, so this is a warning, not a failure.
	Replayed bool
}

// BatchItem is the per-envelope outcome of a batch decrypt. A failed item
// never aborts the rest of the batch.
type BatchItem struct {
	Envelope Envelope
	Result   DecryptResult
	Err      error
}
