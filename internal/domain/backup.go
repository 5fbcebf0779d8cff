package domain

import "time"

// Backup is a point-in-time export of the full keyring.
//
// Code is shown to the user once and never stored by this core. Blob is an
// opaque string safe to persist as a plain file; it is useless without Code.
type Backup struct {
	Code      string    `json:"code"`
	Blob      string    `json:"backup"`
	CreatedAt time.Time `json:"created_at"`
}

// FileKey is the one-time symmetric key of a single attachment. It is never
// persisted unwrapped; transport happens inside an ordinary Envelope.
type FileKey struct {
	Key   [32]byte
	Nonce []byte
}

// EncryptedFile is the output of attachment encryption. The ciphertext is
// stored alongside (not inside) the wrapped key envelope.
type EncryptedFile struct {
	Ciphertext []byte
	Key        FileKey
}
