package e2ecore

import (
	"encoding/base64"

	"e2ecore/internal/domain"
)

// ContentKind tags the shape of one message's content. Exactly one
// construction path exists per kind; there is no conditional-field soup.
type ContentKind int

const (
	// KindPlaintext is a deliberate, explicitly chosen unencrypted send.
	KindPlaintext ContentKind = iota

	// KindEncrypted is an ordinary encrypted message.
	KindEncrypted

	// KindWithAttachment is an encrypted message whose envelope wraps a file
	// key; the attachment ciphertext lives in the caller's file store.
	KindWithAttachment

	// KindLegacyPlaintextFallback marks a historical record flagged as
	// encrypted but missing its sender key. A data-migration compatibility
	// state, not a cryptographic one: render the content as plaintext with a
	// warning, never feed it to Decrypt.
	KindLegacyPlaintextFallback
)

// AttachmentRef points at attachment ciphertext in the caller's file store.
type AttachmentRef struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// MessageContent is the tagged variant of one message. Build with
// PlaintextContent, EncryptedContent or AttachmentContent; the legacy kind
// only ever comes out of DecodeRecord.
type MessageContent struct {
	Kind       ContentKind
	Plaintext  string
	Envelope   Envelope
	Attachment *AttachmentRef
}

// PlaintextContent builds an explicitly unencrypted message.
func PlaintextContent(text string) MessageContent {
	return MessageContent{Kind: KindPlaintext, Plaintext: text}
}

// EncryptedContent builds an encrypted message from an envelope.
func EncryptedContent(env Envelope) MessageContent {
	return MessageContent{Kind: KindEncrypted, Envelope: env}
}

// AttachmentContent builds an attachment message: the envelope wraps the file
// key, ref locates the file ciphertext.
func AttachmentContent(env Envelope, ref AttachmentRef) MessageContent {
	return MessageContent{Kind: KindWithAttachment, Envelope: env, Attachment: &ref}
}

// MessageRecord is the wire form a message store keeps per message. Encrypted
// and plaintext records coexist in the same store, distinguished by the
// Encrypted flag.
type MessageRecord struct {
	Content         string         `json:"content"`
	Nonce           []byte         `json:"iv,omitempty"`
	SenderPublicKey *X25519Public  `json:"sender_public_key,omitempty"`
	MessageIndex    uint64         `json:"message_index,omitempty"`
	Encrypted       bool           `json:"encrypted"`
	Attachment      *AttachmentRef `json:"attachment,omitempty"`
}

// EncodeRecord flattens content into its storable record.
func EncodeRecord(c MessageContent) MessageRecord {
	switch c.Kind {
	case KindEncrypted, KindWithAttachment:
		sender := c.Envelope.SenderPublicKey
		return MessageRecord{
			Content:         base64.StdEncoding.EncodeToString(c.Envelope.Ciphertext),
			Nonce:           c.Envelope.Nonce,
			SenderPublicKey: &sender,
			MessageIndex:    c.Envelope.MessageIndex,
			Encrypted:       true,
			Attachment:      c.Attachment,
		}
	default:
		return MessageRecord{Content: c.Plaintext}
	}
}

// DecodeRecord rebuilds the tagged content from a stored record.
//
// A record flagged encrypted but carrying no sender key cannot belong to any
// key epoch; it decodes to KindLegacyPlaintextFallback instead of failing, so
// old migrated conversations keep rendering.
func DecodeRecord(r MessageRecord) MessageContent {
	if !r.Encrypted {
		return PlaintextContent(r.Content)
	}
	if r.SenderPublicKey == nil || r.SenderPublicKey.IsZero() {
		return MessageContent{Kind: KindLegacyPlaintextFallback, Plaintext: r.Content}
	}

	ct, err := base64.StdEncoding.DecodeString(r.Content)
	if err != nil {
		// Undecodable ciphertext still decodes structurally; Decrypt will
		// report ErrDecryptionFailed on the empty payload.
		ct = nil
	}
	env := domain.Envelope{
		Ciphertext:      ct,
		Nonce:           r.Nonce,
		SenderPublicKey: *r.SenderPublicKey,
		MessageIndex:    r.MessageIndex,
	}
	if r.Attachment != nil {
		return MessageContent{Kind: KindWithAttachment, Envelope: env, Attachment: r.Attachment}
	}
	return EncryptedContent(env)
}
