package e2ecore

import (
	"e2ecore/internal/crypto"
	"e2ecore/internal/domain"
)

// Aliases for the core's data types, so embedders never import internal
// packages directly.
type (
	// IdentityID names one messaging identity (an admin account).
	IdentityID = domain.IdentityID

	// X25519Public is a Curve25519 public key, the stable identifier of one
	// device key pair.
	X25519Public = domain.X25519Public

	// Envelope carries one encrypted message: ciphertext, nonce, the sender
	// key that produced it, and the conversation index.
	Envelope = domain.Envelope

	// DecryptResult is one decrypted plaintext plus the replay verdict.
	DecryptResult = domain.DecryptResult

	// BatchItem is the per-envelope outcome of DecryptBatch.
	BatchItem = domain.BatchItem

	// DeviceInfo is the public metadata of one key pair, for device UI.
	DeviceInfo = domain.DeviceInfo

	// Fingerprint is the display-safe digest of a public key.
	Fingerprint = domain.Fingerprint

	// VerificationPayload is the QR payload for out-of-band verification.
	VerificationPayload = domain.VerificationPayload

	// Backup is a recovery code plus the sealed export of all key pairs.
	Backup = domain.Backup

	// FileKey is the one-time symmetric key of a single attachment.
	FileKey = domain.FileKey

	// EncryptedFile is the output of attachment encryption.
	EncryptedFile = domain.EncryptedFile

	// SessionState is the persistable per-conversation crypto state.
	SessionState = domain.SessionState

	// Directory resolves remote identities to their published public keys.
	// Implemented by the embedding application or NewHTTPDirectory.
	Directory = domain.Directory

	// KeyringStore persists one identity's keyring.
	KeyringStore = domain.KeyringStore

	// SessionStore persists per-conversation session state.
	SessionStore = domain.SessionStore

	// KDFParams tunes the Argon2id cost for vault and backup sealing.
	KDFParams = crypto.KDFParams
)

// ParsePublicKey decodes the base58 display form of a public key.
func ParsePublicKey(s string) (X25519Public, error) {
	return domain.ParsePublicKey(s)
}

// ComputeFingerprint derives the display digest of any public key. Pure and
// stable: the same key always yields the same fingerprint.
func ComputeFingerprint(pub X25519Public) Fingerprint {
	return crypto.ComputeFingerprint(pub)
}

// DefaultKDFParams returns the interactive-use Argon2id parameters.
func DefaultKDFParams() KDFParams {
	return crypto.DefaultKDFParams()
}
