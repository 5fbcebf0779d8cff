package domain

import "errors"

var (
	// ErrLocked is returned when an operation needs private key material
	// while the vault is locked.
	ErrLocked = errors.New("vault is locked")

	// ErrNotInitialized is returned when no key pair exists for the identity.
	ErrNotInitialized = errors.New("identity has no key pair")

	// ErrKeyUnavailable is returned when the active private key cannot be
	// produced (locked or uninitialized).
	ErrKeyUnavailable = errors.New("private key unavailable")

	// ErrRecipientKeyUnknown is returned when encrypting to a recipient whose
	// public key has not been resolved.
	ErrRecipientKeyUnknown = errors.New("recipient public key unknown")

	// ErrInvalidPassphrase is returned on unlock with a wrong passphrase.
	// Corrupt sealed material reports the same error on purpose.
	ErrInvalidPassphrase = errors.New("invalid passphrase")

	// ErrWeakPassphrase is returned when a passphrase fails the strength policy.
	ErrWeakPassphrase = errors.New("passphrase is too weak")

	// ErrUnlockThrottled is returned when unlock attempts arrive faster than
	// the brute-force policy allows. Callers should wait and retry.
	ErrUnlockThrottled = errors.New("too many unlock attempts")

	// ErrAlreadyLocked is returned by lock when no unlocked key exists.
	ErrAlreadyLocked = errors.New("vault is already locked")

	// ErrInvalidCode is returned when a recovery code fails to open a backup.
	ErrInvalidCode = errors.New("invalid recovery code")

	// ErrCorruptBackup is returned when a backup blob is structurally invalid.
	ErrCorruptBackup = errors.New("corrupt backup blob")

	// ErrDecryptionFailed is returned when AEAD decryption of an envelope
	// fails: wrong key epoch, corrupted payload, or no session material.
	// Retrying with the same inputs cannot succeed.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrReplaySuspected flags an envelope whose (sender, index) pair was
	// already seen. Warning-level: the plaintext may still be valid.
	ErrReplaySuspected = errors.New("message replay suspected")

	// ErrCryptoFailure wraps unexpected failures of the underlying primitives.
	ErrCryptoFailure = errors.New("cryptographic operation failed")

	// ErrNotFound is returned when a referenced public key is not known locally.
	ErrNotFound = errors.New("key pair not found")

	// ErrNoKeysAvailable is returned when a backup is requested on an empty
	// keyring.
	ErrNoKeysAvailable = errors.New("no key pairs to back up")

	// ErrInvalidKey is returned when key bytes have the wrong shape.
	ErrInvalidKey = errors.New("invalid public key")
)
