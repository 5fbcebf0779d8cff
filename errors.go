package e2ecore

import "e2ecore/internal/domain"

// Sentinel errors of the core. Compare with errors.Is; most are wrapped with
// operation context on the way out.
var (
	// ErrLocked means the operation needs private key material while the
	// vault is locked. Unlock first.
	ErrLocked = domain.ErrLocked

	// ErrNotInitialized means no key pair exists yet for this identity.
	ErrNotInitialized = domain.ErrNotInitialized

	// ErrKeyUnavailable means the active private key cannot be produced,
	// because the keystore is locked or uninitialized.
	ErrKeyUnavailable = domain.ErrKeyUnavailable

	// ErrRecipientKeyUnknown means the recipient's public key could not be
	// resolved. Recoverable: retry after the recipient completes setup.
	ErrRecipientKeyUnknown = domain.ErrRecipientKeyUnknown

	// ErrInvalidPassphrase is returned on unlock with a wrong passphrase.
	ErrInvalidPassphrase = domain.ErrInvalidPassphrase

	// ErrWeakPassphrase means a passphrase or recovery code failed the
	// strength policy.
	ErrWeakPassphrase = domain.ErrWeakPassphrase

	// ErrUnlockThrottled means unlock attempts arrived faster than the
	// brute-force policy allows. Wait and retry.
	ErrUnlockThrottled = domain.ErrUnlockThrottled

	// ErrAlreadyLocked is returned by Lock when nothing is unlocked.
	ErrAlreadyLocked = domain.ErrAlreadyLocked

	// ErrInvalidCode means a recovery code failed to open a backup blob.
	ErrInvalidCode = domain.ErrInvalidCode

	// ErrCorruptBackup means a backup blob is structurally damaged. Retyping
	// the code will not help.
	ErrCorruptBackup = domain.ErrCorruptBackup

	// ErrDecryptionFailed is terminal for the affected message: retrying the
	// same inputs cannot succeed. Render an "unable to decrypt" state.
	ErrDecryptionFailed = domain.ErrDecryptionFailed

	// ErrReplaySuspected flags an envelope whose (sender, index) pair was
	// already seen. Only returned as an error under WithStrictReplay;
	// otherwise surfaced as DecryptResult.Replayed.
	ErrReplaySuspected = domain.ErrReplaySuspected

	// ErrCryptoFailure wraps unexpected failures of the underlying
	// primitives.
	ErrCryptoFailure = domain.ErrCryptoFailure

	// ErrNotFound means a referenced key pair is not known locally.
	ErrNotFound = domain.ErrNotFound

	// ErrNoKeysAvailable is returned when backing up an empty keyring.
	ErrNoKeysAvailable = domain.ErrNoKeysAvailable

	// ErrInvalidKey means key bytes have the wrong shape.
	ErrInvalidKey = domain.ErrInvalidKey
)
