// Package vault protects private key material at rest behind a user-chosen
// passphrase. The passphrase is never persisted; only an Argon2id salt and
// parameters are stored next to the sealed blobs.
package vault

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"e2ecore/internal/crypto"
	"e2ecore/internal/domain"
	"e2ecore/internal/keystore"
)

const (
	// minPassphraseLength is the floor of the strength policy.
	minPassphraseLength = 12

	// sealInfo is the associated data bound into every sealed private half.
	sealInfo = "e2ecore/vault/v1"
)

// Vault drives lock/unlock over a keystore. While unlocked it retains the
// derived key-encryption key in memory so newly created pairs (rotation,
// restore) can be sealed for persistence without re-asking the passphrase.
type Vault struct {
	ks     *keystore.Store
	logger *slog.Logger
	params crypto.KDFParams

	mu      sync.Mutex // guards kek only; never held across keystore calls
	kek     []byte     // nil while locked or before the first lock
	limiter *rate.Limiter
}

// New returns a vault over ks. Unlock attempts are throttled to deter brute
// force: a small burst, then one attempt every few seconds.
func New(ks *keystore.Store, params crypto.KDFParams, logger *slog.Logger) *Vault {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Vault{
		ks:      ks,
		logger:  logger,
		params:  params,
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 5),
	}
	ks.SetSealer(v)
	return v
}

// IsLocked reports whether private key material is currently sealed.
func (v *Vault) IsLocked() bool { return v.ks.Locked() }

// Lock derives a key from passphrase, seals every unlocked private half and
// wipes the plaintext copies. Fails with ErrAlreadyLocked when nothing is
// unlocked and ErrWeakPassphrase when the passphrase fails policy.
func (v *Vault) Lock(passphrase string) error {
	if !SecurePassphrase(passphrase) {
		return domain.ErrWeakPassphrase
	}

	salt, err := crypto.RandomSalt()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	kek := crypto.DeriveKEK(passphrase, salt, v.params)

	header := domain.VaultHeader{
		Set:      true,
		Salt:     salt,
		Time:     v.params.Time,
		MemoryKB: v.params.MemoryKB,
		Threads:  v.params.Threads,
	}
	err = v.ks.SealAll(header, func(priv []byte) ([]byte, error) {
		return sealPrivate(kek, priv)
	})
	if err != nil {
		crypto.Wipe(kek)
		return err
	}

	// Forget the session key: locked means no component can reach plaintext
	// private material until a successful unlock.
	v.swapKEK(nil)
	crypto.Wipe(kek)
	v.logger.Debug("vault locked")
	return nil
}

// Unlock re-derives the key from the stored salt and parameters and restores
// private key material for this session only. A wrong passphrase and a
// corrupt blob report the same ErrInvalidPassphrase.
func (v *Vault) Unlock(passphrase string) error {
	if !v.ks.Locked() {
		return nil
	}
	if !v.limiter.Allow() {
		return domain.ErrUnlockThrottled
	}

	header, err := v.ks.VaultHeader()
	if err != nil {
		return err
	}
	if !header.Set {
		return domain.ErrNotInitialized
	}
	params := crypto.KDFParams{Time: header.Time, MemoryKB: header.MemoryKB, Threads: header.Threads}
	kek := crypto.DeriveKEK(passphrase, header.Salt, params)

	err = v.ks.UnsealAll(func(sealed []byte) ([]byte, error) {
		return openPrivate(kek, sealed)
	})
	if err != nil {
		crypto.Wipe(kek)
		v.logger.Warn("vault unlock failed")
		return domain.ErrInvalidPassphrase
	}

	v.swapKEK(kek)
	v.logger.Debug("vault unlocked")
	return nil
}

// swapKEK replaces the in-memory session key, wiping the previous one.
func (v *Vault) swapKEK(kek []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.kek != nil {
		crypto.Wipe(v.kek)
	}
	v.kek = kek
}

// SealPrivate implements keystore.Sealer using the in-memory session key.
func (v *Vault) SealPrivate(priv []byte) ([]byte, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.kek == nil {
		return nil, false, nil
	}
	sealed, err := sealPrivate(v.kek, priv)
	if err != nil {
		return nil, false, err
	}
	return sealed, true, nil
}

// sealPrivate produces nonce||ciphertext under the vault key.
func sealPrivate(kek, priv []byte) ([]byte, error) {
	nonce, ct, err := crypto.Seal(kek, priv, []byte(sealInfo))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	return append(nonce, ct...), nil
}

func openPrivate(kek, sealed []byte) ([]byte, error) {
	if len(sealed) <= crypto.NonceBytes {
		return nil, domain.ErrInvalidPassphrase
	}
	return crypto.Open(kek, sealed[:crypto.NonceBytes], sealed[crypto.NonceBytes:], []byte(sealInfo))
}

// SecurePassphrase enforces the minimum-entropy policy: at least 12
// characters drawn from at least two character classes. Multi-word
// passphrases with spaces qualify. Recovery codes are held to the same
// policy.
func SecurePassphrase(passphrase string) bool {
	if len(passphrase) < minPassphraseLength {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			hasSymbol = true
		}
	}
	classes := 0
	for _, ok := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
		if ok {
			classes++
		}
	}
	return classes >= 2
}
