package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"e2ecore/internal/domain"
)

// sessionInfo is the HKDF domain-separation label for message keys.
const sessionInfo = "e2ecore/session/v1"

// KDFParams are the Argon2id tunables persisted next to sealed material.
// Defaults target interactive use (a few hundred milliseconds).
type KDFParams struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

// DefaultKDFParams returns the interactive-use Argon2id parameters.
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: 2, MemoryKB: 64 * 1024, Threads: 1}
}

// DeriveKEK derives a key-encryption key from a passphrase and salt using
// Argon2id. Deliberately slow; bounded by the fixed params so callers can set
// realistic timeouts.
func DeriveKEK(passphrase string, salt []byte, p KDFParams) []byte {
	return argon2.IDKey([]byte(passphrase), salt, p.Time, p.MemoryKB, p.Threads, KeyBytes)
}

// DeriveSessionKey turns a raw X25519 shared secret into the per-conversation
// AEAD key. Both sides derive the same key from their own (priv, peer pub)
// pair.
func DeriveSessionKey(shared [32]byte) ([]byte, error) {
	r := hkdf.New(sha256.New, shared[:], nil, []byte(sessionInfo))
	key := make([]byte, KeyBytes)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// SharedKey computes the session AEAD key for (our private, their public).
func SharedKey(priv domain.X25519Private, pub domain.X25519Public) ([]byte, error) {
	shared, err := DH(priv, pub)
	if err != nil {
		return nil, err
	}
	key, err := DeriveSessionKey(shared)
	Wipe(shared[:])
	return key, err
}
