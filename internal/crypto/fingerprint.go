package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"e2ecore/internal/domain"
)

// shortFingerprintLen is the truncated form used for quick visual comparison.
const shortFingerprintLen = 12

// ComputeFingerprint returns the stable display digest of a public key.
//
// Full is the SHA-256 hex digest (64 chars); Short is its first 12 chars.
// Same full fingerprint implies same public key, which is the correctness
// guarantee behind out-of-band verification.
func ComputeFingerprint(pub domain.X25519Public) domain.Fingerprint {
	sum := sha256.Sum256(pub[:])
	full := hex.EncodeToString(sum[:])
	return domain.Fingerprint{Full: full, Short: full[:shortFingerprintLen]}
}
