package domain

import (
	"encoding/json"

	"github.com/mr-tron/base58"
)

// IdentityID names one messaging identity (an admin account).
type IdentityID string

// String returns the string form of the identity.
func (id IdentityID) String() string { return string(id) }

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// String returns the base58 display form of the key.
func (p X25519Public) String() string { return base58.Encode(p[:]) }

// IsZero reports whether the key is unset.
func (p X25519Public) IsZero() bool { return p == X25519Public{} }

// MarshalJSON encodes the key as a base58 string.
func (p X25519Public) MarshalJSON() ([]byte, error) {
	return json.Marshal(base58.Encode(p[:]))
}

// UnmarshalJSON decodes a base58 string into the key.
func (p *X25519Public) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return ErrInvalidKey
	}
	copy(p[:], raw)
	return nil
}

// ParsePublicKey decodes the base58 display form back into a key.
func ParsePublicKey(s string) (X25519Public, error) {
	var p X25519Public
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return p, ErrInvalidKey
	}
	copy(p[:], raw)
	return p, nil
}

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// IsZero reports whether the key is unset (wiped or still sealed).
func (k X25519Private) IsZero() bool { return k == X25519Private{} }

// Fingerprint is the display-safe digest of a public key.
type Fingerprint struct {
	Full  string `json:"full"`
	Short string `json:"short"`
}

// VerificationPayload is the QR payload exchanged for out-of-band identity
// verification. Matching the short fingerprint is a manual, UI-side step.
type VerificationPayload struct {
	PublicKey        X25519Public `json:"public_key"`
	ShortFingerprint string       `json:"short_fingerprint"`
}
