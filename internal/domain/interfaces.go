package domain

import "context"

// KeyringStore persists the keyring of one identity. Implementations must
// never write plaintext private key material; the keystore hands them pairs
// whose private halves are already sealed or deliberately exported.
type KeyringStore interface {
	SaveKeyring(ring Keyring) error
	LoadKeyring(identity IdentityID) (Keyring, bool, error)
}

// SessionStore persists per-conversation session state so send indices and
// replay bookkeeping survive restarts.
type SessionStore interface {
	SaveSession(state SessionState) error
	LoadSession(peer IdentityID) (SessionState, bool, error)
}

// Directory resolves the current public key of a remote identity. It is
// implemented outside this core (a profile record with a public_key field).
//
// Resolve returns (nil, nil) when the counterpart has not set up encryption
// yet; callers treat that as "cannot encrypt to this recipient", not an error.
type Directory interface {
	Resolve(ctx context.Context, identity IdentityID) (*X25519Public, error)
}
