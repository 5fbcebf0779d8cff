package domain

import "time"

// DefaultDeviceLabel is assigned to the key pair created on first initialization.
const DefaultDeviceLabel = "This device"

// KeyPair is one device key pair of the local identity.
//
// Private is populated only while the vault is unlocked; at rest the private
// half lives in Sealed. Rotation retains prior pairs so messages encrypted
// under them stay decryptable.
type KeyPair struct {
	Public  X25519Public
	Private X25519Private // zero while locked
	Sealed  []byte        // sealed private half, empty before the first lock

	DeviceLabel string
	CreatedAt   time.Time
	Locked      bool
	Active      bool
}

// HasPrivate reports whether the plaintext private half is in memory.
func (p *KeyPair) HasPrivate() bool { return !p.Private.IsZero() }

// DeviceInfo is the public metadata of one key pair, for device-management UI.
type DeviceInfo struct {
	PublicKey   X25519Public `json:"public_key"`
	DeviceLabel string       `json:"device_label"`
	CreatedAt   time.Time    `json:"created_at"`
	Locked      bool         `json:"locked"`
	Active      bool         `json:"active"`
}

// VaultHeader carries the KDF parameters and salt of the vault passphrase.
// Persisted next to the sealed key material; the passphrase itself never is.
type VaultHeader struct {
	Set      bool   `json:"set"`
	Salt     []byte `json:"salt,omitempty"`
	Time     uint32 `json:"kdf_time,omitempty"`
	MemoryKB uint32 `json:"kdf_memory_kb,omitempty"`
	Threads  uint8  `json:"kdf_threads,omitempty"`
}

// Keyring is the full persisted key state of one identity.
type Keyring struct {
	Identity IdentityID
	Pairs    []KeyPair
	Vault    VaultHeader
}

// Active returns the active pair, or nil when uninitialized.
func (k *Keyring) ActivePair() *KeyPair {
	for i := range k.Pairs {
		if k.Pairs[i].Active {
			return &k.Pairs[i]
		}
	}
	return nil
}

// FindPair returns the pair with the given public key, or nil.
func (k *Keyring) FindPair(pub X25519Public) *KeyPair {
	for i := range k.Pairs {
		if k.Pairs[i].Public == pub {
			return &k.Pairs[i]
		}
	}
	return nil
}
