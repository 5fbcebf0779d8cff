package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"e2ecore/internal/domain"
)

const (
	keyringFile = "keyring.json"

	keyringFormatVersion = 1
)

// keyPairRecord is the on-disk shape of one key pair. Exactly one of Sealed
// and Plain is set: Plain exists only before the first vault lock.
type keyPairRecord struct {
	Public      domain.X25519Public `json:"public_key"`
	Sealed      []byte              `json:"sealed_private,omitempty"`
	Plain       []byte              `json:"plain_private,omitempty"`
	DeviceLabel string              `json:"device_label"`
	CreatedAt   time.Time           `json:"created_at"`
	Active      bool                `json:"active"`
}

type keyringRecord struct {
	Version  int                `json:"v"`
	Identity domain.IdentityID  `json:"identity"`
	Vault    domain.VaultHeader `json:"vault"`
	Pairs    []keyPairRecord    `json:"pairs"`
}

// FileKeyringStore persists one identity's keyring in a home directory.
type FileKeyringStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileKeyringStore returns a store rooted at dir.
func NewFileKeyringStore(dir string) *FileKeyringStore { return &FileKeyringStore{dir: dir} }

var _ domain.KeyringStore = (*FileKeyringStore)(nil)

// SaveKeyring writes the keyring. Once a vault passphrase is set, every pair
// must carry a sealed private half; writing plaintext then is refused.
func (s *FileKeyringStore) SaveKeyring(ring domain.Keyring) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := keyringRecord{
		Version:  keyringFormatVersion,
		Identity: ring.Identity,
		Vault:    ring.Vault,
		Pairs:    make([]keyPairRecord, 0, len(ring.Pairs)),
	}
	for i := range ring.Pairs {
		p := &ring.Pairs[i]
		kr := keyPairRecord{
			Public:      p.Public,
			DeviceLabel: p.DeviceLabel,
			CreatedAt:   p.CreatedAt,
			Active:      p.Active,
		}
		switch {
		case len(p.Sealed) > 0:
			kr.Sealed = append([]byte(nil), p.Sealed...)
		case ring.Vault.Set:
			return fmt.Errorf("key pair %s has no sealed private half", p.Public)
		case p.HasPrivate():
			kr.Plain = append([]byte(nil), p.Private.Slice()...)
		}
		rec.Pairs = append(rec.Pairs, kr)
	}
	return writeJSON(s.path(), rec, 0o600)
}

// LoadKeyring reads the keyring back. Pairs whose private half is still
// sealed come back locked with a zero Private.
func (s *FileKeyringStore) LoadKeyring(identity domain.IdentityID) (domain.Keyring, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec keyringRecord
	found, err := readJSON(s.path(), &rec)
	if err != nil || !found {
		return domain.Keyring{}, false, err
	}
	if rec.Version > keyringFormatVersion {
		return domain.Keyring{}, false, fmt.Errorf("unsupported keyring version %d", rec.Version)
	}
	if rec.Identity != identity {
		return domain.Keyring{}, false, nil
	}

	ring := domain.Keyring{Identity: rec.Identity, Vault: rec.Vault}
	for _, kr := range rec.Pairs {
		p := domain.KeyPair{
			Public:      kr.Public,
			Sealed:      append([]byte(nil), kr.Sealed...),
			DeviceLabel: kr.DeviceLabel,
			CreatedAt:   kr.CreatedAt,
			Active:      kr.Active,
		}
		if len(kr.Plain) == 32 {
			copy(p.Private[:], kr.Plain)
		}
		p.Locked = !p.HasPrivate()
		ring.Pairs = append(ring.Pairs, p)
	}
	return ring, true, nil
}

func (s *FileKeyringStore) path() string {
	return filepath.Join(s.dir, keyringFile)
}
