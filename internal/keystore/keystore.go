// Package keystore owns the set of device key pairs of one local identity.
//
// The keystore is the single source of truth for private key material: while
// unlocked the plaintext halves live here and nowhere else, and locking wipes
// them in place. Construction is per identity; there is no global instance.
package keystore

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"e2ecore/internal/crypto"
	"e2ecore/internal/domain"
)

// Sealer seals private key material for persistence. The vault implements it
// once a passphrase-derived key is available in memory.
type Sealer interface {
	// SealPrivate returns the sealed form of priv, or ok=false when no vault
	// key exists yet (before the first lock).
	SealPrivate(priv []byte) (sealed []byte, ok bool, err error)
}

// Store manages the keyring of one identity over a backing store.
type Store struct {
	identity domain.IdentityID
	backing  domain.KeyringStore
	logger   *slog.Logger

	mu     sync.Mutex
	ring   domain.Keyring
	loaded bool
	sealer Sealer
}

// New returns a keystore for identity backed by the given store.
func New(identity domain.IdentityID, backing domain.KeyringStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{identity: identity, backing: backing, logger: logger}
}

// SetSealer installs the vault as the sealing hook for future persistence.
func (s *Store) SetSealer(sealer Sealer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealer = sealer
}

// Initialize creates the first key pair if none exists and returns the active
// pair's public metadata. Idempotent: an existing keyring, locked or not, is
// returned as-is without exposing key material.
func (s *Store) Initialize() (domain.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return domain.DeviceInfo{}, err
	}
	if active := s.ring.ActivePair(); active != nil {
		return info(active), nil
	}

	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.DeviceInfo{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	pair := domain.KeyPair{
		Public:      pub,
		Private:     priv,
		DeviceLabel: domain.DefaultDeviceLabel,
		CreatedAt:   time.Now().UTC(),
		Active:      true,
	}
	s.ring.Identity = s.identity
	s.ring.Pairs = append(s.ring.Pairs, pair)
	if err := s.persist(); err != nil {
		return domain.DeviceInfo{}, err
	}
	s.logger.Debug("keystore initialized", "identity", s.identity, "public_key", pub.String())
	return info(&pair), nil
}

// ActiveKeyPair returns the active pair including its private half. It fails
// when the keystore is uninitialized or the private half is sealed.
func (s *Store) ActiveKeyPair() (domain.KeyPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return domain.KeyPair{}, err
	}
	active := s.ring.ActivePair()
	if active == nil {
		return domain.KeyPair{}, fmt.Errorf("%w: %w", domain.ErrKeyUnavailable, domain.ErrNotInitialized)
	}
	if !active.HasPrivate() {
		return domain.KeyPair{}, fmt.Errorf("%w: %w", domain.ErrKeyUnavailable, domain.ErrLocked)
	}
	return *active, nil
}

// ActivePublicKey returns the active public key regardless of lock state.
func (s *Store) ActivePublicKey() (domain.X25519Public, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return domain.X25519Public{}, err
	}
	active := s.ring.ActivePair()
	if active == nil {
		return domain.X25519Public{}, domain.ErrNotInitialized
	}
	return active.Public, nil
}

// List returns public metadata for every key pair, newest first.
func (s *Store) List() ([]domain.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]domain.DeviceInfo, 0, len(s.ring.Pairs))
	for i := range s.ring.Pairs {
		out = append(out, info(&s.ring.Pairs[i]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateLabel renames the device owning the given public key.
func (s *Store) UpdateLabel(pub domain.X25519Public, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	pair := s.ring.FindPair(pub)
	if pair == nil {
		return domain.ErrNotFound
	}
	pair.DeviceLabel = label
	return s.persist()
}

// Rotate generates a fresh active pair. Prior pairs are retained, never
// deleted, so historical messages stay decryptable.
func (s *Store) Rotate() (domain.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return domain.DeviceInfo{}, err
	}
	if len(s.ring.Pairs) == 0 {
		return domain.DeviceInfo{}, domain.ErrNotInitialized
	}
	if s.sealedNow() {
		return domain.DeviceInfo{}, domain.ErrLocked
	}

	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.DeviceInfo{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	for i := range s.ring.Pairs {
		s.ring.Pairs[i].Active = false
	}
	pair := domain.KeyPair{
		Public:      pub,
		Private:     priv,
		DeviceLabel: domain.DefaultDeviceLabel,
		CreatedAt:   time.Now().UTC(),
		Active:      true,
	}
	s.ring.Pairs = append(s.ring.Pairs, pair)
	if err := s.persist(); err != nil {
		return domain.DeviceInfo{}, err
	}
	s.logger.Debug("key pair rotated", "identity", s.identity, "public_key", pub.String())
	return info(&pair), nil
}

// UnlockedPairs returns copies of every pair whose private half is in memory,
// active first. Used for trial decryption across key epochs and for backups.
func (s *Store) UnlockedPairs() ([]domain.KeyPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]domain.KeyPair, 0, len(s.ring.Pairs))
	for i := range s.ring.Pairs {
		if s.ring.Pairs[i].HasPrivate() {
			out = append(out, s.ring.Pairs[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Merge installs restored pairs. Existing pairs are kept; when activateNewest
// is set the most recently created pair across old and new becomes active.
// Re-sealing restored material needs the vault key, so a set-but-locked vault
// refuses the merge.
func (s *Store) Merge(restored []domain.KeyPair, activateNewest bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if s.ring.Vault.Set && s.sealedNow() {
		return domain.ErrLocked
	}

	for _, r := range restored {
		if s.ring.FindPair(r.Public) != nil {
			continue
		}
		r.Active = false
		r.Locked = false
		r.Sealed = nil
		s.ring.Pairs = append(s.ring.Pairs, r)
	}
	s.ring.Identity = s.identity

	if activateNewest && len(s.ring.Pairs) > 0 {
		newest := 0
		for i := range s.ring.Pairs {
			if s.ring.Pairs[i].CreatedAt.After(s.ring.Pairs[newest].CreatedAt) {
				newest = i
			}
			s.ring.Pairs[i].Active = false
		}
		s.ring.Pairs[newest].Active = true
	}
	return s.persist()
}

// Locked reports whether private key material is currently sealed.
func (s *Store) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return false
	}
	return s.sealedNow()
}

// Initialized reports whether any key pair exists.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return false
	}
	return len(s.ring.Pairs) > 0
}

func info(p *domain.KeyPair) domain.DeviceInfo {
	return domain.DeviceInfo{
		PublicKey:   p.Public,
		DeviceLabel: p.DeviceLabel,
		CreatedAt:   p.CreatedAt,
		Locked:      p.Locked,
		Active:      p.Active,
	}
}

// sealedNow is the lock-state check; callers hold the mutex.
func (s *Store) sealedNow() bool {
	if len(s.ring.Pairs) == 0 {
		return false
	}
	for i := range s.ring.Pairs {
		if s.ring.Pairs[i].HasPrivate() {
			return false
		}
	}
	return true
}

func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	ring, found, err := s.backing.LoadKeyring(s.identity)
	if err != nil {
		return err
	}
	if found {
		s.ring = ring
	} else {
		s.ring = domain.Keyring{Identity: s.identity}
	}
	s.loaded = true
	return nil
}

// persist writes the ring through the backing store, sealing private halves
// when a vault key is available. Callers hold the mutex.
func (s *Store) persist() error {
	if s.sealer != nil {
		for i := range s.ring.Pairs {
			p := &s.ring.Pairs[i]
			if !p.HasPrivate() || len(p.Sealed) > 0 {
				continue
			}
			sealed, ok, err := s.sealer.SealPrivate(p.Private.Slice())
			if err != nil {
				return err
			}
			if ok {
				p.Sealed = sealed
			}
		}
	}
	if !s.ring.Vault.Set {
		s.logger.Warn("persisting key material without a vault passphrase",
			"identity", s.identity)
	}
	return s.backing.SaveKeyring(s.ring)
}

// VaultHeader returns the persisted vault KDF header.
func (s *Store) VaultHeader() (domain.VaultHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return domain.VaultHeader{}, err
	}
	return s.ring.Vault, nil
}

// SealAll seals every in-memory private half with seal, wipes the plaintext
// copies, records the vault header and persists. Fails with ErrAlreadyLocked
// when there is nothing to seal.
func (s *Store) SealAll(header domain.VaultHeader, seal func(priv []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if len(s.ring.Pairs) == 0 || s.sealedNow() {
		return domain.ErrAlreadyLocked
	}

	for i := range s.ring.Pairs {
		p := &s.ring.Pairs[i]
		if !p.HasPrivate() {
			continue
		}
		sealed, err := seal(p.Private.Slice())
		if err != nil {
			return err
		}
		p.Sealed = sealed
	}
	s.ring.Vault = header

	if err := s.backingSave(); err != nil {
		return err
	}
	// Wipe only after a successful write so a failed lock leaves a usable ring.
	for i := range s.ring.Pairs {
		p := &s.ring.Pairs[i]
		crypto.Wipe(p.Private[:])
		p.Locked = true
	}
	s.logger.Debug("keyring sealed", "identity", s.identity, "pairs", len(s.ring.Pairs))
	return nil
}

// UnsealAll opens every sealed private half with open and restores the
// in-memory plaintext copies. Nothing is persisted: plaintext halves stay in
// memory only. Any failure leaves the ring untouched.
func (s *Store) UnsealAll(open func(sealed []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}

	opened := make([][]byte, len(s.ring.Pairs))
	for i := range s.ring.Pairs {
		p := &s.ring.Pairs[i]
		if p.HasPrivate() || len(p.Sealed) == 0 {
			continue
		}
		raw, err := open(p.Sealed)
		if err != nil {
			for _, b := range opened {
				crypto.Wipe(b)
			}
			return err
		}
		opened[i] = raw
	}
	for i := range s.ring.Pairs {
		if opened[i] == nil {
			continue
		}
		p := &s.ring.Pairs[i]
		copy(p.Private[:], opened[i])
		crypto.Wipe(opened[i])
		p.Locked = false
	}
	s.logger.Debug("keyring unsealed", "identity", s.identity)
	return nil
}

// backingSave persists without the sealer pass; callers hold the mutex and
// have already sealed what needed sealing.
func (s *Store) backingSave() error {
	return s.backing.SaveKeyring(s.ring)
}
