package message

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"e2ecore/internal/crypto"
	"e2ecore/internal/domain"
	"e2ecore/internal/keystore"
)

// Manager encrypts and decrypts conversation messages for one identity.
type Manager struct {
	ks       *keystore.Store
	sessions domain.SessionStore
	logger   *slog.Logger

	// mu serializes session read-modify-write so concurrent encrypts to the
	// same recipient never produce duplicate indices.
	mu sync.Mutex
}

// New returns a manager over the given keystore and session store.
func New(ks *keystore.Store, sessions domain.SessionStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{ks: ks, sessions: sessions, logger: logger}
}

// Encrypt seals plaintext for the recipient and assigns the next send index
// of this conversation. The returned envelope carries everything the
// receiving side needs, including which of our key pairs produced it.
func (m *Manager) Encrypt(plaintext []byte, peer domain.IdentityID, recipient domain.X25519Public) (domain.Envelope, error) {
	if recipient.IsZero() {
		return domain.Envelope{}, domain.ErrRecipientKeyUnknown
	}
	active, err := m.ks.ActiveKeyPair()
	if err != nil {
		return domain.Envelope{}, err
	}

	key, err := crypto.SharedKey(active.Private, recipient)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}
	defer crypto.Wipe(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.loadOrCreate(peer)
	if err != nil {
		return domain.Envelope{}, err
	}
	index := st.SendIndex + 1

	nonce, ct, err := crypto.Seal(key, plaintext, aad(active.Public, index))
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrCryptoFailure, err)
	}

	st.SendIndex = index
	st.RemotePublicKey = recipient
	st.UpdatedAt = time.Now().UTC()
	if err := m.sessions.SaveSession(st); err != nil {
		return domain.Envelope{}, err
	}

	return domain.Envelope{
		Ciphertext:      ct,
		Nonce:           nonce,
		SenderPublicKey: active.Public,
		MessageIndex:    index,
	}, nil
}

// Decrypt opens an envelope from peer. Every locally held key pair is tried,
// newest first, so messages encrypted before a rotation still open. The
// result flags a suspected replay instead of failing: the caller decides.
func (m *Manager) Decrypt(env domain.Envelope, peer domain.IdentityID) (domain.DecryptResult, error) {
	pairs, err := m.ks.UnlockedPairs()
	if err != nil {
		return domain.DecryptResult{}, err
	}
	if len(pairs) == 0 {
		if !m.ks.Initialized() {
			return domain.DecryptResult{}, domain.ErrNotInitialized
		}
		return domain.DecryptResult{}, domain.ErrLocked
	}

	plaintext, ok := m.tryOpen(pairs, env)
	if !ok {
		return domain.DecryptResult{}, domain.ErrDecryptionFailed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.loadOrCreate(peer)
	if err != nil {
		return domain.DecryptResult{}, err
	}
	rs := st.ReceiveFor(env.SenderPublicKey)
	replayed := env.MessageIndex < rs.HighWater || rs.Observed(env.MessageIndex)
	if replayed {
		m.logger.Warn("suspected replay",
			"peer", peer,
			"sender_key", env.SenderPublicKey.String(),
			"index", env.MessageIndex,
			"high_water", rs.HighWater)
	} else {
		rs.Mark(env.MessageIndex)
	}
	st.UpdatedAt = time.Now().UTC()
	if err := m.sessions.SaveSession(st); err != nil {
		return domain.DecryptResult{}, err
	}

	return domain.DecryptResult{Plaintext: plaintext, Replayed: replayed}, nil
}

// DecryptBatch decrypts each envelope independently, resolving its
// counterpart through the caller-supplied resolver. One bad envelope never
// aborts the rest.
func (m *Manager) DecryptBatch(envs []domain.Envelope, resolver func(domain.Envelope) domain.IdentityID) []domain.BatchItem {
	out := make([]domain.BatchItem, 0, len(envs))
	for _, env := range envs {
		item := domain.BatchItem{Envelope: env}
		peer := resolver(env)
		if peer == "" {
			item.Err = domain.ErrRecipientKeyUnknown
		} else {
			item.Result, item.Err = m.Decrypt(env, peer)
		}
		out = append(out, item)
	}
	return out
}

// State returns the current session state for a peer, for external
// persistence.
func (m *Manager) State(peer domain.IdentityID) (domain.SessionState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.LoadSession(peer)
}

// ImportState installs previously exported session state.
func (m *Manager) ImportState(st domain.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.SaveSession(st)
}

// tryOpen attempts AEAD decryption with every available private key.
func (m *Manager) tryOpen(pairs []domain.KeyPair, env domain.Envelope) ([]byte, bool) {
	ad := aad(env.SenderPublicKey, env.MessageIndex)
	for i := range pairs {
		key, err := crypto.SharedKey(pairs[i].Private, env.SenderPublicKey)
		if err != nil {
			continue
		}
		pt, err := crypto.Open(key, env.Nonce, env.Ciphertext, ad)
		crypto.Wipe(key)
		if err == nil {
			return pt, true
		}
	}
	return nil, false
}

// loadOrCreate fetches session state for peer, creating it lazily on first
// contact. Callers hold mu.
func (m *Manager) loadOrCreate(peer domain.IdentityID) (domain.SessionState, error) {
	st, found, err := m.sessions.LoadSession(peer)
	if err != nil {
		return domain.SessionState{}, err
	}
	if !found {
		st = domain.SessionState{Peer: peer, CreatedAt: time.Now().UTC()}
	}
	return st, nil
}

// aad binds the sender key and message index into the authentication tag.
func aad(sender domain.X25519Public, index uint64) []byte {
	buf := make([]byte, 0, 40)
	buf = append(buf, sender[:]...)
	buf = binary.BigEndian.AppendUint64(buf, index)
	return buf
}
