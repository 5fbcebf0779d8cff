package e2ecore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"e2ecore/internal/attachment"
	"e2ecore/internal/crypto"
	"e2ecore/internal/domain"
	"e2ecore/internal/exchange"
	"e2ecore/internal/keystore"
	"e2ecore/internal/message"
	"e2ecore/internal/metrics"
	"e2ecore/internal/recovery"
	"e2ecore/internal/store"
	"e2ecore/internal/vault"
)

// Session is the crypto surface of one authenticated identity. Construct with
// NewSession, call Initialize once, then use it for the lifetime of the login.
//
// All methods are safe for concurrent use.
type Session struct {
	identity domain.IdentityID

	ks       *keystore.Store
	vault    *vault.Vault
	messages *message.Manager
	backups  *recovery.Manager
	resolver *exchange.Resolver

	metrics      *metrics.Metrics
	logger       *slog.Logger
	strictReplay bool
}

// NewSession builds the session for identity. With no options, state lives
// under ~/.e2ecore/<identity>/ and no directory is wired.
func NewSession(identity IdentityID, opts ...Option) (*Session, error) {
	if identity == "" {
		return nil, fmt.Errorf("%w: empty identity", ErrInvalidKey)
	}

	s := settings{
		logger: slog.Default(),
		kdf:    crypto.DefaultKDFParams(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	logger := s.logger.With("identity", identity)

	if s.keyrings == nil || s.sessions == nil {
		home := s.home
		if home == "" {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve home directory: %w", err)
			}
			home = filepath.Join(userHome, ".e2ecore")
		}
		dir := filepath.Join(home, identity.String())
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
		if s.keyrings == nil {
			s.keyrings = store.NewFileKeyringStore(dir)
		}
		if s.sessions == nil {
			s.sessions = store.NewFileSessionStore(dir)
		}
	}

	ks := keystore.New(identity, s.keyrings, logger)
	sess := &Session{
		identity:     identity,
		ks:           ks,
		vault:        vault.New(ks, s.kdf, logger),
		messages:     message.New(ks, s.sessions, logger),
		backups:      recovery.New(ks, s.kdf, logger),
		logger:       logger,
		strictReplay: s.strictReplay,
	}
	if s.directory != nil {
		sess.resolver = exchange.New(s.directory, s.directoryTTL, logger)
	}
	if s.registerer != nil {
		sess.metrics = metrics.New(s.registerer)
	}
	return sess, nil
}

// Identity returns the identity this session was built for.
func (s *Session) Identity() IdentityID { return s.identity }

// Initialize creates the first device key pair if none exists. Idempotent: an
// existing keyring, locked or not, is described without exposing material.
func (s *Session) Initialize() (DeviceInfo, error) {
	return s.ks.Initialize()
}

// ActivePublicKey returns the active public key regardless of lock state.
func (s *Session) ActivePublicKey() (X25519Public, error) {
	return s.ks.ActivePublicKey()
}

// Devices lists every local key pair's public metadata, newest first.
func (s *Session) Devices() ([]DeviceInfo, error) {
	return s.ks.List()
}

// UpdateDeviceLabel renames the device owning pub.
func (s *Session) UpdateDeviceLabel(pub X25519Public, label string) error {
	return s.ks.UpdateLabel(pub, label)
}

// Rotate generates a fresh active key pair. Prior pairs stay available so
// history keeps decrypting. Requires an unlocked keystore.
func (s *Session) Rotate() (DeviceInfo, error) {
	return s.ks.Rotate()
}

// Lock seals all private key material under passphrase and wipes the
// in-memory copies. Every operation needing a private key fails with
// ErrLocked until Unlock.
func (s *Session) Lock(passphrase string) error {
	return s.vault.Lock(passphrase)
}

// Unlock restores private key material for this process only. Attempts are
// throttled; a wrong passphrase and a corrupt blob are indistinguishable.
func (s *Session) Unlock(passphrase string) error {
	err := s.vault.Unlock(passphrase)
	if errors.Is(err, ErrInvalidPassphrase) {
		s.metrics.UnlockFailed()
	}
	return err
}

// IsLocked reports whether private key material is currently sealed.
func (s *Session) IsLocked() bool { return s.vault.IsLocked() }

// Fingerprint returns the display digest of the active public key.
func (s *Session) Fingerprint() (Fingerprint, error) {
	pub, err := s.ks.ActivePublicKey()
	if err != nil {
		return Fingerprint{}, err
	}
	return crypto.ComputeFingerprint(pub), nil
}

// VerificationPayload returns the QR payload for out-of-band verification.
// Comparing fingerprints is the humans' job; equality of full fingerprints
// implies equality of keys.
func (s *Session) VerificationPayload() (VerificationPayload, error) {
	pub, err := s.ks.ActivePublicKey()
	if err != nil {
		return VerificationPayload{}, err
	}
	fp := crypto.ComputeFingerprint(pub)
	return VerificationPayload{PublicKey: pub, ShortFingerprint: fp.Short}, nil
}

// Encrypt resolves peer through the directory and seals plaintext for them.
// Fails with ErrRecipientKeyUnknown when the peer has not set up encryption;
// callers may then fall back to an explicit PlaintextContent send.
func (s *Session) Encrypt(ctx context.Context, plaintext []byte, peer IdentityID) (Envelope, error) {
	if s.resolver == nil {
		return Envelope{}, fmt.Errorf("%w: no directory configured", ErrRecipientKeyUnknown)
	}
	pub, err := s.resolver.ResolvePublicKey(ctx, peer)
	if err != nil {
		return Envelope{}, err
	}
	if pub == nil {
		return Envelope{}, fmt.Errorf("%w: %s has not set up encryption", ErrRecipientKeyUnknown, peer)
	}
	return s.EncryptTo(plaintext, peer, *pub)
}

// EncryptTo seals plaintext for peer under an already-resolved recipient key.
func (s *Session) EncryptTo(plaintext []byte, peer IdentityID, recipient X25519Public) (Envelope, error) {
	env, err := s.messages.Encrypt(plaintext, peer, recipient)
	if err != nil {
		return Envelope{}, err
	}
	s.metrics.Encrypted()
	return env, nil
}

// Decrypt opens an envelope from peer. Suspected replays surface in the
// result's Replayed flag, or as ErrReplaySuspected under WithStrictReplay.
func (s *Session) Decrypt(env Envelope, peer IdentityID) (DecryptResult, error) {
	res, err := s.messages.Decrypt(env, peer)
	if err != nil {
		if errors.Is(err, ErrDecryptionFailed) {
			s.metrics.DecryptFailed()
		}
		return DecryptResult{}, err
	}
	if res.Replayed {
		s.metrics.ReplaySuspected()
		if s.strictReplay {
			return DecryptResult{}, fmt.Errorf("%w: index %d from %s", ErrReplaySuspected, env.MessageIndex, peer)
		}
	}
	s.metrics.Decrypted()
	return res, nil
}

// DecryptBatch decrypts envelopes independently; one failure never aborts the
// rest. resolver maps each envelope to its counterpart identity.
func (s *Session) DecryptBatch(envs []Envelope, resolver func(Envelope) IdentityID) []BatchItem {
	items := make([]BatchItem, 0, len(envs))
	for _, env := range envs {
		item := BatchItem{Envelope: env}
		if peer := resolver(env); peer == "" {
			item.Err = ErrRecipientKeyUnknown
		} else {
			item.Result, item.Err = s.Decrypt(env, peer)
		}
		items = append(items, item)
	}
	return items
}

// CreateBackup exports every key pair, history included, sealed under code.
// An empty code generates a fresh recovery mnemonic. The keystore must be
// unlocked; the code is returned once and never stored.
func (s *Session) CreateBackup(code string) (Backup, error) {
	return s.backups.Create(code)
}

// RestoreBackup merges the key pairs inside blob into the keystore. Existing
// pairs survive; the newest pair overall becomes active.
func (s *Session) RestoreBackup(code, blob string) error {
	return s.backups.Restore(code, blob)
}

// EncryptAttachment seals file bytes under a fresh one-time key. Pure: needs
// neither the vault nor the keystore.
func (s *Session) EncryptAttachment(data []byte) (EncryptedFile, error) {
	return attachment.EncryptFile(data)
}

// DecryptAttachment opens attachment ciphertext with its unwrapped key.
func (s *Session) DecryptAttachment(ciphertext []byte, key FileKey) ([]byte, error) {
	return attachment.DecryptFile(ciphertext, key)
}

// WrapFileKey transports an attachment key to peer inside an ordinary
// encrypted message. The attachment ciphertext is stored alongside, not
// inside, the returned envelope.
func (s *Session) WrapFileKey(ctx context.Context, key FileKey, peer IdentityID) (Envelope, error) {
	payload, err := attachment.MarshalFileKey(key)
	if err != nil {
		return Envelope{}, err
	}
	defer crypto.Wipe(payload)
	return s.Encrypt(ctx, payload, peer)
}

// WrapFileKeyTo is WrapFileKey with an already-resolved recipient key.
func (s *Session) WrapFileKeyTo(key FileKey, peer IdentityID, recipient X25519Public) (Envelope, error) {
	payload, err := attachment.MarshalFileKey(key)
	if err != nil {
		return Envelope{}, err
	}
	defer crypto.Wipe(payload)
	return s.EncryptTo(payload, peer, recipient)
}

// UnwrapFileKey recovers an attachment key from its carrying envelope.
func (s *Session) UnwrapFileKey(env Envelope, peer IdentityID) (FileKey, error) {
	res, err := s.Decrypt(env, peer)
	if err != nil {
		return FileKey{}, err
	}
	defer crypto.Wipe(res.Plaintext)
	return attachment.UnmarshalFileKey(res.Plaintext)
}

// ResolvePublicKey looks up peer's current public key through the directory,
// nil when the peer has not published one.
func (s *Session) ResolvePublicKey(ctx context.Context, peer IdentityID) (*X25519Public, error) {
	if s.resolver == nil {
		return nil, fmt.Errorf("%w: no directory configured", ErrRecipientKeyUnknown)
	}
	return s.resolver.ResolvePublicKey(ctx, peer)
}

// InvalidateRecipient drops peer's cached key so the next resolve re-fetches.
// Call it on rotation signals.
func (s *Session) InvalidateRecipient(peer IdentityID) {
	if s.resolver != nil {
		s.resolver.Invalidate(peer)
	}
}

// SessionState exports the conversation state with peer so embedders can
// persist it through their own channels.
func (s *Session) SessionState(peer IdentityID) (SessionState, bool, error) {
	return s.messages.State(peer)
}

// ImportSessionState installs previously exported conversation state.
func (s *Session) ImportSessionState(st SessionState) error {
	return s.messages.ImportState(st)
}

// NewHTTPDirectory returns a Directory client for a key-directory service at
// base (GET /keys/{identity}).
func NewHTTPDirectory(base string) Directory {
	return exchange.NewHTTPDirectory(base)
}
