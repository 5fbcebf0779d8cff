package e2ecore

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"e2ecore/internal/crypto"
	"e2ecore/internal/domain"
)

// Option configures a Session at construction time.
type Option func(*settings)

type settings struct {
	home         string
	keyrings     domain.KeyringStore
	sessions     domain.SessionStore
	directory    domain.Directory
	directoryTTL time.Duration
	logger       *slog.Logger
	registerer   prometheus.Registerer
	kdf          crypto.KDFParams
	strictReplay bool
}

// WithHome sets the state directory holding keyring and session files. The
// identity gets its own subdirectory. Default: ~/.e2ecore.
func WithHome(dir string) Option {
	return func(s *settings) { s.home = dir }
}

// WithKeyringStore replaces the file-backed keyring store, for embedders that
// persist key material through their own channels.
func WithKeyringStore(ks domain.KeyringStore) Option {
	return func(s *settings) { s.keyrings = ks }
}

// WithSessionStore replaces the file-backed session store.
func WithSessionStore(ss domain.SessionStore) Option {
	return func(s *settings) { s.sessions = ss }
}

// WithDirectory wires the public-key directory used to resolve recipients.
// Without one, Encrypt requires EncryptTo with an explicit recipient key.
func WithDirectory(d domain.Directory) Option {
	return func(s *settings) { s.directory = d }
}

// WithDirectoryTTL bounds how long resolved recipient keys are cached.
func WithDirectoryTTL(ttl time.Duration) Option {
	return func(s *settings) { s.directoryTTL = ttl }
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMetrics registers the core's Prometheus counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) { s.registerer = reg }
}

// WithKDFParams overrides the Argon2id cost for vault and backup sealing.
// Lower it in tests, not in production.
func WithKDFParams(p KDFParams) Option {
	return func(s *settings) { s.kdf = p }
}

// WithStrictReplay makes Decrypt fail with ErrReplaySuspected instead of
// surfacing flagged plaintext. Default policy treats replays as warnings,
// since concurrent devices reorder legitimately.
func WithStrictReplay() Option {
	return func(s *settings) { s.strictReplay = true }
}
