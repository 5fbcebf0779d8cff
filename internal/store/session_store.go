package store

import (
	"path/filepath"
	"sync"

	"e2ecore/internal/domain"
)

const sessionsFile = "sessions.json"

// FileSessionStore persists conversation session state as a single JSON map
// keyed by peer identity.
type FileSessionStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileSessionStore returns a session store rooted at dir.
func NewFileSessionStore(dir string) *FileSessionStore { return &FileSessionStore{dir: dir} }

var _ domain.SessionStore = (*FileSessionStore)(nil)

func (s *FileSessionStore) SaveSession(state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.IdentityID]domain.SessionState)
	if _, err := readJSON(s.path(), &m); err != nil {
		return err
	}
	m[state.Peer] = state
	return writeJSON(s.path(), m, 0o600)
}

func (s *FileSessionStore) LoadSession(peer domain.IdentityID) (domain.SessionState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.IdentityID]domain.SessionState)
	if _, err := readJSON(s.path(), &m); err != nil {
		return domain.SessionState{}, false, err
	}
	st, ok := m[peer]
	return st, ok, nil
}

func (s *FileSessionStore) path() string {
	return filepath.Join(s.dir, sessionsFile)
}

// MemorySessionStore keeps session state in memory only. Useful for tests and
// for embedders that persist session state through their own channels.
type MemorySessionStore struct {
	mu sync.Mutex
	m  map[domain.IdentityID]domain.SessionState
}

// NewMemorySessionStore returns an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{m: make(map[domain.IdentityID]domain.SessionState)}
}

var _ domain.SessionStore = (*MemorySessionStore)(nil)

func (s *MemorySessionStore) SaveSession(state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[state.Peer] = state
	return nil
}

func (s *MemorySessionStore) LoadSession(peer domain.IdentityID) (domain.SessionState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[peer]
	return st, ok, nil
}
