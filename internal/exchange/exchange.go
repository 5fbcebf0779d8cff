// Package exchange bridges to the external public-key directory and caches
// lookups.
//
// A missing directory entry means "this recipient has not set up encryption
// yet" and resolves to nil rather than an error; transport failures fail
// closed with ErrRecipientKeyUnknown so callers never block on a key that
// cannot be fetched.
package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"e2ecore/internal/domain"
)

// DefaultTTL is how long a resolved key is served from cache before the
// directory is asked again. A policy knob, not a contract.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	key       *domain.X25519Public
	fetchedAt time.Time
}

// Resolver caches directory lookups per remote identity.
type Resolver struct {
	dir    domain.Directory
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[domain.IdentityID]cacheEntry
}

// New returns a resolver over dir. A zero ttl selects DefaultTTL.
func New(dir domain.Directory, ttl time.Duration, logger *slog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		dir:    dir,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		cache:  make(map[domain.IdentityID]cacheEntry),
	}
}

// ResolvePublicKey returns the recipient's current public key, nil when the
// recipient has not published one. Caller-supplied ctx bounds the lookup.
func (r *Resolver) ResolvePublicKey(ctx context.Context, id domain.IdentityID) (*domain.X25519Public, error) {
	r.mu.Lock()
	if e, ok := r.cache[id]; ok && r.now().Sub(e.fetchedAt) < r.ttl {
		r.mu.Unlock()
		return e.key, nil
	}
	r.mu.Unlock()

	key, err := r.dir.Resolve(ctx, id)
	if err != nil {
		r.logger.Warn("directory lookup failed", "identity", id, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRecipientKeyUnknown, err)
	}

	r.mu.Lock()
	r.cache[id] = cacheEntry{key: key, fetchedAt: r.now()}
	r.mu.Unlock()
	return key, nil
}

// Invalidate drops the cached key so the next resolve re-fetches. Called on
// rotation signals and session resets.
func (r *Resolver) Invalidate(id domain.IdentityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, id)
}
