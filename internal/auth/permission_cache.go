package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/mkarlsen/kontor/internal/domain"
)

// permissionCacheTTL bounds how long a revoked grant keeps working.
const permissionCacheTTL = 10 * time.Second

type cachedDecision struct {
	allowed   bool
	expiresAt time.Time
}

// PermissionCache fronts the permission store with a short TTL cache.
// Concurrent lookups for the same grant collapse into one query via
// singleflight.
type PermissionCache struct {
	store domain.PermissionRepository
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[string]cachedDecision
	group   singleflight.Group
}

func NewPermissionCache(store domain.PermissionRepository, clock clockwork.Clock) *PermissionCache {
	return &PermissionCache{
		store:   store,
		clock:   clock,
		entries: make(map[string]cachedDecision),
	}
}

func (p *PermissionCache) HasPermission(ctx context.Context, userID uuid.UUID, entity, action string) (bool, error) {
	key := fmt.Sprintf("%s/%s/%s", userID, entity, action)

	p.mu.RLock()
	entry, ok := p.entries[key]
	p.mu.RUnlock()
	if ok && p.clock.Now().Before(entry.expiresAt) {
		return entry.allowed, nil
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		allowed, err := p.store.HasPermission(ctx, userID, entity, action)
		if err != nil {
			return false, err
		}

		p.mu.Lock()
		p.entries[key] = cachedDecision{
			allowed:   allowed,
			expiresAt: p.clock.Now().Add(permissionCacheTTL),
		}
		p.mu.Unlock()

		return allowed, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Invalidate drops all cached decisions for a user. Called after grants
// change so revocations take effect without waiting out the TTL.
func (p *PermissionCache) Invalidate(userID uuid.UUID) {
	prefix := userID.String() + "/"

	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.entries {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(p.entries, key)
		}
	}
}
