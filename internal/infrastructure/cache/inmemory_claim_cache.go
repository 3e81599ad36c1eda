package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	expenseapp "github.com/farmops/backend/internal/application/expense"
)

// InMemoryClaimCache is a process-local ClaimCache. It serves single-instance
// deployments and tests; distributed deployments should use RedisClaimCache
// so invalidations are visible across instances.
type InMemoryClaimCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]claimEntry
	ttl     time.Duration
}

type claimEntry struct {
	claim     *expenseapp.ClaimResponse
	expiresAt time.Time
}

// NewInMemoryClaimCache creates a new in-memory claim cache
func NewInMemoryClaimCache(ttl time.Duration) *InMemoryClaimCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryClaimCache{
		entries: make(map[uuid.UUID]claimEntry),
		ttl:     ttl,
	}
}

// GetClaim returns the cached response for a claim, if present and not expired
func (c *InMemoryClaimCache) GetClaim(_ context.Context, id uuid.UUID) (*expenseapp.ClaimResponse, bool) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
		return nil, false
	}
	return entry.claim, true
}

// SetClaim stores the response for a claim with the configured TTL
func (c *InMemoryClaimCache) SetClaim(_ context.Context, id uuid.UUID, claim *expenseapp.ClaimResponse) {
	if claim == nil {
		return
	}
	c.mu.Lock()
	c.entries[id] = claimEntry{claim: claim, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// InvalidateClaim drops the cached entry for the given claim only
func (c *InMemoryClaimCache) InvalidateClaim(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Len reports the number of cached entries (for tests and monitoring)
func (c *InMemoryClaimCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryClaimCache implements ClaimCache
var _ expenseapp.ClaimCache = (*InMemoryClaimCache)(nil)
