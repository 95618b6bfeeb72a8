package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryRunGuard is a process-local run guard for tests and
// single-instance deployments without Redis.
type InMemoryRunGuard struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

// NewInMemoryRunGuard creates an in-memory run guard
func NewInMemoryRunGuard() *InMemoryRunGuard {
	return &InMemoryRunGuard{
		locks: make(map[string]time.Time),
	}
}

// Acquire tries to take the lock for key. Expired entries are treated
// as free.
func (g *InMemoryRunGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if expiry, held := g.locks[key]; held && now.Before(expiry) {
		return false, nil
	}
	g.locks[key] = now.Add(ttl)
	return true, nil
}

// Release frees the lock for key
func (g *InMemoryRunGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locks, key)
	return nil
}
