package memory

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/zkarcade/arena/internal/cache"
	"github.com/zkarcade/arena/internal/dependencies/clock"
	"github.com/zkarcade/arena/internal/model"
)

// Cache is an in-memory implementation of the cache interface for
// single-node deployments and tests. Expiry is checked lazily on Get;
// an expired entry is indistinguishable from an absent one.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   clock.Clock
}

type entry struct {
	value     []byte
	expiresAt time.Time // Zero means no expiry
}

// New creates a new in-memory cache
func New(clk clock.Clock) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		clock:   clk,
	}
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, model.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a Put may have replaced the
		// entry with a fresh one since the read lock was dropped.
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, model.ErrCacheMiss
	}

	// Copy so callers cannot mutate the cached value
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

func (c *Cache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	e := entry{value: stored}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

// Len returns the number of live entries (expired entries included until
// their next Get). Used by tests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
