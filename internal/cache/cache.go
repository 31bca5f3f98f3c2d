package cache

import (
	"context"
	"time"
)

// Cache is the key-value cache backing derived ranking aggregates.
//
// Entries are derived views: the cache may discard them at will, a miss
// triggers recomputation from durable data, and no entry outlives its
// TTL even if an invalidation was missed. Get returns
// model.ErrCacheMiss for absent or expired keys; any other error means
// the backend is degraded and the caller should recompute.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes every key matching the pattern, where '*'
	// matches any run of characters. Best-effort: a missed
	// invalidation is bounded by the TTL.
	Invalidate(ctx context.Context, pattern string) error
}
