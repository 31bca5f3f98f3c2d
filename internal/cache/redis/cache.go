package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zkarcade/arena/internal/cache"
	"github.com/zkarcade/arena/internal/model"
)

// Cache is a Redis-backed implementation of the cache interface
type Cache struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis cache instance
func New(cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Cache{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis cache with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Cache {
	return &Cache{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (c *Cache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, pattern string) error {
	// SCAN rather than KEYS so invalidation never stalls the server
	iter := c.client.Scan(ctx, 0, pattern, c.cfg.ScanCount).Iterator()

	keys := make([]string, 0, c.cfg.ScanCount)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= int(c.cfg.ScanCount) {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete matched keys: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %q: %w", pattern, err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete matched keys: %w", err)
		}
	}
	return nil
}
