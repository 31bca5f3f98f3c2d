package redis

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g. redis://localhost:6379)
	URL string `env:"REDIS_URL"`

	// Pool settings
	PoolSize     int `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`

	// ScanCount is the batch size for pattern invalidation scans
	ScanCount int64 `env:"REDIS_SCAN_COUNT" envDefault:"100"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		ScanCount:    100,
	}
}
