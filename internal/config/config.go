package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/zkarcade/arena/internal/api"
	cacheredis "github.com/zkarcade/arena/internal/cache/redis"
	"github.com/zkarcade/arena/internal/services/ranking"
	"github.com/zkarcade/arena/internal/storage/postgres"
)

// Backend type constants
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the full application configuration, loaded from the
// environment. Every field carries a usable default so a bare process
// comes up with in-memory backends.
type Config struct {
	Server api.ServerConfig

	// StorageType selects the durable store ("memory" or "postgres")
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	Postgres    postgres.Config

	// CacheType selects the ranking cache ("memory" or "redis")
	CacheType string `env:"CACHE_TYPE" envDefault:"memory"`
	Redis     cacheredis.Config

	Ranking ranking.Config

	// TaskTimeout bounds each post-submission side effect task
	TaskTimeout time.Duration `env:"TASK_TIMEOUT" envDefault:"10s"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageType {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be %q or %q", c.StorageType, BackendMemory, BackendPostgres)
	}
	switch c.CacheType {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid CACHE_TYPE %q: must be %q or %q", c.CacheType, BackendMemory, BackendRedis)
	}
	return nil
}
