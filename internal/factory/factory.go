package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zkarcade/arena/internal/cache"
	memorycache "github.com/zkarcade/arena/internal/cache/memory"
	rediscache "github.com/zkarcade/arena/internal/cache/redis"
	"github.com/zkarcade/arena/internal/dependencies/clock"
	"github.com/zkarcade/arena/internal/dependencies/random"
	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/live"
	"github.com/zkarcade/arena/internal/services/ranking"
	"github.com/zkarcade/arena/internal/services/session"
	"github.com/zkarcade/arena/internal/services/submission"
	"github.com/zkarcade/arena/internal/storage"
	"github.com/zkarcade/arena/internal/storage/memory"
	"github.com/zkarcade/arena/internal/storage/postgres"
	"github.com/zkarcade/arena/internal/tasks"
)

// Backend type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypePostgres = "postgres"
	CacheTypeMemory     = "memory"
	CacheTypeRedis      = "redis"
)

// App contains all wired application components
type App struct {
	// Backends
	Storage storage.Storage
	Cache   cache.Cache

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Domain
	Registry          *games.Registry
	SessionController *session.Controller
	RankingService    *ranking.Service
	SubmissionPipe    *submission.Pipeline

	// Live fan-out
	Rooms       *live.RoomManager
	Broadcaster *live.Broadcaster

	// Runner executes post-submission side effect tasks
	Runner tasks.Runner
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the durable store ("memory" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// PostgresConfig holds Postgres connection settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
	// CacheType selects the ranking cache ("memory" or "redis")
	// If empty, defaults to "memory"
	CacheType string
	// RedisConfig holds Redis connection settings (required if CacheType is "redis")
	RedisConfig *rediscache.Config
	// RankingConfig holds ranking service settings (optional)
	// If zero value, defaults to ranking.DefaultConfig()
	RankingConfig ranking.Config
	// TaskTimeout bounds each side effect task (optional, default 10s)
	TaskTimeout time.Duration
	// Notifier receives completed-session callbacks (optional)
	Notifier submission.AchievementNotifier
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()

	// Create durable storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgres.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensuring postgres schema: %w", err)
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'postgres'")
	}

	// Create ranking cache based on type
	var rankCache cache.Cache
	cacheType := cfg.CacheType
	if cacheType == "" {
		cacheType = CacheTypeMemory
	}

	switch cacheType {
	case CacheTypeMemory:
		rankCache = memorycache.New(clk)
	case CacheTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when CacheType is redis")
		}
		redisCache, err := rediscache.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		rankCache = redisCache
	default:
		return nil, errors.New("invalid CacheType: must be 'memory' or 'redis'")
	}

	rankingCfg := cfg.RankingConfig
	if rankingCfg.TTL == 0 {
		rankingCfg = ranking.DefaultConfig()
	}

	taskTimeout := cfg.TaskTimeout
	if taskTimeout == 0 {
		taskTimeout = 10 * time.Second
	}
	runner := tasks.NewAsyncRunner(taskTimeout, logger)

	return newWithDependencies(store, rankCache, clk, rnd, rankingCfg, runner, cfg.Notifier, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	rankCache cache.Cache,
	clk clock.Clock,
	rnd random.Random,
	rankingCfg ranking.Config,
	runner tasks.Runner,
	notifier submission.AchievementNotifier,
	logger *slog.Logger,
) *App {
	registry := games.DefaultRegistry()
	rooms := live.NewRoomManager(logger)
	broadcaster := live.NewBroadcaster(rooms, logger)

	sessionController := session.NewController(store, registry, clk, rnd, logger)
	rankingService := ranking.New(store, rankCache, registry, clk, rankingCfg, logger)
	pipeline := submission.NewPipeline(store, sessionController, registry, rankingService, broadcaster, notifier, runner, clk, logger)

	return &App{
		Storage:           store,
		Cache:             rankCache,
		Clock:             clk,
		Random:            rnd,
		Registry:          registry,
		SessionController: sessionController,
		RankingService:    rankingService,
		SubmissionPipe:    pipeline,
		Rooms:             rooms,
		Broadcaster:       broadcaster,
		Runner:            runner,
	}
}
