package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/zkarcade/arena/internal/cache"
	"github.com/zkarcade/arena/internal/dependencies/clock"
	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/storage"
)

// Config holds ranking service settings
type Config struct {
	// TTL bounds the staleness of every cached aggregate
	TTL time.Duration `env:"RANKING_CACHE_TTL" envDefault:"5m"`

	// MaxEntries caps how many ranked rows an aggregate retains
	MaxEntries int `env:"RANKING_MAX_ENTRIES" envDefault:"500"`

	// DefaultLimit is the page size when the caller passes none
	DefaultLimit int `env:"RANKING_DEFAULT_LIMIT" envDefault:"100"`

	// MaxLimit clamps requested page sizes to bound recomputation cost
	MaxLimit int `env:"RANKING_MAX_LIMIT" envDefault:"500"`
}

// DefaultConfig returns sensible defaults for the ranking service
func DefaultConfig() Config {
	return Config{
		TTL:          5 * time.Minute,
		MaxEntries:   500,
		DefaultLimit: 100,
		MaxLimit:     500,
	}
}

// Service serves leaderboard and rank reads through the ranking cache,
// recomputing from durable data on a miss. Cached views may be stale up
// to the TTL but are never retained past it; the durable store is the
// only authority.
type Service struct {
	storage  storage.Storage
	cache    cache.Cache
	registry *games.Registry
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger
}

// New creates a new ranking Service
func New(
	storage storage.Storage,
	cache cache.Cache,
	registry *games.Registry,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:  storage,
		cache:    cache,
		registry: registry,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "ranking")),
	}
}

// GlobalLeaderboard returns a page of the cross-game ranking for a
// period. Global scores are the points rule reduced over each user's
// completed sessions in the window.
func (s *Service) GlobalLeaderboard(ctx context.Context, period model.Period, limit, offset int) (*model.RankingAggregate, error) {
	return s.leaderboard(ctx, model.ScopeKey{Period: period}, limit, offset)
}

// GameLeaderboard returns a page of one game's ranking for a period
func (s *Service) GameLeaderboard(ctx context.Context, gameID model.GameID, period model.Period, limit, offset int) (*model.RankingAggregate, error) {
	if _, err := s.registry.Get(gameID); err != nil {
		return nil, err
	}
	return s.leaderboard(ctx, model.ScopeKey{GameID: gameID, Period: period}, limit, offset)
}

func (s *Service) leaderboard(ctx context.Context, scope model.ScopeKey, limit, offset int) (*model.RankingAggregate, error) {
	if !scope.Period.Valid() {
		return nil, model.ErrInvalidPeriod
	}
	limit, offset, err := s.clampPage(limit, offset)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.loadAggregate(ctx, scope)
	if err != nil {
		return nil, err
	}

	page := *aggregate
	page.Entries = pageOf(aggregate.Entries, limit, offset)
	return &page, nil
}

// UserRank returns a user's rank snapshot within a game scope, or the
// global scope when gameID is empty. A user with no qualifying result
// gets rank 0 rather than an error.
func (s *Service) UserRank(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.UserRankSnapshot, error) {
	scope := model.ScopeKey{GameID: gameID, Period: model.PeriodAllTime}
	if gameID != "" {
		if _, err := s.registry.Get(gameID); err != nil {
			return nil, err
		}
	}

	key := cache.UserRankKey(userID, scope.Scope())
	if data, err := s.cacheGet(ctx, key); err == nil {
		var snapshot model.UserRankSnapshot
		if err := json.Unmarshal(data, &snapshot); err == nil {
			return &snapshot, nil
		}
		s.logger.Warn("discarding undecodable rank snapshot", slog.String("key", key))
	}

	// Rank snapshots are computed from the full reduction, not the
	// truncated aggregate, so users below the aggregate cap still get
	// an accurate rank.
	entries, err := s.reduce(ctx, scope)
	if err != nil {
		return nil, err
	}

	snapshot := &model.UserRankSnapshot{
		UserID:       userID,
		Scope:        scope.Scope(),
		TotalPlayers: len(entries),
		GeneratedAt:  s.clock.Now(),
	}
	for _, entry := range entries {
		if entry.UserID == userID {
			snapshot.Rank = entry.Rank
			snapshot.Score = entry.Score
			break
		}
	}

	s.cachePut(ctx, key, snapshot)
	return snapshot, nil
}

// GameStats returns a cached summary of one game's completed sessions
func (s *Service) GameStats(ctx context.Context, gameID model.GameID) (*model.GameStats, error) {
	if _, err := s.registry.Get(gameID); err != nil {
		return nil, err
	}

	key := cache.GameStatsKey(gameID)
	if data, err := s.cacheGet(ctx, key); err == nil {
		var stats model.GameStats
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
		s.logger.Warn("discarding undecodable game stats", slog.String("key", key))
	}

	sessions, err := s.storage.CompletedSessions(ctx, gameID, time.Time{})
	if err != nil {
		return nil, err
	}

	stats := computeStats(gameID, sessions, s.clock.Now())
	s.cachePut(ctx, key, stats)
	return stats, nil
}

// InvalidateForSubmission drops every cached view a completed session
// could affect: the global aggregates, the game's aggregates and stats,
// and the user's rank snapshots. Best-effort: a failure degrades to
// stale reads bounded by the TTL.
func (s *Service) InvalidateForSubmission(ctx context.Context, userID model.UserID, gameID model.GameID) error {
	patterns := []string{
		cache.GlobalLeaderboardPattern(),
		cache.GameLeaderboardPattern(gameID),
		cache.UserRankPattern(userID),
		cache.GameStatsKey(gameID),
	}

	var errs []error
	for _, pattern := range patterns {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %q: %w", pattern, err))
		}
	}
	return errors.Join(errs...)
}

// loadAggregate reads an aggregate through the cache, recomputing from
// durable data on a miss. Concurrent misses recompute redundantly;
// last write wins, which is safe because every value is a deterministic
// function of durable state at computation time.
func (s *Service) loadAggregate(ctx context.Context, scope model.ScopeKey) (*model.RankingAggregate, error) {
	key := cache.LeaderboardKey(scope)
	if data, err := s.cacheGet(ctx, key); err == nil {
		var aggregate model.RankingAggregate
		if err := json.Unmarshal(data, &aggregate); err == nil {
			return &aggregate, nil
		}
		s.logger.Warn("discarding undecodable aggregate", slog.String("key", key))
	}

	entries, err := s.reduce(ctx, scope)
	if err != nil {
		return nil, err
	}

	aggregate := &model.RankingAggregate{
		Scope:        scope,
		Entries:      entries,
		TotalPlayers: len(entries),
		GeneratedAt:  s.clock.Now(),
	}
	if len(aggregate.Entries) > s.cfg.MaxEntries {
		aggregate.Entries = aggregate.Entries[:s.cfg.MaxEntries]
	}

	s.cachePut(ctx, key, aggregate)
	return aggregate, nil
}

// reduce computes the full ranked entry list for a scope from durable
// data: completed sessions in the window, grouped by user, reduced per
// the scope's aggregation rule, sorted with deterministic tiebreaks,
// and densely ranked.
func (s *Service) reduce(ctx context.Context, scope model.ScopeKey) ([]model.LeaderboardEntry, error) {
	since := scope.Period.WindowStart(s.clock.Now())
	sessions, err := s.storage.CompletedSessions(ctx, scope.GameID, since)
	if err != nil {
		return nil, err
	}

	type userReduction struct {
		best     int
		total    int
		points   int
		played   int
		earliest time.Time // Earliest completion in window
		bestAt   time.Time // Earliest completion achieving the best score
	}
	byUser := make(map[model.UserID]*userReduction)

	for _, session := range sessions {
		kind, err := s.registry.Get(session.GameID)
		if err != nil {
			// Session for a game no longer in the catalog
			continue
		}

		r, ok := byUser[session.UserID]
		if !ok {
			r = &userReduction{best: -1}
			byUser[session.UserID] = r
		}
		completedAt := *session.CompletedAt

		r.played++
		r.total += session.Score
		r.points += kind.Points(session.Score)
		if r.earliest.IsZero() || completedAt.Before(r.earliest) {
			r.earliest = completedAt
		}
		if session.Score > r.best || (session.Score == r.best && completedAt.Before(r.bestAt)) {
			r.best = session.Score
			r.bestAt = completedAt
		}
	}

	var aggregation games.Aggregation
	if scope.GameID != "" {
		kind, err := s.registry.Get(scope.GameID)
		if err != nil {
			return nil, err
		}
		aggregation = kind.Aggregation
	}

	entries := make([]model.LeaderboardEntry, 0, len(byUser))
	for userID, r := range byUser {
		entry := model.LeaderboardEntry{
			UserID:      userID,
			GamesPlayed: r.played,
		}
		switch {
		case scope.GameID == "":
			entry.Score = r.points
			entry.CompletedAt = r.earliest
		case aggregation == games.AggregationCumulative:
			entry.Score = r.total
			entry.CompletedAt = r.earliest
		default:
			entry.Score = r.best
			entry.CompletedAt = r.bestAt
		}
		entries = append(entries, entry)
	}

	// Score descending; ties by earliest qualifying completion, then by
	// user ID so identical input always yields identical output.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].CompletedAt.Equal(entries[j].CompletedAt) {
			return entries[i].CompletedAt.Before(entries[j].CompletedAt)
		}
		return entries[i].UserID < entries[j].UserID
	})

	// Dense ranks: ties share a rank, the next distinct score increments by one
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			rank++
		}
		entries[i].Rank = rank
	}

	return entries, nil
}

func (s *Service) clampPage(limit, offset int) (int, int, error) {
	if limit < 0 || offset < 0 {
		return 0, 0, model.ErrInvalidPaging
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit, offset, nil
}

// cacheGet reads a key, treating backend failures as misses so a
// degraded cache never fails a read
func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, error) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, model.ErrCacheMiss) {
			s.logger.Warn("cache degraded, recomputing from durable data",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return nil, model.ErrCacheMiss
	}
	return data, nil
}

// cachePut stores a derived view, logging rather than propagating
// failures
func (s *Service) cachePut(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("failed to encode cache value",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Put(ctx, key, data, s.cfg.TTL); err != nil {
		s.logger.Warn("cache put failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

func pageOf(entries []model.LeaderboardEntry, limit, offset int) []model.LeaderboardEntry {
	if offset >= len(entries) {
		return []model.LeaderboardEntry{}
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}

func computeStats(gameID model.GameID, sessions []*model.Session, now time.Time) *model.GameStats {
	stats := &model.GameStats{
		GameID:      gameID,
		GeneratedAt: now,
	}
	if len(sessions) == 0 {
		return stats
	}

	players := make(map[model.UserID]struct{})
	scoreSum, timeSum := 0, 0
	bestTime := sessions[0].TimeElapsed

	for _, session := range sessions {
		players[session.UserID] = struct{}{}
		scoreSum += session.Score
		timeSum += session.TimeElapsed
		if session.Score > stats.HighScore {
			stats.HighScore = session.Score
		}
		if session.TimeElapsed < bestTime {
			bestTime = session.TimeElapsed
		}
	}

	stats.TotalSessions = len(sessions)
	stats.UniquePlayers = len(players)
	stats.AverageScore = float64(scoreSum) / float64(len(sessions))
	stats.AverageTime = float64(timeSum) / float64(len(sessions))
	stats.BestTime = bestTime
	return stats
}
