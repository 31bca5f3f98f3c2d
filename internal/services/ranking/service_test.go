package ranking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	memorycache "github.com/zkarcade/arena/internal/cache/memory"
	"github.com/zkarcade/arena/internal/dependencies/mocks"
	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/storage/memory"
	"github.com/zkarcade/arena/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	cache   *memorycache.Cache
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context

	sessionSeq int
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.cache = memorycache.New(s.clock)
	s.service = New(s.storage, s.cache, games.DefaultRegistry(), s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
	s.sessionSeq = 0
}

// complete seeds one completed session with the given completion time
func (s *ServiceSuite) complete(userID, gameID string, score int, completedAt time.Time) {
	s.sessionSeq++
	session := &model.Session{
		ID:        model.SessionID(fmt.Sprintf("sess-%d", s.sessionSeq)),
		UserID:    model.UserID(userID),
		GameID:    model.GameID(gameID),
		State:     model.SessionStateActive,
		StartedAt: completedAt.Add(-time.Minute),
	}
	_, err := s.storage.StartSession(s.ctx, session, session.StartedAt)
	s.Require().NoError(err)
	_, err = s.storage.CompleteSession(s.ctx, session.ID, session.UserID, score, "", completedAt)
	s.Require().NoError(err)
}

// Global leaderboard tests

func (s *ServiceSuite) TestGlobalLeaderboardAppliesPointsRule() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-2*time.Hour))
	s.complete("user-b", "proof-puzzle", 700, now.Add(-time.Hour))

	page, err := s.service.GlobalLeaderboard(s.ctx, model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.Equal("global", page.Scope.Scope())
	s.Equal(2, page.TotalPlayers)
	s.Require().Len(page.Entries, 2)
	s.Equal(model.UserID("user-b"), page.Entries[0].UserID)
	s.Equal(70, page.Entries[0].Score)
	s.Equal(1, page.Entries[0].Rank)
	s.Equal(model.UserID("user-a"), page.Entries[1].UserID)
	s.Equal(50, page.Entries[1].Score)
	s.Equal(2, page.Entries[1].Rank)
}

func (s *ServiceSuite) TestGlobalLeaderboardSumsPointsAcrossGames() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-3*time.Hour))
	s.complete("user-a", "zk-sudoku", 300, now.Add(-2*time.Hour))

	page, err := s.service.GlobalLeaderboard(s.ctx, model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.Require().Len(page.Entries, 1)
	s.Equal(80, page.Entries[0].Score)
	s.Equal(2, page.Entries[0].GamesPlayed)
}

func (s *ServiceSuite) TestGlobalLeaderboardInvalidPeriod() {
	_, err := s.service.GlobalLeaderboard(s.ctx, "fortnightly", 0, 0)
	s.Require().ErrorIs(err, model.ErrInvalidPeriod)
}

// Game leaderboard tests

func (s *ServiceSuite) TestGameLeaderboardBestAggregation() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 400, now.Add(-3*time.Hour))
	s.complete("user-a", "proof-puzzle", 900, now.Add(-2*time.Hour))
	s.complete("user-b", "proof-puzzle", 700, now.Add(-time.Hour))

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.Require().Len(page.Entries, 2)
	s.Equal(model.UserID("user-a"), page.Entries[0].UserID)
	s.Equal(900, page.Entries[0].Score)
	s.Equal(2, page.Entries[0].GamesPlayed)
	s.Equal(model.UserID("user-b"), page.Entries[1].UserID)
	s.Equal(700, page.Entries[1].Score)
}

func (s *ServiceSuite) TestGameLeaderboardCumulativeAggregation() {
	now := s.clock.Now()
	s.complete("user-a", "memory-matrix", 400, now.Add(-3*time.Hour))
	s.complete("user-a", "memory-matrix", 500, now.Add(-2*time.Hour))
	s.complete("user-b", "memory-matrix", 700, now.Add(-time.Hour))

	page, err := s.service.GameLeaderboard(s.ctx, "memory-matrix", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.Require().Len(page.Entries, 2)
	s.Equal(model.UserID("user-a"), page.Entries[0].UserID)
	s.Equal(900, page.Entries[0].Score)
	s.Equal(model.UserID("user-b"), page.Entries[1].UserID)
	s.Equal(700, page.Entries[1].Score)
}

func (s *ServiceSuite) TestGameLeaderboardExcludesOtherGames() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-2*time.Hour))
	s.complete("user-b", "zk-sudoku", 900, now.Add(-time.Hour))

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.Require().Len(page.Entries, 1)
	s.Equal(model.UserID("user-a"), page.Entries[0].UserID)
}

func (s *ServiceSuite) TestGameLeaderboardUnknownGame() {
	_, err := s.service.GameLeaderboard(s.ctx, "no-such-game", model.PeriodAllTime, 0, 0)
	s.Require().ErrorIs(err, model.ErrGameNotFound)
}

// Tiebreak and ranking tests

func (s *ServiceSuite) TestTiedScoresShareDenseRanks() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 700, now.Add(-3*time.Hour))
	s.complete("user-b", "proof-puzzle", 700, now.Add(-2*time.Hour))
	s.complete("user-c", "proof-puzzle", 500, now.Add(-time.Hour))

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.Require().Len(page.Entries, 3)
	// Earlier completion orders first within the tie
	s.Equal(model.UserID("user-a"), page.Entries[0].UserID)
	s.Equal(1, page.Entries[0].Rank)
	s.Equal(model.UserID("user-b"), page.Entries[1].UserID)
	s.Equal(1, page.Entries[1].Rank)
	s.Equal(model.UserID("user-c"), page.Entries[2].UserID)
	s.Equal(2, page.Entries[2].Rank)
}

func (s *ServiceSuite) TestIdenticalTiesOrderByUserID() {
	now := s.clock.Now()
	at := now.Add(-time.Hour)
	s.complete("user-b", "proof-puzzle", 700, at)
	s.complete("user-a", "proof-puzzle", 700, at)

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.Require().Len(page.Entries, 2)
	s.Equal(model.UserID("user-a"), page.Entries[0].UserID)
	s.Equal(model.UserID("user-b"), page.Entries[1].UserID)
}

// Period window tests

func (s *ServiceSuite) TestDailyPeriodExcludesOldSessions() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 900, now.Add(-48*time.Hour))
	s.complete("user-b", "proof-puzzle", 500, now.Add(-time.Hour))

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodDaily, 0, 0)
	s.Require().NoError(err)

	s.Require().Len(page.Entries, 1)
	s.Equal(model.UserID("user-b"), page.Entries[0].UserID)

	allTime, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)
	s.Len(allTime.Entries, 2)
}

// Cache behavior tests

func (s *ServiceSuite) TestLeaderboardIsCachedWithinTTL() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-time.Hour))

	first, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	// New durable data is not visible until the TTL elapses
	s.complete("user-b", "proof-puzzle", 900, now)
	s.clock.Advance(time.Minute)

	second, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)
	s.Equal(first.GeneratedAt, second.GeneratedAt)
	s.Len(second.Entries, 1)
}

func (s *ServiceSuite) TestLeaderboardRecomputedAfterTTL() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-time.Hour))

	_, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.complete("user-b", "proof-puzzle", 900, now)
	s.clock.Advance(DefaultConfig().TTL + time.Second)

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)
	s.Len(page.Entries, 2)
}

func (s *ServiceSuite) TestRecomputationIsDeterministic() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 700, now.Add(-2*time.Hour))
	s.complete("user-b", "proof-puzzle", 700, now.Add(-2*time.Hour))
	s.complete("user-c", "proof-puzzle", 500, now.Add(-time.Hour))

	first, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	// Drop the cache and recompute from the same durable data
	s.Require().NoError(s.cache.Invalidate(s.ctx, "*"))

	second, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)
	s.Equal(first.Entries, second.Entries)
	s.Equal(first.TotalPlayers, second.TotalPlayers)
}

func (s *ServiceSuite) TestInvalidateForSubmissionDropsAffectedViews() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-time.Hour))

	_, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)
	_, err = s.service.GlobalLeaderboard(s.ctx, model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)

	s.Require().NoError(s.service.InvalidateForSubmission(s.ctx, "user-a", "proof-puzzle"))

	// Fresh durable data is visible immediately after invalidation
	s.complete("user-b", "proof-puzzle", 900, now)
	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)
	s.Len(page.Entries, 2)
}

func (s *ServiceSuite) TestInvalidateForSubmissionKeepsOtherGames() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-time.Hour))
	s.complete("user-b", "zk-sudoku", 600, now.Add(-time.Hour))

	_, err := s.service.GameLeaderboard(s.ctx, "zk-sudoku", model.PeriodAllTime, 0, 0)
	s.Require().NoError(err)
	before := s.cache.Len()

	s.Require().NoError(s.service.InvalidateForSubmission(s.ctx, "user-a", "proof-puzzle"))
	s.Equal(before, s.cache.Len())
}

// Pagination tests

func (s *ServiceSuite) TestLeaderboardPagination() {
	now := s.clock.Now()
	for i := 0; i < 5; i++ {
		s.complete(fmt.Sprintf("user-%d", i), "proof-puzzle", 100*(i+1), now.Add(-time.Hour))
	}

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 2, 1)
	s.Require().NoError(err)

	s.Equal(5, page.TotalPlayers)
	s.Require().Len(page.Entries, 2)
	s.Equal(model.UserID("user-3"), page.Entries[0].UserID)
	s.Equal(2, page.Entries[0].Rank)
	s.Equal(model.UserID("user-2"), page.Entries[1].UserID)
}

func (s *ServiceSuite) TestOffsetBeyondEndReturnsEmptyPage() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-time.Hour))

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 10, 100)
	s.Require().NoError(err)
	s.Empty(page.Entries)
	s.Equal(1, page.TotalPlayers)
}

func (s *ServiceSuite) TestNegativePagingRejected() {
	_, err := s.service.GlobalLeaderboard(s.ctx, model.PeriodAllTime, -1, 0)
	s.Require().ErrorIs(err, model.ErrInvalidPaging)

	_, err = s.service.GlobalLeaderboard(s.ctx, model.PeriodAllTime, 0, -1)
	s.Require().ErrorIs(err, model.ErrInvalidPaging)
}

func (s *ServiceSuite) TestLimitClampedToMax() {
	cfg := DefaultConfig()
	cfg.MaxLimit = 2
	s.service = New(s.storage, s.cache, games.DefaultRegistry(), s.clock, cfg, testutil.NopLogger())

	now := s.clock.Now()
	for i := 0; i < 4; i++ {
		s.complete(fmt.Sprintf("user-%d", i), "proof-puzzle", 100*(i+1), now.Add(-time.Hour))
	}

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 10, 0)
	s.Require().NoError(err)
	s.Len(page.Entries, 2)
}

// Aggregate cap tests

func (s *ServiceSuite) TestAggregateTruncatedToMaxEntries() {
	cfg := DefaultConfig()
	cfg.MaxEntries = 2
	s.service = New(s.storage, s.cache, games.DefaultRegistry(), s.clock, cfg, testutil.NopLogger())

	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 900, now.Add(-time.Hour))
	s.complete("user-b", "proof-puzzle", 700, now.Add(-time.Hour))
	s.complete("user-c", "proof-puzzle", 500, now.Add(-time.Hour))

	page, err := s.service.GameLeaderboard(s.ctx, "proof-puzzle", model.PeriodAllTime, 10, 0)
	s.Require().NoError(err)
	s.Len(page.Entries, 2)
	s.Equal(3, page.TotalPlayers)
}

func (s *ServiceSuite) TestUserRankAccurateBeyondAggregateCap() {
	cfg := DefaultConfig()
	cfg.MaxEntries = 2
	s.service = New(s.storage, s.cache, games.DefaultRegistry(), s.clock, cfg, testutil.NopLogger())

	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 900, now.Add(-time.Hour))
	s.complete("user-b", "proof-puzzle", 700, now.Add(-time.Hour))
	s.complete("user-c", "proof-puzzle", 500, now.Add(-time.Hour))

	snapshot, err := s.service.UserRank(s.ctx, "user-c", "proof-puzzle")
	s.Require().NoError(err)
	s.Equal(3, snapshot.Rank)
	s.Equal(500, snapshot.Score)
	s.Equal(3, snapshot.TotalPlayers)
}

// UserRank tests

func (s *ServiceSuite) TestUserRankGlobalScope() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-2*time.Hour))
	s.complete("user-b", "proof-puzzle", 700, now.Add(-time.Hour))

	snapshot, err := s.service.UserRank(s.ctx, "user-a", "")
	s.Require().NoError(err)

	s.Equal("global", snapshot.Scope)
	s.Equal(2, snapshot.Rank)
	s.Equal(50, snapshot.Score)
	s.Equal(2, snapshot.TotalPlayers)
}

func (s *ServiceSuite) TestUserRankUnrankedUser() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 500, now.Add(-time.Hour))

	snapshot, err := s.service.UserRank(s.ctx, "user-z", "proof-puzzle")
	s.Require().NoError(err)
	s.Equal(0, snapshot.Rank)
	s.Equal(1, snapshot.TotalPlayers)
}

func (s *ServiceSuite) TestUserRankUnknownGame() {
	_, err := s.service.UserRank(s.ctx, "user-a", "no-such-game")
	s.Require().ErrorIs(err, model.ErrGameNotFound)
}

// GameStats tests

func (s *ServiceSuite) TestGameStats() {
	now := s.clock.Now()
	s.complete("user-a", "proof-puzzle", 400, now.Add(-3*time.Hour))
	s.complete("user-a", "proof-puzzle", 800, now.Add(-2*time.Hour))
	s.complete("user-b", "proof-puzzle", 600, now.Add(-time.Hour))

	stats, err := s.service.GameStats(s.ctx, "proof-puzzle")
	s.Require().NoError(err)

	s.Equal(model.GameID("proof-puzzle"), stats.GameID)
	s.Equal(3, stats.TotalSessions)
	s.Equal(2, stats.UniquePlayers)
	s.Equal(600.0, stats.AverageScore)
	s.Equal(800, stats.HighScore)
	s.Equal(60, stats.BestTime)
	s.Equal(60.0, stats.AverageTime)
}

func (s *ServiceSuite) TestGameStatsNoSessions() {
	stats, err := s.service.GameStats(s.ctx, "proof-puzzle")
	s.Require().NoError(err)
	s.Equal(0, stats.TotalSessions)
	s.Equal(0, stats.UniquePlayers)
}

func (s *ServiceSuite) TestGameStatsUnknownGame() {
	_, err := s.service.GameStats(s.ctx, "no-such-game")
	s.Require().ErrorIs(err, model.ErrGameNotFound)
}
