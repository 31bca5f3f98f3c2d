package model

import (
	"fmt"
	"time"
)

// Period is the time window a ranking aggregate covers
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all-time"
)

// Periods lists all supported periods
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}

// Valid returns true if the period is one of the supported values
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	}
	return false
}

// WindowStart returns the earliest completion time included in the
// period's window relative to now. All-time returns the zero time.
func (p Period) WindowStart(now time.Time) time.Time {
	switch p {
	case PeriodDaily:
		return now.Add(-24 * time.Hour)
	case PeriodWeekly:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// GlobalScope is the scope name for cross-game rankings
const GlobalScope = "global"

// ScopeKey identifies one ranking aggregate: a game (or the global
// scope) paired with a period.
type ScopeKey struct {
	GameID GameID // Empty for the global scope
	Period Period
}

// Scope returns the scope component of the key
func (k ScopeKey) Scope() string {
	if k.GameID == "" {
		return GlobalScope
	}
	return string(k.GameID)
}

// String renders the key for logging and cache keys
func (k ScopeKey) String() string {
	return fmt.Sprintf("%s:%s", k.Scope(), k.Period)
}

// LeaderboardEntry is one ranked row in an aggregate
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      UserID    `json:"user_id"`
	Score       int       `json:"score"`
	GamesPlayed int       `json:"games_played"`
	CompletedAt time.Time `json:"completed_at"` // Tiebreak instant
}

// RankingAggregate is a derived, cached leaderboard view. It is never
// authoritative: it reflects durable data as of GeneratedAt and is
// discarded once its TTL elapses.
type RankingAggregate struct {
	Scope        ScopeKey           `json:"scope"`
	Entries      []LeaderboardEntry `json:"entries"`
	TotalPlayers int                `json:"total_players"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// UserRankSnapshot is a derived, cached view of one user's position
// within a scope. Rank 0 means the user has no qualifying result.
type UserRankSnapshot struct {
	UserID       UserID    `json:"user_id"`
	Scope        string    `json:"scope"` // GameID or "global"
	Rank         int       `json:"rank"`
	Score        int       `json:"score"`
	TotalPlayers int       `json:"total_players"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// GameStats is a derived, cached summary of one game's completed sessions
type GameStats struct {
	GameID        GameID    `json:"game_id"`
	TotalSessions int       `json:"total_sessions"`
	UniquePlayers int       `json:"unique_players"`
	AverageScore  float64   `json:"average_score"`
	HighScore     int       `json:"high_score"`
	AverageTime   float64   `json:"average_time"`
	BestTime      int       `json:"best_time"`
	GeneratedAt   time.Time `json:"generated_at"`
}
