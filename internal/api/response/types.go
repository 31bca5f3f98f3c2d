package response

import (
	"time"

	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/model"
)

// Session represents a game session in API responses
type Session struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	GameID      string         `json:"game_id"`
	State       string         `json:"state"`
	Score       int            `json:"score"`
	TimeElapsed int            `json:"time_elapsed"`
	Settings    map[string]any `json:"settings,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		ID:          string(s.ID),
		UserID:      string(s.UserID),
		GameID:      string(s.GameID),
		State:       string(s.State),
		Score:       s.Score,
		TimeElapsed: s.TimeElapsed,
		Settings:    s.Settings,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
	}
}

// SubmissionResult is the response for a successful score submission
type SubmissionResult struct {
	Session       Session `json:"session"`
	PointsAwarded int     `json:"points_awarded"`
}

// SubmissionResultFromModel converts a model.SubmissionResult
func SubmissionResultFromModel(r *model.SubmissionResult) SubmissionResult {
	return SubmissionResult{
		Session:       SessionFromModel(r.Session),
		PointsAwarded: r.PointsAwarded,
	}
}

// Leaderboard is a page of a ranking aggregate
type Leaderboard struct {
	Scope        string                   `json:"scope"`
	Period       string                   `json:"period"`
	Entries      []model.LeaderboardEntry `json:"entries"`
	TotalPlayers int                      `json:"total_players"`
	GeneratedAt  time.Time                `json:"generated_at"`
}

// LeaderboardFromModel converts a model.RankingAggregate page
func LeaderboardFromModel(a *model.RankingAggregate) Leaderboard {
	entries := a.Entries
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	return Leaderboard{
		Scope:        a.Scope.Scope(),
		Period:       string(a.Scope.Period),
		Entries:      entries,
		TotalPlayers: a.TotalPlayers,
		GeneratedAt:  a.GeneratedAt,
	}
}

// GameKind represents a catalog entry in API responses
type GameKind struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	MinScore    int    `json:"min_score"`
	MaxScore    int    `json:"max_score"`
	Aggregation string `json:"aggregation"`
}

// GameKindFromModel converts a games.Kind
func GameKindFromModel(k *games.Kind) GameKind {
	return GameKind{
		ID:          string(k.ID),
		Name:        k.Name,
		Category:    k.Category,
		Difficulty:  string(k.Difficulty),
		MinScore:    k.MinScore,
		MaxScore:    k.MaxScore,
		Aggregation: string(k.Aggregation),
	}
}
