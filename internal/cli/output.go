package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case SubmissionResult:
		o.printSubmissionResult(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case UserRank:
		o.printUserRank(v)
	case GameKind:
		o.printGameKind(v)
	case []GameKind:
		for i, k := range v {
			if i > 0 {
				fmt.Println()
			}
			o.printGameKind(k)
		}
	case GameStats:
		o.printGameStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Session response type (matches API)
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

// SubmissionResult response type
type SubmissionResult struct {
	Session       Session `json:"session"`
	PointsAwarded int     `json:"points_awarded"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Score       int    `json:"score"`
	GamesPlayed int    `json:"games_played"`
}

// Leaderboard response type
type Leaderboard struct {
	Scope        string             `json:"scope"`
	Period       string             `json:"period"`
	Entries      []LeaderboardEntry `json:"entries"`
	TotalPlayers int                `json:"total_players"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// UserRank response type
type UserRank struct {
	UserID       string `json:"user_id"`
	Scope        string `json:"scope"`
	Rank         int    `json:"rank"`
	Score        int    `json:"score"`
	TotalPlayers int    `json:"total_players"`
}

// GameKind response type
type GameKind struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	MinScore    int    `json:"min_score"`
	MaxScore    int    `json:"max_score"`
	Aggregation string `json:"aggregation"`
}

// GameStats response type
type GameStats struct {
	GameID        string  `json:"game_id"`
	TotalSessions int     `json:"total_sessions"`
	UniquePlayers int     `json:"unique_players"`
	AverageScore  float64 `json:"average_score"`
	HighScore     int     `json:"high_score"`
	AverageTime   float64 `json:"average_time"`
	BestTime      int     `json:"best_time"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Game: %s\n", s.GameID)
	fmt.Printf("State: %s\n", s.State)
	if s.State != "active" {
		fmt.Printf("Score: %d\n", s.Score)
		fmt.Printf("Time: %ds\n", s.TimeElapsed)
	}
	fmt.Printf("Started: %s\n", s.StartedAt.Format(time.RFC3339))
	if s.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", s.CompletedAt.Format(time.RFC3339))
	}
}

func (o *Output) printSubmissionResult(r SubmissionResult) {
	o.printSession(r.Session)
	fmt.Printf("Points Awarded: %d\n", r.PointsAwarded)
}

func (o *Output) printLeaderboard(l Leaderboard) {
	fmt.Printf("Leaderboard: %s (%s)\n", l.Scope, l.Period)
	fmt.Printf("Players: %d\n", l.TotalPlayers)
	for _, e := range l.Entries {
		fmt.Printf("  %3d. %s - %d (%d games)\n", e.Rank, e.UserID, e.Score, e.GamesPlayed)
	}
}

func (o *Output) printUserRank(r UserRank) {
	fmt.Printf("User: %s\n", r.UserID)
	fmt.Printf("Scope: %s\n", r.Scope)
	if r.Rank == 0 {
		fmt.Println("Rank: unranked")
	} else {
		fmt.Printf("Rank: %d of %d\n", r.Rank, r.TotalPlayers)
		fmt.Printf("Score: %d\n", r.Score)
	}
}

func (o *Output) printGameKind(k GameKind) {
	fmt.Printf("Game: %s (%s)\n", k.Name, k.ID)
	fmt.Printf("Category: %s\n", k.Category)
	fmt.Printf("Difficulty: %s\n", k.Difficulty)
	fmt.Printf("Score Range: %d-%d\n", k.MinScore, k.MaxScore)
	fmt.Printf("Aggregation: %s\n", k.Aggregation)
}

func (o *Output) printGameStats(s GameStats) {
	fmt.Printf("Game: %s\n", s.GameID)
	fmt.Printf("Sessions: %d\n", s.TotalSessions)
	fmt.Printf("Players: %d\n", s.UniquePlayers)
	fmt.Printf("Average Score: %.1f\n", s.AverageScore)
	fmt.Printf("High Score: %d\n", s.HighScore)
	fmt.Printf("Average Time: %.1fs\n", s.AverageTime)
	fmt.Printf("Best Time: %ds\n", s.BestTime)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
