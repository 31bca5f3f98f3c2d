package games

import (
	"sort"

	"github.com/zkarcade/arena/internal/model"
)

// Difficulty grades a game for points scaling
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Aggregation selects how a user's sessions reduce to one leaderboard score
type Aggregation string

const (
	// AggregationBest ranks users by their single best score in the window
	AggregationBest Aggregation = "best"
	// AggregationCumulative ranks users by the sum of their scores in the window
	AggregationCumulative Aggregation = "cumulative"
)

// SettingsValidator checks game-specific session settings before a
// session starts. A nil validator accepts anything.
type SettingsValidator func(settings map[string]any) error

// PointsRule converts a submitted score into ledger points
type PointsRule func(score int) int

// Kind describes one game in the catalog. Each kind owns its own
// settings validation, score range, aggregation and points rules,
// looked up by ID rather than switched over.
type Kind struct {
	ID          model.GameID
	Name        string
	Category    string
	Difficulty  Difficulty
	MinScore    int
	MaxScore    int
	Aggregation Aggregation

	ValidateSettings SettingsValidator
	Points           PointsRule
}

// ScoreInRange returns true if the score is within the kind's declared range
func (k *Kind) ScoreInRange(score int) bool {
	return score >= k.MinScore && score <= k.MaxScore
}

// Registry is the lookup table of game kinds
type Registry struct {
	kinds map[model.GameID]*Kind
}

// NewRegistry creates a registry with the given kinds
func NewRegistry(kinds ...*Kind) *Registry {
	r := &Registry{kinds: make(map[model.GameID]*Kind, len(kinds))}
	for _, k := range kinds {
		r.kinds[k.ID] = k
	}
	return r
}

// Get returns the kind for a game ID
func (r *Registry) Get(id model.GameID) (*Kind, error) {
	k, ok := r.kinds[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return k, nil
}

// List returns all kinds ordered by ID
func (r *Registry) List() []*Kind {
	out := make([]*Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks settings for a game kind, treating a nil validator
// as accept-all
func (r *Registry) Validate(id model.GameID, settings map[string]any) (*Kind, error) {
	k, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if k.ValidateSettings != nil {
		if err := k.ValidateSettings(settings); err != nil {
			return nil, err
		}
	}
	return k, nil
}
