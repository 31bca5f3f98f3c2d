package games

import (
	"fmt"

	"github.com/zkarcade/arena/internal/model"
)

// Points-per-score divisor shared by the default kinds: one ledger
// point per ten points of raw score.
const pointsDivisor = 10

func defaultPoints(score int) int {
	return score / pointsDivisor
}

// boundedIntSetting validates an optional integer setting within [min, max]
func boundedIntSetting(key string, min, max int) SettingsValidator {
	return func(settings map[string]any) error {
		raw, ok := settings[key]
		if !ok {
			return nil
		}
		// JSON numbers decode as float64
		var v int
		switch n := raw.(type) {
		case int:
			v = n
		case float64:
			v = int(n)
		default:
			return fmt.Errorf("%w: %s must be a number", model.ErrInvalidSettings, key)
		}
		if v < min || v > max {
			return fmt.Errorf("%w: %s must be between %d and %d", model.ErrInvalidSettings, key, min, max)
		}
		return nil
	}
}

// DefaultKinds returns the built-in game catalog
func DefaultKinds() []*Kind {
	return []*Kind{
		{
			ID:               "proof-puzzle",
			Name:             "Proof Puzzle",
			Category:         "puzzle",
			Difficulty:       DifficultyMedium,
			MinScore:         0,
			MaxScore:         10000,
			Aggregation:      AggregationBest,
			ValidateSettings: boundedIntSetting("grid_size", 3, 9),
			Points:           defaultPoints,
		},
		{
			ID:               "zk-sudoku",
			Name:             "ZK Sudoku",
			Category:         "puzzle",
			Difficulty:       DifficultyHard,
			MinScore:         0,
			MaxScore:         5000,
			Aggregation:      AggregationBest,
			ValidateSettings: boundedIntSetting("difficulty_level", 1, 4),
			Points:           defaultPoints,
		},
		{
			ID:          "memory-matrix",
			Name:        "Memory Matrix",
			Category:    "arcade",
			Difficulty:  DifficultyEasy,
			MinScore:    0,
			MaxScore:    100000,
			Aggregation: AggregationCumulative,
			Points:      defaultPoints,
		},
		{
			ID:               "proof-racing",
			Name:             "Proof Racing",
			Category:         "racing",
			Difficulty:       DifficultyExpert,
			MinScore:         0,
			MaxScore:         50000,
			Aggregation:      AggregationBest,
			ValidateSettings: boundedIntSetting("laps", 1, 20),
			Points:           defaultPoints,
		},
	}
}

// DefaultRegistry returns a registry populated with the built-in catalog
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultKinds()...)
}
