package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkarcade/arena/internal/model"
)

func TestRegistryGet(t *testing.T) {
	r := DefaultRegistry()

	kind, err := r.Get("proof-puzzle")
	require.NoError(t, err)
	assert.Equal(t, model.GameID("proof-puzzle"), kind.ID)
	assert.Equal(t, AggregationBest, kind.Aggregation)

	_, err = r.Get("no-such-game")
	assert.ErrorIs(t, err, model.ErrGameNotFound)
}

func TestRegistryListOrderedByID(t *testing.T) {
	kinds := DefaultRegistry().List()

	require.Len(t, kinds, 4)
	for i := 1; i < len(kinds); i++ {
		assert.Less(t, kinds[i-1].ID, kinds[i].ID)
	}
}

func TestScoreInRange(t *testing.T) {
	kind := &Kind{MinScore: 0, MaxScore: 5000}

	assert.True(t, kind.ScoreInRange(0))
	assert.True(t, kind.ScoreInRange(5000))
	assert.False(t, kind.ScoreInRange(-1))
	assert.False(t, kind.ScoreInRange(5001))
}

func TestDefaultPointsRule(t *testing.T) {
	kind, err := DefaultRegistry().Get("proof-puzzle")
	require.NoError(t, err)

	assert.Equal(t, 50, kind.Points(500))
	assert.Equal(t, 70, kind.Points(700))
	// Integer division truncates
	assert.Equal(t, 0, kind.Points(9))
	assert.Equal(t, 0, kind.Points(0))
}

func TestValidateSettings(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name     string
		gameID   model.GameID
		settings map[string]any
		wantErr  error
	}{
		{
			name:     "nil settings accepted",
			gameID:   "proof-puzzle",
			settings: nil,
		},
		{
			name:     "setting absent accepted",
			gameID:   "proof-puzzle",
			settings: map[string]any{"theme": "dark"},
		},
		{
			name:     "int in range",
			gameID:   "proof-puzzle",
			settings: map[string]any{"grid_size": 5},
		},
		{
			name:     "json decoded float in range",
			gameID:   "proof-puzzle",
			settings: map[string]any{"grid_size": float64(5)},
		},
		{
			name:     "below minimum",
			gameID:   "proof-puzzle",
			settings: map[string]any{"grid_size": 2},
			wantErr:  model.ErrInvalidSettings,
		},
		{
			name:     "above maximum",
			gameID:   "zk-sudoku",
			settings: map[string]any{"difficulty_level": 5},
			wantErr:  model.ErrInvalidSettings,
		},
		{
			name:     "not a number",
			gameID:   "proof-racing",
			settings: map[string]any{"laps": "many"},
			wantErr:  model.ErrInvalidSettings,
		},
		{
			name:     "no validator accepts anything",
			gameID:   "memory-matrix",
			settings: map[string]any{"whatever": []int{1, 2, 3}},
		},
		{
			name:    "unknown game",
			gameID:  "no-such-game",
			wantErr: model.ErrGameNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Validate(tt.gameID, tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
