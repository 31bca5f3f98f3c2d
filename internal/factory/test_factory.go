package factory

import (
	"time"

	memorycache "github.com/zkarcade/arena/internal/cache/memory"
	"github.com/zkarcade/arena/internal/dependencies/mocks"
	"github.com/zkarcade/arena/internal/services/ranking"
	"github.com/zkarcade/arena/internal/storage/memory"
	"github.com/zkarcade/arena/internal/tasks"
	"github.com/zkarcade/arena/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// SyncRunner runs side effects inline so tests observe them
	// immediately
	SyncRunner *tasks.SyncRunner
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and inline side effect execution
func NewTestApp() *TestApp {
	logger := testutil.NopLogger()
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	runner := tasks.NewSyncRunner(logger)

	app := newWithDependencies(store, memorycache.New(mockClock), mockClock, mockRandom, ranking.DefaultConfig(), runner, nil, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		SyncRunner: runner,
	}
}
