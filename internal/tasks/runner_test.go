package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkarcade/arena/internal/testutil"
)

func TestAsyncRunnerRunsTask(t *testing.T) {
	r := NewAsyncRunner(time.Second, testutil.NopLogger())

	var ran atomic.Bool
	r.Go("test", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	r.Wait()
	assert.True(t, ran.Load())
}

func TestAsyncRunnerIsolatesFailures(t *testing.T) {
	r := NewAsyncRunner(time.Second, testutil.NopLogger())

	var ran atomic.Bool
	r.Go("failing", func(ctx context.Context) error {
		return errors.New("boom")
	})
	r.Go("panicking", func(ctx context.Context) error {
		panic("boom")
	})
	r.Go("healthy", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	// Wait must return despite the failure and the panic
	r.Wait()
	assert.True(t, ran.Load())
}

func TestAsyncRunnerBoundsTaskLifetime(t *testing.T) {
	r := NewAsyncRunner(10*time.Millisecond, testutil.NopLogger())

	var deadlineErr atomic.Value
	r.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		deadlineErr.Store(ctx.Err())
		return ctx.Err()
	})

	r.Wait()
	require.NotNil(t, deadlineErr.Load())
	assert.ErrorIs(t, deadlineErr.Load().(error), context.DeadlineExceeded)
}

func TestSyncRunnerRunsInline(t *testing.T) {
	r := NewSyncRunner(testutil.NopLogger())

	ran := false
	r.Go("test", func(ctx context.Context) error {
		ran = true
		return nil
	})

	assert.True(t, ran)
	assert.Empty(t, r.Failed)
}

func TestSyncRunnerRecordsFailures(t *testing.T) {
	r := NewSyncRunner(testutil.NopLogger())

	r.Go("failing", func(ctx context.Context) error {
		return errors.New("boom")
	})
	r.Go("panicking", func(ctx context.Context) error {
		panic("boom")
	})
	r.Go("healthy", func(ctx context.Context) error {
		return nil
	})

	assert.Equal(t, []string{"failing", "panicking"}, r.Failed)
}
