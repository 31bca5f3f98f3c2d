package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is an independent side effect dispatched after a durable
// transition commits. Its error is logged, never propagated.
type Task func(ctx context.Context) error

// Runner dispatches post-commit side effects with failure isolation:
// a failing or panicking task cannot affect its caller or sibling tasks.
type Runner interface {
	// Go dispatches a named task. It never blocks the caller.
	Go(name string, task Task)
}

// AsyncRunner runs tasks on their own goroutines with a bounded timeout
type AsyncRunner struct {
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsyncRunner creates an AsyncRunner. Tasks receive a context that
// expires after timeout.
func NewAsyncRunner(timeout time.Duration, logger *slog.Logger) *AsyncRunner {
	return &AsyncRunner{
		logger:  logger.With(slog.String("component", "tasks")),
		timeout: timeout,
	}
}

// Ensure AsyncRunner implements Runner
var _ Runner = (*AsyncRunner)(nil)

// Go dispatches the task on a new goroutine
func (r *AsyncRunner) Go(name string, task Task) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.run(ctx, name, task)
	}()
}

// Wait blocks until all dispatched tasks have finished. Used during
// shutdown.
func (r *AsyncRunner) Wait() {
	r.wg.Wait()
}

func (r *AsyncRunner) run(ctx context.Context, name string, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("task panicked",
				slog.String("task", name),
				slog.Any("panic", rec))
		}
	}()

	if err := task(ctx); err != nil {
		r.logger.Warn("task failed",
			slog.String("task", name),
			slog.String("error", err.Error()))
	}
}

// SyncRunner runs tasks inline. Used in tests so side effects are
// observable immediately, with the same failure isolation as the
// async runner.
type SyncRunner struct {
	logger *slog.Logger

	mu     sync.Mutex
	Failed []string // Names of tasks that returned an error or panicked
}

// NewSyncRunner creates a SyncRunner
func NewSyncRunner(logger *slog.Logger) *SyncRunner {
	return &SyncRunner{logger: logger}
}

// Ensure SyncRunner implements Runner
var _ Runner = (*SyncRunner)(nil)

// Go runs the task inline, recording failures instead of propagating them
func (r *SyncRunner) Go(name string, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("task panicked",
				slog.String("task", name),
				slog.Any("panic", rec))
			r.record(name)
		}
	}()

	if err := task(context.Background()); err != nil {
		r.logger.Warn("task failed",
			slog.String("task", name),
			slog.String("error", err.Error()))
		r.record(name)
	}
}

func (r *SyncRunner) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed = append(r.Failed, name)
}
