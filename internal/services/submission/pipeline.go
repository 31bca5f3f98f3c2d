package submission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zkarcade/arena/internal/dependencies/clock"
	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/services/session"
	"github.com/zkarcade/arena/internal/storage"
	"github.com/zkarcade/arena/internal/tasks"
)

// Invalidator drops the cached views a completed session could affect
// and serves rank reads. Implemented by the ranking service.
type Invalidator interface {
	InvalidateForSubmission(ctx context.Context, userID model.UserID, gameID model.GameID) error
	UserRank(ctx context.Context, userID model.UserID, gameID model.GameID) (*model.UserRankSnapshot, error)
}

// Publisher pushes events to live fan-out rooms. Implemented by the
// live broadcaster.
type Publisher interface {
	Publish(room model.Room, event model.Event)
}

// AchievementNotifier is the downstream points/achievement collaborator.
// The pipeline notifies it of each completed session and never waits on
// or depends on its result.
type AchievementNotifier interface {
	SessionCompleted(ctx context.Context, userID model.UserID, gameID model.GameID, score int) error
}

// NopNotifier is an AchievementNotifier that does nothing
type NopNotifier struct{}

// SessionCompleted implements AchievementNotifier
func (NopNotifier) SessionCompleted(ctx context.Context, userID model.UserID, gameID model.GameID, score int) error {
	return nil
}

// Pipeline applies one score to one session. The durable active ->
// completed transition is the only step whose failure fails the caller;
// everything after it is an independent, failure-isolated side effect.
type Pipeline struct {
	storage  storage.Storage
	sessions *session.Controller
	registry *games.Registry

	invalidator Invalidator
	publisher   Publisher
	notifier    AchievementNotifier

	runner tasks.Runner
	clock  clock.Clock
	logger *slog.Logger
}

// NewPipeline creates a new submission Pipeline
func NewPipeline(
	storage storage.Storage,
	sessions *session.Controller,
	registry *games.Registry,
	invalidator Invalidator,
	publisher Publisher,
	notifier AchievementNotifier,
	runner tasks.Runner,
	clock clock.Clock,
	logger *slog.Logger,
) *Pipeline {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Pipeline{
		storage:     storage,
		sessions:    sessions,
		registry:    registry,
		invalidator: invalidator,
		publisher:   publisher,
		notifier:    notifier,
		runner:      runner,
		clock:       clock,
		logger:      logger.With(slog.String("component", "submission")),
	}
}

// Submit validates and applies one score to one session.
//
// Validation failures and session-state conflicts are reported to the
// caller with no partial effects. Once the durable transition succeeds,
// the submission is successful regardless of what the side effects do:
// a failed invalidation or publish degrades to stale reads until the
// next invalidation or TTL expiry, never to a rolled-back score.
func (p *Pipeline) Submit(ctx context.Context, sessionID model.SessionID, userID model.UserID, score int, proofRef string) (*model.SubmissionResult, error) {
	current, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kind, err := p.registry.Get(current.GameID)
	if err != nil {
		return nil, err
	}
	if !kind.ScoreInRange(score) {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]",
			model.ErrScoreOutOfRange, score, kind.MinScore, kind.MaxScore)
	}

	// The one hard ordering guarantee: a single conditional transition,
	// so a concurrent duplicate submission is reliably rejected.
	completed, err := p.sessions.Complete(ctx, sessionID, userID, score, proofRef)
	if err != nil {
		return nil, err
	}

	points := kind.Points(score)
	p.dispatchSideEffects(completed, points)

	return &model.SubmissionResult{
		Session:       completed,
		PointsAwarded: points,
	}, nil
}

// dispatchSideEffects runs the post-commit steps as independent tasks.
// They may execute concurrently with each other and never block the
// caller's response.
func (p *Pipeline) dispatchSideEffects(completed *model.Session, points int) {
	userID := completed.UserID
	gameID := completed.GameID
	score := completed.Score

	p.runner.Go("points-ledger", func(ctx context.Context) error {
		_, err := p.storage.AddPoints(ctx, userID, points, p.clock.Now())
		return err
	})

	p.runner.Go("achievement-notify", func(ctx context.Context) error {
		return p.notifier.SessionCompleted(ctx, userID, gameID, score)
	})

	p.runner.Go("rank-refresh", func(ctx context.Context) error {
		// Announce the submission immediately; the rank-changed event
		// follows once the invalidated scopes have been recomputed.
		event := model.Event{
			Type:      model.EventScoreSubmitted,
			UserID:    userID,
			GameID:    gameID,
			NewScore:  score,
			Timestamp: p.clock.Now(),
		}
		p.publisher.Publish(model.GameRoom(gameID), event)
		p.publisher.Publish(model.UserRoom(userID), event)

		if err := p.invalidator.InvalidateForSubmission(ctx, userID, gameID); err != nil {
			return err
		}

		// Recompute the submitter's rank for the push payload. NewRank
		// stays 0 (omitted) if the read-through fails; subscribers fall
		// back to the query path for authoritative state.
		rankEvent := model.Event{
			Type:      model.EventRankChanged,
			UserID:    userID,
			GameID:    gameID,
			NewScore:  score,
			Timestamp: p.clock.Now(),
		}
		if snapshot, err := p.invalidator.UserRank(ctx, userID, gameID); err == nil {
			rankEvent.NewRank = snapshot.Rank
		} else {
			p.logger.Warn("rank recompute for event failed",
				slog.String("user_id", string(userID)),
				slog.String("error", err.Error()))
		}
		p.publisher.Publish(model.GameRoom(gameID), rankEvent)
		p.publisher.Publish(model.UserRoom(userID), rankEvent)
		return nil
	})
}
