package session

import (
	"context"
	"log/slog"

	"github.com/zkarcade/arena/internal/dependencies/clock"
	"github.com/zkarcade/arena/internal/dependencies/random"
	"github.com/zkarcade/arena/internal/games"
	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/storage"
)

// Controller owns the session lifecycle. It is the only component that
// writes session records.
type Controller struct {
	storage  storage.Storage
	registry *games.Registry
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	registry *games.Registry,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		registry: registry,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "session")),
	}
}

// Start creates a new active session for the user, abandoning any prior
// active session for that user as part of the same storage operation.
func (c *Controller) Start(ctx context.Context, userID model.UserID, gameID model.GameID, settings map[string]any) (*model.Session, error) {
	if _, err := c.registry.Validate(gameID, settings); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:        model.SessionID(c.random.UUID()),
		UserID:    userID,
		GameID:    gameID,
		State:     model.SessionStateActive,
		Settings:  settings,
		StartedAt: now,
	}

	abandoned, err := c.storage.StartSession(ctx, session, now)
	if err != nil {
		c.logger.Error("failed to start session",
			slog.String("user_id", string(userID)),
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if abandoned != nil {
		c.logger.Info("abandoned prior active session",
			slog.String("user_id", string(userID)),
			slog.String("abandoned_session_id", string(abandoned.ID)),
		)
	}
	c.logger.Info("session started",
		slog.String("session_id", string(session.ID)),
		slog.String("user_id", string(userID)),
		slog.String("game_id", string(gameID)),
	)

	return session, nil
}

// Get retrieves a session by ID
func (c *Controller) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// Complete transitions a session to completed with the given score.
// The underlying storage update is conditional on state = active, so of
// two concurrent submissions exactly one succeeds and the other fails
// with ErrSessionNotActive. Never retried: a conditional-update failure
// is reported, since a retry could double-apply a submission.
func (c *Controller) Complete(ctx context.Context, id model.SessionID, userID model.UserID, score int, proofRef string) (*model.Session, error) {
	session, err := c.storage.CompleteSession(ctx, id, userID, score, proofRef, c.clock.Now())
	if err != nil {
		return nil, err
	}

	c.logger.Info("session completed",
		slog.String("session_id", string(id)),
		slog.String("user_id", string(userID)),
		slog.Int("score", score),
	)
	return session, nil
}
