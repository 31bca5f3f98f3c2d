package storage

import (
	"context"
	"time"

	"github.com/zkarcade/arena/internal/model"
)

// Storage defines the interface for the durable store. It is the single
// source of truth for sessions and the points ledger; every cached view
// is reconstructable from it.
type Storage interface {
	// StartSession persists a new active session, atomically abandoning
	// any prior active session for the same user (completed_at = now on
	// the abandoned record). Returns the abandoned session, if any.
	StartSession(ctx context.Context, session *model.Session, now time.Time) (*model.Session, error)

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)

	// CompleteSession transitions a session from active to completed as
	// a single conditional update guarded on state = active, so two
	// concurrent submissions resolve to one winner. Fails with
	// ErrSessionNotFound, ErrSessionNotOwned or ErrSessionNotActive.
	CompleteSession(ctx context.Context, id model.SessionID, userID model.UserID, score int, proofRef string, now time.Time) (*model.Session, error)

	// CompletedSessions returns completed sessions, newest first,
	// optionally filtered by game (empty gameID = all games) and by
	// completion time (zero since = all time).
	CompletedSessions(ctx context.Context, gameID model.GameID, since time.Time) ([]*model.Session, error)

	// AddPoints increments a user's points ledger and games-played
	// count, creating the user record if absent. The delta is never
	// negative.
	AddPoints(ctx context.Context, userID model.UserID, delta int, now time.Time) (*model.User, error)

	// GetUser retrieves a user's ledger record
	GetUser(ctx context.Context, userID model.UserID) (*model.User, error)
}
