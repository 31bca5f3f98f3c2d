package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// The single mutex makes the start-session abandon+create step and the
// complete-session conditional update atomic, matching the guarantees
// the relational backend gets from transactions.
type Storage struct {
	mu sync.RWMutex

	sessions map[model.SessionID]*model.Session
	users    map[model.UserID]*model.User
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.SessionID]*model.Session),
		users:    make(map[model.UserID]*model.User),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) StartSession(ctx context.Context, session *model.Session, now time.Time) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var abandoned *model.Session
	for _, existing := range s.sessions {
		if existing.UserID == session.UserID && existing.State == model.SessionStateActive {
			completedAt := now
			existing.State = model.SessionStateAbandoned
			existing.CompletedAt = &completedAt
			abandoned = copySession(existing)
			break
		}
	}

	s.sessions[session.ID] = copySession(session)
	return abandoned, nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return copySession(session), nil
}

func (s *Storage) CompleteSession(ctx context.Context, id model.SessionID, userID model.UserID, score int, proofRef string, now time.Time) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, model.ErrSessionNotOwned
	}
	if session.State != model.SessionStateActive {
		return nil, model.ErrSessionNotActive
	}

	completedAt := now
	session.State = model.SessionStateCompleted
	session.Score = score
	session.ProofRef = proofRef
	session.TimeElapsed = int(now.Sub(session.StartedAt) / time.Second)
	session.CompletedAt = &completedAt

	return copySession(session), nil
}

func (s *Storage) CompletedSessions(ctx context.Context, gameID model.GameID, since time.Time) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Session
	for _, session := range s.sessions {
		if session.State != model.SessionStateCompleted {
			continue
		}
		if gameID != "" && session.GameID != gameID {
			continue
		}
		if !since.IsZero() && session.CompletedAt.Before(since) {
			continue
		}
		out = append(out, copySession(session))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	return out, nil
}

func (s *Storage) AddPoints(ctx context.Context, userID model.UserID, delta int, now time.Time) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		user = &model.User{ID: userID}
		s.users[userID] = user
	}
	user.Points += delta
	user.GamesPlayed++
	user.UpdatedAt = now

	copied := *user
	return &copied, nil
}

func (s *Storage) GetUser(ctx context.Context, userID model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// copySession returns a deep copy so callers can never mutate stored state
func copySession(s *model.Session) *model.Session {
	copied := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		copied.CompletedAt = &t
	}
	if s.Settings != nil {
		settings := make(map[string]any, len(s.Settings))
		for k, v := range s.Settings {
			settings[k] = v
		}
		copied.Settings = settings
	}
	return &copied
}
