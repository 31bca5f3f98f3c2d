package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/zkarcade/arena/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) newSession(id model.SessionID, userID model.UserID, gameID model.GameID) *model.Session {
	return &model.Session{
		ID:        id,
		UserID:    userID,
		GameID:    gameID,
		State:     model.SessionStateActive,
		StartedAt: s.now,
	}
}

func (s *StorageSuite) TestStartSessionPersists() {
	abandoned, err := s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)
	s.Require().NoError(err)
	s.Nil(abandoned)

	got, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(model.SessionStateActive, got.State)
	s.Equal(model.UserID("user-1"), got.UserID)
}

func (s *StorageSuite) TestStartSessionAbandonsPriorActive() {
	_, err := s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)
	s.Require().NoError(err)

	later := s.now.Add(time.Minute)
	abandoned, err := s.storage.StartSession(s.ctx, s.newSession("sess-2", "user-1", "zk-sudoku"), later)
	s.Require().NoError(err)
	s.Require().NotNil(abandoned)
	s.Equal(model.SessionID("sess-1"), abandoned.ID)
	s.Equal(model.SessionStateAbandoned, abandoned.State)
	s.Require().NotNil(abandoned.CompletedAt)
	s.Equal(later, *abandoned.CompletedAt)

	// Only the new session is active
	first, _ := s.storage.GetSession(s.ctx, "sess-1")
	second, _ := s.storage.GetSession(s.ctx, "sess-2")
	s.Equal(model.SessionStateAbandoned, first.State)
	s.Equal(model.SessionStateActive, second.State)
}

func (s *StorageSuite) TestStartSessionDoesNotTouchOtherUsers() {
	_, err := s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)
	s.Require().NoError(err)

	abandoned, err := s.storage.StartSession(s.ctx, s.newSession("sess-2", "user-2", "proof-puzzle"), s.now)
	s.Require().NoError(err)
	s.Nil(abandoned)

	first, _ := s.storage.GetSession(s.ctx, "sess-1")
	s.Equal(model.SessionStateActive, first.State)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestCompleteSessionSucceeds() {
	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)

	completedAt := s.now.Add(90 * time.Second)
	session, err := s.storage.CompleteSession(s.ctx, "sess-1", "user-1", 500, "proof-abc", completedAt)
	s.Require().NoError(err)

	s.Equal(model.SessionStateCompleted, session.State)
	s.Equal(500, session.Score)
	s.Equal("proof-abc", session.ProofRef)
	s.Equal(90, session.TimeElapsed)
	s.Require().NotNil(session.CompletedAt)
	s.Equal(completedAt, *session.CompletedAt)
}

func (s *StorageSuite) TestCompleteSessionExactlyOnce() {
	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)

	_, err := s.storage.CompleteSession(s.ctx, "sess-1", "user-1", 500, "", s.now)
	s.Require().NoError(err)

	_, err = s.storage.CompleteSession(s.ctx, "sess-1", "user-1", 999, "", s.now)
	s.ErrorIs(err, model.ErrSessionNotActive)

	// The durable score is from the first submission only
	got, _ := s.storage.GetSession(s.ctx, "sess-1")
	s.Equal(500, got.Score)
}

func (s *StorageSuite) TestCompleteSessionWrongOwner() {
	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)

	_, err := s.storage.CompleteSession(s.ctx, "sess-1", "user-2", 500, "", s.now)
	s.ErrorIs(err, model.ErrSessionNotOwned)

	got, _ := s.storage.GetSession(s.ctx, "sess-1")
	s.Equal(model.SessionStateActive, got.State)
	s.Equal(0, got.Score)
}

func (s *StorageSuite) TestCompleteSessionNotFound() {
	_, err := s.storage.CompleteSession(s.ctx, "missing", "user-1", 500, "", s.now)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestCompleteAbandonedSessionRejected() {
	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)
	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-2", "user-1", "proof-puzzle"), s.now.Add(time.Minute))

	_, err := s.storage.CompleteSession(s.ctx, "sess-1", "user-1", 500, "", s.now.Add(2*time.Minute))
	s.ErrorIs(err, model.ErrSessionNotActive)
}

func (s *StorageSuite) TestCompletedSessionsFilters() {
	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)
	_, _ = s.storage.CompleteSession(s.ctx, "sess-1", "user-1", 100, "", s.now.Add(time.Minute))

	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-2", "user-2", "zk-sudoku"), s.now)
	_, _ = s.storage.CompleteSession(s.ctx, "sess-2", "user-2", 200, "", s.now.Add(2*time.Minute))

	// Still-active session is excluded
	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-3", "user-3", "proof-puzzle"), s.now)

	all, err := s.storage.CompletedSessions(s.ctx, "", time.Time{})
	s.Require().NoError(err)
	s.Len(all, 2)
	// Newest first
	s.Equal(model.SessionID("sess-2"), all[0].ID)

	puzzleOnly, err := s.storage.CompletedSessions(s.ctx, "proof-puzzle", time.Time{})
	s.Require().NoError(err)
	s.Len(puzzleOnly, 1)
	s.Equal(model.SessionID("sess-1"), puzzleOnly[0].ID)

	recent, err := s.storage.CompletedSessions(s.ctx, "", s.now.Add(90*time.Second))
	s.Require().NoError(err)
	s.Len(recent, 1)
	s.Equal(model.SessionID("sess-2"), recent[0].ID)
}

func (s *StorageSuite) TestAddPointsCreatesAndIncrements() {
	user, err := s.storage.AddPoints(s.ctx, "user-1", 50, s.now)
	s.Require().NoError(err)
	s.Equal(50, user.Points)
	s.Equal(1, user.GamesPlayed)

	user, err = s.storage.AddPoints(s.ctx, "user-1", 70, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(120, user.Points)
	s.Equal(2, user.GamesPlayed)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestReturnedSessionsAreCopies() {
	_, _ = s.storage.StartSession(s.ctx, s.newSession("sess-1", "user-1", "proof-puzzle"), s.now)

	got, _ := s.storage.GetSession(s.ctx, "sess-1")
	got.Score = 12345
	got.State = model.SessionStateCompleted

	fresh, _ := s.storage.GetSession(s.ctx, "sess-1")
	s.Equal(0, fresh.Score)
	s.Equal(model.SessionStateActive, fresh.State)
}
