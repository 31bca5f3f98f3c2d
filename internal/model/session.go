package model

import "time"

// SessionID uniquely identifies a game session
type SessionID string

// UserID uniquely identifies a user
type UserID string

// GameID uniquely identifies a game in the catalog
type GameID string

// SessionState represents the lifecycle phase of a session
type SessionState string

const (
	SessionStateActive    SessionState = "active"    // Attempt in progress
	SessionStateCompleted SessionState = "completed" // Score submitted
	SessionStateAbandoned SessionState = "abandoned" // Superseded by a newer attempt
)

// Session represents one play attempt by one user on one game.
//
// A user has at most one active session at any time: starting a new
// session abandons the prior active one as part of the same operation.
// A session is mutated exactly once after creation, either by score
// submission (-> completed) or by a subsequent session start for the
// same user (-> abandoned), and is immutable thereafter.
type Session struct {
	ID       SessionID
	UserID   UserID
	GameID   GameID
	State    SessionState
	Score    int
	Settings map[string]any

	// TimeElapsed is the play duration in seconds, reported on submission
	TimeElapsed int

	// ProofRef is an opaque reference into the external proof service
	ProofRef string

	StartedAt   time.Time
	CompletedAt *time.Time
}

// IsActive returns true if the session can still accept a score
func (s *Session) IsActive() bool {
	return s.State == SessionStateActive
}

// SubmissionResult is returned to the caller of a successful score submission
type SubmissionResult struct {
	Session       *Session
	PointsAwarded int
}
