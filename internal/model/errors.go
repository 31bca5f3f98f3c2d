package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotOwned  = errors.New("session belongs to another user")
	ErrSessionNotActive = errors.New("session is not active")

	// Game catalog errors
	ErrGameNotFound = errors.New("game not found")

	// Validation errors
	ErrInvalidSettings = errors.New("invalid game settings")
	ErrScoreOutOfRange = errors.New("score is outside the game's score range")
	ErrInvalidPeriod   = errors.New("invalid leaderboard period")
	ErrInvalidPaging   = errors.New("invalid limit or offset")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Infrastructure errors
	ErrStorageUnavailable = errors.New("durable store unavailable")
	ErrCacheMiss          = errors.New("cache miss")
)
