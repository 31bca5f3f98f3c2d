package model

import (
	"fmt"
	"time"
)

// Room is a logical grouping of live subscribers for event fan-out.
// Rooms are scoped per-game (everyone watching a game's leaderboard)
// or per-user (a user's personal event stream).
type Room string

// GameRoom returns the room for viewers of one game
func GameRoom(gameID GameID) Room {
	return Room(fmt.Sprintf("game:%s", gameID))
}

// UserRoom returns a user's personal room
func UserRoom(userID UserID) Room {
	return Room(fmt.Sprintf("user:%s", userID))
}

// EventType identifies the type of a live event
type EventType string

const (
	EventScoreSubmitted EventType = "score-submitted"
	EventRankChanged    EventType = "rank-changed"
)

// Event is a rank-affecting notification pushed to live subscribers.
// Delivery is at-most-once and best-effort: a missed event is recovered
// by the next leaderboard read, never replayed.
type Event struct {
	Type      EventType `json:"type"`
	UserID    UserID    `json:"user_id"`
	GameID    GameID    `json:"game_id"`
	NewScore  int       `json:"new_score"`
	NewRank   int       `json:"new_rank,omitempty"` // 0 when not yet recomputed
	Timestamp time.Time `json:"timestamp"`
}
