package model

import "time"

// User holds the durable per-user ranking state.
//
// Points is a monotonically non-decreasing cumulative total fed by the
// points rule of each completed session's game kind. It is never
// decremented by the engine.
type User struct {
	ID          UserID
	Points      int
	GamesPlayed int
	UpdatedAt   time.Time
}
