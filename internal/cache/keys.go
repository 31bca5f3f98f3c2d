package cache

import (
	"fmt"

	"github.com/zkarcade/arena/internal/model"
)

// Key prefix for all ranking cache entries
const keyPrefix = "arena"

// LeaderboardKey returns the cache key for a ranking aggregate
func LeaderboardKey(scope model.ScopeKey) string {
	if scope.GameID == "" {
		return fmt.Sprintf("%s:lb:global:%s", keyPrefix, scope.Period)
	}
	return fmt.Sprintf("%s:lb:game:%s:%s", keyPrefix, scope.GameID, scope.Period)
}

// UserRankKey returns the cache key for a user's rank snapshot within a
// scope ("global" or a game ID)
func UserRankKey(userID model.UserID, scope string) string {
	return fmt.Sprintf("%s:rank:%s:%s", keyPrefix, userID, scope)
}

// GameStatsKey returns the cache key for a game's stats summary
func GameStatsKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:stats:game:%s", keyPrefix, gameID)
}

// GlobalLeaderboardPattern matches the global aggregates for all periods
func GlobalLeaderboardPattern() string {
	return fmt.Sprintf("%s:lb:global:*", keyPrefix)
}

// GameLeaderboardPattern matches one game's aggregates for all periods
func GameLeaderboardPattern(gameID model.GameID) string {
	return fmt.Sprintf("%s:lb:game:%s:*", keyPrefix, gameID)
}

// UserRankPattern matches one user's rank snapshots across all scopes
func UserRankPattern(userID model.UserID) string {
	return fmt.Sprintf("%s:rank:%s:*", keyPrefix, userID)
}
