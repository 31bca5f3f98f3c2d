package postgres

import "context"

// Schema creates the tables the engine owns. Idempotent so it can run
// on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	game_id       TEXT NOT NULL,
	state         TEXT NOT NULL,
	score         INTEGER NOT NULL DEFAULT 0,
	time_elapsed  INTEGER NOT NULL DEFAULT 0,
	settings      JSONB NOT NULL DEFAULT '{}',
	proof_ref     TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_active
	ON sessions (user_id) WHERE state = 'active';
CREATE INDEX IF NOT EXISTS idx_sessions_completed
	ON sessions (game_id, completed_at) WHERE state = 'completed';

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	points        INTEGER NOT NULL DEFAULT 0,
	games_played  INTEGER NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the engine's tables if they do not exist
func (s *Storage) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}
