package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zkarcade/arena/internal/model"
	"github.com/zkarcade/arena/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
	cfg  Config
}

// New creates a new Postgres storage instance
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
	}

	return &Storage{pool: pool, cfg: cfg}, nil
}

// NewWithPool creates a Postgres storage with an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool, cfg Config) *Storage {
	return &Storage{pool: pool, cfg: cfg}
}

// Close releases the connection pool
func (s *Storage) Close() {
	s.pool.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

const sessionColumns = `id, user_id, game_id, state, score, time_elapsed, settings, proof_ref, started_at, completed_at`

func (s *Storage) StartSession(ctx context.Context, session *model.Session, now time.Time) (*model.Session, error) {
	settings, err := json.Marshal(session.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	// Abandoning the prior active session and creating the new one is a
	// single transaction so there is no window with two active sessions.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE sessions
		SET state = $1, completed_at = $2
		WHERE user_id = $3 AND state = $4
		RETURNING `+sessionColumns,
		model.SessionStateAbandoned, now, session.UserID, model.SessionStateActive)

	abandoned, err := scanSession(row)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, unavailable(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id, user_id, game_id, state, score, time_elapsed, settings, proof_ref, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		session.ID, session.UserID, session.GameID, session.State,
		session.Score, session.TimeElapsed, settings, session.ProofRef, session.StartedAt)
	if err != nil {
		return nil, unavailable(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, unavailable(err)
	}
	return abandoned, nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, unavailable(err)
	}
	return session, nil
}

func (s *Storage) CompleteSession(ctx context.Context, id model.SessionID, userID model.UserID, score int, proofRef string, now time.Time) (*model.Session, error) {
	// Single conditional update guarded on state = active: of two
	// concurrent submissions exactly one matches the guard.
	row := s.pool.QueryRow(ctx, `
		UPDATE sessions
		SET state = $1,
		    score = $2,
		    proof_ref = $3,
		    completed_at = $4,
		    time_elapsed = EXTRACT(EPOCH FROM ($4::timestamptz - started_at))::int
		WHERE id = $5 AND user_id = $6 AND state = $7
		RETURNING `+sessionColumns,
		model.SessionStateCompleted, score, proofRef, now, id, userID, model.SessionStateActive)

	session, err := scanSession(row)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, unavailable(err)
	}

	// Guard did not match; re-read to report which precondition failed
	existing, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, model.ErrSessionNotOwned
	}
	return nil, model.ErrSessionNotActive
}

func (s *Storage) CompletedSessions(ctx context.Context, gameID model.GameID, since time.Time) ([]*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE state = $1`
	args := []any{model.SessionStateCompleted}

	if gameID != "" {
		args = append(args, gameID)
		query += fmt.Sprintf(" AND game_id = $%d", len(args))
	}
	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(" AND completed_at >= $%d", len(args))
	}
	query += " ORDER BY completed_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var out []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, unavailable(err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (s *Storage) AddPoints(ctx context.Context, userID model.UserID, delta int, now time.Time) (*model.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, points, games_played, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (id) DO UPDATE
		SET points = users.points + EXCLUDED.points,
		    games_played = users.games_played + 1,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, points, games_played, updated_at`,
		userID, delta, now)

	user, err := scanUser(row)
	if err != nil {
		return nil, unavailable(err)
	}
	return user, nil
}

func (s *Storage) GetUser(ctx context.Context, userID model.UserID) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, points, games_played, updated_at FROM users WHERE id = $1`, userID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, unavailable(err)
	}
	return user, nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var (
		session  model.Session
		settings []byte
	)
	err := row.Scan(&session.ID, &session.UserID, &session.GameID, &session.State,
		&session.Score, &session.TimeElapsed, &settings, &session.ProofRef,
		&session.StartedAt, &session.CompletedAt)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &session.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}
	return &session, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	if err := row.Scan(&user.ID, &user.Points, &user.GamesPlayed, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

// unavailable maps a driver error to the retryable storage error
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
}
