package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema creates the table used by PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS web_sessions (
	id         TEXT PRIMARY KEY,
	token      TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// pgConn is the subset of *pgxpool.Pool used by PostgresStore.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the web_sessions table. Expired rows are
// filtered on read and deleted by Purge.
type PostgresStore struct {
	db  pgConn
	ttl string // interval literal, e.g. "168 hours"
}

// NewPostgresStore returns a PostgresStore; ttlHours bounds how long an
// untouched row stays valid.
func NewPostgresStore(db pgConn, ttlHours int) *PostgresStore {
	return &PostgresStore{db: db, ttl: fmt.Sprintf("%d hours", ttlHours)}
}

// Migrate creates the sessions table if needed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("session migrate: %w", err)
	}
	return nil
}

// Load reads the session record for id.
func (s *PostgresStore) Load(ctx context.Context, id string) (State, error) {
	var st State
	var role string
	err := s.db.QueryRow(ctx,
		`SELECT token, role FROM web_sessions
		 WHERE id = $1 AND updated_at > NOW() - $2::interval`,
		id, s.ttl,
	).Scan(&st.Credential, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("session load: %w", err)
	}
	st.Role = Role(role)
	return st, nil
}

// Save upserts the record and bumps updated_at.
func (s *PostgresStore) Save(ctx context.Context, id string, st State) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO web_sessions (id, token, role, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET token = EXCLUDED.token, role = EXCLUDED.role, updated_at = NOW()`,
		id, st.Credential, string(st.Role),
	)
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear deletes the record for id.
func (s *PostgresStore) Clear(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM web_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM web_sessions WHERE updated_at <= NOW() - $1::interval`, s.ttl)
	if err != nil {
		return 0, fmt.Errorf("session purge: %w", err)
	}
	return tag.RowsAffected(), nil
}
