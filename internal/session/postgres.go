package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS web_sessions (
		key        TEXT PRIMARY KEY,
		payload    BYTEA NOT NULL,
		expires_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS web_sessions_expires_at_idx ON web_sessions (expires_at);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the sessions table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate web_sessions: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `
		SELECT payload
		FROM web_sessions
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`

	var payload []byte
	if err := s.pool.QueryRow(ctx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const query = `
		INSERT INTO web_sessions (key, payload, expires_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`

	var expiresAt *time.Time
	if ttl > 0 {
		at := time.Now().UTC().Add(ttl)
		expiresAt = &at
	}

	_, err := s.pool.Exec(ctx, query, key, value, expiresAt)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM web_sessions WHERE key = $1`
	_, err := s.pool.Exec(ctx, query, key)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	const query = `DELETE FROM web_sessions WHERE expires_at IS NOT NULL AND expires_at <= NOW()`
	cmd, err := s.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
