package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sessionkit/core/sessionstore"
)

// Store is the durable sessionstore.Store tier over the session_payloads
// table. Payloads are opaque strings scoped by the namespace handed to Open.
type Store struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewStore creates a payload store over the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open ensures the payload schema exists and pins the namespace. The path
// argument is meaningless for a database tier and ignored.
func (s *Store) Open(ctx context.Context, _ string, name string) error {
	s.namespace = name
	_, err := s.pool.Exec(ctx, payloadsSchema)
	return err
}

// Close is a no-op; the pool is owned by the caller.
func (s *Store) Close() error { return nil }

// Read returns the payload for id, or an empty string when absent.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	var data string
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM session_payloads WHERE namespace = $1 AND key = $2`,
		s.namespace, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return data, nil
}

// Write upserts the payload, refreshing its idle timestamp.
func (s *Store) Write(ctx context.Context, id, data string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_payloads (namespace, key, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		s.namespace, id, data)
	return err
}

// Destroy removes the payload, reporting whether a row was deleted.
func (s *Store) Destroy(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM session_payloads WHERE namespace = $1 AND key = $2`,
		s.namespace, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GC deletes payloads idle longer than maxLifetime and returns the count.
func (s *Store) GC(ctx context.Context, maxLifetime time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM session_payloads WHERE namespace = $1 AND updated_at < $2`,
		s.namespace, time.Now().Add(-maxLifetime))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ sessionstore.Store = (*Store)(nil)
