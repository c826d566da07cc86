package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/token"
)

// Repository is the durable pgx implementation of session.Repository. Token
// columns hold digests only; raw secrets never reach the database. Saves are
// version-guarded: a concurrent writer loses with session.ErrVersionConflict.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a session repository over the pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the sessions table and its indexes.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.querier(ctx).Exec(ctx, sessionsSchema)
	return err
}

// querier returns the context transaction when one is attached, the pool
// otherwise, so repository calls participate in the caller's transaction.
func (r *Repository) querier(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const sessionColumns = `id, user_id, guest_id,
	access_hash, access_expires_at, refresh_hash, refresh_expires_at,
	csrf_hash, csrf_expires_at, prev_refresh_hash,
	expires_at, created_ip, last_ip, data, revoked_at, version,
	created_at, created_by, updated_at, updated_by, updated_ip`

// GetByID loads a session aggregate; a missing row is (nil, nil).
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	row := r.querier(ctx).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// GetByAccessToken resolves a session by access token digest.
func (r *Repository) GetByAccessToken(ctx context.Context, tokenHash string) (*session.Session, error) {
	row := r.querier(ctx).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE access_hash = $1`, tokenHash)
	return scanSession(row)
}

// GetByRefreshToken resolves a session by refresh token digest, matching the
// current and the rotated-out hash so reuse detection can see stale tokens.
func (r *Repository) GetByRefreshToken(ctx context.Context, tokenHash string) (*session.Session, error) {
	row := r.querier(ctx).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_hash = $1 OR prev_refresh_hash = $1`, tokenHash)
	return scanSession(row)
}

// Save inserts a new aggregate or updates an existing one under a version
// guard. A lost guard surfaces as session.ErrVersionConflict.
func (r *Repository) Save(ctx context.Context, s *session.Session) error {
	q := r.querier(ctx)

	var userID any
	if s.UserID != uuid.Nil {
		userID = s.UserID
	}
	accessHash, accessExp := tokenHashExpiry(s.Access)
	refreshHash, refreshExp := refreshHashExpiry(s.Refresh)
	csrfHash, csrfExp := csrfHashExpiry(s.CSRF)

	if s.Version == 0 {
		tag, err := q.Exec(ctx, `
			INSERT INTO sessions (`+sessionColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,1,$16,$17,$18,$19,$20)`,
			s.ID, userID, s.GuestID,
			accessHash, accessExp, refreshHash, refreshExp,
			csrfHash, csrfExp, s.PrevRefreshHash,
			s.ExpiresAt, s.CreatedIP, s.LastIP, s.RawData, s.RevokedAt,
			s.Audit.CreatedAt, s.Audit.CreatedBy, s.Audit.UpdatedAt, s.Audit.UpdatedBy, s.Audit.UpdatedIP)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return session.ErrVersionConflict
		}
		s.Version = 1
		return nil
	}

	tag, err := q.Exec(ctx, `
		UPDATE sessions SET
			user_id = $2, guest_id = $3,
			access_hash = $4, access_expires_at = $5,
			refresh_hash = $6, refresh_expires_at = $7,
			csrf_hash = $8, csrf_expires_at = $9,
			prev_refresh_hash = $10,
			expires_at = $11, last_ip = $12, data = $13, revoked_at = $14,
			version = version + 1,
			updated_at = $15, updated_by = $16, updated_ip = $17
		WHERE id = $1 AND version = $18`,
		s.ID, userID, s.GuestID,
		accessHash, accessExp, refreshHash, refreshExp,
		csrfHash, csrfExp, s.PrevRefreshHash,
		s.ExpiresAt, s.LastIP, s.RawData, s.RevokedAt,
		s.Audit.UpdatedAt, s.Audit.UpdatedBy, s.Audit.UpdatedIP, s.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrVersionConflict
	}
	s.Version++
	return nil
}

// Revoke retires a session, reporting false when it was already revoked or
// absent.
func (r *Repository) Revoke(ctx context.Context, id uuid.UUID, actor, reason string) (bool, error) {
	tag, err := r.querier(ctx).Exec(ctx, `
		UPDATE sessions SET
			revoked_at = now(), revoked_by = $2, revoke_reason = $3,
			version = version + 1, updated_at = now(), updated_by = $2
		WHERE id = $1 AND revoked_at IS NULL`,
		id, actor, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExpired garbage-collects lapsed rows and returns the deleted count.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.querier(ctx).Exec(ctx,
		`DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpdateMetadata stamps last-seen activity without touching tokens or expiry.
func (r *Repository) UpdateMetadata(ctx context.Context, id uuid.UUID, meta session.Metadata) error {
	_, err := r.querier(ctx).Exec(ctx, `
		UPDATE sessions SET last_ip = $2, updated_by = $3, updated_ip = $2, updated_at = now()
		WHERE id = $1`,
		id, meta.LastIP, meta.Actor)
	return err
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		s           session.Session
		userID      *uuid.UUID
		accessHash  string
		accessExp   *time.Time
		refreshHash string
		refreshExp  *time.Time
		csrfHash    string
		csrfExp     *time.Time
	)

	err := row.Scan(
		&s.ID, &userID, &s.GuestID,
		&accessHash, &accessExp, &refreshHash, &refreshExp,
		&csrfHash, &csrfExp, &s.PrevRefreshHash,
		&s.ExpiresAt, &s.CreatedIP, &s.LastIP, &s.RawData, &s.RevokedAt, &s.Version,
		&s.Audit.CreatedAt, &s.Audit.CreatedBy, &s.Audit.UpdatedAt, &s.Audit.UpdatedBy, &s.Audit.UpdatedIP)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if userID != nil {
		s.UserID = *userID
	}
	if accessHash != "" {
		access, err := token.RestoreAccessTokenHash(accessHash, deref(accessExp))
		if err != nil {
			return nil, err
		}
		s.Access = access
	}
	if refreshHash != "" {
		refresh, err := token.RestoreRefreshTokenHash(refreshHash, deref(refreshExp))
		if err != nil {
			return nil, err
		}
		s.Refresh = &refresh
	}
	if csrfHash != "" {
		csrf, err := token.RestoreCSRFTokenHash(csrfHash, deref(csrfExp))
		if err != nil {
			return nil, err
		}
		s.CSRF = &csrf
	}

	return &s, nil
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func tokenHashExpiry(t token.AccessToken) (string, *time.Time) {
	if t.IsZero() {
		return "", nil
	}
	exp := t.ExpiresAt()
	return t.Hash(), &exp
}

func refreshHashExpiry(t *token.RefreshToken) (string, *time.Time) {
	if t == nil {
		return "", nil
	}
	exp := t.ExpiresAt()
	return t.Hash(), &exp
}

func csrfHashExpiry(t *token.CSRFToken) (string, *time.Time) {
	if t == nil {
		return "", nil
	}
	exp := t.ExpiresAt()
	return t.Hash(), &exp
}
