package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/token"
)

// Identity names the principal a token minting request is for. A Nil UserID
// marks a guest; guest sessions take the ephemeral factory path and are never
// persisted through the repository.
type Identity struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	GuestID   string
	IP        string
	Actor     string
}

// Manager creates, validates, refreshes and revokes session tokens.
// Validation lookups follow a soft-fail contract: a missing, expired, revoked
// or mismatched token yields a nil session with a nil error; callers treat
// absence as "unauthenticated", not as a system fault.
type Manager struct {
	repo   Repository
	issuer *token.Issuer
	cfg    Config
	log    *slog.Logger
	now    func() time.Time
}

// WithLogger sets the manager's logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the manager's time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a session token manager.
func NewManager(repo Repository, issuer *token.Issuer, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		repo:   repo,
		issuer: issuer,
		cfg:    cfg,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateTokensForSession mints a fresh access/refresh/csrf token set for the
// identified session. Guests get an ephemeral aggregate; registered users must
// already have a persisted aggregate, which is rotated via UpdateTokens and
// saved. Fails with ErrSessionNotFound when the persisted aggregate is absent.
func (m *Manager) CreateTokensForSession(ctx context.Context, identity Identity) (*Session, error) {
	access, refresh, csrf, err := m.mintTokens()
	if err != nil {
		return nil, err
	}
	expiry := m.now().Add(m.cfg.TTL)

	if identity.UserID == uuid.Nil {
		sess, err := NewGuest(Params{
			GuestID:   identity.GuestID,
			IP:        identity.IP,
			Actor:     identity.Actor,
			ExpiresAt: expiry,
		})
		if err != nil {
			return nil, err
		}
		if identity.SessionID != uuid.Nil {
			sess.ID = identity.SessionID
		}
		if err := sess.UpdateTokens(access, &refresh, &csrf, expiry, identity.Actor, identity.IP); err != nil {
			return nil, err
		}
		return &sess, nil
	}

	sess, err := m.repo.GetByID(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if err := sess.UpdateTokens(access, &refresh, &csrf, expiry, identity.Actor, identity.IP); err != nil {
		return nil, err
	}
	if err := m.repo.Save(ctx, sess); err != nil {
		return nil, errors.Join(ErrSaveSession, err)
	}
	return sess, nil
}

// ValidateAccessToken resolves the session authorized by the presented access
// token. Unknown, expired, revoked and hash-mismatched tokens all yield
// (nil, nil); only infrastructure failures surface as errors.
func (m *Manager) ValidateAccessToken(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, nil
	}

	sess, err := m.repo.GetByAccessToken(ctx, token.HashString(raw))
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	now := m.now()
	if sess.Status(now) != StatusActive {
		return nil, nil
	}
	// Rotated concurrently: session found via an index that is already stale.
	if !sess.Access.Matches(raw) || sess.Access.IsExpired(now) {
		return nil, nil
	}

	return sess, nil
}

// ValidateRefreshToken resolves the session owning the presented refresh
// token under the same soft-fail contract, additionally honoring the refresh
// token's own expiry, which may outlive the session expiry.
func (m *Manager) ValidateRefreshToken(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, nil
	}

	sess, err := m.repo.GetByRefreshToken(ctx, token.HashString(raw))
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.RevokedAt != nil || sess.Refresh == nil {
		return nil, nil
	}
	if !sess.Refresh.Matches(raw) || sess.Refresh.IsExpired(m.now()) {
		return nil, nil
	}

	return sess, nil
}

// RefreshSession runs the full refresh flow: validate the presented refresh
// token, renew the session expiry (reactivating a lapsed session within the
// configured grace window) and rotate all tokens atomically. Reuse of a
// rotated-out refresh token fails hard with ErrTokenAlreadyUsed.
func (m *Manager) RefreshSession(ctx context.Context, raw, ip string) (*Session, error) {
	if raw == "" {
		return nil, nil
	}

	hash := token.HashString(raw)
	sess, err := m.repo.GetByRefreshToken(ctx, hash)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.RevokedAt != nil || sess.Refresh == nil {
		return nil, nil
	}

	now := m.now()
	if !sess.Refresh.Matches(raw) {
		if sess.PrevRefreshHash == hash {
			m.log.WarnContext(ctx, "refresh token reuse detected",
				logger.SessionID(sess.ID), logger.ClientIP(ip))
			return nil, ErrTokenAlreadyUsed
		}
		return nil, nil
	}
	if sess.Refresh.IsExpired(now) {
		return nil, nil
	}

	if grace := m.cfg.RenewalGracePeriod; grace > 0 && sess.IsExpired(now) && now.After(sess.ExpiresAt.Add(grace)) {
		return nil, ErrRenewalWindowExceeded
	}

	access, refresh, csrf, err := m.mintTokens()
	if err != nil {
		return nil, err
	}
	expiry := now.Add(m.cfg.TTL)
	if err := sess.Renew(expiry, sess.Audit.UpdatedBy, ip); err != nil {
		return nil, err
	}
	if err := sess.UpdateTokens(access, &refresh, &csrf, expiry, sess.Audit.UpdatedBy, ip); err != nil {
		return nil, err
	}
	if err := m.repo.Save(ctx, sess); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			m.log.WarnContext(ctx, "concurrent session rotation lost version guard",
				logger.SessionID(sess.ID))
		}
		return nil, errors.Join(ErrSaveSession, err)
	}

	return sess, nil
}

// RevokeSession retires the identified session. A "nothing to revoke" case is
// reported as false, never as an error.
func (m *Manager) RevokeSession(ctx context.Context, id uuid.UUID, actor, reason string) bool {
	ok, err := m.repo.Revoke(ctx, id, actor, reason)
	if err != nil {
		m.log.ErrorContext(ctx, "session revocation failed",
			logger.SessionID(id), logger.Error(err))
		return false
	}
	return ok
}

// CleanupExpired garbage-collects lapsed sessions through the repository.
// Intended for a scheduled caller; the core never deletes on its own.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx)
}

// TTL returns the configured session time-to-live.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

func (m *Manager) mintTokens() (token.AccessToken, token.RefreshToken, token.CSRFToken, error) {
	access, err := m.issuer.IssueAccess()
	if err != nil {
		return token.AccessToken{}, token.RefreshToken{}, token.CSRFToken{}, err
	}
	refresh, err := m.issuer.IssueRefresh()
	if err != nil {
		return token.AccessToken{}, token.RefreshToken{}, token.CSRFToken{}, err
	}
	csrf, err := m.issuer.IssueCSRF()
	if err != nil {
		return token.AccessToken{}, token.RefreshToken{}, token.CSRFToken{}, err
	}
	return access, refresh, csrf, nil
}
