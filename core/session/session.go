package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/core/token"
)

// Status describes the observable state of a session.
type Status string

const (
	// StatusActive marks a live session.
	StatusActive Status = "active"
	// StatusExpired is derived lazily from ExpiresAt, never stored as a terminal fact.
	StatusExpired Status = "expired"
	// StatusRevoked marks an explicitly retired session. Terminal.
	StatusRevoked Status = "revoked"
)

// Audit holds the session's audit metadata. The created block is immutable
// after construction; the updated block is stamped on every mutation.
type Audit struct {
	CreatedAt time.Time
	CreatedBy string
	CreatedIP string
	UpdatedAt time.Time
	UpdatedBy string
	UpdatedIP string
}

// Session is the aggregate holding one session's identity, tokens, expiry,
// audit metadata and status. The ID is immutable for the aggregate's lifetime.
// Guest sessions (UserID == uuid.Nil) are never persisted to durable storage.
type Session struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	GuestID string

	Access  token.AccessToken
	Refresh *token.RefreshToken
	CSRF    *token.CSRFToken

	// PrevRefreshHash keeps the digest of the refresh token rotated out last,
	// enabling one-shot reuse detection.
	PrevRefreshHash string

	ExpiresAt time.Time
	CreatedIP string
	LastIP    string

	// RawData is the framework-owned serialized session bag,
	// treated as an uninterpreted byte string.
	RawData []byte

	// RevokedAt is set exactly once; revocation is terminal.
	RevokedAt *time.Time

	// Version is the storage concurrency guard. Repositories may use it for
	// compare-and-swap saves; the core does not read-check-write it.
	Version int64

	Audit Audit

	isModified bool
}

// Params carries the inputs for constructing a new session.
type Params struct {
	UserID    uuid.UUID
	GuestID   string
	IP        string
	Actor     string
	ExpiresAt time.Time
}

// New creates a session for a registered user. The expiry must be strictly
// in the future and the network origin must be known.
func New(p Params) (Session, error) {
	if p.IP == "" {
		return Session{}, ErrMissingIP
	}
	if !p.ExpiresAt.After(time.Now()) {
		return Session{}, ErrPastExpiry
	}

	now := time.Now()
	return Session{
		ID:        uuid.New(),
		UserID:    p.UserID,
		GuestID:   p.GuestID,
		ExpiresAt: p.ExpiresAt,
		CreatedIP: p.IP,
		LastIP:    p.IP,
		Audit: Audit{
			CreatedAt: now,
			CreatedBy: p.Actor,
			CreatedIP: p.IP,
			UpdatedAt: now,
			UpdatedBy: p.Actor,
			UpdatedIP: p.IP,
		},
		isModified: true,
	}, nil
}

// NewGuest creates an ephemeral session for an unauthenticated visitor.
// Guest sessions take this factory path and are never saved through the repository.
func NewGuest(p Params) (Session, error) {
	p.UserID = uuid.Nil
	if p.GuestID == "" {
		p.GuestID = "g_" + uuid.NewString()
	}
	return New(p)
}

// IsGuest reports whether the session belongs to an unauthenticated visitor.
func (s Session) IsGuest() bool { return s.UserID == uuid.Nil }

// IsExpired reports whether the session has lapsed at the given instant.
func (s Session) IsExpired(now time.Time) bool { return now.After(s.ExpiresAt) }

// Status derives the session status at the given instant. Revocation is
// stored; expiry is computed lazily against ExpiresAt while the stored
// status is still active.
func (s Session) Status(now time.Time) Status {
	if s.RevokedAt != nil {
		return StatusRevoked
	}
	if s.IsExpired(now) {
		return StatusExpired
	}
	return StatusActive
}

// IsModified reports whether the session has unsaved changes.
func (s Session) IsModified() bool { return s.isModified }

// Revoke retires the session. Fails with ErrAlreadyRevoked on a second call.
func (s *Session) Revoke(actor, ip string) error {
	if s.RevokedAt != nil {
		return ErrAlreadyRevoked
	}
	now := time.Now()
	s.RevokedAt = &now
	s.stampUpdated(actor, ip)
	return nil
}

// Renew replaces the expiry and forces the session back to active, reviving a
// lapsed-but-not-revoked session for token refresh flows. The new expiry must
// be strictly in the future; revoked sessions stay revoked.
func (s *Session) Renew(newExpiry time.Time, actor, ip string) error {
	if s.RevokedAt != nil {
		return ErrAlreadyRevoked
	}
	if !newExpiry.After(time.Now()) {
		return ErrPastExpiry
	}
	s.ExpiresAt = newExpiry
	s.stampUpdated(actor, ip)
	return nil
}

// UpdateTokens atomically replaces all three tokens together with the session
// expiry. This is the single mutation path for both initial minting and
// rotation, so tokens and expiry can never disagree.
func (s *Session) UpdateTokens(access token.AccessToken, refresh *token.RefreshToken, csrf *token.CSRFToken, expiresAt time.Time, actor, ip string) error {
	if s.RevokedAt != nil {
		return ErrAlreadyRevoked
	}
	if !expiresAt.After(time.Now()) {
		return ErrPastExpiry
	}

	if s.Refresh != nil {
		s.PrevRefreshHash = s.Refresh.Hash()
	}
	s.Access = access
	s.Refresh = refresh
	s.CSRF = csrf
	s.ExpiresAt = expiresAt
	s.stampUpdated(actor, ip)
	return nil
}

// TouchIP records the network origin of the most recent activity.
func (s *Session) TouchIP(ip string) {
	if ip == "" || ip == s.LastIP {
		return
	}
	s.LastIP = ip
	s.stampUpdated(s.Audit.UpdatedBy, ip)
}

// DemoteToGuest strips a stale user identity, keeping the session usable as a
// guest session instead of failing the request.
func (s *Session) DemoteToGuest(guestID string) {
	if guestID == "" {
		guestID = "g_" + uuid.NewString()
	}
	s.UserID = uuid.Nil
	s.GuestID = guestID
	s.stampUpdated(guestID, s.LastIP)
}

// SetData replaces the opaque application-owned session payload.
func (s *Session) SetData(data []byte) {
	s.RawData = data
	s.isModified = true
}

func (s *Session) stampUpdated(actor, ip string) {
	s.Audit.UpdatedAt = time.Now()
	if actor != "" {
		s.Audit.UpdatedBy = actor
	}
	if ip != "" {
		s.Audit.UpdatedIP = ip
	}
	s.isModified = true
}
