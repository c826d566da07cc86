package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/core/token"
)

// Snapshot is the serialized form of a session carried in the keyed session
// store payload. Optional tokens may be absent; a snapshot with no tokens is
// valid and triggers minting in the coordinator.
type Snapshot struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	GuestID   string `json:"guest_id,omitempty"`

	AccessToken      string    `json:"access_token,omitempty"`
	AccessExpiresAt  time.Time `json:"access_expires_at,omitzero"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitzero"`
	CSRFToken        string    `json:"csrf_token,omitempty"`
	CSRFExpiresAt    time.Time `json:"csrf_expires_at,omitzero"`

	CreatedIP string    `json:"created_ip"`
	LastIP    string    `json:"last_ip,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`

	Data []byte `json:"data,omitempty"`
}

// Validate checks the snapshot's structural integrity, accumulating every
// failure reason instead of stopping at the first one.
func (sn Snapshot) Validate() error {
	var reasons []string

	if sn.SessionID == "" {
		reasons = append(reasons, "session_id is missing")
	} else if _, err := uuid.Parse(sn.SessionID); err != nil {
		reasons = append(reasons, "session_id is not a valid identifier")
	}

	if sn.UserID != "" {
		if _, err := uuid.Parse(sn.UserID); err != nil {
			reasons = append(reasons, "user_id is not a valid identifier")
		}
	} else if sn.GuestID == "" {
		reasons = append(reasons, "neither user_id nor guest_id is present")
	}

	if sn.CreatedIP == "" {
		reasons = append(reasons, "created_ip is missing")
	}
	if sn.ExpiresAt.IsZero() {
		reasons = append(reasons, "expires_at is missing")
	}

	if sn.AccessToken != "" && sn.AccessExpiresAt.IsZero() {
		reasons = append(reasons, "access_token has no expiry")
	}
	if sn.RefreshToken != "" && sn.RefreshExpiresAt.IsZero() {
		reasons = append(reasons, "refresh_token has no expiry")
	}
	if sn.CSRFToken != "" && sn.CSRFExpiresAt.IsZero() {
		reasons = append(reasons, "csrf_token has no expiry")
	}

	if len(reasons) > 0 {
		return InvalidSessionError{Reasons: reasons}
	}
	return nil
}

// HasTokens reports whether the snapshot already carries an access token.
func (sn Snapshot) HasTokens() bool { return sn.AccessToken != "" }

// Snapshot exports the session into its serialized form. Tokens restored from
// digests only have no raw secret and are omitted.
func (s Session) Snapshot() Snapshot {
	sn := Snapshot{
		SessionID: s.ID.String(),
		GuestID:   s.GuestID,
		CreatedIP: s.CreatedIP,
		LastIP:    s.LastIP,
		ExpiresAt: s.ExpiresAt,
		Data:      s.RawData,
	}
	if s.UserID != uuid.Nil {
		sn.UserID = s.UserID.String()
	}
	if !s.Access.IsZero() && s.Access.Raw() != "" {
		sn.AccessToken = s.Access.Raw()
		sn.AccessExpiresAt = s.Access.ExpiresAt()
	}
	if s.Refresh != nil && s.Refresh.Raw() != "" {
		sn.RefreshToken = s.Refresh.Raw()
		sn.RefreshExpiresAt = s.Refresh.ExpiresAt()
	}
	if s.CSRF != nil && s.CSRF.Raw() != "" {
		sn.CSRFToken = s.CSRF.Raw()
		sn.CSRFExpiresAt = s.CSRF.ExpiresAt()
	}
	return sn
}

// FromSnapshot hydrates a session aggregate from its serialized form.
// The snapshot should be validated first; FromSnapshot only fails on
// malformed identifiers or token material.
func FromSnapshot(sn Snapshot) (Session, error) {
	id, err := uuid.Parse(sn.SessionID)
	if err != nil {
		return Session{}, InvalidSessionError{Reasons: []string{"session_id is not a valid identifier"}}
	}

	s := Session{
		ID:        id,
		GuestID:   sn.GuestID,
		ExpiresAt: sn.ExpiresAt,
		CreatedIP: sn.CreatedIP,
		LastIP:    sn.LastIP,
		RawData:   sn.Data,
	}

	if sn.UserID != "" {
		uid, err := uuid.Parse(sn.UserID)
		if err != nil {
			return Session{}, InvalidSessionError{Reasons: []string{"user_id is not a valid identifier"}}
		}
		s.UserID = uid
	}

	if sn.AccessToken != "" {
		access, err := token.RestoreAccessToken(sn.AccessToken, sn.AccessExpiresAt)
		if err != nil {
			return Session{}, err
		}
		s.Access = access
	}
	if sn.RefreshToken != "" {
		refresh, err := token.RestoreRefreshToken(sn.RefreshToken, sn.RefreshExpiresAt)
		if err != nil {
			return Session{}, err
		}
		s.Refresh = &refresh
	}
	if sn.CSRFToken != "" {
		csrf, err := token.RestoreCSRFToken(sn.CSRFToken, sn.CSRFExpiresAt)
		if err != nil {
			return Session{}, err
		}
		s.CSRF = &csrf
	}

	return s, nil
}
