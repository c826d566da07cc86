package event

import "github.com/google/uuid"

// Lifecycle event payloads. Raw store keys and token material never appear in
// payloads; subscribers get identifiers and audit context only.

// SessionStarted is published when a request session has been established.
type SessionStarted struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id,omitzero"`
	GuestID   string    `json:"guest_id,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

// SessionFailed is published when session establishment was aborted by the
// validation gate.
type SessionFailed struct {
	SessionID uuid.UUID `json:"session_id,omitzero"`
	IP        string    `json:"ip,omitempty"`
	Reason    string    `json:"reason"`
}

// SessionDestroyed is published after an explicit session teardown.
type SessionDestroyed struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id,omitzero"`
	IP        string    `json:"ip,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// SessionRegenerated is published when the session store key was rotated.
type SessionRegenerated struct {
	SessionID uuid.UUID `json:"session_id"`
	IP        string    `json:"ip,omitempty"`
}

// SessionExpired is published when a session lapsed past its expiry.
type SessionExpired struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id,omitzero"`
	Reason    string    `json:"reason,omitempty"`
}
