package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyRevoked is returned when revoking or mutating a session that is already revoked.
	// Revocation is terminal.
	ErrAlreadyRevoked = errors.New("session already revoked")
	// ErrSessionNotFound is returned when a persisted session required by a state
	// transition does not exist. Plain lookups report absence as a nil session instead.
	ErrSessionNotFound = errors.New("session not found")
	// ErrMissingIP is returned when creating a session without a network origin.
	ErrMissingIP = errors.New("IP address is required")
	// ErrPastExpiry is returned when a session expiry is not strictly in the future.
	ErrPastExpiry = errors.New("session expiry must be in the future")
	// ErrRenewalWindowExceeded is returned when an expired session is renewed after
	// the configured grace period has elapsed.
	ErrRenewalWindowExceeded = errors.New("session renewal window exceeded")
	// ErrTokenAlreadyUsed is returned when a rotated-out refresh token is presented
	// again. Reuse of a one-shot token is surfaced, never swallowed.
	ErrTokenAlreadyUsed = errors.New("refresh token already used")
	// ErrVersionConflict is returned by repositories when a version-guarded save
	// loses against a concurrent write.
	ErrVersionConflict = errors.New("session version conflict")
	// ErrSaveSession is returned when persisting a session fails.
	ErrSaveSession = errors.New("failed to save session")
)

// InvalidSessionError reports a failed snapshot validation with the
// accumulated reasons. It aborts session establishment in the coordinator.
type InvalidSessionError struct {
	Reasons []string
}

// Error implements the error interface.
func (e InvalidSessionError) Error() string {
	return fmt.Sprintf("invalid session: %s", strings.Join(e.Reasons, "; "))
}
