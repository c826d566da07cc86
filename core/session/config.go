package session

import (
	"time"
)

// Config holds session lifecycle settings.
type Config struct {
	// TTL is the session time-to-live applied on creation and rotation.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// RenewalGracePeriod bounds how long after expiry a lapsed session may
	// still be renewed by a refresh flow. Zero keeps the original unlimited
	// reactivation behavior.
	RenewalGracePeriod time.Duration `env:"SESSION_RENEWAL_GRACE" envDefault:"0"`
}

// DefaultConfig returns default session lifecycle settings.
func DefaultConfig() Config {
	return Config{
		TTL:                24 * time.Hour,
		RenewalGracePeriod: 0,
	}
}

// Option is a functional option for configuring the session manager.
type Option func(*Manager)
