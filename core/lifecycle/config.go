package lifecycle

import "time"

// Config tunes the session lifecycle coordinator.
type Config struct {
	// StorePath and StoreName are handed to the session store engine on open.
	StorePath string `env:"SESSION_STORE_PATH" envDefault:"/var/lib/sessions"`
	StoreName string `env:"SESSION_STORE_NAME" envDefault:"app"`

	// KeyLength is the store key entropy in bytes; keys are hex-encoded.
	KeyLength int `env:"SESSION_STORE_KEY_LENGTH" envDefault:"32"`

	// RegenerateInterval is how often the store key is rotated for an active
	// session. Zero disables periodic regeneration.
	RegenerateInterval time.Duration `env:"SESSION_REGENERATE_INTERVAL" envDefault:"30m"`

	// MaxKeyAge bounds how long an idle payload survives in the store; it is
	// the maxLifetime handed to store garbage collection.
	MaxKeyAge time.Duration `env:"SESSION_MAX_KEY_AGE" envDefault:"12h"`
}

// DefaultConfig returns the coordinator defaults.
func DefaultConfig() Config {
	return Config{
		StorePath:          "/var/lib/sessions",
		StoreName:          "app",
		KeyLength:          32,
		RegenerateInterval: 30 * time.Minute,
		MaxKeyAge:          12 * time.Hour,
	}
}
