package token

import "time"

// Config holds token issuance settings. Byte lengths are per token class;
// the visible hex-encoded length is double the byte length.
type Config struct {
	AccessLength  int `env:"TOKEN_ACCESS_LENGTH" envDefault:"32"`
	RefreshLength int `env:"TOKEN_REFRESH_LENGTH" envDefault:"64"`
	CSRFLength    int `env:"TOKEN_CSRF_LENGTH" envDefault:"16"`

	AccessTTL  time.Duration `env:"TOKEN_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL time.Duration `env:"TOKEN_REFRESH_TTL" envDefault:"720h"`
	CSRFTTL    time.Duration `env:"TOKEN_CSRF_TTL" envDefault:"1h"`
}

// DefaultConfig returns the default token issuance settings.
func DefaultConfig() Config {
	return Config{
		AccessLength:  32,
		RefreshLength: 64,
		CSRFLength:    16,
		AccessTTL:     time.Hour,
		RefreshTTL:    720 * time.Hour,
		CSRFTTL:       time.Hour,
	}
}
