package cookie

import (
	"net/http"
	"strings"
)

// Config provides environment-based configuration for the cookie manager.
type Config struct {
	Secrets  string `env:"COOKIE_SECRETS" envDefault:""`
	Path     string `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string `env:"COOKIE_DOMAIN" envDefault:""`
	MaxAge   int    `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
	MaxSize  int    `env:"COOKIE_MAX_SIZE" envDefault:"4096"`

	// SessionName is the name of the session store-key cookie.
	SessionName string `env:"COOKIE_SESSION_NAME" envDefault:"sid"`
	// SessionMaxAge is the session cookie lifetime in seconds; 0 makes it a
	// browser-session cookie.
	SessionMaxAge int `env:"COOKIE_SESSION_MAX_AGE" envDefault:"0"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() Config {
	return Config{
		Path:        "/",
		HttpOnly:    true,
		SameSite:    "lax",
		MaxSize:     MaxCookieSize,
		SessionName: "sid",
	}
}

// parseSecrets splits comma-separated secrets for key rotation support.
// Empty entries are filtered out.
func (c Config) parseSecrets() []string {
	if c.Secrets == "" {
		return nil
	}

	parts := strings.Split(c.Secrets, ",")
	secrets := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// parseSameSite maps the textual SameSite setting to its http constant,
// defaulting to Lax for unrecognized values.
func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteLaxMode
	}
}

// NewFromConfig creates a Manager from configuration.
// Only non-zero config values override defaults to preserve secure settings.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	secrets := cfg.parseSecrets()

	configOpts := make([]Option, 0, 6)
	if cfg.Path != "" {
		configOpts = append(configOpts, WithPath(cfg.Path))
	}
	if cfg.Domain != "" {
		configOpts = append(configOpts, WithDomain(cfg.Domain))
	}
	if cfg.MaxAge != 0 {
		configOpts = append(configOpts, WithMaxAge(cfg.MaxAge))
	}
	if cfg.Secure {
		configOpts = append(configOpts, WithSecure(cfg.Secure))
	}
	if cfg.HttpOnly {
		configOpts = append(configOpts, WithHTTPOnly(cfg.HttpOnly))
	}
	if cfg.SameSite != "" {
		configOpts = append(configOpts, WithSameSite(parseSameSite(cfg.SameSite)))
	}

	// User-provided options override config.
	configOpts = append(configOpts, opts...)

	m, err := New(secrets, configOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.MaxSize > 0 {
		m.maxSize = cfg.MaxSize
	}

	return m, nil
}
