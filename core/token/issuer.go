package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"time"
)

// Issuer generates cryptographically secure random tokens and wraps them
// into hashed token value objects with expiry metadata applied from Config.
type Issuer struct {
	cfg  Config
	rand io.Reader
	now  func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithRandSource overrides the random source. Intended for tests;
// production issuers use crypto/rand.
func WithRandSource(r io.Reader) Option {
	return func(i *Issuer) {
		if r != nil {
			i.rand = r
		}
	}
}

// WithClock overrides the time source used to anchor token expiries.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// New creates an issuer with default configuration.
func New(opts ...Option) *Issuer {
	return NewFromConfig(DefaultConfig(), opts...)
}

// NewFromConfig creates an issuer from configuration.
func NewFromConfig(cfg Config, opts ...Option) *Issuer {
	i := &Issuer{
		cfg:  cfg,
		rand: rand.Reader,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a hex-encoded random token of byteLength random bytes.
// Fails with ErrInvalidLength for non-positive lengths and ErrEntropySource
// when the random source fails; no weaker source is ever substituted.
func (i *Issuer) Issue(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", ErrInvalidLength
	}
	b := make([]byte, byteLength)
	if _, err := io.ReadFull(i.rand, b); err != nil {
		return "", errors.Join(ErrEntropySource, err)
	}
	return hex.EncodeToString(b), nil
}

// IssueAccess mints a fresh access token with the configured length and TTL.
func (i *Issuer) IssueAccess() (AccessToken, error) {
	raw, err := i.Issue(i.cfg.AccessLength)
	if err != nil {
		return AccessToken{}, err
	}
	return NewAccessToken(raw, i.now().Add(i.cfg.AccessTTL))
}

// IssueRefresh mints a fresh refresh token with the configured length and TTL.
func (i *Issuer) IssueRefresh() (RefreshToken, error) {
	raw, err := i.Issue(i.cfg.RefreshLength)
	if err != nil {
		return RefreshToken{}, err
	}
	return NewRefreshToken(raw, i.now().Add(i.cfg.RefreshTTL))
}

// IssueCSRF mints a fresh CSRF token with the configured length and TTL.
func (i *Issuer) IssueCSRF() (CSRFToken, error) {
	raw, err := i.Issue(i.cfg.CSRFLength)
	if err != nil {
		return CSRFToken{}, err
	}
	return NewCSRFToken(raw, i.now().Add(i.cfg.CSRFTTL))
}

// AccessTTL returns the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.cfg.AccessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.cfg.RefreshTTL }
