package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// value is the shared core of all hashed token value objects.
// It pairs a raw secret with an expiry and keeps a one-way digest
// used for all comparisons. The digest is never exposed in a form
// that allows reconstructing the raw secret.
type value struct {
	raw       string
	digest    [sha256.Size]byte
	expiresAt time.Time
}

func newValue(raw string, expiresAt time.Time) (value, error) {
	if raw == "" {
		return value{}, ErrEmptyToken
	}
	if !expiresAt.After(time.Now()) {
		return value{}, ErrPastExpiry
	}
	return value{
		raw:       raw,
		digest:    sha256.Sum256([]byte(raw)),
		expiresAt: expiresAt,
	}, nil
}

// Raw returns the raw secret. Intended for transport to the client only.
func (v value) Raw() string { return v.raw }

// Hash returns the hex-encoded one-way digest used as a storage lookup key.
func (v value) Hash() string { return hex.EncodeToString(v.digest[:]) }

// ExpiresAt returns the token's own expiry timestamp.
func (v value) ExpiresAt() time.Time { return v.expiresAt }

// IsExpired reports whether the token has expired at the given instant.
func (v value) IsExpired(now time.Time) bool { return now.After(v.expiresAt) }

// IsZero reports whether the token value is unset.
func (v value) IsZero() bool { return v.digest == [sha256.Size]byte{} }

// Matches compares a presented raw secret against the token in constant time.
// The comparison runs over the digests, never over the raw secrets directly.
func (v value) Matches(raw string) bool {
	if raw == "" || v.IsZero() {
		return false
	}
	presented := sha256.Sum256([]byte(raw))
	return subtle.ConstantTimeCompare(v.digest[:], presented[:]) == 1
}

func (v value) equal(other value) bool {
	return subtle.ConstantTimeCompare(v.digest[:], other.digest[:]) == 1
}

// AccessToken is the short-lived credential authorizing subsequent requests.
type AccessToken struct{ value }

// NewAccessToken constructs an access token value object.
// Fails with ErrEmptyToken or ErrPastExpiry; invalid values are never corrected silently.
func NewAccessToken(raw string, expiresAt time.Time) (AccessToken, error) {
	v, err := newValue(raw, expiresAt)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{v}, nil
}

// Equal reports whether both tokens carry the same secret, compared over the digests.
func (t AccessToken) Equal(other AccessToken) bool { return t.equal(other.value) }

// RefreshToken is the long-lived credential used to mint new access tokens.
type RefreshToken struct{ value }

// NewRefreshToken constructs a refresh token value object.
func NewRefreshToken(raw string, expiresAt time.Time) (RefreshToken, error) {
	v, err := newValue(raw, expiresAt)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{v}, nil
}

// Equal reports whether both tokens carry the same secret, compared over the digests.
func (t RefreshToken) Equal(other RefreshToken) bool { return t.equal(other.value) }

// CSRFToken is the per-session secret validating state-changing request origin.
type CSRFToken struct{ value }

// NewCSRFToken constructs a CSRF token value object.
func NewCSRFToken(raw string, expiresAt time.Time) (CSRFToken, error) {
	v, err := newValue(raw, expiresAt)
	if err != nil {
		return CSRFToken{}, err
	}
	return CSRFToken{v}, nil
}

// Equal reports whether both tokens carry the same secret, compared over the digests.
func (t CSRFToken) Equal(other CSRFToken) bool { return t.equal(other.value) }

// HashString derives the storage lookup digest for a presented raw secret.
// Repositories key token columns by this value so raw secrets never hit storage.
func HashString(raw string) string {
	d := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(d[:])
}
