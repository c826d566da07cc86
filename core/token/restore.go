package token

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Restore constructors rehydrate token value objects from storage. They skip
// the future-expiry construction check because a stored token may legitimately
// be past its expiry; expiry enforcement happens at validation time. New tokens
// must always go through the New* constructors.

func restoreValue(raw string, expiresAt time.Time) (value, error) {
	if raw == "" {
		return value{}, ErrEmptyToken
	}
	return value{
		raw:       raw,
		digest:    sha256.Sum256([]byte(raw)),
		expiresAt: expiresAt,
	}, nil
}

func restoreDigest(hashHex string, expiresAt time.Time) (value, error) {
	b, err := hex.DecodeString(hashHex)
	if err != nil || len(b) != sha256.Size {
		return value{}, ErrInvalidHash
	}
	v := value{expiresAt: expiresAt}
	copy(v.digest[:], b)
	return v, nil
}

// RestoreAccessToken rehydrates an access token from its raw secret and stored expiry.
func RestoreAccessToken(raw string, expiresAt time.Time) (AccessToken, error) {
	v, err := restoreValue(raw, expiresAt)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{v}, nil
}

// RestoreAccessTokenHash rehydrates an access token from its hex digest when the
// raw secret is not stored. The result supports Matches and Equal but Raw is unusable.
func RestoreAccessTokenHash(hashHex string, expiresAt time.Time) (AccessToken, error) {
	v, err := restoreDigest(hashHex, expiresAt)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{v}, nil
}

// RestoreRefreshToken rehydrates a refresh token from its raw secret and stored expiry.
func RestoreRefreshToken(raw string, expiresAt time.Time) (RefreshToken, error) {
	v, err := restoreValue(raw, expiresAt)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{v}, nil
}

// RestoreRefreshTokenHash rehydrates a refresh token from its hex digest.
func RestoreRefreshTokenHash(hashHex string, expiresAt time.Time) (RefreshToken, error) {
	v, err := restoreDigest(hashHex, expiresAt)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{v}, nil
}

// RestoreCSRFToken rehydrates a CSRF token from its raw secret and stored expiry.
func RestoreCSRFToken(raw string, expiresAt time.Time) (CSRFToken, error) {
	v, err := restoreValue(raw, expiresAt)
	if err != nil {
		return CSRFToken{}, err
	}
	return CSRFToken{v}, nil
}

// RestoreCSRFTokenHash rehydrates a CSRF token from its hex digest.
func RestoreCSRFTokenHash(hashHex string, expiresAt time.Time) (CSRFToken, error) {
	v, err := restoreDigest(hashHex, expiresAt)
	if err != nil {
		return CSRFToken{}, err
	}
	return CSRFToken{v}, nil
}
