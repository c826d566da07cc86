package token

import "errors"

var (
	// ErrInvalidLength is returned when a token is requested with a non-positive byte length.
	ErrInvalidLength = errors.New("token byte length must be positive")
	// ErrEntropySource is returned when the secure random source fails.
	// It is always propagated; the issuer never falls back to a weaker source.
	ErrEntropySource = errors.New("secure random source unavailable")
	// ErrEmptyToken is returned when constructing a token value from an empty raw secret.
	ErrEmptyToken = errors.New("raw token must not be empty")
	// ErrPastExpiry is returned when constructing a token value with an expiry that is not in the future.
	ErrPastExpiry = errors.New("token expiry must be in the future")
	// ErrInvalidHash is returned when restoring a token from a malformed hex digest.
	ErrInvalidHash = errors.New("invalid token hash")
)
