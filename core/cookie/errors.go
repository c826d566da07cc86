package cookie

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSecret indicates no signing secret was provided.
	ErrNoSecret = errors.New("no secret provided for cookie manager")

	// ErrSecretTooShort indicates a signing secret below the minimum length.
	ErrSecretTooShort = errors.New("secret must be at least 32 characters long")

	// ErrInvalidSignature indicates signature verification failed, suggesting
	// tampering or a rotated-out key.
	ErrInvalidSignature = errors.New("cookie signature verification failed")

	// ErrCookieNotFound indicates the requested cookie is absent from the request.
	ErrCookieNotFound = errors.New("cookie not found in request")

	// ErrInvalidFormat indicates the cookie value has an unexpected shape.
	ErrInvalidFormat = errors.New("invalid cookie format")
)

// TooLargeCookieError indicates the serialized cookie exceeds the maximum size.
type TooLargeCookieError struct {
	Name string
	Size int
	Max  int
}

func (e TooLargeCookieError) Error() string {
	return fmt.Sprintf("cookie %q size %d exceeds maximum %d bytes", e.Name, e.Size, e.Max)
}
