package sessionstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoResult is returned by GC when a backend cannot report a deletion
	// count at all, as opposed to having deleted zero entries.
	ErrNoResult = errors.New("sessionstore: no result")
	// ErrUnavailable is returned when an operation failed on every configured store.
	ErrUnavailable = errors.New("sessionstore: no store available")
)

// Store is the keyed session-payload storage port. Payloads are opaque
// strings owned by the surrounding application; the id is the raw
// storage-layer session key, distinct from the domain session identifier.
type Store interface {
	// Open prepares the store for the given save path and namespace.
	Open(ctx context.Context, path, name string) error
	Close() error
	// Read returns the payload for id, or an empty string when absent.
	Read(ctx context.Context, id string) (string, error)
	Write(ctx context.Context, id, data string) error
	// Destroy removes the payload and reports whether anything was removed.
	Destroy(ctx context.Context, id string) (bool, error)
	// GC removes payloads idle longer than maxLifetime and returns the count.
	// Backends that cannot report a count return ErrNoResult.
	GC(ctx context.Context, maxLifetime time.Duration) (int64, error)
}
