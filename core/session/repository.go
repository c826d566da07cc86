package session

import (
	"context"

	"github.com/google/uuid"
)

// Metadata carries the mutable audit fields updated on session activity.
type Metadata struct {
	LastIP string
	Actor  string
}

// Repository is the persistence port for session aggregates. The core calls
// it but never implements it. Token lookups are keyed by digest so raw
// secrets never reach storage. Lookup misses are reported as a nil session
// with a nil error; errors are reserved for infrastructure failures.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	GetByAccessToken(ctx context.Context, tokenHash string) (*Session, error)
	GetByRefreshToken(ctx context.Context, tokenHash string) (*Session, error)
	// Revoke retires a session. Reports false when there was nothing to revoke.
	Revoke(ctx context.Context, id uuid.UUID, actor, reason string) (bool, error)
	// DeleteExpired garbage-collects lapsed rows and returns the deleted count.
	// Physical deletion is a scheduled repository concern, never a core one.
	DeleteExpired(ctx context.Context) (int64, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, meta Metadata) error
}
