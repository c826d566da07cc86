package sessionstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/core/logger"
)

const (
	tierPrimary   = "primary"
	tierSecondary = "secondary"
)

// Failover presents a single Store backed by a durable primary and a
// best-effort secondary. Every operation tries the primary first and falls
// back to the secondary sequentially; candidates are never probed
// concurrently, so a slow primary cannot race a fast secondary. The primary
// is preferred for correctness and audit; the secondary turns a primary
// outage into degraded availability instead of request failure.
type Failover struct {
	primary   Store
	secondary Store
	log       *slog.Logger
}

// FailoverOption configures a Failover store.
type FailoverOption func(*Failover)

// WithLogger sets the logger used to observe fallback decisions.
func WithLogger(log *slog.Logger) FailoverOption {
	return func(f *Failover) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFailover composes a primary and a secondary store.
func NewFailover(primary, secondary Store, opts ...FailoverOption) *Failover {
	f := &Failover{
		primary:   primary,
		secondary: secondary,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open prepares both stores. A failing primary degrades to secondary-only
// operation; Open errors only when no store could be opened.
func (f *Failover) Open(ctx context.Context, path, name string) error {
	perr := f.primary.Open(ctx, path, name)
	if perr != nil {
		f.log.WarnContext(ctx, "primary session store failed to open",
			logger.StoreTier(tierPrimary), logger.Error(perr))
	}

	serr := f.secondary.Open(ctx, path, name)
	if serr != nil {
		f.log.WarnContext(ctx, "secondary session store failed to open",
			logger.StoreTier(tierSecondary), logger.Error(serr))
	}

	if perr != nil && serr != nil {
		return errors.Join(ErrUnavailable, perr, serr)
	}
	return nil
}

// Close releases both stores.
func (f *Failover) Close() error {
	return errors.Join(f.primary.Close(), f.secondary.Close())
}

// Read returns the payload for id, trying the primary first and falling
// through to the secondary when the primary errors or comes back empty.
// Read never raises: a total miss is an empty string.
func (f *Failover) Read(ctx context.Context, id string) (string, error) {
	data, err := f.primary.Read(ctx, id)
	if err != nil {
		f.log.WarnContext(ctx, "primary session store read failed, falling back",
			logger.StoreTier(tierPrimary), logger.StoreKey(id), logger.Error(err))
	}
	if err == nil && data != "" {
		return data, nil
	}

	data, err = f.secondary.Read(ctx, id)
	if err != nil {
		f.log.WarnContext(ctx, "secondary session store read failed",
			logger.StoreTier(tierSecondary), logger.StoreKey(id), logger.Error(err))
		return "", nil
	}
	return data, nil
}

// Write stores the payload in the primary; on primary failure the secondary
// is written instead so the request does not lose session state. The primary
// failure is observed, not raised: Write errors only when both stores fail.
func (f *Failover) Write(ctx context.Context, id, data string) error {
	perr := f.primary.Write(ctx, id, data)
	if perr == nil {
		return nil
	}
	f.log.WarnContext(ctx, "primary session store write failed, writing secondary",
		logger.StoreTier(tierPrimary), logger.StoreKey(id), logger.Error(perr))

	if serr := f.secondary.Write(ctx, id, data); serr != nil {
		return errors.Join(ErrUnavailable, perr, serr)
	}
	return nil
}

// Destroy removes the payload from the primary; when the primary errors or
// reports that nothing was removed, the secondary is destroyed as well so no
// stale duplicate survives.
func (f *Failover) Destroy(ctx context.Context, id string) (bool, error) {
	destroyed, perr := f.primary.Destroy(ctx, id)
	if perr != nil {
		f.log.WarnContext(ctx, "primary session store destroy failed",
			logger.StoreTier(tierPrimary), logger.StoreKey(id), logger.Error(perr))
	}
	if perr == nil && destroyed {
		return true, nil
	}

	also, serr := f.secondary.Destroy(ctx, id)
	if serr != nil {
		f.log.WarnContext(ctx, "secondary session store destroy failed",
			logger.StoreTier(tierSecondary), logger.StoreKey(id), logger.Error(serr))
		if perr != nil {
			return false, errors.Join(ErrUnavailable, perr, serr)
		}
		return destroyed, nil
	}
	return destroyed || also, nil
}

// GC runs garbage collection against the primary, delegating to the
// secondary when the primary errors or cannot report a result. The outcome
// is normalized to a deletion count.
func (f *Failover) GC(ctx context.Context, maxLifetime time.Duration) (int64, error) {
	n, perr := f.primary.GC(ctx, maxLifetime)
	if perr == nil {
		return n, nil
	}
	if !errors.Is(perr, ErrNoResult) {
		f.log.WarnContext(ctx, "primary session store gc failed, delegating",
			logger.StoreTier(tierPrimary), logger.Error(perr))
	}

	n, serr := f.secondary.GC(ctx, maxLifetime)
	if serr != nil {
		if errors.Is(serr, ErrNoResult) && errors.Is(perr, ErrNoResult) {
			return 0, ErrNoResult
		}
		return 0, errors.Join(ErrUnavailable, perr, serr)
	}
	return n, nil
}
