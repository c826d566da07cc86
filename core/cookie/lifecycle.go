package cookie

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/logger"
)

// Params is an immutable snapshot of the session cookie attributes. The
// snapshot is taken before the session store engine starts so later option
// mutation cannot desynchronize the cookie the client holds from the
// parameters the engine was started with.
type Params struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Lifecycle drives the session store-key cookie through a request: params are
// applied first, the store engine starts with them, and the cookie is renewed
// last. It never invents a session: renewal without an active store key is a
// logged no-op.
type Lifecycle struct {
	mgr    *Manager
	name   string
	maxAge int
	log    *slog.Logger
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithLifecycleLogger sets the logger used for renewal warnings.
func WithLifecycleLogger(log *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLifecycle builds a session-cookie lifecycle over the manager.
func NewLifecycle(mgr *Manager, cfg Config, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		mgr:    mgr,
		name:   cfg.SessionName,
		maxAge: cfg.SessionMaxAge,
		log:    slog.Default(),
	}
	if l.name == "" {
		l.name = DefaultConfig().SessionName
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ApplyParams snapshots the configured session cookie parameters. Call it
// before starting the store engine.
func (l *Lifecycle) ApplyParams() Params {
	return Params{
		Name:     l.name,
		Path:     l.mgr.defaults.Path,
		Domain:   l.mgr.defaults.Domain,
		MaxAge:   l.maxAge,
		Secure:   l.mgr.defaults.Secure,
		HttpOnly: l.mgr.defaults.HttpOnly,
		SameSite: l.mgr.defaults.SameSite,
	}
}

// RenewSessionCookie re-issues the signed store-key cookie with a refreshed
// MaxAge. An empty storeKey means no session is active for the request; the
// renewal is skipped with a warning instead of setting an unsigned husk.
func (l *Lifecycle) RenewSessionCookie(w http.ResponseWriter, r *http.Request, storeKey string) error {
	if storeKey == "" {
		l.log.WarnContext(r.Context(), "session cookie renewal skipped, no active session",
			logger.Component("cookie.lifecycle"))
		return nil
	}
	return l.mgr.SetSigned(w, l.name, storeKey, WithMaxAge(l.maxAge))
}

// ClearSessionCookie forces client-side deletion by sending an expired cookie.
func (l *Lifecycle) ClearSessionCookie(w http.ResponseWriter) {
	l.mgr.Delete(w, l.name)
}

// ReadStoreKey extracts and verifies the raw store key from the request
// cookie. ErrCookieNotFound and ErrInvalidSignature tell the caller to mint a
// fresh key.
func (l *Lifecycle) ReadStoreKey(r *http.Request) (string, error) {
	return l.mgr.GetSigned(r, l.name)
}
