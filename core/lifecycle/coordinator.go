package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/core/event"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore"
	"github.com/dmitrymomot/sessionkit/core/token"
	"github.com/dmitrymomot/sessionkit/pkg/clientip"
)

// UserDirectory answers whether a user identity is still known. The
// coordinator consults it to demote sessions whose user has been deleted.
type UserDirectory interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// payload is the envelope persisted under the store key.
type payload struct {
	Session       session.Snapshot `json:"session"`
	RegeneratedAt time.Time        `json:"regenerated_at,omitzero"`
}

// Coordinator drives the full per-request session lifecycle: cookie handling,
// store resolution, identity checks, token minting, validation, periodic
// store-key regeneration and event publishing. The only hard failure of
// establishment is the validation gate (ErrInvalidSession); everything else
// degrades or starts fresh.
type Coordinator struct {
	store    sessionstore.Store
	cookies  *cookie.Lifecycle
	sessions *session.Manager
	issuer   *token.Issuer
	repo     session.Repository
	users    UserDirectory
	events   *event.Publisher
	cfg      Config
	log      *slog.Logger
	now      func() time.Time

	openOnce sync.Once
	openErr  error
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the coordinator's logger.
func WithLogger(log *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock overrides the coordinator's time source.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithUserDirectory wires the user existence check. Without it, stored user
// identities are trusted as-is.
func WithUserDirectory(users UserDirectory) CoordinatorOption {
	return func(c *Coordinator) { c.users = users }
}

// WithPublisher wires lifecycle event publishing.
func WithPublisher(events *event.Publisher) CoordinatorOption {
	return func(c *Coordinator) { c.events = events }
}

// WithRepository wires the session repository used for activity metadata
// updates on persisted sessions.
func WithRepository(repo session.Repository) CoordinatorOption {
	return func(c *Coordinator) { c.repo = repo }
}

// NewCoordinator assembles the session lifecycle coordinator.
func NewCoordinator(store sessionstore.Store, cookies *cookie.Lifecycle, sessions *session.Manager, issuer *token.Issuer, cfg Config, opts ...CoordinatorOption) *Coordinator {
	if cfg.KeyLength <= 0 {
		cfg.KeyLength = DefaultConfig().KeyLength
	}
	c := &Coordinator{
		store:    store,
		cookies:  cookies,
		sessions: sessions,
		issuer:   issuer,
		cfg:      cfg,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start establishes the request session. Cookie parameters are applied before
// the store engine runs, the payload is resolved (or a fresh guest session is
// minted), stale user identities are demoted, missing tokens are minted, the
// snapshot passes the validation gate, the store key is rotated when due, and
// finally the payload is written back and the cookie renewed.
func (c *Coordinator) Start(rctx context.Context, w http.ResponseWriter, r *http.Request) (*Context, error) {
	params := c.cookies.ApplyParams()
	if err := c.open(rctx, params); err != nil {
		c.log.ErrorContext(rctx, "session store unavailable",
			logger.Component("lifecycle"), logger.Error(err))
		return nil, err
	}

	ip := clientip.GetIP(r)

	storeKey, fresh, err := c.resolveStoreKey(rctx, r)
	if err != nil {
		c.log.ErrorContext(rctx, "failed to resolve store key",
			logger.Component("lifecycle"), logger.Error(err))
		return nil, err
	}

	pl, have := c.readPayload(rctx, storeKey, fresh)

	var sess *session.Session
	if have {
		s, err := session.FromSnapshot(pl.Session)
		if err != nil {
			return nil, c.failValidation(rctx, uuid.Nil, ip, err)
		}
		sess = &s
	}

	// Identity: a stored user id no directory entry answers for becomes a
	// guest, never a failed request.
	if sess != nil && !sess.IsGuest() && c.users != nil {
		exists, derr := c.users.Exists(rctx, sess.UserID)
		switch {
		case derr != nil:
			c.log.WarnContext(rctx, "user directory unavailable, keeping identity",
				logger.Component("lifecycle"), logger.SessionID(sess.ID), logger.Error(derr))
		case !exists:
			c.log.WarnContext(rctx, "stale user identity, demoting to guest",
				logger.Component("lifecycle"), logger.SessionID(sess.ID), logger.UserID(sess.UserID))
			sess.DemoteToGuest("")
		}
	}

	// A lapsed session is renewed in place: fresh tokens, fresh expiry, same
	// session identity.
	expired := sess != nil && sess.IsExpired(c.now())
	if expired {
		c.log.InfoContext(rctx, "resumed session lapsed, rotating tokens",
			logger.Component("lifecycle"), logger.SessionID(sess.ID))
		c.publish(rctx, event.SessionExpired{
			SessionID: sess.ID,
			UserID:    sess.UserID,
			Reason:    "session expiry elapsed",
		})
	}

	sess, err = c.ensureTokens(rctx, sess, ip, expired)
	if err != nil {
		c.log.ErrorContext(rctx, "failed to mint session tokens",
			logger.Component("lifecycle"), logger.Error(err))
		return nil, err
	}
	sess.TouchIP(ip)

	// Validation gate: the one designed hard failure.
	snap := sess.Snapshot()
	if verr := snap.Validate(); verr != nil {
		return nil, c.failValidation(rctx, sess.ID, ip, verr)
	}

	regeneratedAt := pl.RegeneratedAt
	if fresh || regeneratedAt.IsZero() {
		regeneratedAt = c.now()
	}

	oldKey := ""
	if !fresh && c.cfg.RegenerateInterval > 0 && c.now().Sub(regeneratedAt) >= c.cfg.RegenerateInterval {
		newKey, err := c.issuer.Issue(c.cfg.KeyLength)
		if err != nil {
			err = errors.Join(ErrStoreKey, err)
			c.log.ErrorContext(rctx, "store key regeneration failed",
				logger.Component("lifecycle"), logger.SessionID(sess.ID), logger.Error(err))
			return nil, err
		}
		oldKey, storeKey = storeKey, newKey
		regeneratedAt = c.now()
	} else if !fresh {
		c.log.DebugContext(rctx, "store key regeneration skipped, interval not elapsed",
			logger.Component("lifecycle"), logger.SessionID(sess.ID))
	}

	body, err := json.Marshal(payload{Session: snap, RegeneratedAt: regeneratedAt})
	if err != nil {
		return nil, err
	}
	if err := c.store.Write(rctx, storeKey, string(body)); err != nil {
		c.log.ErrorContext(rctx, "failed to persist session payload",
			logger.Component("lifecycle"), logger.SessionID(sess.ID), logger.Error(err))
		return nil, err
	}

	// Move completed: the old key must not keep a readable duplicate alive.
	if oldKey != "" {
		if _, err := c.store.Destroy(rctx, oldKey); err != nil {
			c.log.WarnContext(rctx, "failed to destroy rotated-out store key",
				logger.Component("lifecycle"), logger.StoreKey(oldKey), logger.Error(err))
		}
		c.publish(rctx, event.SessionRegenerated{SessionID: sess.ID, IP: ip})
	}

	if err := c.cookies.RenewSessionCookie(w, r, storeKey); err != nil {
		c.log.ErrorContext(rctx, "failed to renew session cookie",
			logger.Component("lifecycle"), logger.SessionID(sess.ID), logger.Error(err))
		return nil, err
	}

	c.publish(rctx, event.SessionStarted{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		GuestID:   sess.GuestID,
		IP:        ip,
	})

	return &Context{
		storeKey:      storeKey,
		sess:          sess,
		regeneratedAt: regeneratedAt,
	}, nil
}

// Destroy tears the session down: in-memory state is cleared first, then the
// stored payload is destroyed and the cookie cleared. The cookie clear runs
// even when the store destroy fails, so a client never keeps a key to a
// half-dead session.
func (c *Coordinator) Destroy(ctx context.Context, w http.ResponseWriter, sctx *Context) error {
	if sctx == nil || sctx.sess == nil {
		return ErrNoSession
	}

	sess := *sctx.sess
	storeKey := sctx.storeKey
	sctx.clear()

	var derr error
	if storeKey != "" {
		if _, err := c.store.Destroy(ctx, storeKey); err != nil {
			derr = err
			c.log.ErrorContext(ctx, "failed to destroy session payload",
				logger.Component("lifecycle"), logger.SessionID(sess.ID), logger.Error(err))
		}
	}

	c.cookies.ClearSessionCookie(w)

	c.publish(ctx, event.SessionDestroyed{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		IP:        sess.LastIP,
	})

	return derr
}

// Save persists the context's current session state back into the store,
// re-marshaling the payload under the existing store key. Intended for the
// end of a request whose handlers attached data via SetData; a clean context
// is written through all the same.
func (c *Coordinator) Save(ctx context.Context, sctx *Context) error {
	if sctx == nil || sctx.sess == nil {
		return ErrNoSession
	}

	body, err := json.Marshal(payload{
		Session:       sctx.sess.Snapshot(),
		RegeneratedAt: sctx.regeneratedAt,
	})
	if err != nil {
		return err
	}
	if err := c.store.Write(ctx, sctx.storeKey, string(body)); err != nil {
		c.log.ErrorContext(ctx, "failed to persist session payload",
			logger.Component("lifecycle"), logger.SessionID(sctx.sess.ID), logger.Error(err))
		return err
	}
	sctx.dirty = false
	return nil
}

// Touch records request activity on the session: last-seen IP in memory and,
// for persisted user sessions, the repository audit metadata.
func (c *Coordinator) Touch(ctx context.Context, sctx *Context, ip string) error {
	if sctx == nil || sctx.sess == nil {
		return ErrNoSession
	}

	sctx.sess.TouchIP(ip)
	if c.repo != nil && !sctx.sess.IsGuest() {
		return c.repo.UpdateMetadata(ctx, sctx.sess.ID, session.Metadata{
			LastIP: ip,
			Actor:  sctx.sess.Audit.UpdatedBy,
		})
	}
	return nil
}

// GC sweeps payloads idle longer than the configured max key age. A backend
// that cannot report a count is treated as a clean zero.
func (c *Coordinator) GC(ctx context.Context) (int64, error) {
	n, err := c.store.GC(ctx, c.cfg.MaxKeyAge)
	if errors.Is(err, sessionstore.ErrNoResult) {
		return 0, nil
	}
	return n, err
}

// Close releases the session store.
func (c *Coordinator) Close() error {
	return c.store.Close()
}

// open starts the store engine exactly once, after cookie params were applied.
func (c *Coordinator) open(ctx context.Context, params cookie.Params) error {
	c.openOnce.Do(func() {
		c.openErr = c.store.Open(ctx, c.cfg.StorePath, c.cfg.StoreName)
		if c.openErr == nil {
			c.log.DebugContext(ctx, "session store engine started",
				logger.Component("lifecycle"), logger.Key("cookie", params.Name))
		}
	})
	return c.openErr
}

// resolveStoreKey extracts the signed store key from the request, minting a
// fresh one when the cookie is absent or fails verification.
func (c *Coordinator) resolveStoreKey(ctx context.Context, r *http.Request) (string, bool, error) {
	key, err := c.cookies.ReadStoreKey(r)
	if err == nil && key != "" {
		return key, false, nil
	}
	if err != nil && !errors.Is(err, cookie.ErrCookieNotFound) {
		c.log.WarnContext(ctx, "session cookie rejected, minting fresh store key",
			logger.Component("lifecycle"), logger.Error(err))
	}

	key, err = c.issuer.Issue(c.cfg.KeyLength)
	if err != nil {
		return "", false, errors.Join(ErrStoreKey, err)
	}
	return key, true, nil
}

// readPayload loads and decodes the stored payload. Corrupt payloads start a
// fresh session instead of failing the request.
func (c *Coordinator) readPayload(ctx context.Context, storeKey string, fresh bool) (payload, bool) {
	var pl payload
	if fresh {
		return pl, false
	}

	raw, _ := c.store.Read(ctx, storeKey)
	if raw == "" {
		return pl, false
	}
	if err := json.Unmarshal([]byte(raw), &pl); err != nil {
		c.log.WarnContext(ctx, "corrupt session payload, starting fresh",
			logger.Component("lifecycle"), logger.StoreKey(storeKey), logger.Error(err))
		return payload{}, false
	}
	return pl, true
}

// ensureTokens resolves the aggregate carrying a full token set, minting a
// guest session when none exists and rotating tokens into a token-less or
// force-rotated one. A persisted aggregate that disappeared behind a stored
// user id demotes to guest instead of failing.
func (c *Coordinator) ensureTokens(ctx context.Context, sess *session.Session, ip string, force bool) (*session.Session, error) {
	if sess == nil {
		return c.sessions.CreateTokensForSession(ctx, session.Identity{IP: ip})
	}
	if !force && !sess.Access.IsZero() && sess.Access.Raw() != "" {
		return sess, nil
	}

	identity := session.Identity{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		GuestID:   sess.GuestID,
		IP:        ip,
	}
	minted, err := c.sessions.CreateTokensForSession(ctx, identity)
	if errors.Is(err, session.ErrSessionNotFound) {
		c.log.WarnContext(ctx, "persisted session missing, demoting to guest",
			logger.Component("lifecycle"), logger.SessionID(sess.ID), logger.UserID(sess.UserID))
		identity.UserID = uuid.Nil
		minted, err = c.sessions.CreateTokensForSession(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	// Renewal rotates credentials, never application state: the resumed
	// session's opaque data and origin survive the mint.
	if len(sess.RawData) > 0 {
		minted.RawData = sess.RawData
	}
	if minted.IsGuest() {
		// Guest aggregates are fabricated by the mint; persisted user
		// aggregates keep their stored origin and audit.
		if sess.CreatedIP != "" {
			minted.CreatedIP = sess.CreatedIP
			minted.Audit.CreatedIP = sess.CreatedIP
		}
		if !sess.Audit.CreatedAt.IsZero() {
			minted.Audit.CreatedAt = sess.Audit.CreatedAt
			minted.Audit.CreatedBy = sess.Audit.CreatedBy
		}
	}
	return minted, nil
}

// failValidation publishes the failure and wraps it into the hard error.
func (c *Coordinator) failValidation(ctx context.Context, sessionID uuid.UUID, ip string, cause error) error {
	reason := cause.Error()
	c.log.WarnContext(ctx, "session validation failed",
		logger.Component("lifecycle"), logger.SessionID(sessionID), logger.Reason(reason))
	c.publish(ctx, event.SessionFailed{SessionID: sessionID, IP: ip, Reason: reason})
	return errors.Join(ErrInvalidSession, cause)
}

// publish emits a lifecycle event; publishing failures are observed, never
// propagated into the request path.
func (c *Coordinator) publish(ctx context.Context, evt any) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(ctx, evt); err != nil {
		c.log.WarnContext(ctx, "lifecycle event publish failed",
			logger.Component("lifecycle"), logger.Error(err))
	}
}
