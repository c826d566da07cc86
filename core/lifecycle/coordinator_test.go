package lifecycle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/core/event"
	"github.com/dmitrymomot/sessionkit/core/lifecycle"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/token"
)

const cookieSecret = "lifecycle-test-secret-32-chars!!"

// memStore is a minimal in-memory sessionstore.Store.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: make(map[string]string)} }

func (s *memStore) Open(context.Context, string, string) error { return nil }
func (s *memStore) Close() error                               { return nil }

func (s *memStore) Read(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[id], nil
}

func (s *memStore) Write(_ context.Context, id, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = data
	return nil
}

func (s *memStore) Destroy(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *memStore) GC(context.Context, time.Duration) (int64, error) { return 2, nil }

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// memRepo is a minimal in-memory session.Repository.
type memRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session.Session
	touched  map[uuid.UUID]session.Metadata
}

func newMemRepo() *memRepo {
	return &memRepo{
		sessions: make(map[uuid.UUID]session.Session),
		touched:  make(map[uuid.UUID]session.Metadata),
	}
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		cp := s
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) Save(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memRepo) GetByAccessToken(context.Context, string) (*session.Session, error) {
	return nil, nil
}

func (r *memRepo) GetByRefreshToken(context.Context, string) (*session.Session, error) {
	return nil, nil
}

func (r *memRepo) Revoke(context.Context, uuid.UUID, string, string) (bool, error) {
	return false, nil
}

func (r *memRepo) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func (r *memRepo) UpdateMetadata(_ context.Context, id uuid.UUID, meta session.Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched[id] = meta
	return nil
}

// directoryFunc adapts a function to lifecycle.UserDirectory.
type directoryFunc func(ctx context.Context, userID uuid.UUID) (bool, error)

func (f directoryFunc) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	return f(ctx, userID)
}

// recorder collects published lifecycle events through a sync transport.
type recorder struct {
	mu          sync.Mutex
	started     []event.SessionStarted
	failed      []event.SessionFailed
	destroyed   []event.SessionDestroyed
	regenerated []event.SessionRegenerated
	expired     []event.SessionExpired
}

func newRecorder() (*recorder, *event.Publisher) {
	rec := &recorder{}
	transport := event.NewSyncTransport()
	transport.Subscribe(event.NewHandlerFunc(func(_ context.Context, evt event.SessionStarted) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.started = append(rec.started, evt)
		return nil
	}))
	transport.Subscribe(event.NewHandlerFunc(func(_ context.Context, evt event.SessionFailed) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.failed = append(rec.failed, evt)
		return nil
	}))
	transport.Subscribe(event.NewHandlerFunc(func(_ context.Context, evt event.SessionDestroyed) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.destroyed = append(rec.destroyed, evt)
		return nil
	}))
	transport.Subscribe(event.NewHandlerFunc(func(_ context.Context, evt event.SessionRegenerated) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.regenerated = append(rec.regenerated, evt)
		return nil
	}))
	transport.Subscribe(event.NewHandlerFunc(func(_ context.Context, evt event.SessionExpired) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.expired = append(rec.expired, evt)
		return nil
	}))
	return rec, event.NewPublisher(transport)
}

type fixture struct {
	coord   *lifecycle.Coordinator
	store   *memStore
	repo    *memRepo
	rec     *recorder
	cookies *cookie.Lifecycle
	clock   *time.Time
}

func newFixture(t *testing.T, opts ...lifecycle.CoordinatorOption) *fixture {
	t.Helper()

	mgr, err := cookie.New([]string{cookieSecret})
	require.NoError(t, err)

	cookieCfg := cookie.DefaultConfig()
	cookieCfg.SessionMaxAge = 3600
	cookies := cookie.NewLifecycle(mgr, cookieCfg)

	issuer := token.NewFromConfig(token.DefaultConfig())
	repo := newMemRepo()
	sessions := session.NewManager(repo, issuer, session.Config{TTL: 24 * time.Hour})

	store := newMemStore()
	rec, pub := newRecorder()

	current := time.Now()
	cfg := lifecycle.DefaultConfig()
	base := []lifecycle.CoordinatorOption{
		lifecycle.WithPublisher(pub),
		lifecycle.WithRepository(repo),
		lifecycle.WithClock(func() time.Time { return current }),
	}
	coord := lifecycle.NewCoordinator(store, cookies, sessions, issuer, cfg, append(base, opts...)...)

	return &fixture{coord: coord, store: store, repo: repo, rec: rec, cookies: cookies, clock: &current}
}

func newRequest(prev *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	if prev != nil {
		for _, c := range prev.Result().Cookies() {
			r.AddCookie(c)
		}
	}
	return r
}

func TestCoordinator_Start_FreshGuest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	sctx, err := f.coord.Start(ctx, w, newRequest(nil))
	require.NoError(t, err)

	sess := sctx.Session()
	require.NotNil(t, sess)
	assert.True(t, sess.IsGuest())
	assert.NotEmpty(t, sess.GuestID)
	assert.Equal(t, "203.0.113.9", sess.CreatedIP)
	assert.NotEmpty(t, sess.Access.Raw())
	require.NotNil(t, sess.Refresh)
	require.NotNil(t, sess.CSRF)

	assert.NotEmpty(t, sctx.StoreKey())
	assert.NotEqual(t, sess.ID.String(), sctx.StoreKey(), "store key is not the session id")

	// Payload persisted under the store key.
	raw, err := f.store.Read(ctx, sctx.StoreKey())
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	// Signed cookie issued.
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, "sid", w.Result().Cookies()[0].Name)

	require.Len(t, f.rec.started, 1)
	assert.Equal(t, sess.ID, f.rec.started[0].SessionID)

	// Guest aggregates never reach the repository.
	assert.Empty(t, f.repo.sessions)
}

func TestCoordinator_Start_ResumesExistingSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w1 := httptest.NewRecorder()
	first, err := f.coord.Start(ctx, w1, newRequest(nil))
	require.NoError(t, err)

	w2 := httptest.NewRecorder()
	second, err := f.coord.Start(ctx, w2, newRequest(w1))
	require.NoError(t, err)

	assert.Equal(t, first.Session().ID, second.Session().ID)
	assert.Equal(t, first.Session().GuestID, second.Session().GuestID)
	assert.Equal(t, first.StoreKey(), second.StoreKey())
	assert.Equal(t, first.Session().Access.Raw(), second.Session().Access.Raw())
}

func TestCoordinator_Start_RegeneratesStoreKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w1 := httptest.NewRecorder()
	first, err := f.coord.Start(ctx, w1, newRequest(nil))
	require.NoError(t, err)
	oldKey := first.StoreKey()

	*f.clock = f.clock.Add(31 * time.Minute)

	w2 := httptest.NewRecorder()
	second, err := f.coord.Start(ctx, w2, newRequest(w1))
	require.NoError(t, err)

	assert.NotEqual(t, oldKey, second.StoreKey(), "store key rotated")
	assert.Equal(t, first.Session().ID, second.Session().ID, "session identity survives rotation")
	assert.NotContains(t, f.store.keys(), oldKey, "old payload destroyed")

	require.Len(t, f.rec.regenerated, 1)
	assert.Equal(t, first.Session().ID, f.rec.regenerated[0].SessionID)

	// The renewed cookie carries the new key.
	third, err := f.coord.Start(ctx, httptest.NewRecorder(), newRequest(w2))
	require.NoError(t, err)
	assert.Equal(t, second.StoreKey(), third.StoreKey())
}

func TestCoordinator_Start_DemotesStaleUser(t *testing.T) {
	staleID := uuid.New()
	f := newFixture(t, lifecycle.WithUserDirectory(directoryFunc(
		func(_ context.Context, userID uuid.UUID) (bool, error) {
			return userID != staleID, nil
		})))
	ctx := context.Background()

	// Seed a payload claiming a user identity the directory no longer knows.
	seedSession, err := session.New(session.Params{
		UserID:    staleID,
		IP:        "203.0.113.9",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	issuer := token.NewFromConfig(token.DefaultConfig())
	access, _ := issuer.IssueAccess()
	refresh, _ := issuer.IssueRefresh()
	csrf, _ := issuer.IssueCSRF()
	require.NoError(t, seedSession.UpdateTokens(access, &refresh, &csrf, time.Now().Add(24*time.Hour), "test", "203.0.113.9"))

	w0 := httptest.NewRecorder()
	storeKey := seedPayload(t, f, w0, seedSession.Snapshot())

	w := httptest.NewRecorder()
	sctx, err := f.coord.Start(ctx, w, newRequest(w0))
	require.NoError(t, err)

	sess := sctx.Session()
	assert.True(t, sess.IsGuest(), "stale user demoted to guest")
	assert.Equal(t, uuid.Nil, sess.UserID)
	assert.NotEmpty(t, sess.GuestID)
	assert.Equal(t, storeKey, sctx.StoreKey())
}

func TestCoordinator_Start_ValidationGate(t *testing.T) {
	t.Run("malformed session id aborts", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		w0 := httptest.NewRecorder()
		seedRawPayload(t, f, w0, `{"session":{"session_id":"not-a-uuid","guest_id":"g_x","created_ip":"203.0.113.9","expires_at":"2099-01-01T00:00:00Z"}}`)

		_, err := f.coord.Start(ctx, httptest.NewRecorder(), newRequest(w0))
		require.ErrorIs(t, err, lifecycle.ErrInvalidSession)

		var invalid session.InvalidSessionError
		assert.ErrorAs(t, err, &invalid)
		require.Len(t, f.rec.failed, 1)
		assert.NotEmpty(t, f.rec.failed[0].Reason)
	})

	t.Run("snapshot missing origin aborts", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		issuer := token.NewFromConfig(token.DefaultConfig())
		access, _ := issuer.IssueAccess()

		snap := session.Snapshot{
			SessionID:       uuid.NewString(),
			GuestID:         "g_seed",
			AccessToken:     access.Raw(),
			AccessExpiresAt: access.ExpiresAt(),
			ExpiresAt:       time.Now().Add(time.Hour),
			// CreatedIP deliberately missing.
		}
		w0 := httptest.NewRecorder()
		seedPayload(t, f, w0, snap)

		_, err := f.coord.Start(ctx, httptest.NewRecorder(), newRequest(w0))
		assert.ErrorIs(t, err, lifecycle.ErrInvalidSession)
		assert.Len(t, f.rec.failed, 1)
	})
}

func TestCoordinator_Start_RenewsLapsedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A guest session whose expiry and tokens have both lapsed, carrying
	// application data and an origin distinct from the current request.
	snap := session.Snapshot{
		SessionID:       uuid.NewString(),
		GuestID:         "g_lapsed",
		AccessToken:     "stale-access-token",
		AccessExpiresAt: time.Now().Add(-time.Hour),
		CreatedIP:       "198.51.100.1",
		ExpiresAt:       time.Now().Add(-time.Minute),
		Data:            []byte(`{"cart":["sku-1"]}`),
	}
	w0 := httptest.NewRecorder()
	seedPayload(t, f, w0, snap)

	w1 := httptest.NewRecorder()
	sctx, err := f.coord.Start(ctx, w1, newRequest(w0))
	require.NoError(t, err)

	sess := sctx.Session()
	assert.Equal(t, snap.SessionID, sess.ID.String(), "session identity survives renewal")
	assert.True(t, sess.IsGuest())
	assert.NotEqual(t, "stale-access-token", sess.Access.Raw(), "tokens rotated")
	assert.True(t, sess.ExpiresAt.After(time.Now()), "expiry renewed")

	// Renewal rotates credentials only; application state and origin survive.
	assert.Equal(t, snap.Data, sess.RawData)
	assert.Equal(t, "198.51.100.1", sess.CreatedIP)

	require.Len(t, f.rec.expired, 1)
	assert.Equal(t, snap.SessionID, f.rec.expired[0].SessionID.String())
	require.Len(t, f.rec.started, 1)
	assert.Empty(t, f.rec.failed)

	// The data also lands in the written-back payload.
	resumed, err := f.coord.Start(ctx, httptest.NewRecorder(), newRequest(w1))
	require.NoError(t, err)
	assert.Equal(t, snap.Data, resumed.Session().RawData)
}

func TestCoordinator_Start_CorruptPayloadStartsFresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w0 := httptest.NewRecorder()
	seedRawPayload(t, f, w0, "{not json")

	sctx, err := f.coord.Start(ctx, httptest.NewRecorder(), newRequest(w0))
	require.NoError(t, err)
	assert.True(t, sctx.Session().IsGuest())
	assert.Empty(t, f.rec.failed)
}

func TestCoordinator_Save(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w1 := httptest.NewRecorder()
	sctx, err := f.coord.Start(ctx, w1, newRequest(nil))
	require.NoError(t, err)
	assert.False(t, sctx.IsDirty())

	sctx.SetData([]byte(`{"theme":"dark"}`))
	require.True(t, sctx.IsDirty())

	require.NoError(t, f.coord.Save(ctx, sctx))
	assert.False(t, sctx.IsDirty())

	// The next request sees the attached data.
	resumed, err := f.coord.Start(ctx, httptest.NewRecorder(), newRequest(w1))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"theme":"dark"}`), resumed.Session().RawData)

	assert.ErrorIs(t, f.coord.Save(ctx, nil), lifecycle.ErrNoSession)
}

func TestCoordinator_Destroy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w1 := httptest.NewRecorder()
	sctx, err := f.coord.Start(ctx, w1, newRequest(nil))
	require.NoError(t, err)
	sessionID := sctx.Session().ID
	storeKey := sctx.StoreKey()

	w2 := httptest.NewRecorder()
	require.NoError(t, f.coord.Destroy(ctx, w2, sctx))

	assert.Nil(t, sctx.Session())
	assert.Empty(t, sctx.StoreKey())
	assert.True(t, sctx.Destroyed())
	assert.NotContains(t, f.store.keys(), storeKey)

	// Expired cookie pushed to the client.
	cookies := w2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	require.Len(t, f.rec.destroyed, 1)
	assert.Equal(t, sessionID, f.rec.destroyed[0].SessionID)

	assert.ErrorIs(t, f.coord.Destroy(ctx, httptest.NewRecorder(), sctx), lifecycle.ErrNoSession)
}

func TestCoordinator_Touch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	sctx, err := f.coord.Start(ctx, w, newRequest(nil))
	require.NoError(t, err)

	// Guest sessions update in memory only.
	require.NoError(t, f.coord.Touch(ctx, sctx, "198.51.100.7"))
	assert.Equal(t, "198.51.100.7", sctx.Session().LastIP)
	assert.Empty(t, f.repo.touched)

	// User sessions propagate to the repository.
	sctx.Session().UserID = uuid.New()
	require.NoError(t, f.coord.Touch(ctx, sctx, "198.51.100.8"))
	assert.Equal(t, "198.51.100.8", f.repo.touched[sctx.Session().ID].LastIP)

	assert.ErrorIs(t, f.coord.Touch(ctx, nil, "198.51.100.9"), lifecycle.ErrNoSession)
}

func TestCoordinator_GC(t *testing.T) {
	f := newFixture(t)

	n, err := f.coord.GC(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

// seedPayload writes a snapshot payload into the store under a fresh signed
// cookie and returns the store key.
func seedPayload(t *testing.T, f *fixture, w *httptest.ResponseRecorder, snap session.Snapshot) string {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"session":        snap,
		"regenerated_at": f.clock.Add(-time.Minute),
	})
	require.NoError(t, err)
	return seedRawPayload(t, f, w, string(body))
}

// seedRawPayload stores a raw payload string and issues the matching cookie.
func seedRawPayload(t *testing.T, f *fixture, w *httptest.ResponseRecorder, raw string) string {
	t.Helper()

	key := "seeded-store-key-" + uuid.NewString()
	require.NoError(t, f.store.Write(context.Background(), key, raw))
	require.NoError(t, f.cookies.RenewSessionCookie(w, httptest.NewRequest("GET", "/", nil), key))
	return key
}
