package cookie_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/cookie"
)

func newTestLifecycle(t *testing.T, opts ...cookie.LifecycleOption) *cookie.Lifecycle {
	t.Helper()

	mgr, err := cookie.New([]string{testSecret}, cookie.WithSecure(true))
	require.NoError(t, err)

	cfg := cookie.DefaultConfig()
	cfg.SessionName = "sid"
	cfg.SessionMaxAge = 3600
	return cookie.NewLifecycle(mgr, cfg, opts...)
}

func TestLifecycle_ApplyParams(t *testing.T) {
	lc := newTestLifecycle(t)

	params := lc.ApplyParams()
	assert.Equal(t, "sid", params.Name)
	assert.Equal(t, "/", params.Path)
	assert.Equal(t, 3600, params.MaxAge)
	assert.True(t, params.Secure)
	assert.True(t, params.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, params.SameSite)
}

func TestLifecycle_RenewSessionCookie(t *testing.T) {
	t.Run("round-trips the store key", func(t *testing.T) {
		lc := newTestLifecycle(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		require.NoError(t, lc.RenewSessionCookie(w, r, "store-key-abc123"))

		set := w.Result().Cookies()
		require.Len(t, set, 1)
		assert.Equal(t, "sid", set[0].Name)
		assert.Equal(t, 3600, set[0].MaxAge)

		key, err := lc.ReadStoreKey(requestWithCookies(t, w))
		require.NoError(t, err)
		assert.Equal(t, "store-key-abc123", key)
	})

	t.Run("empty store key is a warned no-op", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		lc := newTestLifecycle(t, cookie.WithLifecycleLogger(log))

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		require.NoError(t, lc.RenewSessionCookie(w, r, ""))

		assert.Empty(t, w.Result().Cookies())
		assert.Contains(t, buf.String(), "no active session")
	})
}

func TestLifecycle_ClearSessionCookie(t *testing.T) {
	lc := newTestLifecycle(t)

	w := httptest.NewRecorder()
	lc.ClearSessionCookie(w)

	set := w.Result().Cookies()
	require.Len(t, set, 1)
	assert.Equal(t, "sid", set[0].Name)
	assert.Equal(t, -1, set[0].MaxAge)
	assert.True(t, set[0].Expires.Unix() <= 0)
}

func TestLifecycle_ReadStoreKey(t *testing.T) {
	t.Run("missing cookie", func(t *testing.T) {
		lc := newTestLifecycle(t)

		_, err := lc.ReadStoreKey(httptest.NewRequest("GET", "/", nil))
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		lc := newTestLifecycle(t)

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "Zm9yZ2Vk|Zm9yZ2VkLXNpZ25hdHVyZQ=="})

		_, err := lc.ReadStoreKey(r)
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})
}
