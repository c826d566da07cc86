// Package cookie provides HMAC-signed HTTP cookie management and the session
// cookie lifecycle built on top of it.
//
// # Manager
//
// Manager signs cookie values with HMAC-SHA256. Multiple secrets are accepted
// for key rotation: the first secret signs, every secret verifies, so a new
// key can be rolled in while cookies signed with the previous key remain
// readable.
//
//	mgr, err := cookie.New([]string{secret},
//		cookie.WithSecure(true),
//		cookie.WithSameSite(http.SameSiteStrictMode))
//	if err != nil { ... }
//
//	_ = mgr.SetSigned(w, "sid", storeKey)
//	key, err := mgr.GetSigned(r, "sid")
//
// Verification failures return ErrInvalidSignature; a missing cookie returns
// ErrCookieNotFound. Serialized cookies larger than the configured maximum are
// rejected with TooLargeCookieError before anything reaches the wire.
//
// # Lifecycle
//
// Lifecycle manages the one cookie that carries the raw session store key.
// The contract is ordered: ApplyParams snapshots the cookie attributes before
// the store engine starts, the engine runs with that snapshot, and
// RenewSessionCookie re-issues the cookie at the end of the request. Renewal
// with an empty store key is a logged no-op: there is no session to extend.
// ClearSessionCookie deletes by sending an expired cookie (MaxAge -1 plus an
// epoch Expires), which works across clients that honor either attribute.
//
//	lc := cookie.NewLifecycle(mgr, cfg)
//	params := lc.ApplyParams()          // before engine start
//	key, err := lc.ReadStoreKey(r)      // signed extraction
//	_ = lc.RenewSessionCookie(w, r, key)
//
// Configuration comes from the environment via Config (COOKIE_* variables);
// SameSite is configured textually as "strict", "lax" or "none".
package cookie
