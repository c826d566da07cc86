// Package session implements the session aggregate and its token manager.
//
// The aggregate is a small state machine: a session is Active until its
// expiry passes (Expired is derived lazily, never stored) or until it is
// explicitly revoked (Revoked is stored and terminal). The transitions are
// deliberately not monotonic: Renew moves a lapsed session back to Active,
// which is the reactivation path token refresh flows rely on. Revoking twice
// fails with ErrAlreadyRevoked.
//
// Token state is mutated through a single path, UpdateTokens, which replaces
// the access, refresh and CSRF tokens together with the session expiry in one
// transition; no external read can observe a fresh access token paired with a
// stale CSRF token.
//
// # Guest vs persisted sessions
//
// Sessions for registered users are persisted through the Repository port.
// Guest sessions are built by the NewGuest factory and never saved; they
// exist only inside the request-scoped session payload.
//
// # Manager
//
// Manager is the token lifecycle front door:
//
//	mgr := session.NewManager(repo, issuer, session.DefaultConfig())
//
//	sess, err := mgr.CreateTokensForSession(ctx, session.Identity{UserID: uid, SessionID: sid, IP: ip})
//	sess, err := mgr.ValidateAccessToken(ctx, presented) // nil, nil == unauthenticated
//	sess, err := mgr.RefreshSession(ctx, presentedRefresh, ip)
//	ok := mgr.RevokeSession(ctx, sid, "admin", "password change")
//
// Validation lookups never signal absence through errors: unknown, expired,
// revoked and mismatched tokens all resolve to a nil session. Hard errors are
// reserved for construction violations, state-machine violations (terminal
// revocation, refresh token reuse) and infrastructure failures.
package session
