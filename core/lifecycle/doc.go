// Package lifecycle coordinates the per-request session lifecycle end to end.
//
// The Coordinator ties the subsystems together: the cookie lifecycle for the
// signed store-key cookie, the failover session store for the payload, the
// session manager for token minting and the event publisher for lifecycle
// notifications.
//
//	coord := lifecycle.NewCoordinator(store, cookies, sessions, issuer, cfg,
//		lifecycle.WithUserDirectory(users),
//		lifecycle.WithPublisher(publisher))
//
//	sctx, err := coord.Start(ctx, w, r)
//	if err != nil { ... }
//	sctx.SetData(state)
//	defer func() {
//		if sctx.IsDirty() {
//			_ = coord.Save(ctx, sctx)
//		}
//	}()
//
// Start resolves the session in a fixed order: cookie parameters are applied
// before the store engine runs, the payload is looked up by the store key
// from the cookie (minting a fresh key when the cookie is absent or fails
// verification), identity is checked against the user directory (a stale
// user id demotes the session to guest and continues), missing tokens are
// minted, and the resulting snapshot passes the validation gate. The gate is
// the only hard failure: it aborts with ErrInvalidSession and a
// SessionFailed event. Everything else either degrades or starts a fresh
// guest session.
//
// The store key under which the payload lives is distinct from the domain
// session identifier and is rotated on a configurable interval: a new key is
// minted, the payload written under it, the old key destroyed, and a
// SessionRegenerated event published. The rotation leaves the session id and
// tokens untouched.
//
// Destroy clears in-memory state first, then destroys the stored payload and
// clears the cookie; the cookie clear runs even when the store destroy
// fails. The resulting Context is the request's explicit session state; no
// ambient globals are involved.
package lifecycle
