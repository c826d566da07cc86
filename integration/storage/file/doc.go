// Package file implements a local filesystem session payload store.
//
// Each session key maps to one file under a namespaced directory created by
// Open, with owner-only permissions (0700 directories, 0600 files). It has no
// external dependencies and survives process restarts on the same host, which
// makes it a natural fallback tier behind a database-backed store:
//
//	primary := pg.NewStore(pool)
//	fallback := file.NewStore()
//	store := sessionstore.NewFailover(primary, fallback)
//
// Session keys are validated before touching the filesystem: anything outside
// the issuer's alphanumeric shape is rejected with ErrInvalidKey rather than
// resolved as a path. Stale payloads are reaped by GC based on file
// modification time.
//
// The store is not suitable for multi-host deployments; payloads written on
// one host are invisible to the others.
package file
