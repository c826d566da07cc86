// Package sessionkit is a session lifecycle toolkit for web applications.
//
// It covers the full arc of a server-side session: hashed credential tokens
// with rotation, a session aggregate with guest and authenticated modes,
// failover payload storage across primary and secondary tiers, signed cookies,
// and a request-scoped coordinator that ties them together with lifecycle
// events.
//
// The building blocks live under core/ and compose through small interfaces:
//
//   - core/token: token issuing and constant-time hashed comparison
//   - core/session: the session aggregate, its snapshot form, the Repository
//     port, and the token rotation manager
//   - core/sessionstore: the keyed payload Store port and the failover wrapper
//   - core/cookie: HMAC-signed cookies and the session cookie lifecycle
//   - core/event: lifecycle event publishing over sync or channel transports
//   - core/lifecycle: the per-request coordinator (start, touch, destroy,
//     store key regeneration)
//
// Concrete storage backends live under integration/: Postgres (pgx) for the
// durable tier, Redis for the fast tier, and the local filesystem as a
// zero-dependency fallback.
package sessionkit
