// Package sessionstore defines the keyed session-payload storage port and a
// failover composite over two backends.
//
// The Store interface is implemented by the durable postgres store, the redis
// store and the local file store under integration/. Failover composes two of
// them into one Store: the primary (durable, queryable) is always tried
// first, and the secondary (cheap, local) absorbs primary outages so a
// storage incident degrades availability instead of failing requests.
//
//	store := sessionstore.NewFailover(pgStore, fileStore,
//		sessionstore.WithLogger(log))
//
//	if err := store.Open(ctx, cfg.Path, cfg.Name); err != nil { ... }
//	defer store.Close()
//
//	err := store.Write(ctx, key, payload) // falls back to secondary on primary failure
//	data, _ := store.Read(ctx, key)       // never raises; "" on total miss
//
// Fallback is strictly sequential (primary first, then secondary), never a
// concurrent race between the two. Primary failures are logged through the
// configured slog.Logger with a store_tier attribute and otherwise absorbed;
// only a failure across both stores surfaces as ErrUnavailable.
package sessionstore
