// Package pg provides PostgreSQL connectivity and the durable storage tier
// for sessions: pool construction with retry, health checking, the session
// aggregate repository and the payload store.
//
// # Connection management
//
// Connect creates a pgxpool.Pool from Config (PG_* environment variables),
// verifies connectivity with a ping and retries transient failures with the
// configured interval. Healthcheck returns a probe function suitable for
// readiness endpoints.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
// # Session repository
//
// Repository implements session.Repository over the sessions table. Token
// columns store SHA-256 digests only. Saves are guarded by a version column:
// the losing side of a concurrent rotation gets session.ErrVersionConflict
// instead of silently overwriting. Lookup misses are (nil, nil), matching the
// core's soft-fail contract.
//
//	repo := pg.NewRepository(pool)
//	if err := repo.EnsureSchema(ctx); err != nil { ... }
//
// # Payload store
//
// Store implements sessionstore.Store over the session_payloads table and is
// meant to be the primary tier behind sessionstore.NewFailover. Idle payloads
// are garbage-collected by updated_at.
//
// # Transactions
//
// WithTx attaches a pgx.Tx to a context; repository calls pick it up via
// TxFromContext and participate in the caller's transaction:
//
//	tx, _ := pool.Begin(ctx)
//	defer tx.Rollback(ctx)
//	ctx = pg.WithTx(ctx, tx)
//	// repository calls in ctx now run inside tx
//
// Error classification helpers (IsNotFoundError, IsDuplicateKeyError,
// IsForeignKeyViolationError, IsTxClosedError) cover the common PostgreSQL
// failure patterns.
package pg
