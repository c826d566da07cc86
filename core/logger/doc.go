// Package logger provides structured logging helpers built on the standard
// log/slog package: nil-safe attribute constructors for the identifiers this
// module logs (session IDs, store keys, client IPs) and env-driven handler
// construction.
//
// Attribute helpers return an empty slog.Attr for nil/zero inputs, so call
// sites never need explicit nil checks:
//
//	log.Info("session started",
//		logger.SessionID(sess.ID),
//		logger.ClientIP(ip),
//		logger.Error(err), // dropped when err is nil
//	)
//
// Raw store keys are credential material; StoreKey logs only a short prefix.
//
// Handlers are built from env-mapped Config:
//
//	log := logger.New(logger.Config{Level: "debug", Format: "json"}, os.Stderr)
package logger
