// Package event publishes session lifecycle events to in-process subscribers.
//
// Payload types (SessionStarted, SessionFailed, SessionDestroyed,
// SessionRegenerated, SessionExpired) carry identifiers and audit context
// only; raw store keys and token material never leave the producing package.
//
// A Publisher wraps payloads into Events and dispatches them through a
// Transport:
//
//	transport := event.NewSyncTransport()
//	transport.Subscribe(event.NewHandlerFunc(func(ctx context.Context, evt event.SessionDestroyed) error {
//	    return audit.Record(ctx, evt)
//	}))
//
//	publisher := event.NewPublisher(transport)
//	_ = publisher.Publish(ctx, event.SessionDestroyed{SessionID: id})
//
// SyncTransport runs handlers inline and aggregates their errors with
// errors.Join. ChannelTransport decouples handlers behind a buffered channel:
// Dispatch never blocks, a full buffer drops the event with a warning, and
// Close drains what was buffered before returning. Handler panics are caught
// by both transports.
package event
