package event

import "context"

// Transport routes events to subscribed handlers.
type Transport interface {
	// Subscribe registers a handler for its event name.
	Subscribe(h Handler)

	// Dispatch routes the event to every handler subscribed to its name.
	Dispatch(ctx context.Context, e Event) error

	// Close releases transport resources; async transports drain first.
	Close() error
}
