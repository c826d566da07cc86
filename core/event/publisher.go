package event

import (
	"context"
	"log/slog"
)

// Publisher publishes lifecycle events via a transport. It is a stateless
// client: wrapping the payload into an Event and dispatching is all it does.
//
//	publisher := event.NewPublisher(event.NewSyncTransport())
//	err := publisher.Publish(ctx, event.SessionStarted{SessionID: id})
type Publisher struct {
	transport Transport
	logger    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger for the publisher.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher creates an event publisher over the given transport.
func NewPublisher(transport Transport, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		transport: transport,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish wraps payload into an Event and dispatches it.
//
// With a sync transport this blocks until every handler completes and
// returns their aggregated errors; with the channel transport it returns the
// dispatch result only.
func (p *Publisher) Publish(ctx context.Context, payload any) error {
	return p.transport.Dispatch(ctx, NewEvent(payload))
}
