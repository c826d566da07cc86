package event

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/sessionkit/core/logger"
)

type envelope struct {
	ctx   context.Context
	event Event
}

// ChannelTransport executes handlers asynchronously behind a buffered
// channel. Dispatch never blocks: when the buffer is full the event is
// dropped with a warning and ErrBufferFull is returned, so a slow subscriber
// degrades observability instead of request latency. Close stops intake and
// drains buffered events before returning.
type ChannelTransport struct {
	mu       sync.RWMutex
	handlers map[string][]Handler

	ch      chan envelope
	wg      sync.WaitGroup
	closed  atomic.Bool
	workers int
	log     *slog.Logger
}

// ChannelOption configures a ChannelTransport.
type ChannelOption func(*ChannelTransport)

// WithWorkers sets the number of consumer goroutines. Defaults to 1.
func WithWorkers(n int) ChannelOption {
	return func(t *ChannelTransport) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithChannelLogger sets the logger for drop warnings and handler failures.
func WithChannelLogger(log *slog.Logger) ChannelOption {
	return func(t *ChannelTransport) {
		if log != nil {
			t.log = log
		}
	}
}

// NewChannelTransport creates an async transport with the given buffer size
// and starts its workers.
func NewChannelTransport(bufferSize int, opts ...ChannelOption) *ChannelTransport {
	if bufferSize < 1 {
		bufferSize = 1
	}

	t := &ChannelTransport{
		handlers: make(map[string][]Handler),
		ch:       make(chan envelope, bufferSize),
		workers:  1,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.wg.Add(t.workers)
	for i := 0; i < t.workers; i++ {
		go t.worker()
	}

	return t
}

// Subscribe registers a handler for its event name. Subscribe before
// dispatching; late subscriptions only see later events.
func (t *ChannelTransport) Subscribe(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[h.EventName()] = append(t.handlers[h.EventName()], h)
}

// Dispatch queues the event without blocking. A full buffer drops the event
// with a warning and returns ErrBufferFull.
func (t *ChannelTransport) Dispatch(ctx context.Context, e Event) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}

	select {
	case t.ch <- envelope{ctx: ctx, event: e}:
		return nil
	default:
		t.log.WarnContext(ctx, "event dropped, buffer full",
			logger.Component("event.channel"), logger.Event(e.Name))
		return ErrBufferFull
	}
}

// Close stops intake, drains buffered events and waits for workers to exit.
// Close is idempotent.
func (t *ChannelTransport) Close() error {
	if t.closed.CompareAndSwap(false, true) {
		close(t.ch)
	}
	t.wg.Wait()
	return nil
}

func (t *ChannelTransport) worker() {
	defer t.wg.Done()
	for env := range t.ch {
		t.mu.RLock()
		handlers := t.handlers[env.event.Name]
		t.mu.RUnlock()

		for _, h := range handlers {
			if err := safeHandle(env.ctx, h, env.event.Payload); err != nil {
				t.log.Warn("event handler failed",
					logger.Component("event.channel"),
					logger.Event(env.event.Name), logger.Error(err))
			}
		}
	}
}
