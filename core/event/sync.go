package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// SyncTransport executes handlers inline in the caller's goroutine. Handler
// errors are aggregated with errors.Join; panics are caught and converted to
// errors so one misbehaving subscriber cannot take down the request.
type SyncTransport struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewSyncTransport creates a synchronous transport.
func NewSyncTransport() *SyncTransport {
	return &SyncTransport{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for its event name.
func (t *SyncTransport) Subscribe(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[h.EventName()] = append(t.handlers[h.EventName()], h)
}

// Dispatch runs every subscribed handler immediately and returns their
// aggregated errors.
func (t *SyncTransport) Dispatch(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.RLock()
	handlers := t.handlers[e.Name]
	t.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := safeHandle(ctx, h, e.Payload); err != nil {
			errs = append(errs, fmt.Errorf("handler %s failed: %w", h.EventName(), err))
		}
	}
	return errors.Join(errs...)
}

// Close is a no-op for the sync transport.
func (t *SyncTransport) Close() error { return nil }

// safeHandle invokes the handler, converting panics to errors.
func safeHandle(ctx context.Context, h Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, payload)
}
