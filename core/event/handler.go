package event

import (
	"context"
	"encoding/json"
	"fmt"
)

// HandlerFunc is a type-safe function signature for processing events of type T.
type HandlerFunc[T any] func(context.Context, T) error

// Handler processes events. Implementations are registered with a transport
// to handle a specific event type.
type Handler interface {
	// EventName returns the event name this handler processes.
	EventName() string

	// Handle executes the handler with the given event payload.
	Handle(ctx context.Context, payload any) error
}

// NewHandler creates a handler with a manually specified event name.
func NewHandler[T any](name string, fn HandlerFunc[T]) Handler {
	return &handlerFuncWrapper[T]{name: name, fn: fn}
}

// NewHandlerFunc creates a type-safe handler from a function. The event name
// is derived from the type parameter.
//
//	h := event.NewHandlerFunc(func(ctx context.Context, evt SessionStarted) error {
//	    return audit.Record(ctx, evt)
//	})
func NewHandlerFunc[T any](fn HandlerFunc[T]) Handler {
	var zero T
	return &handlerFuncWrapper[T]{name: eventName(zero), fn: fn}
}

type handlerFuncWrapper[T any] struct {
	name string
	fn   HandlerFunc[T]
}

func (h *handlerFuncWrapper[T]) EventName() string { return h.name }

func (h *handlerFuncWrapper[T]) Handle(ctx context.Context, payload any) error {
	typed, err := unmarshalPayload[T](payload)
	if err != nil {
		return err
	}
	return h.fn(ctx, typed)
}

// unmarshalPayload converts payload to type T, unmarshaling raw JSON bytes
// when the payload crossed a serialization boundary.
func unmarshalPayload[T any](payload any) (T, error) {
	var zero T

	if v, ok := payload.(T); ok {
		return v, nil
	}

	if data, ok := payload.([]byte); ok {
		var evt T
		if err := json.Unmarshal(data, &evt); err != nil {
			return zero, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		return evt, nil
	}

	return zero, fmt.Errorf("unexpected payload type: %T", payload)
}
