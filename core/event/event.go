package event

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Event represents a session lifecycle event with metadata and payload.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent creates an Event with a generated ID and timestamp. The event name
// is derived from the payload's type name, so payload type names must be
// unique across the codebase.
func NewEvent(payload any) Event {
	return Event{
		ID:        uuid.New().String(),
		Name:      eventName(payload),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// eventName extracts the bare type name from a value, unwrapping pointers.
func eventName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
