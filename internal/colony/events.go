package colony

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventKind names a lifecycle transition.
type EventKind string

const (
	EventBorn      EventKind = "born"
	EventMurdered  EventKind = "murdered"
	EventDied      EventKind = "died"
	EventCancelled EventKind = "cancelled"
)

// ParseEventKind resolves a kind name, case-insensitively.
func ParseEventKind(name string) (EventKind, error) {
	switch k := EventKind(strings.ToLower(strings.TrimSpace(name))); k {
	case EventBorn, EventMurdered, EventDied, EventCancelled:
		return k, nil
	}
	return "", fmt.Errorf("unknown event kind %q", name)
}

// Event describes one lifecycle transition of one entity.
type Event struct {
	World    string    `json:"world,omitempty"`
	Kind     EventKind `json:"kind"`
	EntityID string    `json:"entity_id"`
	Species  SpeciesID `json:"species"`
	Position Position  `json:"position"`

	// By is the attacking species for EventMurdered, zero otherwise.
	By SpeciesID `json:"by,omitempty"`

	At time.Time `json:"at"`
}

// JSON returns the event as JSON bytes
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventSink receives lifecycle events. Enqueue is called while the world
// lock may be held, so implementations must not block.
type EventSink interface {
	Enqueue(event Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Enqueue(event Event) { f(event) }
