package event

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a controller lifecycle notification
type EventType uint8

const (
	EventNone EventType = iota
	EventStart
	EventPause
	EventResume
	EventStop
	EventError
	EventResetAll
)

// Event is a lifecycle notification delivered synchronously to bus listeners
type Event struct {
	Type EventType

	// ID is the animation id, empty for EventResetAll
	ID string

	// RunID correlates the start and error events of a single play
	RunID uuid.UUID

	// Context is the optional caller context passed to play
	Context map[string]any

	// Err is set for EventError
	Err error

	Time time.Time
}

// String returns the wire name of the event type
func (t EventType) String() string {
	return GetEventName(t)
}
