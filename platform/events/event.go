// Package events is the in-process publish/subscribe bus that lets modules
// react to each other's domain events without importing each other.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every domain event, usually by embedding BaseEvent.
type Event interface {
	EventName() string
	EventID() string
	OccurredAt() time.Time
}

// BaseEvent carries the identity and time shared by all events.
type BaseEvent struct {
	ID        string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a fresh id and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.NewString(), Timestamp: time.Now().UTC()}
}
