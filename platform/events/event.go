// Package events is an in-process publish/subscribe bus. Event payloads live
// with the modules that emit them.
package events

import (
	"context"
	"time"
)

// Event is anything published on a Bus. EventName is the subscription key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the instant shared by every event.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEventAt stamps an event with the instant recorded on the entity it
// describes, in UTC.
func NewBaseEventAt(at time.Time) BaseEvent {
	return BaseEvent{Timestamp: at.UTC()}
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Bus delivers events to the handlers subscribed under their name.
type Bus interface {
	// Publish fans out in the background; handler errors are logged only.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers one after another and returns their errors joined.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
