// Package eventbus provides the in-process fan-out bus connecting the delivery
// lifecycle to its observers (metrics collector, MQTT tracking publisher, CLI).
package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus is the untyped bus used between the delivery manager and its
// observers. Observers type-switch on the received events.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation.
type Bus = TypedBus[Event]

// New creates a new Bus.
func New() *Bus { return NewTyped[Event]() }

var _ EventBus = (*Bus)(nil)
