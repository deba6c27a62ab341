// Package eventbus fans simulation events out from the engine to the
// collectors, the journal recorder and the MQTT bridge.
package eventbus

// Event is any value published on the untyped bus.
type Event = any

// EventBus is the publishing and subscribing side used by the engine and its consumers.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus carries untyped events.
type Bus = TypedBus[Event]

// New returns an untyped Bus.
func New(opts ...Option) *Bus { return NewTyped[Event](opts...) }
