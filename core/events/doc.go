// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - CallQueued: a floor call entered the pending list
//   - CallAssigned: the scheduler bound a call to a car
//   - DoorChanged: a car's door automaton changed phase
//   - PassengerExchange: passengers left or boarded when doors opened
//   - TickCompleted: one motion tick finished
//   - Lifecycle: the engine started, stopped, reset or changed config
package events
