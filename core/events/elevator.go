package events

import (
	"time"

	"github.com/kilianp07/elevsim/core/model"
)

// DoorChanged is published when a car's door phase changes.
type DoorChanged struct {
	ElevatorID int
	Floor      int
	From       model.DoorPhase
	To         model.DoorPhase
	At         time.Time
}

// PassengerExchange is published when doors finish opening.
type PassengerExchange struct {
	ElevatorID int
	Floor      int
	Left       int
	Entered    int
	Passengers int
	Capacity   int
}

// TickCompleted is published after every motion tick.
type TickCompleted struct {
	At           time.Time
	PendingCalls int
	ActiveCars   int
	Passengers   int
	Capacity     int
	Elevators    int
	Duration     time.Duration
}
