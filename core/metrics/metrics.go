package metrics

import (
	"time"

	"github.com/kilianp07/elevsim/core/model"
)

// TickEvent summarises one motion tick.
type TickEvent struct {
	PendingCalls int
	ActiveCars   int
	Passengers   int
	Capacity     int
	Elevators    int
	Duration     time.Duration
	Time         time.Time
}

// MetricsSink records simulation activity for observability purposes.
type MetricsSink interface {
	RecordTick(ev TickEvent) error
}

// CallEvent records a floor call entering the pending list.
type CallEvent struct {
	Floor     int
	Direction model.Direction
	Source    string
	Time      time.Time
}

// CallRecorder records queued floor calls.
type CallRecorder interface {
	RecordCall(ev CallEvent) error
}

// AssignmentEvent records a call bound to a car.
type AssignmentEvent struct {
	ElevatorID int
	Floor      int
	Direction  model.Direction
	Rule       string
	Waited     time.Duration
	Time       time.Time
}

// AssignmentRecorder records scheduler decisions.
type AssignmentRecorder interface {
	RecordAssignment(ev AssignmentEvent) error
}

// DoorEvent records a door phase change.
type DoorEvent struct {
	ElevatorID int
	Floor      int
	From       model.DoorPhase
	To         model.DoorPhase
	Time       time.Time
}

// DoorRecorder records door transitions.
type DoorRecorder interface {
	RecordDoor(ev DoorEvent) error
}

// ExchangeEvent records passengers leaving and boarding at a stop.
type ExchangeEvent struct {
	ElevatorID int
	Floor      int
	Left       int
	Entered    int
	Passengers int
	Capacity   int
	Time       time.Time
}

// ExchangeRecorder records passenger exchanges.
type ExchangeRecorder interface {
	RecordExchange(ev ExchangeEvent) error
}

// ElevatorStateEvent is a sampled snapshot of one car.
type ElevatorStateEvent struct {
	Elevator model.ElevatorState
	Capacity int
	Time     time.Time
}

// ElevatorStateRecorder records car snapshots.
type ElevatorStateRecorder interface {
	RecordElevatorState(ev ElevatorStateEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTick(TickEvent) error                   { return nil }
func (NopSink) RecordCall(CallEvent) error                   { return nil }
func (NopSink) RecordAssignment(AssignmentEvent) error       { return nil }
func (NopSink) RecordDoor(DoorEvent) error                   { return nil }
func (NopSink) RecordExchange(ExchangeEvent) error           { return nil }
func (NopSink) RecordElevatorState(ElevatorStateEvent) error { return nil }
