package model

import (
	"slices"
	"time"
)

// Direction is the travel direction of a car or the requested direction of a floor call.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionIdle Direction = "IDLE"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown || d == DirectionIdle
}

// DoorPhase is the state of a car's door automaton.
type DoorPhase string

const (
	DoorClosed  DoorPhase = "CLOSED"
	DoorOpening DoorPhase = "OPENING"
	DoorOpen    DoorPhase = "OPEN"
	DoorClosing DoorPhase = "CLOSING"
)

// Next returns the phase following p in the fixed door cycle
// CLOSED -> OPENING -> OPEN -> CLOSING -> CLOSED.
func (p DoorPhase) Next() DoorPhase {
	switch p {
	case DoorClosed:
		return DoorOpening
	case DoorOpening:
		return DoorOpen
	case DoorOpen:
		return DoorClosing
	default:
		return DoorClosed
	}
}

// ElevatorState is the live state of one car.
type ElevatorState struct {
	ID                int        `json:"id"`
	CurrentFloor      int        `json:"currentFloor"`
	Direction         Direction  `json:"direction"`
	DoorPhase         DoorPhase  `json:"doorState"`
	DestinationFloors []int      `json:"destinationFloors"`
	Passengers        int        `json:"passengers"`
	PhaseEnteredAt    *time.Time `json:"phaseEnteredAt"`
}

// NewElevator returns a car parked at the lobby with closed doors.
func NewElevator(id int) ElevatorState {
	return ElevatorState{
		ID:                id,
		CurrentFloor:      0,
		Direction:         DirectionIdle,
		DoorPhase:         DoorClosed,
		DestinationFloors: []int{},
	}
}

// HasDestination reports whether floor is already queued for the car.
func (e *ElevatorState) HasDestination(floor int) bool {
	return slices.Contains(e.DestinationFloors, floor)
}

// AddDestination queues floor if absent and reorders the whole list:
// ascending while the car travels up, descending otherwise (IDLE included).
func (e *ElevatorState) AddDestination(floor int) bool {
	if e.HasDestination(floor) {
		return false
	}
	e.DestinationFloors = append(e.DestinationFloors, floor)
	e.SortDestinations()
	return true
}

// SortDestinations applies the direction ordering rule to the destination list.
func (e *ElevatorState) SortDestinations() {
	if e.Direction == DirectionUp {
		slices.Sort(e.DestinationFloors)
		return
	}
	slices.SortFunc(e.DestinationFloors, func(a, b int) int { return b - a })
}

// Idle reports whether the car has no direction of travel.
func (e *ElevatorState) Idle() bool { return e.Direction == DirectionIdle }

// MovingToward reports whether the car is travelling toward floor,
// counting a car already at floor as moving toward it.
func (e *ElevatorState) MovingToward(floor int) bool {
	switch e.Direction {
	case DirectionUp:
		return e.CurrentFloor <= floor
	case DirectionDown:
		return e.CurrentFloor >= floor
	default:
		return false
	}
}

// Distance is the absolute number of floors between the car and floor.
func (e *ElevatorState) Distance(floor int) int {
	d := e.CurrentFloor - floor
	if d < 0 {
		return -d
	}
	return d
}
