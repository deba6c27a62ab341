// Package motion advances a single car by one tick: door timing, passenger
// exchange and one-floor travel toward the next destination.
package motion

import (
	"time"

	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/random"
)

const (
	// DoorOpenDuration is how long doors stay fully open before closing.
	DoorOpenDuration = 2000 * time.Millisecond
	// DoorTransitionDuration is how long opening or closing takes.
	DoorTransitionDuration = 1000 * time.Millisecond
	// maxExchange bounds the passengers leaving or entering per stop.
	maxExchange = 3
)

// Exchange describes the passengers moved when doors finished opening.
type Exchange struct {
	Left    int
	Entered int
}

// Outcome reports what changed during one Step.
type Outcome struct {
	FromFloor int
	FromPhase model.DoorPhase
	Moved     bool
	// Arrived is set when a destination was popped and doors started opening.
	Arrived  bool
	Exchange *Exchange
}

// PhaseChanged reports whether the door phase differs from the one before the step.
func (o Outcome) PhaseChanged(e *model.ElevatorState) bool {
	return o.FromPhase != e.DoorPhase
}

// Step advances e by one tick at time now. capacity bounds the passenger
// count and rng drives the exchange. A car whose clock never moves past the
// open window stays OPEN.
func Step(e *model.ElevatorState, capacity int, now time.Time, rng random.Source) Outcome {
	out := Outcome{FromFloor: e.CurrentFloor, FromPhase: e.DoorPhase}
	if e.Passengers > capacity {
		e.Passengers = capacity
	}

	switch e.DoorPhase {
	case model.DoorOpen:
		if elapsed(e, now) > DoorOpenDuration {
			enter(e, model.DoorClosing, now)
		}
		return out
	case model.DoorOpening, model.DoorClosing:
		if e.PhaseEnteredAt == nil {
			// phase entered without a timestamp; start timing from now
			enter(e, e.DoorPhase, now)
			return out
		}
		if elapsed(e, now) > DoorTransitionDuration {
			enter(e, e.DoorPhase.Next(), now)
			if e.DoorPhase == model.DoorOpen {
				x := exchange(e, capacity, rng)
				out.Exchange = &x
			}
		}
		return out
	}

	if len(e.DestinationFloors) == 0 {
		e.Direction = model.DirectionIdle
		return out
	}
	next := e.DestinationFloors[0]
	if next != e.CurrentFloor {
		if next > e.CurrentFloor {
			e.Direction = model.DirectionUp
			e.CurrentFloor++
		} else {
			e.Direction = model.DirectionDown
			e.CurrentFloor--
		}
		out.Moved = true
	}
	if e.CurrentFloor == next {
		e.DestinationFloors = e.DestinationFloors[1:]
		enter(e, model.DoorOpening, now)
		out.Arrived = true
	}
	return out
}

func elapsed(e *model.ElevatorState, now time.Time) time.Duration {
	if e.PhaseEnteredAt == nil {
		return 0
	}
	return now.Sub(*e.PhaseEnteredAt)
}

func enter(e *model.ElevatorState, phase model.DoorPhase, now time.Time) {
	e.DoorPhase = phase
	if phase == model.DoorClosed {
		e.PhaseEnteredAt = nil
		return
	}
	t := now
	e.PhaseEnteredAt = &t
}

func exchange(e *model.ElevatorState, capacity int, rng random.Source) Exchange {
	left := min(e.Passengers, rng.Intn(maxExchange+1))
	e.Passengers -= left
	entered := min(max(capacity-e.Passengers, 0), rng.Intn(maxExchange+1))
	e.Passengers += entered
	return Exchange{Left: left, Entered: entered}
}
