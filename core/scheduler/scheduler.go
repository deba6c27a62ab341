package scheduler

import (
	"time"

	"github.com/kilianp07/elevsim/core/model"
)

// Rule names the heuristic that selected a car.
type Rule string

const (
	RulePriority    Rule = "priority"
	RuleMorningPeak Rule = "morning_peak"
	RuleEveningPeak Rule = "evening_peak"
	RuleNearest     Rule = "nearest"
)

// Assignment records one floor call bound to a car.
type Assignment struct {
	Call       model.FloorCall
	ElevatorID int
	Rule       Rule
	Waited     time.Duration
}

// Result summarises one scheduling pass.
type Result struct {
	Assignments []Assignment
	// Merged holds the destination requests applied to a known car.
	Merged []model.DestinationRequest
	// Ignored holds destination requests that referenced no known car.
	Ignored []model.DestinationRequest
	// Pending is the number of floor calls left unassigned.
	Pending int
}

// Scheduler assigns floor calls and merges destination requests.
type Scheduler struct {
	Config Config
}

// New returns a Scheduler using cfg.
func New(cfg Config) *Scheduler {
	return &Scheduler{Config: cfg}
}

// Assign runs one pass over state at time now. It mutates state in place:
// assigned calls leave the pending list and their floor joins the chosen car's
// destinations; every pending destination request is merged and cleared.
func (s *Scheduler) Assign(state *model.SimulationState, now time.Time) Result {
	var res Result
	s.assignFloorCalls(state, now, &res)
	s.mergeDestinations(state, &res)
	return res
}

func (s *Scheduler) assignFloorCalls(state *model.SimulationState, now time.Time, res *Result) {
	unassigned := make([]model.FloorCall, 0, len(state.FloorCalls))
	for _, call := range state.FloorCalls {
		car, rule := s.selectElevator(call, state, now)
		if car == nil {
			unassigned = append(unassigned, call)
			continue
		}
		car.AddDestination(call.Floor)
		res.Assignments = append(res.Assignments, Assignment{
			Call:       call,
			ElevatorID: car.ID,
			Rule:       rule,
			Waited:     call.Waited(now),
		})
	}
	state.FloorCalls = unassigned
	res.Pending = len(unassigned)
}

func (s *Scheduler) mergeDestinations(state *model.SimulationState, res *Result) {
	for _, req := range state.DestinationRequests {
		car := state.Elevator(req.ElevatorID)
		if car == nil {
			res.Ignored = append(res.Ignored, req)
			continue
		}
		car.AddDestination(req.Floor)
		res.Merged = append(res.Merged, req)
	}
	state.DestinationRequests = []model.DestinationRequest{}
}

// selectElevator picks the car for call, or nil when none qualifies this pass.
func (s *Scheduler) selectElevator(call model.FloorCall, state *model.SimulationState, now time.Time) (*model.ElevatorState, Rule) {
	eligible := eligibleElevators(state)
	if len(eligible) == 0 {
		return nil, ""
	}
	cfg := state.Config
	switch {
	case call.Waited(now) > s.Config.PriorityThreshold():
		return nearestIdleOrApproaching(call.Floor, eligible), RulePriority
	case cfg.MorningPeak && call.Floor == 0 && call.Direction == model.DirectionUp:
		return lobbyElevator(eligible), RuleMorningPeak
	case cfg.EveningPeak && call.Floor > 0 && call.Direction == model.DirectionDown:
		return descendingElevator(call.Floor, eligible), RuleEveningPeak
	default:
		return nearestIdleOrApproaching(call.Floor, eligible), RuleNearest
	}
}

// eligibleElevators returns the cars with spare capacity, in id order.
func eligibleElevators(state *model.SimulationState) []*model.ElevatorState {
	out := make([]*model.ElevatorState, 0, len(state.Elevators))
	for i := range state.Elevators {
		if state.Elevators[i].Passengers < state.Config.ElevatorCapacity {
			out = append(out, &state.Elevators[i])
		}
	}
	return out
}

// nearestIdleOrApproaching returns the closest car that is idle or already
// heading toward floor. The first car enumerated wins a distance tie.
func nearestIdleOrApproaching(floor int, cars []*model.ElevatorState) *model.ElevatorState {
	var best *model.ElevatorState
	bestDist := -1
	for _, car := range cars {
		if !car.Idle() && !car.MovingToward(floor) {
			continue
		}
		if d := car.Distance(floor); best == nil || d < bestDist {
			best, bestDist = car, d
		}
	}
	return best
}

// lobbyElevator serves lobby up-calls under morning peak: an idle car parked
// at the lobby, else the descending car lowest in the shaft, else any idle car.
func lobbyElevator(cars []*model.ElevatorState) *model.ElevatorState {
	for _, car := range cars {
		if car.CurrentFloor == 0 && car.Idle() {
			return car
		}
	}
	var lowest *model.ElevatorState
	for _, car := range cars {
		if car.Direction != model.DirectionDown {
			continue
		}
		// a later car replaces the current pick unless the pick is strictly lower
		if lowest == nil || !(lowest.CurrentFloor < car.CurrentFloor) {
			lowest = car
		}
	}
	if lowest != nil {
		return lowest
	}
	for _, car := range cars {
		if car.Idle() {
			return car
		}
	}
	return nil
}

// descendingElevator serves down-calls under evening peak: the closest car
// descending from above floor, else the closest idle car above floor.
func descendingElevator(floor int, cars []*model.ElevatorState) *model.ElevatorState {
	if car := closestAbove(floor, cars, model.DirectionDown); car != nil {
		return car
	}
	return closestAbove(floor, cars, model.DirectionIdle)
}

func closestAbove(floor int, cars []*model.ElevatorState, dir model.Direction) *model.ElevatorState {
	var best *model.ElevatorState
	for _, car := range cars {
		if car.Direction != dir || car.CurrentFloor <= floor {
			continue
		}
		if best == nil || !(best.Distance(floor) < car.Distance(floor)) {
			best = car
		}
	}
	return best
}
