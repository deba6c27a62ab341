package scenarios

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/scheduler"
)

// epoch anchors call ages so runs do not depend on the wall clock.
var epoch = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

type Outcome struct {
	Assignments  []ExpectedAssignment
	Pending      int
	Ignored      int
	Destinations map[int][]int
}

// Run builds the scenario state and runs one scheduler pass over it.
func Run(sc *Scenario) (Outcome, error) {
	cfg := sc.Config.ToModel()
	if err := cfg.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	state := model.NewState(cfg)
	for _, def := range sc.Elevators {
		car := state.Elevator(def.ID)
		if car == nil {
			return Outcome{}, fmt.Errorf("scenario %s: unknown elevator %d", sc.Name, def.ID)
		}
		*car = def.ToModel()
	}
	for _, c := range sc.Calls {
		state.FloorCalls = append(state.FloorCalls, c.ToModel(epoch))
	}
	for _, d := range sc.Destinations {
		state.DestinationRequests = append(state.DestinationRequests, model.DestinationRequest{
			ElevatorID: d.Elevator,
			Floor:      d.Floor,
			CreatedAt:  epoch,
		})
	}

	res := scheduler.New(sc.Config.Scheduler()).Assign(&state, epoch)

	out := Outcome{
		Pending:      res.Pending,
		Ignored:      len(res.Ignored),
		Destinations: make(map[int][]int, len(state.Elevators)),
	}
	for _, a := range res.Assignments {
		out.Assignments = append(out.Assignments, ExpectedAssignment{
			Floor:    a.Call.Floor,
			Elevator: a.ElevatorID,
			Rule:     string(a.Rule),
		})
	}
	for _, car := range state.Elevators {
		out.Destinations[car.ID] = car.DestinationFloors
	}
	return out, nil
}

// Verify compares o against the expectations of sc and lists every mismatch.
func Verify(sc *Scenario, o Outcome) error {
	var problems []string
	exp := sc.Expected
	if !slices.Equal(exp.Assignments, o.Assignments) {
		problems = append(problems, fmt.Sprintf("assignments: expected %v, got %v", exp.Assignments, o.Assignments))
	}
	if exp.Pending != o.Pending {
		problems = append(problems, fmt.Sprintf("pending: expected %d, got %d", exp.Pending, o.Pending))
	}
	if exp.Ignored != o.Ignored {
		problems = append(problems, fmt.Sprintf("ignored: expected %d, got %d", exp.Ignored, o.Ignored))
	}
	for id, want := range exp.Destinations {
		if got := o.Destinations[id]; !slices.Equal(want, got) {
			problems = append(problems, fmt.Sprintf("elevator %d destinations: expected %v, got %v", id, want, got))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("scenario %s: %s", sc.Name, strings.Join(problems, "; "))
	}
	return nil
}
