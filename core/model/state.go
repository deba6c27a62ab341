package model

// SimulationState is the aggregate owned by the simulation engine.
type SimulationState struct {
	Elevators           []ElevatorState      `json:"elevators"`
	FloorCalls          []FloorCall          `json:"floorRequests"`
	DestinationRequests []DestinationRequest `json:"destinationRequests"`
	Config              SimulationConfig     `json:"config"`
}

// NewState builds the initial state for cfg: every car at the lobby, idle, doors closed, empty.
func NewState(cfg SimulationConfig) SimulationState {
	elevators := make([]ElevatorState, cfg.ElevatorCount)
	for i := range elevators {
		elevators[i] = NewElevator(i)
	}
	return SimulationState{
		Elevators:           elevators,
		FloorCalls:          []FloorCall{},
		DestinationRequests: []DestinationRequest{},
		Config:              cfg,
	}
}

// Clone returns a deep copy sharing no memory with s. Nil lists come back empty.
func (s SimulationState) Clone() SimulationState {
	out := SimulationState{
		Elevators:           make([]ElevatorState, len(s.Elevators)),
		FloorCalls:          append([]FloorCall{}, s.FloorCalls...),
		DestinationRequests: append([]DestinationRequest{}, s.DestinationRequests...),
		Config:              s.Config,
	}
	for i, e := range s.Elevators {
		e.DestinationFloors = append([]int{}, e.DestinationFloors...)
		if e.PhaseEnteredAt != nil {
			t := *e.PhaseEnteredAt
			e.PhaseEnteredAt = &t
		}
		out.Elevators[i] = e
	}
	return out
}

// Elevator returns the car with the given id, or nil.
func (s *SimulationState) Elevator(id int) *ElevatorState {
	for i := range s.Elevators {
		if s.Elevators[i].ID == id {
			return &s.Elevators[i]
		}
	}
	return nil
}
