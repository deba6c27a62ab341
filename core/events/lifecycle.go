package events

import "github.com/kilianp07/elevsim/core/model"

// Lifecycle actions.
const (
	ActionStart  = "start"
	ActionStop   = "stop"
	ActionReset  = "reset"
	ActionConfig = "config"
)

// Lifecycle is published when the engine changes run state or configuration.
type Lifecycle struct {
	Action string
	Config model.SimulationConfig
}
