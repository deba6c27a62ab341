package events

import (
	"time"

	"github.com/kilianp07/elevsim/core/model"
)

// Call sources.
const (
	SourceExternal  = "external"
	SourceGenerator = "generator"
)

// CallQueued is published when a floor call is accepted into the pending list.
type CallQueued struct {
	Call   model.FloorCall
	Source string
}

// CallAssigned is published for each call the scheduler assigns.
// Rule is one of "priority", "morning_peak", "evening_peak" or "nearest".
type CallAssigned struct {
	Call       model.FloorCall
	ElevatorID int
	Rule       string
	Waited     time.Duration
	At         time.Time
}
