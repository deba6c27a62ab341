package model

import (
	"fmt"
	"math"
	"time"
)

// TrafficPattern classifies the configured peak bias.
type TrafficPattern int

const (
	PatternNormal TrafficPattern = iota
	PatternMorningPeak
	PatternEveningPeak
)

// String returns the label used in reports.
func (p TrafficPattern) String() string {
	switch p {
	case PatternMorningPeak:
		return "Morning Peak"
	case PatternEveningPeak:
		return "Evening Peak"
	default:
		return "Normal"
	}
}

// SimulationConfig holds the tunables of a simulation run.
type SimulationConfig struct {
	FloorCount       int     `json:"numberOfFloors"`
	ElevatorCount    int     `json:"numberOfElevators"`
	CallArrivalRate  float64 `json:"requestFrequency"` // calls per second
	TickRate         float64 `json:"simulationSpeed"`  // motion steps per second
	ElevatorCapacity int     `json:"elevatorCapacity"`
	MorningPeak      bool    `json:"morningPeak"`
	EveningPeak      bool    `json:"eveningPeak"`
}

// DefaultSimulationConfig returns the configuration used when none is provided.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		FloorCount:       10,
		ElevatorCount:    4,
		CallArrivalRate:  0.5,
		TickRate:         1,
		ElevatorCapacity: 10,
	}
}

// Validate checks the configuration bounds.
func (c SimulationConfig) Validate() error {
	if c.FloorCount < 2 {
		return fmt.Errorf("%w: numberOfFloors must be at least 2, got %d", ErrInvalidConfig, c.FloorCount)
	}
	if c.ElevatorCount < 1 {
		return fmt.Errorf("%w: numberOfElevators must be at least 1, got %d", ErrInvalidConfig, c.ElevatorCount)
	}
	if !positive(c.CallArrivalRate) {
		return fmt.Errorf("%w: requestFrequency must be positive, got %v", ErrInvalidConfig, c.CallArrivalRate)
	}
	if !positive(c.TickRate) {
		return fmt.Errorf("%w: simulationSpeed must be positive, got %v", ErrInvalidConfig, c.TickRate)
	}
	if c.ElevatorCapacity < 1 {
		return fmt.Errorf("%w: elevatorCapacity must be at least 1, got %d", ErrInvalidConfig, c.ElevatorCapacity)
	}
	return nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Pattern folds the two peak flags into a single classification.
// Morning is checked before evening when both are set.
func (c SimulationConfig) Pattern() TrafficPattern {
	switch {
	case c.MorningPeak:
		return PatternMorningPeak
	case c.EveningPeak:
		return PatternEveningPeak
	default:
		return PatternNormal
	}
}

// CallInterval is the period of the call generation task.
func (c SimulationConfig) CallInterval() time.Duration {
	return rateToPeriod(c.CallArrivalRate)
}

// TickInterval is the period of the motion task.
func (c SimulationConfig) TickInterval() time.Duration {
	return rateToPeriod(c.TickRate)
}

// Periods are clamped to [MinPeriod, MaxPeriod]: rates above 1000/s run at
// 1000/s and tiny rates saturate instead of overflowing.
const (
	MinPeriod = time.Millisecond
	MaxPeriod = time.Duration(math.MaxInt64)
)

func rateToPeriod(rate float64) time.Duration {
	if !positive(rate) {
		return 0
	}
	p := float64(time.Second) / rate
	switch {
	case p >= float64(MaxPeriod):
		return MaxPeriod
	case p <= float64(MinPeriod):
		return MinPeriod
	}
	return time.Duration(p)
}

// ValidFloor reports whether floor lies in [0, FloorCount-1].
func (c SimulationConfig) ValidFloor(floor int) bool {
	return floor >= 0 && floor < c.FloorCount
}

// ConfigPatch carries a partial configuration update. Nil fields are left unchanged.
type ConfigPatch struct {
	FloorCount       *int     `json:"numberOfFloors,omitempty"`
	ElevatorCount    *int     `json:"numberOfElevators,omitempty"`
	CallArrivalRate  *float64 `json:"requestFrequency,omitempty"`
	TickRate         *float64 `json:"simulationSpeed,omitempty"`
	ElevatorCapacity *int     `json:"elevatorCapacity,omitempty"`
	MorningPeak      *bool    `json:"morningPeak,omitempty"`
	EveningPeak      *bool    `json:"eveningPeak,omitempty"`
}

// Apply returns c with the non-nil fields of p merged in.
func (c SimulationConfig) Apply(p ConfigPatch) SimulationConfig {
	if p.FloorCount != nil {
		c.FloorCount = *p.FloorCount
	}
	if p.ElevatorCount != nil {
		c.ElevatorCount = *p.ElevatorCount
	}
	if p.CallArrivalRate != nil {
		c.CallArrivalRate = *p.CallArrivalRate
	}
	if p.TickRate != nil {
		c.TickRate = *p.TickRate
	}
	if p.ElevatorCapacity != nil {
		c.ElevatorCapacity = *p.ElevatorCapacity
	}
	if p.MorningPeak != nil {
		c.MorningPeak = *p.MorningPeak
	}
	if p.EveningPeak != nil {
		c.EveningPeak = *p.EveningPeak
	}
	return c
}
