package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationConfigValidate(t *testing.T) {
	valid := DefaultSimulationConfig()
	require.NoError(t, valid.Validate())

	cases := []struct {
		name string
		mut  func(*SimulationConfig)
	}{
		{"one floor", func(c *SimulationConfig) { c.FloorCount = 1 }},
		{"no elevators", func(c *SimulationConfig) { c.ElevatorCount = 0 }},
		{"zero arrival rate", func(c *SimulationConfig) { c.CallArrivalRate = 0 }},
		{"negative tick rate", func(c *SimulationConfig) { c.TickRate = -1 }},
		{"zero capacity", func(c *SimulationConfig) { c.ElevatorCapacity = 0 }},
	}
	for _, c := range cases {
		cfg := valid
		c.mut(&cfg)
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", c.name, err)
		}
	}
}

func TestSimulationConfigApply(t *testing.T) {
	floors := 20
	morning := true
	cfg := DefaultSimulationConfig().Apply(ConfigPatch{FloorCount: &floors, MorningPeak: &morning})
	assert.Equal(t, 20, cfg.FloorCount)
	assert.True(t, cfg.MorningPeak)
	assert.Equal(t, 4, cfg.ElevatorCount)
	assert.Equal(t, PatternMorningPeak, cfg.Pattern())
}

func TestPatternMorningWins(t *testing.T) {
	cfg := SimulationConfig{MorningPeak: true, EveningPeak: true}
	assert.Equal(t, PatternMorningPeak, cfg.Pattern())
	cfg.MorningPeak = false
	assert.Equal(t, "Evening Peak", cfg.Pattern().String())
	cfg.EveningPeak = false
	assert.Equal(t, "Normal", cfg.Pattern().String())
}

func TestIntervals(t *testing.T) {
	cfg := SimulationConfig{CallArrivalRate: 0.5, TickRate: 4}
	assert.Equal(t, 2*time.Second, cfg.CallInterval())
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval())
}

func TestIntervalsClampedAtExtremeRates(t *testing.T) {
	for _, rate := range []float64{1e-10, 1e-300, math.SmallestNonzeroFloat64} {
		cfg := DefaultSimulationConfig()
		cfg.CallArrivalRate, cfg.TickRate = rate, rate
		require.NoError(t, cfg.Validate())
		assert.Equal(t, MaxPeriod, cfg.CallInterval(), "rate %g", rate)
		assert.Equal(t, MaxPeriod, cfg.TickInterval(), "rate %g", rate)
	}
	for _, rate := range []float64{1e4, 1e10, math.MaxFloat64} {
		cfg := DefaultSimulationConfig()
		cfg.CallArrivalRate, cfg.TickRate = rate, rate
		require.NoError(t, cfg.Validate())
		assert.Equal(t, MinPeriod, cfg.CallInterval(), "rate %g", rate)
		assert.Equal(t, MinPeriod, cfg.TickInterval(), "rate %g", rate)
	}
	assert.Equal(t, time.Millisecond, SimulationConfig{CallArrivalRate: 1000}.CallInterval())
	assert.Zero(t, SimulationConfig{}.CallInterval())
}

func TestAddDestinationOrdering(t *testing.T) {
	up := NewElevator(0)
	up.Direction = DirectionUp
	up.AddDestination(7)
	up.AddDestination(2)
	assert.False(t, up.AddDestination(7))
	assert.Equal(t, []int{2, 7}, up.DestinationFloors)

	idle := NewElevator(1)
	idle.AddDestination(2)
	idle.AddDestination(7)
	assert.Equal(t, []int{7, 2}, idle.DestinationFloors, "idle cars sort descending")
}

func TestMovingToward(t *testing.T) {
	e := NewElevator(0)
	e.CurrentFloor = 3
	assert.False(t, e.MovingToward(3))
	e.Direction = DirectionDown
	assert.True(t, e.MovingToward(2))
	assert.True(t, e.MovingToward(3))
	assert.False(t, e.MovingToward(4))
	e.Direction = DirectionUp
	assert.True(t, e.MovingToward(4))
	assert.Equal(t, 1, e.Distance(4))
}

func TestDoorPhaseCycle(t *testing.T) {
	seq := []DoorPhase{DoorClosed, DoorOpening, DoorOpen, DoorClosing, DoorClosed}
	for i := 0; i < len(seq)-1; i++ {
		assert.Equal(t, seq[i+1], seq[i].Next())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	st := NewState(DefaultSimulationConfig())
	now := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	st.FloorCalls = append(st.FloorCalls, FloorCall{Floor: 3, Direction: DirectionUp, CreatedAt: now})
	st.Elevators[0].DestinationFloors = []int{4}
	st.Elevators[0].PhaseEnteredAt = &now

	cp := st.Clone()
	assert.Equal(t, st, cp)

	cp.Elevators[0].DestinationFloors[0] = 9
	cp.FloorCalls[0].Floor = 8
	*cp.Elevators[0].PhaseEnteredAt = now.Add(time.Hour)
	assert.Equal(t, 4, st.Elevators[0].DestinationFloors[0])
	assert.Equal(t, 3, st.FloorCalls[0].Floor)
	assert.True(t, st.Elevators[0].PhaseEnteredAt.Equal(now))
}

func TestCloneNilListsBecomeEmpty(t *testing.T) {
	st := SimulationState{Elevators: []ElevatorState{{ID: 0}}}
	cp := st.Clone()
	assert.NotNil(t, cp.FloorCalls)
	assert.NotNil(t, cp.DestinationRequests)
	assert.NotNil(t, cp.Elevators[0].DestinationFloors)
	assert.Nil(t, cp.Elevators[0].PhaseEnteredAt)
}

func TestElevatorLookup(t *testing.T) {
	st := NewState(SimulationConfig{ElevatorCount: 2})
	require.NotNil(t, st.Elevator(1))
	assert.Nil(t, st.Elevator(5))
}
