package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/elevsim/core/clock"
	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/random"
)

func TestRunVirtualFollowsRates(t *testing.T) {
	e, clk := newEngine(t, 10, 4)

	run := e.RunVirtual(clk, 10)
	assert.Equal(t, 10, run.Ticks)
	assert.Equal(t, 5, run.Calls, "0.5 calls/s over 10s")
	assert.Equal(t, 10*time.Second, run.Elapsed)
	assert.Equal(t, t0.Add(10*time.Second), clk.Now())
}

func TestRunVirtualFasterTicks(t *testing.T) {
	e, clk := newEngine(t, 10, 2)
	a := assert.New(t)
	a.NoError(e.SetConfig(model.ConfigPatch{TickRate: floatp(4), CallArrivalRate: floatp(1)}))

	run := e.RunVirtual(clk, 8)
	a.Equal(8, run.Ticks)
	a.Equal(2, run.Calls)
	a.Equal(2*time.Second, run.Elapsed)
}

func TestRunVirtualDeterministic(t *testing.T) {
	cfg := model.DefaultSimulationConfig()
	cfg.MorningPeak = true
	states := make([]model.SimulationState, 2)
	for i := range states {
		clk := clock.NewManual(t0)
		e, err := New(cfg, WithClock(clk), WithRandom(random.New(7)))
		assert.NoError(t, err)
		e.RunVirtual(clk, 60)
		states[i] = e.Snapshot()
	}
	assert.Equal(t, states[0], states[1])
}

func TestRunVirtualTerminatesAtExtremeRates(t *testing.T) {
	checks := []struct {
		name      string
		callRate  float64
		wantCalls int
	}{
		{"capped fast calls", 1e10, 3000},
		{"saturated slow calls", 1e-10, 0},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			cfg := model.DefaultSimulationConfig()
			cfg.CallArrivalRate = c.callRate
			cfg.TickRate = 1
			clk := clock.NewManual(t0)
			e, err := New(cfg, WithClock(clk), WithRandom(random.New(3)))
			require.NoError(t, err)

			done := make(chan VirtualRun, 1)
			go func() { done <- e.RunVirtual(clk, 3) }()
			select {
			case run := <-done:
				assert.Equal(t, 3, run.Ticks)
				assert.Equal(t, c.wantCalls, run.Calls)
				assert.Equal(t, 3*time.Second, run.Elapsed)
			case <-time.After(10 * time.Second):
				t.Fatal("RunVirtual did not return")
			}
		})
	}
}
