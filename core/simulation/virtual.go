package simulation

import (
	"time"

	"github.com/kilianp07/elevsim/core/clock"
)

// VirtualRun summarises a RunVirtual batch.
type VirtualRun struct {
	Ticks   int
	Calls   int
	Elapsed time.Duration
}

// RunVirtual drives both periodic tasks on clk, which must be the engine's
// clock, until ticks motion steps have run. Each task first fires one period
// after the start and its period is re-read after every firing. A call and a
// tick due at the same instant fire call first. The engine must be stopped.
func (e *Engine) RunVirtual(clk *clock.Manual, ticks int) VirtualRun {
	start := clk.Now()
	cfg := e.config()
	nextCall := start.Add(cfg.CallInterval())
	nextTick := start.Add(cfg.TickInterval())

	var run VirtualRun
	for run.Ticks < ticks {
		if !nextCall.After(nextTick) {
			clk.Set(nextCall)
			if _, ok := e.GenerateCall(); ok {
				run.Calls++
			}
			nextCall = nextCall.Add(e.config().CallInterval())
			continue
		}
		clk.Set(nextTick)
		e.Tick()
		run.Ticks++
		nextTick = nextTick.Add(e.config().TickInterval())
	}
	run.Elapsed = clk.Now().Sub(start)
	return run
}
