package simulation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/elevsim/core/clock"
	"github.com/kilianp07/elevsim/core/events"
	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/motion"
	"github.com/kilianp07/elevsim/core/random"
	"github.com/kilianp07/elevsim/core/scheduler"
	"github.com/kilianp07/elevsim/core/traffic"
	"github.com/kilianp07/elevsim/internal/eventbus"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for call ages and door timing.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRandom sets the random source shared by the generator and the passenger exchange.
func WithRandom(r random.Source) Option {
	return func(e *Engine) { e.rng = r }
}

// WithBus sets the bus events are published on.
func WithBus(b eventbus.EventBus) Option {
	return func(e *Engine) { e.bus = b }
}

// WithSchedulerConfig sets the scheduler tunables.
func WithSchedulerConfig(c scheduler.Config) Option {
	return func(e *Engine) { e.sched = scheduler.New(c) }
}

// Engine is the simulation orchestrator.
type Engine struct {
	mu    sync.Mutex
	state model.SimulationState
	clock clock.Clock
	rng   random.Source
	bus   eventbus.EventBus
	sched *scheduler.Scheduler
	gen   *traffic.Generator

	// runMu serialises Start, Stop and Reset. Task goroutines only take mu.
	runMu   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// New validates cfg and returns a stopped Engine with every car at the lobby.
func New(cfg model.SimulationConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		state: model.NewState(cfg),
		clock: clock.System{},
		sched: scheduler.New(scheduler.Config{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = random.New(0)
	}
	e.gen = traffic.NewGenerator(e.rng)
	return e, nil
}

// Start launches both periodic tasks. A running engine is stopped first.
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	e.stopTasks()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg.Add(2)
	go e.loop(ctx, func(c model.SimulationConfig) time.Duration { return c.CallInterval() }, func() { e.GenerateCall() })
	go e.loop(ctx, func(c model.SimulationConfig) time.Duration { return c.TickInterval() }, e.Tick)
	e.running.Store(true)
	e.publish(events.Lifecycle{Action: events.ActionStart, Config: e.config()})
}

// Stop halts both tasks and returns once neither can fire again.
// Stopping a stopped engine does nothing.
func (e *Engine) Stop() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.stopTasks() {
		e.publish(events.Lifecycle{Action: events.ActionStop, Config: e.config()})
	}
}

// Running reports whether the periodic tasks are active.
func (e *Engine) Running() bool { return e.running.Load() }

// Reset stops the engine and reinitialises every car under cfg. An invalid
// cfg is rejected and leaves the engine untouched.
func (e *Engine) Reset(cfg model.SimulationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.runMu.Lock()
	defer e.runMu.Unlock()
	e.stopTasks()

	e.mu.Lock()
	e.state = model.NewState(cfg)
	e.gen.Reset()
	e.mu.Unlock()
	e.publish(events.Lifecycle{Action: events.ActionReset, Config: cfg})
	return nil
}

// SetConfig merges p into the live config without touching car state. The
// merged config must be valid, keep at least as many cars as exist, and keep
// every floor referenced by the state in range. Rate changes apply from the
// next firing of each task.
func (e *Engine) SetConfig(p model.ConfigPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Config.Apply(p)
	if err := next.Validate(); err != nil {
		return err
	}
	if next.ElevatorCount < len(e.state.Elevators) {
		return fmt.Errorf("numberOfElevators cannot shrink below %d: %w", len(e.state.Elevators), model.ErrInvalidConfig)
	}
	if hi := e.highestFloorInUse(); hi >= next.FloorCount {
		return fmt.Errorf("numberOfFloors %d excludes floor %d in use: %w", next.FloorCount, hi, model.ErrInvalidConfig)
	}
	for id := len(e.state.Elevators); id < next.ElevatorCount; id++ {
		e.state.Elevators = append(e.state.Elevators, model.NewElevator(id))
	}
	e.state.Config = next
	e.publish(events.Lifecycle{Action: events.ActionConfig, Config: next})
	return nil
}

// SubmitFloorCall queues a hall call. dir must be UP or DOWN.
func (e *Engine) SubmitFloorCall(floor int, dir model.Direction) error {
	if dir != model.DirectionUp && dir != model.DirectionDown {
		return fmt.Errorf("direction %q: %w", dir, model.ErrInvalidDirection)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.Config.ValidFloor(floor) {
		return fmt.Errorf("floor %d outside [0, %d]: %w", floor, e.state.Config.FloorCount-1, model.ErrInvalidFloor)
	}
	call := model.FloorCall{Floor: floor, Direction: dir, CreatedAt: e.clock.Now()}
	e.state.FloorCalls = append(e.state.FloorCalls, call)
	e.publish(events.CallQueued{Call: call, Source: events.SourceExternal})
	return nil
}

// SubmitDestination queues an in-car stop. A request naming an unknown car is
// accepted and dropped at the next scheduler pass.
func (e *Engine) SubmitDestination(elevatorID, floor int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.Config.ValidFloor(floor) {
		return fmt.Errorf("floor %d outside [0, %d]: %w", floor, e.state.Config.FloorCount-1, model.ErrInvalidFloor)
	}
	e.state.DestinationRequests = append(e.state.DestinationRequests, model.DestinationRequest{
		ElevatorID: elevatorID,
		Floor:      floor,
		CreatedAt:  e.clock.Now(),
	})
	return nil
}

// Snapshot returns a deep copy of the live state.
func (e *Engine) Snapshot() model.SimulationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Tick runs one scheduler pass and advances every car by one step.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	started := time.Now()
	res := e.sched.Assign(&e.state, now)
	for _, a := range res.Assignments {
		e.publish(events.CallAssigned{
			Call:       a.Call,
			ElevatorID: a.ElevatorID,
			Rule:       string(a.Rule),
			Waited:     a.Waited,
			At:         now,
		})
	}

	capacity := e.state.Config.ElevatorCapacity
	done := events.TickCompleted{
		At:        now,
		Capacity:  capacity,
		Elevators: len(e.state.Elevators),
	}
	for i := range e.state.Elevators {
		car := &e.state.Elevators[i]
		out := motion.Step(car, capacity, now, e.rng)
		if out.PhaseChanged(car) {
			e.publish(events.DoorChanged{
				ElevatorID: car.ID,
				Floor:      car.CurrentFloor,
				From:       out.FromPhase,
				To:         car.DoorPhase,
				At:         now,
			})
		}
		if out.Exchange != nil {
			e.publish(events.PassengerExchange{
				ElevatorID: car.ID,
				Floor:      car.CurrentFloor,
				Left:       out.Exchange.Left,
				Entered:    out.Exchange.Entered,
				Passengers: car.Passengers,
				Capacity:   capacity,
			})
		}
		if !car.Idle() || len(car.DestinationFloors) > 0 {
			done.ActiveCars++
		}
		done.Passengers += car.Passengers
	}
	done.PendingCalls = len(e.state.FloorCalls)
	done.Duration = time.Since(started)
	e.publish(done)
}

// GenerateCall fires the traffic generator once. It reports the queued call,
// or false when the generator is still inside its arrival interval.
func (e *Engine) GenerateCall() (model.FloorCall, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.gen.Generate(e.state.Config, e.clock.Now())
	if !ok {
		return model.FloorCall{}, false
	}
	e.state.FloorCalls = append(e.state.FloorCalls, g.Call)
	e.publish(events.CallQueued{Call: g.Call, Source: events.SourceGenerator})
	return g.Call, true
}

// loop fires fn every period until ctx is canceled. The period is re-read from
// the live config after every firing.
func (e *Engine) loop(ctx context.Context, period func(model.SimulationConfig) time.Duration, fn func()) {
	defer e.wg.Done()
	t := time.NewTimer(period(e.config()))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			fn()
			t.Reset(period(e.config()))
		}
	}
}

// stopTasks cancels the running tasks and waits for them. Callers hold runMu.
func (e *Engine) stopTasks() bool {
	if e.cancel == nil {
		return false
	}
	e.cancel()
	e.wg.Wait()
	e.cancel = nil
	e.running.Store(false)
	return true
}

func (e *Engine) config() model.SimulationConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Config
}

// highestFloorInUse returns the highest floor referenced by any car, call or request.
func (e *Engine) highestFloorInUse() int {
	hi := 0
	for _, car := range e.state.Elevators {
		hi = max(hi, car.CurrentFloor)
		for _, f := range car.DestinationFloors {
			hi = max(hi, f)
		}
	}
	for _, c := range e.state.FloorCalls {
		hi = max(hi, c.Floor)
	}
	for _, r := range e.state.DestinationRequests {
		hi = max(hi, r.Floor)
	}
	return hi
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
