package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/elevsim/core/events"
	coremetrics "github.com/kilianp07/elevsim/core/metrics"
	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/internal/eventbus"
)

type memorySink struct {
	mu          sync.Mutex
	ticks       []coremetrics.TickEvent
	calls       []coremetrics.CallEvent
	assignments []coremetrics.AssignmentEvent
	doors       []coremetrics.DoorEvent
	exchanges   []coremetrics.ExchangeEvent
	states      []coremetrics.ElevatorStateEvent
}

func (m *memorySink) RecordTick(ev coremetrics.TickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, ev)
	return nil
}

func (m *memorySink) RecordCall(ev coremetrics.CallEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ev)
	return nil
}

func (m *memorySink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, ev)
	return nil
}

func (m *memorySink) RecordDoor(ev coremetrics.DoorEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doors = append(m.doors, ev)
	return nil
}

func (m *memorySink) RecordExchange(ev coremetrics.ExchangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchanges = append(m.exchanges, ev)
	return nil
}

func (m *memorySink) RecordElevatorState(ev coremetrics.ElevatorStateEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, ev)
	return nil
}

func (m *memorySink) counts() (int, int, int, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks), len(m.calls), len(m.assignments), len(m.doors), len(m.exchanges)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	sink := &memorySink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink, nil)

	now := time.Now()
	call := model.FloorCall{Floor: 4, Direction: model.DirectionDown, CreatedAt: now}
	bus.Publish(events.CallQueued{Call: call, Source: events.SourceGenerator})
	bus.Publish(events.CallAssigned{Call: call, ElevatorID: 1, Rule: "nearest", At: now})
	bus.Publish(events.DoorChanged{ElevatorID: 1, From: model.DoorClosed, To: model.DoorOpening, At: now})
	bus.Publish(events.PassengerExchange{ElevatorID: 1, Entered: 2})
	bus.Publish(events.TickCompleted{PendingCalls: 0, At: now})
	bus.Publish(events.Lifecycle{Action: events.ActionStart})

	require.Eventually(t, func() bool {
		a, b, c, d, e := sink.counts()
		return a == 1 && b == 1 && c == 1 && d == 1 && e == 1
	}, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, "generator", sink.calls[0].Source)
	assert.Equal(t, 4, sink.assignments[0].Floor)
	assert.Equal(t, model.DoorOpening, sink.doors[0].To)
	assert.Equal(t, 2, sink.exchanges[0].Entered)
}

func TestStartEventCollectorNilArgs(t *testing.T) {
	StartEventCollector(context.Background(), nil, &memorySink{}, nil)
	StartEventCollector(context.Background(), eventbus.New(), nil, nil)
}

func TestStartStateSampler(t *testing.T) {
	sink := &memorySink{}
	st := model.NewState(model.DefaultSimulationConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartStateSampler(ctx, 10*time.Millisecond, func() model.SimulationState { return st.Clone() }, sink, nil)

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.states) >= len(st.Elevators)
	}, time.Second, 5*time.Millisecond)
	sink.mu.Lock()
	assert.Equal(t, 10, sink.states[0].Capacity)
	sink.mu.Unlock()
}
