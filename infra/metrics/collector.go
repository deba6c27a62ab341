package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/elevsim/core/events"
	coremetrics "github.com/kilianp07/elevsim/core/metrics"
	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// Record errors go to onErr when it is set. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, onErr func(error)) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil && onErr != nil {
					onErr(err)
				}
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.TickCompleted:
		return sink.RecordTick(coremetrics.TickEvent{
			PendingCalls: e.PendingCalls,
			ActiveCars:   e.ActiveCars,
			Passengers:   e.Passengers,
			Capacity:     e.Capacity,
			Elevators:    e.Elevators,
			Duration:     e.Duration,
			Time:         e.At,
		})
	case events.CallQueued:
		if r, ok := sink.(coremetrics.CallRecorder); ok {
			return r.RecordCall(coremetrics.CallEvent{
				Floor:     e.Call.Floor,
				Direction: e.Call.Direction,
				Source:    e.Source,
				Time:      e.Call.CreatedAt,
			})
		}
	case events.CallAssigned:
		if r, ok := sink.(coremetrics.AssignmentRecorder); ok {
			return r.RecordAssignment(coremetrics.AssignmentEvent{
				ElevatorID: e.ElevatorID,
				Floor:      e.Call.Floor,
				Direction:  e.Call.Direction,
				Rule:       e.Rule,
				Waited:     e.Waited,
				Time:       e.At,
			})
		}
	case events.DoorChanged:
		if r, ok := sink.(coremetrics.DoorRecorder); ok {
			return r.RecordDoor(coremetrics.DoorEvent{
				ElevatorID: e.ElevatorID,
				Floor:      e.Floor,
				From:       e.From,
				To:         e.To,
				Time:       e.At,
			})
		}
	case events.PassengerExchange:
		if r, ok := sink.(coremetrics.ExchangeRecorder); ok {
			return r.RecordExchange(coremetrics.ExchangeEvent{
				ElevatorID: e.ElevatorID,
				Floor:      e.Floor,
				Left:       e.Left,
				Entered:    e.Entered,
				Passengers: e.Passengers,
				Capacity:   e.Capacity,
				Time:       time.Now(),
			})
		}
	}
	return nil
}

// StartStateSampler records every car's state each interval until ctx is canceled.
// Sinks without ElevatorStateRecorder are left alone.
func StartStateSampler(ctx context.Context, interval time.Duration, snapshot func() model.SimulationState, sink coremetrics.MetricsSink, onErr func(error)) {
	rec, ok := sink.(coremetrics.ElevatorStateRecorder)
	if !ok || interval <= 0 || snapshot == nil {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				st := snapshot()
				for _, e := range st.Elevators {
					err := rec.RecordElevatorState(coremetrics.ElevatorStateEvent{
						Elevator: e,
						Capacity: st.Config.ElevatorCapacity,
						Time:     now,
					})
					if err != nil && onErr != nil {
						onErr(err)
					}
				}
			}
		}
	}()
}
