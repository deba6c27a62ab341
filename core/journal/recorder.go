package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/elevsim/core/events"
	"github.com/kilianp07/elevsim/core/logger"
	"github.com/kilianp07/elevsim/internal/eventbus"
)

// FromAssignment converts an assignment event into a journal record.
func FromAssignment(ev events.CallAssigned) LogRecord {
	return LogRecord{
		ID:         uuid.NewString(),
		Timestamp:  ev.At,
		Floor:      ev.Call.Floor,
		Direction:  ev.Call.Direction,
		ElevatorID: ev.ElevatorID,
		Rule:       ev.Rule,
		WaitedMS:   ev.Waited.Milliseconds(),
	}
}

// StartRecorder appends every CallAssigned event seen on bus to store until
// ctx is canceled or the bus closes. Append failures are logged and skipped.
func StartRecorder(ctx context.Context, bus eventbus.EventBus, store Store, log logger.Logger) {
	if bus == nil || store == nil {
		return
	}
	log = logger.OrNop(log)
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
				a, ok := ev.(events.CallAssigned)
				if !ok {
					continue
				}
				wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
				if err := store.Append(wctx, FromAssignment(a)); err != nil {
					log.Errorf("journal append: %v", err)
				}
				cancel()
			}
		}
	}()
}
