package metrics

// MultiSink fans out records to multiple sinks. Optional recorders are only
// forwarded to sinks that implement them. The first error stops the fan-out.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordTick(ev TickEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTick(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordCall(ev CallEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CallRecorder); ok {
			if err := rec.RecordCall(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordAssignment(ev AssignmentEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AssignmentRecorder); ok {
			if err := rec.RecordAssignment(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordDoor(ev DoorEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(DoorRecorder); ok {
			if err := rec.RecordDoor(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordExchange(ev ExchangeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ExchangeRecorder); ok {
			if err := rec.RecordExchange(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordElevatorState(ev ElevatorStateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ElevatorStateRecorder); ok {
			if err := rec.RecordElevatorState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that has a Close method.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
