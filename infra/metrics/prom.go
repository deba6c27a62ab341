package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/elevsim/core/metrics"
)

// PromSink records simulation activity in Prometheus metrics.
type PromSink struct {
	calls       *prometheus.CounterVec
	assignments *prometheus.CounterVec
	wait        *prometheus.HistogramVec
	doors       *prometheus.CounterVec
	boarded     *prometheus.CounterVec
	alighted    *prometheus.CounterVec
	pending     prometheus.Gauge
	active      prometheus.Gauge
	passengers  prometheus.Gauge
	tick        prometheus.Histogram
	floor       *prometheus.GaugeVec
	load        *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.calls, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elevsim_floor_calls_total",
		Help: "Floor calls queued, by source and direction",
	}, []string{"source", "direction"})); err != nil {
		return nil, err
	}
	if s.assignments, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elevsim_assignments_total",
		Help: "Floor calls assigned to a car, by rule",
	}, []string{"elevator_id", "rule"})); err != nil {
		return nil, err
	}
	if s.wait, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "elevsim_call_wait_seconds",
		Help:    "Time a floor call spent pending before assignment",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"rule"})); err != nil {
		return nil, err
	}
	if s.doors, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elevsim_door_transitions_total",
		Help: "Door phase changes, by car and target phase",
	}, []string{"elevator_id", "phase"})); err != nil {
		return nil, err
	}
	if s.boarded, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elevsim_passengers_boarded_total",
		Help: "Passengers who boarded, by car",
	}, []string{"elevator_id"})); err != nil {
		return nil, err
	}
	if s.alighted, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "elevsim_passengers_alighted_total",
		Help: "Passengers who left, by car",
	}, []string{"elevator_id"})); err != nil {
		return nil, err
	}
	if s.pending, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "elevsim_pending_calls",
		Help: "Floor calls waiting for a car",
	})); err != nil {
		return nil, err
	}
	if s.active, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "elevsim_active_elevators",
		Help: "Cars moving or holding queued stops",
	})); err != nil {
		return nil, err
	}
	if s.passengers, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "elevsim_passengers",
		Help: "Passengers aboard all cars",
	})); err != nil {
		return nil, err
	}
	if s.tick, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "elevsim_tick_duration_seconds",
		Help:    "Wall time spent in one scheduler and motion tick",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})); err != nil {
		return nil, err
	}
	if s.floor, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "elevsim_elevator_floor",
		Help: "Current floor of each car",
	}, []string{"elevator_id"})); err != nil {
		return nil, err
	}
	if s.load, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "elevsim_elevator_load_ratio",
		Help: "Passengers over capacity for each car",
	}, []string{"elevator_id"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTick updates the load gauges.
func (s *PromSink) RecordTick(ev coremetrics.TickEvent) error {
	s.pending.Set(float64(ev.PendingCalls))
	s.active.Set(float64(ev.ActiveCars))
	s.passengers.Set(float64(ev.Passengers))
	s.tick.Observe(ev.Duration.Seconds())
	return nil
}

// RecordCall counts a queued call.
func (s *PromSink) RecordCall(ev coremetrics.CallEvent) error {
	s.calls.WithLabelValues(ev.Source, string(ev.Direction)).Inc()
	return nil
}

// RecordAssignment counts an assignment and observes its waiting time.
func (s *PromSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	s.assignments.WithLabelValues(strconv.Itoa(ev.ElevatorID), ev.Rule).Inc()
	s.wait.WithLabelValues(ev.Rule).Observe(ev.Waited.Seconds())
	return nil
}

// RecordDoor counts a door transition.
func (s *PromSink) RecordDoor(ev coremetrics.DoorEvent) error {
	s.doors.WithLabelValues(strconv.Itoa(ev.ElevatorID), string(ev.To)).Inc()
	return nil
}

// RecordExchange counts passengers boarding and leaving.
func (s *PromSink) RecordExchange(ev coremetrics.ExchangeEvent) error {
	id := strconv.Itoa(ev.ElevatorID)
	s.boarded.WithLabelValues(id).Add(float64(ev.Entered))
	s.alighted.WithLabelValues(id).Add(float64(ev.Left))
	return nil
}

// RecordElevatorState sets the per-car gauges.
func (s *PromSink) RecordElevatorState(ev coremetrics.ElevatorStateEvent) error {
	id := strconv.Itoa(ev.Elevator.ID)
	s.floor.WithLabelValues(id).Set(float64(ev.Elevator.CurrentFloor))
	if ev.Capacity > 0 {
		s.load.WithLabelValues(id).Set(float64(ev.Elevator.Passengers) / float64(ev.Capacity))
	}
	return nil
}
