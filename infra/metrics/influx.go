package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/elevsim/core/metrics"
	"github.com/kilianp07/elevsim/infra/logger"
)

const writeTimeout = 5 * time.Second

// InfluxSink writes simulation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: writeTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTick writes the per-tick load summary.
func (s *InfluxSink) RecordTick(ev coremetrics.TickEvent) error {
	p := write.NewPointWithMeasurement("tick").
		AddTag("component", "engine").
		AddField("pending_calls", ev.PendingCalls).
		AddField("active_elevators", ev.ActiveCars).
		AddField("passengers", ev.Passengers).
		AddField("elevators", ev.Elevators).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordCall writes a queued floor call.
func (s *InfluxSink) RecordCall(ev coremetrics.CallEvent) error {
	p := write.NewPointWithMeasurement("floor_call").
		AddTag("direction", string(ev.Direction)).
		AddTag("source", ev.Source).
		AddField("floor", ev.Floor).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordAssignment writes a scheduler decision.
func (s *InfluxSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	p := write.NewPointWithMeasurement("call_assignment").
		AddTag("elevator_id", strconv.Itoa(ev.ElevatorID)).
		AddTag("rule", ev.Rule).
		AddTag("direction", string(ev.Direction)).
		AddField("floor", ev.Floor).
		AddField("waited_ms", round3(ev.Waited.Seconds()*1000)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordDoor writes a door transition.
func (s *InfluxSink) RecordDoor(ev coremetrics.DoorEvent) error {
	p := write.NewPointWithMeasurement("door_transition").
		AddTag("elevator_id", strconv.Itoa(ev.ElevatorID)).
		AddTag("from", string(ev.From)).
		AddTag("to", string(ev.To)).
		AddField("floor", ev.Floor).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordExchange writes a passenger exchange.
func (s *InfluxSink) RecordExchange(ev coremetrics.ExchangeEvent) error {
	p := write.NewPointWithMeasurement("passenger_exchange").
		AddTag("elevator_id", strconv.Itoa(ev.ElevatorID)).
		AddField("floor", ev.Floor).
		AddField("left", ev.Left).
		AddField("entered", ev.Entered).
		AddField("passengers", ev.Passengers).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordElevatorState writes a sampled car snapshot.
func (s *InfluxSink) RecordElevatorState(ev coremetrics.ElevatorStateEvent) error {
	e := ev.Elevator
	p := write.NewPointWithMeasurement("elevator_state").
		AddTag("elevator_id", strconv.Itoa(e.ID)).
		AddTag("direction", string(e.Direction)).
		AddTag("door", string(e.DoorPhase)).
		AddField("floor", e.CurrentFloor).
		AddField("passengers", e.Passengers).
		AddField("queued_stops", len(e.DestinationFloors))
	if ev.Capacity > 0 {
		p = p.AddField("load", round3(float64(e.Passengers)/float64(ev.Capacity)))
	}
	p = p.SetTime(ev.Time)
	return s.write(p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
