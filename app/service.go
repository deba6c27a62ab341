package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apisim "github.com/kilianp07/elevsim/api/simulation"
	"github.com/kilianp07/elevsim/config"
	"github.com/kilianp07/elevsim/core/events"
	"github.com/kilianp07/elevsim/core/journal"
	coremetrics "github.com/kilianp07/elevsim/core/metrics"
	coremon "github.com/kilianp07/elevsim/core/monitoring"
	"github.com/kilianp07/elevsim/core/random"
	"github.com/kilianp07/elevsim/core/simulation"
	"github.com/kilianp07/elevsim/infra/logger"
	"github.com/kilianp07/elevsim/infra/metrics"
	"github.com/kilianp07/elevsim/infra/monitoring"
	"github.com/kilianp07/elevsim/infra/mqtt"
	"github.com/kilianp07/elevsim/internal/eventbus"
)

// busBuffer absorbs event bursts from large buildings between subscriber reads.
const busBuffer = 256

// Service wires the simulation engine to its adapters.
type Service struct {
	Engine  *simulation.Engine
	Handler http.Handler

	cfg    *config.Config
	bus    *eventbus.Bus
	sink   coremetrics.MetricsSink
	store  journal.Store
	bridge *mqtt.Bridge
	logOut io.Closer
	log    logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	bus := eventbus.New(eventbus.WithBuffer(busBuffer))
	eng, err := simulation.New(cfg.Simulation,
		simulation.WithBus(bus),
		simulation.WithRandom(random.New(cfg.Seed)),
		simulation.WithSchedulerConfig(cfg.Scheduler),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{Engine: eng, cfg: cfg, bus: bus, sink: sink}
	if cfg.Logging.File != "" {
		svc.logOut = logger.TeeToFile(cfg.Logging.FileOptions())
	}
	svc.log = logger.New("service")
	if cfg.Logging.JournalEnabled() {
		store, err := journal.NewStore(cfg.Logging.JournalModule())
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("journal: %w", err)
		}
		svc.store = store
	}
	if cfg.MQTT.Enabled() {
		bridge, err := mqtt.NewBridge(cfg.MQTT, eng)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt bridge: %w", err)
		}
		svc.bridge = bridge
	}
	svc.Handler = apisim.NewHandler(eng, apisim.Options{
		Defaults:       cfg.Simulation,
		Journal:        svc.store,
		AuthToken:      cfg.HTTP.AuthToken,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         logger.New("http"),
	})
	return svc, nil
}

// Run starts the adapters and blocks until the context is cancelled or the
// HTTP listener fails.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.logEvents(ctx)
	journal.StartRecorder(ctx, s.bus, s.store, logger.New("journal"))
	metrics.StartEventCollector(ctx, s.bus, s.sink, s.reportError("metrics"))
	if ms := s.cfg.Metrics.SampleIntervalMS; ms > 0 {
		metrics.StartStateSampler(ctx, time.Duration(ms)*time.Millisecond, s.Engine.Snapshot, s.sink, s.reportError("sampler"))
	}

	errc := make(chan error, 2)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.bridge != nil {
		go s.bridge.Run(ctx)
	}
	if s.cfg.HTTP.Enabled() {
		timeout := time.Duration(s.cfg.HTTP.ShutdownTimeoutSeconds) * time.Second
		go func() {
			defer coremon.Recover()
			s.log.Infof("HTTP API listening on %s", s.cfg.HTTP.Address)
			if err := apisim.Serve(ctx, s.cfg.HTTP.Address, s.Handler, timeout); err != nil {
				errc <- fmt.Errorf("http server: %w", err)
			}
		}()
	}
	if s.cfg.AutoStart {
		s.Engine.Start()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return err
	}
}

// Close stops the engine and releases resources held by the service.
func (s *Service) Close() error {
	s.Engine.Stop()
	if s.bridge != nil {
		s.bridge.Close()
	}
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal close: %w", err))
		}
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if d := s.bus.Dropped(); d > 0 {
		s.log.Warnf("event bus dropped %d events", d)
	}
	s.bus.Close()
	coremon.Flush(coremon.PanicFlushTimeout)
	if s.logOut != nil {
		if err := s.logOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("log file close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// reportError logs adapter failures and forwards them to the monitor.
func (s *Service) reportError(module string) func(error) {
	log := logger.New(module)
	return func(err error) {
		log.Errorf("%v", err)
		coremon.CaptureException(err, coremon.Tags{"module": module})
	}
}

// logEvents writes engine events to the service log at debug level.
func (s *Service) logEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	go func() {
		defer s.bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				s.logEvent(ev)
			}
		}
	}()
}

func (s *Service) logEvent(ev eventbus.Event) {
	switch e := ev.(type) {
	case events.CallQueued:
		s.log.Debugw("call queued", map[string]any{
			"floor": e.Call.Floor, "direction": e.Call.Direction, "source": e.Source,
		})
	case events.CallAssigned:
		s.log.Debugw("call assigned", map[string]any{
			"floor": e.Call.Floor, "direction": e.Call.Direction, "elevator_id": e.ElevatorID,
			"rule": e.Rule, "waited_ms": e.Waited.Milliseconds(),
		})
	case events.DoorChanged:
		s.log.Debugw("door", map[string]any{
			"elevator_id": e.ElevatorID, "floor": e.Floor, "from": e.From, "to": e.To,
		})
	case events.PassengerExchange:
		s.log.Debugw("exchange", map[string]any{
			"elevator_id": e.ElevatorID, "floor": e.Floor, "left": e.Left, "entered": e.Entered,
			"passengers": e.Passengers,
		})
	case events.Lifecycle:
		s.log.Infof("simulation %s (%d floors, %d elevators)", e.Action, e.Config.FloorCount, e.Config.ElevatorCount)
	}
}
