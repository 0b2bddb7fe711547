// Package app wires the repository, controllers and adapters into a running
// gridmon service.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/gridmon/api"
	"github.com/kilianp07/gridmon/config"
	"github.com/kilianp07/gridmon/core/alert"
	"github.com/kilianp07/gridmon/core/command"
	"github.com/kilianp07/gridmon/core/command/journal"
	"github.com/kilianp07/gridmon/core/forecast"
	coremetrics "github.com/kilianp07/gridmon/core/metrics"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/monitor"
	"github.com/kilianp07/gridmon/core/monitoring"
	"github.com/kilianp07/gridmon/core/recommendation"
	"github.com/kilianp07/gridmon/core/report"
	"github.com/kilianp07/gridmon/core/repository"
	"github.com/kilianp07/gridmon/core/simulation"
	"github.com/kilianp07/gridmon/infra/logger"
	"github.com/kilianp07/gridmon/infra/metrics"
	"github.com/kilianp07/gridmon/infra/mqtt"
	"github.com/kilianp07/gridmon/internal/eventbus"
)

// EmergencyMessage is the alert sent after an emergency load reduction.
const EmergencyMessage = "Emergency load reduction executed"

// Service holds the wired controllers of a gridmon instance.
type Service struct {
	Store           *repository.MemoryStore
	Bus             *eventbus.Bus[any]
	Sink            coremetrics.Sink
	Monitor         *monitor.Controller
	Recommendations *recommendation.Controller
	Forecasts       *forecast.Controller
	Reports         *report.Controller
	Commands        *command.Executor
	Alerts          *alert.Service
	Driver          *simulation.Driver

	cfg       *config.Config
	journal   journal.Store
	publisher alert.Publisher
	log       logger.Logger
}

// Option customizes New.
type Option func(*options)

type options struct {
	publisher alert.Publisher
	rng       *rand.Rand
}

// WithPublisher replaces the MQTT publisher built from the configuration.
func WithPublisher(p alert.Publisher) Option { return func(o *options) { o.publisher = p } }

// WithRand fixes the random source of the simulation driver.
func WithRand(r *rand.Rand) Option { return func(o *options) { o.rng = r } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logg := logger.New("service")

	objects := repository.Seed()
	if cfg.SeedFile != "" {
		seeded, err := repository.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed file: %w", err)
		}
		objects = seeded
	}
	store := repository.NewMemoryStore(objects...)

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	j, err := journal.Open(cfg.Journal.Options())
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("command journal: %w", err)
	}

	pub := o.publisher
	if pub == nil && cfg.MQTT.Enabled {
		p, err := mqtt.NewAlertPublisher(cfg.MQTT)
		if err != nil {
			closeSink(sink)
			_ = j.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		pub = p
	}

	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	bus := eventbus.New[any]()
	mon := monitor.NewController(store, nil, logger.New("monitor"), sink, bus)
	alerts := alert.NewService(sink, logger.New("alerts"))
	svc := &Service{
		Store:           store,
		Bus:             bus,
		Sink:            sink,
		Monitor:         mon,
		Recommendations: recommendation.NewController(store, logger.New("recommendation")),
		Forecasts:       forecast.NewController(store, nil, sink, logger.New("forecast")),
		Reports:         report.NewController(store, logger.New("report")),
		Commands:        command.NewExecutor(store, j, sink, bus, logger.New("command")),
		Alerts:          alerts,
		Driver:          simulation.NewDriver(cfg.Simulation, store, mon, alerts, cfg.Monitor.AlertRecipient, rng, logger.New("simulation")),
		cfg:             cfg,
		journal:         j,
		publisher:       pub,
		log:             logg,
	}
	return svc, nil
}

// EmergencyLoadReduction sheds load on every overloaded object and notifies
// all dispatchers. The reduction can be undone through the executor.
func (s *Service) EmergencyLoadReduction(ctx context.Context, operator string) (*command.Execution, error) {
	exec, err := s.Commands.Execute(ctx, command.LoadReduction{Operator: operator})
	if err != nil {
		return exec, err
	}
	s.Alerts.Send(EmergencyMessage, model.SeverityHigh, alert.RecipientAllDispatchers)
	return exec, nil
}

// Handler builds the HTTP API over the service controllers.
func (s *Service) Handler() *api.Server {
	return api.NewServer(api.Deps{
		Objects:         s.Store,
		Monitor:         s.Monitor,
		Recommendations: s.Recommendations,
		Forecasts:       s.Forecasts,
		Reports:         s.Reports,
		Commands:        s.Commands,
		Alerts:          s.Alerts,
		Simulation:      s.Driver,
		Emergency:       s.EmergencyLoadReduction,
		Threshold:       s.cfg.Monitor.BottleneckThreshold,
		Log:             logger.New("api"),
	})
}

// Simulate runs cycles synchronous simulation cycles with monitoring on.
func (s *Service) Simulate(ctx context.Context, cycles int) error {
	s.Monitor.Start()
	for i := 0; i < cycles; i++ {
		if err := s.Driver.Cycle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the adapters and the simulation loop and blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	coremetrics.StartEventCollector(ctx, s.Bus, s.Store, s.Sink)
	if s.publisher != nil {
		monitoring.Go(map[string]string{"component": "alert_forward"}, func() {
			alert.Forward(ctx, s.Alerts, s.publisher, logger.New("alert_forward"))
		})
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		monitoring.Go(map[string]string{"component": "prometheus"}, func() {
			if err := metrics.ServeMetrics(ctx, addr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		})
	}
	if s.cfg.API.Enabled {
		monitoring.Go(map[string]string{"component": "api"}, func() {
			if err := api.ListenAndServe(ctx, s.cfg.API.Addr, s.Handler()); err != nil {
				s.log.Errorf("api server: %v", err)
				monitoring.CaptureException(err, map[string]string{"component": "api"})
			}
		})
	}
	if s.cfg.Monitor.AutoStart {
		s.Monitor.Start()
	}
	return s.Driver.Run(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Driver.Stop()
	s.Alerts.Close()
	if p, ok := s.publisher.(interface{ Disconnect() }); ok {
		p.Disconnect()
	}
	closeSink(s.Sink)
	s.Bus.Close()
	return s.journal.Close()
}

func closeSink(sink coremetrics.Sink) {
	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
}
