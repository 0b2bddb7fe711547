// Package simulation feeds synthetic sensor readings and test anomalies into
// the monitor on a fixed period.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridmon/core/alert"
	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/monitor"
	"github.com/kilianp07/gridmon/core/monitoring"
	"github.com/kilianp07/gridmon/core/repository"
)

// ErrAlreadyRunning is returned by Run while another loop is alive.
var ErrAlreadyRunning = errors.New("simulation already running")

// Driver generates one reading per object channel each cycle.
type Driver struct {
	cfg       Config
	store     repository.ObjectStore
	monitor   *monitor.Controller
	alerts    *alert.Service
	recipient string
	log       logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	// runMu guards stop and done of the current loop. done is nil when no
	// loop is alive.
	runMu   sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running atomic.Bool
	loops   atomic.Int32
	tick    time.Duration
	now     func() time.Time
}

// NewDriver creates a Driver. Alerts for detected anomalies go to recipient.
// A nil rng is seeded from the clock.
func NewDriver(cfg Config, store repository.ObjectStore, mon *monitor.Controller, alerts *alert.Service, recipient string, rng *rand.Rand, log logger.Logger) *Driver {
	cfg.SetDefaults()
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Driver{
		cfg:       cfg,
		store:     store,
		monitor:   mon,
		alerts:    alerts,
		recipient: recipient,
		rng:       rng,
		log:       logger.OrNop(log),
		tick:      cfg.Interval(),
		now:       time.Now,
	}
}

func (d *Driver) float() float64 {
	d.rngMu.Lock()
	defer d.rngMu.Unlock()
	return d.rng.Float64()
}

func (d *Driver) intn(n int) int {
	d.rngMu.Lock()
	defer d.rngMu.Unlock()
	return d.rng.Intn(n)
}

// value returns baseline with uniform noise clamped to r.
func (d *Driver) value(baseline float64, r Range) float64 {
	noise := (d.float()*2 - 1) * d.cfg.Noise
	return r.Clamp(baseline + noise*baseline)
}

// Cycle generates readings for every object, runs detection on each and
// may inject a test anomaly. It stops early when ctx is done.
func (d *Driver) Cycle(ctx context.Context) error {
	ts := d.now()
	for _, obj := range d.store.Objects() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, kind := range Kinds {
			r := d.cfg.Ranges[kind]
			baseline := r.Mid()
			if kind == model.SensorPower {
				baseline = obj.CurrentLoad
			}
			reading := model.SensorData{
				ID:        uuid.NewString(),
				SensorID:  model.SensorID(obj.ID, kind),
				Timestamp: ts,
				Value:     d.value(baseline, r),
				Unit:      kind.Unit(),
			}
			d.monitor.Ingest(reading)
			if kind == model.SensorPower {
				d.store.SetObjectLoad(obj.ID, reading.Value)
				obj.SetLoad(reading.Value)
			}
			if a, ok := d.monitor.DetectAnomalies(reading, obj); ok {
				d.alerts.Send("Anomaly detected: "+a.Description, a.Severity, d.recipient)
			}
		}
	}
	if d.float() < d.cfg.AnomalyProbability {
		d.GenerateTestAnomaly()
	}
	return nil
}

// GenerateTestAnomaly stores a random anomaly on a random object and alerts
// the recipient. It returns false when the network is empty.
func (d *Driver) GenerateTestAnomaly() (model.Anomaly, bool) {
	objs := d.store.Objects()
	if len(objs) == 0 {
		return model.Anomaly{}, false
	}
	obj := objs[d.intn(len(objs))]
	severities := model.Severities[1:]
	a := model.Anomaly{
		ID:                uuid.NewString(),
		DetectedAt:        d.now(),
		Type:              model.AnomalyTypes[d.intn(len(model.AnomalyTypes))],
		Severity:          severities[d.intn(len(severities))],
		Description:       "Test anomaly on object " + obj.Name,
		Status:            model.AnomalyDetected,
		ObjectID:          obj.ID,
		Confidence:        0.7 + d.float()*0.25,
		RecommendedAction: "Analysis and corrective action required",
	}
	d.monitor.Record(a, "simulation")
	d.alerts.Send(fmt.Sprintf("Detected %s anomaly: %s", a.Severity, a.Description), a.Severity, d.recipient)
	return a, true
}

// Running reports whether the loop is active.
func (d *Driver) Running() bool { return d.running.Load() }

// Start launches the loop in a goroutine. It returns false when a loop is
// already alive.
func (d *Driver) Start(ctx context.Context) bool {
	stop, done, ok := d.claim()
	if !ok {
		return false
	}
	go d.loop(ctx, stop, done)
	return true
}

// Stop ends the loop and waits for it to exit, so a following Start never
// overlaps with it.
func (d *Driver) Stop() {
	d.runMu.Lock()
	stop, done := d.stop, d.done
	if stop != nil {
		select {
		case <-stop:
		default:
			close(stop)
			d.log.Infof("simulation stop requested")
		}
	}
	d.runMu.Unlock()
	if done != nil {
		<-done
	}
}

// Run cycles every configured interval until ctx is done or Stop is called.
// It blocks, and fails with ErrAlreadyRunning when a loop is alive.
func (d *Driver) Run(ctx context.Context) error {
	stop, done, ok := d.claim()
	if !ok {
		return ErrAlreadyRunning
	}
	d.loop(ctx, stop, done)
	return nil
}

func (d *Driver) claim() (stop, done chan struct{}, ok bool) {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if d.done != nil {
		return nil, nil, false
	}
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.running.Store(true)
	return d.stop, d.done, true
}

func (d *Driver) release(done chan struct{}) {
	d.runMu.Lock()
	if d.done == done {
		d.stop, d.done = nil, nil
		d.running.Store(false)
	}
	d.runMu.Unlock()
	close(done)
}

func (d *Driver) loop(ctx context.Context, stop, done chan struct{}) {
	d.loops.Add(1)
	defer d.release(done)
	defer d.loops.Add(-1)

	d.log.Infof("simulation started interval=%s", d.tick)
	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.log.Infof("simulation stopped: %v", ctx.Err())
			return
		case <-stop:
			d.log.Infof("simulation stopped")
			return
		case <-ticker.C:
			d.safeCycle(ctx)
		}
	}
}

func (d *Driver) safeCycle(ctx context.Context) {
	defer func() {
		if err := monitoring.CapturePanic(recover(), map[string]string{"component": "simulation"}); err != nil {
			d.log.Errorf("simulation cycle: %v", err)
		}
	}()
	if err := d.Cycle(ctx); err != nil {
		d.log.Debugf("cycle interrupted: %v", err)
	}
}
