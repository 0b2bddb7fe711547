// Package monitor orchestrates reading ingestion and anomaly detection and
// summarises the health of the network.
package monitor

import (
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/kilianp07/gridmon/core/analysis"
	"github.com/kilianp07/gridmon/core/events"
	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/metrics"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/repository"
)

// HistoryWindow is how far back readings are fetched for detection.
const HistoryWindow = 24 * time.Hour

// DefaultBottleneckThreshold is the utilization percentage above which an
// object is reported as a bottleneck.
const DefaultBottleneckThreshold = 80.0

var (
	ErrAnomalyNotFound = errors.New("anomaly not found")
	ErrInvalidStatus   = errors.New("invalid anomaly status")
)

// Status summarises object states across the network.
type Status struct {
	Total            int     `json:"total_objects"`
	Operational      int     `json:"operational"`
	Maintenance      int     `json:"maintenance"`
	Failures         int     `json:"failures"`
	HealthPercentage float64 `json:"health_percentage"`
}

// Bottleneck is an object running above the utilization threshold.
type Bottleneck struct {
	ObjectID    string  `json:"object_id"`
	Name        string  `json:"name"`
	Utilization float64 `json:"utilization"`
}

// Controller holds the monitoring state. Analysis is disabled until Start.
type Controller struct {
	store    repository.Store
	detector analysis.AnomalyStrategy
	log      logger.Logger
	sink     metrics.Sink
	bus      events.Publisher
	active   atomic.Bool
}

// NewController creates a Controller. A nil detector defaults to the
// threshold detector; nil logger, sink and bus are allowed.
func NewController(store repository.Store, detector analysis.AnomalyStrategy, log logger.Logger, sink metrics.Sink, bus events.Publisher) *Controller {
	if detector == nil {
		detector = analysis.NewThresholdDetector()
	}
	return &Controller{
		store:    store,
		detector: detector,
		log:      logger.OrNop(log),
		sink:     metrics.OrNop(sink),
		bus:      bus,
	}
}

// Start enables anomaly analysis and returns the new state.
func (c *Controller) Start() bool { return c.setActive(true) }

// Stop disables anomaly analysis and returns the new state. Ingestion keeps
// recording readings.
func (c *Controller) Stop() bool { return c.setActive(false) }

// Active reports whether analysis is enabled.
func (c *Controller) Active() bool { return c.active.Load() }

func (c *Controller) setActive(v bool) bool {
	if c.active.Swap(v) != v {
		if v {
			c.log.Infof("network monitoring started")
			monitoringActive.Set(1)
		} else {
			c.log.Infof("network monitoring stopped")
			monitoringActive.Set(0)
		}
		events.Emit(c.bus, events.MonitoringEvent{Active: v})
	}
	return v
}

// NetworkStatus counts objects per status. HealthPercentage is 0 for an
// empty network.
func (c *Controller) NetworkStatus() Status {
	var st Status
	for _, o := range c.store.Objects() {
		st.Total++
		switch o.Status {
		case model.StatusOperational:
			st.Operational++
		case model.StatusMaintenance:
			st.Maintenance++
		case model.StatusFailure:
			st.Failures++
		}
	}
	if st.Total > 0 {
		st.HealthPercentage = float64(st.Operational) / float64(st.Total) * 100
	}
	if rec, ok := c.sink.(metrics.NetworkStatusRecorder); ok {
		if err := rec.RecordNetworkStatus(metrics.NetworkStatusEvent{
			Total: st.Total, Operational: st.Operational, Maintenance: st.Maintenance,
			Failures: st.Failures, HealthPercentage: st.HealthPercentage, Time: time.Now(),
		}); err != nil {
			c.log.Errorf("network status metrics error: %v", err)
		}
	}
	return st
}

// Ingest records a reading regardless of the monitoring state.
func (c *Controller) Ingest(r model.SensorData) {
	c.store.AddReading(r)
	ingestedReadings.WithLabelValues(string(r.Kind())).Inc()
	if err := c.sink.RecordReading(metrics.ReadingEvent{ObjectID: r.ObjectID(), Kind: r.Kind(), Value: r.Value, Time: r.Timestamp}); err != nil {
		c.log.Errorf("reading metrics error: %v", err)
	}
	events.Emit(c.bus, events.ReadingEvent{Reading: r, ObjectID: r.ObjectID()})
}

// DetectAnomalies analyses the reading against the last 24 hours of its
// sensor. It returns false when monitoring is stopped, the object is unknown
// or no anomaly is raised. A raised anomaly is stored before returning.
func (c *Controller) DetectAnomalies(r model.SensorData, obj model.NetworkObject) (model.Anomaly, bool) {
	if !c.Active() {
		return model.Anomaly{}, false
	}
	if _, ok := c.store.Object(obj.ID); !ok {
		c.log.Warnf("skip detection for unknown object %s", obj.ID)
		return model.Anomaly{}, false
	}
	start := time.Now()
	ctx := analysis.DetectionContext{ObjectID: obj.ID, ObjectType: obj.Type, MaxLoad: obj.Capacity}
	history := c.store.Readings(r.SensorID, r.Timestamp.Add(-HistoryWindow), r.Timestamp)
	window := make([]model.SensorData, 0, len(history)+1)
	window = append(window, history...)
	window = append(window, r)

	a, found := c.detector.Detect(window, ctx)
	detectionLatency.WithLabelValues(string(r.Kind())).Observe(time.Since(start).Seconds())
	if !found {
		return model.Anomaly{}, false
	}
	c.Record(a, "detector")
	return a, true
}

// Record stores an anomaly produced outside the detector, such as a
// simulated one, and publishes it.
func (c *Controller) Record(a model.Anomaly, source string) {
	c.store.AddAnomaly(a)
	c.log.Debugw("anomaly stored", map[string]any{
		"anomaly_id": a.ID,
		"object_id":  a.ObjectID,
		"type":       string(a.Type),
		"severity":   a.Severity.String(),
		"source":     source,
	})
	if rec, ok := c.sink.(metrics.AnomalyRecorder); ok {
		if err := rec.RecordAnomaly(metrics.AnomalyEvent{Anomaly: a, Source: source}); err != nil {
			c.log.Errorf("anomaly metrics error: %v", err)
		}
	}
	events.Emit(c.bus, events.AnomalyEvent{Anomaly: a, Source: source})
}

// ActiveAnomalies returns anomalies that are not resolved.
func (c *Controller) ActiveAnomalies() []model.Anomaly { return c.store.ActiveAnomalies() }

// SetAnomalyStatus changes the status of a stored anomaly.
func (c *Controller) SetAnomalyStatus(id string, status model.AnomalyStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if !c.store.SetAnomalyStatus(id, status) {
		return ErrAnomalyNotFound
	}
	if a, ok := c.store.Anomaly(id); ok {
		events.Emit(c.bus, events.AnomalyEvent{Anomaly: a, Source: "operator"})
	}
	c.log.Infof("anomaly %s set to %s", id, status)
	return nil
}

// ResolveAnomaly marks the anomaly as resolved.
func (c *Controller) ResolveAnomaly(id string) error {
	return c.SetAnomalyStatus(id, model.AnomalyResolved)
}

// Bottlenecks lists objects whose utilization exceeds threshold percent,
// highest first. A non-positive threshold uses DefaultBottleneckThreshold.
func (c *Controller) Bottlenecks(threshold float64) []Bottleneck {
	if threshold <= 0 {
		threshold = DefaultBottleneckThreshold
	}
	var res []Bottleneck
	for _, o := range c.store.Objects() {
		if u := o.Utilization(); u > threshold {
			res = append(res, Bottleneck{ObjectID: o.ID, Name: o.Name, Utilization: u})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Utilization > res[j].Utilization })
	return res
}
