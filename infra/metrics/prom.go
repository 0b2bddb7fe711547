package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/gridmon/core/metrics"
	"github.com/kilianp07/gridmon/core/model"
)

// PromSink exposes grid readings, anomalies and operator activity as
// Prometheus metrics.
type PromSink struct {
	readings    *prometheus.GaugeVec
	readCount   *prometheus.CounterVec
	anomalies   *prometheus.CounterVec
	health      *prometheus.GaugeVec
	load        *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
	alerts      *prometheus.CounterVec
	forecasts   *prometheus.GaugeVec
	commands    *prometheus.CounterVec
}

// NewPromSink registers grid metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with ServeMetrics.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, returning the already registered collector when
// an identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		readings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridmon_sensor_value",
			Help: "Last value reported by a sensor",
		}, []string{"object_id", "kind"}),
		readCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridmon_sensor_readings_total",
			Help: "Number of readings recorded per object and kind",
		}, []string{"object_id", "kind"}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridmon_anomalies_total",
			Help: "Anomalies stored by type, severity and source",
		}, []string{"type", "severity", "source"}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridmon_network_objects",
			Help: "Network objects per status",
		}, []string{"status"}),
		load: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridmon_object_load_kw",
			Help: "Current load of a network object",
		}, []string{"object_id", "type"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridmon_object_utilization_percent",
			Help: "Load of a network object as a share of its capacity",
		}, []string{"object_id", "type"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridmon_alerts_total",
			Help: "Alerts sent by severity",
		}, []string{"severity"}),
		forecasts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridmon_forecast_load_kw",
			Help: "Latest predicted load per object",
		}, []string{"object_id"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridmon_commands_total",
			Help: "Operator commands by kind, action and outcome",
		}, []string{"kind", "action", "ok"}),
	}
	var err error
	if s.readings, err = register(reg, s.readings); err != nil {
		return nil, err
	}
	if s.readCount, err = register(reg, s.readCount); err != nil {
		return nil, err
	}
	if s.anomalies, err = register(reg, s.anomalies); err != nil {
		return nil, err
	}
	if s.health, err = register(reg, s.health); err != nil {
		return nil, err
	}
	if s.load, err = register(reg, s.load); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, s.utilization); err != nil {
		return nil, err
	}
	if s.alerts, err = register(reg, s.alerts); err != nil {
		return nil, err
	}
	if s.forecasts, err = register(reg, s.forecasts); err != nil {
		return nil, err
	}
	if s.commands, err = register(reg, s.commands); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PromSink) RecordReading(ev coremetrics.ReadingEvent) error {
	s.readings.WithLabelValues(ev.ObjectID, string(ev.Kind)).Set(ev.Value)
	s.readCount.WithLabelValues(ev.ObjectID, string(ev.Kind)).Inc()
	return nil
}

func (s *PromSink) RecordAnomaly(ev coremetrics.AnomalyEvent) error {
	a := ev.Anomaly
	s.anomalies.WithLabelValues(string(a.Type), a.Severity.String(), ev.Source).Inc()
	return nil
}

func (s *PromSink) RecordNetworkStatus(ev coremetrics.NetworkStatusEvent) error {
	s.health.WithLabelValues("operational").Set(float64(ev.Operational))
	s.health.WithLabelValues("maintenance").Set(float64(ev.Maintenance))
	s.health.WithLabelValues("failure").Set(float64(ev.Failures))
	return nil
}

func (s *PromSink) RecordObjectLoad(ev coremetrics.ObjectLoadEvent) error {
	o := ev.Object
	s.load.WithLabelValues(o.ID, string(o.Type)).Set(o.CurrentLoad)
	s.utilization.WithLabelValues(o.ID, string(o.Type)).Set(o.Utilization())
	return nil
}

func (s *PromSink) RecordAlert(ev coremetrics.AlertEvent) error {
	s.alerts.WithLabelValues(ev.Alert.Severity.String()).Inc()
	return nil
}

func (s *PromSink) RecordForecast(f model.LoadForecast) error {
	s.forecasts.WithLabelValues(f.ObjectID).Set(f.PredictedLoad)
	return nil
}

func (s *PromSink) RecordCommand(ev coremetrics.CommandEvent) error {
	s.commands.WithLabelValues(ev.Kind, ev.Action, strconv.FormatBool(ev.OK)).Inc()
	return nil
}
