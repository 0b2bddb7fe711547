package metrics

import (
	"time"

	"github.com/kilianp07/gridmon/core/model"
)

// ReadingEvent is one ingested sensor value.
type ReadingEvent struct {
	ObjectID string
	Kind     model.SensorKind
	Value    float64
	Time     time.Time
}

// Sink records sensor readings. It is the only mandatory interface.
type Sink interface {
	RecordReading(ev ReadingEvent) error
}

// AnomalyEvent captures a stored anomaly. Source is "detector" or "simulation".
type AnomalyEvent struct {
	Anomaly model.Anomaly
	Source  string
}

// AnomalyRecorder records anomalies.
type AnomalyRecorder interface {
	RecordAnomaly(ev AnomalyEvent) error
}

// NetworkStatusEvent is a health snapshot of the whole network.
type NetworkStatusEvent struct {
	Total            int
	Operational      int
	Maintenance      int
	Failures         int
	HealthPercentage float64
	Time             time.Time
}

// NetworkStatusRecorder records network health snapshots.
type NetworkStatusRecorder interface {
	RecordNetworkStatus(ev NetworkStatusEvent) error
}

// ObjectLoadEvent is the current load of one object.
type ObjectLoadEvent struct {
	Object model.NetworkObject
	Time   time.Time
}

// ObjectLoadRecorder records object load snapshots.
type ObjectLoadRecorder interface {
	RecordObjectLoad(ev ObjectLoadEvent) error
}

// AlertEvent captures a dispatched alert.
type AlertEvent struct {
	Alert model.Alert
}

// AlertRecorder records alerts.
type AlertRecorder interface {
	RecordAlert(ev AlertEvent) error
}

// ForecastRecorder records load forecasts.
type ForecastRecorder interface {
	RecordForecast(f model.LoadForecast) error
}

// CommandEvent captures an executed or undone operator command.
type CommandEvent struct {
	Kind   string
	Action string
	OK     bool
	Time   time.Time
}

// CommandRecorder records operator commands.
type CommandRecorder interface {
	RecordCommand(ev CommandEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordReading(ReadingEvent) error             { return nil }
func (NopSink) RecordAnomaly(AnomalyEvent) error             { return nil }
func (NopSink) RecordNetworkStatus(NetworkStatusEvent) error { return nil }
func (NopSink) RecordObjectLoad(ObjectLoadEvent) error       { return nil }
func (NopSink) RecordAlert(AlertEvent) error                 { return nil }
func (NopSink) RecordForecast(model.LoadForecast) error      { return nil }
func (NopSink) RecordCommand(CommandEvent) error             { return nil }

// OrNop returns s, or NopSink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return NopSink{}
	}
	return s
}
