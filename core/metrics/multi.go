package metrics

import (
	"errors"

	"github.com/kilianp07/gridmon/core/model"
)

// MultiSink fans records out to several sinks. Every sink is called; the
// errors are joined.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordReading(ev ReadingEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordReading(ev))
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordAnomaly(ev AnomalyEvent) error {
	return forEach(m.Sinks, func(r AnomalyRecorder) error { return r.RecordAnomaly(ev) })
}

func (m *MultiSink) RecordNetworkStatus(ev NetworkStatusEvent) error {
	return forEach(m.Sinks, func(r NetworkStatusRecorder) error { return r.RecordNetworkStatus(ev) })
}

func (m *MultiSink) RecordObjectLoad(ev ObjectLoadEvent) error {
	return forEach(m.Sinks, func(r ObjectLoadRecorder) error { return r.RecordObjectLoad(ev) })
}

func (m *MultiSink) RecordAlert(ev AlertEvent) error {
	return forEach(m.Sinks, func(r AlertRecorder) error { return r.RecordAlert(ev) })
}

func (m *MultiSink) RecordForecast(f model.LoadForecast) error {
	return forEach(m.Sinks, func(r ForecastRecorder) error { return r.RecordForecast(f) })
}

func (m *MultiSink) RecordCommand(ev CommandEvent) error {
	return forEach(m.Sinks, func(r CommandRecorder) error { return r.RecordCommand(ev) })
}

// forEach calls fn on every sink implementing R.
func forEach[R any](sinks []Sink, fn func(R) error) error {
	var errs []error
	for _, s := range sinks {
		if r, ok := s.(R); ok {
			errs = append(errs, fn(r))
		}
	}
	return errors.Join(errs...)
}
