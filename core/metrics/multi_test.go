package metrics

import (
	"errors"
	"testing"

	"github.com/kilianp07/gridmon/core/factory"
	"github.com/kilianp07/gridmon/core/model"
)

type readingOnly struct{ readings int }

func (r *readingOnly) RecordReading(ReadingEvent) error {
	r.readings++
	return nil
}

type fullSink struct {
	readingOnly
	anomalies int
	fail      bool
}

func (f *fullSink) RecordAnomaly(AnomalyEvent) error {
	f.anomalies++
	if f.fail {
		return errors.New("down")
	}
	return nil
}

func TestMultiSinkForwardsOptionalRecorders(t *testing.T) {
	a := &readingOnly{}
	b := &fullSink{}
	m := NewMultiSink(a, b)
	if err := m.RecordReading(ReadingEvent{Kind: model.SensorPower}); err != nil {
		t.Fatalf("reading: %v", err)
	}
	if err := m.RecordAnomaly(AnomalyEvent{}); err != nil {
		t.Fatalf("anomaly: %v", err)
	}
	if a.readings != 1 || b.readings != 1 || b.anomalies != 1 {
		t.Fatalf("records not forwarded: %+v %+v", a, b)
	}
	if err := m.RecordAlert(AlertEvent{}); err != nil {
		t.Fatalf("unsupported recorder must be skipped: %v", err)
	}
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	first := &fullSink{fail: true}
	second := &fullSink{}
	m := NewMultiSink(first, second)
	if err := m.RecordAnomaly(AnomalyEvent{}); err == nil {
		t.Fatalf("expected error")
	}
	if second.anomalies != 1 {
		t.Fatalf("second sink must still be called")
	}
}

func TestNewSink(t *testing.T) {
	s, err := NewSink(nil)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink got %T", s)
	}
	name := "test-counting"
	_ = RegisterSink(name, func(map[string]any) (Sink, error) { return &readingOnly{}, nil })
	s, err = NewSink([]factory.ModuleConfig{{Type: name}, {Type: name}})
	if err != nil {
		t.Fatalf("multi: %v", err)
	}
	if ms, ok := s.(*MultiSink); !ok || len(ms.Sinks) != 2 {
		t.Fatalf("expected MultiSink of 2 got %T", s)
	}
	s, err = NewSink([]factory.ModuleConfig{{Type: ""}, {Type: name}})
	if err != nil {
		t.Fatalf("skip empty: %v", err)
	}
	if _, ok := s.(*readingOnly); !ok {
		t.Fatalf("expected single sink got %T", s)
	}
	if _, err := NewSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatalf("expected unknown type error")
	}
}
