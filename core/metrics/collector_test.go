package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridmon/core/events"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/internal/eventbus"
)

type loadSink struct {
	mu    sync.Mutex
	loads []ObjectLoadEvent
}

func (*loadSink) RecordReading(ReadingEvent) error { return nil }

func (s *loadSink) RecordObjectLoad(ev ObjectLoadEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, ev)
	return nil
}

func (s *loadSink) snapshot() []ObjectLoadEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ObjectLoadEvent(nil), s.loads...)
}

type objects map[string]model.NetworkObject

func (o objects) Object(id string) (model.NetworkObject, bool) {
	obj, ok := o[id]
	return obj, ok
}

func (o objects) Objects() []model.NetworkObject {
	res := make([]model.NetworkObject, 0, len(o))
	for _, obj := range o {
		res = append(res, obj)
	}
	return res
}

func reading(objectID string, kind model.SensorKind, v float64) events.ReadingEvent {
	return events.ReadingEvent{
		ObjectID: objectID,
		Reading:  model.SensorData{SensorID: model.SensorID(objectID, kind), Value: v, Timestamp: time.Now()},
	}
}

func TestEventCollectorRecordsObjectLoad(t *testing.T) {
	bus := eventbus.New[any]()
	defer bus.Close()
	sink := &loadSink{}
	objs := objects{
		"feeder_001": {ID: "feeder_001", Capacity: 500, CurrentLoad: 320},
		"sub_001":    {ID: "sub_001", Capacity: 10000, CurrentLoad: 6500},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, objs, sink)
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	bus.Publish(reading("feeder_001", model.SensorVoltage, 230))
	bus.Publish(reading("feeder_001", model.SensorPower, 450))
	bus.Publish(reading("missing", model.SensorPower, 10))
	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	got := sink.snapshot()[0]
	require.Equal(t, "feeder_001", got.Object.ID)
	require.Equal(t, 450.0, got.Object.CurrentLoad)
	require.InDelta(t, 90, got.Object.Utilization(), 1e-9)

	bus.Publish(events.CommandEvent{Kind: "load_reduction", Err: errors.New("failed")})
	bus.Publish(events.CommandEvent{Kind: "load_reduction"})
	require.Eventually(t, func() bool { return len(sink.snapshot()) == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestEventCollectorIgnoresSinkWithoutRecorder(t *testing.T) {
	bus := eventbus.New[any]()
	defer bus.Close()
	StartEventCollector(context.Background(), bus, objects{}, &readingOnly{})
	if bus.Subscribers() != 0 {
		t.Fatalf("collector should not subscribe without an ObjectLoadRecorder")
	}
}
