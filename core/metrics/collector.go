package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/gridmon/core/events"
	"github.com/kilianp07/gridmon/core/model"
)

// Subscriber is the read side of the event bus. *eventbus.Bus[any]
// satisfies it.
type Subscriber interface {
	Subscribe() <-chan any
	Unsubscribe(sub <-chan any)
}

// ObjectLookup resolves network objects for load snapshots.
type ObjectLookup interface {
	Object(id string) (model.NetworkObject, bool)
	Objects() []model.NetworkObject
}

// StartEventCollector subscribes to the event bus and records object loads.
// Power readings update the reporting object; applied commands refresh every
// object. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus Subscriber, objects ObjectLookup, sink Sink) {
	if bus == nil || objects == nil || sink == nil {
		return
	}
	rec, ok := sink.(ObjectLoadRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				collect(ev, objects, rec)
			}
		}
	}()
}

func collect(ev any, objects ObjectLookup, rec ObjectLoadRecorder) {
	switch e := ev.(type) {
	case events.ReadingEvent:
		if e.Reading.Kind() != model.SensorPower {
			return
		}
		obj, ok := objects.Object(e.ObjectID)
		if !ok {
			return
		}
		obj.SetLoad(e.Reading.Value)
		_ = rec.RecordObjectLoad(ObjectLoadEvent{Object: obj, Time: e.Reading.Timestamp})
	case events.CommandEvent:
		if e.Err != nil {
			return
		}
		now := time.Now()
		for _, obj := range objects.Objects() {
			_ = rec.RecordObjectLoad(ObjectLoadEvent{Object: obj, Time: now})
		}
	}
}
