package metrics

import (
	"fmt"

	"github.com/kilianp07/gridmon/core/factory"
)

var sinks = factory.NewRegistry[Sink]()

// RegisterSink makes a sink type available to NewSink.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return sinks.Register(name, f)
}

// SinkTypes lists the registered sink names.
func SinkTypes() []string { return sinks.Names() }

// NewSink builds every configured sink and fans records out to all of them.
// Entries with an empty type are skipped; no usable entry yields NopSink.
func NewSink(cfgs []factory.ModuleConfig) (Sink, error) {
	var built []Sink
	for i, c := range cfgs {
		if c.Type == "" {
			continue
		}
		s, err := sinks.Create(c)
		if err != nil {
			return nil, fmt.Errorf("sink %d: %w", i, err)
		}
		built = append(built, s)
	}
	switch len(built) {
	case 0:
		return NopSink{}, nil
	case 1:
		return built[0], nil
	default:
		return NewMultiSink(built...), nil
	}
}
