package metrics

import "github.com/kilianp07/gridmon/core/factory"

// Config lists the sinks to build. An empty list yields NopSink.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr exposes /metrics when non-empty, e.g. ":9100".
	PrometheusAddr string `json:"prometheus_addr"`
}
