// Package metrics declares the observability sinks fed by the monitoring
// pipeline. Sinks implement Sink plus any of the optional recorder
// interfaces; MultiSink and the infra implementations type-assert for the
// optional ones.
package metrics
