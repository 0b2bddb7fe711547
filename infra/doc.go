// Package infra contains technical adapters: the zerolog logger, the
// Prometheus and InfluxDB metric sinks, the MQTT alert publisher and the
// Sentry monitor. They implement interfaces declared by the core packages.
package infra
