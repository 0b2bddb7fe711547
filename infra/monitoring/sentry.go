// Package monitoring adapts Sentry to the core monitoring contract.
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/gridmon/config"
	coremon "github.com/kilianp07/gridmon/core/monitoring"
)

// FlushTimeout bounds the final flush on shutdown.
const FlushTimeout = 2 * time.Second

const defaultRelease = "gridmon"

// hubMonitor reports through its own hub so tests and embedded services do
// not share the SDK global state.
type hubMonitor struct {
	hub *sentry.Hub
}

// NewSentryMonitor builds a Monitor from cfg. An empty DSN yields NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if !cfg.Enabled() {
		return coremon.NopMonitor{}, nil
	}
	return newHubMonitor(clientOptions(cfg))
}

func clientOptions(cfg config.SentryConfig) sentry.ClientOptions {
	release := cfg.Release
	if release == "" {
		release = defaultRelease
	}
	return sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		SampleRate:       cfg.ErrorSampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
	}
}

func newHubMonitor(opts sentry.ClientOptions) (*hubMonitor, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	scope := sentry.NewScope()
	scope.SetTag("service", defaultRelease)
	return &hubMonitor{hub: sentry.NewHub(client, scope)}, nil
}

// Setup installs the configured monitor process wide and returns the flush
// to defer in main.
func Setup(cfg config.SentryConfig) (func(), error) {
	m, err := NewSentryMonitor(cfg)
	if err != nil {
		return func() {}, err
	}
	coremon.Init(m)
	return func() { m.Flush(FlushTimeout) }, nil
}

func (m *hubMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	m.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		m.hub.CaptureException(err)
	})
}

func (m *hubMonitor) Recover() {
	if r := recover(); r != nil {
		m.hub.Recover(r)
		m.hub.Flush(FlushTimeout)
		panic(r)
	}
}

func (m *hubMonitor) Flush(timeout time.Duration) { m.hub.Flush(timeout) }
