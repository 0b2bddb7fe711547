// Package monitoring routes unexpected errors and panics to an error tracker.
// The Sentry implementation lives in infra/monitoring; NopMonitor is the
// default.
package monitoring

import (
	"fmt"
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// Recover must be deferred. It reports a panic and re-panics.
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the process wide monitor. A nil monitor is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

// Current returns the installed monitor.
func Current() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	Current().CaptureException(err, tags)
}

// CapturePanic reports a value obtained from recover and returns it as an
// error. It returns nil when r is nil.
func CapturePanic(r any, tags map[string]string) error {
	if r == nil {
		return nil
	}
	var err error
	if e, ok := r.(error); ok {
		err = fmt.Errorf("panic: %w", e)
	} else {
		err = fmt.Errorf("panic: %v", r)
	}
	CaptureException(err, tags)
	return err
}

// Go runs fn in a goroutine. A panic in fn is reported and swallowed so one
// background task cannot take the process down.
func Go(tags map[string]string, fn func()) {
	go func() {
		defer func() { _ = CapturePanic(recover(), tags) }()
		fn()
	}()
}

// Flush flushes buffered events.
func Flush(d time.Duration) { Current().Flush(d) }
