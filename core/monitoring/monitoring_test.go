package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type recordMonitor struct {
	mu    sync.Mutex
	errs  []error
	tags  []map[string]string
	flush int
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) { r.flush++ }

func (r *recordMonitor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func install(t *testing.T) *recordMonitor {
	t.Helper()
	rec := &recordMonitor{}
	Init(rec)
	t.Cleanup(func() { Init(NopMonitor{}) })
	return rec
}

func TestInitAndCapture(t *testing.T) {
	rec := install(t)

	CaptureException(errors.New("boom"), map[string]string{"component": "test"})
	CaptureException(nil, nil)
	Flush(time.Second)
	if rec.count() != 1 || rec.flush != 1 {
		t.Fatalf("unexpected state %+v", rec)
	}
	Init(nil)
	if Current() != Monitor(rec) {
		t.Fatalf("nil Init must keep the current monitor")
	}
}

func TestCapturePanic(t *testing.T) {
	rec := install(t)
	if err := CapturePanic(nil, nil); err != nil {
		t.Fatalf("nil recover value must not be reported: %v", err)
	}
	cause := errors.New("nil map")
	err := CapturePanic(cause, map[string]string{"component": "simulation"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if err := CapturePanic("index out of range", nil); err == nil || err.Error() != "panic: index out of range" {
		t.Fatalf("unexpected error %v", err)
	}
	if rec.count() != 2 || rec.tags[0]["component"] != "simulation" {
		t.Fatalf("unexpected captures %+v", rec.errs)
	}
}

func TestGoRecovers(t *testing.T) {
	rec := install(t)
	done := make(chan struct{})
	Go(map[string]string{"component": "api"}, func() {
		defer close(done)
		panic("listener failed")
	})
	<-done
	deadline := time.Now().Add(time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.count() != 1 {
		t.Fatalf("panic not captured")
	}
}
