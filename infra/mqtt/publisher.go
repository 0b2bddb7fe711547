package mqtt

import (
	"fmt"
	"sync"

	"github.com/kilianp07/gridmon/core/alert"
	"github.com/kilianp07/gridmon/core/model"
)

// Publisher mirrors the core alert.Publisher interface.
type Publisher = alert.Publisher

var (
	_ Publisher = (*AlertPublisher)(nil)
	_ Publisher = (*MockPublisher)(nil)
)

// MockPublisher records alerts in memory. Recipients listed in FailRecipients
// make PublishAlert fail.
type MockPublisher struct {
	mu             sync.Mutex
	Alerts         []model.Alert
	FailRecipients map[string]bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailRecipients: make(map[string]bool)}
}

// PublishAlert records the alert or returns an error if configured to fail.
func (m *MockPublisher) PublishAlert(a model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRecipients[a.Recipient] {
		return fmt.Errorf("publish to %s failed", a.Recipient)
	}
	m.Alerts = append(m.Alerts, a)
	return nil
}

// Published returns a copy of the recorded alerts.
func (m *MockPublisher) Published() []model.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]model.Alert, len(m.Alerts))
	copy(res, m.Alerts)
	return res
}
