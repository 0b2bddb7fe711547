// Package alert records operator alerts and fans out urgent ones.
package alert

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/metrics"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/internal/eventbus"
)

var ErrAlertNotFound = errors.New("alert not found")

// Well known recipients.
const (
	RecipientAllDispatchers  = "all_dispatchers"
	RecipientRepairCrew      = "repair_crew"
	RecipientMaintenanceTeam = "maintenance_team"
)

// Service keeps every alert in memory. Alerts are never deleted.
type Service struct {
	mu     sync.RWMutex
	alerts []model.Alert
	index  map[string]int
	urgent *eventbus.Bus[model.Alert]
	sink   metrics.Sink
	log    logger.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(sink metrics.Sink, log logger.Logger) *Service {
	return &Service{
		index:  make(map[string]int),
		urgent: eventbus.New[model.Alert](),
		sink:   metrics.OrNop(sink),
		log:    logger.OrNop(log),
		now:    time.Now,
	}
}

// Send appends an unread alert. High and critical alerts are also published
// to urgent subscribers without blocking.
func (s *Service) Send(message string, severity model.Severity, recipient string) model.Alert {
	a := model.Alert{
		ID:        uuid.NewString(),
		Time:      s.now(),
		Message:   message,
		Severity:  severity,
		Recipient: recipient,
	}
	s.mu.Lock()
	s.index[a.ID] = len(s.alerts)
	s.alerts = append(s.alerts, a)
	s.mu.Unlock()

	s.log.Infof("alert [%s] to %s: %s", severity, recipient, message)
	if rec, ok := s.sink.(metrics.AlertRecorder); ok {
		if err := rec.RecordAlert(metrics.AlertEvent{Alert: a}); err != nil {
			s.log.Errorf("alert metrics error: %v", err)
		}
	}
	if severity.IsUrgent() {
		if n := s.urgent.Publish(a); n < s.urgent.Subscribers() {
			s.log.Warnf("urgent alert %s dropped by %d subscribers", a.ID, s.urgent.Subscribers()-n)
		}
	}
	return a
}

// SubscribeUrgent returns a channel receiving high and critical alerts.
func (s *Service) SubscribeUrgent() <-chan model.Alert { return s.urgent.Subscribe() }

// UnsubscribeUrgent closes a channel returned by SubscribeUrgent.
func (s *Service) UnsubscribeUrgent(ch <-chan model.Alert) { s.urgent.Unsubscribe(ch) }

// Notify sends a personal message to a user. It is only logged.
func (s *Service) Notify(user model.User, message string) {
	s.log.Infof("notification to %s (%s): %s", user.Username, user.ID, message)
}

// Alerts returns every alert, oldest first.
func (s *Service) Alerts() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Alert, len(s.alerts))
	copy(res, s.alerts)
	return res
}

// Unread returns alerts not yet acknowledged.
func (s *Service) Unread() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.Alert
	for _, a := range s.alerts {
		if !a.Read {
			res = append(res, a)
		}
	}
	return res
}

// MarkRead acknowledges an alert. Marking an already read alert succeeds.
func (s *Service) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	s.alerts[i].Read = true
	return nil
}

// SendCrewAlert dispatches the repair crew.
func (s *Service) SendCrewAlert(objectID string) model.Alert {
	msg := "Repair crew dispatch required"
	if objectID != "" {
		msg += " at " + objectID
	}
	return s.Send(msg, model.SeverityHigh, RecipientRepairCrew)
}

// SwitchToBackup notifies maintenance that backup supply was activated.
func (s *Service) SwitchToBackup() model.Alert {
	return s.Send("Backup power supply activated", model.SeverityMedium, RecipientMaintenanceTeam)
}

// Close releases urgent subscribers.
func (s *Service) Close() { s.urgent.Close() }
