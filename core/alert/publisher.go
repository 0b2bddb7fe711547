package alert

import (
	"context"

	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/model"
)

// Publisher delivers alerts to an external channel such as an MQTT broker.
type Publisher interface {
	PublishAlert(a model.Alert) error
}

// Forward subscribes to urgent alerts and hands each one to pub until ctx is
// done or the service is closed.
func Forward(ctx context.Context, s *Service, pub Publisher, log logger.Logger) {
	log = logger.OrNop(log)
	ch := s.SubscribeUrgent()
	defer s.UnsubscribeUrgent(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-ch:
			if !ok {
				return
			}
			if err := pub.PublishAlert(a); err != nil {
				log.Errorf("forward alert %s: %v", a.ID, err)
			}
		}
	}
}
