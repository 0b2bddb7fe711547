// Package recommendation turns anomalies into prioritised corrective actions
// and tracks their approval.
package recommendation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/repository"
)

var (
	ErrNotFound        = errors.New("recommendation not found")
	ErrAnomalyNotFound = errors.New("anomaly not found")
)

type rule struct {
	action   model.ActionType
	priority func(model.Severity) int
	content  string
}

func fixed(p int) func(model.Severity) int { return func(model.Severity) int { return p } }

var rules = map[model.AnomalyType]rule{
	model.AnomalyOverload: {
		action: model.ActionSwitching,
		priority: func(s model.Severity) int {
			if s == model.SeverityCritical {
				return 5
			}
			return 4
		},
		content: "Transfer part of the load from object %s to backup lines",
	},
	model.AnomalyVoltageDrop: {
		action:   model.ActionMaintenance,
		priority: fixed(3),
		content:  "Inspect and adjust equipment at object %s",
	},
	model.AnomalyPowerOutage: {
		action:   model.ActionEmergency,
		priority: fixed(5),
		content:  "Restore power at object %s",
	},
}

var fallback = rule{
	action:   model.ActionAnalysis,
	priority: fixed(2),
	content:  "Situation at object %s requires analysis",
}

// Controller generates and updates recommendations.
type Controller struct {
	store repository.Store
	log   logger.Logger
	now   func() time.Time
}

// NewController creates a Controller backed by store.
func NewController(store repository.Store, log logger.Logger) *Controller {
	return &Controller{store: store, log: logger.OrNop(log), now: time.Now}
}

// Generate builds a pending recommendation for a stored anomaly and stores
// it. Anomalies unknown to the repository yield ErrAnomalyNotFound.
func (c *Controller) Generate(a model.Anomaly) (model.Recommendation, error) {
	if _, ok := c.store.Anomaly(a.ID); !ok {
		return model.Recommendation{}, fmt.Errorf("%w: %s", ErrAnomalyNotFound, a.ID)
	}
	r, ok := rules[a.Type]
	if !ok {
		r = fallback
	}
	rec := model.Recommendation{
		ID:         uuid.NewString(),
		AnomalyID:  a.ID,
		CreatedAt:  c.now(),
		Content:    fmt.Sprintf(r.content, a.ObjectID),
		Priority:   r.priority(a.Severity),
		Status:     model.RecommendationPending,
		ActionType: r.action,
	}
	c.store.AddRecommendation(rec)
	c.log.Infof("recommendation %s created for anomaly %s priority=%d", rec.ID, a.ID, rec.Priority)
	return rec, nil
}

// GenerateFor looks up the anomaly by id and generates a recommendation.
func (c *Controller) GenerateFor(anomalyID string) (model.Recommendation, error) {
	a, ok := c.store.Anomaly(anomalyID)
	if !ok {
		return model.Recommendation{}, fmt.Errorf("%w: %s", ErrAnomalyNotFound, anomalyID)
	}
	return c.Generate(a)
}

// Approve marks the recommendation approved by userID.
func (c *Controller) Approve(id, userID string) error {
	return c.update(id, "approved", func(r *model.Recommendation) {
		r.Status = model.RecommendationApproved
		r.ExecutorID = userID
	})
}

// Reject marks the recommendation rejected.
func (c *Controller) Reject(id string) error {
	return c.update(id, "rejected", func(r *model.Recommendation) {
		r.Status = model.RecommendationRejected
	})
}

// MarkExecuted records that userID carried out the recommendation.
func (c *Controller) MarkExecuted(id, userID string) error {
	at := c.now()
	return c.update(id, "executed", func(r *model.Recommendation) {
		r.Status = model.RecommendationExecuted
		r.ExecutorID = userID
		r.ExecutedAt = &at
	})
}

func (c *Controller) update(id, verb string, fn func(*model.Recommendation)) error {
	if !c.store.UpdateRecommendation(id, fn) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.log.Infof("recommendation %s %s", id, verb)
	return nil
}

// Pending returns recommendations awaiting a decision.
func (c *Controller) Pending() []model.Recommendation { return c.store.PendingRecommendations() }

// All returns every stored recommendation.
func (c *Controller) All() []model.Recommendation { return c.store.Recommendations() }
