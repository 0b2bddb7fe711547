package model

import "time"

// RecommendationStatus is the approval state of a recommendation.
type RecommendationStatus string

const (
	RecommendationPending  RecommendationStatus = "pending"
	RecommendationApproved RecommendationStatus = "approved"
	RecommendationRejected RecommendationStatus = "rejected"
	RecommendationExecuted RecommendationStatus = "executed"
)

// ActionType is the category of corrective action.
type ActionType string

const (
	ActionSwitching   ActionType = "switching"
	ActionMaintenance ActionType = "maintenance"
	ActionEmergency   ActionType = "emergency"
	ActionAnalysis    ActionType = "analysis"
)

// Recommendation is a suggested corrective action derived from one anomaly.
// Priority ranges from 1 to 5, 5 being the highest.
type Recommendation struct {
	ID         string               `json:"recommendation_id"`
	AnomalyID  string               `json:"anomaly_id"`
	CreatedAt  time.Time            `json:"creation_time"`
	Content    string               `json:"content"`
	Priority   int                  `json:"priority"`
	Status     RecommendationStatus `json:"status"`
	ActionType ActionType           `json:"action_type"`
	ExecutorID string               `json:"executor_id,omitempty"`
	ExecutedAt *time.Time           `json:"execution_time,omitempty"`
}
