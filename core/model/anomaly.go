package model

import (
	"fmt"
	"strings"
	"time"
)

// AnomalyType classifies a detected deviation.
type AnomalyType string

const (
	AnomalyOverload           AnomalyType = "overload"
	AnomalyVoltageDrop        AnomalyType = "voltage_drop"
	AnomalyPowerOutage        AnomalyType = "power_outage"
	AnomalyEquipmentFailure   AnomalyType = "equipment_failure"
	AnomalyUnusualConsumption AnomalyType = "unusual_consumption"
)

// AnomalyTypes lists every anomaly type in declaration order.
var AnomalyTypes = []AnomalyType{
	AnomalyOverload,
	AnomalyVoltageDrop,
	AnomalyPowerOutage,
	AnomalyEquipmentFailure,
	AnomalyUnusualConsumption,
}

// Severity is an ordered anomaly and alert level.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Severities lists the levels from lowest to highest.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// IsUrgent is true for levels that need immediate operator attention.
func (s Severity) IsUrgent() bool { return s >= SeverityHigh }

// ParseSeverity converts a name back to a Severity.
func ParseSeverity(v string) (Severity, error) {
	for _, s := range Severities {
		if strings.EqualFold(v, s.String()) {
			return s, nil
		}
	}
	return SeverityLow, fmt.Errorf("unknown severity %q", v)
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// AnomalyStatus is the lifecycle state of an anomaly.
type AnomalyStatus string

const (
	AnomalyDetected       AnomalyStatus = "detected"
	AnomalyAnalyzing      AnomalyStatus = "analyzing"
	AnomalyActionRequired AnomalyStatus = "action_required"
	AnomalyResolved       AnomalyStatus = "resolved"
)

// IsActive is true until the anomaly is resolved.
func (s AnomalyStatus) IsActive() bool {
	return s == AnomalyDetected || s == AnomalyAnalyzing || s == AnomalyActionRequired
}

// Valid reports whether s is a known status.
func (s AnomalyStatus) Valid() bool { return s.IsActive() || s == AnomalyResolved }

// Anomaly is a detected deviation on a network object. Only Status changes
// after creation.
type Anomaly struct {
	ID                string        `json:"anomaly_id"`
	DetectedAt        time.Time     `json:"detection_time"`
	Type              AnomalyType   `json:"anomaly_type"`
	Severity          Severity      `json:"severity"`
	Description       string        `json:"description"`
	Status            AnomalyStatus `json:"status"`
	ObjectID          string        `json:"affected_object_id"`
	Confidence        float64       `json:"confidence_score"`
	RecommendedAction string        `json:"recommended_action"`
}

func (a Anomaly) String() string {
	return string(a.Type) + ": " + a.Description
}
