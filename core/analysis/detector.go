package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridmon/core/model"
)

const (
	// DefaultOverloadRatio is the share of MaxLoad above which a reading is an overload.
	DefaultOverloadRatio = 0.9
	// DefaultVoltageFloor is the voltage under which a voltage drop is raised.
	DefaultVoltageFloor = 210.0

	overloadConfidence    = 0.9
	voltageDropConfidence = 0.75
)

// ThresholdDetector raises anomalies by comparing the newest reading against
// fixed thresholds. Older readings of the window are accepted but not
// consulted.
type ThresholdDetector struct {
	OverloadRatio float64
	VoltageFloor  float64
	Now           func() time.Time
}

// NewThresholdDetector returns a detector with the default thresholds.
func NewThresholdDetector() ThresholdDetector {
	return ThresholdDetector{OverloadRatio: DefaultOverloadRatio, VoltageFloor: DefaultVoltageFloor, Now: time.Now}
}

// Detect implements AnomalyStrategy.
func (d ThresholdDetector) Detect(readings []model.SensorData, ctx DetectionContext) (model.Anomaly, bool) {
	if len(readings) == 0 {
		return model.Anomaly{}, false
	}
	latest := readings[len(readings)-1]
	ratio := d.OverloadRatio
	if ratio <= 0 {
		ratio = DefaultOverloadRatio
	}
	floor := d.VoltageFloor
	if floor <= 0 {
		floor = DefaultVoltageFloor
	}

	limit := ctx.MaxLoad * ratio
	if latest.Value > limit {
		sev := model.SeverityHigh
		if latest.Value > ctx.MaxLoad {
			sev = model.SeverityCritical
		}
		return d.anomaly(ctx, model.AnomalyOverload, sev, overloadConfidence,
			fmt.Sprintf("Overload on object %s: %.1f > %.1f", ctx.ObjectID, latest.Value, limit),
			"Redistribute load or disconnect non-critical consumers"), true
	}
	if latest.Kind() == model.SensorVoltage && latest.Value < floor {
		return d.anomaly(ctx, model.AnomalyVoltageDrop, model.SeverityMedium, voltageDropConfidence,
			fmt.Sprintf("Voltage drop on object %s: %.1f V", ctx.ObjectID, latest.Value),
			"Inspect equipment and voltage stabilizers"), true
	}
	return model.Anomaly{}, false
}

func (d ThresholdDetector) anomaly(ctx DetectionContext, typ model.AnomalyType, sev model.Severity, conf float64, desc, action string) model.Anomaly {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return model.Anomaly{
		ID:                uuid.NewString(),
		DetectedAt:        now(),
		Type:              typ,
		Severity:          sev,
		Description:       desc,
		Status:            model.AnomalyDetected,
		ObjectID:          ctx.ObjectID,
		Confidence:        conf,
		RecommendedAction: action,
	}
}
