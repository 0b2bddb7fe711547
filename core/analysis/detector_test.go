package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridmon/core/model"
)

func reading(kind model.SensorKind, v float64) model.SensorData {
	return model.SensorData{SensorID: model.SensorID("feeder_001", kind), Timestamp: time.Now(), Value: v}
}

func TestThresholdDetectorOverload(t *testing.T) {
	d := NewThresholdDetector()
	ctx := DetectionContext{ObjectID: "feeder_001", ObjectType: model.ObjectFeeder, MaxLoad: 500}

	cases := []struct {
		value float64
		want  bool
		sev   model.Severity
	}{
		{450, false, 0},
		{450.1, true, model.SeverityHigh},
		{480, true, model.SeverityHigh},
		{500, true, model.SeverityHigh},
		{520, true, model.SeverityCritical},
	}
	for _, c := range cases {
		a, ok := d.Detect([]model.SensorData{reading(model.SensorPower, c.value)}, ctx)
		require.Equal(t, c.want, ok, "value %v", c.value)
		if !ok {
			continue
		}
		assert.Equal(t, model.AnomalyOverload, a.Type)
		assert.Equal(t, c.sev, a.Severity, "value %v", c.value)
		assert.Equal(t, 0.9, a.Confidence)
		assert.Equal(t, model.AnomalyDetected, a.Status)
		assert.Equal(t, "feeder_001", a.ObjectID)
		assert.NotEmpty(t, a.ID)
	}
}

func TestThresholdDetectorVoltageDrop(t *testing.T) {
	d := NewThresholdDetector()
	ctx := DetectionContext{ObjectID: "feeder_001", MaxLoad: 500}

	a, ok := d.Detect([]model.SensorData{reading(model.SensorVoltage, 205)}, ctx)
	require.True(t, ok)
	assert.Equal(t, model.AnomalyVoltageDrop, a.Type)
	assert.Equal(t, model.SeverityMedium, a.Severity)
	assert.Equal(t, 0.75, a.Confidence)

	_, ok = d.Detect([]model.SensorData{reading(model.SensorVoltage, 210)}, ctx)
	assert.False(t, ok)
	// low current is not a voltage drop
	_, ok = d.Detect([]model.SensorData{reading(model.SensorCurrent, 50)}, ctx)
	assert.False(t, ok)
}

func TestThresholdDetectorOverloadWinsOverVoltage(t *testing.T) {
	d := NewThresholdDetector()
	a, ok := d.Detect([]model.SensorData{reading(model.SensorVoltage, 200)}, DetectionContext{MaxLoad: 100})
	require.True(t, ok)
	assert.Equal(t, model.AnomalyOverload, a.Type)
}

func TestThresholdDetectorOnlyTail(t *testing.T) {
	d := NewThresholdDetector()
	ctx := DetectionContext{ObjectID: "o", MaxLoad: 500}
	window := []model.SensorData{reading(model.SensorPower, 900), reading(model.SensorPower, 100)}
	_, ok := d.Detect(window, ctx)
	assert.False(t, ok)
	_, ok = d.Detect(nil, ctx)
	assert.False(t, ok)
}

func TestThresholdDetectorClock(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	d := ThresholdDetector{Now: func() time.Time { return fixed }}
	a, ok := d.Detect([]model.SensorData{reading(model.SensorPower, 1000)}, DetectionContext{MaxLoad: 500})
	require.True(t, ok)
	assert.Equal(t, fixed, a.DetectedAt)
}
