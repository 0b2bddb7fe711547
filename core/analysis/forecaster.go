package analysis

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/gridmon/core/model"
)

const (
	// DefaultBaseLoad is used when no readings are available.
	DefaultBaseLoad = 100.0
	// HourlyPeriod is the only forecast period produced.
	HourlyPeriod = "hourly"

	forecastWindow     = 24
	baseConfidence     = 0.85
	weatherConfPenalty = 0.1
)

// HourlyForecaster averages the most recent readings and scales them by a
// weather factor and a time of day factor.
type HourlyForecaster struct {
	Now func() time.Time
}

// NewHourlyForecaster returns a forecaster using the wall clock.
func NewHourlyForecaster() HourlyForecaster { return HourlyForecaster{Now: time.Now} }

// TimeFactor returns the load multiplier for the given hour of day.
func TimeFactor(hour int) float64 {
	switch {
	case hour >= 6 && hour < 10:
		return 1.5
	case hour >= 10 && hour < 18:
		return 1.2
	case hour >= 18 && hour < 23:
		return 1.8
	default:
		return 0.7
	}
}

// Forecast implements ForecastStrategy. Confidence is not clamped and drops
// below zero for weather factors far from 1.
func (f HourlyForecaster) Forecast(readings []model.SensorData, ctx ForecastContext) model.LoadForecast {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	ts := now()

	avg := DefaultBaseLoad
	if len(readings) > 0 {
		tail := readings
		if len(tail) > forecastWindow {
			tail = tail[len(tail)-forecastWindow:]
		}
		values := make([]float64, len(tail))
		for i, r := range tail {
			values[i] = r.Value
		}
		avg = stat.Mean(values, nil)
	}

	wf := 1.0
	if ctx.WeatherFactor != nil {
		wf = *ctx.WeatherFactor
	}
	objectID := ctx.ObjectID
	if objectID == "" {
		objectID = "unknown"
	}
	return model.LoadForecast{
		ID:            uuid.NewString(),
		ObjectID:      objectID,
		ForecastTime:  ts,
		PredictedLoad: avg * wf * TimeFactor(ts.Hour()),
		Confidence:    baseConfidence - math.Abs(wf-1.0)*weatherConfPenalty,
		Period:        HourlyPeriod,
		WeatherFactor: wf,
	}
}
