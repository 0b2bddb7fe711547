// Package forecast produces load forecasts for network objects and keeps
// their history.
package forecast

import (
	"time"

	"github.com/kilianp07/gridmon/core/analysis"
	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/metrics"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/repository"
)

const (
	// HistoryWindow bounds the readings fed to the strategy.
	HistoryWindow = 7 * 24 * time.Hour
	// ReferenceTemperature maps a temperature to a weather factor of 1.
	ReferenceTemperature = 20.0
)

// Controller creates forecasts with a ForecastStrategy.
type Controller struct {
	store    repository.Store
	strategy analysis.ForecastStrategy
	sink     metrics.Sink
	log      logger.Logger
	now      func() time.Time
}

// NewController creates a Controller. A nil strategy defaults to the hourly
// forecaster.
func NewController(store repository.Store, strategy analysis.ForecastStrategy, sink metrics.Sink, log logger.Logger) *Controller {
	if strategy == nil {
		strategy = analysis.NewHourlyForecaster()
	}
	return &Controller{store: store, strategy: strategy, sink: metrics.OrNop(sink), log: logger.OrNop(log), now: time.Now}
}

// WeatherFactor converts an observation into a forecast multiplier. A nil
// observation yields 1.
func WeatherFactor(w *model.WeatherData) float64 {
	if w == nil {
		return 1.0
	}
	return w.Temperature / ReferenceTemperature
}

// Create forecasts the load of objectID and appends it to the history.
// The strategy receives the readings of every sensor over the last week.
func (c *Controller) Create(objectID string, weather *model.WeatherData) model.LoadForecast {
	now := c.now()
	history := c.store.History(now.Add(-HistoryWindow), now)
	fctx := analysis.ForecastContext{ObjectID: objectID}
	if weather != nil {
		fctx.WeatherFactor = analysis.Factor(WeatherFactor(weather))
	}
	f := c.strategy.Forecast(history, fctx)
	c.store.AddForecast(f)
	if rec, ok := c.sink.(metrics.ForecastRecorder); ok {
		if err := rec.RecordForecast(f); err != nil {
			c.log.Errorf("forecast metrics error: %v", err)
		}
	}
	c.log.Debugw("forecast created", map[string]any{
		"object_id":      f.ObjectID,
		"predicted_load": f.PredictedLoad,
		"confidence":     f.Confidence,
		"readings":       len(history),
	})
	return f
}

// Latest returns the most recent forecast of objectID.
func (c *Controller) Latest(objectID string) (model.LoadForecast, bool) {
	return c.store.LatestForecast(objectID)
}

// History returns every forecast of objectID in creation order.
func (c *Controller) History(objectID string) []model.LoadForecast {
	return c.store.Forecasts(objectID)
}
