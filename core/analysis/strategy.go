package analysis

import "github.com/kilianp07/gridmon/core/model"

// DetectionContext describes the object a reading window belongs to.
type DetectionContext struct {
	ObjectID   string
	ObjectType model.ObjectType
	MaxLoad    float64
}

// ForecastContext parameterises a load forecast. A nil WeatherFactor means
// no weather data was supplied and counts as 1.0; a supplied 0 is kept.
type ForecastContext struct {
	ObjectID      string
	WeatherFactor *float64
}

// Factor returns a pointer suitable for ForecastContext.WeatherFactor.
func Factor(v float64) *float64 { return &v }

// AnomalyStrategy classifies a window of readings ordered oldest to newest.
type AnomalyStrategy interface {
	// Detect returns the anomaly raised by the window, if any.
	Detect(readings []model.SensorData, ctx DetectionContext) (model.Anomaly, bool)
}

// ForecastStrategy predicts the next load of an object.
type ForecastStrategy interface {
	Forecast(readings []model.SensorData, ctx ForecastContext) model.LoadForecast
}
