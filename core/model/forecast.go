package model

import "time"

// LoadForecast is a predicted load for one object. Immutable once created.
type LoadForecast struct {
	ID            string    `json:"forecast_id"`
	ObjectID      string    `json:"object_id"`
	ForecastTime  time.Time `json:"forecast_time"`
	PredictedLoad float64   `json:"predicted_load"`
	Confidence    float64   `json:"confidence"`
	Period        string    `json:"forecast_period"`
	WeatherFactor float64   `json:"weather_factor"`
}
