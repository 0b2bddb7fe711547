package repository

import (
	"time"

	"github.com/kilianp07/gridmon/core/model"
)

// Store is the repository contract consumed by controllers.
type Store interface {
	ObjectStore
	ReadingStore
	AnomalyStore
	RecommendationStore
	ForecastStore
	ReportStore
}

// ObjectStore holds network objects.
type ObjectStore interface {
	AddObject(model.NetworkObject)
	Object(id string) (model.NetworkObject, bool)
	Objects() []model.NetworkObject
	// SetObjectStatus replaces the status and returns the previous one.
	SetObjectStatus(id string, status model.ObjectStatus) (model.ObjectStatus, bool)
	SetObjectLoad(id string, load float64) bool
}

// ReadingStore holds append-only sensor readings.
type ReadingStore interface {
	AddReading(model.SensorData)
	// Readings returns readings of one sensor with start <= ts <= end in
	// insertion order.
	Readings(sensorID string, start, end time.Time) []model.SensorData
	// History returns readings of every sensor inside the window.
	History(start, end time.Time) []model.SensorData
}

// AnomalyStore holds anomalies.
type AnomalyStore interface {
	AddAnomaly(model.Anomaly)
	Anomaly(id string) (model.Anomaly, bool)
	Anomalies() []model.Anomaly
	ActiveAnomalies() []model.Anomaly
	AnomaliesBetween(start, end time.Time) []model.Anomaly
	SetAnomalyStatus(id string, status model.AnomalyStatus) bool
}

// RecommendationStore holds recommendations.
type RecommendationStore interface {
	AddRecommendation(model.Recommendation)
	Recommendation(id string) (model.Recommendation, bool)
	Recommendations() []model.Recommendation
	PendingRecommendations() []model.Recommendation
	// UpdateRecommendation applies fn atomically to the stored record.
	UpdateRecommendation(id string, fn func(*model.Recommendation)) bool
}

// ForecastStore holds the full forecast history.
type ForecastStore interface {
	AddForecast(model.LoadForecast)
	Forecasts(objectID string) []model.LoadForecast
	LatestForecast(objectID string) (model.LoadForecast, bool)
}

// ReportStore holds generated reports.
type ReportStore interface {
	AddReport(model.Report)
	Report(id string) (model.Report, bool)
	Reports() []model.Report
}

func inWindow(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}
