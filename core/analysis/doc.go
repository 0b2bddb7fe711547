// Package analysis provides the pure strategies applied to a window of sensor
// readings: threshold based anomaly detection and hourly load forecasting.
// Strategies keep no state between calls.
package analysis
