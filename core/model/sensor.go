package model

import (
	"strings"
	"time"
)

// SensorKind is the measured quantity of a logical sensor.
type SensorKind string

const (
	SensorPower       SensorKind = "power"
	SensorVoltage     SensorKind = "voltage"
	SensorCurrent     SensorKind = "current"
	SensorTemperature SensorKind = "temperature"
	SensorConsumption SensorKind = "consumption"
)

// Unit returns the measurement unit for the kind.
func (k SensorKind) Unit() string {
	switch k {
	case SensorPower, SensorConsumption:
		return "kW"
	case SensorVoltage:
		return "V"
	case SensorCurrent:
		return "A"
	case SensorTemperature:
		return "C"
	default:
		return ""
	}
}

// SensorID builds the logical sensor identifier of an object channel.
func SensorID(objectID string, kind SensorKind) string {
	return objectID + "_" + string(kind)
}

// SensorData is an immutable timestamped reading.
type SensorData struct {
	ID        string    `json:"data_id"`
	SensorID  string    `json:"sensor_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// Kind extracts the sensor kind from the sensor id suffix.
func (d SensorData) Kind() SensorKind {
	i := strings.LastIndex(d.SensorID, "_")
	if i < 0 {
		return ""
	}
	return SensorKind(d.SensorID[i+1:])
}

// ObjectID extracts the owning object id from the sensor id.
func (d SensorData) ObjectID() string {
	i := strings.LastIndex(d.SensorID, "_")
	if i < 0 {
		return d.SensorID
	}
	return d.SensorID[:i]
}

// WeatherData is an external weather observation used by forecasting.
type WeatherData struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	WindSpeed   float64   `json:"wind_speed"`
	Humidity    float64   `json:"humidity"`
	Conditions  string    `json:"conditions"`
}
