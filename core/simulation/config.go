package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/gridmon/core/model"
)

// Range bounds a generated sensor value.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 { return (r.Min + r.Max) / 2 }

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Config holds the simulation parameters.
type Config struct {
	IntervalSeconds    int                        `json:"interval_seconds"`
	AnomalyProbability float64                    `json:"anomaly_probability"`
	Ranges             map[model.SensorKind]Range `json:"ranges"`
	// Noise is the maximum relative deviation from the baseline.
	Noise float64 `json:"noise"`
}

// Kinds lists the channels generated for each object, in order.
var Kinds = []model.SensorKind{model.SensorPower, model.SensorVoltage, model.SensorCurrent}

// DefaultRanges returns the stock value ranges.
func DefaultRanges() map[model.SensorKind]Range {
	return map[model.SensorKind]Range{
		model.SensorPower:   {Min: 100, Max: 1000},
		model.SensorVoltage: {Min: 210, Max: 240},
		model.SensorCurrent: {Min: 10, Max: 100},
	}
}

// DefaultConfig returns the stock simulation parameters.
func DefaultConfig() Config {
	c := Config{AnomalyProbability: 0.1}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields. A zero AnomalyProbability is left as is so
// test anomalies can be disabled.
func (c *Config) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 5
	}
	if c.Noise == 0 {
		c.Noise = 0.1
	}
	c.fillRanges()
}

func (c *Config) fillRanges() {
	if c.Ranges == nil {
		c.Ranges = make(map[model.SensorKind]Range)
	}
	for k, r := range DefaultRanges() {
		if _, ok := c.Ranges[k]; !ok {
			c.Ranges[k] = r
		}
	}
}

// Validate checks the parameters.
func (c Config) Validate() error {
	if c.IntervalSeconds <= 0 {
		return errors.New("interval_seconds must be positive")
	}
	if c.AnomalyProbability < 0 || c.AnomalyProbability > 1 {
		return fmt.Errorf("anomaly_probability %.2f out of [0,1]", c.AnomalyProbability)
	}
	if c.Noise < 0 || c.Noise >= 1 {
		return fmt.Errorf("noise %.2f out of [0,1)", c.Noise)
	}
	for _, k := range Kinds {
		r, ok := c.Ranges[k]
		if !ok {
			return fmt.Errorf("missing range for %s", k)
		}
		if r.Min > r.Max {
			return fmt.Errorf("range for %s: min %.2f above max %.2f", k, r.Min, r.Max)
		}
	}
	return nil
}

// Interval returns the tick period.
func (c Config) Interval() time.Duration { return time.Duration(c.IntervalSeconds) * time.Second }
