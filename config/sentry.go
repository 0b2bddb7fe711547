package config

// SentryConfig configures error reporting. Reporting is off while DSN is
// empty.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// ErrorSampleRate keeps a share of error events; 0 means all of them.
	ErrorSampleRate  float64 `json:"error_sample_rate"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
}

// Enabled reports whether a DSN is configured.
func (c SentryConfig) Enabled() bool { return c.DSN != "" }

func (c SentryConfig) Validate() error {
	for _, r := range []float64{c.ErrorSampleRate, c.TracesSampleRate} {
		if r < 0 || r > 1 {
			return errSampleRate
		}
	}
	return nil
}
