// Package config loads the gridmon configuration from a yaml or json file
// with GM_ prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gridmon/core/alert"
	"github.com/kilianp07/gridmon/core/metrics"
	"github.com/kilianp07/gridmon/core/monitor"
	"github.com/kilianp07/gridmon/core/simulation"
	"github.com/kilianp07/gridmon/infra/mqtt"
)

// EnvPrefix prefixes environment overrides, e.g. GM_SIMULATION__INTERVAL_SECONDS.
const EnvPrefix = "GM_"

var errSampleRate = errors.New("sentry sample rates must be within [0,1]")

// MonitorConfig controls the monitoring controller.
type MonitorConfig struct {
	AutoStart           bool    `json:"auto_start"`
	BottleneckThreshold float64 `json:"bottleneck_threshold"`
	// AlertRecipient receives alerts raised by the simulation driver.
	AlertRecipient string `json:"alert_recipient"`
}

// SetDefaults applies sane defaults.
func (c *MonitorConfig) SetDefaults() {
	if c.BottleneckThreshold <= 0 {
		c.BottleneckThreshold = monitor.DefaultBottleneckThreshold
	}
	if c.AlertRecipient == "" {
		c.AlertRecipient = alert.RecipientAllDispatchers
	}
}

// APIConfig controls the HTTP interface.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

type Config struct {
	Simulation simulation.Config `json:"simulation"`
	Monitor    MonitorConfig     `json:"monitor"`
	Metrics    metrics.Config    `json:"metrics"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Journal    JournalConfig     `json:"journal"`
	Sentry     SentryConfig      `json:"sentry"`
	API        APIConfig         `json:"api"`
	// SeedFile is a yaml network description. The built-in network is used
	// when empty.
	SeedFile string `json:"seed_file"`
}

// Default returns the values that file and environment settings are layered
// on. Load completes it with SetDefaults.
func Default() Config {
	cfg := Config{
		Simulation: simulation.DefaultConfig(),
		Monitor:    MonitorConfig{AutoStart: true},
		API:        APIConfig{Enabled: true, Addr: ":8080"},
	}
	return cfg
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Monitor.SetDefaults()
	c.MQTT.SetDefaults()
	c.Journal.SetDefaults()
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.Monitor.BottleneckThreshold > 100 {
		return fmt.Errorf("monitor: bottleneck_threshold %.1f exceeds 100", c.Monitor.BottleneckThreshold)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Journal.Validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads the file at path on top of Default and applies environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
