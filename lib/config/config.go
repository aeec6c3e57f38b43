// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned by Load when MONOTIME_CONFIG is unset.
var ErrNoConfig = errors.New("MONOTIME_CONFIG environment variable not set")

// Environment identifies the deployment type.
type Environment string

const (
	// Development is for local machines and tests.
	Development Environment = "development"
	// Production is for deployed services.
	Production Environment = "production"
)

// Source kinds.
const (
	SourceSystem = "system"
	SourceNTP    = "ntp"
)

// Probe output formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Config is the master configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Upkeep configures the recent-time refresh loop.
	Upkeep UpkeepConfig `yaml:"upkeep"`

	// Source selects the clock source.
	Source SourceConfig `yaml:"source"`

	// Probe configures monotime-probe sampling and output.
	Probe ProbeConfig `yaml:"probe"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections that can be overridden per
// environment. Zero fields within a present section are ignored.
type ConfigOverrides struct {
	Upkeep  *UpkeepConfig  `yaml:"upkeep,omitempty"`
	Source  *SourceConfig  `yaml:"source,omitempty"`
	Probe   *ProbeConfig   `yaml:"probe,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// UpkeepConfig configures the refresh loop.
type UpkeepConfig struct {
	// Interval between cache refreshes.
	// Default: 1ms (development), 10ms (production)
	Interval time.Duration `yaml:"interval"`
}

// SourceConfig selects and configures the clock source.
type SourceConfig struct {
	// Kind is "system" or "ntp".
	// Default: system
	Kind string `yaml:"kind"`

	// NTP configures the NTP-corrected source. Only read when Kind is "ntp".
	NTP NTPConfig `yaml:"ntp"`
}

// NTPConfig configures NTP offset correction.
type NTPConfig struct {
	// Server is the NTP server address.
	// Default: pool.ntp.org
	Server string `yaml:"server"`

	// Timeout bounds each query.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	// SyncInterval is how often the offset is re-measured. Zero
	// measures once at startup only.
	// Default: 5m
	SyncInterval time.Duration `yaml:"sync_interval"`
}

// ProbeConfig configures sampling.
type ProbeConfig struct {
	// Samples is how many readings to take.
	// Default: 10
	Samples int `yaml:"samples"`

	// Rate is the maximum number of samples per second.
	// Default: 100
	Rate float64 `yaml:"rate"`

	// Format is "auto", "text", "json", or "cbor".
	// Default: auto
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address for the /metrics endpoint. Empty disables it.
	Listen string `yaml:"listen"`
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Upkeep: UpkeepConfig{
			Interval: time.Millisecond,
		},
		Source: SourceConfig{
			Kind: SourceSystem,
			NTP: NTPConfig{
				Server:       "pool.ntp.org",
				Timeout:      5 * time.Second,
				SyncInterval: 5 * time.Minute,
			},
		},
		Probe: ProbeConfig{
			Samples: 10,
			Rate:    100,
			Format:  FormatAuto,
		},
	}
}

// defaultsFor returns Default adjusted for env. Production refreshes
// the recent-time cache every 10ms instead of every 1ms. Unknown
// environments get Default and are rejected by Validate.
func defaultsFor(env Environment) *Config {
	cfg := Default()
	if env == Production {
		cfg.Environment = Production
		cfg.Upkeep.Interval = 10 * time.Millisecond
	}
	return cfg
}

// Load loads the file named by MONOTIME_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv("MONOTIME_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("%w; set it to the path of a monotime.yaml file, or use --config", ErrNoConfig)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of Default, applies the
// environment's overrides, expands variables, and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// The environment picks the base defaults, so it is read before
	// the full decode lays the file on top of them.
	var header struct {
		Environment Environment `yaml:"environment"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg := defaultsFor(header.Environment)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Upkeep != nil && overrides.Upkeep.Interval != 0 {
		c.Upkeep.Interval = overrides.Upkeep.Interval
	}

	if overrides.Source != nil {
		if overrides.Source.Kind != "" {
			c.Source.Kind = overrides.Source.Kind
		}
		if overrides.Source.NTP.Server != "" {
			c.Source.NTP.Server = overrides.Source.NTP.Server
		}
		if overrides.Source.NTP.Timeout != 0 {
			c.Source.NTP.Timeout = overrides.Source.NTP.Timeout
		}
		if overrides.Source.NTP.SyncInterval != 0 {
			c.Source.NTP.SyncInterval = overrides.Source.NTP.SyncInterval
		}
	}

	if overrides.Probe != nil {
		if overrides.Probe.Samples != 0 {
			c.Probe.Samples = overrides.Probe.Samples
		}
		if overrides.Probe.Rate != 0 {
			c.Probe.Rate = overrides.Probe.Rate
		}
		if overrides.Probe.Format != "" {
			c.Probe.Format = overrides.Probe.Format
		}
	}

	if overrides.Metrics != nil && overrides.Metrics.Listen != "" {
		c.Metrics.Listen = overrides.Metrics.Listen
	}
}

func (c *Config) expandVariables() {
	c.Source.NTP.Server = expandVars(c.Source.NTP.Server)
	c.Metrics.Listen = expandVars(c.Metrics.Listen)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if c.Upkeep.Interval <= 0 {
		errs = append(errs, fmt.Errorf("upkeep.interval must be positive, got %v", c.Upkeep.Interval))
	}

	switch c.Source.Kind {
	case SourceSystem:
	case SourceNTP:
		if c.Source.NTP.Server == "" {
			errs = append(errs, fmt.Errorf("source.ntp.server is required when source.kind is ntp"))
		}
		if c.Source.NTP.Timeout < 0 {
			errs = append(errs, fmt.Errorf("source.ntp.timeout must not be negative"))
		}
		if c.Source.NTP.SyncInterval < 0 {
			errs = append(errs, fmt.Errorf("source.ntp.sync_interval must not be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid source.kind: %q (want system or ntp)", c.Source.Kind))
	}

	if c.Probe.Samples <= 0 {
		errs = append(errs, fmt.Errorf("probe.samples must be positive, got %d", c.Probe.Samples))
	}
	if c.Probe.Rate <= 0 {
		errs = append(errs, fmt.Errorf("probe.rate must be positive, got %v", c.Probe.Rate))
	}
	switch c.Probe.Format {
	case FormatAuto, FormatText, FormatJSON, FormatCBOR:
	default:
		errs = append(errs, fmt.Errorf("invalid probe.format: %q", c.Probe.Format))
	}

	return errors.Join(errs...)
}
