// Package config loads satpg's run configuration, mirroring
// jhkimqd-chaos-utils/pkg/config/config.go's shape: a struct tree tagged for
// YAML, a DefaultConfig constructor, and a Load that falls back to defaults
// when no file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is satpg's top-level run configuration.
type Config struct {
	Sim     SimConfig     `yaml:"sim"`
	Dtpg    DtpgConfig    `yaml:"dtpg"`
	Rtpg    RtpgConfig    `yaml:"rtpg"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SimConfig configures the fault simulator.
type SimConfig struct {
	// WordWidth documents the packed-word lane count; the simulator always
	// uses pbit.Width (64) lanes per word (see DESIGN.md's Open Question
	// decision) — this field exists so a config file can record intent
	// without the simulator reading it as a knob.
	WordWidth     int `yaml:"word_width"`
	PatternBudget int `yaml:"pattern_budget"`
	WSALimit      int `yaml:"wsa_limit"`
}

// DtpgConfig configures the SAT-based DTPG engines.
type DtpgConfig struct {
	SolverTimeout time.Duration `yaml:"solver_timeout"`
	BacktraceMode string        `yaml:"backtrace_mode"` // simple | just1 | just2
	Engine        string        `yaml:"engine"`         // single | ffr | mffc
}

// RtpgConfig configures the random-test-pattern-generation loops.
type RtpgConfig struct {
	PatternBudget int     `yaml:"pattern_budget"`
	MinF          int     `yaml:"min_f"`
	MaxI          int     `yaml:"max_i"`
	Variant       string  `yaml:"variant"` // plain | wsa | wsa-p2
	WSALimit      float64 `yaml:"wsa_limit"`
}

// LoggingConfig configures internal/logx.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures internal/metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns the configuration satpg runs with when no config
// file is found, following the teacher pack's DefaultConfig idiom.
func DefaultConfig() *Config {
	return &Config{
		Sim: SimConfig{
			WordWidth:     64,
			PatternBudget: 10000,
			WSALimit:      0,
		},
		Dtpg: DtpgConfig{
			SolverTimeout: 10 * time.Second,
			BacktraceMode: "just1",
			Engine:        "ffr",
		},
		Rtpg: RtpgConfig{
			PatternBudget: 1000,
			MinF:          1,
			MaxI:          32,
			Variant:       "plain",
			WSALimit:      0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "satpg",
		},
	}
}

// Load reads path as YAML into a Config seeded from DefaultConfig, the way
// chaos-utils's config.Load does: defaults first, then overridden by
// whatever the file sets, falling back to pure defaults when path is empty
// or the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the rest of the toolkit
// requires to be sane before a session starts.
func (c *Config) Validate() error {
	if c.Dtpg.Engine != "single" && c.Dtpg.Engine != "ffr" && c.Dtpg.Engine != "mffc" {
		return fmt.Errorf("dtpg.engine must be single, ffr, or mffc, got %q", c.Dtpg.Engine)
	}
	if c.Dtpg.BacktraceMode != "simple" && c.Dtpg.BacktraceMode != "just1" && c.Dtpg.BacktraceMode != "just2" {
		return fmt.Errorf("dtpg.backtrace_mode must be simple, just1, or just2, got %q", c.Dtpg.BacktraceMode)
	}
	if c.Rtpg.PatternBudget < 0 {
		return fmt.Errorf("rtpg.pattern_budget must be non-negative")
	}
	return nil
}
