// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package config

import (
	"fmt"
	"time"

	"github.com/pathwise/pathwise/internal/recommend"
)

// Config is the root service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Engine  EngineConfig  `koanf:"engine"`
	Demo    DemoConfig    `koanf:"demo"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`

	// CORSOrigins is the allowed origin list. "*" allows all.
	CORSOrigins []string `koanf:"cors_origins"`
}

// EngineConfig tunes the recommendation engines. Zero values fall back to
// the engine defaults.
type EngineConfig struct {
	// RefitInterval is how often the background refresher rebuilds the
	// models. It also bounds model staleness for inline refits.
	RefitInterval time.Duration `koanf:"refit_interval"`

	// FitOnStartup fits the models before the server accepts traffic.
	FitOnStartup bool `koanf:"fit_on_startup"`

	// TenantID scopes fitting to one tenant. Empty fits everything.
	TenantID string `koanf:"tenant_id"`

	MinInteractions     int     `koanf:"min_interactions"`
	Factors             int     `koanf:"factors"`
	MinCourses          int     `koanf:"min_courses"`
	EngagementThreshold float64 `koanf:"engagement_threshold"`
	RiskThreshold       float64 `koanf:"risk_threshold"`
	MaxSequenceModules  int     `koanf:"max_sequence_modules"`
}

// DemoConfig controls the built-in demo dataset.
type DemoConfig struct {
	// Seed loads a small synthetic learning dataset on startup. Intended
	// for local evaluation only.
	Seed bool `koanf:"seed"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Recommend maps the engine tuning overlay onto the engine defaults.
func (c *Config) Recommend() recommend.Config {
	cfg := recommend.DefaultConfig()
	if c.Engine.RefitInterval > 0 {
		cfg.MaxModelAge = c.Engine.RefitInterval
	}
	if c.Engine.MinInteractions > 0 {
		cfg.Collaborative.MinInteractions = c.Engine.MinInteractions
	}
	if c.Engine.Factors > 0 {
		cfg.Collaborative.Factors = c.Engine.Factors
	}
	if c.Engine.MinCourses > 0 {
		cfg.Content.MinCourses = c.Engine.MinCourses
	}
	if c.Engine.EngagementThreshold > 0 {
		cfg.Content.EngagementThreshold = c.Engine.EngagementThreshold
	}
	if c.Engine.RiskThreshold > 0 {
		cfg.Risk.Threshold = c.Engine.RiskThreshold
	}
	if c.Engine.MaxSequenceModules > 0 {
		cfg.Sequence.MaxModules = c.Engine.MaxSequenceModules
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.RefitInterval < 0 {
		return fmt.Errorf("engine.refit_interval must not be negative, got %s", c.Engine.RefitInterval)
	}
	if c.Engine.RiskThreshold < 0 || c.Engine.RiskThreshold > 1 {
		return fmt.Errorf("engine.risk_threshold must be in [0,1], got %f", c.Engine.RiskThreshold)
	}
	// The full engine invariants are enforced by the engine itself.
	cfg := c.Recommend()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("engine configuration: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
