// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

// Package config provides layered configuration for the adaptd daemon.
//
// Configuration is loaded with Koanf v2 in precedence order:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or ADAPT_CONFIG_PATH)
//  3. ADAPT_-prefixed environment variables
//
// Environment variable names map to nested keys with a double underscore as
// the section separator: ADAPT_SERVER__ADDR -> server.addr,
// ADAPT_ENGINE__PROCESS_INTERVAL -> engine.process_interval.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wanderkit/adapt/internal/adapt"
)

// Config is the full daemon configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Storage StorageConfig `koanf:"storage"`
	Engine  adapt.Config  `koanf:"engine"`
	Weather WeatherConfig `koanf:"weather"`
}

// ServerConfig holds the diagnostics/ingest HTTP surface settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=1"`
	RateWindow      time.Duration `koanf:"rate_window"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// StorageConfig holds rule persistence settings.
type StorageConfig struct {
	// Enabled turns durable rule persistence on. When false the engine is
	// memory-only and learning is lost on restart.
	Enabled bool `koanf:"enabled"`

	// Path is the BadgerDB directory.
	Path string `koanf:"path"`
}

// WeatherConfig selects the weather provider.
type WeatherConfig struct {
	// Simulated uses the random stand-in provider. A real deployment points
	// the engine at an actual weather service instead.
	Simulated bool `koanf:"simulated"`

	// Seed seeds the simulated provider; 0 means time-seeded.
	Seed int64 `koanf:"seed"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8642",
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateWindow:      time.Minute,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    "/data/adapt",
		},
		Engine: adapt.DefaultConfig(),
		Weather: WeatherConfig{
			Simulated: true,
		},
	}
}

// Validate checks the configuration, combining struct tags with the engine's
// own validation.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("storage.path required when storage is enabled")
	}
	return nil
}
