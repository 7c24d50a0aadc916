// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"fmt"
	"time"
)

// Config holds engine tuning parameters. The timer intervals are consumed by
// the supervisor services, not by the engine itself; the engine only exposes
// tick methods so tests can drive time directly.
type Config struct {
	// ContextRefreshInterval is how often time-derived context is recomputed.
	ContextRefreshInterval time.Duration `koanf:"context_refresh_interval"`

	// WeatherRefreshInterval is how often the weather lookup runs.
	WeatherRefreshInterval time.Duration `koanf:"weather_refresh_interval"`

	// ProcessInterval is the learning queue drain cadence.
	ProcessInterval time.Duration `koanf:"process_interval"`

	// SaveInterval is the rule persistence cadence. Saving on a timer rather
	// than on every mutation bounds write amplification; an abrupt exit may
	// lose up to one interval of learning.
	SaveInterval time.Duration `koanf:"save_interval"`

	// MaxQueue caps the learning queue. Events past the cap are dropped with
	// a warning; learning loss is tolerated, blocking the caller is not.
	MaxQueue int `koanf:"max_queue"`

	// CriticalPerSecond rate-limits the synchronous critical-event path.
	// Events past the limit fall back to the periodic batch.
	CriticalPerSecond float64 `koanf:"critical_per_second"`

	// CriticalBurst is the burst allowance for the critical path.
	CriticalBurst int `koanf:"critical_burst"`

	// IsMobile marks the device class, detected once at startup.
	IsMobile bool `koanf:"is_mobile"`
}

// DefaultConfig returns the reference cadences.
func DefaultConfig() Config {
	return Config{
		ContextRefreshInterval: 60 * time.Second,
		WeatherRefreshInterval: 10 * time.Minute,
		ProcessInterval:        5 * time.Second,
		SaveInterval:           60 * time.Second,
		MaxQueue:               10000,
		CriticalPerSecond:      20,
		CriticalBurst:          40,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.ContextRefreshInterval <= 0 {
		return fmt.Errorf("context_refresh_interval must be positive, got %s", c.ContextRefreshInterval)
	}
	if c.WeatherRefreshInterval <= 0 {
		return fmt.Errorf("weather_refresh_interval must be positive, got %s", c.WeatherRefreshInterval)
	}
	if c.ProcessInterval <= 0 {
		return fmt.Errorf("process_interval must be positive, got %s", c.ProcessInterval)
	}
	if c.SaveInterval <= 0 {
		return fmt.Errorf("save_interval must be positive, got %s", c.SaveInterval)
	}
	if c.MaxQueue <= 0 {
		return fmt.Errorf("max_queue must be positive, got %d", c.MaxQueue)
	}
	if c.CriticalPerSecond <= 0 {
		return fmt.Errorf("critical_per_second must be positive, got %f", c.CriticalPerSecond)
	}
	if c.CriticalBurst <= 0 {
		return fmt.Errorf("critical_burst must be positive, got %d", c.CriticalBurst)
	}
	return nil
}

// Clock supplies the current time. Injected so tests can pin time-of-day
// and season buckets deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a Clock pinned to a settable instant, for tests.
type FixedClock struct {
	Time time.Time
}

// Now returns the pinned instant.
func (c *FixedClock) Now() time.Time { return c.Time }
