// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/wanderkit/adapt/internal/metrics"
)

// Weather is a single weather observation.
type Weather struct {
	Condition   string  `json:"condition"`
	Temperature float64 `json:"temperature"`
}

// WeatherProvider supplies the current weather. The engine treats weather as
// best-effort: any error leaves the context at "unknown".
type WeatherProvider interface {
	Current(ctx context.Context) (Weather, error)
}

// TimeOfDayFor buckets an hour of day.
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// SeasonFor buckets a month.
func SeasonFor(month time.Month) Season {
	switch {
	case month >= time.February && month <= time.April:
		return Spring
	case month >= time.May && month <= time.July:
		return Summer
	case month >= time.August && month <= time.October:
		return Autumn
	default:
		return Winter
	}
}

// ContextMonitor maintains the shared environmental context read by every
// other component. Safe for concurrent readers.
type ContextMonitor struct {
	mu      sync.RWMutex
	current ContextSnapshot

	clock   Clock
	weather WeatherProvider
	logger  zerolog.Logger
}

// NewContextMonitor creates a monitor with the device class set once at
// startup and an initial time-context refresh applied.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContextMonitor(clock Clock, weather WeatherProvider, isMobile bool, logger zerolog.Logger) *ContextMonitor {
	m := &ContextMonitor{
		clock:   clock,
		weather: weather,
		logger:  logger.With().Str("component", "context").Logger(),
	}
	m.current.IsMobile = isMobile
	m.current.Weather = WeatherUnknown
	m.RefreshTime()
	return m
}

// Snapshot returns the current context by value.
func (m *ContextMonitor) Snapshot() ContextSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// RefreshTime recomputes the time-derived context factors. Called on a fixed
// timer by the context service.
func (m *ContextMonitor) RefreshTime() {
	now := m.clock.Now()
	day := now.Weekday()

	m.mu.Lock()
	m.current.TimeOfDay = TimeOfDayFor(now.Hour())
	m.current.DayOfWeek = strings.ToLower(day.String())
	m.current.Season = SeasonFor(now.Month())
	m.current.IsWeekend = day == time.Saturday || day == time.Sunday
	m.mu.Unlock()
}

// RefreshWeather runs the weather lookup and stores the result. Failures are
// absorbed: the weather field falls back to "unknown".
func (m *ContextMonitor) RefreshWeather(ctx context.Context) {
	w, err := m.weather.Current(ctx)
	if err != nil {
		metrics.WeatherLookupFailures.Inc()
		m.logger.Warn().Err(err).Msg("weather lookup failed, context degrades to unknown")
		m.mu.Lock()
		m.current.Weather = WeatherUnknown
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	m.current.Weather = w.Condition
	m.current.Temperature = w.Temperature
	m.mu.Unlock()
}

// simulatedConditions are the draw set for the stand-in weather provider.
var simulatedConditions = []string{"sunny", "cloudy", "rainy", "windy", "snowy"}

// SimulatedWeather is a stand-in provider that draws random conditions. A
// real deployment replaces this with an actual weather service behind the
// same interface.
type SimulatedWeather struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedWeather creates a seeded simulated provider.
func NewSimulatedWeather(seed int64) *SimulatedWeather {
	return &SimulatedWeather{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // simulation only
	}
}

// Current returns a random weather observation.
func (s *SimulatedWeather) Current(_ context.Context) (Weather, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Weather{
		Condition:   simulatedConditions[s.rng.Intn(len(simulatedConditions))],
		Temperature: 5 + s.rng.Float64()*25,
	}, nil
}

// StaticWeather always returns the same observation, for tests.
type StaticWeather struct {
	Weather Weather
	Err     error
}

// Current returns the configured observation or error.
func (s *StaticWeather) Current(_ context.Context) (Weather, error) {
	return s.Weather, s.Err
}

// BreakerWeather wraps a provider with a circuit breaker so a flapping
// upstream stops being polled until it recovers. While the breaker is open
// every lookup fails fast and the context stays at "unknown".
type BreakerWeather struct {
	provider WeatherProvider
	breaker  *gobreaker.CircuitBreaker[Weather]
}

// NewBreakerWeather wraps a weather provider with circuit breaker protection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerWeather(provider WeatherProvider, logger zerolog.Logger) *BreakerWeather {
	log := logger.With().Str("component", "weather").Logger()

	settings := gobreaker.Settings{
		Name:        "weather",
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     15 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("weather breaker state change")
		},
	}

	return &BreakerWeather{
		provider: provider,
		breaker:  gobreaker.NewCircuitBreaker[Weather](settings),
	}
}

// Current runs the wrapped lookup through the breaker.
func (b *BreakerWeather) Current(ctx context.Context) (Weather, error) {
	return b.breaker.Execute(func() (Weather, error) {
		return b.provider.Current(ctx)
	})
}
