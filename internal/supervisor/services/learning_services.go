// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

// Package services provides Suture service wrappers around the engine's
// tick methods. Each timer concern is its own service so the supervisor
// restarts them independently.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Engine is the slice of the adaptation engine the timer services drive.
// Declared here so the services package does not import the engine package.
type Engine interface {
	ProcessQueue()
	RefreshContext()
	RefreshWeather(ctx context.Context)
	SaveRules(ctx context.Context)
}

// ContextService refreshes time-derived context and the best-effort weather
// lookup on their configured cadences.
type ContextService struct {
	engine          Engine
	refreshInterval time.Duration
	weatherInterval time.Duration
	logger          zerolog.Logger
}

// NewContextService creates the context refresh service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContextService(engine Engine, refreshInterval, weatherInterval time.Duration, logger zerolog.Logger) *ContextService {
	return &ContextService{
		engine:          engine,
		refreshInterval: refreshInterval,
		weatherInterval: weatherInterval,
		logger:          logger.With().Str("service", "context").Logger(),
	}
}

// Serve implements suture.Service.
func (s *ContextService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("refresh_interval", s.refreshInterval).
		Dur("weather_interval", s.weatherInterval).
		Msg("context service running")

	// Weather is populated once at startup; the refresh timers take over
	// from there.
	s.engine.RefreshWeather(ctx)

	refresh := time.NewTicker(s.refreshInterval)
	defer refresh.Stop()
	weather := time.NewTicker(s.weatherInterval)
	defer weather.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("context service shutting down")
			return ctx.Err()
		case <-refresh.C:
			s.engine.RefreshContext()
		case <-weather.C:
			s.engine.RefreshWeather(ctx)
		}
	}
}

// String returns the service name for supervisor logging.
func (s *ContextService) String() string { return "context-service" }

// LearnerService drains the learning queue on a fixed cadence. The engine's
// own re-entrancy flag makes an overlapping tick a no-op.
type LearnerService struct {
	engine   Engine
	interval time.Duration
	logger   zerolog.Logger
}

// NewLearnerService creates the queue drain service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLearnerService(engine Engine, interval time.Duration, logger zerolog.Logger) *LearnerService {
	return &LearnerService{
		engine:   engine,
		interval: interval,
		logger:   logger.With().Str("service", "learner").Logger(),
	}
}

// Serve implements suture.Service.
func (s *LearnerService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("learner service running")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Drain whatever is queued before going down.
			s.engine.ProcessQueue()
			s.logger.Info().Msg("learner service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.engine.ProcessQueue()
		}
	}
}

// String returns the service name for supervisor logging.
func (s *LearnerService) String() string { return "learner-service" }

// PersistService saves the rule table on a fixed cadence. Saving on a timer
// bounds write amplification; an abrupt exit loses at most one interval.
type PersistService struct {
	engine   Engine
	interval time.Duration
	logger   zerolog.Logger
}

// NewPersistService creates the persistence service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPersistService(engine Engine, interval time.Duration, logger zerolog.Logger) *PersistService {
	return &PersistService{
		engine:   engine,
		interval: interval,
		logger:   logger.With().Str("service", "persist").Logger(),
	}
}

// Serve implements suture.Service.
func (s *PersistService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("persist service running")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.engine.SaveRules(context.WithoutCancel(ctx))
			s.logger.Info().Msg("persist service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.engine.SaveRules(ctx)
		}
	}
}

// String returns the service name for supervisor logging.
func (s *PersistService) String() string { return "persist-service" }
