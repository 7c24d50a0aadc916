// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

// Command adaptd runs the behavioral adaptation daemon: it tracks
// interaction events, learns personalization rules and serves adapted
// recommendation rankings over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wanderkit/adapt/internal/adapt"
	"github.com/wanderkit/adapt/internal/api"
	"github.com/wanderkit/adapt/internal/config"
	"github.com/wanderkit/adapt/internal/logging"
	"github.com/wanderkit/adapt/internal/storage"
	"github.com/wanderkit/adapt/internal/supervisor"
	"github.com/wanderkit/adapt/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("adaptd exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logger := logging.Logger()
	logger.Info().Str("addr", cfg.Server.Addr).Bool("storage", cfg.Storage.Enabled).Msg("starting adaptd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var persister adapt.RulePersister
	if cfg.Storage.Enabled {
		store, err := storage.OpenBadger(cfg.Storage.Path, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Msg("badger close failed")
			}
		}()
		persister = store
	}

	var weather adapt.WeatherProvider
	if cfg.Weather.Simulated {
		seed := cfg.Weather.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		weather = adapt.NewSimulatedWeather(seed)
	} else {
		// No real provider is plumbed in yet, so a disabled simulator
		// still means simulated data. Say so rather than falling back
		// quietly inside the engine.
		logger.Warn().Msg("weather.simulated is false but no external provider is configured, using simulated weather")
		weather = adapt.NewSimulatedWeather(time.Now().UnixNano())
	}
	weather = adapt.NewBreakerWeather(weather, logger)

	engine, err := adapt.NewEngine(cfg.Engine, adapt.SystemClock{}, weather, persister, logger)
	if err != nil {
		return err
	}

	engine.LoadRules(ctx)
	if err := engine.Start(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(engine, cfg.Server, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.Slog(logger), supervisor.DefaultTreeConfig())
	tree.AddLearningService(services.NewContextService(engine, cfg.Engine.ContextRefreshInterval, cfg.Engine.WeatherRefreshInterval, logger))
	tree.AddLearningService(services.NewLearnerService(engine, cfg.Engine.ProcessInterval, logger))
	if persister != nil {
		tree.AddDataService(services.NewPersistService(engine, cfg.Engine.SaveInterval, logger))
	}
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout, logger))

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := engine.Close(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("engine shutdown incomplete")
	}

	logger.Info().Msg("adaptd stopped")
	return nil
}
