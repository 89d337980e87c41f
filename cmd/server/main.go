// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

// Package main is the entry point for the Pathwise server.
//
// Pathwise serves personalized learning recommendations for an LMS:
// hybrid course recommendations, skill-aware module suggestions,
// prerequisite-respecting learning sequences, and dropout risk scoring.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, config.yaml and
//     environment variables (Koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Snapshot provider: the interaction data source the engines read
//  4. Recommendation engine: collaborative, content, hybrid, module,
//     sequence and risk components
//  5. Supervisor tree: the model refresher and HTTP server as
//     restartable suture services
//
// Configuration (highest priority wins): environment variables, then
// the config file, then built-in defaults. Common variables:
//
//	HTTP_PORT=8080
//	LOG_LEVEL=info
//	ENGINE_REFIT_INTERVAL=24h
//	DEMO_SEED=true   # load the synthetic demo dataset
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests within the shutdown
// timeout, and stops the refresher loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathwise/pathwise/internal/api"
	"github.com/pathwise/pathwise/internal/config"
	"github.com/pathwise/pathwise/internal/logging"
	"github.com/pathwise/pathwise/internal/recommend"
	"github.com/pathwise/pathwise/internal/service"
	"github.com/pathwise/pathwise/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, so this uses the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Bool("demo_seed", cfg.Demo.Seed).
		Dur("refit_interval", cfg.Engine.RefitInterval).
		Msg("Starting Pathwise")

	watchConfig()

	provider := buildProvider(cfg)

	engine, err := recommend.New(cfg.Recommend(), provider, nil, logging.WithComponent("engine"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}

	handler := api.NewHandler(engine, cfg.Engine.TenantID)
	router := api.NewRouter(handler, api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := service.NewTree(service.DefaultTreeConfig(), logging.Logger())
	tree.Add(service.NewRefresher(engine, service.RefresherConfig{
		FitOnStartup:  cfg.Engine.FitOnStartup,
		RefitInterval: cfg.Engine.RefitInterval,
		TenantID:      cfg.Engine.TenantID,
	}, logging.Logger()))
	tree.Add(service.NewHTTPService(server, 10*time.Second))

	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	logging.Info().Msg("Pathwise stopped gracefully")
}

// watchConfig reloads the config file on change and applies the settings
// that are safe to change live. Currently that is the log level; server
// and engine settings require a restart.
func watchConfig() {
	path := config.FindConfigFile()
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func() {
		cfg, err := config.Load()
		if err != nil {
			logging.Warn().Err(err).Msg("Config reload failed, keeping current settings")
			return
		}
		logging.SetLevelString(cfg.Logging.Level)
		logging.Info().Str("level", cfg.Logging.Level).Msg("Configuration reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch unavailable")
		return
	}
	logging.Info().Str("path", path).Msg("Watching config file for changes")
}

// buildProvider selects the interaction snapshot source. Production
// deployments swap in a provider backed by the LMS datastore; the
// built-in options are an empty in-memory provider or the demo dataset.
func buildProvider(cfg *config.Config) snapshot.Provider {
	if cfg.Demo.Seed {
		logging.Info().Msg("Loading synthetic demo dataset (DEMO_SEED=true)")
		return snapshot.NewMemoryWith(snapshot.DemoData(time.Now().UTC()))
	}
	return snapshot.NewMemory()
}
