// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Fitter is the slice of the recommendation engine the refresher needs.
type Fitter interface {
	Fit(ctx context.Context, tenantID string) error
}

// RefresherConfig holds configuration for the model refresher.
type RefresherConfig struct {
	// FitOnStartup triggers a fit as soon as the service starts.
	FitOnStartup bool

	// RefitInterval is how often to rebuild the models.
	RefitInterval time.Duration

	// TenantID scopes every fit. Empty means all tenants.
	TenantID string

	// FitTimeout bounds a single fit cycle.
	FitTimeout time.Duration
}

// Refresher periodically refits the recommendation models so they track
// new enrollments, completions and assessment results. It implements
// suture.Service.
type Refresher struct {
	engine Fitter
	config RefresherConfig
	logger zerolog.Logger
	name   string
}

// NewRefresher creates a model refresher service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefresher(engine Fitter, cfg RefresherConfig, logger zerolog.Logger) *Refresher {
	if cfg.RefitInterval <= 0 {
		cfg.RefitInterval = 24 * time.Hour
	}
	if cfg.FitTimeout <= 0 {
		cfg.FitTimeout = 30 * time.Minute
	}
	return &Refresher{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "refresher").Logger(),
		name:   "model-refresher",
	}
}

// Serve implements the suture.Service interface. It runs the refit loop
// until the context is canceled.
func (s *Refresher) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("fit_on_startup", s.config.FitOnStartup).
		Dur("refit_interval", s.config.RefitInterval).
		Msg("model refresher starting")

	if s.config.FitOnStartup {
		if err := s.fit(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup fit failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.RefitInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("model refresher shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.fit(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled fit failed")
			}
		}
	}
}

// fit runs one fit cycle with its own timeout so a stuck provider
// cannot wedge the loop.
func (s *Refresher) fit(ctx context.Context) error {
	fitCtx, cancel := context.WithTimeout(ctx, s.config.FitTimeout)
	defer cancel()

	start := time.Now()
	if err := s.engine.Fit(fitCtx, s.config.TenantID); err != nil {
		return err
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("model fit complete")
	return nil
}

// String returns the service name for supervisor logging.
func (s *Refresher) String() string {
	return s.name
}
