// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/metrics"
	"github.com/pathwise/pathwise/internal/snapshot"
)

// Engine aggregates the recommenders behind one dependency-injected
// facade. It owns fit scheduling concerns (staleness, refit deduplication);
// the individual engines own their models.
type Engine struct {
	cfg Config

	Collaborative *CollaborativeEngine
	Content       *ContentEngine
	Hybrid        *HybridBlender
	Risk          *RiskScorer
	Modules       *ModuleRecommender
	Sequence      *SequencePlanner

	logger zerolog.Logger

	// fitMu deduplicates concurrent refits: one fit runs, others skip.
	fitMu sync.Mutex
}

// New validates the configuration and wires all engines over the provider.
func New(cfg Config, p snapshot.Provider, checker snapshot.PrerequisiteChecker, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if checker == nil {
		checker = snapshot.NewGraphChecker(p)
	}

	collaborative := NewCollaborativeEngine(cfg, p, logger)
	content := NewContentEngine(cfg, p, logger)

	return &Engine{
		cfg:           cfg,
		Collaborative: collaborative,
		Content:       content,
		Hybrid:        NewHybridBlender(cfg, collaborative, content, p, logger),
		Risk:          NewRiskScorer(cfg, p, logger),
		Modules:       NewModuleRecommender(cfg, p, checker, logger),
		Sequence:      NewSequencePlanner(cfg, p, logger),
		logger:        logger.With().Str("component", "engine").Logger(),
	}, nil
}

// Fit rebuilds every fitted model from the current snapshot.
func (e *Engine) Fit(ctx context.Context, tenantID string) error {
	e.fitMu.Lock()
	defer e.fitMu.Unlock()
	return e.fitLocked(ctx, tenantID)
}

func (e *Engine) fitLocked(ctx context.Context, tenantID string) error {
	start := time.Now()
	err := e.Hybrid.Fit(ctx, tenantID)
	metrics.RecordFit("hybrid", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("fitting engines: %w", err)
	}
	e.logger.Info().
		Str("tenant", tenantID).
		Dur("duration", time.Since(start)).
		Msg("Engines fitted")
	return nil
}

// EnsureFresh refits when any model is stale. Concurrent callers do not
// stack up: whoever loses the race serves the previous snapshot, which is
// the reference "refit inline if stale" behavior without the stampede.
func (e *Engine) EnsureFresh(ctx context.Context, tenantID string) error {
	if !e.Hybrid.IsStale() {
		return nil
	}
	if !e.fitMu.TryLock() {
		return nil
	}
	defer e.fitMu.Unlock()
	if !e.Hybrid.IsStale() {
		return nil
	}
	return e.fitLocked(ctx, tenantID)
}

// RecommendCourses serves the blended course recommendations.
func (e *Engine) RecommendCourses(ctx context.Context, learnerID string, n int, excludeKnown bool) ([]Recommendation, error) {
	metrics.RecordServe("hybrid")
	return e.Hybrid.Recommend(ctx, learnerID, n, excludeKnown)
}

// RecommendCollaborative serves the collaborative signal alone.
func (e *Engine) RecommendCollaborative(ctx context.Context, learnerID string, n int, excludeKnown bool) ([]Recommendation, error) {
	metrics.RecordServe("collaborative")
	results, err := e.Collaborative.Recommend(ctx, learnerID, n, excludeKnown)
	if err != nil {
		return nil, err
	}
	recordFallbacks("collaborative", results)
	return results, nil
}

// RecommendContent serves the content similarity signal alone.
func (e *Engine) RecommendContent(ctx context.Context, learnerID string, n int, excludeKnown bool) ([]Recommendation, error) {
	metrics.RecordServe("content")
	results, err := e.Content.Recommend(ctx, learnerID, n, excludeKnown)
	if err != nil {
		return nil, err
	}
	recordFallbacks("content", results)
	return results, nil
}

// RecommendModules serves skill-aware module recommendations.
func (e *Engine) RecommendModules(ctx context.Context, req ModuleRequest) ([]Recommendation, error) {
	metrics.RecordServe("modules")
	return e.Modules.Recommend(ctx, req)
}

// PlanSequence recommends modules and orders them into a
// prerequisite-respecting learning sequence.
func (e *Engine) PlanSequence(ctx context.Context, req ModuleRequest) (Sequence, error) {
	metrics.RecordServe("sequence")
	candidates, err := e.Modules.Recommend(ctx, req)
	if err != nil {
		return Sequence{}, err
	}
	return e.Sequence.Plan(ctx, candidates)
}

// ScoreRisk evaluates one learner's dropout risk.
func (e *Engine) ScoreRisk(ctx context.Context, learnerID, courseID string) (RiskReport, error) {
	metrics.RiskEvaluations.Inc()
	return e.Risk.Score(ctx, learnerID, courseID)
}

// AtRiskLearners runs the capped at-risk scan.
func (e *Engine) AtRiskLearners(ctx context.Context, tenantID, courseID string) ([]RiskReport, error) {
	reports, err := e.Risk.AtRisk(ctx, tenantID, courseID)
	if err != nil {
		return nil, err
	}
	metrics.AtRiskLearners.Set(float64(len(reports)))
	return reports, nil
}

// Status reports every engine's fit state for health endpoints.
func (e *Engine) Status() map[string]FitStatus {
	return map[string]FitStatus{
		"collaborative": e.Collaborative.Status(),
		"content":       e.Content.Status(),
	}
}

// recordFallbacks counts fallback responses by inspecting result metadata.
func recordFallbacks(component string, results []Recommendation) {
	for _, rec := range results {
		switch rec.Metadata["algorithm"] {
		case "popularity_fallback":
			metrics.RecordFallback(component, "popularity")
			return
		case "diversity_fallback":
			metrics.RecordFallback(component, "diversity")
			return
		}
	}
}
