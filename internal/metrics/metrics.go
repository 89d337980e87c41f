// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

// Package metrics provides Prometheus instrumentation for the engine:
// fit timing, serving throughput, fallback rates and at-risk counts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FitDuration tracks how long each engine fit takes.
	FitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathwise_fit_duration_seconds",
			Help:    "Duration of engine model fits in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	// FitTotal counts fit attempts by outcome.
	FitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathwise_fit_total",
			Help: "Total number of engine fit attempts",
		},
		[]string{"engine", "status"}, // status: "ok", "error"
	)

	// RecommendationsServed counts serving calls by component.
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathwise_recommendations_served_total",
			Help: "Total recommendation serving calls",
		},
		[]string{"component"},
	)

	// FallbacksServed counts cold-start and unfitted fallback responses.
	FallbacksServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathwise_fallbacks_served_total",
			Help: "Total fallback recommendation responses",
		},
		[]string{"component", "kind"}, // kind: "popularity", "diversity"
	)

	// RiskEvaluations counts learner risk evaluations.
	RiskEvaluations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pathwise_risk_evaluations_total",
			Help: "Total learner risk evaluations",
		},
	)

	// AtRiskLearners is the size of the last at-risk report.
	AtRiskLearners = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pathwise_at_risk_learners",
			Help: "Learners above the risk threshold in the last at-risk scan",
		},
	)

	// HTTPRequestDuration tracks API endpoint latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathwise_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordFit records one fit attempt for an engine.
func RecordFit(engine string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	FitTotal.WithLabelValues(engine, status).Inc()
	if err == nil {
		FitDuration.WithLabelValues(engine).Observe(duration.Seconds())
	}
}

// RecordServe records one serving call for a component.
func RecordServe(component string) {
	RecommendationsServed.WithLabelValues(component).Inc()
}

// RecordFallback records one fallback response.
func RecordFallback(component, kind string) {
	FallbacksServed.WithLabelValues(component, kind).Inc()
}
