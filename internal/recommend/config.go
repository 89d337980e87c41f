// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"fmt"
	"time"
)

// Config holds engine configuration. The zero value is not usable; start
// from DefaultConfig and override.
type Config struct {
	// Collaborative configures the matrix factorization engine.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// Content configures the content similarity engine.
	Content ContentConfig `json:"content"`

	// Hybrid configures the blender weights.
	Hybrid HybridConfig `json:"hybrid"`

	// Risk configures the dropout risk scorer.
	Risk RiskConfig `json:"risk"`

	// Modules configures the module recommender.
	Modules ModulesConfig `json:"modules"`

	// Sequence configures the sequence planner.
	Sequence SequenceConfig `json:"sequence"`

	// MaxModelAge is how long a fitted model is served before it is
	// considered stale. Default: 24h
	MaxModelAge time.Duration `json:"max_model_age"`
}

// CollaborativeConfig tunes the latent factor model.
type CollaborativeConfig struct {
	// MinInteractions is the minimum interaction record count required to
	// fit. Below it the engine stays unfitted and serves the popularity
	// fallback. Default: 5
	MinInteractions int `json:"min_interactions"`

	// Factors is the requested latent dimensionality. The effective value
	// is capped at min(learners, items)-1. Default: 50
	Factors int `json:"factors"`
}

// ContentConfig tunes the feature-vector similarity engine.
type ContentConfig struct {
	// MinCourses is the minimum published course count required to fit.
	// Default: 3
	MinCourses int `json:"min_courses"`

	// EngagementThreshold is the progress percentage at which an
	// enrollment contributes to the learner profile. Default: 30
	EngagementThreshold float64 `json:"engagement_threshold"`

	// ProfileCourseLimit caps how many of the learner's highest-progress
	// courses feed the profile. Default: 10
	ProfileCourseLimit int `json:"profile_course_limit"`
}

// HybridConfig tunes the signal blend.
type HybridConfig struct {
	// CollaborativeWeight applies when the learner has enough history.
	// Default: 0.6
	CollaborativeWeight float64 `json:"collaborative_weight"`

	// ContentWeight applies when the learner has enough history.
	// Default: 0.4
	ContentWeight float64 `json:"content_weight"`

	// MinInteractionsForCollaborative is the history size below which the
	// blend shifts to (0.2, 0.8) favoring content. Default: 3
	MinInteractionsForCollaborative int `json:"min_interactions_for_collaborative"`
}

// RiskConfig tunes the risk scorer.
type RiskConfig struct {
	// Threshold is the minimum aggregate risk score for a learner to
	// appear in the at-risk report. Default: 0.6
	Threshold float64 `json:"threshold"`

	// MaxEnrollmentScan caps how many active enrollments the at-risk scan
	// visits. Load shedding, not correctness. Default: 500
	MaxEnrollmentScan int `json:"max_enrollment_scan"`

	// MaxReported caps the at-risk report length. Default: 50
	MaxReported int `json:"max_reported"`
}

// ModulesConfig tunes the module recommender.
type ModulesConfig struct {
	// SkillWeight, CollaborativeWeight and PopularityWeight blend the
	// three module signals. Defaults: 0.5, 0.3, 0.2
	SkillWeight         float64 `json:"skill_weight"`
	CollaborativeWeight float64 `json:"collaborative_weight"`
	PopularityWeight    float64 `json:"popularity_weight"`

	// MaxCandidates caps the candidate module scan. Default: 100
	MaxCandidates int `json:"max_candidates"`

	// PeerCount is how many skill-similar learners inform the
	// collaborative signal. Default: 20
	PeerCount int `json:"peer_count"`

	// PopularityCap is the completion count that saturates the popularity
	// signal at 1.0. Default: 100
	PopularityCap int `json:"popularity_cap"`

	// TargetBoost multiplies skill value for explicitly targeted skills.
	// Default: 1.5
	TargetBoost float64 `json:"target_boost"`

	// PrimaryBoost multiplies skill value for a module's primary skill.
	// Default: 1.2
	PrimaryBoost float64 `json:"primary_boost"`
}

// SequenceConfig tunes the sequence planner.
type SequenceConfig struct {
	// MaxModules caps the emitted sequence length. Default: 20
	MaxModules int `json:"max_modules"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Collaborative: CollaborativeConfig{
			MinInteractions: 5,
			Factors:         50,
		},
		Content: ContentConfig{
			MinCourses:          3,
			EngagementThreshold: 30,
			ProfileCourseLimit:  10,
		},
		Hybrid: HybridConfig{
			CollaborativeWeight:             0.6,
			ContentWeight:                   0.4,
			MinInteractionsForCollaborative: 3,
		},
		Risk: RiskConfig{
			Threshold:         0.6,
			MaxEnrollmentScan: 500,
			MaxReported:       50,
		},
		Modules: ModulesConfig{
			SkillWeight:         0.5,
			CollaborativeWeight: 0.3,
			PopularityWeight:    0.2,
			MaxCandidates:       100,
			PeerCount:           20,
			PopularityCap:       100,
			TargetBoost:         1.5,
			PrimaryBoost:        1.2,
		},
		Sequence: SequenceConfig{
			MaxModules: 20,
		},
		MaxModelAge: 24 * time.Hour,
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Collaborative.MinInteractions < 1 {
		return fmt.Errorf("collaborative.min_interactions must be >= 1, got %d", c.Collaborative.MinInteractions)
	}
	if c.Collaborative.Factors < 2 {
		return fmt.Errorf("collaborative.factors must be >= 2, got %d", c.Collaborative.Factors)
	}
	if c.Content.MinCourses < 1 {
		return fmt.Errorf("content.min_courses must be >= 1, got %d", c.Content.MinCourses)
	}
	if c.Content.EngagementThreshold < 0 || c.Content.EngagementThreshold > 100 {
		return fmt.Errorf("content.engagement_threshold must be in [0,100], got %f", c.Content.EngagementThreshold)
	}
	if c.Hybrid.CollaborativeWeight < 0 || c.Hybrid.ContentWeight < 0 {
		return fmt.Errorf("hybrid weights must be non-negative")
	}
	if sum := c.Hybrid.CollaborativeWeight + c.Hybrid.ContentWeight; sum <= 0 {
		return fmt.Errorf("hybrid weights must sum to a positive value, got %f", sum)
	}
	if c.Risk.Threshold < 0 || c.Risk.Threshold > 1 {
		return fmt.Errorf("risk.threshold must be in [0,1], got %f", c.Risk.Threshold)
	}
	if c.Risk.MaxEnrollmentScan < 1 {
		return fmt.Errorf("risk.max_enrollment_scan must be >= 1, got %d", c.Risk.MaxEnrollmentScan)
	}
	if c.Modules.SkillWeight < 0 || c.Modules.CollaborativeWeight < 0 || c.Modules.PopularityWeight < 0 {
		return fmt.Errorf("module weights must be non-negative")
	}
	if c.Modules.MaxCandidates < 1 {
		return fmt.Errorf("modules.max_candidates must be >= 1, got %d", c.Modules.MaxCandidates)
	}
	if c.Modules.PeerCount < 1 {
		return fmt.Errorf("modules.peer_count must be >= 1, got %d", c.Modules.PeerCount)
	}
	if c.Modules.PopularityCap < 1 {
		return fmt.Errorf("modules.popularity_cap must be >= 1, got %d", c.Modules.PopularityCap)
	}
	if c.Sequence.MaxModules < 1 {
		return fmt.Errorf("sequence.max_modules must be >= 1, got %d", c.Sequence.MaxModules)
	}
	if c.MaxModelAge <= 0 {
		return fmt.Errorf("max_model_age must be positive, got %s", c.MaxModelAge)
	}
	return nil
}
