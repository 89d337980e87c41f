// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"errors"
	"time"
)

// Sentinel errors returned by engine serving calls.
var (
	// ErrNotFitted indicates Fit has never been attempted on the engine.
	// An engine that attempted a fit but lacked data serves its fallback
	// instead of returning this error.
	ErrNotFitted = errors.New("recommend: engine not fitted")

	// ErrCycle indicates the prerequisite graph passed to the sequence
	// planner contains a cycle among the candidate modules. This is a
	// caller-data error, not a planner failure.
	ErrCycle = errors.New("recommend: prerequisite cycle in candidate set")
)

// ItemType classifies what a recommendation points at.
type ItemType string

const (
	ItemCourse       ItemType = "course"
	ItemModule       ItemType = "module"
	ItemLearningPath ItemType = "learning_path"
	ItemContentItem  ItemType = "content_item"
)

// Recommendation is the engine's sole output contract. Every recommender
// normalizes into this shape; Score is always in [0,1].
type Recommendation struct {
	ItemID   string         `json:"item_id"`
	ItemType ItemType       `json:"item_type"`
	Title    string         `json:"title"`
	Score    float64        `json:"score"`
	Reason   string         `json:"reason"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// LearnerSimilarity pairs a learner with a cosine similarity in [-1,1].
type LearnerSimilarity struct {
	LearnerID  string  `json:"learner_id"`
	Similarity float64 `json:"similarity"`
}

// RiskFactor is one materialized contributor to a learner's risk score.
type RiskFactor struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Impact      float64 `json:"impact"`
}

// Intervention is a suggested response to a risk factor.
type Intervention struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CourseRisk is the per-enrollment detail attached to an at-risk report.
type CourseRisk struct {
	CourseID string  `json:"course_id"`
	Title    string  `json:"title"`
	Progress float64 `json:"progress"`
}

// RiskReport is the outcome of scoring one learner.
type RiskReport struct {
	LearnerID           string         `json:"learner_id"`
	RiskScore           float64        `json:"risk_score"`
	RiskLevel           string         `json:"risk_level"`
	Factors             []RiskFactor   `json:"factors"`
	Recommendations     []Intervention `json:"recommendations"`
	EnrollmentsAnalyzed int            `json:"enrollments_analyzed"`
	Courses             []CourseRisk   `json:"courses,omitempty"`
}

// GapModule is one module suggested to close a skill gap.
type GapModule struct {
	ModuleID          string `json:"module_id"`
	ModuleTitle       string `json:"module_title"`
	CourseID          string `json:"course_id"`
	CourseTitle       string `json:"course_title"`
	ContributionLevel string `json:"contribution_level"`
	ProficiencyGained int    `json:"proficiency_gained"`
}

// SkillGap reports how far a learner is from full proficiency in one skill.
type SkillGap struct {
	SkillID            string      `json:"skill_id"`
	SkillName          string      `json:"skill_name"`
	CurrentProficiency int         `json:"current_proficiency"`
	CurrentLevel       string      `json:"current_level"`
	Gap                int         `json:"gap"`
	RecommendedModules []GapModule `json:"recommended_modules"`
}

// SequenceStep is one position in an ordered learning sequence.
type SequenceStep struct {
	Position        int      `json:"position"`
	ModuleID        string   `json:"module_id"`
	Title           string   `json:"title"`
	Score           float64  `json:"score"`
	Reason          string   `json:"reason"`
	SkillsDeveloped []string `json:"skills_developed"`
}

// Sequence is a prerequisite-respecting ordering of recommended modules
// with a projection of the proficiency each skill would gain.
type Sequence struct {
	Steps               []SequenceStep `json:"steps"`
	EstimatedSkillGains map[string]int `json:"estimated_skill_gains"`
}

// ExplanationFactor is one contributing signal behind a hybrid
// recommendation.
type ExplanationFactor struct {
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	Weight         float64  `json:"weight"`
	SimilarCourses []string `json:"similar_courses,omitempty"`
}

// Explanation is a best-effort, non-authoritative justification for a
// recommendation. Factors is empty when neither signal applies.
type Explanation struct {
	LearnerID string              `json:"learner_id"`
	ItemID    string              `json:"item_id"`
	Factors   []ExplanationFactor `json:"factors"`
}

// ProficiencyLevel names the band a 0-100 proficiency falls in.
func ProficiencyLevel(proficiency int) string {
	switch {
	case proficiency >= 85:
		return "expert"
	case proficiency >= 60:
		return "proficient"
	case proficiency >= 30:
		return "developing"
	default:
		return "novice"
	}
}

// FitStatus describes an engine's current model for health reporting.
type FitStatus struct {
	Fitted    bool      `json:"fitted"`
	FittedAt  time.Time `json:"fitted_at"`
	Learners  int       `json:"learners,omitempty"`
	Items     int       `json:"items,omitempty"`
	Factors   int       `json:"factors,omitempty"`
	Fallbacks bool      `json:"fallbacks_available"`
}

// InteractionScore converts an enrollment's progress and completion state
// into a signal strength in [0,5]. Enrollment alone is worth 2.5, progress
// adds up to 1.5 and completion adds 1.0, capped at 5.0.
func InteractionScore(progress float64, completed bool) float64 {
	score := 2.5 + (progress/100)*1.5
	if completed {
		score += 1.0
	}
	if score > 5.0 {
		score = 5.0
	}
	return score
}
