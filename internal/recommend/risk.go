// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/snapshot"
)

// riskFeatureWeights are engineered, not learned. Positive weights raise
// risk as the feature grows; negative weights lower it. Applied to a base
// risk of 0.5 and clamped to [0,1].
var riskFeatureWeights = map[string]float64{
	"days_since_last_activity": 0.25,
	"assessment_fail_rate":     0.25,
	"progress_velocity":        -0.20,
	"engagement_score":         -0.15,
	"time_in_course":           -0.10,
	"content_completion_rate":  -0.05,
}

const (
	riskLevelHigh   = 0.7
	riskLevelMedium = 0.4

	// maxRiskFactors caps the factors attached to a report.
	maxRiskFactors = 5
)

// RiskScorer computes bounded dropout risk per learner from engagement and
// performance features. It is stateless: every call reads the current
// snapshot.
type RiskScorer struct {
	cfg      RiskConfig
	provider snapshot.Provider
	logger   zerolog.Logger

	// Now is the clock used for inactivity and velocity windows.
	// Overridable in tests.
	Now func() time.Time
}

// NewRiskScorer returns a scorer over the given provider.
func NewRiskScorer(cfg Config, p snapshot.Provider, logger zerolog.Logger) *RiskScorer {
	return &RiskScorer{
		cfg:      cfg.Risk,
		provider: p,
		logger:   logger.With().Str("component", "risk").Logger(),
		Now:      time.Now,
	}
}

// Score evaluates one learner across their active enrollments, optionally
// restricted to one course. A learner with no active enrollments gets
// risk_score 0 and level "none".
func (r *RiskScorer) Score(ctx context.Context, learnerID, courseID string) (RiskReport, error) {
	report := RiskReport{
		LearnerID:       learnerID,
		RiskLevel:       "none",
		Factors:         []RiskFactor{},
		Recommendations: []Intervention{},
	}

	enrollments, err := r.provider.LearnerEnrollments(ctx, learnerID)
	if err != nil {
		return report, fmt.Errorf("loading learner enrollments: %w", err)
	}

	active := make([]snapshot.Enrollment, 0, len(enrollments))
	for _, en := range enrollments {
		if en.Status != snapshot.StatusActive {
			continue
		}
		if courseID != "" && en.CourseID != courseID {
			continue
		}
		active = append(active, en)
	}
	if len(active) == 0 {
		return report, nil
	}

	courses, err := r.provider.Courses(ctx, "")
	if err != nil {
		return report, fmt.Errorf("loading courses: %w", err)
	}
	catalog := make(map[string]snapshot.Course, len(courses))
	for _, c := range courses {
		catalog[c.ID] = c
	}

	now := r.Now()
	var total float64
	var allFactors []RiskFactor
	for _, en := range active {
		features, factors := enrollmentRiskFeatures(en, catalog[en.CourseID], now)
		total += riskFromFeatures(features)
		allFactors = append(allFactors, factors...)
		report.Courses = append(report.Courses, CourseRisk{
			CourseID: en.CourseID,
			Title:    catalog[en.CourseID].Title,
			Progress: en.Progress,
		})
	}

	avg := total / float64(len(active))
	report.RiskScore = round3(avg)
	report.RiskLevel = riskLevel(avg)
	report.Factors = dedupFactors(allFactors)
	report.Recommendations = interventionsFor(report.RiskLevel, report.Factors)
	report.EnrollmentsAnalyzed = len(active)
	return report, nil
}

// enrollmentRiskFeatures extracts the normalized feature vector for one
// enrollment plus the factors that crossed their materiality thresholds.
func enrollmentRiskFeatures(en snapshot.Enrollment, course snapshot.Course, now time.Time) (map[string]float64, []RiskFactor) {
	features := make(map[string]float64, len(riskFeatureWeights))
	var factors []RiskFactor

	lastActivity := en.LastActivityAt
	if lastActivity.IsZero() {
		lastActivity = en.EnrolledAt
	}
	daysInactive := int(now.Sub(lastActivity).Hours() / 24)
	if daysInactive < 0 {
		daysInactive = 0
	}
	features["days_since_last_activity"] = minFloat(float64(daysInactive)/30, 1)
	if daysInactive > 7 {
		factors = append(factors, RiskFactor{
			Type:        "inactivity",
			Description: fmt.Sprintf("No activity in %d days", daysInactive),
			Impact:      minFloat(float64(daysInactive)/30, 1),
		})
	}

	if en.AssessmentAttempts > 0 {
		failRate := float64(en.AssessmentFailures) / float64(en.AssessmentAttempts)
		features["assessment_fail_rate"] = failRate
		if failRate > 0.5 {
			factors = append(factors, RiskFactor{
				Type:        "assessment_performance",
				Description: fmt.Sprintf("Failed %d/%d assessments", en.AssessmentFailures, en.AssessmentAttempts),
				Impact:      failRate,
			})
		}
	} else {
		features["assessment_fail_rate"] = 0
	}

	daysEnrolled := int(now.Sub(en.EnrolledAt).Hours() / 24)
	if daysEnrolled < 1 {
		daysEnrolled = 1
	}
	velocity := en.Progress / float64(daysEnrolled) // percent per day
	features["progress_velocity"] = minFloat(velocity/5, 1)
	if velocity < 1 && daysEnrolled > 7 {
		factors = append(factors, RiskFactor{
			Type:        "slow_progress",
			Description: fmt.Sprintf("Progress rate: %.1f%% per day", velocity),
			Impact:      maxFloat(0, 1-velocity/2),
		})
	}

	var engagement float64
	if en.ContentSeen > 0 {
		engagement = float64(en.ContentCompleted) / float64(en.ContentSeen)
	}
	features["engagement_score"] = engagement
	features["content_completion_rate"] = engagement
	if engagement < 0.3 && daysEnrolled > 14 {
		factors = append(factors, RiskFactor{
			Type:        "low_engagement",
			Description: fmt.Sprintf("Only %d/%d content items completed", en.ContentCompleted, en.ContentSeen),
			Impact:      1 - engagement,
		})
	}

	durationHours := course.DurationHours
	if durationHours == 0 {
		durationHours = 10
	}
	expectedDays := durationHours * 7 // rough hours-to-days estimate
	timeRatio := float64(daysEnrolled) / expectedDays
	features["time_in_course"] = minFloat(timeRatio, 2) / 2
	if timeRatio > 1.5 && en.Progress < 80 {
		factors = append(factors, RiskFactor{
			Type:        "behind_schedule",
			Description: "Significantly behind expected timeline",
			Impact:      minFloat(timeRatio-1, 1),
		})
	}

	return features, factors
}

// riskFromFeatures applies the engineered weights to a base risk of 0.5.
func riskFromFeatures(features map[string]float64) float64 {
	score := 0.5
	for name, value := range features {
		if weight, ok := riskFeatureWeights[name]; ok {
			score += weight * value
		}
	}
	return clamp01(score)
}

func riskLevel(score float64) string {
	switch {
	case score >= riskLevelHigh:
		return "high"
	case score >= riskLevelMedium:
		return "medium"
	default:
		return "low"
	}
}

// dedupFactors keeps the highest-impact factor per type, capped at
// maxRiskFactors, ordered by descending impact.
func dedupFactors(factors []RiskFactor) []RiskFactor {
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Impact > factors[j].Impact
	})
	seen := make(map[string]struct{})
	unique := make([]RiskFactor, 0, maxRiskFactors)
	for _, f := range factors {
		if _, ok := seen[f.Type]; ok {
			continue
		}
		seen[f.Type] = struct{}{}
		unique = append(unique, f)
		if len(unique) == maxRiskFactors {
			break
		}
	}
	return unique
}

// interventionsFor maps factor types onto the fixed intervention menu.
// High overall risk always adds instructor outreach.
func interventionsFor(level string, factors []RiskFactor) []Intervention {
	types := make(map[string]struct{}, len(factors))
	for _, f := range factors {
		types[f.Type] = struct{}{}
	}

	var out []Intervention
	if _, ok := types["inactivity"]; ok {
		out = append(out, Intervention{
			Action:      "send_reminder",
			Description: "Send a personalized reminder to re-engage with the course",
			Priority:    "high",
		})
	}
	if _, ok := types["assessment_performance"]; ok {
		out = append(out, Intervention{
			Action:      "provide_support",
			Description: "Offer additional study resources or tutoring support",
			Priority:    "high",
		})
	}
	if _, ok := types["slow_progress"]; ok {
		out = append(out, Intervention{
			Action:      "adjust_pace",
			Description: "Suggest a revised learning schedule",
			Priority:    "medium",
		})
	}
	if _, ok := types["low_engagement"]; ok {
		out = append(out, Intervention{
			Action:      "personalize_content",
			Description: "Recommend specific content items based on interests",
			Priority:    "medium",
		})
	}
	if level == "high" {
		out = append(out, Intervention{
			Action:      "instructor_outreach",
			Description: "Flag for instructor or mentor intervention",
			Priority:    "high",
		})
	}
	if out == nil {
		out = []Intervention{}
	}
	return out
}

// AtRisk scans active enrollments (up to MaxEnrollmentScan), evaluates each
// distinct learner once and returns learners at or above the configured
// threshold, sorted by descending risk.
func (r *RiskScorer) AtRisk(ctx context.Context, tenantID, courseID string) ([]RiskReport, error) {
	enrollments, err := r.provider.Enrollments(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading enrollments: %w", err)
	}

	seen := make(map[string]struct{})
	var learners []string
	scanned := 0
	for _, en := range enrollments {
		if en.Status != snapshot.StatusActive {
			continue
		}
		if courseID != "" && en.CourseID != courseID {
			continue
		}
		scanned++
		if scanned > r.cfg.MaxEnrollmentScan {
			break
		}
		if _, ok := seen[en.LearnerID]; !ok {
			seen[en.LearnerID] = struct{}{}
			learners = append(learners, en.LearnerID)
		}
	}

	reports := make([]RiskReport, 0, len(learners))
	for _, learnerID := range learners {
		report, err := r.Score(ctx, learnerID, courseID)
		if err != nil {
			return nil, err
		}
		if report.RiskScore >= r.cfg.Threshold {
			reports = append(reports, report)
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].RiskScore != reports[j].RiskScore {
			return reports[i].RiskScore > reports[j].RiskScore
		}
		return reports[i].LearnerID < reports[j].LearnerID
	})
	if len(reports) > r.cfg.MaxReported {
		reports = reports[:r.cfg.MaxReported]
	}

	r.logger.Debug().
		Int("scanned", scanned).
		Int("at_risk", len(reports)).
		Msg("At-risk scan complete")
	return reports, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
