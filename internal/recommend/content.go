// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/snapshot"
)

// ContentEngine recommends courses by cosine similarity between a learner's
// profile vector and catalog feature vectors. Learners without engagement
// history get a category diversity fallback.
type ContentEngine struct {
	cfg    ContentConfig
	maxAge time.Duration

	provider snapshot.Provider
	logger   zerolog.Logger

	model atomic.Pointer[contentModel]
	now   func() time.Time
}

// contentModel is an immutable fitted snapshot.
type contentModel struct {
	fitted   bool
	fittedAt time.Time

	// features is the vocabulary: cat_*, tag_*, diff_* one-hot slots plus
	// a trailing normalized-duration slot. Index assignment is derived
	// once per fit and stable for its lifetime.
	features []string
	vectors  map[string][]float64

	courseOrder []string // sorted course ids
	catalog     map[string]snapshot.Course
}

// NewContentEngine returns an unfitted engine.
func NewContentEngine(cfg Config, p snapshot.Provider, logger zerolog.Logger) *ContentEngine {
	return &ContentEngine{
		cfg:      cfg.Content,
		maxAge:   cfg.MaxModelAge,
		provider: p,
		logger:   logger.With().Str("component", "content").Logger(),
		now:      time.Now,
	}
}

// Fit rebuilds the feature vocabulary and course vectors from the published
// catalog. Below MinCourses the engine stays unfitted and serves empty
// lists.
func (e *ContentEngine) Fit(ctx context.Context, tenantID string) error {
	start := e.now()

	courses, err := e.provider.Courses(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("loading courses: %w", err)
	}

	m := &contentModel{
		fittedAt: start,
		catalog:  make(map[string]snapshot.Course, len(courses)),
	}
	for _, c := range courses {
		m.catalog[c.ID] = c
		m.courseOrder = append(m.courseOrder, c.ID)
	}
	sort.Strings(m.courseOrder)

	if len(courses) < e.cfg.MinCourses {
		e.model.Store(m)
		e.logger.Info().
			Int("courses", len(courses)).
			Int("min_required", e.cfg.MinCourses).
			Msg("Too few courses to fit content model")
		return nil
	}

	m.features = buildVocabulary(courses)
	index := make(map[string]int, len(m.features))
	for i, f := range m.features {
		index[f] = i
	}

	var maxDuration float64
	for _, c := range courses {
		if c.DurationHours > maxDuration {
			maxDuration = c.DurationHours
		}
	}
	if maxDuration == 0 {
		maxDuration = 1
	}

	m.vectors = make(map[string][]float64, len(courses))
	durationIdx := len(m.features) - 1
	for _, c := range courses {
		vec := make([]float64, len(m.features))
		if i, ok := index["cat_"+normalizeLabel(c.Category)]; ok {
			vec[i] = 1
		}
		for _, tag := range c.Tags {
			if i, ok := index["tag_"+normalizeLabel(tag)]; ok {
				vec[i] = 1
			}
		}
		if i, ok := index["diff_"+normalizeLabel(c.Difficulty)]; ok {
			vec[i] = 1
		}
		vec[durationIdx] = c.DurationHours / maxDuration
		m.vectors[c.ID] = vec
	}

	m.fitted = true
	e.model.Store(m)

	e.logger.Info().
		Int("courses", len(courses)).
		Int("features", len(m.features)).
		Dur("duration", e.now().Sub(start)).
		Msg("Content model fitted")
	return nil
}

// buildVocabulary derives the deterministic feature index layout:
// categories, then tags, then difficulties, each lowercased, deduplicated
// and sorted, followed by the normalized duration slot.
func buildVocabulary(courses []snapshot.Course) []string {
	categories := make(map[string]struct{})
	tags := make(map[string]struct{})
	difficulties := make(map[string]struct{})

	for _, c := range courses {
		if label := normalizeLabel(c.Category); label != "" {
			categories[label] = struct{}{}
		}
		for _, t := range c.Tags {
			if label := normalizeLabel(t); label != "" {
				tags[label] = struct{}{}
			}
		}
		if label := normalizeLabel(c.Difficulty); label != "" {
			difficulties[label] = struct{}{}
		}
	}

	var features []string
	for _, label := range sortedKeys(categories) {
		features = append(features, "cat_"+label)
	}
	for _, label := range sortedKeys(tags) {
		features = append(features, "tag_"+label)
	}
	for _, label := range sortedKeys(difficulties) {
		features = append(features, "diff_"+label)
	}
	features = append(features, "duration_normalized")
	return features
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Recommend returns up to n courses similar to what the learner engaged
// with. Cosine scores are served unnormalized; with non-negative features
// they already fall in [0,1].
func (e *ContentEngine) Recommend(ctx context.Context, learnerID string, n int, excludeKnown bool) ([]Recommendation, error) {
	m := e.model.Load()
	if m == nil {
		return nil, ErrNotFitted
	}
	if !m.fitted || n <= 0 {
		return []Recommendation{}, nil
	}

	enrollments, err := e.provider.LearnerEnrollments(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("loading learner enrollments: %w", err)
	}

	known := make(map[string]struct{}, len(enrollments))
	engaged := make([]snapshot.Enrollment, 0, len(enrollments))
	for _, en := range enrollments {
		known[en.CourseID] = struct{}{}
		if _, inCatalog := m.vectors[en.CourseID]; !inCatalog {
			continue
		}
		if en.Progress >= e.cfg.EngagementThreshold || en.Completed() {
			engaged = append(engaged, en)
		}
	}

	if len(engaged) == 0 {
		return e.diversityFallback(m, known, n, excludeKnown), nil
	}

	profile := e.buildProfile(m, engaged)

	scores := make(map[string]float64, len(m.vectors))
	for _, courseID := range m.courseOrder {
		if excludeKnown {
			if _, skip := known[courseID]; skip {
				continue
			}
		}
		scores[courseID] = cosineSimilarity(profile, m.vectors[courseID])
	}

	ranked := rankScores(scores)
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	results := make([]Recommendation, 0, len(ranked))
	for _, courseID := range ranked {
		course := m.catalog[courseID]
		results = append(results, Recommendation{
			ItemID:   courseID,
			ItemType: ItemCourse,
			Title:    course.Title,
			Score:    round4(clamp01(scores[courseID])),
			Reason:   "Similar to courses you've engaged with",
			Metadata: map[string]any{
				"algorithm":  "content_based",
				"category":   course.Category,
				"difficulty": course.Difficulty,
			},
		})
	}
	return results, nil
}

// buildProfile averages engaged course vectors weighted by progress, with a
// completion bonus. The highest-progress courses feed the profile, capped
// at ProfileCourseLimit.
func (e *ContentEngine) buildProfile(m *contentModel, engaged []snapshot.Enrollment) []float64 {
	sort.Slice(engaged, func(i, j int) bool {
		if engaged[i].Progress != engaged[j].Progress {
			return engaged[i].Progress > engaged[j].Progress
		}
		return engaged[i].CourseID < engaged[j].CourseID
	})
	if len(engaged) > e.cfg.ProfileCourseLimit {
		engaged = engaged[:e.cfg.ProfileCourseLimit]
	}

	profile := make([]float64, len(m.features))
	var totalWeight float64
	for _, en := range engaged {
		weight := 0.5 + 0.5*(en.Progress/100)
		if en.Completed() {
			weight *= 1.2
		}
		vec := m.vectors[en.CourseID]
		for i := range profile {
			profile[i] += vec[i] * weight
		}
		totalWeight += weight
	}
	if totalWeight > 0 {
		for i := range profile {
			profile[i] /= totalWeight
		}
	}
	return profile
}

// diversityFallback spreads cold-start picks across categories: courses
// from unseen categories are always admitted (up to n), and repeated
// categories fill in until at least half the requested count is reached.
func (e *ContentEngine) diversityFallback(m *contentModel, known map[string]struct{}, n int, excludeKnown bool) []Recommendation {
	target := n / 2
	if target < 1 {
		target = 1
	}

	seenCategories := make(map[string]struct{})
	results := make([]Recommendation, 0, target)
	for _, courseID := range m.courseOrder {
		if excludeKnown {
			if _, skip := known[courseID]; skip {
				continue
			}
		}
		course := m.catalog[courseID]
		category := normalizeLabel(course.Category)
		if _, seen := seenCategories[category]; seen && len(results) >= target {
			continue
		}
		seenCategories[category] = struct{}{}
		results = append(results, Recommendation{
			ItemID:   courseID,
			ItemType: ItemCourse,
			Title:    course.Title,
			Score:    0.5,
			Reason:   "Explore this category",
			Metadata: map[string]any{
				"algorithm": "diversity_fallback",
				"category":  course.Category,
			},
		})
		if len(results) >= n {
			break
		}
	}
	return results
}

// SimilarCourses ranks the catalog by similarity to one course, self
// excluded. Unknown course ids yield an empty list.
func (e *ContentEngine) SimilarCourses(ctx context.Context, courseID string, n int) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := e.model.Load()
	if m == nil {
		return nil, ErrNotFitted
	}
	if !m.fitted || n <= 0 {
		return []Recommendation{}, nil
	}
	base, ok := m.vectors[courseID]
	if !ok {
		return []Recommendation{}, nil
	}

	scores := make(map[string]float64, len(m.vectors)-1)
	for _, otherID := range m.courseOrder {
		if otherID == courseID {
			continue
		}
		scores[otherID] = cosineSimilarity(base, m.vectors[otherID])
	}

	ranked := rankScores(scores)
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	results := make([]Recommendation, 0, len(ranked))
	for _, id := range ranked {
		course := m.catalog[id]
		results = append(results, Recommendation{
			ItemID:   id,
			ItemType: ItemCourse,
			Title:    course.Title,
			Score:    round4(clamp01(scores[id])),
			Reason:   "Similar course",
			Metadata: map[string]any{
				"algorithm": "content_based",
				"category":  course.Category,
			},
		})
	}
	return results, nil
}

// IsFitted reports whether a usable model is being served.
func (e *ContentEngine) IsFitted() bool {
	m := e.model.Load()
	return m != nil && m.fitted
}

// IsStale reports whether the model should be refitted.
func (e *ContentEngine) IsStale() bool {
	m := e.model.Load()
	return m == nil || e.now().Sub(m.fittedAt) > e.maxAge
}

// Status reports the current model for health endpoints.
func (e *ContentEngine) Status() FitStatus {
	m := e.model.Load()
	if m == nil {
		return FitStatus{}
	}
	return FitStatus{
		Fitted:    m.fitted,
		FittedAt:  m.fittedAt,
		Items:     len(m.catalog),
		Factors:   len(m.features),
		Fallbacks: len(m.courseOrder) > 0,
	}
}
