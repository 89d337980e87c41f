// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/snapshot"
)

// CollaborativeEngine predicts learner-course affinity with a latent factor
// model over enrollment interactions. Unknown learners and unfitted models
// are served from a popularity ranking instead.
type CollaborativeEngine struct {
	cfg    CollaborativeConfig
	maxAge time.Duration

	provider snapshot.Provider
	logger   zerolog.Logger

	model atomic.Pointer[collabModel]
	now   func() time.Time
}

// collabModel is an immutable fitted snapshot. Fit builds a complete model
// and swaps it in atomically; serving calls load the pointer once.
type collabModel struct {
	fitted   bool
	fittedAt time.Time

	globalMean float64

	// Dense index assignment, sorted by raw id for determinism.
	learners     []string
	courses      []string
	learnerIndex map[string]int
	courseIndex  map[string]int

	userFactors [][]float64 // learners × k, A·V
	itemFactors [][]float64 // courses × k, V
	factors     int

	known            map[string]map[string]struct{}
	interactionCount map[string]int
	popularity       []popularityEntry
	catalog          map[string]snapshot.Course
}

type popularityEntry struct {
	courseID string
	count    int
}

// NewCollaborativeEngine returns an unfitted engine. Call Fit before
// serving; Recommend on a never-fitted engine returns ErrNotFitted.
func NewCollaborativeEngine(cfg Config, p snapshot.Provider, logger zerolog.Logger) *CollaborativeEngine {
	return &CollaborativeEngine{
		cfg:      cfg.Collaborative,
		maxAge:   cfg.MaxModelAge,
		provider: p,
		logger:   logger.With().Str("component", "collaborative").Logger(),
		now:      time.Now,
	}
}

// Fit rebuilds the latent factor model from the current snapshot. A tenantID
// of "" fits across all tenants. Too little data is not an error: the engine
// records an unfitted model that still carries the popularity ranking.
func (e *CollaborativeEngine) Fit(ctx context.Context, tenantID string) error {
	start := e.now()

	enrollments, err := e.provider.Enrollments(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("loading enrollments: %w", err)
	}
	courses, err := e.provider.Courses(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("loading courses: %w", err)
	}

	catalog := make(map[string]snapshot.Course, len(courses))
	for _, c := range courses {
		catalog[c.ID] = c
	}

	m := &collabModel{
		fittedAt:         start,
		known:            make(map[string]map[string]struct{}),
		interactionCount: make(map[string]int),
		catalog:          catalog,
	}

	type interaction struct {
		learnerID string
		courseID  string
		score     float64
	}
	interactions := make([]interaction, 0, len(enrollments))
	popCounts := make(map[string]int)

	for _, en := range enrollments {
		interactions = append(interactions, interaction{
			learnerID: en.LearnerID,
			courseID:  en.CourseID,
			score:     InteractionScore(en.Progress, en.Completed()),
		})
		popCounts[en.CourseID]++
		seen, ok := m.known[en.LearnerID]
		if !ok {
			seen = make(map[string]struct{})
			m.known[en.LearnerID] = seen
		}
		seen[en.CourseID] = struct{}{}
		m.interactionCount[en.LearnerID]++
	}

	m.popularity = make([]popularityEntry, 0, len(popCounts))
	for id, count := range popCounts {
		m.popularity = append(m.popularity, popularityEntry{courseID: id, count: count})
	}
	sort.Slice(m.popularity, func(i, j int) bool {
		if m.popularity[i].count != m.popularity[j].count {
			return m.popularity[i].count > m.popularity[j].count
		}
		return m.popularity[i].courseID < m.popularity[j].courseID
	})

	if len(interactions) < e.cfg.MinInteractions {
		e.model.Store(m)
		e.logger.Info().
			Int("interactions", len(interactions)).
			Int("min_required", e.cfg.MinInteractions).
			Msg("Too few interactions, serving popularity fallback")
		return nil
	}

	learnerSet := make(map[string]struct{})
	courseSet := make(map[string]struct{})
	for _, it := range interactions {
		learnerSet[it.learnerID] = struct{}{}
		courseSet[it.courseID] = struct{}{}
	}
	m.learners = sortedKeys(learnerSet)
	m.courses = sortedKeys(courseSet)
	m.learnerIndex = indexOf(m.learners)
	m.courseIndex = indexOf(m.courses)

	// Build the dense interaction matrix and center non-zero entries on
	// the global mean.
	matrix := make([][]float64, len(m.learners))
	for i := range matrix {
		matrix[i] = make([]float64, len(m.courses))
	}
	var sum float64
	for _, it := range interactions {
		matrix[m.learnerIndex[it.learnerID]][m.courseIndex[it.courseID]] = it.score
		sum += it.score
	}
	m.globalMean = sum / float64(len(interactions))
	for i := range matrix {
		for j := range matrix[i] {
			if matrix[i][j] != 0 {
				matrix[i][j] -= m.globalMean
			}
		}
	}

	k := e.cfg.Factors
	if maxK := min(len(m.learners), len(m.courses)) - 1; k > maxK {
		k = maxK
	}
	if k < 2 {
		e.model.Store(m)
		e.logger.Info().
			Int("learners", len(m.learners)).
			Int("courses", len(m.courses)).
			Msg("Matrix too small for factorization, serving popularity fallback")
		return nil
	}

	userFactors, itemFactors, extracted := truncatedSVD(matrix, k)
	if extracted < 2 {
		e.model.Store(m)
		e.logger.Info().
			Int("extracted", extracted).
			Msg("Degenerate factorization, serving popularity fallback")
		return nil
	}

	m.userFactors = userFactors
	m.itemFactors = itemFactors
	m.factors = extracted
	m.fitted = true
	e.model.Store(m)

	e.logger.Info().
		Int("learners", len(m.learners)).
		Int("courses", len(m.courses)).
		Int("factors", extracted).
		Int("interactions", len(interactions)).
		Dur("duration", e.now().Sub(start)).
		Msg("Collaborative model fitted")
	return nil
}

// Recommend returns up to n courses for the learner, scores normalized to
// [0,1]. Unknown learners get the popularity fallback with metadata
// algorithm=popularity_fallback.
func (e *CollaborativeEngine) Recommend(ctx context.Context, learnerID string, n int, excludeKnown bool) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := e.model.Load()
	if m == nil {
		return nil, ErrNotFitted
	}
	if n <= 0 {
		return []Recommendation{}, nil
	}

	uIdx, knownLearner := 0, false
	if m.fitted {
		uIdx, knownLearner = m.learnerIndex[learnerID]
	}
	if !m.fitted || !knownLearner {
		return e.popularityFallback(m, learnerID, n, excludeKnown), nil
	}

	exclude := map[string]struct{}{}
	if excludeKnown {
		exclude = m.known[learnerID]
	}

	raw := make(map[string]float64, len(m.courses))
	for j, courseID := range m.courses {
		if _, skip := exclude[courseID]; skip {
			continue
		}
		var dot float64
		for f := 0; f < m.factors; f++ {
			dot += m.userFactors[uIdx][f] * m.itemFactors[j][f]
		}
		raw[courseID] = dot + m.globalMean
	}
	if len(raw) == 0 {
		return []Recommendation{}, nil
	}

	normalized := normalizeScores(raw)
	ranked := rankScores(normalized)
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
			Score:    round4(clamp01(normalized[courseID])),
			Reason:   "Recommended based on learners with similar interests",
			Metadata: map[string]any{
				"algorithm":  "collaborative_filtering",
				"category":   course.Category,
				"difficulty": course.Difficulty,
			},
		})
	}
	return results, nil
}

// popularityFallback ranks courses by enrollment count with a fixed score.
func (e *CollaborativeEngine) popularityFallback(m *collabModel, learnerID string, n int, excludeKnown bool) []Recommendation {
	exclude := map[string]struct{}{}
	if excludeKnown {
		exclude = m.known[learnerID]
	}

	results := make([]Recommendation, 0, n)
	for _, entry := range m.popularity {
		if _, skip := exclude[entry.courseID]; skip {
			continue
		}
		course := m.catalog[entry.courseID]
		results = append(results, Recommendation{
			ItemID:   entry.courseID,
			ItemType: ItemCourse,
			Title:    course.Title,
			Score:    0.7,
			Reason:   "Popular with other learners",
			Metadata: map[string]any{
				"algorithm":   "popularity_fallback",
				"enrollments": entry.count,
			},
		})
		if len(results) >= n {
			break
		}
	}
	return results
}

// SimilarLearners returns up to n learners ranked by cosine similarity of
// latent vectors, self excluded. Unknown learners yield an empty list.
func (e *CollaborativeEngine) SimilarLearners(ctx context.Context, learnerID string, n int) ([]LearnerSimilarity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := e.model.Load()
	if m == nil {
		return nil, ErrNotFitted
	}
	if !m.fitted || n <= 0 {
		return []LearnerSimilarity{}, nil
	}
	uIdx, ok := m.learnerIndex[learnerID]
	if !ok {
		return []LearnerSimilarity{}, nil
	}

	similarities := make([]LearnerSimilarity, 0, len(m.learners)-1)
	for i, other := range m.learners {
		if other == learnerID {
			continue
		}
		similarities = append(similarities, LearnerSimilarity{
			LearnerID:  other,
			Similarity: cosineSimilarity(m.userFactors[uIdx], m.userFactors[i]),
		})
	}
	sort.Slice(similarities, func(i, j int) bool {
		if similarities[i].Similarity != similarities[j].Similarity {
			return similarities[i].Similarity > similarities[j].Similarity
		}
		return similarities[i].LearnerID < similarities[j].LearnerID
	})
	if len(similarities) > n {
		similarities = similarities[:n]
	}
	return similarities, nil
}

// InteractionCount reports how many interaction records the learner had at
// fit time. Zero for unknown learners or a never-fitted engine.
func (e *CollaborativeEngine) InteractionCount(learnerID string) int {
	m := e.model.Load()
	if m == nil {
		return 0
	}
	return m.interactionCount[learnerID]
}

// IsFitted reports whether a usable factor model is being served.
func (e *CollaborativeEngine) IsFitted() bool {
	m := e.model.Load()
	return m != nil && m.fitted
}

// IsStale reports whether the model should be refitted. A never-fitted
// engine is always stale.
func (e *CollaborativeEngine) IsStale() bool {
	m := e.model.Load()
	return m == nil || e.now().Sub(m.fittedAt) > e.maxAge
}

// Status reports the current model for health endpoints.
func (e *CollaborativeEngine) Status() FitStatus {
	m := e.model.Load()
	if m == nil {
		return FitStatus{}
	}
	return FitStatus{
		Fitted:    m.fitted,
		FittedAt:  m.fittedAt,
		Learners:  len(m.learners),
		Items:     len(m.courses),
		Factors:   m.factors,
		Fallbacks: len(m.popularity) > 0,
	}
}

// rankScores orders ids by descending score, ties broken by id.
func rankScores(scores map[string]float64) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(ids []string) map[string]int {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return index
}
