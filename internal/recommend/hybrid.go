// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/snapshot"
)

// HybridBlender fuses collaborative and content signals with weights that
// adapt to the learner's history length. Learners with thin history lean on
// content similarity; established learners lean on collaborative filtering.
type HybridBlender struct {
	cfg HybridConfig

	collaborative *CollaborativeEngine
	content       *ContentEngine
	provider      snapshot.Provider
	logger        zerolog.Logger
}

// NewHybridBlender wires the blender over its two sub-engines.
func NewHybridBlender(cfg Config, collab *CollaborativeEngine, content *ContentEngine, p snapshot.Provider, logger zerolog.Logger) *HybridBlender {
	return &HybridBlender{
		cfg:           cfg.Hybrid,
		collaborative: collab,
		content:       content,
		provider:      p,
		logger:        logger.With().Str("component", "hybrid").Logger(),
	}
}

// Fit fits both sub-engines. The blender is usable if either succeeds; an
// error is returned only when both fail.
func (h *HybridBlender) Fit(ctx context.Context, tenantID string) error {
	errCollab := h.collaborative.Fit(ctx, tenantID)
	errContent := h.content.Fit(ctx, tenantID)

	if errCollab != nil && errContent != nil {
		return errors.Join(errCollab, errContent)
	}
	if errCollab != nil {
		h.logger.Warn().Err(errCollab).Msg("Collaborative fit failed, serving content only")
	}
	if errContent != nil {
		h.logger.Warn().Err(errContent).Msg("Content fit failed, serving collaborative only")
	}
	return nil
}

// weights picks the blend for a learner based on interaction history size.
func (h *HybridBlender) weights(interactionCount int) (collab, content float64) {
	if interactionCount < h.cfg.MinInteractionsForCollaborative {
		return 0.2, 0.8
	}
	return h.cfg.CollaborativeWeight, h.cfg.ContentWeight
}

type blendedItem struct {
	rec      Recommendation
	combined float64
	sources  []string
}

// Recommend merges up to 2n candidates from each sub-engine into the top-n
// by combined weighted score.
func (h *HybridBlender) Recommend(ctx context.Context, learnerID string, n int, excludeKnown bool) ([]Recommendation, error) {
	if n <= 0 {
		return []Recommendation{}, nil
	}

	enrollments, err := h.provider.LearnerEnrollments(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("loading learner enrollments: %w", err)
	}
	collabWeight, contentWeight := h.weights(len(enrollments))

	merged := make(map[string]*blendedItem)

	collabRecs, err := h.collaborative.Recommend(ctx, learnerID, 2*n, excludeKnown)
	if err != nil && !errors.Is(err, ErrNotFitted) {
		return nil, err
	}
	mergeSource(merged, collabRecs, "collaborative", collabWeight)

	contentRecs, err := h.content.Recommend(ctx, learnerID, 2*n, excludeKnown)
	if err != nil && !errors.Is(err, ErrNotFitted) {
		return nil, err
	}
	mergeSource(merged, contentRecs, "content", contentWeight)

	items := make([]*blendedItem, 0, len(merged))
	for _, item := range merged {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].combined != items[j].combined {
			return items[i].combined > items[j].combined
		}
		return items[i].rec.ItemID < items[j].rec.ItemID
	})
	if len(items) > n {
		items = items[:n]
	}

	results := make([]Recommendation, 0, len(items))
	for _, item := range items {
		rec := item.rec
		rec.Score = round4(clamp01(item.combined))
		rec.Reason = blendReason(item.sources)

		metadata := make(map[string]any, len(rec.Metadata)+2)
		for k, v := range rec.Metadata {
			metadata[k] = v
		}
		metadata["algorithm"] = "hybrid"
		metadata["sources"] = item.sources
		rec.Metadata = metadata

		results = append(results, rec)
	}
	return results, nil
}

// mergeSource folds one engine's candidates into the blend. The first-seen
// recommendation's title, type and metadata are retained.
func mergeSource(merged map[string]*blendedItem, recs []Recommendation, source string, weight float64) {
	for _, rec := range recs {
		item, ok := merged[rec.ItemID]
		if !ok {
			item = &blendedItem{rec: rec}
			merged[rec.ItemID] = item
		}
		item.combined += rec.Score * weight
		item.sources = append(item.sources, source)
	}
}

func blendReason(sources []string) string {
	if len(sources) > 1 {
		return "Highly recommended based on your interests and similar learners"
	}
	if len(sources) == 1 && sources[0] == "collaborative" {
		return "Recommended based on learners with similar interests"
	}
	return "Similar to courses you've engaged with"
}

// Explain produces a best-effort justification for recommending an item.
// Factors is empty when neither signal applies; this is advisory output,
// never an error.
func (h *HybridBlender) Explain(ctx context.Context, learnerID, itemID string) (Explanation, error) {
	explanation := Explanation{
		LearnerID: learnerID,
		ItemID:    itemID,
		Factors:   []ExplanationFactor{},
	}

	if h.collaborative.IsFitted() {
		similar, err := h.collaborative.SimilarLearners(ctx, learnerID, 5)
		if err != nil {
			return explanation, err
		}
		if len(similar) > 0 {
			peerSet := make(map[string]struct{}, len(similar))
			for _, s := range similar {
				peerSet[s.LearnerID] = struct{}{}
			}
			enrollments, err := h.provider.Enrollments(ctx, "")
			if err != nil {
				return explanation, err
			}
			enrolled := 0
			for _, en := range enrollments {
				if en.CourseID != itemID {
					continue
				}
				if _, ok := peerSet[en.LearnerID]; ok {
					enrolled++
				}
			}
			if enrolled > 0 {
				explanation.Factors = append(explanation.Factors, ExplanationFactor{
					Type:        "collaborative",
					Description: fmt.Sprintf("%d learners with similar interests enrolled in this course", enrolled),
					Weight:      h.cfg.CollaborativeWeight,
				})
			}
		}
	}

	if h.content.IsFitted() {
		enrollments, err := h.provider.LearnerEnrollments(ctx, learnerID)
		if err != nil {
			return explanation, err
		}
		engaged := make(map[string]struct{})
		for _, en := range enrollments {
			if en.Progress >= 50 {
				engaged[en.CourseID] = struct{}{}
			}
		}
		if len(engaged) > 0 {
			similar, err := h.content.SimilarCourses(ctx, itemID, 10)
			if err != nil {
				return explanation, err
			}
			var matching []string
			for _, rec := range similar {
				if _, ok := engaged[rec.ItemID]; ok {
					matching = append(matching, rec.Title)
				}
			}
			if len(matching) > 0 {
				titles := matching
				if len(titles) > 3 {
					titles = titles[:3]
				}
				explanation.Factors = append(explanation.Factors, ExplanationFactor{
					Type:           "content_based",
					Description:    fmt.Sprintf("Similar to %d course(s) you've engaged with", len(matching)),
					Weight:         h.cfg.ContentWeight,
					SimilarCourses: titles,
				})
			}
		}
	}

	return explanation, nil
}

// IsFitted reports whether either sub-engine can serve.
func (h *HybridBlender) IsFitted() bool {
	return h.collaborative.IsFitted() || h.content.IsFitted()
}

// IsStale reports whether either sub-engine wants a refit.
func (h *HybridBlender) IsStale() bool {
	return h.collaborative.IsStale() || h.content.IsStale()
}
