// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import "math"

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for zero vectors or mismatched lengths.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalizeScores rescales a score map to [0,1] using min-max normalization.
// A degenerate range (all scores equal) maps every score to 0.5.
func normalizeScores(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return scores
	}

	minScore := math.Inf(1)
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	normalized := make(map[string]float64, len(scores))
	scoreRange := maxScore - minScore
	if scoreRange == 0 {
		for id := range scores {
			normalized[id] = 0.5
		}
		return normalized
	}

	for id, s := range scores {
		normalized[id] = (s - minScore) / scoreRange
	}
	return normalized
}

// clamp01 bounds a score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round4 rounds a score to 4 decimal places, the precision exposed to
// callers for recommendation scores.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// round3 rounds to 3 decimal places, the precision used for risk scores.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
