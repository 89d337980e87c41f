// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

// Package recommend implements the personalization engine: collaborative
// filtering over enrollment interactions, content-based course similarity,
// hybrid blending of both signals, dropout risk scoring, skill-aware module
// recommendation and prerequisite-respecting sequence planning.
//
// Engines are dependency-injected service objects. Each fitted engine holds
// an immutable model snapshot behind an atomic pointer: Fit builds a complete
// new model and swaps it in only after all computation succeeds, so serving
// calls never observe partially rebuilt index maps. A failed fit leaves the
// previous snapshot intact.
//
// Insufficient data is not an error: an engine that cannot fit serves its
// documented fallback (popularity or category diversity) or an empty list.
// ErrNotFitted is returned only when Fit has never been attempted, so
// callers can distinguish "unfitted" from "no candidates matched".
package recommend
