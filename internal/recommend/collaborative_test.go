// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/snapshot"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// collabFixture builds a snapshot with 5 learners across 3 courses, enough
// interactions for a real factorization.
func collabFixture() snapshot.Data {
	courses := []snapshot.Course{
		{ID: "course-a", TenantID: "t1", Title: "Intro to Go", Category: "programming", Difficulty: "beginner", Published: true},
		{ID: "course-b", TenantID: "t1", Title: "Advanced Go", Category: "programming", Difficulty: "advanced", Published: true},
		{ID: "course-c", TenantID: "t1", Title: "Statistics", Category: "math", Difficulty: "intermediate", Published: true},
	}
	enrollments := []snapshot.Enrollment{
		{LearnerID: "u1", CourseID: "course-a", Status: snapshot.StatusCompleted, Progress: 100, EnrolledAt: baseTime},
		{LearnerID: "u1", CourseID: "course-b", Status: snapshot.StatusActive, Progress: 60, EnrolledAt: baseTime},
		{LearnerID: "u2", CourseID: "course-a", Status: snapshot.StatusCompleted, Progress: 100, EnrolledAt: baseTime},
		{LearnerID: "u2", CourseID: "course-b", Status: snapshot.StatusActive, Progress: 80, EnrolledAt: baseTime},
		{LearnerID: "u3", CourseID: "course-c", Status: snapshot.StatusActive, Progress: 50, EnrolledAt: baseTime},
		{LearnerID: "u4", CourseID: "course-a", Status: snapshot.StatusActive, Progress: 30, EnrolledAt: baseTime},
		{LearnerID: "u5", CourseID: "course-c", Status: snapshot.StatusCompleted, Progress: 100, EnrolledAt: baseTime},
	}
	return snapshot.Data{Courses: courses, Enrollments: enrollments}
}

func newCollabEngine(t *testing.T, data snapshot.Data) *CollaborativeEngine {
	t.Helper()
	return NewCollaborativeEngine(DefaultConfig(), snapshot.NewMemoryWith(data), zerolog.Nop())
}

func TestInteractionScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		progress  float64
		completed bool
		want      float64
	}{
		{"enrollment only", 0, false, 2.5},
		{"half progress", 50, false, 3.25},
		{"full progress not completed", 100, false, 4.0},
		{"completed caps at five", 100, true, 5.0},
		{"completed mid progress", 50, true, 4.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InteractionScore(tt.progress, tt.completed)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("InteractionScore(%v, %v) = %v, want %v", tt.progress, tt.completed, got, tt.want)
			}
		})
	}
}

func TestCollaborativeNeverFitted(t *testing.T) {
	t.Parallel()

	e := newCollabEngine(t, collabFixture())

	if _, err := e.Recommend(context.Background(), "u1", 5, true); err != ErrNotFitted {
		t.Errorf("Recommend before fit: err = %v, want ErrNotFitted", err)
	}
	if !e.IsStale() {
		t.Error("never-fitted engine should be stale")
	}
}

func TestCollaborativeFitAndRecommend(t *testing.T) {
	t.Parallel()

	e := newCollabEngine(t, collabFixture())
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !e.IsFitted() {
		t.Fatal("engine should be fitted with 7 interactions")
	}

	recs, err := e.Recommend(ctx, "u1", 5, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, rec := range recs {
		if rec.Score < 0 || rec.Score > 1 {
			t.Errorf("score %v out of [0,1] for %s", rec.Score, rec.ItemID)
		}
		if rec.ItemID == "course-a" || rec.ItemID == "course-b" {
			t.Errorf("known course %s not excluded", rec.ItemID)
		}
		if rec.Metadata["algorithm"] != "collaborative_filtering" {
			t.Errorf("algorithm = %v, want collaborative_filtering", rec.Metadata["algorithm"])
		}
	}
}

func TestCollaborativeColdStartFallback(t *testing.T) {
	t.Parallel()

	e := newCollabEngine(t, collabFixture())
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// u6 has never interacted.
	recs, err := e.Recommend(ctx, "u6", 3, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected popularity fallback, got empty list")
	}
	for _, rec := range recs {
		if rec.Metadata["algorithm"] != "popularity_fallback" {
			t.Errorf("algorithm = %v, want popularity_fallback", rec.Metadata["algorithm"])
		}
		if rec.Score != 0.7 {
			t.Errorf("fallback score = %v, want 0.7", rec.Score)
		}
		if rec.Reason != "Popular with other learners" {
			t.Errorf("fallback reason = %q", rec.Reason)
		}
	}
	// Courses a and c have 3 resp. 2 enrollments; a must rank first.
	if recs[0].ItemID != "course-a" {
		t.Errorf("top popular course = %s, want course-a", recs[0].ItemID)
	}
}

func TestCollaborativeTooFewInteractions(t *testing.T) {
	t.Parallel()

	data := collabFixture()
	data.Enrollments = data.Enrollments[:3] // below the default minimum of 5
	e := newCollabEngine(t, data)
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if e.IsFitted() {
		t.Error("engine should stay unfitted below the interaction minimum")
	}

	recs, err := e.Recommend(ctx, "u1", 3, false)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected popularity fallback from unfitted engine")
	}
	if recs[0].Metadata["algorithm"] != "popularity_fallback" {
		t.Errorf("algorithm = %v, want popularity_fallback", recs[0].Metadata["algorithm"])
	}
}

func TestCollaborativeSimilarLearners(t *testing.T) {
	t.Parallel()

	e := newCollabEngine(t, collabFixture())
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	similar, err := e.SimilarLearners(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("SimilarLearners() error = %v", err)
	}
	if len(similar) == 0 {
		t.Fatal("expected similar learners")
	}
	for _, s := range similar {
		if s.LearnerID == "u1" {
			t.Error("self must be excluded from similar learners")
		}
	}
	// u2 shares u1's exact course pattern and must rank first.
	if similar[0].LearnerID != "u2" {
		t.Errorf("most similar learner = %s, want u2", similar[0].LearnerID)
	}

	// Unknown learner yields an empty list, not an error.
	none, err := e.SimilarLearners(ctx, "ghost", 3)
	if err != nil {
		t.Fatalf("SimilarLearners(ghost) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("SimilarLearners(ghost) returned %d, want 0", len(none))
	}
}

func TestCollaborativeInteractionCount(t *testing.T) {
	t.Parallel()

	e := newCollabEngine(t, collabFixture())
	ctx := context.Background()

	if got := e.InteractionCount("u1"); got != 0 {
		t.Errorf("InteractionCount before fit = %d, want 0", got)
	}
	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	tests := []struct {
		learnerID string
		want      int
	}{
		{"u1", 2},
		{"u3", 1},
		{"ghost", 0},
	}
	for _, tt := range tests {
		if got := e.InteractionCount(tt.learnerID); got != tt.want {
			t.Errorf("InteractionCount(%s) = %d, want %d", tt.learnerID, got, tt.want)
		}
	}
}

func TestCollaborativeDeterministicFit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	run := func() []Recommendation {
		e := newCollabEngine(t, collabFixture())
		if err := e.Fit(ctx, ""); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		recs, err := e.Recommend(ctx, "u4", 3, true)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		return recs
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("fit not deterministic: %d vs %d results", len(first), len(second))
	}
	for i := range first {
		if first[i].ItemID != second[i].ItemID || first[i].Score != second[i].Score {
			t.Errorf("result %d differs across fits: %+v vs %+v", i, first[i], second[i])
		}
	}
}
