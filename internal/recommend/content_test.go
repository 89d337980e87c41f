// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/snapshot"
)

func contentFixture() snapshot.Data {
	courses := []snapshot.Course{
		{ID: "go-1", TenantID: "t1", Title: "Intro to Go", Category: "Programming", Tags: []string{"go", "backend"}, Difficulty: "beginner", DurationHours: 10, Published: true},
		{ID: "go-2", TenantID: "t1", Title: "Advanced Go", Category: "programming", Tags: []string{"go", "concurrency"}, Difficulty: "advanced", DurationHours: 20, Published: true},
		{ID: "stats-1", TenantID: "t1", Title: "Statistics", Category: "math", Tags: []string{"probability"}, Difficulty: "intermediate", DurationHours: 15, Published: true},
		{ID: "art-1", TenantID: "t1", Title: "Watercolors", Category: "art", Tags: []string{"painting"}, Difficulty: "beginner", DurationHours: 5, Published: true},
	}
	enrollments := []snapshot.Enrollment{
		{LearnerID: "u1", CourseID: "go-1", Status: snapshot.StatusCompleted, Progress: 100, EnrolledAt: baseTime},
		{LearnerID: "u2", CourseID: "art-1", Status: snapshot.StatusActive, Progress: 10, EnrolledAt: baseTime},
	}
	return snapshot.Data{Courses: courses, Enrollments: enrollments}
}

func newContentEngine(t *testing.T, data snapshot.Data) *ContentEngine {
	t.Helper()
	return NewContentEngine(DefaultConfig(), snapshot.NewMemoryWith(data), zerolog.Nop())
}

func TestBuildVocabularyDeterministic(t *testing.T) {
	t.Parallel()

	courses := contentFixture().Courses

	first := buildVocabulary(courses)
	second := buildVocabulary(courses)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("vocabulary not deterministic:\n%v\n%v", first, second)
	}

	want := []string{
		"cat_art", "cat_math", "cat_programming",
		"tag_backend", "tag_concurrency", "tag_go", "tag_painting", "tag_probability",
		"diff_advanced", "diff_beginner", "diff_intermediate",
		"duration_normalized",
	}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("vocabulary = %v, want %v", first, want)
	}
}

func TestContentRecommendSimilarCategory(t *testing.T) {
	t.Parallel()

	e := newContentEngine(t, contentFixture())
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !e.IsFitted() {
		t.Fatal("engine should be fitted with 4 courses")
	}

	// u1 completed go-1; the other programming course must outrank the
	// art course.
	recs, err := e.Recommend(ctx, "u1", 3, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	if recs[0].ItemID != "go-2" {
		t.Errorf("top recommendation = %s, want go-2", recs[0].ItemID)
	}
	for _, rec := range recs {
		if rec.ItemID == "go-1" {
			t.Error("known course go-1 not excluded")
		}
		if rec.Score < 0 || rec.Score > 1 {
			t.Errorf("score %v out of [0,1]", rec.Score)
		}
		if rec.Metadata["algorithm"] != "content_based" {
			t.Errorf("algorithm = %v, want content_based", rec.Metadata["algorithm"])
		}
	}
}

func TestContentDiversityFallback(t *testing.T) {
	t.Parallel()

	e := newContentEngine(t, contentFixture())
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// u2's only enrollment is below the engagement threshold. With n=6 the
	// fallback fills to n/2: both programming courses plus stats.
	recs, err := e.Recommend(ctx, "u2", 6, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := ids(recs); !equalStrings(got, []string{"go-1", "go-2", "stats-1"}) {
		t.Fatalf("fallback = %v, want [go-1 go-2 stats-1]", got)
	}
	for _, rec := range recs {
		if rec.Metadata["algorithm"] != "diversity_fallback" {
			t.Errorf("algorithm = %v, want diversity_fallback", rec.Metadata["algorithm"])
		}
		if rec.Score != 0.5 {
			t.Errorf("fallback score = %v, want 0.5", rec.Score)
		}
		if rec.ItemID == "art-1" {
			t.Error("known course art-1 not excluded")
		}
	}

	// Unseen categories are still admitted past the half-count target.
	recs, err = e.Recommend(ctx, "u2", 2, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := ids(recs); !equalStrings(got, []string{"go-1", "stats-1"}) {
		t.Errorf("fallback = %v, want [go-1 stats-1]", got)
	}
}

// A single-category catalog must still fill toward half the requested
// count instead of stopping at one course.
func TestContentDiversityFallbackRepeatedCategory(t *testing.T) {
	t.Parallel()

	data := snapshot.Data{
		Courses: []snapshot.Course{
			{ID: "x-1", Title: "X One", Category: "x", Difficulty: "beginner", Published: true},
			{ID: "x-2", Title: "X Two", Category: "x", Difficulty: "beginner", Published: true},
			{ID: "x-3", Title: "X Three", Category: "x", Difficulty: "intermediate", Published: true},
			{ID: "x-4", Title: "X Four", Category: "x", Difficulty: "advanced", Published: true},
		},
	}
	e := newContentEngine(t, data)
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	recs, err := e.Recommend(ctx, "nobody", 10, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("fallback returned %d courses, want the whole 4-course catalog", len(recs))
	}

	recs, err = e.Recommend(ctx, "nobody", 4, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("fallback returned %d courses for n=4, want n/2 = 2", len(recs))
	}
}

func ids(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.ItemID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestContentTooFewCourses(t *testing.T) {
	t.Parallel()

	data := contentFixture()
	data.Courses = data.Courses[:2]
	e := newContentEngine(t, data)
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if e.IsFitted() {
		t.Error("engine should stay unfitted below the course minimum")
	}

	recs, err := e.Recommend(ctx, "u1", 3, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("unfitted engine returned %d results, want 0", len(recs))
	}
}

func TestSimilarCourses(t *testing.T) {
	t.Parallel()

	e := newContentEngine(t, contentFixture())
	ctx := context.Background()

	if err := e.Fit(ctx, ""); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	similar, err := e.SimilarCourses(ctx, "go-1", 2)
	if err != nil {
		t.Fatalf("SimilarCourses() error = %v", err)
	}
	if len(similar) != 2 {
		t.Fatalf("SimilarCourses returned %d, want 2", len(similar))
	}
	if similar[0].ItemID != "go-2" {
		t.Errorf("most similar to go-1 = %s, want go-2", similar[0].ItemID)
	}
	for _, rec := range similar {
		if rec.ItemID == "go-1" {
			t.Error("self must be excluded from similar courses")
		}
	}

	// Unknown id yields empty, not an error.
	none, err := e.SimilarCourses(ctx, "ghost", 2)
	if err != nil {
		t.Fatalf("SimilarCourses(ghost) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("SimilarCourses(ghost) returned %d, want 0", len(none))
	}
}

func TestContentNeverFitted(t *testing.T) {
	t.Parallel()

	e := newContentEngine(t, contentFixture())
	if _, err := e.Recommend(context.Background(), "u1", 3, true); err != ErrNotFitted {
		t.Errorf("Recommend before fit: err = %v, want ErrNotFitted", err)
	}
}
