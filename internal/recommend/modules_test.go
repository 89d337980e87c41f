// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/snapshot"
)

func modulesFixture() snapshot.Data {
	return snapshot.Data{
		Courses: []snapshot.Course{
			{ID: "go-course", TenantID: "t1", Title: "Go Fundamentals", Free: true, Published: true},
		},
		Modules: []snapshot.Module{
			{ID: "mod-basics", CourseID: "go-course", Title: "Basics", Position: 1},
			{ID: "mod-concurrency", CourseID: "go-course", Title: "Concurrency", Position: 2},
			{ID: "mod-advanced", CourseID: "go-course", Title: "Advanced Patterns", Position: 3},
		},
		ModuleSkills: []snapshot.ModuleSkill{
			{ModuleID: "mod-basics", SkillID: "go", SkillName: "Go", Contribution: snapshot.ContributionIntroduces, ProficiencyGained: 20, Primary: true},
			{ModuleID: "mod-concurrency", SkillID: "go", SkillName: "Go", Contribution: snapshot.ContributionDevelops, ProficiencyGained: 30},
			{ModuleID: "mod-advanced", SkillID: "go", SkillName: "Go", Contribution: snapshot.ContributionMasters, ProficiencyGained: 40},
			{ModuleID: "mod-concurrency", SkillID: "testing", SkillName: "Testing", Contribution: snapshot.ContributionReinforces, ProficiencyGained: 10},
		},
		ContentItems: []snapshot.ContentItem{
			{ID: "item-basics", ModuleID: "mod-basics", Required: true, Published: true},
			{ID: "item-concurrency", ModuleID: "mod-concurrency", Required: true, Published: true},
			{ID: "item-advanced", ModuleID: "mod-advanced", Required: true, Published: true},
		},
		ContentCompletions: []snapshot.ContentCompletion{
			{LearnerID: "veteran", ModuleID: "mod-basics", ContentItemID: "item-basics"},
			{LearnerID: "peer-1", ModuleID: "mod-basics", ContentItemID: "item-basics"},
			{LearnerID: "peer-2", ModuleID: "mod-basics", ContentItemID: "item-basics"},
		},
		PrerequisiteEdges: []snapshot.PrerequisiteEdge{
			{ModuleID: "mod-concurrency", PrerequisiteID: "mod-basics", Kind: snapshot.EdgeRequired},
			{ModuleID: "mod-advanced", PrerequisiteID: "mod-concurrency", Kind: snapshot.EdgeRequired},
		},
		SkillScores: []snapshot.SkillScore{
			{LearnerID: "novice", SkillID: "go", Proficiency: 0},
			{LearnerID: "novice", SkillID: "testing", Proficiency: 50},
			{LearnerID: "veteran", SkillID: "go", Proficiency: 90},
			{LearnerID: "peer-1", SkillID: "go", Proficiency: 5},
			{LearnerID: "peer-2", SkillID: "go", Proficiency: 10},
		},
	}
}

func newModuleRecommender(t *testing.T, data snapshot.Data) *ModuleRecommender {
	t.Helper()
	provider := snapshot.NewMemoryWith(data)
	return NewModuleRecommender(DefaultConfig(), provider, snapshot.NewGraphChecker(provider), zerolog.Nop())
}

func TestSkillScore(t *testing.T) {
	t.Parallel()

	m := newModuleRecommender(t, modulesFixture())
	mod := snapshot.Module{ID: "m"}

	tests := []struct {
		name       string
		skill      snapshot.ModuleSkill
		learner    map[string]int
		targets    map[string]struct{}
		wantScore  float64
		wantReason string
	}{
		{
			name:       "full gap develops",
			skill:      snapshot.ModuleSkill{ModuleID: "m", SkillID: "go", SkillName: "Go", Contribution: snapshot.ContributionDevelops, ProficiencyGained: 20},
			learner:    map[string]int{},
			wantScore:  0.20,
			wantReason: "Builds your Go skills",
		},
		{
			name:       "gap caps the gain",
			skill:      snapshot.ModuleSkill{ModuleID: "m", SkillID: "go", SkillName: "Go", Contribution: snapshot.ContributionDevelops, ProficiencyGained: 20},
			learner:    map[string]int{"go": 90},
			wantScore:  0.10,
			wantReason: "Develops 1 skills",
		},
		{
			name:       "target skill boost",
			skill:      snapshot.ModuleSkill{ModuleID: "m", SkillID: "go", SkillName: "Go", Contribution: snapshot.ContributionDevelops, ProficiencyGained: 20},
			learner:    map[string]int{},
			targets:    map[string]struct{}{"go": {}},
			wantScore:  0.30,
			wantReason: "Builds your Go skills",
		},
		{
			name:       "primary boost",
			skill:      snapshot.ModuleSkill{ModuleID: "m", SkillID: "go", SkillName: "Go", Contribution: snapshot.ContributionDevelops, ProficiencyGained: 20, Primary: true},
			learner:    map[string]int{},
			wantScore:  0.24,
			wantReason: "Builds your Go skills",
		},
		{
			name:       "masters contribution weight",
			skill:      snapshot.ModuleSkill{ModuleID: "m", SkillID: "go", SkillName: "Go", Contribution: snapshot.ContributionMasters, ProficiencyGained: 20},
			learner:    map[string]int{},
			wantScore:  0.22,
			wantReason: "Builds your Go skills",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := &moduleSignals{
				skillsByModule: map[string][]snapshot.ModuleSkill{"m": {tt.skill}},
				learnerSkills:  tt.learner,
				targetSkills:   tt.targets,
			}
			score, reason := m.skillScore(mod, signals)
			if math.Abs(score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestModuleRecommend(t *testing.T) {
	t.Parallel()

	m := newModuleRecommender(t, modulesFixture())

	recs, err := m.Recommend(context.Background(), ModuleRequest{
		LearnerID: "novice",
		TenantID:  "t1",
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("Recommend returned %d modules, want 3", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Error("recommendations not sorted by descending score")
		}
	}
	for _, rec := range recs {
		if rec.ItemType != ItemModule {
			t.Errorf("ItemType = %v, want module", rec.ItemType)
		}
		if rec.Metadata["algorithm"] != "module_recommender" {
			t.Errorf("algorithm = %v, want module_recommender", rec.Metadata["algorithm"])
		}
		if rec.Metadata["course_id"] != "go-course" {
			t.Errorf("course_id = %v, want go-course", rec.Metadata["course_id"])
		}
		if rec.Metadata["course_title"] != "Go Fundamentals" {
			t.Errorf("course_title = %v", rec.Metadata["course_title"])
		}
	}
}

func TestModuleRecommendExcludesCompleted(t *testing.T) {
	t.Parallel()

	m := newModuleRecommender(t, modulesFixture())

	recs, err := m.Recommend(context.Background(), ModuleRequest{
		LearnerID:        "veteran",
		TenantID:         "t1",
		Limit:            10,
		ExcludeCompleted: true,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, rec := range recs {
		if rec.ItemID == "mod-basics" {
			t.Error("completed module mod-basics not excluded")
		}
	}
}

func TestModuleRecommendPrerequisites(t *testing.T) {
	t.Parallel()

	m := newModuleRecommender(t, modulesFixture())

	// The novice completed nothing: only the prerequisite-free first
	// module is eligible.
	recs, err := m.Recommend(context.Background(), ModuleRequest{
		LearnerID:          "novice",
		TenantID:           "t1",
		Limit:              10,
		CheckPrerequisites: true,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 || recs[0].ItemID != "mod-basics" {
		t.Fatalf("Recommend = %v, want only mod-basics", recs)
	}

	// The veteran finished the basics: the next module unlocks.
	recs, err = m.Recommend(context.Background(), ModuleRequest{
		LearnerID:          "veteran",
		TenantID:           "t1",
		Limit:              10,
		CheckPrerequisites: true,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	ids := make(map[string]bool)
	for _, rec := range recs {
		ids[rec.ItemID] = true
	}
	if !ids["mod-concurrency"] {
		t.Error("mod-concurrency should be eligible after completing basics")
	}
	if ids["mod-advanced"] {
		t.Error("mod-advanced requires mod-concurrency, which is incomplete")
	}
}

func TestModuleRecommendCourseScope(t *testing.T) {
	t.Parallel()

	m := newModuleRecommender(t, modulesFixture())

	recs, err := m.Recommend(context.Background(), ModuleRequest{
		LearnerID: "novice",
		TenantID:  "t1",
		CourseID:  "go-course",
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("limit not applied: got %d modules, want 2", len(recs))
	}

	// Unknown course yields nothing.
	recs, err = m.Recommend(context.Background(), ModuleRequest{
		LearnerID: "novice",
		TenantID:  "t1",
		CourseID:  "ghost-course",
		Limit:     5,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Recommend(ghost-course) = %v, want empty", recs)
	}
}

func TestSkillGapAnalysis(t *testing.T) {
	t.Parallel()

	m := newModuleRecommender(t, modulesFixture())

	gaps, err := m.SkillGapAnalysis(context.Background(), "novice", []string{"go", "testing"})
	if err != nil {
		t.Fatalf("SkillGapAnalysis() error = %v", err)
	}
	if len(gaps) != 2 {
		t.Fatalf("gaps = %d, want 2", len(gaps))
	}

	// Sorted by descending gap: go (100) before testing (50).
	if gaps[0].SkillID != "go" || gaps[0].Gap != 100 {
		t.Errorf("gaps[0] = %+v, want go with gap 100", gaps[0])
	}
	if gaps[0].CurrentLevel != "novice" {
		t.Errorf("go level = %q, want novice", gaps[0].CurrentLevel)
	}
	if gaps[1].SkillID != "testing" || gaps[1].Gap != 50 {
		t.Errorf("gaps[1] = %+v, want testing with gap 50", gaps[1])
	}
	if gaps[1].CurrentLevel != "developing" {
		t.Errorf("testing level = %q, want developing", gaps[1].CurrentLevel)
	}

	// Modules for go, ranked by proficiency gained.
	mods := gaps[0].RecommendedModules
	if len(mods) != 3 {
		t.Fatalf("go recommended modules = %d, want 3", len(mods))
	}
	if mods[0].ModuleID != "mod-advanced" || mods[0].ProficiencyGained != 40 {
		t.Errorf("top go module = %+v, want mod-advanced/40", mods[0])
	}
	if mods[0].CourseTitle != "Go Fundamentals" {
		t.Errorf("course title = %q", mods[0].CourseTitle)
	}
}

func TestProficiencyLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		proficiency int
		want        string
	}{
		{0, "novice"},
		{29, "novice"},
		{30, "developing"},
		{59, "developing"},
		{60, "proficient"},
		{84, "proficient"},
		{85, "expert"},
		{100, "expert"},
	}
	for _, tt := range tests {
		if got := ProficiencyLevel(tt.proficiency); got != tt.want {
			t.Errorf("ProficiencyLevel(%d) = %q, want %q", tt.proficiency, got, tt.want)
		}
	}
}
