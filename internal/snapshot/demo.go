// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package snapshot

import "time"

// DemoData returns a small deterministic learning dataset for local
// development and screenshots. It covers every signal the engines read:
// cross-category courses, a skill-mapped module graph, and enrollment
// patterns ranging from healthy to clearly at risk.
func DemoData(now time.Time) Data {
	month := 30 * 24 * time.Hour
	start := now.Add(-3 * month)

	enroll := func(learner, course string, status EnrollmentStatus, progress float64, daysIdle int) Enrollment {
		return Enrollment{
			LearnerID:      learner,
			CourseID:       course,
			Status:         status,
			Progress:       progress,
			EnrolledAt:     start,
			LastActivityAt: now.Add(-time.Duration(daysIdle) * 24 * time.Hour),
		}
	}

	return Data{
		Courses: []Course{
			{ID: "go-fundamentals", TenantID: "demo", Title: "Go Fundamentals", Category: "programming", Difficulty: "beginner", Tags: []string{"go", "backend"}, DurationHours: 12, Published: true, Free: true},
			{ID: "go-services", TenantID: "demo", Title: "Building Go Services", Category: "programming", Difficulty: "intermediate", Tags: []string{"go", "backend", "http"}, DurationHours: 20, Published: true},
			{ID: "sql-essentials", TenantID: "demo", Title: "SQL Essentials", Category: "data", Difficulty: "beginner", Tags: []string{"sql", "databases"}, DurationHours: 10, Published: true, Free: true},
			{ID: "data-modeling", TenantID: "demo", Title: "Data Modeling", Category: "data", Difficulty: "intermediate", Tags: []string{"sql", "design"}, DurationHours: 16, Published: true},
			{ID: "stats-basics", TenantID: "demo", Title: "Statistics Basics", Category: "math", Difficulty: "beginner", Tags: []string{"probability"}, DurationHours: 14, Published: true},
			{ID: "ml-intro", TenantID: "demo", Title: "Intro to Machine Learning", Category: "math", Difficulty: "advanced", Tags: []string{"probability", "python"}, DurationHours: 24, Published: true},
		},
		Enrollments: []Enrollment{
			// ada: the strong learner, done with Go basics and deep into services.
			enroll("ada", "go-fundamentals", StatusCompleted, 100, 30),
			enroll("ada", "go-services", StatusActive, 70, 1),
			// grace: data track, steady progress.
			enroll("grace", "sql-essentials", StatusCompleted, 100, 20),
			enroll("grace", "data-modeling", StatusActive, 45, 2),
			// linus: overlaps ada on Go, just started.
			enroll("linus", "go-fundamentals", StatusActive, 35, 3),
			// edsger: stalled and failing assessments, the at-risk profile.
			{LearnerID: "edsger", CourseID: "stats-basics", Status: StatusActive, Progress: 8,
				EnrolledAt: start, LastActivityAt: now.Add(-25 * 24 * time.Hour),
				ContentSeen: 2, ContentCompleted: 1, AssessmentAttempts: 4, AssessmentFailures: 3},
			// barbara: breadth across tracks, links the categories together.
			enroll("barbara", "go-fundamentals", StatusCompleted, 100, 45),
			enroll("barbara", "sql-essentials", StatusCompleted, 100, 15),
			enroll("barbara", "stats-basics", StatusActive, 60, 2),
			// donald: math track.
			enroll("donald", "stats-basics", StatusCompleted, 100, 10),
			enroll("donald", "ml-intro", StatusActive, 25, 4),
		},
		Modules: []Module{
			{ID: "gof-syntax", CourseID: "go-fundamentals", Title: "Syntax and Types", Position: 1},
			{ID: "gof-funcs", CourseID: "go-fundamentals", Title: "Functions and Methods", Position: 2},
			{ID: "gof-conc", CourseID: "go-fundamentals", Title: "Concurrency", Position: 3},
			{ID: "gos-http", CourseID: "go-services", Title: "HTTP Servers", Position: 1},
			{ID: "gos-obs", CourseID: "go-services", Title: "Observability", Position: 2},
		},
		ModuleSkills: []ModuleSkill{
			{ModuleID: "gof-syntax", SkillID: "go", SkillName: "Go", Contribution: ContributionIntroduces, ProficiencyGained: 15, Primary: true},
			{ModuleID: "gof-funcs", SkillID: "go", SkillName: "Go", Contribution: ContributionDevelops, ProficiencyGained: 20, Primary: true},
			{ModuleID: "gof-conc", SkillID: "go", SkillName: "Go", Contribution: ContributionDevelops, ProficiencyGained: 25},
			{ModuleID: "gof-conc", SkillID: "concurrency", SkillName: "Concurrency", Contribution: ContributionIntroduces, ProficiencyGained: 20, Primary: true},
			{ModuleID: "gos-http", SkillID: "go", SkillName: "Go", Contribution: ContributionReinforces, ProficiencyGained: 10},
			{ModuleID: "gos-http", SkillID: "http", SkillName: "HTTP", Contribution: ContributionIntroduces, ProficiencyGained: 25, Primary: true},
			{ModuleID: "gos-obs", SkillID: "observability", SkillName: "Observability", Contribution: ContributionIntroduces, ProficiencyGained: 20, Primary: true},
		},
		ContentItems: []ContentItem{
			{ID: "gof-syntax-1", ModuleID: "gof-syntax", Required: true, Published: true},
			{ID: "gof-funcs-1", ModuleID: "gof-funcs", Required: true, Published: true},
			{ID: "gof-conc-1", ModuleID: "gof-conc", Required: true, Published: true},
			{ID: "gos-http-1", ModuleID: "gos-http", Required: true, Published: true},
			{ID: "gos-obs-1", ModuleID: "gos-obs", Required: true, Published: true},
		},
		ContentCompletions: []ContentCompletion{
			{LearnerID: "ada", ModuleID: "gof-syntax", ContentItemID: "gof-syntax-1"},
			{LearnerID: "ada", ModuleID: "gof-funcs", ContentItemID: "gof-funcs-1"},
			{LearnerID: "ada", ModuleID: "gof-conc", ContentItemID: "gof-conc-1"},
			{LearnerID: "ada", ModuleID: "gos-http", ContentItemID: "gos-http-1"},
			{LearnerID: "linus", ModuleID: "gof-syntax", ContentItemID: "gof-syntax-1"},
			{LearnerID: "barbara", ModuleID: "gof-syntax", ContentItemID: "gof-syntax-1"},
			{LearnerID: "barbara", ModuleID: "gof-funcs", ContentItemID: "gof-funcs-1"},
			{LearnerID: "barbara", ModuleID: "gof-conc", ContentItemID: "gof-conc-1"},
		},
		PrerequisiteEdges: []PrerequisiteEdge{
			{ModuleID: "gof-funcs", PrerequisiteID: "gof-syntax", Kind: EdgeRequired},
			{ModuleID: "gof-conc", PrerequisiteID: "gof-funcs", Kind: EdgeRequired},
			{ModuleID: "gos-obs", PrerequisiteID: "gos-http", Kind: EdgeRecommended},
		},
		SkillScores: []SkillScore{
			{LearnerID: "ada", SkillID: "go", Proficiency: 75},
			{LearnerID: "ada", SkillID: "http", Proficiency: 40},
			{LearnerID: "linus", SkillID: "go", Proficiency: 20},
			{LearnerID: "barbara", SkillID: "go", Proficiency: 65},
			{LearnerID: "barbara", SkillID: "concurrency", Proficiency: 35},
			{LearnerID: "grace", SkillID: "sql", Proficiency: 70},
		},
	}
}
