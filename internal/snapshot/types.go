// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

// Package snapshot defines the read-only data contract between the LMS data
// layer and the recommendation engine. Engines consume point-in-time
// snapshots of enrollment, progress, assessment and skill data; they never
// write back.
package snapshot

import "time"

// EnrollmentStatus is the lifecycle state of a learner's enrollment.
type EnrollmentStatus string

const (
	StatusActive    EnrollmentStatus = "active"
	StatusCompleted EnrollmentStatus = "completed"
	StatusDropped   EnrollmentStatus = "dropped"
)

// Enrollment is a learner's relationship to a course, with the progress and
// assessment aggregates the risk scorer consumes. LastActivityAt is the zero
// time when no activity has been recorded.
type Enrollment struct {
	LearnerID          string
	CourseID           string
	Status             EnrollmentStatus
	Progress           float64 // percent, 0-100
	EnrolledAt         time.Time
	LastActivityAt     time.Time
	ContentSeen        int // content items with any progress record
	ContentCompleted   int
	AssessmentAttempts int
	AssessmentFailures int
}

// Completed reports whether the enrollment finished the course.
func (e Enrollment) Completed() bool {
	return e.Status == StatusCompleted
}

// Course is catalog metadata for a published course.
type Course struct {
	ID            string
	TenantID      string
	Title         string
	Category      string
	Difficulty    string
	Tags          []string
	DurationHours float64 // estimated completion time
	Published     bool
	Free          bool
}

// Module is a unit of course structure.
type Module struct {
	ID       string
	CourseID string
	Title    string
	Position int
}

// ContributionLevel describes how strongly a module builds a skill.
type ContributionLevel string

const (
	ContributionIntroduces ContributionLevel = "introduces"
	ContributionDevelops   ContributionLevel = "develops"
	ContributionReinforces ContributionLevel = "reinforces"
	ContributionMasters    ContributionLevel = "masters"
)

// ModuleSkill maps a module to a skill it teaches.
type ModuleSkill struct {
	ModuleID          string
	SkillID           string
	SkillName         string
	Contribution      ContributionLevel
	ProficiencyGained int // 0-100
	Primary           bool
}

// SkillScore is a learner's current proficiency in one skill.
type SkillScore struct {
	LearnerID   string
	SkillID     string
	Proficiency int // 0-100
}

// ContentItem is a single piece of module content.
type ContentItem struct {
	ID        string
	ModuleID  string
	Required  bool
	Published bool
}

// ContentCompletion records that a learner finished a content item.
type ContentCompletion struct {
	LearnerID     string
	ModuleID      string
	ContentItemID string
}

// EdgeKind distinguishes hard prerequisites from soft recommendations.
type EdgeKind string

const (
	EdgeRequired    EdgeKind = "required"
	EdgeRecommended EdgeKind = "recommended"
)

// PrerequisiteEdge states that PrerequisiteID should be completed before
// ModuleID is attempted.
type PrerequisiteEdge struct {
	ModuleID       string
	PrerequisiteID string
	Kind           EdgeKind
}
