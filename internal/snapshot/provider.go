// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package snapshot

import "context"

// Provider supplies read-only snapshots of LMS data to the engines.
//
// Implementations must return consistent data within a single call but are
// free to serve each call from a different snapshot. Returned slices are
// owned by the caller; implementations must not retain or mutate them after
// returning. A tenantID of "" means all tenants.
type Provider interface {
	// Enrollments returns every active or completed enrollment, optionally
	// scoped to one tenant. Dropped enrollments are excluded.
	Enrollments(ctx context.Context, tenantID string) ([]Enrollment, error)

	// LearnerEnrollments returns one learner's active and completed
	// enrollments.
	LearnerEnrollments(ctx context.Context, learnerID string) ([]Enrollment, error)

	// Courses returns the published course catalog, optionally scoped to one
	// tenant.
	Courses(ctx context.Context, tenantID string) ([]Course, error)

	// Modules returns the modules of the given courses.
	Modules(ctx context.Context, courseIDs []string) ([]Module, error)

	// ModuleSkills returns every module-to-skill mapping.
	ModuleSkills(ctx context.Context) ([]ModuleSkill, error)

	// SkillScores returns every learner's skill proficiencies.
	SkillScores(ctx context.Context) ([]SkillScore, error)

	// LearnerSkills returns one learner's proficiency keyed by skill id.
	LearnerSkills(ctx context.Context, learnerID string) (map[string]int, error)

	// ContentItems returns every module content item.
	ContentItems(ctx context.Context) ([]ContentItem, error)

	// ContentCompletions returns every recorded content completion.
	ContentCompletions(ctx context.Context) ([]ContentCompletion, error)

	// PrerequisiteEdges returns the module prerequisite graph.
	PrerequisiteEdges(ctx context.Context) ([]PrerequisiteEdge, error)
}

// PrerequisiteChecker reports whether a learner may attempt a module.
// The engine treats eligibility as an external policy decision.
type PrerequisiteChecker interface {
	Met(ctx context.Context, learnerID, moduleID string) (bool, error)
}
