// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package snapshot

import (
	"context"
	"sync"
)

// Data is a complete in-memory snapshot used to populate a Memory provider.
type Data struct {
	Enrollments        []Enrollment
	Courses            []Course
	Modules            []Module
	ModuleSkills       []ModuleSkill
	SkillScores        []SkillScore
	ContentItems       []ContentItem
	ContentCompletions []ContentCompletion
	PrerequisiteEdges  []PrerequisiteEdge
}

// Memory is an in-process Provider backed by slices. It serves tests, local
// development and the demo server; production deployments implement Provider
// against the LMS datastore.
type Memory struct {
	mu   sync.RWMutex
	data Data
}

// NewMemory returns an empty Memory provider.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWith returns a Memory provider populated with d.
func NewMemoryWith(d Data) *Memory {
	m := NewMemory()
	m.Load(d)
	return m
}

// Load replaces the provider's snapshot wholesale.
func (m *Memory) Load(d Data) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = d
}

// Enrollments implements Provider.
func (m *Memory) Enrollments(ctx context.Context, tenantID string) ([]Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tenantCourses map[string]struct{}
	if tenantID != "" {
		tenantCourses = make(map[string]struct{})
		for _, c := range m.data.Courses {
			if c.TenantID == tenantID {
				tenantCourses[c.ID] = struct{}{}
			}
		}
	}

	out := make([]Enrollment, 0, len(m.data.Enrollments))
	for _, e := range m.data.Enrollments {
		if e.Status == StatusDropped {
			continue
		}
		if tenantCourses != nil {
			if _, ok := tenantCourses[e.CourseID]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// LearnerEnrollments implements Provider.
func (m *Memory) LearnerEnrollments(ctx context.Context, learnerID string) ([]Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Enrollment
	for _, e := range m.data.Enrollments {
		if e.LearnerID == learnerID && e.Status != StatusDropped {
			out = append(out, e)
		}
	}
	return out, nil
}

// Courses implements Provider.
func (m *Memory) Courses(ctx context.Context, tenantID string) ([]Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Course, 0, len(m.data.Courses))
	for _, c := range m.data.Courses {
		if !c.Published {
			continue
		}
		if tenantID != "" && c.TenantID != tenantID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Modules implements Provider.
func (m *Memory) Modules(ctx context.Context, courseIDs []string) ([]Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := make(map[string]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		want[id] = struct{}{}
	}

	var out []Module
	for _, mod := range m.data.Modules {
		if _, ok := want[mod.CourseID]; ok {
			out = append(out, mod)
		}
	}
	return out, nil
}

// ModuleSkills implements Provider.
func (m *Memory) ModuleSkills(ctx context.Context) ([]ModuleSkill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ModuleSkill, len(m.data.ModuleSkills))
	copy(out, m.data.ModuleSkills)
	return out, nil
}

// SkillScores implements Provider.
func (m *Memory) SkillScores(ctx context.Context) ([]SkillScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SkillScore, len(m.data.SkillScores))
	copy(out, m.data.SkillScores)
	return out, nil
}

// LearnerSkills implements Provider.
func (m *Memory) LearnerSkills(ctx context.Context, learnerID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]int)
	for _, s := range m.data.SkillScores {
		if s.LearnerID == learnerID {
			out[s.SkillID] = s.Proficiency
		}
	}
	return out, nil
}

// ContentItems implements Provider.
func (m *Memory) ContentItems(ctx context.Context) ([]ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ContentItem, len(m.data.ContentItems))
	copy(out, m.data.ContentItems)
	return out, nil
}

// ContentCompletions implements Provider.
func (m *Memory) ContentCompletions(ctx context.Context) ([]ContentCompletion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ContentCompletion, len(m.data.ContentCompletions))
	copy(out, m.data.ContentCompletions)
	return out, nil
}

// PrerequisiteEdges implements Provider.
func (m *Memory) PrerequisiteEdges(ctx context.Context) ([]PrerequisiteEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]PrerequisiteEdge, len(m.data.PrerequisiteEdges))
	copy(out, m.data.PrerequisiteEdges)
	return out, nil
}

var _ Provider = (*Memory)(nil)
