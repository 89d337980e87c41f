// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package snapshot

import "context"

// CompletedModules derives the set of module ids a learner has completed.
// A module counts as completed when it has at least one required published
// content item and the learner has completed all of them. Modules with no
// required published content never count as completed.
func CompletedModules(items []ContentItem, completions []ContentCompletion, learnerID string) map[string]struct{} {
	requiredByModule := make(map[string]map[string]struct{})
	for _, it := range items {
		if !it.Required || !it.Published {
			continue
		}
		set, ok := requiredByModule[it.ModuleID]
		if !ok {
			set = make(map[string]struct{})
			requiredByModule[it.ModuleID] = set
		}
		set[it.ID] = struct{}{}
	}

	done := make(map[string]struct{})
	for _, c := range completions {
		if c.LearnerID == learnerID {
			done[c.ContentItemID] = struct{}{}
		}
	}

	completed := make(map[string]struct{})
	for moduleID, required := range requiredByModule {
		all := true
		for itemID := range required {
			if _, ok := done[itemID]; !ok {
				all = false
				break
			}
		}
		if all {
			completed[moduleID] = struct{}{}
		}
	}
	return completed
}

// GraphChecker is the default PrerequisiteChecker. It walks the required
// edges of the prerequisite graph and checks each against the learner's
// completed modules.
type GraphChecker struct {
	provider Provider
}

// NewGraphChecker returns a checker backed by the given provider.
func NewGraphChecker(p Provider) *GraphChecker {
	return &GraphChecker{provider: p}
}

// Met implements PrerequisiteChecker. A module with no required
// prerequisites is always eligible.
func (g *GraphChecker) Met(ctx context.Context, learnerID, moduleID string) (bool, error) {
	edges, err := g.provider.PrerequisiteEdges(ctx)
	if err != nil {
		return false, err
	}

	var required []string
	for _, e := range edges {
		if e.ModuleID == moduleID && e.Kind == EdgeRequired {
			required = append(required, e.PrerequisiteID)
		}
	}
	if len(required) == 0 {
		return true, nil
	}

	items, err := g.provider.ContentItems(ctx)
	if err != nil {
		return false, err
	}
	completions, err := g.provider.ContentCompletions(ctx)
	if err != nil {
		return false, err
	}

	completed := CompletedModules(items, completions, learnerID)
	for _, prereqID := range required {
		if _, ok := completed[prereqID]; !ok {
			return false, nil
		}
	}
	return true, nil
}

var _ PrerequisiteChecker = (*GraphChecker)(nil)
