// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pathwise/pathwise/internal/snapshot"
)

// SequencePlanner orders recommended modules so that no module precedes a
// required prerequisite in the same candidate set. Among eligible modules
// the highest-scored is always emitted first.
type SequencePlanner struct {
	cfg      SequenceConfig
	provider snapshot.Provider
	logger   zerolog.Logger
}

// NewSequencePlanner wires the planner.
func NewSequencePlanner(cfg Config, p snapshot.Provider, logger zerolog.Logger) *SequencePlanner {
	return &SequencePlanner{
		cfg:      cfg.Sequence,
		provider: p,
		logger:   logger.With().Str("component", "sequence").Logger(),
	}
}

// Plan runs Kahn's algorithm over the required prerequisite edges among the
// candidate modules, selecting the highest-scored ready module at each
// step, capped at MaxModules. A cycle among the candidates returns
// ErrCycle: that is bad caller data, not a planner failure.
func (p *SequencePlanner) Plan(ctx context.Context, candidates []Recommendation) (Sequence, error) {
	sequence := Sequence{
		Steps:               []SequenceStep{},
		EstimatedSkillGains: map[string]int{},
	}

	inSet := make(map[string]Recommendation, len(candidates))
	for _, rec := range candidates {
		if rec.ItemType == ItemModule {
			inSet[rec.ItemID] = rec
		}
	}
	if len(inSet) == 0 {
		return sequence, nil
	}

	edges, err := p.provider.PrerequisiteEdges(ctx)
	if err != nil {
		return sequence, fmt.Errorf("loading prerequisite edges: %w", err)
	}

	// In-degree and adjacency restricted to required edges inside the set.
	inDegree := make(map[string]int, len(inSet))
	dependents := make(map[string][]string)
	for id := range inSet {
		inDegree[id] = 0
	}
	for _, e := range edges {
		if e.Kind != snapshot.EdgeRequired {
			continue
		}
		if _, ok := inSet[e.ModuleID]; !ok {
			continue
		}
		if _, ok := inSet[e.PrerequisiteID]; !ok {
			continue
		}
		inDegree[e.ModuleID]++
		dependents[e.PrerequisiteID] = append(dependents[e.PrerequisiteID], e.ModuleID)
	}

	ready := make([]string, 0, len(inSet))
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	moduleSkills, err := p.provider.ModuleSkills(ctx)
	if err != nil {
		return sequence, fmt.Errorf("loading module skills: %w", err)
	}
	skillsByModule := make(map[string][]snapshot.ModuleSkill)
	for _, ms := range moduleSkills {
		skillsByModule[ms.ModuleID] = append(skillsByModule[ms.ModuleID], ms)
	}

	gains := make(map[string]int)
	for len(ready) > 0 && len(sequence.Steps) < p.cfg.MaxModules {
		// Highest score first, ties by module id for stable output.
		sort.Slice(ready, func(i, j int) bool {
			si, sj := inSet[ready[i]].Score, inSet[ready[j]].Score
			if si != sj {
				return si > sj
			}
			return ready[i] < ready[j]
		})
		next := ready[0]
		ready = ready[1:]

		rec := inSet[next]
		var skills []string
		for _, ms := range skillsByModule[next] {
			skills = append(skills, ms.SkillName)
			gains[ms.SkillID] += ms.ProficiencyGained
			if gains[ms.SkillID] > 100 {
				gains[ms.SkillID] = 100
			}
		}
		sort.Strings(skills)

		sequence.Steps = append(sequence.Steps, SequenceStep{
			Position:        len(sequence.Steps) + 1,
			ModuleID:        next,
			Title:           rec.Title,
			Score:           rec.Score,
			Reason:          rec.Reason,
			SkillsDeveloped: skills,
		})

		for _, dep := range dependents[next] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(sequence.Steps) < len(inSet) && len(sequence.Steps) < p.cfg.MaxModules {
		return Sequence{Steps: []SequenceStep{}, EstimatedSkillGains: map[string]int{}},
			fmt.Errorf("%w: %d of %d modules unsequenceable", ErrCycle, len(inSet)-len(sequence.Steps), len(inSet))
	}

	sequence.EstimatedSkillGains = gains
	return sequence, nil
}
