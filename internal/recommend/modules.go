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

// contributionWeights scale a skill's value by how the module relates
// to it.
var contributionWeights = map[snapshot.ContributionLevel]float64{
	snapshot.ContributionIntroduces: 0.8,
	snapshot.ContributionDevelops:   1.0,
	snapshot.ContributionReinforces: 0.9,
	snapshot.ContributionMasters:    1.1,
}

// ModuleRecommender fuses skill-gap scoring, collaborative similarity over
// skill profiles and popularity into per-module scores, after filtering
// candidates by access, completion and prerequisite eligibility.
type ModuleRecommender struct {
	cfg      ModulesConfig
	provider snapshot.Provider
	checker  snapshot.PrerequisiteChecker
	logger   zerolog.Logger
}

// NewModuleRecommender wires the recommender. Prerequisite eligibility is
// delegated to the checker.
func NewModuleRecommender(cfg Config, p snapshot.Provider, checker snapshot.PrerequisiteChecker, logger zerolog.Logger) *ModuleRecommender {
	return &ModuleRecommender{
		cfg:      cfg.Modules,
		provider: p,
		checker:  checker,
		logger:   logger.With().Str("component", "modules").Logger(),
	}
}

// ModuleRequest scopes one module recommendation call.
type ModuleRequest struct {
	LearnerID string
	TenantID  string

	// CourseID restricts candidates to one course; when set, the
	// enrolled-or-free access filter is skipped.
	CourseID string

	// TargetSkills boosts modules teaching these skills.
	TargetSkills []string

	Limit int

	// ExcludeCompleted removes modules whose required published content
	// the learner already finished.
	ExcludeCompleted bool

	// CheckPrerequisites removes modules with unmet required
	// prerequisites.
	CheckPrerequisites bool
}

// moduleSignals carries the data loaded once per request.
type moduleSignals struct {
	skillsByModule  map[string][]snapshot.ModuleSkill
	learnerSkills   map[string]int
	targetSkills    map[string]struct{}
	peers           []string
	completedByUser map[string]map[string]struct{} // moduleID -> learner set
}

// Recommend scores candidate modules for one learner and returns the top
// results. An empty candidate set yields an empty list, never an error.
func (m *ModuleRecommender) Recommend(ctx context.Context, req ModuleRequest) ([]Recommendation, error) {
	if req.Limit <= 0 {
		return []Recommendation{}, nil
	}

	candidates, catalog, err := m.candidateModules(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		m.logger.Debug().Str("learner", req.LearnerID).Msg("No candidate modules")
		return []Recommendation{}, nil
	}

	signals, err := m.loadSignals(ctx, req)
	if err != nil {
		return nil, err
	}

	type scored struct {
		module snapshot.Module
		score  float64
		reason string
	}
	var ranked []scored
	for _, mod := range candidates {
		score, reason := m.scoreModule(mod, signals)
		if score > 0 {
			ranked = append(ranked, scored{module: mod, score: score, reason: reason})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].module.ID < ranked[j].module.ID
	})
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	results := make([]Recommendation, 0, len(ranked))
	for _, s := range ranked {
		course := catalog[s.module.CourseID]

		skills := signals.skillsByModule[s.module.ID]
		if len(skills) > 5 {
			skills = skills[:5]
		}
		skillMeta := make([]map[string]any, 0, len(skills))
		for _, ms := range skills {
			skillMeta = append(skillMeta, map[string]any{
				"id":                 ms.SkillID,
				"name":               ms.SkillName,
				"contribution":       string(ms.Contribution),
				"proficiency_gained": ms.ProficiencyGained,
			})
		}

		results = append(results, Recommendation{
			ItemID:   s.module.ID,
			ItemType: ItemModule,
			Title:    s.module.Title,
			Score:    round4(s.score),
			Reason:   s.reason,
			Metadata: map[string]any{
				"course_id":    s.module.CourseID,
				"course_title": course.Title,
				"module_order": s.module.Position,
				"skills":       skillMeta,
				"algorithm":    "module_recommender",
			},
		})
	}
	return results, nil
}

// candidateModules builds the scoped, filtered, capped candidate set.
func (m *ModuleRecommender) candidateModules(ctx context.Context, req ModuleRequest) ([]snapshot.Module, map[string]snapshot.Course, error) {
	courses, err := m.provider.Courses(ctx, req.TenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading courses: %w", err)
	}
	catalog := make(map[string]snapshot.Course, len(courses))
	for _, c := range courses {
		catalog[c.ID] = c
	}

	var courseIDs []string
	if req.CourseID != "" {
		if _, ok := catalog[req.CourseID]; ok {
			courseIDs = []string{req.CourseID}
		}
	} else {
		enrollments, err := m.provider.LearnerEnrollments(ctx, req.LearnerID)
		if err != nil {
			return nil, nil, fmt.Errorf("loading learner enrollments: %w", err)
		}
		enrolled := make(map[string]struct{}, len(enrollments))
		for _, en := range enrollments {
			enrolled[en.CourseID] = struct{}{}
		}
		for _, c := range courses {
			if _, ok := enrolled[c.ID]; ok || c.Free {
				courseIDs = append(courseIDs, c.ID)
			}
		}
	}
	if len(courseIDs) == 0 {
		return nil, catalog, nil
	}

	modules, err := m.provider.Modules(ctx, courseIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("loading modules: %w", err)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].CourseID != modules[j].CourseID {
			return modules[i].CourseID < modules[j].CourseID
		}
		if modules[i].Position != modules[j].Position {
			return modules[i].Position < modules[j].Position
		}
		return modules[i].ID < modules[j].ID
	})

	var completed map[string]struct{}
	if req.ExcludeCompleted {
		items, err := m.provider.ContentItems(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("loading content items: %w", err)
		}
		completions, err := m.provider.ContentCompletions(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("loading completions: %w", err)
		}
		completed = snapshot.CompletedModules(items, completions, req.LearnerID)
	}

	var candidates []snapshot.Module
	for _, mod := range modules {
		if _, done := completed[mod.ID]; done {
			continue
		}
		if req.CheckPrerequisites {
			met, err := m.checker.Met(ctx, req.LearnerID, mod.ID)
			if err != nil {
				return nil, nil, fmt.Errorf("checking prerequisites for module %s: %w", mod.ID, err)
			}
			if !met {
				continue
			}
		}
		candidates = append(candidates, mod)
		if len(candidates) == m.cfg.MaxCandidates {
			break
		}
	}
	return candidates, catalog, nil
}

// loadSignals loads skill mappings, the learner's proficiencies, the peer
// group and the per-module completion sets once per request.
func (m *ModuleRecommender) loadSignals(ctx context.Context, req ModuleRequest) (*moduleSignals, error) {
	moduleSkills, err := m.provider.ModuleSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading module skills: %w", err)
	}
	skillsByModule := make(map[string][]snapshot.ModuleSkill)
	for _, ms := range moduleSkills {
		skillsByModule[ms.ModuleID] = append(skillsByModule[ms.ModuleID], ms)
	}

	learnerSkills, err := m.provider.LearnerSkills(ctx, req.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("loading learner skills: %w", err)
	}

	targets := make(map[string]struct{}, len(req.TargetSkills))
	for _, id := range req.TargetSkills {
		targets[id] = struct{}{}
	}

	peers, err := m.similarLearners(ctx, req.LearnerID)
	if err != nil {
		return nil, err
	}

	completions, err := m.provider.ContentCompletions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading completions: %w", err)
	}
	completedByUser := make(map[string]map[string]struct{})
	for _, c := range completions {
		set, ok := completedByUser[c.ModuleID]
		if !ok {
			set = make(map[string]struct{})
			completedByUser[c.ModuleID] = set
		}
		set[c.LearnerID] = struct{}{}
	}

	return &moduleSignals{
		skillsByModule:  skillsByModule,
		learnerSkills:   learnerSkills,
		targetSkills:    targets,
		peers:           peers,
		completedByUser: completedByUser,
	}, nil
}

// scoreModule blends the three signals into one [0,1] score with a primary
// reason, preferring the skill-gap explanation over the collaborative one.
func (m *ModuleRecommender) scoreModule(mod snapshot.Module, signals *moduleSignals) (float64, string) {
	primaryReason := "Recommended module"

	skillScore, skillReason := m.skillScore(mod, signals)
	if skillReason != "" {
		primaryReason = skillReason
	}

	collabScore, collabReason := m.collaborativeScore(mod, signals)
	if collabReason != "" && skillReason == "" {
		primaryReason = collabReason
	}

	popularityScore := m.popularityScore(mod, signals)

	total := m.cfg.SkillWeight*skillScore +
		m.cfg.CollaborativeWeight*collabScore +
		m.cfg.PopularityWeight*popularityScore
	return clamp01(total), primaryReason
}

// skillScore values a module by how much proficiency it can still add
// across its mapped skills.
func (m *ModuleRecommender) skillScore(mod snapshot.Module, signals *moduleSignals) (float64, string) {
	skills := signals.skillsByModule[mod.ID]
	if len(skills) == 0 {
		return 0, ""
	}

	var total float64
	var maxGap int
	var maxGapSkill string
	for _, ms := range skills {
		proficiency := signals.learnerSkills[ms.SkillID]
		gap := 100 - proficiency

		potentialGain := ms.ProficiencyGained
		if potentialGain > gap {
			potentialGain = gap
		}

		targetBoost := 1.0
		if _, ok := signals.targetSkills[ms.SkillID]; ok {
			targetBoost = m.cfg.TargetBoost
		}
		primaryBoost := 1.0
		if ms.Primary {
			primaryBoost = m.cfg.PrimaryBoost
		}
		contributionWeight, ok := contributionWeights[ms.Contribution]
		if !ok {
			contributionWeight = 1.0
		}

		total += (float64(potentialGain) / 100) * targetBoost * primaryBoost * contributionWeight

		if gap > maxGap {
			maxGap = gap
			maxGapSkill = ms.SkillName
		}
	}

	avg := total / float64(len(skills))

	reason := ""
	if maxGapSkill != "" && maxGap > 30 {
		reason = fmt.Sprintf("Builds your %s skills", maxGapSkill)
	} else {
		reason = fmt.Sprintf("Develops %d skills", len(skills))
	}
	return minFloat(1, avg), reason
}

// collaborativeScore is the fraction of the learner's skill-profile peers
// who completed any of the module's content.
func (m *ModuleRecommender) collaborativeScore(mod snapshot.Module, signals *moduleSignals) (float64, string) {
	if len(signals.peers) == 0 {
		return 0, ""
	}

	completedBy := signals.completedByUser[mod.ID]
	completions := 0
	for _, peer := range signals.peers {
		if _, ok := completedBy[peer]; ok {
			completions++
		}
	}
	rate := float64(completions) / float64(len(signals.peers))

	reason := ""
	if rate > 0.3 {
		reason = "Popular with learners like you"
	}
	return rate, reason
}

// popularityScore scales distinct completions linearly, saturating at the
// configured cap.
func (m *ModuleRecommender) popularityScore(mod snapshot.Module, signals *moduleSignals) float64 {
	completions := len(signals.completedByUser[mod.ID])
	return minFloat(1, float64(completions)/float64(m.cfg.PopularityCap))
}

// similarLearners ranks other learners by cosine similarity over
// zero-filled skill proficiency vectors and returns the top peer ids.
func (m *ModuleRecommender) similarLearners(ctx context.Context, learnerID string) ([]string, error) {
	scores, err := m.provider.SkillScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading skill scores: %w", err)
	}

	byLearner := make(map[string]map[string]int)
	skillSet := make(map[string]struct{})
	for _, s := range scores {
		skills, ok := byLearner[s.LearnerID]
		if !ok {
			skills = make(map[string]int)
			byLearner[s.LearnerID] = skills
		}
		skills[s.SkillID] = s.Proficiency
		skillSet[s.SkillID] = struct{}{}
	}
	if len(skillSet) == 0 {
		return nil, nil
	}
	own, ok := byLearner[learnerID]
	if !ok {
		return nil, nil
	}

	skillIDs := sortedKeys(skillSet)
	vectorFor := func(skills map[string]int) []float64 {
		vec := make([]float64, len(skillIDs))
		for i, id := range skillIDs {
			vec[i] = float64(skills[id])
		}
		return vec
	}
	ownVec := vectorFor(own)

	similarities := make([]LearnerSimilarity, 0, len(byLearner)-1)
	for other, skills := range byLearner {
		if other == learnerID {
			continue
		}
		similarities = append(similarities, LearnerSimilarity{
			LearnerID:  other,
			Similarity: cosineSimilarity(ownVec, vectorFor(skills)),
		})
	}
	sort.Slice(similarities, func(i, j int) bool {
		if similarities[i].Similarity != similarities[j].Similarity {
			return similarities[i].Similarity > similarities[j].Similarity
		}
		return similarities[i].LearnerID < similarities[j].LearnerID
	})
	if len(similarities) > m.cfg.PeerCount {
		similarities = similarities[:m.cfg.PeerCount]
	}

	peers := make([]string, len(similarities))
	for i, s := range similarities {
		peers[i] = s.LearnerID
	}
	return peers, nil
}

// SkillGapAnalysis reports, per target skill (or every tracked skill),
// the learner's proficiency, the remaining gap and up to 5 modules ranked
// by proficiency gained. Sorted by descending gap.
func (m *ModuleRecommender) SkillGapAnalysis(ctx context.Context, learnerID string, targetSkills []string) ([]SkillGap, error) {
	learnerSkills, err := m.provider.LearnerSkills(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("loading learner skills: %w", err)
	}

	skillIDs := targetSkills
	if len(skillIDs) == 0 {
		set := make(map[string]struct{}, len(learnerSkills))
		for id := range learnerSkills {
			set[id] = struct{}{}
		}
		skillIDs = sortedKeys(set)
	}
	if len(skillIDs) == 0 {
		return []SkillGap{}, nil
	}

	moduleSkills, err := m.provider.ModuleSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading module skills: %w", err)
	}
	bySkill := make(map[string][]snapshot.ModuleSkill)
	for _, ms := range moduleSkills {
		bySkill[ms.SkillID] = append(bySkill[ms.SkillID], ms)
	}

	courses, err := m.provider.Courses(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading courses: %w", err)
	}
	catalog := make(map[string]snapshot.Course, len(courses))
	courseIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		catalog[c.ID] = c
		courseIDs = append(courseIDs, c.ID)
	}
	modules, err := m.provider.Modules(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("loading modules: %w", err)
	}
	moduleByID := make(map[string]snapshot.Module, len(modules))
	for _, mod := range modules {
		moduleByID[mod.ID] = mod
	}

	gaps := make([]SkillGap, 0, len(skillIDs))
	for _, skillID := range skillIDs {
		mappings := bySkill[skillID]

		sort.Slice(mappings, func(i, j int) bool {
			if mappings[i].ProficiencyGained != mappings[j].ProficiencyGained {
				return mappings[i].ProficiencyGained > mappings[j].ProficiencyGained
			}
			mi, mj := moduleByID[mappings[i].ModuleID], moduleByID[mappings[j].ModuleID]
			if mi.Position != mj.Position {
				return mi.Position < mj.Position
			}
			return mappings[i].ModuleID < mappings[j].ModuleID
		})
		if len(mappings) > 5 {
			mappings = mappings[:5]
		}

		skillName := skillID
		recommended := make([]GapModule, 0, len(mappings))
		for _, ms := range mappings {
			skillName = ms.SkillName
			mod := moduleByID[ms.ModuleID]
			recommended = append(recommended, GapModule{
				ModuleID:          ms.ModuleID,
				ModuleTitle:       mod.Title,
				CourseID:          mod.CourseID,
				CourseTitle:       catalog[mod.CourseID].Title,
				ContributionLevel: string(ms.Contribution),
				ProficiencyGained: ms.ProficiencyGained,
			})
		}

		proficiency := learnerSkills[skillID]
		gaps = append(gaps, SkillGap{
			SkillID:            skillID,
			SkillName:          skillName,
			CurrentProficiency: proficiency,
			CurrentLevel:       ProficiencyLevel(proficiency),
			Gap:                100 - proficiency,
			RecommendedModules: recommended,
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Gap != gaps[j].Gap {
			return gaps[i].Gap > gaps[j].Gap
		}
		return gaps[i].SkillID < gaps[j].SkillID
	})
	return gaps, nil
}
