// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package api

import (
	"net/http"
	"strconv"
	"strings"
)

// RecommendationsRequest is the validated query for course recommendations.
type RecommendationsRequest struct {
	LearnerID    string `validate:"required"`
	Limit        int    `validate:"min=1,max=100"`
	Type         string `validate:"oneof=hybrid collaborative content"`
	ExcludeKnown bool
}

// ModulesRequest is the validated query for module recommendations and
// sequence planning.
type ModulesRequest struct {
	LearnerID          string `validate:"required"`
	CourseID           string
	TargetSkills       []string
	Limit              int `validate:"min=1,max=50"`
	ExcludeCompleted   bool
	CheckPrerequisites bool
}

// SimilarCoursesRequest is the validated query for course similarity.
type SimilarCoursesRequest struct {
	CourseID string `validate:"required"`
	Limit    int    `validate:"min=1,max=50"`
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryBool parses a boolean query parameter, falling back to def.
func queryBool(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// queryList parses a comma-separated query parameter into trimmed values.
func queryList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
