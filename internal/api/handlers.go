// Pathwise - Learning Personalization and Recommendation Engine
// Copyright 2026 Pathwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathwise/pathwise

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pathwise/pathwise/internal/logging"
	"github.com/pathwise/pathwise/internal/recommend"
	"github.com/pathwise/pathwise/internal/validation"
)

// Handler serves the recommendation API over one engine instance.
type Handler struct {
	engine *recommend.Engine

	// tenantID scopes inline refits. Empty fits everything.
	tenantID string

	started time.Time
}

// NewHandler wires a handler over the engine.
func NewHandler(engine *recommend.Engine, tenantID string) *Handler {
	return &Handler{
		engine:   engine,
		tenantID: tenantID,
		started:  time.Now(),
	}
}

// ensureFresh refits stale models inline. Serving continues on the previous
// snapshot if the refit fails; the failure is logged, not surfaced.
func (h *Handler) ensureFresh(r *http.Request) {
	if err := h.engine.EnsureFresh(r.Context(), h.tenantID); err != nil {
		logging.CtxErr(r.Context(), err).Msg("Inline refit failed")
	}
}

// Recommendations handles
// GET /api/v1/learners/{learnerID}/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := RecommendationsRequest{
		LearnerID:    chi.URLParam(r, "learnerID"),
		Limit:        queryInt(r, "limit", 10),
		Type:         r.URL.Query().Get("type"),
		ExcludeKnown: queryBool(r, "exclude_known", true),
	}
	if req.Type == "" {
		req.Type = "hybrid"
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	h.ensureFresh(r)

	var (
		recs []recommend.Recommendation
		err  error
	)
	switch req.Type {
	case "collaborative":
		recs, err = h.engine.RecommendCollaborative(r.Context(), req.LearnerID, req.Limit, req.ExcludeKnown)
	case "content":
		recs, err = h.engine.RecommendContent(r.Context(), req.LearnerID, req.Limit, req.ExcludeKnown)
	default:
		recs, err = h.engine.RecommendCourses(r.Context(), req.LearnerID, req.Limit, req.ExcludeKnown)
	}
	if err != nil {
		if errors.Is(err, recommend.ErrNotFitted) {
			rw.Error(http.StatusServiceUnavailable, ErrCodeModelNotFitted, "Models are not fitted yet")
			return
		}
		rw.EngineError(err)
		return
	}
	rw.SuccessList(recs, len(recs))
}

// Modules handles GET /api/v1/learners/{learnerID}/modules.
func (h *Handler) Modules(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, ok := h.moduleRequest(rw, r)
	if !ok {
		return
	}

	recs, err := h.engine.RecommendModules(r.Context(), req)
	if err != nil {
		rw.EngineError(err)
		return
	}
	rw.SuccessList(recs, len(recs))
}

// Sequence handles GET /api/v1/learners/{learnerID}/sequence.
func (h *Handler) Sequence(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, ok := h.moduleRequest(rw, r)
	if !ok {
		return
	}

	seq, err := h.engine.PlanSequence(r.Context(), req)
	if err != nil {
		if errors.Is(err, recommend.ErrCycle) {
			rw.ErrorWithDetails(http.StatusConflict, ErrCodeBadRequest,
				"Prerequisite cycle among candidate modules", err.Error())
			return
		}
		rw.EngineError(err)
		return
	}
	rw.Success(seq)
}

// moduleRequest parses and validates the shared module query shape.
func (h *Handler) moduleRequest(rw *ResponseWriter, r *http.Request) (recommend.ModuleRequest, bool) {
	req := ModulesRequest{
		LearnerID:          chi.URLParam(r, "learnerID"),
		CourseID:           r.URL.Query().Get("course_id"),
		TargetSkills:       queryList(r, "target_skills"),
		Limit:              queryInt(r, "limit", 10),
		ExcludeCompleted:   queryBool(r, "exclude_completed", true),
		CheckPrerequisites: queryBool(r, "check_prerequisites", true),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return recommend.ModuleRequest{}, false
	}
	return recommend.ModuleRequest{
		LearnerID:          req.LearnerID,
		TenantID:           r.URL.Query().Get("tenant_id"),
		CourseID:           req.CourseID,
		TargetSkills:       req.TargetSkills,
		Limit:              req.Limit,
		ExcludeCompleted:   req.ExcludeCompleted,
		CheckPrerequisites: req.CheckPrerequisites,
	}, true
}

// Risk handles GET /api/v1/learners/{learnerID}/risk.
func (h *Handler) Risk(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	learnerID := chi.URLParam(r, "learnerID")
	if learnerID == "" {
		rw.BadRequest("learner id is required")
		return
	}

	report, err := h.engine.ScoreRisk(r.Context(), learnerID, r.URL.Query().Get("course_id"))
	if err != nil {
		rw.EngineError(err)
		return
	}
	rw.Success(report)
}

// AtRisk handles GET /api/v1/at-risk.
func (h *Handler) AtRisk(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	reports, err := h.engine.AtRiskLearners(r.Context(),
		r.URL.Query().Get("tenant_id"), r.URL.Query().Get("course_id"))
	if err != nil {
		rw.EngineError(err)
		return
	}
	rw.SuccessList(reports, len(reports))
}

// SkillGaps handles GET /api/v1/learners/{learnerID}/skill-gaps.
func (h *Handler) SkillGaps(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	learnerID := chi.URLParam(r, "learnerID")
	if learnerID == "" {
		rw.BadRequest("learner id is required")
		return
	}

	gaps, err := h.engine.Modules.SkillGapAnalysis(r.Context(), learnerID, queryList(r, "skills"))
	if err != nil {
		rw.EngineError(err)
		return
	}
	rw.SuccessList(gaps, len(gaps))
}

// Explanation handles
// GET /api/v1/learners/{learnerID}/explanations/{itemID}.
func (h *Handler) Explanation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	learnerID := chi.URLParam(r, "learnerID")
	itemID := chi.URLParam(r, "itemID")
	if learnerID == "" || itemID == "" {
		rw.BadRequest("learner id and item id are required")
		return
	}

	h.ensureFresh(r)

	explanation, err := h.engine.Hybrid.Explain(r.Context(), learnerID, itemID)
	if err != nil {
		rw.EngineError(err)
		return
	}
	rw.Success(explanation)
}

// SimilarCourses handles GET /api/v1/courses/{courseID}/similar.
func (h *Handler) SimilarCourses(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := SimilarCoursesRequest{
		CourseID: chi.URLParam(r, "courseID"),
		Limit:    queryInt(r, "limit", 10),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	h.ensureFresh(r)

	similar, err := h.engine.Content.SimilarCourses(r.Context(), req.CourseID, req.Limit)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFitted) {
			rw.Error(http.StatusServiceUnavailable, ErrCodeModelNotFitted, "Models are not fitted yet")
			return
		}
		rw.EngineError(err)
		return
	}
	rw.SuccessList(similar, len(similar))
}

// Fit handles POST /api/v1/fit and rebuilds all models inline.
func (h *Handler) Fit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		tenantID = h.tenantID
	}
	if err := h.engine.Fit(r.Context(), tenantID); err != nil {
		rw.EngineError(err)
		return
	}
	rw.Success(h.engine.Status())
}

// healthPayload is the health endpoint response body.
type healthPayload struct {
	Status  string                         `json:"status"`
	Uptime  string                         `json:"uptime"`
	Engines map[string]recommend.FitStatus `json:"engines"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(healthPayload{
		Status:  "ok",
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Engines: h.engine.Status(),
	})
}

// HealthLive handles GET /api/v1/health/live. Always 200 while the process
// serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Ready does not require a
// fitted model: unfitted engines still serve fallback recommendations.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ready"})
}
