package evaluationshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpm/internal/domain/audit"
	"kpm/internal/domain/auth"
	"kpm/internal/domain/directory"
	"kpm/internal/domain/evaluation"
	"kpm/internal/domain/notifications"
	"kpm/internal/transport/http/api"
	"kpm/internal/transport/http/middleware"
	"kpm/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluation.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *evaluation.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/", h.handleListForCycle)
		r.With(middleware.RequirePermission(auth.PermEvaluationsSelf, h.Perms)).Get("/me", h.handleMine)
		r.With(middleware.RequirePermission(auth.PermEvaluationsSelf, h.Perms)).Post("/compute", h.handleCompute)
		r.With(middleware.RequirePermission(auth.PermEvaluationsSelf, h.Perms)).Post("/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/{evaluationID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRev, h.Perms)).Post("/{evaluationID}/start-review", h.handleStartReview)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRev, h.Perms)).Post("/{evaluationID}/complete", h.handleComplete)
	})
}

func (h *Handler) handleListForCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycleId")
	if cycleID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cycleId query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}
	evals, err := h.Service.ListForCycle(r.Context(), cycleID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_list_failed", "failed to list evaluations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, evals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	cycleID := r.URL.Query().Get("cycleId")
	if cycleID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cycleId query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}
	eval, err := h.Service.ForUserCycle(r.Context(), user.UserID, cycleID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "evaluation_not_found", "no evaluation for this cycle", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	eval, err := h.Service.Get(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "evaluation_not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

// handleCompute recalculates the caller's aggregate from their live KPI
// actuals. HR may compute on behalf of another user.
func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		CycleID string `json:"cycleId"`
		UserID  string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.CycleID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cycle id is required", middleware.GetRequestID(r.Context()))
		return
	}

	targetID := user.UserID
	if payload.UserID != "" && payload.UserID != user.UserID {
		if user.Role != string(directory.RoleHR) && user.Role != string(directory.RoleAdmin) {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot compute another user's evaluation", middleware.GetRequestID(r.Context()))
			return
		}
		targetID = payload.UserID
	}

	detail, err := h.Service.Compute(r.Context(), targetID, payload.CycleID)
	if err != nil {
		status, code := evaluationErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		CycleID     string `json:"cycleId"`
		SelfComment string `json:"selfComment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.CycleID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cycle id is required", middleware.GetRequestID(r.Context()))
		return
	}

	detail, err := h.Service.Submit(r.Context(), user.UserID, payload.CycleID, payload.SelfComment)
	if err != nil {
		if errors.Is(err, evaluation.ErrInvalid) {
			api.FailWithDetails(w, http.StatusBadRequest, "evaluation_invalid", "evaluation failed validation",
				map[string]any{"errors": detail.Validation.Errors}, middleware.GetRequestID(r.Context()))
			return
		}
		status, code := evaluationErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "evaluation.submit", "evaluation", detail.Evaluation.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, detail.Evaluation)
	if err := h.Notify.Create(r.Context(), user.UserID, notifications.TypeEvaluationSubmitted, "Evaluation submitted", "Your evaluation was submitted for review."); err != nil {
		slog.Warn("evaluation submit notification failed", "userId", user.UserID, "err", err)
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStartReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	evaluationID := chi.URLParam(r, "evaluationID")

	eval, err := h.Service.StartReview(r.Context(), evaluationID, user.UserID)
	if err != nil {
		status, code := evaluationErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "evaluation.start_review", "evaluation", evaluationID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, eval)
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	evaluationID := chi.URLParam(r, "evaluationID")

	var payload struct {
		ManagerComment string  `json:"managerComment"`
		Calibration    float64 `json:"calibration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	eval, err := h.Service.Complete(r.Context(), evaluationID, user.UserID, payload.ManagerComment, payload.Calibration)
	if err != nil {
		status, code := evaluationErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "evaluation.complete", "evaluation", evaluationID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, eval)
	if err := h.Notify.Create(r.Context(), eval.UserID, notifications.TypeEvaluationCompleted, "Evaluation completed", "Your evaluation review is complete."); err != nil {
		slog.Warn("evaluation complete notification failed", "userId", eval.UserID, "err", err)
	}
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

func evaluationErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, evaluation.ErrNotFound):
		return http.StatusNotFound, "evaluation_not_found"
	case errors.Is(err, evaluation.ErrNoApprovedKpis):
		return http.StatusBadRequest, "no_approved_kpis"
	case errors.Is(err, evaluation.ErrNotDraft), errors.Is(err, evaluation.ErrNotSubmitted), errors.Is(err, evaluation.ErrNotUnderReview):
		return http.StatusConflict, "evaluation_state_invalid"
	case errors.Is(err, evaluation.ErrSelfReview):
		return http.StatusForbidden, "self_review"
	case errors.Is(err, evaluation.ErrCalibrationBounds):
		return http.StatusBadRequest, "calibration_out_of_bounds"
	default:
		return http.StatusInternalServerError, "evaluation_failed"
	}
}
