package approvalshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpm/internal/domain/approval"
	"kpm/internal/domain/audit"
	"kpm/internal/domain/auth"
	"kpm/internal/domain/kpi"
	"kpm/internal/domain/notifications"
	"kpm/internal/transport/http/api"
	"kpm/internal/transport/http/middleware"
	"kpm/internal/transport/http/shared"
)

type Handler struct {
	Service *approval.Service
	Kpis    *kpi.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *approval.Service, kpis *kpi.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Kpis: kpis, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/approvals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermApprovalsDecide, h.Perms)).Get("/pending", h.handlePending)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/{kpiID}/workflow", h.handleWorkflow)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/{kpiID}/history", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermApprovalsDecide, h.Perms)).Post("/{kpiID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermApprovalsDecide, h.Perms)).Post("/{kpiID}/reject", h.handleReject)
	})
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	items, err := h.Service.PendingForUser(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pending_list_failed", "failed to list pending approvals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := h.Service.WorkflowFor(r.Context(), chi.URLParam(r, "kpiID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "workflow_failed", "failed to load workflow", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, wf, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Service.History(r.Context(), chi.URLParam(r, "kpiID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to load approval history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

type decisionPayload struct {
	Level   int    `json:"level"`
	Comment string `json:"comment"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, approval.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, approval.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	kpiID := chi.URLParam(r, "kpiID")

	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	wf, err := h.Service.RecordDecision(r.Context(), kpiID, payload.Level, user.UserID, decision, payload.Comment)
	if err != nil {
		status, code := decisionErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	action := "approval.approve"
	if decision == approval.StatusRejected {
		action = "approval.reject"
	}
	_ = h.Audit.Record(r.Context(), user.UserID, action, "kpi_definition", kpiID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, wf)
	h.notifyDecision(r, kpiID, decision, payload.Level, wf)

	api.Success(w, wf, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifyDecision(r *http.Request, kpiID, decision string, level int, wf approval.Workflow) {
	def, err := h.Kpis.GetDefinition(r.Context(), kpiID)
	if err != nil {
		slog.Warn("decision notification definition lookup failed", "kpiId", kpiID, "err", err)
		return
	}

	switch {
	case decision == approval.StatusRejected:
		if err := h.Notify.Create(r.Context(), def.OwnerID, notifications.TypeGoalRejected, "Goal rejected",
			"Your KPI \""+def.Title+"\" was rejected at "+approval.LevelLabel(level)+"."); err != nil {
			slog.Warn("rejection notification failed", "kpiId", kpiID, "err", err)
		}
	case wf.IsComplete:
		if err := h.Notify.Create(r.Context(), def.OwnerID, notifications.TypeGoalApproved, "Goal approved",
			"Your KPI \""+def.Title+"\" completed all approval levels."); err != nil {
			slog.Warn("approval notification failed", "kpiId", kpiID, "err", err)
		}
	default:
		next := wf.Decision(wf.CurrentLevel)
		if next != nil && next.ApproverID != "" {
			if err := h.Notify.Create(r.Context(), next.ApproverID, notifications.TypeApprovalRequested, "Approval requested",
				"KPI \""+def.Title+"\" is waiting for your decision at "+approval.LevelLabel(wf.CurrentLevel)+"."); err != nil {
				slog.Warn("next approver notification failed", "kpiId", kpiID, "err", err)
			}
		}
	}
}

func decisionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, approval.ErrDecisionInvalid):
		return http.StatusBadRequest, "decision_invalid"
	case errors.Is(err, approval.ErrCommentRequired):
		return http.StatusBadRequest, "comment_required"
	case errors.Is(err, approval.ErrLevelDecided):
		return http.StatusConflict, "level_decided"
	case errors.Is(err, approval.ErrNotPendingLevel):
		return http.StatusConflict, "not_pending_level"
	case errors.Is(err, approval.ErrNotAuthorized):
		return http.StatusForbidden, "not_authorized"
	case errors.Is(err, approval.ErrNoApprover):
		return http.StatusConflict, "no_approver"
	case errors.Is(err, kpi.ErrNotFound):
		return http.StatusNotFound, "kpi_not_found"
	default:
		return http.StatusInternalServerError, "decision_failed"
	}
}
