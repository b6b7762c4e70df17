package cycleshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpm/internal/domain/audit"
	"kpm/internal/domain/auth"
	"kpm/internal/domain/cycle"
	"kpm/internal/domain/notifications"
	"kpm/internal/transport/http/api"
	"kpm/internal/transport/http/middleware"
	"kpm/internal/transport/http/shared"
)

type Handler struct {
	Service *cycle.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *cycle.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCyclesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermCyclesRead, h.Perms)).Get("/{cycleID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermCyclesManage, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermCyclesManage, h.Perms)).Post("/{cycleID}/activate", h.handleActivate)
		r.With(middleware.RequirePermission(auth.PermCyclesManage, h.Perms)).Post("/{cycleID}/close", h.handleClose)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list cycles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "cycle_not_found", "cycle not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name       string `json:"name"`
		PeriodType string `json:"periodType"`
		StartDate  string `json:"startDate"`
		EndDate    string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Enum("periodType", payload.PeriodType, []string{cycle.PeriodYearly, cycle.PeriodSemiAnnual, cycle.PeriodQuarterly}, "must be YEARLY, SEMI_ANNUAL or QUARTERLY")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), cycle.Cycle{
		Name:       payload.Name,
		PeriodType: payload.PeriodType,
		StartDate:  start,
		EndDate:    end,
		CreatedBy:  actor.UserID,
	})
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "cycle_create_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), actor.UserID, "cycle.create", "cycle", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	activated, err := h.Service.Activate(r.Context(), cycleID)
	if err != nil {
		status, code := cycleErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), actor.UserID, "cycle.activate", "cycle", cycleID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, activated)
	if err := h.Notify.Create(r.Context(), actor.UserID, notifications.TypeCycleActivated, "Cycle activated", "Cycle "+activated.Name+" is now open for goal setting."); err != nil {
		slog.Warn("cycle activation notification failed", "cycleId", cycleID, "err", err)
	}
	api.Success(w, activated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	closed, err := h.Service.Close(r.Context(), cycleID)
	if err != nil {
		status, code := cycleErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), actor.UserID, "cycle.close", "cycle", cycleID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, closed)
	if err := h.Notify.Create(r.Context(), actor.UserID, notifications.TypeCycleClosed, "Cycle closed", "Cycle "+closed.Name+" has been closed and its records locked."); err != nil {
		slog.Warn("cycle close notification failed", "cycleId", cycleID, "err", err)
	}
	api.Success(w, closed, middleware.GetRequestID(r.Context()))
}

func cycleErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, cycle.ErrNotFound):
		return http.StatusNotFound, "cycle_not_found"
	case errors.Is(err, cycle.ErrNotDraft), errors.Is(err, cycle.ErrNotActive),
		errors.Is(err, cycle.ErrAlreadyClosed), errors.Is(err, cycle.ErrActiveExists):
		return http.StatusConflict, "cycle_state_invalid"
	default:
		return http.StatusInternalServerError, "cycle_operation_failed"
	}
}
