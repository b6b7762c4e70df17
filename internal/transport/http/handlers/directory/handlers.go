package directoryhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpm/internal/domain/audit"
	"kpm/internal/domain/auth"
	"kpm/internal/domain/directory"
	"kpm/internal/transport/http/api"
	"kpm/internal/transport/http/middleware"
	"kpm/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *directory.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/", h.handleListUsers)
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/{userID}", h.handleGetUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Post("/", h.handleCreateUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Put("/{userID}", h.handleUpdateUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Post("/{userID}/status", h.handleSetUserStatus)
	})
	r.Route("/org-units", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/", h.handleListOrgUnits)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Post("/", h.handleCreateOrgUnit)
	})
	r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/org-chart", h.handleOrgChart)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context(), r.URL.Query().Get("orgUnitId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

type userPayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	OrgUnitID string `json:"orgUnitId"`
	ManagerID string `json:"managerId"`
	Locale    string `json:"locale"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	v.Required("role", payload.Role, "role is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}

	user := directory.User{
		Name:      payload.Name,
		Email:     payload.Email,
		Role:      directory.Role(payload.Role),
		OrgUnitID: payload.OrgUnitID,
		ManagerID: payload.ManagerID,
		Locale:    payload.Locale,
	}
	id, err := h.Service.CreateUser(r.Context(), user, hash)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "user_create_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	user.ID = id

	_ = h.Audit.Record(r.Context(), actor.UserID, "user.create", "user", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, user)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	before, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	user := before
	if payload.Name != "" {
		user.Name = payload.Name
	}
	if payload.Role != "" {
		user.Role = directory.Role(payload.Role)
	}
	if payload.OrgUnitID != "" {
		user.OrgUnitID = payload.OrgUnitID
	}
	user.ManagerID = payload.ManagerID
	if payload.Locale != "" {
		user.Locale = payload.Locale
	}

	if err := h.Service.UpdateUser(r.Context(), user); err != nil {
		api.Fail(w, http.StatusBadRequest, "user_update_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), actor.UserID, "user.update", "user", userID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, user)
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.SetUserStatus(r.Context(), userID, payload.Status); err != nil {
		api.Fail(w, http.StatusBadRequest, "user_status_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), actor.UserID, "user.status", "user", userID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload)
	api.Success(w, map[string]string{"id": userID, "status": payload.Status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListOrgUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Service.ListOrgUnits(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_list_failed", "failed to list org units", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, units, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateOrgUnit(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload directory.OrgUnit
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateOrgUnit(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_create_failed", "failed to create org unit", middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), actor.UserID, "orgunit.create", "org_unit", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type chartNode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	OrgUnitID string `json:"orgUnitId,omitempty"`
	ManagerID string `json:"managerId,omitempty"`
}

func (h *Handler) handleOrgChart(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context(), "")
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "chart_failed", "failed to build reporting chart", middleware.GetRequestID(r.Context()))
		return
	}
	nodes := make([]chartNode, 0, len(users))
	for _, u := range users {
		if u.Status != directory.UserStatusActive {
			continue
		}
		nodes = append(nodes, chartNode{
			ID:        u.ID,
			Name:      u.Name,
			Role:      string(u.Role),
			OrgUnitID: u.OrgUnitID,
			ManagerID: u.ManagerID,
		})
	}
	api.Success(w, nodes, middleware.GetRequestID(r.Context()))
}
