package kpishandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kpm/internal/domain/approval"
	"kpm/internal/domain/audit"
	"kpm/internal/domain/auth"
	"kpm/internal/domain/directory"
	"kpm/internal/domain/kpi"
	"kpm/internal/domain/notifications"
	"kpm/internal/domain/scoring"
	"kpm/internal/transport/http/api"
	"kpm/internal/transport/http/middleware"
	"kpm/internal/transport/http/shared"
)

type Handler struct {
	Service   *kpi.Service
	Approvals *approval.Service
	Directory *directory.Service
	Perms     middleware.PermissionStore
	Notify    *notifications.Service
	Audit     *audit.Service
	DB        *pgxpool.Pool
}

func NewHandler(service *kpi.Service, approvals *approval.Service, dir *directory.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service, db *pgxpool.Pool) *Handler {
	return &Handler{Service: service, Approvals: approvals, Directory: dir, Perms: perms, Notify: notify, Audit: auditSvc, DB: db}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kpis", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/templates", h.handleListTemplates)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/templates/{templateID}", h.handleGetTemplate)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/actuals", h.handleListActuals)
		r.With(middleware.RequirePermission(auth.PermKpisSubmit, h.Perms)).Post("/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermKpisWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/{kpiID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/{kpiID}/smart", h.handleSmartCheck)
		r.With(middleware.RequirePermission(auth.PermKpisWrite, h.Perms)).Put("/{kpiID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermKpisWrite, h.Perms)).Delete("/{kpiID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermActualsWrite, h.Perms)).Post("/{kpiID}/actual", h.handleSubmitActual)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/{kpiID}/actual", h.handleGetActual)
		r.With(middleware.RequirePermission(auth.PermActualsWrite, h.Perms)).Post("/actuals/{actualID}/evidence", h.handleAddEvidence)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/actuals/{actualID}/evidence", h.handleListEvidence)
		r.With(middleware.RequirePermission(auth.PermKpisRead, h.Perms)).Get("/evidence/{evidenceID}/description", h.handleEvidenceDescription)
	})
}

type definitionPayload struct {
	CycleID    string  `json:"cycleId"`
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	Unit       string  `json:"unit"`
	Target     float64 `json:"target"`
	Weight     float64 `json:"weight"`
	Formula    string  `json:"formula"`
	DataSource string  `json:"dataSource"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	ownerID := r.URL.Query().Get("userId")
	// Staff only ever see their own goals.
	if user.Role == string(directory.RoleStaff) || ownerID == "" {
		ownerID = user.UserID
	}
	if r.URL.Query().Get("all") == "true" && user.Role != string(directory.RoleStaff) {
		ownerID = ""
	}

	defs, err := h.Service.ListDefinitions(r.Context(), r.URL.Query().Get("cycleId"), ownerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_list_failed", "failed to list kpi definitions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, defs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	def, err := h.Service.GetDefinition(r.Context(), chi.URLParam(r, "kpiID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "kpi_not_found", "kpi definition not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, def, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload definitionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("cycleId", payload.CycleID, "cycle id is required")
	v.Required("title", payload.Title, "title is required")
	v.Required("type", payload.Type, "type is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	def := kpi.Definition{
		CycleID:    payload.CycleID,
		OwnerID:    user.UserID,
		Title:      payload.Title,
		Type:       scoring.KpiType(payload.Type),
		Unit:       payload.Unit,
		Target:     payload.Target,
		Weight:     payload.Weight,
		Formula:    payload.Formula,
		DataSource: payload.DataSource,
	}
	id, err := h.Service.CreateDefinition(r.Context(), def)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "kpi_create_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	def.ID = id

	_ = h.Audit.Record(r.Context(), user.UserID, "kpi.create", "kpi_definition", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, def)
	api.Created(w, map[string]any{"id": id, "smart": kpi.CheckSmart(def)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	kpiID := chi.URLParam(r, "kpiID")

	before, err := h.Service.GetDefinition(r.Context(), kpiID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "kpi_not_found", "kpi definition not found", middleware.GetRequestID(r.Context()))
		return
	}
	if before.OwnerID != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the owner may edit a kpi", middleware.GetRequestID(r.Context()))
		return
	}

	var payload definitionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	def := before
	if payload.Title != "" {
		def.Title = payload.Title
	}
	if payload.Type != "" {
		def.Type = scoring.KpiType(payload.Type)
	}
	if payload.Unit != "" {
		def.Unit = payload.Unit
	}
	if payload.Target != 0 {
		def.Target = payload.Target
	}
	if payload.Weight != 0 {
		def.Weight = payload.Weight
	}
	def.Formula = payload.Formula
	def.DataSource = payload.DataSource

	if err := h.Service.UpdateDefinition(r.Context(), def); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, kpi.ErrNotEditable) {
			status = http.StatusConflict
		}
		api.Fail(w, status, "kpi_update_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "kpi.update", "kpi_definition", kpiID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, def)
	api.Success(w, map[string]any{"id": kpiID, "smart": kpi.CheckSmart(def)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	kpiID := chi.URLParam(r, "kpiID")

	before, err := h.Service.GetDefinition(r.Context(), kpiID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "kpi_not_found", "kpi definition not found", middleware.GetRequestID(r.Context()))
		return
	}
	if before.OwnerID != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the owner may delete a kpi", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.DeleteDraft(r.Context(), kpiID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, kpi.ErrNotEditable) {
			status = http.StatusConflict
		}
		api.Fail(w, status, "kpi_delete_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "kpi.delete", "kpi_definition", kpiID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, nil)
	api.Success(w, map[string]string{"id": kpiID, "status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSmartCheck(w http.ResponseWriter, r *http.Request) {
	def, err := h.Service.GetDefinition(r.Context(), chi.URLParam(r, "kpiID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "kpi_not_found", "kpi definition not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, kpi.CheckSmart(def), middleware.GetRequestID(r.Context()))
}

// handleSubmit moves the caller's full draft goal set for a cycle into the
// approval workflow. An Idempotency-Key header makes retries safe.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		CycleID string `json:"cycleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.CycleID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cycle id is required", middleware.GetRequestID(r.Context()))
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash([]byte(payload.CycleID))
	if idempotencyKey != "" {
		stored, found, err := middleware.CheckIdempotency(r.Context(), h.DB, user.UserID, "kpis.submit", idempotencyKey, requestHash)
		if err != nil && !errors.Is(err, middleware.ErrIdempotencyConflict) {
			slog.Warn("idempotency check failed", "err", err)
		}
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key already used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if found {
			api.Success(w, json.RawMessage(stored), middleware.GetRequestID(r.Context()))
			return
		}
	}

	defs, err := h.Approvals.Submit(r.Context(), payload.CycleID, user.UserID)
	if err != nil {
		status, code := submitErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "kpi.submit", "cycle", payload.CycleID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]any{"kpiCount": len(defs)})
	h.notifySubmission(r, user.UserID)

	if idempotencyKey != "" {
		if encoded, err := json.Marshal(defs); err == nil {
			if err := middleware.SaveIdempotency(r.Context(), h.DB, user.UserID, "kpis.submit", idempotencyKey, requestHash, encoded); err != nil {
				slog.Warn("idempotency save failed", "err", err)
			}
		}
	}
	api.Success(w, defs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifySubmission(r *http.Request, ownerID string) {
	if err := h.Notify.Create(r.Context(), ownerID, notifications.TypeGoalsSubmitted, "Goals submitted", "Your KPI goals were submitted for approval."); err != nil {
		slog.Warn("submission notification failed", "userId", ownerID, "err", err)
	}
	chart, err := h.Directory.ReportingChart(r.Context())
	if err != nil {
		slog.Warn("approver notification chart failed", "err", err)
		return
	}
	approver, err := approval.ResolveApprover(ownerID, approval.LevelLineManager, chart)
	if err != nil {
		slog.Warn("approver notification resolve failed", "userId", ownerID, "err", err)
		return
	}
	owner, _ := chart.User(ownerID)
	if err := h.Notify.Create(r.Context(), approver.ID, notifications.TypeApprovalRequested, "Approval requested", owner.Name+" submitted KPI goals for your review."); err != nil {
		slog.Warn("approver notification failed", "approverId", approver.ID, "err", err)
	}
}

func submitErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, kpi.ErrNothingToSubmit):
		return http.StatusBadRequest, "nothing_to_submit"
	case errors.Is(err, kpi.ErrWeightSum):
		return http.StatusBadRequest, "weight_sum_invalid"
	case errors.Is(err, kpi.ErrNotEditable):
		return http.StatusConflict, "kpi_not_editable"
	case errors.Is(err, approval.ErrNoApprover):
		return http.StatusConflict, "no_approver"
	default:
		return http.StatusInternalServerError, "submit_failed"
	}
}

func (h *Handler) handleSubmitActual(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	kpiID := chi.URLParam(r, "kpiID")

	var payload struct {
		ActualValue float64 `json:"actualValue"`
		SelfComment string  `json:"selfComment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	actual, err := h.Service.SubmitActual(r.Context(), kpiID, user.UserID, payload.ActualValue, payload.SelfComment)
	if err != nil {
		status, code := actualErrorStatus(err)
		api.Fail(w, status, code, err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "kpi.actual.submit", "kpi_actual", actual.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, actual)
	if err := h.Notify.Create(r.Context(), user.UserID, notifications.TypeActualSubmitted, "Actual recorded", "Your reported result was recorded and scored."); err != nil {
		slog.Warn("actual notification failed", "userId", user.UserID, "err", err)
	}
	api.Created(w, actual, middleware.GetRequestID(r.Context()))
}

func actualErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, kpi.ErrNotFound):
		return http.StatusNotFound, "kpi_not_found"
	case errors.Is(err, kpi.ErrNotApproved):
		return http.StatusConflict, "kpi_not_approved"
	case errors.Is(err, kpi.ErrNegativeActual), errors.Is(err, kpi.ErrBehaviorOutOfBand):
		return http.StatusBadRequest, "actual_invalid"
	default:
		return http.StatusInternalServerError, "actual_submit_failed"
	}
}

func (h *Handler) handleGetActual(w http.ResponseWriter, r *http.Request) {
	actual, err := h.Service.GetActual(r.Context(), chi.URLParam(r, "kpiID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "actual_not_found", "no live actual for this kpi", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, actual, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListActuals(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	ownerID := r.URL.Query().Get("userId")
	if user.Role == string(directory.RoleStaff) || ownerID == "" {
		ownerID = user.UserID
	}

	actuals, err := h.Service.ListActuals(r.Context(), r.URL.Query().Get("cycleId"), ownerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "actual_list_failed", "failed to list actuals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, actuals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddEvidence(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		FileName    string `json:"fileName"`
		FileSize    int64  `json:"fileSize"`
		FileType    string `json:"fileType"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("fileName", payload.FileName, "file name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	file := kpi.EvidenceFile{
		ActualID:    chi.URLParam(r, "actualID"),
		FileName:    payload.FileName,
		FileSize:    payload.FileSize,
		FileType:    payload.FileType,
		UploadedBy:  user.UserID,
		Description: payload.Description,
	}
	id, err := h.Service.AddEvidence(r.Context(), file)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evidence_add_failed", "failed to store evidence", middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "kpi.evidence.add", "evidence_file", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"fileName": payload.FileName})
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEvidence(w http.ResponseWriter, r *http.Request) {
	files, err := h.Service.ListEvidence(r.Context(), chi.URLParam(r, "actualID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evidence_list_failed", "failed to list evidence", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, files, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEvidenceDescription(w http.ResponseWriter, r *http.Request) {
	description, err := h.Service.EvidenceDescription(r.Context(), chi.URLParam(r, "evidenceID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "evidence_not_found", "evidence file not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"description": description}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	api.Success(w, kpi.TemplatesForDepartment(r.URL.Query().Get("department")), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := kpi.TemplateByID(chi.URLParam(r, "templateID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "template_not_found", "kpi template not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, template, middleware.GetRequestID(r.Context()))
}
