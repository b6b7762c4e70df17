package reportshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kpm/internal/domain/audit"
	"kpm/internal/domain/auth"
	"kpm/internal/domain/reports"
	"kpm/internal/transport/http/api"
	"kpm/internal/transport/http/middleware"
	"kpm/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/departments", h.handleDepartments)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/individuals", h.handleIndividuals)
		r.With(middleware.RequirePermission(auth.PermReportsExport, h.Perms)).Post("/evaluations/{evaluationID}/export", h.handleExportEvaluation)
	})
}

func filterFromQuery(r *http.Request) reports.Filter {
	q := r.URL.Query()
	scoreMin, _ := strconv.ParseFloat(q.Get("scoreMin"), 64)
	scoreMax, _ := strconv.ParseFloat(q.Get("scoreMax"), 64)
	return reports.Filter{
		CycleID:   q.Get("cycleId"),
		OrgUnitID: q.Get("orgUnitId"),
		UserID:    q.Get("userId"),
		Role:      q.Get("role"),
		ScoreMin:  scoreMin,
		ScoreMax:  scoreMax,
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), filterFromQuery(r))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build summary report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.Service.Departments(r.Context(), filterFromQuery(r))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build department report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, breakdown, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleIndividuals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.Individuals(r.Context(), filterFromQuery(r))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build individual report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportEvaluation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	evaluationID := chi.URLParam(r, "evaluationID")

	fileURL, err := h.Service.GenerateEvaluationPDF(r.Context(), evaluationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to generate evaluation pdf", middleware.GetRequestID(r.Context()))
		return
	}

	_ = h.Audit.Record(r.Context(), user.UserID, "report.evaluation.export", "evaluation", evaluationID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"fileUrl": fileURL})
	api.Success(w, map[string]string{"fileUrl": fileURL}, middleware.GetRequestID(r.Context()))
}
