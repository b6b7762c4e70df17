package insightshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpm/internal/domain/auth"
	"kpm/internal/domain/insights"
	"kpm/internal/domain/kpi"
	"kpm/internal/transport/http/api"
	"kpm/internal/transport/http/middleware"
)

type Handler struct {
	Kpis  *kpi.Service
	Perms middleware.PermissionStore
}

func NewHandler(kpis *kpi.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Kpis: kpis, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/insights", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermInsightsRead, h.Perms)).Get("/suggestions", h.handleSuggestions)
		r.With(middleware.RequirePermission(auth.PermInsightsRead, h.Perms)).Get("/anomalies", h.handleAnomalies)
	})
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	if department == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "department query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, insights.Suggestions(department), middleware.GetRequestID(r.Context()))
}

// handleAnomalies scans the caller's reported actuals in a cycle against
// their targets.
func (h *Handler) handleAnomalies(w http.ResponseWriter, r *http.Request) {
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

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = user.UserID
	}

	defs, err := h.Kpis.ListDefinitions(r.Context(), cycleID, userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "anomaly_scan_failed", "failed to load kpi definitions", middleware.GetRequestID(r.Context()))
		return
	}
	actuals, err := h.Kpis.ListActuals(r.Context(), cycleID, userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "anomaly_scan_failed", "failed to load kpi actuals", middleware.GetRequestID(r.Context()))
		return
	}

	byKpi := make(map[string]kpi.Actual, len(actuals))
	for _, actual := range actuals {
		byKpi[actual.KpiID] = actual
	}

	observations := make([]insights.Observation, 0, len(defs))
	for _, def := range defs {
		actual, ok := byKpi[def.ID]
		if !ok {
			continue
		}
		observations = append(observations, insights.Observation{
			KpiID:       def.ID,
			Title:       def.Title,
			ActualValue: actual.ActualValue,
			TargetValue: def.Target,
		})
	}

	api.Success(w, insights.DetectAnomalies(observations), middleware.GetRequestID(r.Context()))
}
