package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wager-analytics/internal/application/services"
	"github.com/bimakw/wager-analytics/internal/domain/analytics"
)

// MetricsHandler handles HTTP requests for dashboard metrics
type MetricsHandler struct {
	service *services.MetricsService
	logger  *zap.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(service *services.MetricsService, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the metrics routes
func (h *MetricsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/metrics", func(r chi.Router) {
		r.Get("/overview", h.GetOverview)
		r.Get("/overview/extended", h.GetExtendedOverview)
		r.Get("/cashflow", h.GetCashflow)
		r.Get("/timeseries", h.GetTimeline)
		r.Get("/breakdown/{dimension}", h.GetBreakdown)
		r.Get("/dashboard", h.GetDashboard)
	})
}

// GetOverview handles GET /metrics/overview
func (h *MetricsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetOverview(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "get overview", err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// GetExtendedOverview handles GET /metrics/overview/extended
func (h *MetricsHandler) GetExtendedOverview(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetExtendedOverview(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "get extended overview", err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// GetCashflow handles GET /metrics/cashflow
func (h *MetricsHandler) GetCashflow(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetCashflow(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "get cashflow", err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// GetTimeline handles GET /metrics/timeseries?category=
func (h *MetricsHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	var category analytics.Category
	if v := r.URL.Query().Get("category"); v != "" {
		c, err := analytics.ParseCategory(strings.ToLower(v))
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		category = c
	}

	response, err := h.service.GetTimeline(r.Context(), category)
	if err != nil {
		respondServiceError(w, h.logger, "get timeline", err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// GetBreakdown handles GET /metrics/breakdown/{dimension}?category=&sport=
func (h *MetricsHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	dimension, err := analytics.ParseDimension(strings.ToLower(chi.URLParam(r, "dimension")))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	v := r.URL.Query().Get("category")
	if v == "" {
		respondError(w, http.StatusBadRequest, "category is required")
		return
	}
	category, err := analytics.ParseCategory(strings.ToLower(v))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := services.BreakdownQuery{
		Dimension: dimension,
		Category:  category,
	}
	if r.URL.Query().Has("sport") {
		sport := sportFilter(r.URL.Query().Get("sport"))
		query.Sport = &sport
	}

	response, err := h.service.GetBreakdown(r.Context(), query)
	if err != nil {
		respondServiceError(w, h.logger, "get breakdown", err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// GetDashboard handles GET /metrics/dashboard
func (h *MetricsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetDashboard(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "get dashboard", err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// sportFilter maps the reserved words for a missing sport onto the
// unclassified key
func sportFilter(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "unclassified", "unknown":
		return analytics.Unclassified
	}
	return v
}
