package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wager-analytics/internal/application/services"
)

// BatchHandler exposes the ingestion history
type BatchHandler struct {
	service *services.IngestService
	logger  *zap.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(service *services.IngestService, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{
		service: service,
		logger:  logger,
	}
}

// BatchDTO is the API representation of an ingested batch
type BatchDTO struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	RowCount  int    `json:"row_count"`
	CreatedAt string `json:"created_at"`
}

// BatchListResponse is the API response for the batch history
type BatchListResponse struct {
	Data []BatchDTO `json:"data"`
}

// RegisterRoutes registers the batch routes
func (h *BatchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/batches", h.ListBatches)
}

// ListBatches handles GET /batches?limit=
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	batches, err := h.service.ListBatches(r.Context(), limit)
	if err != nil {
		respondServiceError(w, h.logger, "list batches", err)
		return
	}

	response := BatchListResponse{Data: make([]BatchDTO, len(batches))}
	for i, b := range batches {
		response.Data[i] = BatchDTO{
			ID:        b.ID,
			Source:    b.Source,
			RowCount:  b.RowCount,
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	respondJSON(w, http.StatusOK, response)
}
