package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// VersionSource reports the snapshot version of the record store
type VersionSource interface {
	Version(ctx context.Context) (string, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db      HealthChecker
	cache   HealthChecker
	records VersionSource
}

// NewHealthHandler creates a new health handler. cache and records may be nil.
func NewHealthHandler(db, cache HealthChecker, records VersionSource) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		records: records,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Snapshot  string            `json:"snapshot,omitempty"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if err := h.db.HealthCheck(ctx); err != nil {
		response.Status = "unhealthy"
		response.Services["database"] = "unhealthy: " + err.Error()
	} else {
		response.Services["database"] = "healthy"
	}

	// The record tables may be missing even when the connection is fine
	if h.records != nil && response.Status == "healthy" {
		version, err := h.records.Version(ctx)
		if err != nil {
			response.Status = "unhealthy"
			response.Services["records"] = "unhealthy: " + err.Error()
		} else {
			response.Services["records"] = "healthy"
			response.Snapshot = version
		}
	}

	// A broken cache only degrades latency
	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
			response.Services["cache"] = "unhealthy: " + err.Error()
		} else {
			response.Services["cache"] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	if h.records != nil {
		if _, err := h.records.Version(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
