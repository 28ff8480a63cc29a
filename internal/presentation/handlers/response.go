package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bimakw/wager-analytics/internal/application/services"
	"github.com/bimakw/wager-analytics/internal/domain/analytics"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps service errors onto HTTP statuses. Query errors
// are the caller's fault, an unreachable store is worth retrying, anything
// else is a bug.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidQuery):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		logger.Warn("Record store unavailable", zap.String("operation", op), zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:     "record store unavailable",
			Retryable: true,
		})
	default:
		logger.Error("Failed to "+op, zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}
