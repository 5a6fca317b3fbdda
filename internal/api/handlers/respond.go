package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"riskforge/internal/domain/models"
	"riskforge/pkg/logger"
)

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, log *logger.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, log *logger.Logger, status int, message string, err error) {
	details := ""
	if err != nil {
		log.Error().Err(err).Msg(message)
		details = err.Error()
	}
	respondJSON(w, log, status, map[string]any{
		"error":   message,
		"details": details,
	})
}

// respondDomainError maps domain sentinel errors onto HTTP statuses:
// NotFound 404, InvalidArgument 400, anything else 500
func respondDomainError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, log, http.StatusNotFound, "not found", err)
	case errors.Is(err, models.ErrInvalidArgument):
		respondError(w, log, http.StatusBadRequest, "invalid argument", err)
	default:
		respondError(w, log, http.StatusInternalServerError, "internal error", err)
	}
}
