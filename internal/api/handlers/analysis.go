package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"riskforge/internal/domain/models"
	"riskforge/internal/domain/services"
	"riskforge/pkg/logger"
)

// AnalysisHandler handles analysis run requests
type AnalysisHandler struct {
	service *services.AnalysisService
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  log.WithComponent("analysis-handler"),
	}
}

// decodeRunOptions reads optional run options from the body; an empty body
// means defaults
func decodeRunOptions(r *http.Request) (services.RunOptions, error) {
	var opts services.RunOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && err != io.EOF {
		return opts, err
	}
	return opts, nil
}

// RunStride handles POST /api/v1/models/{id}/analyze/stride
func (h *AnalysisHandler) RunStride(w http.ResponseWriter, r *http.Request) {
	modelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid model id", err)
		return
	}
	opts, err := decodeRunOptions(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.RunStride(r.Context(), modelID, opts)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// RunPasta handles POST /api/v1/models/{id}/analyze/pasta
func (h *AnalysisHandler) RunPasta(w http.ResponseWriter, r *http.Request) {
	modelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid model id", err)
		return
	}
	opts, err := decodeRunOptions(r)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.service.RunPasta(r.Context(), modelID, opts)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// GetRun handles GET /api/v1/runs/{id}
func (h *AnalysisHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid run id", err)
		return
	}

	result, err := h.service.GetRunResult(r.Context(), runID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// LatestResult handles GET /api/v1/models/{id}/results/{methodology}
func (h *AnalysisHandler) LatestResult(w http.ResponseWriter, r *http.Request) {
	modelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid model id", err)
		return
	}
	methodology := chi.URLParam(r, "methodology")
	switch methodology {
	case services.MethodologySTRIDE, services.MethodologyPASTA:
	default:
		respondError(w, h.logger, http.StatusBadRequest, "unknown methodology", nil)
		return
	}

	result, err := h.service.LatestResult(r.Context(), modelID, methodology)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// threatStatusRequest is the body for threat triage updates
type threatStatusRequest struct {
	Status models.ThreatStatus `json:"status"`
}

// UpdateThreatStatus handles PATCH /api/v1/threats/{id}/status
func (h *AnalysisHandler) UpdateThreatStatus(w http.ResponseWriter, r *http.Request) {
	threatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid threat id", err)
		return
	}

	var req threatStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.service.UpdateThreatStatus(r.Context(), threatID, req.Status); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"id":     threatID,
		"status": req.Status,
	})
}
