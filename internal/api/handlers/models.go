package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"riskforge/internal/domain/models"
	"riskforge/internal/domain/services"
	"riskforge/pkg/logger"
)

// ModelsHandler handles threat model CRUD requests
type ModelsHandler struct {
	service *services.ModelService
	logger  *logger.Logger
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(service *services.ModelService, log *logger.Logger) *ModelsHandler {
	return &ModelsHandler{
		service: service,
		logger:  log.WithComponent("models-handler"),
	}
}

// Create handles POST /api/v1/models
func (h *ModelsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var model models.ThreatModel
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}

	created, err := h.service.Create(r.Context(), &model)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, created)
}

// Get handles GET /api/v1/models/{id}
func (h *ModelsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid model id", err)
		return
	}

	model, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, model)
}

// List handles GET /api/v1/models
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tenantID := query.Get("tenant_id")
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	list, err := h.service.List(r.Context(), tenantID, limit, offset)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"models": list,
		"count":  len(list),
	})
}

// Delete handles DELETE /api/v1/models/{id}
func (h *ModelsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid model id", err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
