package handlers

import (
	"encoding/json"
	"net/http"

	"riskforge/internal/domain/models"
	"riskforge/internal/engine/dread"
	"riskforge/pkg/logger"
)

// DreadHandler exposes the standalone DREAD scorer
type DreadHandler struct {
	scorer *dread.Scorer
	logger *logger.Logger
}

// NewDreadHandler creates a new DREAD handler
func NewDreadHandler(scorer *dread.Scorer, log *logger.Logger) *DreadHandler {
	return &DreadHandler{
		scorer: scorer,
		logger: log.WithComponent("dread-handler"),
	}
}

// Score handles POST /api/v1/dread/score: explicit factors in, score out
func (h *DreadHandler) Score(w http.ResponseWriter, r *http.Request) {
	var factors models.DreadFactors
	if err := json.NewDecoder(r.Body).Decode(&factors); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}

	score, err := h.scorer.CalculateScore(factors)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"score":      score,
		"risk_level": models.DreadRiskLevel(score),
	})
}

// assessRequest carries a threat plus optional explicit factors; when
// factors are absent they are inferred from the threat
type assessRequest struct {
	Threat  models.Threat        `json:"threat"`
	Factors *models.DreadFactors `json:"factors,omitempty"`
}

// Assess handles POST /api/v1/dread/assess
func (h *DreadHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var assessment *models.DreadAssessment
	var err error
	if req.Factors != nil {
		assessment, err = h.scorer.Assess(&req.Threat, *req.Factors)
	} else {
		assessment, err = h.scorer.AssessThreat(&req.Threat)
	}
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, assessment)
}

// batchRequest is the body for batch assessment
type batchRequest struct {
	Threats []models.Threat `json:"threats"`
}

// AssessBatch handles POST /api/v1/dread/assess/batch
func (h *DreadHandler) AssessBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.scorer.AssessBatch(req.Threats)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// compareRequest is the body for assessment comparison
type compareRequest struct {
	Assessments []models.DreadAssessment `json:"assessments"`
}

// Compare handles POST /api/v1/dread/compare
func (h *DreadHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body", err)
		return
	}

	comparison, err := h.scorer.CompareAssessments(req.Assessments)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, comparison)
}

// Worksheet handles GET /api/v1/dread/worksheet
func (h *DreadHandler) Worksheet(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, dread.AssessmentWorksheet())
}

// CalibrationExamples handles GET /api/v1/dread/calibration
func (h *DreadHandler) CalibrationExamples(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"examples": dread.CalibrationExamples(),
	})
}
