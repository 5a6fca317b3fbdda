package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskforge/internal/engine/dread"
	"riskforge/pkg/logger"
)

func newDreadTestHandler() *DreadHandler {
	log := logger.NewDevelopment()
	return NewDreadHandler(dread.NewScorer(log), log)
}

func TestDreadScore(t *testing.T) {
	h := newDreadTestHandler()

	tests := []struct {
		name         string
		body         string
		expectStatus int
		expectScore  float64
		expectLevel  string
	}{
		{
			name:         "uniform eights score high",
			body:         `{"damage":8,"reproducibility":8,"exploitability":8,"affected_users":8,"discoverability":8}`,
			expectStatus: http.StatusOK,
			expectScore:  8.0,
			expectLevel:  "high",
		},
		{
			name:         "critical boundary",
			body:         `{"damage":9,"reproducibility":9,"exploitability":9,"affected_users":9,"discoverability":9}`,
			expectStatus: http.StatusOK,
			expectScore:  9.0,
			expectLevel:  "critical",
		},
		{
			name:         "factor out of range",
			body:         `{"damage":11,"reproducibility":5,"exploitability":5,"affected_users":5,"discoverability":5}`,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "malformed body",
			body:         `{"damage":`,
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/dread/score", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Score(rec, req)

			assert.Equal(t, tt.expectStatus, rec.Code)
			if tt.expectStatus != http.StatusOK {
				return
			}

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.InDelta(t, tt.expectScore, resp["score"].(float64), 1e-9)
			assert.Equal(t, tt.expectLevel, resp["risk_level"])
		})
	}
}

func TestDreadAssess_InferredFactors(t *testing.T) {
	h := newDreadTestHandler()

	body := `{"threat":{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","title":"SQL injection against billing","category":"tampering","likelihood":"high","impact":"critical","cwe_id":"CWE-89","status":"identified"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dread/assess", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Assess(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ThreatName string `json:"threat_name"`
		Factors    struct {
			Damage float64 `json:"damage"`
		} `json:"factors"`
		Score          float64           `json:"score"`
		RiskLevel      string            `json:"risk_level"`
		Justifications map[string]string `json:"justifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "SQL injection against billing", resp.ThreatName)
	assert.Equal(t, 9.0, resp.Factors.Damage)
	assert.Greater(t, resp.Score, 0.0)
	assert.Len(t, resp.Justifications, 5)
}

func TestDreadAssess_ExplicitFactorsWin(t *testing.T) {
	h := newDreadTestHandler()

	body := `{"threat":{"title":"Anything"},"factors":{"damage":1,"reproducibility":1,"exploitability":1,"affected_users":1,"discoverability":1}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dread/assess", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Assess(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Score     float64 `json:"score"`
		RiskLevel string  `json:"risk_level"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 1.0, resp.Score, 1e-9)
	assert.Equal(t, "informational", resp.RiskLevel)
}

func TestDreadAssessBatch(t *testing.T) {
	h := newDreadTestHandler()

	body := `{"threats":[{"title":"Denial of service via flooding"},{"title":"Log tampering","category":"tampering"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dread/assess/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.AssessBatch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Assessments []json.RawMessage `json:"assessments"`
		MeanScore   float64           `json:"mean_score"`
		TopRisks    []json.RawMessage `json:"top_risks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Assessments, 2)
	assert.Greater(t, resp.MeanScore, 0.0)
	assert.NotEmpty(t, resp.TopRisks)
}

func TestDreadCompare_RequiresTwo(t *testing.T) {
	h := newDreadTestHandler()

	body := `{"assessments":[{"threat_name":"only one","factors":{"damage":5,"reproducibility":5,"exploitability":5,"affected_users":5,"discoverability":5},"score":5}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dread/compare", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Compare(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDreadWorksheet(t *testing.T) {
	h := newDreadTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dread/worksheet", nil)
	rec := httptest.NewRecorder()

	h.Worksheet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Factors []struct {
			Name string `json:"name"`
		} `json:"factors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Factors, 5)
}

func TestDreadCalibrationExamples(t *testing.T) {
	h := newDreadTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dread/calibration", nil)
	rec := httptest.NewRecorder()

	h.CalibrationExamples(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Examples []struct {
			Scenario string `json:"scenario"`
		} `json:"examples"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Examples)
}
