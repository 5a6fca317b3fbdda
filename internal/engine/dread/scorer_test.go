package dread

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskforge/internal/domain/models"
	"riskforge/pkg/logger"
)

func newTestScorer() *Scorer {
	return NewScorer(logger.NewDevelopment())
}

func TestCalculateScore(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name    string
		factors models.DreadFactors
		expect  float64
		wantErr bool
	}{
		{
			name:    "uniform eights",
			factors: models.DreadFactors{Damage: 8, Reproducibility: 8, Exploitability: 8, AffectedUsers: 8, Discoverability: 8},
			expect:  8.0,
		},
		{
			name:    "mixed values round to one decimal",
			factors: models.DreadFactors{Damage: 9, Reproducibility: 7, Exploitability: 6, AffectedUsers: 8, Discoverability: 3},
			expect:  6.6,
		},
		{
			name:    "all zero is valid",
			factors: models.DreadFactors{},
			expect:  0.0,
		},
		{
			name:    "all ten",
			factors: models.DreadFactors{Damage: 10, Reproducibility: 10, Exploitability: 10, AffectedUsers: 10, Discoverability: 10},
			expect:  10.0,
		},
		{
			name:    "negative factor rejected",
			factors: models.DreadFactors{Damage: -0.1, Reproducibility: 5, Exploitability: 5, AffectedUsers: 5, Discoverability: 5},
			wantErr: true,
		},
		{
			name:    "factor above ten rejected",
			factors: models.DreadFactors{Damage: 5, Reproducibility: 5, Exploitability: 10.5, AffectedUsers: 5, Discoverability: 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := s.CalculateScore(tt.factors)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, models.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expect, score, 1e-9)
		})
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	tests := []struct {
		score  float64
		expect models.RiskLevel
	}{
		{9.0, models.RiskLevelCritical},
		{8.9, models.RiskLevelHigh},
		{7.0, models.RiskLevelHigh},
		{6.9, models.RiskLevelMedium},
		{5.0, models.RiskLevelMedium},
		{4.9, models.RiskLevelLow},
		{3.0, models.RiskLevelLow},
		{2.9, models.RiskLevelInfo},
		{0.0, models.RiskLevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, models.DreadRiskLevel(tt.score), "score %.1f", tt.score)
	}
}

func TestAssess(t *testing.T) {
	s := newTestScorer()

	threat := &models.Threat{ID: uuid.New(), Title: "Session hijacking of checkout"}
	factors := models.DreadFactors{Damage: 8, Reproducibility: 8, Exploitability: 8, AffectedUsers: 8, Discoverability: 8}

	assessment, err := s.Assess(threat, factors)
	require.NoError(t, err)

	assert.Equal(t, threat.ID, assessment.ThreatID)
	assert.Equal(t, threat.Title, assessment.ThreatName)
	assert.InDelta(t, 8.0, assessment.Score, 1e-9)
	assert.Equal(t, models.RiskLevelHigh, assessment.RiskLevel)
	assert.NotEmpty(t, assessment.Recommendation)

	require.Len(t, assessment.Justifications, 5)
	for _, name := range factorNames {
		assert.Contains(t, assessment.Justifications, name)
	}
}

func TestAssess_NilThreatAllowed(t *testing.T) {
	s := newTestScorer()

	assessment, err := s.Assess(nil, models.DreadFactors{Damage: 5, Reproducibility: 5, Exploitability: 5, AffectedUsers: 5, Discoverability: 5})
	require.NoError(t, err)

	assert.Equal(t, uuid.Nil, assessment.ThreatID)
	assert.Empty(t, assessment.ThreatName)
	assert.InDelta(t, 5.0, assessment.Score, 1e-9)
}

func TestAssessThreat_NilThreat(t *testing.T) {
	s := newTestScorer()

	_, err := s.AssessThreat(nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestInferFactors(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name   string
		threat models.Threat
		check  func(t *testing.T, f models.DreadFactors)
	}{
		{
			name:   "bare threat keeps all baselines",
			threat: models.Threat{Title: "Something odd"},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, models.DreadFactors{Damage: 5, Reproducibility: 5, Exploitability: 5, AffectedUsers: 5, Discoverability: 5}, f)
			},
		},
		{
			name:   "critical impact raises damage",
			threat: models.Threat{Title: "x", Impact: models.SeverityCritical},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 8.0, f.Damage)
			},
		},
		{
			name:   "low impact never lowers the baseline",
			threat: models.Threat{Title: "x", Impact: models.SeverityLow},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 5.0, f.Damage)
			},
		},
		{
			name:   "injection title",
			threat: models.Threat{Title: "SQL injection against orders"},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 9.0, f.Damage)
				assert.Equal(t, 7.0, f.Exploitability)
			},
		},
		{
			name:   "denial of service title",
			threat: models.Threat{Title: "Denial of service via request flooding"},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 9.0, f.AffectedUsers)
				assert.Equal(t, 6.0, f.Damage)
			},
		},
		{
			name:   "tampering category raises reproducibility",
			threat: models.Threat{Title: "x", Category: models.StrideTampering},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 7.0, f.Reproducibility)
			},
		},
		{
			name:   "high likelihood",
			threat: models.Threat{Title: "x", Likelihood: models.LikelihoodHigh},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 8.0, f.Exploitability)
				assert.Equal(t, 7.0, f.Reproducibility)
			},
		},
		{
			name:   "public component raises discoverability",
			threat: models.Threat{Title: "x", ComponentName: "Public API Gateway"},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 8.0, f.Discoverability)
			},
		},
		{
			name:   "internal component stays at baseline",
			threat: models.Threat{Title: "x", ComponentName: "Internal batch runner"},
			check: func(t *testing.T, f models.DreadFactors) {
				// The internal rule caps at 4 but max keeps the 5 baseline
				assert.Equal(t, 5.0, f.Discoverability)
			},
		},
		{
			name:   "auth CWE raises damage and reproducibility",
			threat: models.Threat{Title: "x", CWEID: "CWE-306"},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 7.0, f.Damage)
				assert.Equal(t, 8.0, f.Reproducibility)
			},
		},
		{
			name: "rules compound via max",
			threat: models.Threat{
				Title:         "SQL injection against billing",
				Category:      models.StrideTampering,
				Likelihood:    models.LikelihoodHigh,
				Impact:        models.SeverityCritical,
				ComponentName: "Billing API",
				CWEID:         "CWE-89",
			},
			check: func(t *testing.T, f models.DreadFactors) {
				assert.Equal(t, 9.0, f.Damage)
				assert.Equal(t, 8.0, f.Exploitability)
				assert.Equal(t, 7.0, f.Reproducibility)
				assert.Equal(t, 8.0, f.Discoverability)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := s.InferFactors(&tt.threat)
			tt.check(t, f)

			for _, v := range factorValues(f) {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 10.0)
			}
		})
	}
}

func TestAssessBatch(t *testing.T) {
	s := newTestScorer()

	threats := []models.Threat{
		{ID: uuid.New(), Title: "SQL injection against billing", Impact: models.SeverityCritical, Likelihood: models.LikelihoodHigh, CWEID: "CWE-89", ComponentName: "Billing API"},
		{ID: uuid.New(), Title: "Log tampering", Category: models.StrideTampering},
		{ID: uuid.New(), Title: "Quiet misconfiguration"},
	}

	result, err := s.AssessBatch(threats)
	require.NoError(t, err)

	require.Len(t, result.Assessments, 3)
	assert.GreaterOrEqual(t, result.MaxScore, result.MeanScore)
	assert.GreaterOrEqual(t, result.MeanScore, result.MinScore)

	total := 0
	for _, count := range result.ByRiskLevel {
		total += count
	}
	assert.Equal(t, 3, total)

	require.NotEmpty(t, result.TopRisks)
	assert.Equal(t, result.MaxScore, result.TopRisks[0].Score)
	for i := 1; i < len(result.TopRisks); i++ {
		assert.GreaterOrEqual(t, result.TopRisks[i-1].Score, result.TopRisks[i].Score)
	}
}

func TestAssessBatch_TopRisksCappedAtFive(t *testing.T) {
	s := newTestScorer()

	threats := make([]models.Threat, 8)
	for i := range threats {
		threats[i] = models.Threat{ID: uuid.New(), Title: "Threat"}
	}

	result, err := s.AssessBatch(threats)
	require.NoError(t, err)

	assert.Len(t, result.Assessments, 8)
	assert.Len(t, result.TopRisks, 5)
}

func TestAssessBatch_Empty(t *testing.T) {
	s := newTestScorer()

	result, err := s.AssessBatch(nil)
	require.NoError(t, err)

	assert.Empty(t, result.Assessments)
	assert.Empty(t, result.TopRisks)
	assert.Zero(t, result.MeanScore)
}

func TestCompareAssessments(t *testing.T) {
	s := newTestScorer()

	a, err := s.Assess(&models.Threat{ID: uuid.New(), Title: "Alpha"},
		models.DreadFactors{Damage: 9, Reproducibility: 4, Exploitability: 6, AffectedUsers: 7, Discoverability: 5})
	require.NoError(t, err)
	b, err := s.Assess(&models.Threat{ID: uuid.New(), Title: "Beta"},
		models.DreadFactors{Damage: 3, Reproducibility: 8, Exploitability: 6, AffectedUsers: 2, Discoverability: 9})
	require.NoError(t, err)

	comparison, err := s.CompareAssessments([]models.DreadAssessment{*a, *b})
	require.NoError(t, err)

	require.Len(t, comparison.Factors, 5)

	damage := comparison.Factors[0]
	assert.Equal(t, "damage", damage.Factor)
	assert.Equal(t, 9.0, damage.Max)
	assert.Equal(t, "Alpha", damage.MaxHolder)
	assert.Equal(t, 3.0, damage.Min)
	assert.Equal(t, "Beta", damage.MinHolder)
	assert.InDelta(t, 6.0, damage.Mean, 1e-9)

	// Tied factor: the first assessment holds both extremes
	exploit := comparison.Factors[2]
	assert.Equal(t, "Alpha", exploit.MaxHolder)
	assert.Equal(t, "Alpha", exploit.MinHolder)

	require.Len(t, comparison.Ranking, 2)
	assert.Equal(t, "Alpha", comparison.Ranking[0].ThreatName)
}

func TestCompareAssessments_RequiresTwo(t *testing.T) {
	s := newTestScorer()

	_, err := s.CompareAssessments(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	a, err := s.Assess(nil, models.DreadFactors{Damage: 5, Reproducibility: 5, Exploitability: 5, AffectedUsers: 5, Discoverability: 5})
	require.NoError(t, err)

	_, err = s.CompareAssessments([]models.DreadAssessment{*a})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestAssessmentWorksheet(t *testing.T) {
	worksheet := AssessmentWorksheet()

	require.Len(t, worksheet.Factors, 5)
	for _, factor := range worksheet.Factors {
		assert.NotEmpty(t, factor.Name)
		require.NotEmpty(t, factor.Guidelines)
		for i := 1; i < len(factor.Guidelines); i++ {
			assert.Greater(t, factor.Guidelines[i-1].Threshold, factor.Guidelines[i].Threshold,
				"guidelines for %s not in descending order", factor.Name)
		}
	}
}

func TestCalibrationExamples(t *testing.T) {
	s := newTestScorer()

	examples := CalibrationExamples()
	require.NotEmpty(t, examples)

	for _, example := range examples {
		factors := models.DreadFactors{
			Damage:          example.Damage,
			Reproducibility: example.Reproducibility,
			Exploitability:  example.Exploitability,
			AffectedUsers:   example.AffectedUsers,
			Discoverability: example.Discoverability,
		}

		// Every example must be scoreable as-is
		score, err := s.CalculateScore(factors)
		require.NoError(t, err, "example %q", example.Scenario)
		assert.NotEmpty(t, example.Rationale, "example %q", example.Scenario)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 10.0)
	}
}
