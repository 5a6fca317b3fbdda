package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMatrixRiskLevel(t *testing.T) {
	tests := []struct {
		score  int
		expect RiskLevel
	}{
		{25, RiskLevelCritical},
		{20, RiskLevelCritical},
		{19, RiskLevelHigh},
		{12, RiskLevelHigh},
		{11, RiskLevelMedium},
		{6, RiskLevelMedium},
		{5, RiskLevelLow},
		{1, RiskLevelLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, MatrixRiskLevel(tt.score), "score %d", tt.score)
	}
}

func TestSeverityWeight(t *testing.T) {
	ordered := []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Weight(), ordered[i-1].Weight())
	}
	assert.Zero(t, Severity("bogus").Weight())
}

func TestPriorityRankAndImpact(t *testing.T) {
	assert.Less(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Less(t, PriorityLow.Rank(), Priority("bogus").Rank())

	assert.Equal(t, 5, PriorityCritical.ImpactScore())
	assert.Equal(t, 4, PriorityHigh.ImpactScore())
	assert.Equal(t, 3, PriorityMedium.ImpactScore())
	assert.Equal(t, 2, PriorityLow.ImpactScore())
	assert.Equal(t, 1, Priority("bogus").ImpactScore())
}

func TestDataClassificationIsSensitive(t *testing.T) {
	assert.True(t, ClassificationConfidential.IsSensitive())
	assert.True(t, ClassificationRestricted.IsSensitive())
	assert.False(t, ClassificationInternal.IsSensitive())
	assert.False(t, ClassificationPublic.IsSensitive())
	assert.False(t, DataClassification("").IsSensitive())
}

func TestThreatModelLookups(t *testing.T) {
	model := &ThreatModel{
		ID: uuid.New(),
		Components: []Component{
			{ID: "api", Name: "API"},
			{ID: "db", Name: "DB"},
		},
		TrustBoundaries: []TrustBoundary{
			{ID: "b1", ComponentIDs: []string{"api"}},
		},
	}

	comp, ok := model.ComponentByID("db")
	assert.True(t, ok)
	assert.Equal(t, "DB", comp.Name)

	_, ok = model.ComponentByID("missing")
	assert.False(t, ok)

	assert.Equal(t, "b1", model.BoundaryOf("api"))
	assert.Empty(t, model.BoundaryOf("db"))
	assert.Empty(t, model.BoundaryOf("missing"))
}

func TestThreatTargetID(t *testing.T) {
	component := Threat{ComponentID: "api", FlowID: "f1"}
	assert.Equal(t, "api", component.TargetID(), "component reference wins when both are set")

	flow := Threat{FlowID: "f1"}
	assert.Equal(t, "f1", flow.TargetID())

	assert.Empty(t, (&Threat{}).TargetID())
}

func TestParseStrideCategory(t *testing.T) {
	for _, category := range AllStrideCategories() {
		assert.Equal(t, category, ParseStrideCategory(category.String()))
	}
	assert.Equal(t, StrideCategory("weird"), ParseStrideCategory("weird"))
}
