package stride

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskforge/internal/domain/knowledge"
	"riskforge/internal/domain/models"
	"riskforge/pkg/logger"
)

func newTestEnumerator() *Enumerator {
	return NewEnumerator(knowledge.NewCatalog(), logger.NewDevelopment())
}

func TestSanitizePrefix(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"plain name", "Payments", "PAYM"},
		{"short name padded", "db", "DBXX"},
		{"digits and symbols stripped", "api-2 gw!", "APIG"},
		{"empty name", "", "XXXX"},
		{"lowercase uppercased", "auth", "AUTH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, sanitizePrefix(tt.input))
		})
	}
}

func TestAnalyze_ComponentTemplates(t *testing.T) {
	e := newTestEnumerator()

	tests := []struct {
		name          string
		componentType models.ComponentType
		expectThreats int
	}{
		{"process", models.ComponentTypeProcess, 5},
		{"application maps to process set", models.ComponentTypeApplication, 5},
		{"database", models.ComponentTypeDatabase, 4},
		{"datastore", models.ComponentTypeDatastore, 4},
		{"external entity", models.ComponentTypeExternalEntity, 2},
		{"api gateway", models.ComponentTypeAPIGateway, 5},
		{"trust boundary", models.ComponentTypeTrustBoundary, 2},
		{"unknown type falls back to process set", models.ComponentType("lambda"), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &models.ThreatModel{
				ID:   uuid.New(),
				Name: "single component",
				Components: []models.Component{
					{ID: "c1", Name: "Target", Type: tt.componentType},
				},
			}

			result := e.Analyze(model)

			assert.Len(t, result.Threats, tt.expectThreats)
			assert.Equal(t, tt.expectThreats, result.Count)
			for _, threat := range result.Threats {
				assert.Equal(t, "c1", threat.ComponentID)
				assert.Equal(t, "Target", threat.ComponentName)
				assert.Equal(t, models.ThreatStatusIdentified, threat.Status)
				assert.Contains(t, threat.Title, "Target")
				assert.NotContains(t, threat.Title, "{component}")
			}
		})
	}
}

func TestAnalyze_FlowThreats(t *testing.T) {
	e := newTestEnumerator()

	tests := []struct {
		name          string
		encrypted     bool
		authenticated bool
		expectThreats int
		categories    []models.StrideCategory
	}{
		{
			name:          "secure flow contributes nothing",
			encrypted:     true,
			authenticated: true,
			expectThreats: 0,
		},
		{
			name:          "unencrypted only",
			encrypted:     false,
			authenticated: true,
			expectThreats: 1,
			categories:    []models.StrideCategory{models.StrideInformationDisclosure},
		},
		{
			name:          "unauthenticated only",
			encrypted:     true,
			authenticated: false,
			expectThreats: 1,
			categories:    []models.StrideCategory{models.StrideSpoofing},
		},
		{
			name:          "both checks fail",
			encrypted:     false,
			authenticated: false,
			expectThreats: 2,
			categories: []models.StrideCategory{
				models.StrideInformationDisclosure,
				models.StrideSpoofing,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &models.ThreatModel{
				ID:   uuid.New(),
				Name: "flows only",
				DataFlows: []models.DataFlow{
					{
						ID:            "f1",
						SourceID:      "a",
						TargetID:      "b",
						Protocol:      "http",
						Encrypted:     tt.encrypted,
						Authenticated: tt.authenticated,
					},
				},
			}

			result := e.Analyze(model)

			require.Len(t, result.Threats, tt.expectThreats)
			for i, threat := range result.Threats {
				assert.Equal(t, tt.categories[i], threat.Category)
				assert.Equal(t, "f1", threat.FlowID)
				assert.Empty(t, threat.ComponentID)
			}
		})
	}
}

func TestAnalyze_DatabaseWithInsecureFlow(t *testing.T) {
	e := newTestEnumerator()

	model := &models.ThreatModel{
		ID:   uuid.New(),
		Name: "orders",
		Components: []models.Component{
			{
				ID:                 "db",
				Name:               "Orders DB",
				Type:               models.ComponentTypeDatabase,
				DataClassification: models.ClassificationRestricted,
			},
		},
		DataFlows: []models.DataFlow{
			{ID: "f1", SourceID: "app", TargetID: "db", Protocol: "tcp"},
		},
	}

	result := e.Analyze(model)

	// 4 datastore template threats plus disclosure and spoofing for the flow
	require.Len(t, result.Threats, 6)

	flowThreats := 0
	for _, threat := range result.Threats {
		if threat.FlowID != "" {
			flowThreats++
		}
	}
	assert.Equal(t, 2, flowThreats)
}

func TestAnalyze_DiagramIDSequence(t *testing.T) {
	e := newTestEnumerator()

	model := &models.ThreatModel{
		ID:   uuid.New(),
		Name: "sequencing",
		Components: []models.Component{
			{ID: "c1", Name: "Auth Service", Type: models.ComponentTypeProcess},
			{ID: "c2", Name: "User DB", Type: models.ComponentTypeDatabase},
		},
		DataFlows: []models.DataFlow{
			{ID: "f1", SourceID: "c1", TargetID: "c2"},
		},
	}

	result := e.Analyze(model)

	// 5 process + 4 datastore + 2 flow threats, numbered run-wide
	require.Len(t, result.DiagramIDs, 11)
	assert.Equal(t, "AUTH-001", result.DiagramIDs[0])
	assert.Equal(t, "AUTH-005", result.DiagramIDs[4])
	assert.Equal(t, "USER-006", result.DiagramIDs[5])
	assert.Equal(t, "USER-009", result.DiagramIDs[8])
	assert.Equal(t, "FLOW-010", result.DiagramIDs[9])
	assert.Equal(t, "FLOW-011", result.DiagramIDs[10])

	seen := make(map[string]bool)
	for _, id := range result.DiagramIDs {
		assert.False(t, seen[id], "duplicate diagram id %s", id)
		seen[id] = true
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	e := newTestEnumerator()

	model := &models.ThreatModel{
		ID:   uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Name: "repeatable",
		Components: []models.Component{
			{ID: "c1", Name: "Gateway", Type: models.ComponentTypeAPIGateway},
			{ID: "c2", Name: "Ledger", Type: models.ComponentTypeDatastore},
		},
		DataFlows: []models.DataFlow{
			{ID: "f1", SourceID: "c1", TargetID: "c2", Encrypted: false, Authenticated: true},
		},
	}

	first := e.Analyze(model)
	second := e.Analyze(model)

	require.Equal(t, first.Count, second.Count)
	for i := range first.Threats {
		assert.Equal(t, first.Threats[i].ID, second.Threats[i].ID)
		assert.Equal(t, first.Threats[i].DiagramID, second.Threats[i].DiagramID)
		assert.Equal(t, first.Threats[i].Title, second.Threats[i].Title)
	}
}

func TestAnalyze_DanglingFlowEndpoint(t *testing.T) {
	e := newTestEnumerator()

	model := &models.ThreatModel{
		ID:   uuid.New(),
		Name: "dangling",
		DataFlows: []models.DataFlow{
			{ID: "f1", SourceID: "ghost", TargetID: "also-ghost"},
		},
	}

	result := e.Analyze(model)

	// Dangling endpoints keep the raw id in the description
	require.Len(t, result.Threats, 2)
	assert.Contains(t, result.Threats[0].Description, "ghost")
}

func TestAnalyze_EmptyModel(t *testing.T) {
	e := newTestEnumerator()

	result := e.Analyze(&models.ThreatModel{ID: uuid.New(), Name: "empty"})

	assert.Empty(t, result.Threats)
	assert.Empty(t, result.DiagramIDs)
	assert.Zero(t, result.Count)
}
