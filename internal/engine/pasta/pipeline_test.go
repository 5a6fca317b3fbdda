package pasta

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskforge/internal/domain/models"
	"riskforge/pkg/logger"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(logger.NewDevelopment())
}

// paymentModel is a small two-boundary system: a Node API fronting a
// restricted database over an unprotected flow, with confidentiality as the
// top business objective.
func paymentModel() *models.ThreatModel {
	return &models.ThreatModel{
		ID:   uuid.MustParse("a2f1c0de-9dad-11d1-80b4-00c04fd430c8"),
		Name: "payments",
		Components: []models.Component{
			{
				ID:                "api",
				Name:              "Payment API",
				Type:              models.ComponentTypeApplication,
				Technology:        "node",
				ExposedInterfaces: []string{"https:443"},
			},
			{
				ID:                 "db",
				Name:               "Card Vault",
				Type:               models.ComponentTypeDatabase,
				Technology:         "postgres",
				DataClassification: models.ClassificationRestricted,
			},
		},
		DataFlows: []models.DataFlow{
			{ID: "f1", SourceID: "api", TargetID: "db", Protocol: "tcp"},
		},
		TrustBoundaries: []models.TrustBoundary{
			{ID: "b1", Name: "DMZ", ComponentIDs: []string{"api"}},
			{ID: "b2", Name: "Data tier", ComponentIDs: []string{"db"}},
		},
		BusinessObjectives: []models.BusinessObjective{
			{
				ID:                   "o1",
				Name:                 "Protect cardholder data",
				Priority:             models.PriorityCritical,
				SecurityRequirements: []string{"confidentiality"},
			},
			{
				ID:                   "o2",
				Name:                 "Stay available during peak",
				Priority:             models.PriorityMedium,
				SecurityRequirements: []string{"availability"},
			},
		},
	}
}

func TestRun_NilModel(t *testing.T) {
	p := newTestPipeline()

	_, err := p.Run(nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestRun_AllStagesComplete(t *testing.T) {
	p := newTestPipeline()

	result, err := p.Run(paymentModel())
	require.NoError(t, err)

	require.Len(t, result.Stages, 7)
	for i, stage := range result.Stages {
		assert.Equal(t, i+1, stage.Stage)
		assert.Equal(t, StageCompleted, stage.Status)
		assert.NotEmpty(t, stage.Name)
		assert.NotNil(t, stage.Output)
	}
}

func TestStageObjectives_RankingAndRequirements(t *testing.T) {
	p := newTestPipeline()

	model := &models.ThreatModel{
		ID: uuid.New(),
		BusinessObjectives: []models.BusinessObjective{
			{ID: "low", Priority: models.PriorityLow, SecurityRequirements: []string{"availability"}},
			{ID: "crit-a", Priority: models.PriorityCritical, SecurityRequirements: []string{"confidentiality"}},
			{ID: "med", Priority: models.PriorityMedium, SecurityRequirements: []string{"confidentiality", "integrity"}},
			{ID: "crit-b", Priority: models.PriorityCritical, SecurityRequirements: []string{"integrity"}},
		},
	}

	out, err := p.stageObjectives(model)
	require.NoError(t, err)

	// Stable sort: crit-a stays ahead of crit-b
	require.Len(t, out.RankedObjectives, 4)
	assert.Equal(t, "crit-a", out.RankedObjectives[0].ID)
	assert.Equal(t, "crit-b", out.RankedObjectives[1].ID)
	assert.Equal(t, "med", out.RankedObjectives[2].ID)
	assert.Equal(t, "low", out.RankedObjectives[3].ID)

	// Requirements are unioned in ranked order, first occurrence wins
	assert.Equal(t, []string{"confidentiality", "integrity", "availability"}, out.SecurityRequirements)
}

func TestStageTechnicalScope(t *testing.T) {
	p := newTestPipeline()

	out, err := p.stageTechnicalScope(paymentModel())
	require.NoError(t, err)

	assert.Equal(t, 1, out.ComponentsByType[models.ComponentTypeApplication])
	assert.Equal(t, 1, out.ComponentsByType[models.ComponentTypeDatabase])
	assert.Equal(t, 1, out.ComponentsByClassification[models.ClassificationRestricted])
	assert.Equal(t, []string{"https:443"}, out.ExposedInterfaces)
	assert.Equal(t, 1, out.TotalFlows)
	assert.Zero(t, out.EncryptedFlows)
	assert.Equal(t, 1, out.UnauthenticatedFlows)
}

func TestStageDecomposition(t *testing.T) {
	p := newTestPipeline()
	model := paymentModel()

	scope, err := p.stageTechnicalScope(model)
	require.NoError(t, err)
	out, err := p.stageDecomposition(model, scope)
	require.NoError(t, err)

	require.Len(t, out.EntryPoints, 1)
	assert.Equal(t, "api", out.EntryPoints[0].ID)

	require.Len(t, out.Assets, 1)
	assert.Equal(t, "db", out.Assets[0].ID)

	require.Len(t, out.CrossBoundaryFlows, 1)
	assert.Equal(t, "f1", out.CrossBoundaryFlows[0].ID)

	// 1 entry point + 1 unauthenticated flow
	assert.Equal(t, 2, out.AttackSurface)

	// No encrypted flows, no authenticated flows: no inferred controls
	assert.Empty(t, out.ExistingControls)
}

func TestStageDecomposition_ControlCoverage(t *testing.T) {
	p := newTestPipeline()

	model := &models.ThreatModel{
		ID: uuid.New(),
		Components: []models.Component{
			{ID: "a", Name: "A", Type: models.ComponentTypeProcess},
			{ID: "b", Name: "B", Type: models.ComponentTypeProcess},
		},
		DataFlows: []models.DataFlow{
			{ID: "f1", SourceID: "a", TargetID: "b", Encrypted: true, Authenticated: true},
			{ID: "f2", SourceID: "b", TargetID: "a", Encrypted: false, Authenticated: true},
			{ID: "f3", SourceID: "a", TargetID: "b", Encrypted: true, Authenticated: false},
			{ID: "f4", SourceID: "a", TargetID: "missing", Encrypted: false, Authenticated: false},
		},
	}

	scope, err := p.stageTechnicalScope(model)
	require.NoError(t, err)
	out, err := p.stageDecomposition(model, scope)
	require.NoError(t, err)

	// f4 has an unresolvable endpoint and is dropped from boundary analysis
	assert.Empty(t, out.CrossBoundaryFlows)

	require.Len(t, out.ExistingControls, 2)
	assert.Equal(t, "encryption-in-transit", out.ExistingControls[0].Name)
	assert.InDelta(t, 0.5, out.ExistingControls[0].Effectiveness, 1e-9)
	assert.Equal(t, "authentication", out.ExistingControls[1].Name)
	assert.InDelta(t, 0.5, out.ExistingControls[1].Effectiveness, 1e-9)
}

func TestStageThreatAnalysis_Dedup(t *testing.T) {
	p := newTestPipeline()

	// A sensitive datastore that is also an entry point generates an
	// information disclosure candidate from both rules; only the first is
	// kept.
	model := &models.ThreatModel{
		ID: uuid.New(),
		Components: []models.Component{
			{
				ID:                 "db",
				Name:               "Reports DB",
				Type:               models.ComponentTypeDatabase,
				DataClassification: models.ClassificationConfidential,
				ExposedInterfaces:  []string{"tcp:5432"},
			},
		},
	}

	scope, err := p.stageTechnicalScope(model)
	require.NoError(t, err)
	decomposition, err := p.stageDecomposition(model, scope)
	require.NoError(t, err)
	out, err := p.stageThreatAnalysis(model, decomposition)
	require.NoError(t, err)

	keys := make(map[string]bool)
	for _, threat := range out.Threats {
		key := string(threat.Category) + "|" + threat.TargetID()
		assert.False(t, keys[key], "duplicate key %s", key)
		keys[key] = true
	}

	// tampering, information_disclosure, elevation_of_privilege
	require.Len(t, out.Threats, 3)
	assert.Equal(t, 1, out.ByCategory[models.StrideInformationDisclosure])

	// The entry-point candidate came first, so Data leakage wins over
	// Exfiltration
	for _, threat := range out.Threats {
		if threat.Category == models.StrideInformationDisclosure {
			assert.Contains(t, threat.Title, "Data leakage")
		}
	}
}

func TestStageVulnerabilityAnalysis_Inference(t *testing.T) {
	p := newTestPipeline()
	model := paymentModel()

	scope, err := p.stageTechnicalScope(model)
	require.NoError(t, err)
	decomposition, err := p.stageDecomposition(model, scope)
	require.NoError(t, err)
	threats, err := p.stageThreatAnalysis(model, decomposition)
	require.NoError(t, err)
	out, err := p.stageVulnerabilityAnalysis(model, threats)
	require.NoError(t, err)

	byCWE := make(map[string]models.Vulnerability)
	for _, v := range out.Vulnerabilities {
		byCWE[v.CWEID] = v
	}

	// node technology, datastore, unencrypted flow, unauthenticated flow
	require.Len(t, out.Vulnerabilities, 4)
	assert.Equal(t, "api", byCWE["CWE-1321"].ComponentID)
	assert.Equal(t, "db", byCWE["CWE-89"].ComponentID)
	assert.Equal(t, "f1", byCWE["CWE-319"].ComponentID)
	assert.Equal(t, "f1", byCWE["CWE-306"].ComponentID)
	assert.InDelta(t, 8.0, byCWE["CWE-89"].Exploitability, 1e-9)

	// Every generated threat has at least one mapped vulnerability here
	for _, threat := range threats.Threats {
		assert.NotEmpty(t, out.ThreatMapping[threat.ID], "threat %s unmapped", threat.Title)
	}
}

func TestStageVulnerabilityAnalysis_JavaScriptIsNotJava(t *testing.T) {
	p := newTestPipeline()

	model := &models.ThreatModel{
		ID: uuid.New(),
		Components: []models.Component{
			{ID: "svc", Name: "Render Service", Type: models.ComponentTypeService, Technology: "JavaScript"},
		},
	}

	out, err := p.stageVulnerabilityAnalysis(model, &ThreatAnalysisOutput{})
	require.NoError(t, err)

	require.Len(t, out.Vulnerabilities, 1)
	assert.Equal(t, "CWE-1321", out.Vulnerabilities[0].CWEID)
}

func TestStageVulnerabilityAnalysis_KnownVulnKeepsID(t *testing.T) {
	p := newTestPipeline()

	known := uuid.New()
	model := &models.ThreatModel{
		ID: uuid.New(),
		KnownVulnerabilities: []models.Vulnerability{
			{ID: known, CWEID: "CWE-79", Title: "Stored XSS in admin panel", Severity: models.SeverityHigh, ComponentID: "admin", Exploitability: 6.0},
			{CWEID: "CWE-312", Title: "Secrets in config dump", Severity: models.SeverityMedium, ComponentID: "cfg", Exploitability: 4.0},
		},
	}

	out, err := p.stageVulnerabilityAnalysis(model, &ThreatAnalysisOutput{})
	require.NoError(t, err)

	require.Len(t, out.Vulnerabilities, 2)
	assert.Equal(t, known, out.Vulnerabilities[0].ID)
	assert.NotEqual(t, uuid.Nil, out.Vulnerabilities[1].ID)
}

func TestStageAttackModeling(t *testing.T) {
	p := newTestPipeline()
	model := paymentModel()

	result, err := p.Run(model)
	require.NoError(t, err)

	require.NotEmpty(t, result.AttackVectors)
	for _, vector := range result.AttackVectors {
		assert.NotEqual(t, uuid.Nil, vector.ThreatID)
		assert.NotEmpty(t, vector.VulnerabilityIDs, "vector %s has no vulnerabilities", vector.Name)

		if vector.Likelihood == models.LikelihoodHigh {
			tree := vector.AttackTree
			require.NotNil(t, tree, "high likelihood vector %s missing attack tree", vector.Name)
			assert.Equal(t, models.AttackTreeAND, tree.Operator)
			require.Len(t, tree.Children, 3)
			assert.Equal(t, models.AttackTreeOR, tree.Children[1].Operator)
			assert.Len(t, tree.Children[1].Children, len(vector.VulnerabilityIDs))
		} else {
			assert.Nil(t, vector.AttackTree)
		}
	}
}

func TestStageRiskAnalysis_MatrixBounds(t *testing.T) {
	p := newTestPipeline()

	result, err := p.Run(paymentModel())
	require.NoError(t, err)

	require.NotEmpty(t, result.RiskMatrix)
	for _, entry := range result.RiskMatrix {
		assert.GreaterOrEqual(t, entry.LikelihoodScore, 1)
		assert.LessOrEqual(t, entry.LikelihoodScore, 5)
		assert.GreaterOrEqual(t, entry.ImpactScore, 1)
		assert.LessOrEqual(t, entry.ImpactScore, 5)
		assert.Equal(t, entry.LikelihoodScore*entry.ImpactScore, entry.RiskScore)
		assert.Equal(t, models.MatrixRiskLevel(entry.RiskScore), entry.RiskLevel)
	}

	for i := 1; i < len(result.PrioritizedThreats); i++ {
		assert.GreaterOrEqual(t,
			result.PrioritizedThreats[i-1].RiskScore,
			result.PrioritizedThreats[i].RiskScore,
			"prioritized threats out of order at %d", i)
	}
}

func TestRun_CriticalDisclosureRisk(t *testing.T) {
	p := newTestPipeline()
	model := paymentModel()

	result, err := p.Run(model)
	require.NoError(t, err)

	// The exfiltration threat against the card vault rides a high-likelihood
	// vector (SQL injection surface, exploitability 8.0) and hits the
	// critical confidentiality objective: 4 x 5 = 20.
	top := result.PrioritizedThreats[0]
	assert.Equal(t, models.StrideInformationDisclosure, top.Threat.Category)
	assert.Equal(t, "db", top.Threat.ComponentID)
	assert.Equal(t, 20, top.RiskScore)
	assert.Equal(t, models.RiskLevelCritical, top.RiskLevel)

	byThreat := make(map[uuid.UUID]models.MitigationStrategy)
	for _, m := range result.MitigationStrategies {
		byThreat[m.ThreatID] = m
	}
	strategy := byThreat[top.Threat.ID]
	assert.Equal(t, models.StrategyAvoid, strategy.Strategy)
	assert.Equal(t, 1, strategy.Priority)
	assert.NotEmpty(t, strategy.Controls)
	assert.Less(t, strategy.ResidualRisk, float64(top.RiskScore))
}

func TestRun_Deterministic(t *testing.T) {
	p := newTestPipeline()
	model := paymentModel()

	first, err := p.Run(model)
	require.NoError(t, err)
	second, err := p.Run(model)
	require.NoError(t, err)

	require.Equal(t, len(first.Threats), len(second.Threats))
	for i := range first.Threats {
		assert.Equal(t, first.Threats[i].ID, second.Threats[i].ID)
	}
	require.Equal(t, len(first.AttackVectors), len(second.AttackVectors))
	for i := range first.AttackVectors {
		assert.Equal(t, first.AttackVectors[i].ID, second.AttackVectors[i].ID)
	}
	assert.Equal(t, first.RiskMatrix, second.RiskMatrix)
}

func TestRun_EmptyModel(t *testing.T) {
	p := newTestPipeline()

	result, err := p.Run(&models.ThreatModel{ID: uuid.New(), Name: "empty"})
	require.NoError(t, err)

	assert.Len(t, result.Stages, 7)
	assert.Empty(t, result.Threats)
	assert.Empty(t, result.AttackVectors)
	assert.Empty(t, result.RiskMatrix)
}
