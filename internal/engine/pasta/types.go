package pasta

import (
	"github.com/google/uuid"

	"riskforge/internal/domain/models"
)

// StageStatus reports how a stage finished
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
)

// StageSummary is the envelope for one stage in the run result
type StageSummary struct {
	Stage  int         `json:"stage"`
	Name   string      `json:"name"`
	Status StageStatus `json:"status"`
	Output any         `json:"outputs"`
}

// ObjectivesOutput is the stage 1 result: objectives ranked by priority and
// the union of their security requirement tags
type ObjectivesOutput struct {
	RankedObjectives     []models.BusinessObjective `json:"ranked_objectives"`
	SecurityRequirements []string                   `json:"security_requirements"`
}

// TechnicalScopeOutput is the stage 2 result: a tally of the model's surface
type TechnicalScopeOutput struct {
	ComponentsByType           map[models.ComponentType]int      `json:"components_by_type"`
	ComponentsByClassification map[models.DataClassification]int `json:"components_by_classification"`
	ExposedInterfaces          []string                          `json:"exposed_interfaces"`
	TotalFlows                 int                               `json:"total_flows"`
	EncryptedFlows             int                               `json:"encrypted_flows"`
	UnauthenticatedFlows       int                               `json:"unauthenticated_flows"`
}

// ExistingControl is a control already present in the model, with its
// coverage expressed as the fraction of flows it protects
type ExistingControl struct {
	Name          string  `json:"name"`
	Effectiveness float64 `json:"effectiveness"`
}

// DecompositionOutput is the stage 3 result
type DecompositionOutput struct {
	EntryPoints        []models.Component `json:"entry_points"`
	Assets             []models.Component `json:"assets"`
	CrossBoundaryFlows []models.DataFlow  `json:"cross_boundary_flows"`
	AttackSurface      int                `json:"attack_surface"`
	ExistingControls   []ExistingControl  `json:"existing_controls"`
}

// ThreatAnalysisOutput is the stage 4 result. Threats are deduplicated by
// (category, target id); no two threats share a key within one run.
type ThreatAnalysisOutput struct {
	Threats    []models.Threat               `json:"threats"`
	ByCategory map[models.StrideCategory]int `json:"by_category"`
}

// VulnerabilityAnalysisOutput is the stage 5 result: the union of known and
// inferred vulnerabilities plus the threat-to-vulnerability mapping
type VulnerabilityAnalysisOutput struct {
	Vulnerabilities []models.Vulnerability    `json:"vulnerabilities"`
	ThreatMapping   map[uuid.UUID][]uuid.UUID `json:"threat_mapping"`
}

// AttackModelingOutput is the stage 6 result
type AttackModelingOutput struct {
	AttackVectors []models.AttackVector `json:"attack_vectors"`
}

// PrioritizedThreat pairs a threat with its position on the risk matrix
type PrioritizedThreat struct {
	Threat    models.Threat    `json:"threat"`
	RiskScore int              `json:"risk_score"`
	RiskLevel models.RiskLevel `json:"risk_level"`
}

// RiskOutput is the stage 7 result
type RiskOutput struct {
	RiskMatrix           []models.RiskMatrixEntry    `json:"risk_matrix"`
	PrioritizedThreats   []PrioritizedThreat         `json:"prioritized_threats"`
	MitigationStrategies []models.MitigationStrategy `json:"mitigation_strategies"`
}

// Result is the full output of one pipeline run
type Result struct {
	Stages []StageSummary `json:"stages"`

	RiskMatrix           []models.RiskMatrixEntry    `json:"risk_matrix"`
	PrioritizedThreats   []PrioritizedThreat         `json:"prioritized_threats"`
	MitigationStrategies []models.MitigationStrategy `json:"mitigation_strategies"`

	// Flattened derived entities for the persistence collaborator
	Threats         []models.Threat        `json:"threats"`
	Vulnerabilities []models.Vulnerability `json:"vulnerabilities"`
	AttackVectors   []models.AttackVector  `json:"attack_vectors"`
}
