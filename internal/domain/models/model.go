package models

import (
	"time"

	"github.com/google/uuid"
)

// ComponentType classifies a component in a threat model. Both the
// architectural names (process, datastore, ...) and the technical variants
// (application, database, ...) are accepted; unknown values are kept verbatim
// and treated as a generic process during analysis.
type ComponentType string

const (
	ComponentTypeProcess        ComponentType = "process"
	ComponentTypeDatastore      ComponentType = "datastore"
	ComponentTypeExternalEntity ComponentType = "external_entity"
	ComponentTypeTrustBoundary  ComponentType = "trust_boundary"
	ComponentTypeAPIGateway     ComponentType = "api_gateway"

	// Technical variants
	ComponentTypeApplication    ComponentType = "application"
	ComponentTypeService        ComponentType = "service"
	ComponentTypeDatabase       ComponentType = "database"
	ComponentTypeNetwork        ComponentType = "network"
	ComponentTypeInfrastructure ComponentType = "infrastructure"
	ComponentTypeExternal       ComponentType = "external"
)

// DataClassification represents the sensitivity of data a component handles
type DataClassification string

const (
	ClassificationPublic       DataClassification = "public"
	ClassificationInternal     DataClassification = "internal"
	ClassificationConfidential DataClassification = "confidential"
	ClassificationRestricted   DataClassification = "restricted"
)

// IsSensitive reports whether the classification marks an asset worth
// protecting in its own right
func (c DataClassification) IsSensitive() bool {
	return c == ClassificationConfidential || c == ClassificationRestricted
}

// Severity represents a qualitative severity level
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "informational"
)

// Weight returns a numeric weight for sorting by severity
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Likelihood is a qualitative likelihood rating
type Likelihood string

const (
	LikelihoodHigh   Likelihood = "high"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodLow    Likelihood = "low"
)

// Priority ranks a business objective
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort rank of a priority; critical sorts first. Unknown
// priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ImpactScore maps the priority to a 1-5 impact contribution
func (p Priority) ImpactScore() int {
	switch p {
	case PriorityCritical:
		return 5
	case PriorityHigh:
		return 4
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// Component is a node in the threat model, authored externally and immutable
// within a run
type Component struct {
	ID                 string             `json:"id" db:"id"`
	Name               string             `json:"name" db:"name"`
	Type               ComponentType      `json:"type" db:"type"`
	Technology         string             `json:"technology,omitempty" db:"technology"`
	DataClassification DataClassification `json:"data_classification,omitempty" db:"data_classification"`
	ExposedInterfaces  []string           `json:"exposed_interfaces,omitempty" db:"exposed_interfaces"`
}

// DataFlow is a directed edge between two components
type DataFlow struct {
	ID            string   `json:"id" db:"id"`
	SourceID      string   `json:"source_id" db:"source_id"`
	TargetID      string   `json:"target_id" db:"target_id"`
	Protocol      string   `json:"protocol,omitempty" db:"protocol"`
	DataTypes     []string `json:"data_types,omitempty" db:"data_types"`
	Encrypted     bool     `json:"encrypted" db:"encrypted"`
	Authenticated bool     `json:"authenticated" db:"authenticated"`
}

// TrustBoundary groups components sharing a security context
type TrustBoundary struct {
	ID           string   `json:"id" db:"id"`
	Name         string   `json:"name" db:"name"`
	Type         string   `json:"type,omitempty" db:"type"`
	ComponentIDs []string `json:"component_ids" db:"component_ids"`
}

// BusinessObjective is a ranked business goal with security requirement tags
type BusinessObjective struct {
	ID                   string   `json:"id" db:"id"`
	Name                 string   `json:"name" db:"name"`
	Priority             Priority `json:"priority" db:"priority"`
	SecurityRequirements []string `json:"security_requirements,omitempty" db:"security_requirements"`
}

// ModelStatus tracks where the parent model is in its analysis lifecycle
type ModelStatus string

const (
	ModelStatusDraft    ModelStatus = "draft"
	ModelStatusAnalyzed ModelStatus = "analyzed"
)

// ThreatModel is the immutable input snapshot for one analysis run
type ThreatModel struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        string          `json:"tenant_id" db:"tenant_id"`
	Name            string          `json:"name" db:"name"`
	Components      []Component     `json:"components"`
	DataFlows       []DataFlow      `json:"data_flows"`
	TrustBoundaries []TrustBoundary `json:"trust_boundaries"`

	// PASTA-only inputs
	BusinessObjectives   []BusinessObjective `json:"business_objectives,omitempty"`
	KnownVulnerabilities []Vulnerability     `json:"known_vulnerabilities,omitempty"`

	Status      ModelStatus `json:"status" db:"status"`
	Methodology string      `json:"methodology,omitempty" db:"methodology"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ComponentByID resolves a component reference; ok is false for dangling ids
func (m *ThreatModel) ComponentByID(id string) (*Component, bool) {
	for i := range m.Components {
		if m.Components[i].ID == id {
			return &m.Components[i], true
		}
	}
	return nil, false
}

// BoundaryOf returns the id of the trust boundary containing the component,
// or "" if the component sits outside every boundary
func (m *ThreatModel) BoundaryOf(componentID string) string {
	for _, b := range m.TrustBoundaries {
		for _, id := range b.ComponentIDs {
			if id == componentID {
				return b.ID
			}
		}
	}
	return ""
}
