package models

import (
	"github.com/google/uuid"
)

// StrideCategory is one of the six STRIDE threat categories
type StrideCategory string

const (
	StrideSpoofing              StrideCategory = "spoofing"
	StrideTampering             StrideCategory = "tampering"
	StrideRepudiation           StrideCategory = "repudiation"
	StrideInformationDisclosure StrideCategory = "information_disclosure"
	StrideDenialOfService       StrideCategory = "denial_of_service"
	StrideElevationOfPrivilege  StrideCategory = "elevation_of_privilege"
)

// AllStrideCategories returns the six categories in canonical order
func AllStrideCategories() []StrideCategory {
	return []StrideCategory{
		StrideSpoofing,
		StrideTampering,
		StrideRepudiation,
		StrideInformationDisclosure,
		StrideDenialOfService,
		StrideElevationOfPrivilege,
	}
}

// String returns the string representation of StrideCategory
func (c StrideCategory) String() string {
	return string(c)
}

// ParseStrideCategory parses a string into StrideCategory
func ParseStrideCategory(s string) StrideCategory {
	switch s {
	case "spoofing":
		return StrideSpoofing
	case "tampering":
		return StrideTampering
	case "repudiation":
		return StrideRepudiation
	case "information_disclosure":
		return StrideInformationDisclosure
	case "denial_of_service":
		return StrideDenialOfService
	case "elevation_of_privilege":
		return StrideElevationOfPrivilege
	default:
		return StrideCategory(s)
	}
}

// ThreatStatus tracks a generated threat through triage
type ThreatStatus string

const (
	ThreatStatusIdentified ThreatStatus = "identified"
	ThreatStatusAssessed   ThreatStatus = "assessed"
	ThreatStatusMitigated  ThreatStatus = "mitigated"
	ThreatStatusAccepted   ThreatStatus = "accepted"
)

// Threat is a single enumerated threat. Derived per run; never mutated after
// generation.
type Threat struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	DiagramID   string         `json:"diagram_id,omitempty" db:"diagram_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Category    StrideCategory `json:"category" db:"category"`

	Vulnerability string   `json:"vulnerability,omitempty" db:"vulnerability"`
	AttackVector  string   `json:"attack_vector,omitempty" db:"attack_vector"`
	Actors        []string `json:"actors,omitempty" db:"actors"`

	// Qualitative ratings
	Skill      string     `json:"skill,omitempty" db:"skill"`
	Complexity string     `json:"complexity,omitempty" db:"complexity"`
	Likelihood Likelihood `json:"likelihood,omitempty" db:"likelihood"`
	Impact     Severity   `json:"impact,omitempty" db:"impact"`

	Recommendation string `json:"recommendation,omitempty" db:"recommendation"`

	// Reference data
	CWEID       string `json:"cwe_id,omitempty" db:"cwe_id"`
	TechniqueID string `json:"technique_id,omitempty" db:"technique_id"`

	// Target references; exactly one of ComponentID/FlowID is set for
	// component- and flow-scoped threats respectively
	ComponentID   string `json:"component_id,omitempty" db:"component_id"`
	ComponentName string `json:"component_name,omitempty" db:"component_name"`
	FlowID        string `json:"flow_id,omitempty" db:"flow_id"`

	Status ThreatStatus `json:"status" db:"status"`
}

// TargetID returns the component or flow reference this threat is scoped to
func (t *Threat) TargetID() string {
	if t.ComponentID != "" {
		return t.ComponentID
	}
	return t.FlowID
}
