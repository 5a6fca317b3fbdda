package models

import (
	"github.com/google/uuid"
)

// AttackVector is a synthesized attack path combining an entry point, the
// vulnerabilities it exploits, and a target asset
type AttackVector struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	Name             string      `json:"name" db:"name"`
	Description      string      `json:"description,omitempty" db:"description"`
	AttackerProfile  string      `json:"attacker_profile,omitempty" db:"attacker_profile"`
	EntryPoint       string      `json:"entry_point,omitempty" db:"entry_point"`
	TargetAsset      string      `json:"target_asset,omitempty" db:"target_asset"`
	VulnerabilityIDs []uuid.UUID `json:"vulnerability_ids,omitempty" db:"vulnerability_ids"`
	TechniqueIDs     []string    `json:"technique_ids,omitempty" db:"technique_ids"`
	Likelihood       Likelihood  `json:"likelihood" db:"likelihood"`
	ThreatID         uuid.UUID   `json:"threat_id" db:"threat_id"`

	// AttackTree is populated for high-likelihood vectors only; an
	// illustrative visualization aid, not a calibrated probability model
	AttackTree *AttackTreeNode `json:"attack_tree,omitempty" db:"-"`
}

// AttackTreeOperator combines child goals of an attack tree node
type AttackTreeOperator string

const (
	AttackTreeAND AttackTreeOperator = "AND"
	AttackTreeOR  AttackTreeOperator = "OR"
)

// AttackTreeNode is one level of an AND/OR attack tree. Leaf nodes carry a
// probability; interior nodes carry an operator over their children.
type AttackTreeNode struct {
	Goal        string             `json:"goal"`
	Operator    AttackTreeOperator `json:"operator,omitempty"`
	Probability float64            `json:"probability,omitempty"`
	Children    []AttackTreeNode   `json:"children,omitempty"`
}
