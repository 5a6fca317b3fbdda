package models

import (
	"github.com/google/uuid"
)

// Vulnerability is a weakness affecting a component, either supplied by the
// caller as known context or inferred during PASTA stage 5
type Vulnerability struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CWEID       string    `json:"cwe_id" db:"cwe_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Severity    Severity  `json:"severity" db:"severity"`
	ComponentID string    `json:"component_id,omitempty" db:"component_id"`

	// Exploitability is scored on a 0-10 scale
	Exploitability float64  `json:"exploitability" db:"exploitability"`
	CVSSScore      *float64 `json:"cvss_score,omitempty" db:"cvss_score"`
}
