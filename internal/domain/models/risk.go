package models

import (
	"github.com/google/uuid"
)

// RiskLevel buckets a quantitative risk score
type RiskLevel string

const (
	RiskLevelCritical RiskLevel = "critical"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelInfo     RiskLevel = "informational"
)

// RiskMatrixEntry places one subject on the 5x5 likelihood/impact matrix.
// LikelihoodScore and ImpactScore are both in [1,5]; RiskScore is their
// product in [1,25].
type RiskMatrixEntry struct {
	SubjectID       uuid.UUID `json:"subject_id" db:"subject_id"`
	LikelihoodScore int       `json:"likelihood_score" db:"likelihood_score"`
	ImpactScore     int       `json:"impact_score" db:"impact_score"`
	RiskScore       int       `json:"risk_score" db:"risk_score"`
	RiskLevel       RiskLevel `json:"risk_level" db:"risk_level"`
}

// MatrixRiskLevel buckets a 1-25 risk matrix score. The thresholds partition
// the range exhaustively: >=20 critical, >=12 high, >=6 medium, else low.
func MatrixRiskLevel(score int) RiskLevel {
	switch {
	case score >= 20:
		return RiskLevelCritical
	case score >= 12:
		return RiskLevelHigh
	case score >= 6:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// StrategyClass is the treatment decision for a prioritized threat
type StrategyClass string

const (
	StrategyAvoid    StrategyClass = "avoid"
	StrategyTransfer StrategyClass = "transfer"
	StrategyMitigate StrategyClass = "mitigate"
	StrategyAccept   StrategyClass = "accept"
)

// SecurityControl is a countermeasure with an estimated effectiveness in
// [0,1] and a qualitative implementation effort
type SecurityControl struct {
	Name          string  `json:"name" db:"name"`
	Description   string  `json:"description,omitempty" db:"description"`
	Effectiveness float64 `json:"effectiveness" db:"effectiveness"`
	Effort        string  `json:"effort,omitempty" db:"effort"`
}

// MitigationStrategy pairs a prioritized threat with its treatment
type MitigationStrategy struct {
	ThreatID uuid.UUID     `json:"threat_id" db:"threat_id"`
	Strategy StrategyClass `json:"strategy" db:"strategy"`

	Controls []SecurityControl `json:"controls,omitempty" db:"-"`

	// ResidualRisk = riskScore x (1 - mean control effectiveness); 0 when no
	// controls apply
	ResidualRisk float64 `json:"residual_risk" db:"residual_risk"`

	// Priority is the implementation rank: 1 is most urgent
	Priority int `json:"priority" db:"priority"`
}
