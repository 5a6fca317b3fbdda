package models

import (
	"github.com/google/uuid"
)

// DreadFactors holds the five DREAD rating factors, each in [0,10]
type DreadFactors struct {
	Damage          float64 `json:"damage"`
	Reproducibility float64 `json:"reproducibility"`
	Exploitability  float64 `json:"exploitability"`
	AffectedUsers   float64 `json:"affected_users"`
	Discoverability float64 `json:"discoverability"`
}

// DreadAssessment is a scored DREAD evaluation of a single threat
type DreadAssessment struct {
	ThreatID   uuid.UUID    `json:"threat_id,omitempty" db:"threat_id"`
	ThreatName string       `json:"threat_name" db:"threat_name"`
	Factors    DreadFactors `json:"factors"`

	// Score is the mean of the five factors, rounded to one decimal
	Score     float64   `json:"score" db:"score"`
	RiskLevel RiskLevel `json:"risk_level" db:"risk_level"`

	// Justifications explains each factor value, keyed by factor name
	Justifications map[string]string `json:"justifications,omitempty" db:"-"`
	Recommendation string            `json:"recommendation,omitempty" db:"recommendation"`
}

// DreadRiskLevel buckets a 0-10 DREAD score. The thresholds are mutually
// exclusive: >=9 critical, >=7 high, >=5 medium, >=3 low, else informational.
func DreadRiskLevel(score float64) RiskLevel {
	switch {
	case score >= 9:
		return RiskLevelCritical
	case score >= 7:
		return RiskLevelHigh
	case score >= 5:
		return RiskLevelMedium
	case score >= 3:
		return RiskLevelLow
	default:
		return RiskLevelInfo
	}
}
