package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus tracks an analysis run through its lifecycle
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// AnalysisRun records one engine invocation over a model snapshot
type AnalysisRun struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ModelID     uuid.UUID `json:"model_id" db:"model_id"`
	Methodology string    `json:"methodology" db:"methodology"`
	Status      RunStatus `json:"status" db:"status"`
	ThreatCount int       `json:"threat_count" db:"threat_count"`
	Error       string    `json:"error,omitempty" db:"error"`
	StartedAt   time.Time `json:"started_at" db:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
