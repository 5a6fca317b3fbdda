package streaming

import (
	"time"

	"github.com/google/uuid"

	"riskforge/internal/domain/models"
)

// EventType represents the type of analysis event
type EventType string

const (
	EventTypeRunStarted      EventType = "run_started"
	EventTypeRunCompleted    EventType = "run_completed"
	EventTypeRunFailed       EventType = "run_failed"
	EventTypeThreatGenerated EventType = "threat_generated"
)

// AnalysisEvent is a real-time analysis run lifecycle event
type AnalysisEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	RunID       string `json:"run_id"`
	ModelID     string `json:"model_id"`
	ModelName   string `json:"model_name,omitempty"`
	Methodology string `json:"methodology"`

	// Run summary, populated on completion
	ThreatCount int           `json:"threat_count,omitempty"`
	Duration    time.Duration `json:"duration_ms,omitempty"`
	Error       string        `json:"error,omitempty"`

	// Threat details, populated on threat_generated
	ThreatID    string                `json:"threat_id,omitempty"`
	ThreatTitle string                `json:"threat_title,omitempty"`
	Category    models.StrideCategory `json:"category,omitempty"`
	Impact      models.Severity       `json:"impact,omitempty"`
	TargetID    string                `json:"target_id,omitempty"`
}

// NewRunEvent creates a lifecycle event for a run
func NewRunEvent(eventType EventType, run *models.AnalysisRun, modelName string) *AnalysisEvent {
	event := &AnalysisEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now(),
		RunID:       run.ID.String(),
		ModelID:     run.ModelID.String(),
		ModelName:   modelName,
		Methodology: run.Methodology,
		Error:       run.Error,
	}
	if eventType == EventTypeRunCompleted {
		event.ThreatCount = run.ThreatCount
		event.Duration = run.CompletedAt.Sub(run.StartedAt)
	}
	return event
}

// NewThreatEvent creates a threat_generated event
func NewThreatEvent(run *models.AnalysisRun, threat *models.Threat) *AnalysisEvent {
	return &AnalysisEvent{
		ID:          uuid.New().String(),
		Type:        EventTypeThreatGenerated,
		Timestamp:   time.Now(),
		RunID:       run.ID.String(),
		ModelID:     run.ModelID.String(),
		Methodology: run.Methodology,
		ThreatID:    threat.ID.String(),
		ThreatTitle: threat.Title,
		Category:    threat.Category,
		Impact:      threat.Impact,
		TargetID:    threat.TargetID(),
	}
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by event type (empty = all)
	EventTypes []EventType `json:"event_types,omitempty"`

	// Filter by model (empty = all models)
	ModelIDs []string `json:"model_ids,omitempty"`

	// Filter by methodology (empty = all)
	Methodologies []string `json:"methodologies,omitempty"`

	// Minimum impact for threat_generated events (empty = all)
	MinImpact models.Severity `json:"min_impact,omitempty"`
}

// Matches reports whether an event passes the subscription's filters
func (s *Subscription) Matches(event *AnalysisEvent) bool {
	if len(s.EventTypes) > 0 && !containsEventType(s.EventTypes, event.Type) {
		return false
	}
	if len(s.ModelIDs) > 0 && !containsString(s.ModelIDs, event.ModelID) {
		return false
	}
	if len(s.Methodologies) > 0 && !containsString(s.Methodologies, event.Methodology) {
		return false
	}
	if s.MinImpact != "" && event.Type == EventTypeThreatGenerated {
		if event.Impact.Weight() < s.MinImpact.Weight() {
			return false
		}
	}
	return true
}

func containsEventType(list []EventType, t EventType) bool {
	for _, e := range list {
		if e == t {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
