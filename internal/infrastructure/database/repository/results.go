package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"riskforge/internal/domain/models"
	"riskforge/internal/infrastructure/database"
)

// RunArtifacts holds every derived entity produced by one analysis run.
// Engines compute these in memory; this repository persists them in bulk.
type RunArtifacts struct {
	Threats         []models.Threat
	Vulnerabilities []models.Vulnerability
	AttackVectors   []models.AttackVector
	RiskMatrix      []models.RiskMatrixEntry
	Mitigations     []models.MitigationStrategy
	Assessments     []models.DreadAssessment
}

// ResultRepository persists analysis runs and their derived entities
type ResultRepository struct {
	db *database.PostgresDB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.PostgresDB) *ResultRepository {
	return &ResultRepository{db: db}
}

// CreateRun inserts a run in the running state
func (r *ResultRepository) CreateRun(ctx context.Context, run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (id, model_id, methodology, status, threat_count, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if err := r.db.Exec(ctx, query,
		run.ID, run.ModelID, run.Methodology, run.Status, run.ThreatCount, run.StartedAt,
	); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks the run completed and bulk-inserts all derived entities
// in one transaction, including the threat-to-component and threat-to-flow
// join records
func (r *ResultRepository) CompleteRun(ctx context.Context, run *models.AnalysisRun, artifacts *RunArtifacts) error {
	run.Status = models.RunStatusCompleted
	run.CompletedAt = time.Now().UTC()
	run.ThreatCount = len(artifacts.Threats)

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE analysis_runs SET status = $2, threat_count = $3, completed_at = $4 WHERE id = $1`,
			run.ID, run.Status, run.ThreatCount, run.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to complete run: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("run %s: %w", run.ID, models.ErrNotFound)
		}

		batch := &pgx.Batch{}
		for _, t := range artifacts.Threats {
			batch.Queue(`
				INSERT INTO threats (id, run_id, model_id, diagram_id, title, description, category,
					likelihood, impact, recommendation, cwe_id, technique_id,
					component_id, component_name, flow_id, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
				t.ID, run.ID, run.ModelID, t.DiagramID, t.Title, t.Description, t.Category,
				t.Likelihood, t.Impact, t.Recommendation, t.CWEID, t.TechniqueID,
				nullable(t.ComponentID), t.ComponentName, nullable(t.FlowID), t.Status,
			)
			if t.ComponentID != "" {
				batch.Queue(
					`INSERT INTO threat_components (threat_id, run_id, component_id) VALUES ($1, $2, $3)`,
					t.ID, run.ID, t.ComponentID,
				)
			}
			if t.FlowID != "" {
				batch.Queue(
					`INSERT INTO threat_flows (threat_id, run_id, flow_id) VALUES ($1, $2, $3)`,
					t.ID, run.ID, t.FlowID,
				)
			}
		}
		for _, v := range artifacts.Vulnerabilities {
			batch.Queue(`
				INSERT INTO vulnerabilities (id, run_id, cwe_id, title, description, severity,
					component_id, exploitability, cvss_score)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				v.ID, run.ID, v.CWEID, v.Title, v.Description, v.Severity,
				nullable(v.ComponentID), v.Exploitability, v.CVSSScore,
			)
		}
		for _, av := range artifacts.AttackVectors {
			tree, err := json.Marshal(av.AttackTree)
			if err != nil {
				return fmt.Errorf("failed to marshal attack tree: %w", err)
			}
			batch.Queue(`
				INSERT INTO attack_vectors (id, run_id, threat_id, name, description, attacker_profile,
					entry_point, target_asset, vulnerability_ids, technique_ids, likelihood, attack_tree)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				av.ID, run.ID, av.ThreatID, av.Name, av.Description, av.AttackerProfile,
				av.EntryPoint, av.TargetAsset, av.VulnerabilityIDs, av.TechniqueIDs, av.Likelihood, tree,
			)
		}
		for _, entry := range artifacts.RiskMatrix {
			batch.Queue(`
				INSERT INTO risk_matrix_entries (run_id, subject_id, likelihood_score, impact_score, risk_score, risk_level)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				run.ID, entry.SubjectID, entry.LikelihoodScore, entry.ImpactScore, entry.RiskScore, entry.RiskLevel,
			)
		}
		for _, m := range artifacts.Mitigations {
			controls, err := json.Marshal(m.Controls)
			if err != nil {
				return fmt.Errorf("failed to marshal controls: %w", err)
			}
			batch.Queue(`
				INSERT INTO mitigation_strategies (run_id, threat_id, strategy, controls, residual_risk, priority)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				run.ID, m.ThreatID, m.Strategy, controls, m.ResidualRisk, m.Priority,
			)
		}
		for _, a := range artifacts.Assessments {
			justifications, err := json.Marshal(a.Justifications)
			if err != nil {
				return fmt.Errorf("failed to marshal justifications: %w", err)
			}
			batch.Queue(`
				INSERT INTO dread_assessments (run_id, threat_id, threat_name, damage, reproducibility,
					exploitability, affected_users, discoverability, score, risk_level, justifications, recommendation)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				run.ID, a.ThreatID, a.ThreatName, a.Factors.Damage, a.Factors.Reproducibility,
				a.Factors.Exploitability, a.Factors.AffectedUsers, a.Factors.Discoverability,
				a.Score, a.RiskLevel, justifications, a.Recommendation,
			)
		}

		if batch.Len() == 0 {
			return nil
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to insert run artifacts: %w", err)
			}
		}
		return nil
	})
}

// FailRun records a failed run with its error message
func (r *ResultRepository) FailRun(ctx context.Context, runID uuid.UUID, runErr error) error {
	query := `UPDATE analysis_runs SET status = $2, error = $3, completed_at = $4 WHERE id = $1`
	if err := r.db.Exec(ctx, query, runID, models.RunStatusFailed, runErr.Error(), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

const runColumns = `id, model_id, methodology, status, threat_count, COALESCE(error, ''), started_at, COALESCE(completed_at, 'epoch'::timestamptz)`

// GetRun fetches one run by id
func (r *ResultRepository) GetRun(ctx context.Context, runID uuid.UUID) (*models.AnalysisRun, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", runID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recent completed run of a methodology over a
// model
func (r *ResultRepository) LatestRun(ctx context.Context, modelID uuid.UUID, methodology string) (*models.AnalysisRun, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs
		WHERE model_id = $1 AND methodology = $2 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT 1`

	run, err := scanRun(r.db.QueryRow(ctx, query, modelID, methodology))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no completed %s run for model %s: %w", methodology, modelID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListThreats returns the threats generated by a run, in generation order
func (r *ResultRepository) ListThreats(ctx context.Context, runID uuid.UUID) ([]models.Threat, error) {
	query := `
		SELECT id, diagram_id, title, description, category, likelihood, impact,
			recommendation, cwe_id, technique_id,
			COALESCE(component_id, ''), component_name, COALESCE(flow_id, ''), status
		FROM threats
		WHERE run_id = $1
		ORDER BY seq`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threats: %w", err)
	}
	defer rows.Close()

	threats := make([]models.Threat, 0)
	for rows.Next() {
		var t models.Threat
		if err := rows.Scan(
			&t.ID, &t.DiagramID, &t.Title, &t.Description, &t.Category, &t.Likelihood, &t.Impact,
			&t.Recommendation, &t.CWEID, &t.TechniqueID,
			&t.ComponentID, &t.ComponentName, &t.FlowID, &t.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan threat: %w", err)
		}
		threats = append(threats, t)
	}
	return threats, rows.Err()
}

// UpdateThreatStatus moves a generated threat through triage
func (r *ResultRepository) UpdateThreatStatus(ctx context.Context, threatID uuid.UUID, status models.ThreatStatus) error {
	tag, err := r.db.Pool().Exec(ctx, `UPDATE threats SET status = $2 WHERE id = $1`, threatID, status)
	if err != nil {
		return fmt.Errorf("failed to update threat status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("threat %s: %w", threatID, models.ErrNotFound)
	}
	return nil
}

func scanRun(row pgx.Row) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	if err := row.Scan(
		&run.ID, &run.ModelID, &run.Methodology, &run.Status, &run.ThreatCount,
		&run.Error, &run.StartedAt, &run.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &run, nil
}

// nullable maps an empty target reference to NULL
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
