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

// ThreatModelRepository persists threat model snapshots. The nested graph
// (components, flows, boundaries, objectives, known vulnerabilities) is
// stored as jsonb columns; the engines only ever read whole snapshots, so
// there is nothing to gain from normalizing them.
type ThreatModelRepository struct {
	db *database.PostgresDB
}

// NewThreatModelRepository creates a new threat model repository
func NewThreatModelRepository(db *database.PostgresDB) *ThreatModelRepository {
	return &ThreatModelRepository{db: db}
}

const threatModelColumns = `id, tenant_id, name, components, data_flows, trust_boundaries,
	business_objectives, known_vulnerabilities, status, methodology, created_at, updated_at`

// Create inserts a new threat model
func (r *ThreatModelRepository) Create(ctx context.Context, m *models.ThreatModel) (*models.ThreatModel, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = models.ModelStatusDraft
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	components, flows, boundaries, objectives, vulns, err := marshalSnapshot(m)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO threat_models (` + threatModelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if err := r.db.Exec(ctx, query,
		m.ID, m.TenantID, m.Name, components, flows, boundaries,
		objectives, vulns, m.Status, m.Methodology, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create threat model: %w", err)
	}

	return m, nil
}

// GetByID fetches a threat model snapshot
func (r *ThreatModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ThreatModel, error) {
	query := `SELECT ` + threatModelColumns + ` FROM threat_models WHERE id = $1`

	m, err := scanThreatModel(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("threat model %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get threat model: %w", err)
	}
	return m, nil
}

// List returns threat models for a tenant, newest first
func (r *ThreatModelRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*models.ThreatModel, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT ` + threatModelColumns + ` FROM threat_models
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list threat models: %w", err)
	}
	defer rows.Close()

	result := make([]*models.ThreatModel, 0)
	for rows.Next() {
		m, err := scanThreatModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan threat model: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// UpdateStatus marks the model analyzed and records which methodology last
// ran over it
func (r *ThreatModelRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ModelStatus, methodology string) error {
	query := `UPDATE threat_models SET status = $2, methodology = $3, updated_at = $4 WHERE id = $1`

	tag, err := r.db.Pool().Exec(ctx, query, id, status, methodology, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update threat model status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("threat model %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// Delete removes a threat model and, via cascade, its runs and derived rows
func (r *ThreatModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM threat_models WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete threat model: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("threat model %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func marshalSnapshot(m *models.ThreatModel) (components, flows, boundaries, objectives, vulns []byte, err error) {
	if components, err = json.Marshal(m.Components); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal components: %w", err)
	}
	if flows, err = json.Marshal(m.DataFlows); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal data flows: %w", err)
	}
	if boundaries, err = json.Marshal(m.TrustBoundaries); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal trust boundaries: %w", err)
	}
	if objectives, err = json.Marshal(m.BusinessObjectives); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal business objectives: %w", err)
	}
	if vulns, err = json.Marshal(m.KnownVulnerabilities); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal known vulnerabilities: %w", err)
	}
	return components, flows, boundaries, objectives, vulns, nil
}

func scanThreatModel(row pgx.Row) (*models.ThreatModel, error) {
	var m models.ThreatModel
	var components, flows, boundaries, objectives, vulns []byte

	if err := row.Scan(
		&m.ID, &m.TenantID, &m.Name, &components, &flows, &boundaries,
		&objectives, &vulns, &m.Status, &m.Methodology, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(components, &m.Components); err != nil {
		return nil, fmt.Errorf("failed to unmarshal components: %w", err)
	}
	if err := json.Unmarshal(flows, &m.DataFlows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data flows: %w", err)
	}
	if err := json.Unmarshal(boundaries, &m.TrustBoundaries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trust boundaries: %w", err)
	}
	if err := json.Unmarshal(objectives, &m.BusinessObjectives); err != nil {
		return nil, fmt.Errorf("failed to unmarshal business objectives: %w", err)
	}
	if err := json.Unmarshal(vulns, &m.KnownVulnerabilities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal known vulnerabilities: %w", err)
	}

	return &m, nil
}
