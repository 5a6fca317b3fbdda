package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"riskforge/internal/domain/models"
	"riskforge/internal/infrastructure/cache"
	"riskforge/internal/infrastructure/database/repository"
	"riskforge/pkg/logger"
)

// ModelService manages threat model snapshots
type ModelService struct {
	repo   *repository.ThreatModelRepository
	cache  *cache.RedisCache
	logger *logger.Logger
}

// NewModelService creates a new model service
func NewModelService(repos *repository.Repositories, redis *cache.RedisCache, log *logger.Logger) *ModelService {
	return &ModelService{
		repo:   repos.ThreatModels,
		cache:  redis,
		logger: log.WithComponent("model-service"),
	}
}

// Create validates and stores a new threat model
func (s *ModelService) Create(ctx context.Context, m *models.ThreatModel) (*models.ThreatModel, error) {
	if err := validateModel(m); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("model_id", created.ID.String()).
		Str("tenant_id", created.TenantID).
		Int("components", len(created.Components)).
		Int("flows", len(created.DataFlows)).
		Msg("threat model created")

	return created, nil
}

// Get fetches a threat model by id
func (s *ModelService) Get(ctx context.Context, id uuid.UUID) (*models.ThreatModel, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a tenant's threat models, newest first
func (s *ModelService) List(ctx context.Context, tenantID string, limit, offset int) ([]*models.ThreatModel, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

// Delete removes a threat model and invalidates its cached results
func (s *ModelService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateModel(ctx, id.String(), MethodologySTRIDE, MethodologyPASTA); err != nil {
			s.logger.Warn().Err(err).Str("model_id", id.String()).Msg("failed to invalidate cached results")
		}
	}
	return nil
}

// validateModel checks the structural invariants the engines rely on.
// Dangling flow endpoints are allowed; the engines drop them per flow.
func validateModel(m *models.ThreatModel) error {
	if m == nil {
		return fmt.Errorf("%w: model is required", models.ErrInvalidArgument)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: model name is required", models.ErrInvalidArgument)
	}

	seen := make(map[string]bool, len(m.Components))
	for _, c := range m.Components {
		if c.ID == "" {
			return fmt.Errorf("%w: component %q has no id", models.ErrInvalidArgument, c.Name)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate component id %q", models.ErrInvalidArgument, c.ID)
		}
		seen[c.ID] = true
	}

	flowSeen := make(map[string]bool, len(m.DataFlows))
	for _, f := range m.DataFlows {
		if f.ID == "" {
			return fmt.Errorf("%w: data flow %s->%s has no id", models.ErrInvalidArgument, f.SourceID, f.TargetID)
		}
		if flowSeen[f.ID] {
			return fmt.Errorf("%w: duplicate data flow id %q", models.ErrInvalidArgument, f.ID)
		}
		flowSeen[f.ID] = true
	}

	return nil
}
