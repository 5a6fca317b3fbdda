package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"riskforge/internal/config"
	"riskforge/internal/domain/knowledge"
	"riskforge/internal/domain/models"
	"riskforge/internal/engine/dread"
	"riskforge/internal/engine/pasta"
	"riskforge/internal/engine/stride"
	"riskforge/internal/infrastructure/cache"
	"riskforge/internal/infrastructure/database/repository"
	"riskforge/internal/streaming"
	"riskforge/pkg/logger"
)

// Methodology names as they appear in run records and cache keys
const (
	MethodologySTRIDE = "stride"
	MethodologyPASTA  = "pasta"
	MethodologyDREAD  = "dread"
)

// RunOptions tunes a single analysis run
type RunOptions struct {
	// WithDread appends a DREAD batch assessment over the generated threats
	WithDread bool `json:"with_dread"`
}

// RunResult is the envelope returned for one completed analysis run
type RunResult struct {
	Run         *models.AnalysisRun `json:"run"`
	ModelName   string              `json:"model_name"`
	Methodology string              `json:"methodology"`

	Stride *stride.Result     `json:"stride,omitempty"`
	Pasta  *pasta.Result      `json:"pasta,omitempty"`
	Dread  *dread.BatchResult `json:"dread,omitempty"`
}

// AnalysisService orchestrates analysis runs: resolve the model snapshot,
// invoke the engine (pure computation), then persist, cache, and publish
// (side effects). The engines never touch storage themselves.
type AnalysisService struct {
	modelRepo  *repository.ThreatModelRepository
	resultRepo *repository.ResultRepository
	cache      *cache.RedisCache
	bus        *streaming.EventBus

	stride *stride.Enumerator
	pasta  *pasta.Pipeline
	dread  *dread.Scorer

	cfg    config.AnalysisConfig
	logger *logger.Logger
}

// NewAnalysisService creates a new analysis service. Cache and bus may be
// nil; persistence, caching, and publishing degrade independently.
func NewAnalysisService(
	repos *repository.Repositories,
	redis *cache.RedisCache,
	bus *streaming.EventBus,
	cfg config.AnalysisConfig,
	log *logger.Logger,
) *AnalysisService {
	l := log.WithComponent("analysis-service")
	return &AnalysisService{
		modelRepo:  repos.ThreatModels,
		resultRepo: repos.Results,
		cache:      redis,
		bus:        bus,
		stride:     stride.NewEnumerator(knowledge.NewCatalog(), l),
		pasta:      pasta.NewPipeline(l),
		dread:      dread.NewScorer(l),
		cfg:        cfg,
		logger:     l,
	}
}

// RunStride runs the STRIDE enumerator over a stored model
func (s *AnalysisService) RunStride(ctx context.Context, modelID uuid.UUID, opts RunOptions) (*RunResult, error) {
	model, run, err := s.beginRun(ctx, modelID, MethodologySTRIDE)
	if err != nil {
		return nil, err
	}

	result := s.stride.Analyze(model)

	envelope := &RunResult{
		Run:         run,
		ModelName:   model.Name,
		Methodology: MethodologySTRIDE,
		Stride:      result,
	}

	artifacts := &repository.RunArtifacts{Threats: result.Threats}
	if opts.WithDread {
		batch, err := s.dread.AssessBatch(result.Threats)
		if err != nil {
			return nil, s.failRun(ctx, run, err)
		}
		envelope.Dread = batch
		artifacts.Assessments = batch.Assessments
	}

	if err := s.finishRun(ctx, model, run, artifacts, envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

// RunPasta runs the seven-stage PASTA pipeline over a stored model
func (s *AnalysisService) RunPasta(ctx context.Context, modelID uuid.UUID, opts RunOptions) (*RunResult, error) {
	model, run, err := s.beginRun(ctx, modelID, MethodologyPASTA)
	if err != nil {
		return nil, err
	}

	result, err := s.pasta.Run(model)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}

	envelope := &RunResult{
		Run:         run,
		ModelName:   model.Name,
		Methodology: MethodologyPASTA,
		Pasta:       result,
	}

	artifacts := &repository.RunArtifacts{
		Threats:         result.Threats,
		Vulnerabilities: result.Vulnerabilities,
		AttackVectors:   result.AttackVectors,
		RiskMatrix:      result.RiskMatrix,
		Mitigations:     result.MitigationStrategies,
	}
	if opts.WithDread {
		batch, err := s.dread.AssessBatch(result.Threats)
		if err != nil {
			return nil, s.failRun(ctx, run, err)
		}
		envelope.Dread = batch
		artifacts.Assessments = batch.Assessments
	}

	if err := s.finishRun(ctx, model, run, artifacts, envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

// beginRun resolves the model, records the run, and publishes run_started
func (s *AnalysisService) beginRun(ctx context.Context, modelID uuid.UUID, methodology string) (*models.ThreatModel, *models.AnalysisRun, error) {
	model, err := s.modelRepo.GetByID(ctx, modelID)
	if err != nil {
		return nil, nil, err
	}

	run := &models.AnalysisRun{
		ID:          uuid.New(),
		ModelID:     model.ID,
		Methodology: methodology,
		Status:      models.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}

	if s.cfg.PersistResults {
		if err := s.resultRepo.CreateRun(ctx, run); err != nil {
			return nil, nil, err
		}
	}

	s.publish(ctx, streaming.NewRunEvent(streaming.EventTypeRunStarted, run, model.Name))

	s.logger.Info().
		Str("run_id", run.ID.String()).
		Str("model_id", model.ID.String()).
		Str("methodology", methodology).
		Msg("analysis run started")

	return model, run, nil
}

// finishRun persists artifacts, updates the parent model, caches the
// envelope, and publishes completion events
func (s *AnalysisService) finishRun(ctx context.Context, model *models.ThreatModel, run *models.AnalysisRun, artifacts *repository.RunArtifacts, envelope *RunResult) error {
	if s.cfg.PersistResults {
		if err := s.resultRepo.CompleteRun(ctx, run, artifacts); err != nil {
			return s.failRun(ctx, run, err)
		}
		if err := s.modelRepo.UpdateStatus(ctx, model.ID, models.ModelStatusAnalyzed, run.Methodology); err != nil {
			return s.failRun(ctx, run, err)
		}
	} else {
		run.Status = models.RunStatusCompleted
		run.CompletedAt = time.Now().UTC()
		run.ThreatCount = len(artifacts.Threats)
	}

	if s.cache != nil {
		if err := s.cache.CacheRunResult(ctx, run.ID.String(), model.ID.String(), run.Methodology, envelope, s.cfg.ResultCacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("run_id", run.ID.String()).Msg("failed to cache run result")
		}
	}

	for i := range artifacts.Threats {
		s.publish(ctx, streaming.NewThreatEvent(run, &artifacts.Threats[i]))
	}
	s.publish(ctx, streaming.NewRunEvent(streaming.EventTypeRunCompleted, run, model.Name))

	s.logger.Info().
		Str("run_id", run.ID.String()).
		Str("methodology", run.Methodology).
		Int("threats", run.ThreatCount).
		Dur("duration", run.CompletedAt.Sub(run.StartedAt)).
		Msg("analysis run completed")

	return nil
}

// failRun records the failure and returns the original error
func (s *AnalysisService) failRun(ctx context.Context, run *models.AnalysisRun, runErr error) error {
	run.Status = models.RunStatusFailed
	run.Error = runErr.Error()
	run.CompletedAt = time.Now().UTC()

	if s.cfg.PersistResults {
		if err := s.resultRepo.FailRun(ctx, run.ID, runErr); err != nil {
			s.logger.Error().Err(err).Str("run_id", run.ID.String()).Msg("failed to record run failure")
		}
	}
	s.publish(ctx, streaming.NewRunEvent(streaming.EventTypeRunFailed, run, ""))

	s.logger.Error().Err(runErr).
		Str("run_id", run.ID.String()).
		Str("methodology", run.Methodology).
		Msg("analysis run failed")

	return runErr
}

func (s *AnalysisService) publish(ctx context.Context, event *streaming.AnalysisEvent) {
	if s.bus == nil || !s.cfg.PublishEvents {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(event.Type)).Msg("failed to publish event")
	}
}

// GetRunResult returns a cached run envelope, falling back to the run record
// when the cache has expired
func (s *AnalysisService) GetRunResult(ctx context.Context, runID uuid.UUID) (*RunResult, error) {
	if s.cache != nil {
		var envelope RunResult
		if err := s.cache.GetRunResult(ctx, runID.String(), &envelope); err == nil {
			return &envelope, nil
		}
	}

	run, err := s.resultRepo.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	threats, err := s.resultRepo.ListThreats(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &RunResult{
		Run:         run,
		Methodology: run.Methodology,
		Stride:      &stride.Result{Threats: threats, Count: len(threats)},
	}, nil
}

// LatestResult returns the most recent run envelope for a model and
// methodology
func (s *AnalysisService) LatestResult(ctx context.Context, modelID uuid.UUID, methodology string) (*RunResult, error) {
	if s.cache != nil {
		var envelope RunResult
		if err := s.cache.GetLatestRunResult(ctx, modelID.String(), methodology, &envelope); err == nil {
			return &envelope, nil
		}
	}

	run, err := s.resultRepo.LatestRun(ctx, modelID, methodology)
	if err != nil {
		return nil, err
	}
	return s.GetRunResult(ctx, run.ID)
}

// UpdateThreatStatus moves a generated threat through triage
func (s *AnalysisService) UpdateThreatStatus(ctx context.Context, threatID uuid.UUID, status models.ThreatStatus) error {
	switch status {
	case models.ThreatStatusIdentified, models.ThreatStatusAssessed,
		models.ThreatStatusMitigated, models.ThreatStatusAccepted:
	default:
		return fmt.Errorf("%w: unknown threat status %q", models.ErrInvalidArgument, status)
	}
	return s.resultRepo.UpdateThreatStatus(ctx, threatID, status)
}
