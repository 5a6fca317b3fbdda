package pasta

import (
	"fmt"

	"riskforge/internal/domain/models"
	"riskforge/pkg/logger"
)

// Stage names in pipeline order
var stageNames = [7]string{
	"Define Business Objectives",
	"Define Technical Scope",
	"Application Decomposition",
	"Threat Analysis",
	"Vulnerability Analysis",
	"Attack Modeling",
	"Risk and Impact Analysis",
}

// Pipeline runs the seven PASTA stages in strict sequence. Each stage is a
// pure function of the previous stage's output plus the original model;
// stages never mutate earlier outputs. A failing stage aborts the run.
type Pipeline struct {
	logger *logger.Logger
}

// NewPipeline creates a new Pipeline
func NewPipeline(log *logger.Logger) *Pipeline {
	return &Pipeline{
		logger: log.WithComponent("pasta"),
	}
}

// Run executes all seven stages over the model snapshot
func (p *Pipeline) Run(model *models.ThreatModel) (*Result, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is required", models.ErrInvalidArgument)
	}

	result := &Result{Stages: make([]StageSummary, 0, 7)}

	objectives, err := p.stageObjectives(model)
	if err != nil {
		return nil, p.fail(result, 1, err)
	}
	p.complete(result, 1, objectives)

	scope, err := p.stageTechnicalScope(model)
	if err != nil {
		return nil, p.fail(result, 2, err)
	}
	p.complete(result, 2, scope)

	decomposition, err := p.stageDecomposition(model, scope)
	if err != nil {
		return nil, p.fail(result, 3, err)
	}
	p.complete(result, 3, decomposition)

	threats, err := p.stageThreatAnalysis(model, decomposition)
	if err != nil {
		return nil, p.fail(result, 4, err)
	}
	p.complete(result, 4, threats)

	vulns, err := p.stageVulnerabilityAnalysis(model, threats)
	if err != nil {
		return nil, p.fail(result, 5, err)
	}
	p.complete(result, 5, vulns)

	attacks, err := p.stageAttackModeling(model, threats, vulns)
	if err != nil {
		return nil, p.fail(result, 6, err)
	}
	p.complete(result, 6, attacks)

	risk, err := p.stageRiskAnalysis(model, objectives, threats, vulns, attacks)
	if err != nil {
		return nil, p.fail(result, 7, err)
	}
	p.complete(result, 7, risk)

	result.RiskMatrix = risk.RiskMatrix
	result.PrioritizedThreats = risk.PrioritizedThreats
	result.MitigationStrategies = risk.MitigationStrategies
	result.Threats = threats.Threats
	result.Vulnerabilities = vulns.Vulnerabilities
	result.AttackVectors = attacks.AttackVectors

	p.logger.Debug().
		Str("model_id", model.ID.String()).
		Int("threats", len(result.Threats)).
		Int("vulnerabilities", len(result.Vulnerabilities)).
		Int("attack_vectors", len(result.AttackVectors)).
		Msg("pipeline complete")

	return result, nil
}

func (p *Pipeline) complete(result *Result, stage int, output any) {
	result.Stages = append(result.Stages, StageSummary{
		Stage:  stage,
		Name:   stageNames[stage-1],
		Status: StageCompleted,
		Output: output,
	})
}

// fail records the failing stage and aborts; later stages are meaningless
// without earlier ones, so no partial result is returned
func (p *Pipeline) fail(result *Result, stage int, err error) error {
	result.Stages = append(result.Stages, StageSummary{
		Stage:  stage,
		Name:   stageNames[stage-1],
		Status: StageFailed,
	})
	p.logger.Error().Err(err).Int("stage", stage).Str("name", stageNames[stage-1]).Msg("stage failed, aborting run")
	return fmt.Errorf("stage %d (%s): %w", stage, stageNames[stage-1], err)
}
