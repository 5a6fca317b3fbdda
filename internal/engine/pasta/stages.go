package pasta

import (
	"sort"

	"riskforge/internal/domain/models"
)

// stageObjectives ranks business objectives by priority and unions their
// security requirement tags. The sort is stable: ties preserve input order.
func (p *Pipeline) stageObjectives(model *models.ThreatModel) (*ObjectivesOutput, error) {
	ranked := make([]models.BusinessObjective, len(model.BusinessObjectives))
	copy(ranked, model.BusinessObjectives)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority.Rank() < ranked[j].Priority.Rank()
	})

	seen := make(map[string]bool)
	requirements := make([]string, 0)
	for _, obj := range ranked {
		for _, req := range obj.SecurityRequirements {
			if !seen[req] {
				seen[req] = true
				requirements = append(requirements, req)
			}
		}
	}

	return &ObjectivesOutput{
		RankedObjectives:     ranked,
		SecurityRequirements: requirements,
	}, nil
}

// stageTechnicalScope tallies components by type and classification and
// counts flow protections
func (p *Pipeline) stageTechnicalScope(model *models.ThreatModel) (*TechnicalScopeOutput, error) {
	out := &TechnicalScopeOutput{
		ComponentsByType:           make(map[models.ComponentType]int),
		ComponentsByClassification: make(map[models.DataClassification]int),
		ExposedInterfaces:          make([]string, 0),
		TotalFlows:                 len(model.DataFlows),
	}

	for _, comp := range model.Components {
		out.ComponentsByType[comp.Type]++
		if comp.DataClassification != "" {
			out.ComponentsByClassification[comp.DataClassification]++
		}
		if isExternalType(comp.Type) || len(comp.ExposedInterfaces) > 0 {
			out.ExposedInterfaces = append(out.ExposedInterfaces, comp.ExposedInterfaces...)
		}
	}

	for _, flow := range model.DataFlows {
		if flow.Encrypted {
			out.EncryptedFlows++
		}
		if !flow.Authenticated {
			out.UnauthenticatedFlows++
		}
	}

	return out, nil
}

// stageDecomposition identifies entry points, assets, and boundary-crossing
// flows, and infers the controls already present in the model
func (p *Pipeline) stageDecomposition(model *models.ThreatModel, scope *TechnicalScopeOutput) (*DecompositionOutput, error) {
	out := &DecompositionOutput{
		EntryPoints:        make([]models.Component, 0),
		Assets:             make([]models.Component, 0),
		CrossBoundaryFlows: make([]models.DataFlow, 0),
		ExistingControls:   make([]ExistingControl, 0),
	}

	for _, comp := range model.Components {
		if isExternalType(comp.Type) || len(comp.ExposedInterfaces) > 0 {
			out.EntryPoints = append(out.EntryPoints, comp)
		}
		if isDatastoreType(comp.Type) || comp.DataClassification.IsSensitive() {
			out.Assets = append(out.Assets, comp)
		}
	}

	for _, flow := range model.DataFlows {
		// Flows with unresolvable endpoints are dropped rather than guessed at
		if _, ok := model.ComponentByID(flow.SourceID); !ok {
			continue
		}
		if _, ok := model.ComponentByID(flow.TargetID); !ok {
			continue
		}
		srcBoundary := model.BoundaryOf(flow.SourceID)
		dstBoundary := model.BoundaryOf(flow.TargetID)
		if srcBoundary != dstBoundary {
			out.CrossBoundaryFlows = append(out.CrossBoundaryFlows, flow)
		}
	}

	out.AttackSurface = len(out.EntryPoints) + scope.UnauthenticatedFlows

	if scope.TotalFlows > 0 {
		if scope.EncryptedFlows > 0 {
			out.ExistingControls = append(out.ExistingControls, ExistingControl{
				Name:          "encryption-in-transit",
				Effectiveness: float64(scope.EncryptedFlows) / float64(scope.TotalFlows),
			})
		}
		authenticated := scope.TotalFlows - scope.UnauthenticatedFlows
		if authenticated > 0 {
			out.ExistingControls = append(out.ExistingControls, ExistingControl{
				Name:          "authentication",
				Effectiveness: float64(authenticated) / float64(scope.TotalFlows),
			})
		}
	}

	return out, nil
}

func isExternalType(t models.ComponentType) bool {
	return t == models.ComponentTypeExternal || t == models.ComponentTypeExternalEntity
}

func isDatastoreType(t models.ComponentType) bool {
	return t == models.ComponentTypeDatabase || t == models.ComponentTypeDatastore
}

func isApplicationType(t models.ComponentType) bool {
	return t == models.ComponentTypeApplication || t == models.ComponentTypeService
}
