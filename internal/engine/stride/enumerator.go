package stride

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"riskforge/internal/domain/knowledge"
	"riskforge/internal/domain/models"
	"riskforge/pkg/logger"
)

// Result is the output of one STRIDE enumeration run
type Result struct {
	Threats    []models.Threat `json:"threats"`
	DiagramIDs []string        `json:"diagram_ids"`
	Count      int             `json:"count"`
}

// Enumerator generates threats from the template catalog. It is stateless;
// concurrent runs need no coordination.
type Enumerator struct {
	catalog *knowledge.Catalog
	logger  *logger.Logger
}

// NewEnumerator creates a new Enumerator
func NewEnumerator(catalog *knowledge.Catalog, log *logger.Logger) *Enumerator {
	return &Enumerator{
		catalog: catalog,
		logger:  log.WithComponent("stride"),
	}
}

// diagramSequence issues diagram ids from a single counter shared across the
// whole run. The emission order is part of the contract, so the counter is
// carried explicitly rather than living in enclosing scope.
type diagramSequence struct {
	next int
}

// Next returns the next diagram id: a sanitized 4-letter prefix of the name
// plus a zero-padded run-wide sequence number.
func (s *diagramSequence) Next(name string) string {
	s.next++
	return fmt.Sprintf("%s-%03d", sanitizePrefix(name), s.next)
}

// sanitizePrefix reduces a name to a 4-letter uppercase prefix
func sanitizePrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	for b.Len() < 4 {
		b.WriteByte('X')
	}
	return b.String()
}

// Analyze enumerates threats for every component and data flow in the model.
// It is total over any well-formed model; unrecognized component types fall
// back to the PROCESS template set.
func (e *Enumerator) Analyze(model *models.ThreatModel) *Result {
	seq := &diagramSequence{}
	result := &Result{
		Threats:    make([]models.Threat, 0),
		DiagramIDs: make([]string, 0),
	}

	for _, comp := range model.Components {
		for _, tpl := range e.catalog.TemplatesFor(comp.Type) {
			threat := instantiateTemplate(model.ID, comp, tpl, seq)
			result.Threats = append(result.Threats, threat)
			result.DiagramIDs = append(result.DiagramIDs, threat.DiagramID)
		}
	}

	for _, flow := range model.DataFlows {
		// Encryption and authentication are independent checks: a flow can
		// contribute 0, 1, or 2 threats.
		if !flow.Encrypted {
			threat := flowDisclosureThreat(model, flow, seq)
			result.Threats = append(result.Threats, threat)
			result.DiagramIDs = append(result.DiagramIDs, threat.DiagramID)
		}
		if !flow.Authenticated {
			threat := flowSpoofingThreat(model, flow, seq)
			result.Threats = append(result.Threats, threat)
			result.DiagramIDs = append(result.DiagramIDs, threat.DiagramID)
		}
	}

	result.Count = len(result.Threats)

	e.logger.Debug().
		Str("model_id", model.ID.String()).
		Int("components", len(model.Components)).
		Int("flows", len(model.DataFlows)).
		Int("threats", result.Count).
		Msg("stride enumeration complete")

	return result
}

func instantiateTemplate(modelID uuid.UUID, comp models.Component, tpl knowledge.ThreatTemplate, seq *diagramSequence) models.Threat {
	title, description := tpl.Instantiate(comp.Name)
	diagramID := seq.Next(comp.Name)

	return models.Threat{
		ID:             threatID(modelID, diagramID),
		DiagramID:      diagramID,
		Title:          title,
		Description:    description,
		Category:       tpl.Category,
		Vulnerability:  tpl.Vulnerability,
		AttackVector:   tpl.AttackVector,
		Actors:         tpl.Actors,
		Skill:          tpl.Skill,
		Complexity:     tpl.Complexity,
		Likelihood:     tpl.Likelihood,
		Impact:         tpl.Impact,
		Recommendation: tpl.Recommendation,
		CWEID:          tpl.CWEID,
		TechniqueID:    tpl.TechniqueID,
		ComponentID:    comp.ID,
		ComponentName:  comp.Name,
		Status:         models.ThreatStatusIdentified,
	}
}

func flowDisclosureThreat(model *models.ThreatModel, flow models.DataFlow, seq *diagramSequence) models.Threat {
	protocol := flow.Protocol
	if protocol == "" {
		protocol = "an unspecified protocol"
	}
	diagramID := seq.Next("FLOW")

	return models.Threat{
		ID:             threatID(model.ID, diagramID),
		DiagramID:      diagramID,
		Title:          fmt.Sprintf("Cleartext transmission on flow %s", flow.ID),
		Description:    fmt.Sprintf("Data travels from %s to %s over %s without encryption and can be read in transit.", endpointName(model, flow.SourceID), endpointName(model, flow.TargetID), protocol),
		Category:       models.StrideInformationDisclosure,
		Vulnerability:  "Flow is not encrypted in transit",
		AttackVector:   fmt.Sprintf("Passive interception of %s traffic on the network path", protocol),
		Actors:         []string{"network attacker"},
		Skill:          "medium",
		Complexity:     "low",
		Likelihood:     models.LikelihoodMedium,
		Impact:         models.SeverityHigh,
		Recommendation: "Terminate the flow over TLS or an equivalent encrypted channel.",
		CWEID:          "CWE-319",
		TechniqueID:    "T1040",
		FlowID:         flow.ID,
		Status:         models.ThreatStatusIdentified,
	}
}

func flowSpoofingThreat(model *models.ThreatModel, flow models.DataFlow, seq *diagramSequence) models.Threat {
	diagramID := seq.Next("FLOW")

	return models.Threat{
		ID:             threatID(model.ID, diagramID),
		DiagramID:      diagramID,
		Title:          fmt.Sprintf("Unauthenticated flow %s", flow.ID),
		Description:    fmt.Sprintf("The flow from %s to %s carries no caller authentication; either endpoint can be impersonated.", endpointName(model, flow.SourceID), endpointName(model, flow.TargetID)),
		Category:       models.StrideSpoofing,
		Vulnerability:  "Flow does not authenticate its endpoints",
		AttackVector:   "Injecting traffic into the flow while posing as a legitimate endpoint",
		Actors:         []string{"network attacker"},
		Skill:          "medium",
		Complexity:     "medium",
		Likelihood:     models.LikelihoodMedium,
		Impact:         models.SeverityHigh,
		Recommendation: "Authenticate both endpoints of the flow, for example with mutual TLS.",
		CWEID:          "CWE-306",
		TechniqueID:    "T1078",
		FlowID:         flow.ID,
		Status:         models.ThreatStatusIdentified,
	}
}

// endpointName resolves a flow endpoint for display; dangling references keep
// the raw id
func endpointName(model *models.ThreatModel, componentID string) string {
	if comp, ok := model.ComponentByID(componentID); ok {
		return comp.Name
	}
	return componentID
}

// threatID derives a stable id from the model id and the run-unique diagram
// id, so identical inputs produce identical outputs across runs
func threatID(modelID uuid.UUID, diagramID string) uuid.UUID {
	return uuid.NewSHA1(modelID, []byte("threat:"+diagramID))
}
