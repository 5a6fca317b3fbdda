package pasta

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"riskforge/internal/domain/knowledge"
	"riskforge/internal/domain/models"
)

// stageThreatAnalysis derives threats from the decomposition: entry points,
// cross-boundary flows, and sensitive assets each contribute candidates.
// Candidates are deduplicated by (category, target id), first wins.
func (p *Pipeline) stageThreatAnalysis(model *models.ThreatModel, decomposition *DecompositionOutput) (*ThreatAnalysisOutput, error) {
	candidates := make([]models.Threat, 0)

	for _, entry := range decomposition.EntryPoints {
		if isApplicationType(entry.Type) {
			candidates = append(candidates,
				p.candidate(model, models.StrideTampering, entry.ID, entry.Name,
					"Injection attack against "+entry.Name,
					fmt.Sprintf("Malicious input submitted through %s could alter queries or commands executed downstream", entry.Name),
					"CWE-89", models.SeverityHigh),
				p.candidate(model, models.StrideSpoofing, entry.ID, entry.Name,
					"Authentication bypass at "+entry.Name,
					fmt.Sprintf("An attacker could bypass authentication on %s and operate under a false identity", entry.Name),
					"CWE-287", models.SeverityHigh),
			)
		}
		if isDatastoreType(entry.Type) {
			candidates = append(candidates,
				p.candidate(model, models.StrideTampering, entry.ID, entry.Name,
					"SQL injection against "+entry.Name,
					fmt.Sprintf("Unsanitized input reaching %s could execute attacker-controlled SQL", entry.Name),
					"CWE-89", models.SeverityCritical),
				p.candidate(model, models.StrideInformationDisclosure, entry.ID, entry.Name,
					"Data leakage from "+entry.Name,
					fmt.Sprintf("Records held in %s could be read by parties without a need to know", entry.Name),
					"CWE-200", models.SeverityHigh),
			)
		}
	}

	for _, flow := range decomposition.CrossBoundaryFlows {
		label := p.flowLabel(model, flow)
		if !flow.Encrypted {
			t := p.candidate(model, models.StrideInformationDisclosure, "", "",
				"Man-in-the-middle interception of "+label,
				fmt.Sprintf("Traffic on %s crosses a trust boundary in cleartext and can be read or modified in transit", label),
				"CWE-319", models.SeverityHigh)
			t.FlowID = flow.ID
			candidates = append(candidates, t)
		}
		if !flow.Authenticated {
			t := p.candidate(model, models.StrideSpoofing, "", "",
				"Endpoint spoofing on "+label,
				fmt.Sprintf("Either endpoint of %s can be impersonated because the flow carries no authentication", label),
				"CWE-306", models.SeverityHigh)
			t.FlowID = flow.ID
			candidates = append(candidates, t)
		}
	}

	for _, asset := range decomposition.Assets {
		if !asset.DataClassification.IsSensitive() {
			continue
		}
		candidates = append(candidates,
			p.candidate(model, models.StrideElevationOfPrivilege, asset.ID, asset.Name,
				"Unauthorized access to "+asset.Name,
				fmt.Sprintf("Missing authorization checks could let a low-privilege actor reach %s data", asset.Name),
				"CWE-862", models.SeverityHigh),
			p.candidate(model, models.StrideInformationDisclosure, asset.ID, asset.Name,
				"Exfiltration of "+asset.Name+" contents",
				fmt.Sprintf("Sensitive data held in %s could be copied out of the environment", asset.Name),
				"CWE-200", models.SeverityCritical),
		)
	}

	out := &ThreatAnalysisOutput{
		Threats:    make([]models.Threat, 0, len(candidates)),
		ByCategory: make(map[models.StrideCategory]int),
	}
	seen := make(map[string]bool)
	for _, t := range candidates {
		key := string(t.Category) + "|" + t.TargetID()
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Threats = append(out.Threats, t)
		out.ByCategory[t.Category]++
	}

	return out, nil
}

// candidate builds one threat with a deterministic id derived from the model
// id and the dedup key, so repeated runs over the same model agree
func (p *Pipeline) candidate(model *models.ThreatModel, category models.StrideCategory, componentID, componentName, title, description, cweID string, impact models.Severity) models.Threat {
	return models.Threat{
		ID:            deriveID(model.ID, "threat", string(category), componentID, title),
		Title:         title,
		Description:   description,
		Category:      category,
		Likelihood:    models.LikelihoodMedium,
		Impact:        impact,
		CWEID:         cweID,
		ComponentID:   componentID,
		ComponentName: componentName,
		Status:        models.ThreatStatusIdentified,
	}
}

func (p *Pipeline) flowLabel(model *models.ThreatModel, flow models.DataFlow) string {
	src := flow.SourceID
	if c, ok := model.ComponentByID(flow.SourceID); ok {
		src = c.Name
	}
	dst := flow.TargetID
	if c, ok := model.ComponentByID(flow.TargetID); ok {
		dst = c.Name
	}
	return src + " -> " + dst
}

// stageVulnerabilityAnalysis unions caller-supplied vulnerabilities with ones
// inferred from component technology and flow protections, then maps each
// threat to the vulnerabilities that could realize it
func (p *Pipeline) stageVulnerabilityAnalysis(model *models.ThreatModel, threats *ThreatAnalysisOutput) (*VulnerabilityAnalysisOutput, error) {
	vulns := make([]models.Vulnerability, 0, len(model.KnownVulnerabilities))
	for _, v := range model.KnownVulnerabilities {
		if v.ID == uuid.Nil {
			v.ID = deriveID(model.ID, "vuln", "known", v.CWEID, v.ComponentID, v.Title)
		}
		vulns = append(vulns, v)
	}

	for _, comp := range model.Components {
		tech := strings.ToLower(comp.Technology)
		switch {
		case strings.Contains(tech, "node") || strings.Contains(tech, "javascript"):
			vulns = append(vulns, p.inferred(model, comp.ID, "CWE-1321",
				"Prototype pollution in "+comp.Name,
				models.SeverityMedium, 5.5))
		case strings.Contains(tech, "java") || strings.Contains(tech, "spring"):
			vulns = append(vulns, p.inferred(model, comp.ID, "CWE-502",
				"Unsafe deserialization in "+comp.Name,
				models.SeverityHigh, 7.0))
		}
		if isDatastoreType(comp.Type) {
			vulns = append(vulns, p.inferred(model, comp.ID, "CWE-89",
				"SQL injection surface on "+comp.Name,
				models.SeverityHigh, 8.0))
		}
	}

	for _, flow := range model.DataFlows {
		if !flow.Encrypted {
			vulns = append(vulns, p.inferred(model, flow.ID, "CWE-319",
				"Cleartext transmission on flow "+flow.ID,
				models.SeverityHigh, 6.5))
		}
		if !flow.Authenticated {
			vulns = append(vulns, p.inferred(model, flow.ID, "CWE-306",
				"Missing authentication on flow "+flow.ID,
				models.SeverityHigh, 7.5))
		}
	}

	mapping := make(map[uuid.UUID][]uuid.UUID)
	for _, t := range threats.Threats {
		for _, v := range vulns {
			if matchesThreat(&t, &v) {
				mapping[t.ID] = append(mapping[t.ID], v.ID)
			}
		}
	}

	return &VulnerabilityAnalysisOutput{
		Vulnerabilities: vulns,
		ThreatMapping:   mapping,
	}, nil
}

func (p *Pipeline) inferred(model *models.ThreatModel, targetID, cweID, title string, severity models.Severity, exploitability float64) models.Vulnerability {
	return models.Vulnerability{
		ID:             deriveID(model.ID, "vuln", cweID, targetID),
		CWEID:          cweID,
		Title:          title,
		Severity:       severity,
		ComponentID:    targetID,
		Exploitability: exploitability,
	}
}

// matchesThreat links a vulnerability to a threat either by exact target
// match or by the threat category's CWE family
func matchesThreat(t *models.Threat, v *models.Vulnerability) bool {
	if v.ComponentID != "" && v.ComponentID == t.TargetID() {
		return true
	}
	return knowledge.CWEInFamily(t.Category, v.CWEID)
}

// deriveID produces a stable uuid for a derived entity, namespaced under the
// model id so distinct models never collide
func deriveID(modelID uuid.UUID, parts ...string) uuid.UUID {
	return uuid.NewSHA1(modelID, []byte(strings.Join(parts, ":")))
}
