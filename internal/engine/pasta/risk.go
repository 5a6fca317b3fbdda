package pasta

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"riskforge/internal/domain/knowledge"
	"riskforge/internal/domain/models"
)

// stageAttackModeling synthesizes one attack vector per threat that has at
// least one mapped vulnerability. High-likelihood vectors additionally get an
// illustrative AND/OR attack tree.
func (p *Pipeline) stageAttackModeling(model *models.ThreatModel, threats *ThreatAnalysisOutput, vulns *VulnerabilityAnalysisOutput) (*AttackModelingOutput, error) {
	vulnByID := make(map[uuid.UUID]*models.Vulnerability, len(vulns.Vulnerabilities))
	for i := range vulns.Vulnerabilities {
		vulnByID[vulns.Vulnerabilities[i].ID] = &vulns.Vulnerabilities[i]
	}

	out := &AttackModelingOutput{AttackVectors: make([]models.AttackVector, 0)}

	for _, t := range threats.Threats {
		linked := vulns.ThreatMapping[t.ID]
		if len(linked) == 0 {
			continue
		}

		maxExploit := 0.0
		techniques := make([]string, 0)
		techSeen := make(map[string]bool)
		linkedTitles := make([]string, 0, len(linked))
		for _, vid := range linked {
			v, ok := vulnByID[vid]
			if !ok {
				continue
			}
			if v.Exploitability > maxExploit {
				maxExploit = v.Exploitability
			}
			linkedTitles = append(linkedTitles, v.Title)
			for _, tech := range knowledge.TechniquesForCWE(v.CWEID) {
				if !techSeen[tech] {
					techSeen[tech] = true
					techniques = append(techniques, tech)
				}
			}
		}

		likelihood := models.LikelihoodLow
		switch {
		case maxExploit >= 8:
			likelihood = models.LikelihoodHigh
		case maxExploit >= 5:
			likelihood = models.LikelihoodMedium
		}

		target := t.ComponentName
		if target == "" {
			target = t.TargetID()
		}
		phrase := humanize(t.Category)

		vector := models.AttackVector{
			ID:               deriveID(model.ID, "vector", t.ID.String()),
			Name:             fmt.Sprintf("%s attack on %s", capitalize(phrase), target),
			Description:      fmt.Sprintf("A %s attack against %s exploiting %s", phrase, target, strings.Join(linkedTitles, ", ")),
			AttackerProfile:  attackerProfile(likelihood),
			EntryPoint:       target,
			TargetAsset:      target,
			VulnerabilityIDs: linked,
			TechniqueIDs:     techniques,
			Likelihood:       likelihood,
			ThreatID:         t.ID,
		}

		if likelihood == models.LikelihoodHigh {
			vector.AttackTree = buildAttackTree(vector.Name, target, linkedTitles)
		}

		out.AttackVectors = append(out.AttackVectors, vector)
	}

	return out, nil
}

// buildAttackTree produces the fixed three-step tree: find the entry, exploit
// one of the linked vulnerabilities, reach the target. Leaf probabilities are
// illustrative constants, not data-derived.
func buildAttackTree(goal, target string, vulnTitles []string) *models.AttackTreeNode {
	exploitChildren := make([]models.AttackTreeNode, 0, len(vulnTitles))
	for _, title := range vulnTitles {
		exploitChildren = append(exploitChildren, models.AttackTreeNode{
			Goal:        "Exploit " + title,
			Probability: 0.6,
		})
	}
	return &models.AttackTreeNode{
		Goal:     goal,
		Operator: models.AttackTreeAND,
		Children: []models.AttackTreeNode{
			{Goal: "Identify vulnerable entry point", Probability: 0.8},
			{Goal: "Exploit one vulnerability", Operator: models.AttackTreeOR, Children: exploitChildren},
			{Goal: "Reach " + target, Probability: 0.7},
		},
	}
}

func attackerProfile(likelihood models.Likelihood) string {
	switch likelihood {
	case models.LikelihoodHigh:
		return "opportunistic external attacker"
	case models.LikelihoodMedium:
		return "motivated attacker with moderate skill"
	default:
		return "well-resourced targeted attacker"
	}
}

func humanize(category models.StrideCategory) string {
	return strings.ReplaceAll(string(category), "_", " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Keyword pairs used to decide whether an objective is affected by a vector:
// the objective's requirement tag on the left, the vector description on the
// right, both matched as case-insensitive substrings
var objectiveKeywords = [][2]string{
	{"confidentiality", "disclosure"},
	{"integrity", "tampering"},
	{"availability", "denial"},
	{"authentication", "spoof"},
}

// stageRiskAnalysis places every attack vector's threat on the 5x5 risk
// matrix, ranks the threats, and derives a mitigation strategy per threat
func (p *Pipeline) stageRiskAnalysis(model *models.ThreatModel, objectives *ObjectivesOutput, threats *ThreatAnalysisOutput, vulns *VulnerabilityAnalysisOutput, attacks *AttackModelingOutput) (*RiskOutput, error) {
	vulnByID := make(map[uuid.UUID]*models.Vulnerability, len(vulns.Vulnerabilities))
	for i := range vulns.Vulnerabilities {
		vulnByID[vulns.Vulnerabilities[i].ID] = &vulns.Vulnerabilities[i]
	}
	threatByID := make(map[uuid.UUID]*models.Threat, len(threats.Threats))
	for i := range threats.Threats {
		threatByID[threats.Threats[i].ID] = &threats.Threats[i]
	}

	out := &RiskOutput{
		RiskMatrix:           make([]models.RiskMatrixEntry, 0, len(attacks.AttackVectors)),
		PrioritizedThreats:   make([]PrioritizedThreat, 0, len(attacks.AttackVectors)),
		MitigationStrategies: make([]models.MitigationStrategy, 0, len(attacks.AttackVectors)),
	}

	for _, vector := range attacks.AttackVectors {
		threat, ok := threatByID[vector.ThreatID]
		if !ok {
			continue
		}

		likelihoodScore := likelihoodBase(vector.Likelihood)
		likelihoodScore += severityAdjustment(vector.VulnerabilityIDs, vulnByID)
		if likelihoodScore > 5 {
			likelihoodScore = 5
		}
		if likelihoodScore < 1 {
			likelihoodScore = 1
		}

		impactScore := 1
		for _, obj := range objectives.RankedObjectives {
			if objectiveAffected(obj, vector.Description) {
				if s := obj.Priority.ImpactScore(); s > impactScore {
					impactScore = s
				}
			}
		}

		riskScore := likelihoodScore * impactScore

		out.RiskMatrix = append(out.RiskMatrix, models.RiskMatrixEntry{
			SubjectID:       threat.ID,
			LikelihoodScore: likelihoodScore,
			ImpactScore:     impactScore,
			RiskScore:       riskScore,
			RiskLevel:       models.MatrixRiskLevel(riskScore),
		})
		out.PrioritizedThreats = append(out.PrioritizedThreats, PrioritizedThreat{
			Threat:    *threat,
			RiskScore: riskScore,
			RiskLevel: models.MatrixRiskLevel(riskScore),
		})
	}

	sort.SliceStable(out.PrioritizedThreats, func(i, j int) bool {
		return out.PrioritizedThreats[i].RiskScore > out.PrioritizedThreats[j].RiskScore
	})

	for _, pt := range out.PrioritizedThreats {
		out.MitigationStrategies = append(out.MitigationStrategies,
			deriveMitigation(pt, vulns.ThreatMapping[pt.Threat.ID], vulnByID))
	}

	return out, nil
}

func likelihoodBase(l models.Likelihood) int {
	switch l {
	case models.LikelihoodHigh:
		return 4
	case models.LikelihoodMedium:
		return 3
	default:
		return 2
	}
}

// severityAdjustment nudges the likelihood score by the worst linked
// vulnerability: critical raises it, high leaves it, anything less lowers it
func severityAdjustment(linked []uuid.UUID, vulnByID map[uuid.UUID]*models.Vulnerability) int {
	anyCritical, anyHigh := false, false
	for _, vid := range linked {
		if v, ok := vulnByID[vid]; ok {
			switch v.Severity {
			case models.SeverityCritical:
				anyCritical = true
			case models.SeverityHigh:
				anyHigh = true
			}
		}
	}
	switch {
	case anyCritical:
		return 1
	case anyHigh:
		return 0
	default:
		return -1
	}
}

func objectiveAffected(obj models.BusinessObjective, vectorDescription string) bool {
	desc := strings.ToLower(vectorDescription)
	for _, req := range obj.SecurityRequirements {
		tag := strings.ToLower(req)
		for _, pair := range objectiveKeywords {
			if strings.Contains(tag, pair[0]) && strings.Contains(desc, pair[1]) {
				return true
			}
		}
	}
	return false
}

func deriveMitigation(pt PrioritizedThreat, linked []uuid.UUID, vulnByID map[uuid.UUID]*models.Vulnerability) models.MitigationStrategy {
	controls := make([]models.SecurityControl, 0)
	seen := make(map[string]bool)
	for _, vid := range linked {
		v, ok := vulnByID[vid]
		if !ok {
			continue
		}
		for _, c := range knowledge.ControlsForCWE(v.CWEID) {
			if !seen[c.Name] {
				seen[c.Name] = true
				controls = append(controls, c)
			}
		}
	}

	strategy := models.StrategyAccept
	switch {
	case pt.RiskScore >= 20:
		strategy = models.StrategyAvoid
	case pt.RiskScore >= 6:
		strategy = models.StrategyMitigate
	}

	residual := 0.0
	if len(controls) > 0 {
		sum := 0.0
		for _, c := range controls {
			sum += c.Effectiveness
		}
		residual = float64(pt.RiskScore) * (1 - sum/float64(len(controls)))
	}

	priority := 3
	switch {
	case pt.RiskScore >= 12:
		priority = 1
	case pt.RiskScore >= 6:
		priority = 2
	}

	return models.MitigationStrategy{
		ThreatID:     pt.Threat.ID,
		Strategy:     strategy,
		Controls:     controls,
		ResidualRisk: residual,
		Priority:     priority,
	}
}
