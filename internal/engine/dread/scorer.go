package dread

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"riskforge/internal/domain/models"
	"riskforge/pkg/logger"
)

// Scorer performs quantitative DREAD risk scoring. It is stateless; the same
// input always produces the same assessment.
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a new Scorer
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{
		logger: log.WithComponent("dread"),
	}
}

// factorNames in canonical DREAD order
var factorNames = [5]string{"damage", "reproducibility", "exploitability", "affected_users", "discoverability"}

func factorValues(f models.DreadFactors) [5]float64 {
	return [5]float64{f.Damage, f.Reproducibility, f.Exploitability, f.AffectedUsers, f.Discoverability}
}

// CalculateScore validates all five factors and returns their mean rounded
// to one decimal. Any factor outside [0,10] fails with ErrInvalidArgument.
func (s *Scorer) CalculateScore(factors models.DreadFactors) (float64, error) {
	values := factorValues(factors)
	sum := 0.0
	for i, v := range values {
		if v < 0 || v > 10 {
			return 0, fmt.Errorf("%w: factor %s is %.1f, must be in [0,10]", models.ErrInvalidArgument, factorNames[i], v)
		}
		sum += v
	}
	return math.Round(sum/5*10) / 10, nil
}

// Assess scores explicitly supplied factors for a threat
func (s *Scorer) Assess(threat *models.Threat, factors models.DreadFactors) (*models.DreadAssessment, error) {
	score, err := s.CalculateScore(factors)
	if err != nil {
		return nil, err
	}
	level := models.DreadRiskLevel(score)
	assessment := &models.DreadAssessment{
		Factors:        factors,
		Score:          score,
		RiskLevel:      level,
		Justifications: justify(factors),
		Recommendation: recommendation(level),
	}
	if threat != nil {
		assessment.ThreatID = threat.ID
		assessment.ThreatName = threat.Title
	}
	return assessment, nil
}

// AssessThreat infers factors from the threat's attributes and scores them
func (s *Scorer) AssessThreat(threat *models.Threat) (*models.DreadAssessment, error) {
	if threat == nil {
		return nil, fmt.Errorf("%w: threat is required", models.ErrInvalidArgument)
	}
	return s.Assess(threat, s.InferFactors(threat))
}

// InferFactors estimates DREAD factors from threat attributes. Every factor
// starts at 5 and rules only raise values via max, so rule order does not
// change the outcome.
func (s *Scorer) InferFactors(threat *models.Threat) models.DreadFactors {
	f := models.DreadFactors{Damage: 5, Reproducibility: 5, Exploitability: 5, AffectedUsers: 5, Discoverability: 5}

	switch threat.Impact {
	case models.SeverityCritical, models.SeverityHigh:
		f.Damage = math.Max(f.Damage, 8)
	case models.SeverityMedium:
		f.Damage = math.Max(f.Damage, 6)
	case models.SeverityLow:
		f.Damage = math.Max(f.Damage, 3)
	}

	title := strings.ToLower(threat.Title)
	if strings.Contains(title, "injection") || strings.Contains(title, "code execution") {
		f.Damage = math.Max(f.Damage, 9)
		f.Exploitability = math.Max(f.Exploitability, 7)
	}
	if strings.Contains(title, "data breach") || strings.Contains(title, "exposure") {
		f.Damage = math.Max(f.Damage, 8)
		f.AffectedUsers = math.Max(f.AffectedUsers, 8)
	}
	if strings.Contains(title, "denial of service") {
		f.AffectedUsers = math.Max(f.AffectedUsers, 9)
		f.Damage = math.Max(f.Damage, 6)
	}
	if strings.Contains(title, "privilege") || strings.Contains(title, "escalation") {
		f.Damage = math.Max(f.Damage, 8)
		f.Exploitability = math.Max(f.Exploitability, 6)
	}

	switch threat.Category {
	case models.StrideSpoofing, models.StrideTampering:
		f.Reproducibility = math.Max(f.Reproducibility, 7)
	case models.StrideInformationDisclosure:
		f.Reproducibility = math.Max(f.Reproducibility, 6)
		f.Discoverability = math.Max(f.Discoverability, 6)
	}

	switch threat.Likelihood {
	case models.LikelihoodHigh:
		f.Exploitability = math.Max(f.Exploitability, 8)
		f.Reproducibility = math.Max(f.Reproducibility, 7)
	case models.LikelihoodMedium:
		f.Exploitability = math.Max(f.Exploitability, 6)
	case models.LikelihoodLow:
		f.Exploitability = math.Max(f.Exploitability, 4)
	}

	component := strings.ToLower(threat.ComponentName)
	if strings.Contains(component, "api") || strings.Contains(component, "external") || strings.Contains(component, "public") {
		f.Discoverability = math.Max(f.Discoverability, 8)
	} else if strings.Contains(component, "internal") || strings.Contains(component, "database") {
		f.Discoverability = math.Max(f.Discoverability, 4)
	}

	switch threat.CWEID {
	case "CWE-89", "CWE-79", "CWE-78":
		f.Exploitability = math.Max(f.Exploitability, 8)
		f.Discoverability = math.Max(f.Discoverability, 7)
	case "CWE-287", "CWE-306", "CWE-862":
		f.Damage = math.Max(f.Damage, 7)
		f.Reproducibility = math.Max(f.Reproducibility, 8)
	}

	f.Damage = clamp(f.Damage)
	f.Reproducibility = clamp(f.Reproducibility)
	f.Exploitability = clamp(f.Exploitability)
	f.AffectedUsers = clamp(f.AffectedUsers)
	f.Discoverability = clamp(f.Discoverability)
	return f
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// BatchResult aggregates assessments over a set of threats
type BatchResult struct {
	Assessments []models.DreadAssessment `json:"assessments"`

	MeanScore float64 `json:"mean_score"`
	MaxScore  float64 `json:"max_score"`
	MinScore  float64 `json:"min_score"`

	// ByRiskLevel is the count of assessments per risk level bucket
	ByRiskLevel map[models.RiskLevel]int `json:"by_risk_level"`

	// TopRisks holds up to five assessments ranked by score descending,
	// ties preserving input order
	TopRisks []models.DreadAssessment `json:"top_risks"`
}

// AssessBatch infers and scores every threat, then aggregates
func (s *Scorer) AssessBatch(threats []models.Threat) (*BatchResult, error) {
	result := &BatchResult{
		Assessments: make([]models.DreadAssessment, 0, len(threats)),
		ByRiskLevel: make(map[models.RiskLevel]int),
	}

	for i := range threats {
		assessment, err := s.AssessThreat(&threats[i])
		if err != nil {
			return nil, err
		}
		result.Assessments = append(result.Assessments, *assessment)
	}

	if len(result.Assessments) == 0 {
		return result, nil
	}

	result.MinScore = result.Assessments[0].Score
	sum := 0.0
	for _, a := range result.Assessments {
		sum += a.Score
		if a.Score > result.MaxScore {
			result.MaxScore = a.Score
		}
		if a.Score < result.MinScore {
			result.MinScore = a.Score
		}
		result.ByRiskLevel[a.RiskLevel]++
	}
	result.MeanScore = math.Round(sum/float64(len(result.Assessments))*10) / 10

	ranked := make([]models.DreadAssessment, len(result.Assessments))
	copy(ranked, result.Assessments)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	result.TopRisks = ranked

	s.logger.Debug().
		Int("threats", len(threats)).
		Float64("mean_score", result.MeanScore).
		Float64("max_score", result.MaxScore).
		Msg("batch assessment complete")

	return result, nil
}

// FactorSpread reports which assessment holds the extreme values of one
// factor across a comparison set
type FactorSpread struct {
	Factor    string  `json:"factor"`
	Mean      float64 `json:"mean"`
	Max       float64 `json:"max"`
	MaxHolder string  `json:"max_holder"`
	Min       float64 `json:"min"`
	MinHolder string  `json:"min_holder"`
}

// Comparison is the result of comparing two or more assessments
type Comparison struct {
	Factors []FactorSpread `json:"factors"`

	// Ranking is every compared assessment sorted by score descending
	Ranking []models.DreadAssessment `json:"ranking"`
}

// CompareAssessments contrasts two or more assessments factor by factor.
// Fewer than two items fails with ErrInvalidArgument.
func (s *Scorer) CompareAssessments(assessments []models.DreadAssessment) (*Comparison, error) {
	if len(assessments) < 2 {
		return nil, fmt.Errorf("%w: comparison requires at least 2 assessments, got %d", models.ErrInvalidArgument, len(assessments))
	}

	comparison := &Comparison{Factors: make([]FactorSpread, 0, len(factorNames))}

	for i, name := range factorNames {
		spread := FactorSpread{Factor: name}
		sum := 0.0
		for j, a := range assessments {
			v := factorValues(a.Factors)[i]
			sum += v
			if j == 0 || v > spread.Max {
				spread.Max = v
				spread.MaxHolder = a.ThreatName
			}
			if j == 0 || v < spread.Min {
				spread.Min = v
				spread.MinHolder = a.ThreatName
			}
		}
		spread.Mean = math.Round(sum/float64(len(assessments))*10) / 10
		comparison.Factors = append(comparison.Factors, spread)
	}

	ranking := make([]models.DreadAssessment, len(assessments))
	copy(ranking, assessments)
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	comparison.Ranking = ranking

	return comparison, nil
}

// justify produces a short per-factor explanation keyed by factor name
func justify(f models.DreadFactors) map[string]string {
	return map[string]string{
		"damage":          fmt.Sprintf("Damage potential rated %.1f/10: %s", f.Damage, bandPhrase(f.Damage, "limited impact if exploited", "moderate impact on affected data or services", "severe impact including data loss or full compromise")),
		"reproducibility": fmt.Sprintf("Reproducibility rated %.1f/10: %s", f.Reproducibility, bandPhrase(f.Reproducibility, "hard to reproduce reliably", "reproducible with some preconditions", "reliably reproducible on demand")),
		"exploitability":  fmt.Sprintf("Exploitability rated %.1f/10: %s", f.Exploitability, bandPhrase(f.Exploitability, "requires advanced skills or custom tooling", "requires moderate skill", "exploitable with readily available tools")),
		"affected_users":  fmt.Sprintf("Affected users rated %.1f/10: %s", f.AffectedUsers, bandPhrase(f.AffectedUsers, "few users affected", "a significant subset of users affected", "most or all users affected")),
		"discoverability": fmt.Sprintf("Discoverability rated %.1f/10: %s", f.Discoverability, bandPhrase(f.Discoverability, "hard to discover without inside knowledge", "discoverable with focused probing", "easily discovered by casual scanning")),
	}
}

func bandPhrase(v float64, low, mid, high string) string {
	switch {
	case v >= 7:
		return high
	case v >= 4:
		return mid
	default:
		return low
	}
}

func recommendation(level models.RiskLevel) string {
	switch level {
	case models.RiskLevelCritical:
		return "Remediate immediately; treat as an emergency change"
	case models.RiskLevelHigh:
		return "Prioritize remediation in the current cycle"
	case models.RiskLevelMedium:
		return "Schedule remediation within the next planning cycle"
	case models.RiskLevelLow:
		return "Address opportunistically alongside planned work"
	default:
		return "Monitor; no action required at this score"
	}
}
