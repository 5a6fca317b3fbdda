package knowledge

import (
	"strings"

	"riskforge/internal/domain/models"
)

// TemplateClass is the catalog-facing classification of a component. Every
// component type maps onto exactly one class; unmapped types fall back to
// ClassProcess, a deliberate permissive default.
type TemplateClass string

const (
	ClassProcess        TemplateClass = "PROCESS"
	ClassDataStore      TemplateClass = "DATA_STORE"
	ClassExternalEntity TemplateClass = "EXTERNAL_ENTITY"
	ClassAPIGateway     TemplateClass = "API_GATEWAY"
	ClassTrustBoundary  TemplateClass = "TRUST_BOUNDARY"
)

// ClassForComponentType maps a component type through the fixed lookup table
func ClassForComponentType(t models.ComponentType) TemplateClass {
	switch t {
	case models.ComponentTypeDatabase, models.ComponentTypeDatastore:
		return ClassDataStore
	case models.ComponentTypeExternal, models.ComponentTypeExternalEntity:
		return ClassExternalEntity
	case models.ComponentTypeAPIGateway:
		return ClassAPIGateway
	case models.ComponentTypeTrustBoundary:
		return ClassTrustBoundary
	}
	// Loose technical names ("api", "gateway") still land on the gateway set
	switch strings.ToLower(string(t)) {
	case "api", "gateway":
		return ClassAPIGateway
	}
	return ClassProcess
}

// ThreatTemplate is a parameterized threat archetype. The {component}
// placeholder in Title and Description is substituted with the component name
// at instantiation time.
type ThreatTemplate struct {
	Category       models.StrideCategory
	Title          string
	Description    string
	Vulnerability  string
	AttackVector   string
	Actors         []string
	Skill          string
	Complexity     string
	Likelihood     models.Likelihood
	Impact         models.Severity
	Recommendation string
	CWEID          string
	TechniqueID    string
}

// Instantiate substitutes the component name into the template text
func (t ThreatTemplate) Instantiate(componentName string) (title, description string) {
	title = strings.ReplaceAll(t.Title, "{component}", componentName)
	description = strings.ReplaceAll(t.Description, "{component}", componentName)
	return title, description
}

// Catalog is the static STRIDE knowledge base, keyed by template class
type Catalog struct {
	templates map[TemplateClass][]ThreatTemplate
}

// NewCatalog returns the built-in reference catalog
func NewCatalog() *Catalog {
	return &Catalog{templates: referenceTemplates()}
}

// TemplatesFor returns the template set for a component type, falling back to
// the PROCESS set when the mapped class has no entries
func (c *Catalog) TemplatesFor(t models.ComponentType) []ThreatTemplate {
	class := ClassForComponentType(t)
	if tpls, ok := c.templates[class]; ok && len(tpls) > 0 {
		return tpls
	}
	return c.templates[ClassProcess]
}

// TemplatesForClass returns the raw template set registered for a class
func (c *Catalog) TemplatesForClass(class TemplateClass) []ThreatTemplate {
	return c.templates[class]
}

// Classes returns the classes with registered template sets
func (c *Catalog) Classes() []TemplateClass {
	return []TemplateClass{
		ClassProcess,
		ClassDataStore,
		ClassExternalEntity,
		ClassAPIGateway,
		ClassTrustBoundary,
	}
}

func referenceTemplates() map[TemplateClass][]ThreatTemplate {
	return map[TemplateClass][]ThreatTemplate{
		ClassProcess: {
			{
				Category:      models.StrideSpoofing,
				Title:         "Identity spoofing against {component}",
				Description:   "An attacker impersonates a legitimate caller of {component} to gain its privileges.",
				Vulnerability: "Weak or missing caller authentication",
				AttackVector:  "Stolen credentials, forged tokens, or session replay against the component's entry points",
				Actors:        []string{"external attacker", "malicious insider"},
				Skill:         "medium",
				Complexity:    "medium",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityHigh,
				Recommendation: "Enforce mutual authentication and short-lived credentials for all callers.",
				CWEID:         "CWE-287",
				TechniqueID:   "T1078",
			},
			{
				Category:      models.StrideTampering,
				Title:         "Input tampering against {component}",
				Description:   "Untrusted input reaching {component} is modified to alter its behavior or corrupt its state.",
				Vulnerability: "Insufficient input validation and integrity checks",
				AttackVector:  "Crafted request payloads or manipulated intermediate data",
				Actors:        []string{"external attacker"},
				Skill:         "medium",
				Complexity:    "medium",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityHigh,
				Recommendation: "Validate all inputs against a strict schema and sign data crossing trust boundaries.",
				CWEID:         "CWE-20",
				TechniqueID:   "T1565",
			},
			{
				Category:      models.StrideRepudiation,
				Title:         "Repudiation of actions performed by {component}",
				Description:   "Operations performed through {component} cannot be attributed to a principal afterwards.",
				Vulnerability: "Missing or tamperable audit logging",
				AttackVector:  "Performing sensitive operations while audit trails are absent or mutable",
				Actors:        []string{"malicious insider"},
				Skill:         "low",
				Complexity:    "low",
				Likelihood:    models.LikelihoodLow,
				Impact:        models.SeverityMedium,
				Recommendation: "Emit append-only audit records with principal, timestamp, and operation for every sensitive action.",
				CWEID:         "CWE-778",
				TechniqueID:   "T1070",
			},
			{
				Category:      models.StrideDenialOfService,
				Title:         "Denial of service against {component}",
				Description:   "{component} is overwhelmed with requests or poisoned with pathological inputs until it stops serving legitimate traffic.",
				Vulnerability: "No resource limits or load shedding",
				AttackVector:  "Request flooding, amplification, or resource-exhaustion payloads",
				Actors:        []string{"external attacker", "botnet operator"},
				Skill:         "low",
				Complexity:    "low",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityMedium,
				Recommendation: "Apply rate limiting, request size caps, and circuit breakers in front of the component.",
				CWEID:         "CWE-400",
				TechniqueID:   "T1499",
			},
			{
				Category:      models.StrideElevationOfPrivilege,
				Title:         "Privilege escalation through {component}",
				Description:   "A low-privileged caller abuses {component} to perform operations reserved for higher privilege levels.",
				Vulnerability: "Missing authorization checks on privileged operations",
				AttackVector:  "Invoking privileged code paths directly or via confused-deputy patterns",
				Actors:        []string{"external attacker", "malicious insider"},
				Skill:         "high",
				Complexity:    "high",
				Likelihood:    models.LikelihoodLow,
				Impact:        models.SeverityCritical,
				Recommendation: "Authorize every operation server-side against the caller's effective privileges.",
				CWEID:         "CWE-269",
				TechniqueID:   "T1068",
			},
		},
		ClassDataStore: {
			{
				Category:      models.StrideTampering,
				Title:         "Unauthorized modification of data in {component}",
				Description:   "Records held by {component} are altered or deleted outside sanctioned write paths.",
				Vulnerability: "Write access not restricted to the owning service",
				AttackVector:  "SQL injection through upstream services or direct access with leaked credentials",
				Actors:        []string{"external attacker", "malicious insider"},
				Skill:         "medium",
				Complexity:    "medium",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityHigh,
				Recommendation: "Restrict write paths to parameterized queries issued by the owning service only.",
				CWEID:         "CWE-89",
				TechniqueID:   "T1565",
			},
			{
				Category:      models.StrideInformationDisclosure,
				Title:         "Data exposure from {component}",
				Description:   "Sensitive records stored in {component} are read by parties without a need to know.",
				Vulnerability: "Unencrypted storage and over-broad read permissions",
				AttackVector:  "Backup theft, snapshot access, or injection through an upstream query path",
				Actors:        []string{"external attacker", "malicious insider"},
				Skill:         "medium",
				Complexity:    "medium",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityCritical,
				Recommendation: "Encrypt data at rest and scope read access per dataset.",
				CWEID:         "CWE-312",
				TechniqueID:   "T1005",
			},
			{
				Category:      models.StrideRepudiation,
				Title:         "Untracked changes to {component}",
				Description:   "Writes to {component} leave no attributable trail, so destructive changes cannot be traced.",
				Vulnerability: "Data-level audit logging disabled",
				AttackVector:  "Modifying or deleting records through paths that bypass application-level logging",
				Actors:        []string{"malicious insider"},
				Skill:         "low",
				Complexity:    "low",
				Likelihood:    models.LikelihoodLow,
				Impact:        models.SeverityMedium,
				Recommendation: "Enable change data capture or database audit logging on sensitive tables.",
				CWEID:         "CWE-778",
				TechniqueID:   "T1070",
			},
			{
				Category:      models.StrideDenialOfService,
				Title:         "Storage exhaustion of {component}",
				Description:   "{component} is driven out of capacity or locked up so dependent services lose their data path.",
				Vulnerability: "No quotas or query cost limits",
				AttackVector:  "Unbounded inserts, expensive queries, or lock contention from crafted workloads",
				Actors:        []string{"external attacker"},
				Skill:         "low",
				Complexity:    "medium",
				Likelihood:    models.LikelihoodLow,
				Impact:        models.SeverityHigh,
				Recommendation: "Enforce storage quotas, statement timeouts, and connection limits.",
				CWEID:         "CWE-400",
				TechniqueID:   "T1499",
			},
		},
		ClassExternalEntity: {
			{
				Category:      models.StrideSpoofing,
				Title:         "Impersonation of external entity {component}",
				Description:   "An attacker masquerades as {component} to feed the system forged data or harvest responses.",
				Vulnerability: "External identity accepted without strong verification",
				AttackVector:  "DNS hijacking, phishing, or certificate abuse to stand in for the entity",
				Actors:        []string{"external attacker"},
				Skill:         "medium",
				Complexity:    "medium",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityHigh,
				Recommendation: "Pin certificates and verify external identities on every interaction.",
				CWEID:         "CWE-287",
				TechniqueID:   "T1078",
			},
			{
				Category:      models.StrideRepudiation,
				Title:         "Repudiation by external entity {component}",
				Description:   "{component} denies having initiated interactions with the system and no proof exists either way.",
				Vulnerability: "No non-repudiable record of external interactions",
				AttackVector:  "Disputing submitted requests after the fact",
				Actors:        []string{"external partner"},
				Skill:         "low",
				Complexity:    "low",
				Likelihood:    models.LikelihoodLow,
				Impact:        models.SeverityMedium,
				Recommendation: "Record signed receipts for interactions with external parties.",
				CWEID:         "CWE-778",
				TechniqueID:   "T1070",
			},
		},
		ClassAPIGateway: {
			{
				Category:      models.StrideSpoofing,
				Title:         "Credential abuse at gateway {component}",
				Description:   "Stolen or forged API credentials are presented to {component} to reach internal services.",
				Vulnerability: "API keys long-lived and replayable",
				AttackVector:  "Credential stuffing and token replay against the public endpoint",
				Actors:        []string{"external attacker"},
				Skill:         "low",
				Complexity:    "low",
				Likelihood:    models.LikelihoodHigh,
				Impact:        models.SeverityHigh,
				Recommendation: "Use short-lived, audience-bound tokens and detect anomalous key usage.",
				CWEID:         "CWE-287",
				TechniqueID:   "T1110",
			},
			{
				Category:      models.StrideTampering,
				Title:         "Request smuggling through {component}",
				Description:   "Discrepancies in request parsing let attackers slip altered requests past {component} to backends.",
				Vulnerability: "Gateway and backend disagree on message framing",
				AttackVector:  "Crafted headers exploiting parser differentials",
				Actors:        []string{"external attacker"},
				Skill:         "high",
				Complexity:    "high",
				Likelihood:    models.LikelihoodLow,
				Impact:        models.SeverityHigh,
				Recommendation: "Normalize requests at the edge and reject ambiguous framing.",
				CWEID:         "CWE-444",
				TechniqueID:   "T1190",
			},
			{
				Category:      models.StrideInformationDisclosure,
				Title:         "Over-exposure through gateway {component}",
				Description:   "{component} forwards internal error details, headers, or undocumented routes to external callers.",
				Vulnerability: "Response filtering and route allow-listing absent",
				AttackVector:  "Probing for verbose errors and shadow endpoints",
				Actors:        []string{"external attacker"},
				Skill:         "low",
				Complexity:    "low",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityMedium,
				Recommendation: "Allow-list exposed routes and strip internal metadata from responses.",
				CWEID:         "CWE-200",
				TechniqueID:   "T1083",
			},
			{
				Category:      models.StrideDenialOfService,
				Title:         "Edge flooding of {component}",
				Description:   "{component} absorbs a volumetric or slow-request attack and starves the services behind it.",
				Vulnerability: "No per-client rate limits at the edge",
				AttackVector:  "Volumetric floods and slowloris-style connection holding",
				Actors:        []string{"botnet operator"},
				Skill:         "low",
				Complexity:    "low",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityHigh,
				Recommendation: "Rate-limit per client, cap concurrent connections, and enable upstream DDoS protection.",
				CWEID:         "CWE-400",
				TechniqueID:   "T1498",
			},
			{
				Category:      models.StrideElevationOfPrivilege,
				Title:         "Authorization bypass at {component}",
				Description:   "Path rewriting or method confusion lets callers reach routes {component} should have restricted.",
				Vulnerability: "Authorization enforced only at the gateway layer",
				AttackVector:  "Path traversal tricks and verb tunneling past gateway rules",
				Actors:        []string{"external attacker"},
				Skill:         "medium",
				Complexity:    "medium",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityCritical,
				Recommendation: "Enforce authorization in backends as well as at the gateway.",
				CWEID:         "CWE-863",
				TechniqueID:   "T1068",
			},
		},
		ClassTrustBoundary: {
			{
				Category:      models.StrideElevationOfPrivilege,
				Title:         "Boundary crossing into {component}",
				Description:   "An actor on the low-trust side of {component} reaches assets on the high-trust side without re-authorization.",
				Vulnerability: "Trust assumed rather than verified at the boundary",
				AttackVector:  "Pivoting through components that straddle the boundary",
				Actors:        []string{"external attacker", "malicious insider"},
				Skill:         "high",
				Complexity:    "high",
				Likelihood:    models.LikelihoodLow,
				Impact:        models.SeverityCritical,
				Recommendation: "Re-authenticate and re-authorize every request that crosses the boundary.",
				CWEID:         "CWE-306",
				TechniqueID:   "T1021",
			},
			{
				Category:      models.StrideInformationDisclosure,
				Title:         "Data leakage across {component}",
				Description:   "Sensitive data transits {component} without protection and is visible to the lower-trust zone.",
				Vulnerability: "Boundary-crossing channels unencrypted",
				AttackVector:  "Passive interception on the low-trust side of the boundary",
				Actors:        []string{"external attacker"},
				Skill:         "medium",
				Complexity:    "low",
				Likelihood:    models.LikelihoodMedium,
				Impact:        models.SeverityHigh,
				Recommendation: "Encrypt every channel that crosses the boundary.",
				CWEID:         "CWE-319",
				TechniqueID:   "T1040",
			},
		},
	}
}
