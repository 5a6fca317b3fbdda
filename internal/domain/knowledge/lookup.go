package knowledge

import (
	"riskforge/internal/domain/models"
)

// Static reference lookups. CWE and ATT&CK data is consumed as fixed tables;
// the upstream feeds that produce them are out of scope.

// cweControls maps a CWE id to the countermeasures that address it
var cweControls = map[string][]models.SecurityControl{
	"CWE-89": {
		{Name: "Parameterized queries", Description: "Use prepared statements for all database access", Effectiveness: 0.95, Effort: "medium"},
	},
	"CWE-319": {
		{Name: "TLS encryption in transit", Description: "Terminate all flows over TLS 1.2+", Effectiveness: 0.98, Effort: "low"},
	},
	"CWE-306": {
		{Name: "Strong authentication", Description: "Require authenticated identities on every flow", Effectiveness: 0.90, Effort: "medium"},
	},
	"CWE-287": {
		{Name: "Multi-factor authentication", Description: "Add a second factor for privileged access", Effectiveness: 0.90, Effort: "medium"},
	},
	"CWE-79": {
		{Name: "Context-aware output encoding", Description: "Encode untrusted data on output", Effectiveness: 0.92, Effort: "medium"},
	},
	"CWE-502": {
		{Name: "Deserialization allow-list", Description: "Restrict deserializable types to a known set", Effectiveness: 0.85, Effort: "medium"},
	},
	"CWE-1321": {
		{Name: "Prototype pollution hardening", Description: "Freeze object prototypes and validate merge inputs", Effectiveness: 0.80, Effort: "low"},
	},
	"CWE-200": {
		{Name: "Least-privilege data access", Description: "Scope read access per dataset and strip internal metadata", Effectiveness: 0.85, Effort: "medium"},
	},
}

// ControlsForCWE returns the controls registered for a CWE id; nil when the
// table has no entry
func ControlsForCWE(cweID string) []models.SecurityControl {
	return cweControls[cweID]
}

// cweTechniques maps a CWE id to related MITRE ATT&CK technique ids
var cweTechniques = map[string][]string{
	"CWE-89":   {"T1190"},
	"CWE-79":   {"T1059.007"},
	"CWE-94":   {"T1059"},
	"CWE-287":  {"T1078", "T1110"},
	"CWE-306":  {"T1078"},
	"CWE-319":  {"T1040"},
	"CWE-312":  {"T1552"},
	"CWE-200":  {"T1083"},
	"CWE-502":  {"T1190"},
	"CWE-1321": {"T1059.007"},
}

// TechniquesForCWE returns the ATT&CK technique ids linked to a CWE id
func TechniquesForCWE(cweID string) []string {
	return cweTechniques[cweID]
}

// categoryCWEFamilies maps a STRIDE category to the CWE family it relates to,
// used to associate vulnerabilities with threats when no exact component
// match exists
var categoryCWEFamilies = map[models.StrideCategory][]string{
	models.StrideTampering:             {"CWE-89", "CWE-79", "CWE-94"},
	models.StrideSpoofing:              {"CWE-287", "CWE-306"},
	models.StrideInformationDisclosure: {"CWE-200", "CWE-312", "CWE-319"},
}

// CWEFamilyFor returns the CWE ids associated with a STRIDE category
func CWEFamilyFor(category models.StrideCategory) []string {
	return categoryCWEFamilies[category]
}

// CWEInFamily reports whether the CWE id belongs to the category's family
func CWEInFamily(category models.StrideCategory, cweID string) bool {
	for _, id := range categoryCWEFamilies[category] {
		if id == cweID {
			return true
		}
	}
	return false
}
