package dread

// Static reference data for interactive assessment, returned verbatim to
// callers. Nothing here influences scoring.

// WorksheetGuideline describes one scoring band for a factor
type WorksheetGuideline struct {
	Threshold   float64 `json:"threshold"`
	Description string  `json:"description"`
}

// WorksheetFactor is one factor's section of the assessment worksheet, with
// guidelines listed in descending threshold order
type WorksheetFactor struct {
	Name       string               `json:"name"`
	Question   string               `json:"question"`
	Guidelines []WorksheetGuideline `json:"guidelines"`
}

// Worksheet is the blank DREAD assessment worksheet
type Worksheet struct {
	Title   string            `json:"title"`
	Factors []WorksheetFactor `json:"factors"`
}

// CalibrationExample is a fully worked scoring example used to anchor
// assessor judgment
type CalibrationExample struct {
	Scenario        string  `json:"scenario"`
	Damage          float64 `json:"damage"`
	Reproducibility float64 `json:"reproducibility"`
	Exploitability  float64 `json:"exploitability"`
	AffectedUsers   float64 `json:"affected_users"`
	Discoverability float64 `json:"discoverability"`
	Rationale       string  `json:"rationale"`
}

// AssessmentWorksheet returns the scoring worksheet with per-factor
// guidelines
func AssessmentWorksheet() *Worksheet {
	return &Worksheet{
		Title: "DREAD Assessment Worksheet",
		Factors: []WorksheetFactor{
			{
				Name:     "damage",
				Question: "How bad would an attack be?",
				Guidelines: []WorksheetGuideline{
					{Threshold: 9, Description: "Full system or data compromise; irreversible loss"},
					{Threshold: 7, Description: "Sensitive data disclosed or modified at scale"},
					{Threshold: 5, Description: "Individual records disclosed or corrupted"},
					{Threshold: 3, Description: "Nuisance-level damage, easily recovered"},
					{Threshold: 0, Description: "No meaningful damage"},
				},
			},
			{
				Name:     "reproducibility",
				Question: "How easy is it to reproduce the attack?",
				Guidelines: []WorksheetGuideline{
					{Threshold: 9, Description: "Works every time, no preconditions"},
					{Threshold: 7, Description: "Works reliably under common conditions"},
					{Threshold: 5, Description: "Needs a timing window or specific configuration"},
					{Threshold: 3, Description: "Rarely reproducible, race or environment dependent"},
					{Threshold: 0, Description: "Effectively unreproducible"},
				},
			},
			{
				Name:     "exploitability",
				Question: "How much work is it to launch the attack?",
				Guidelines: []WorksheetGuideline{
					{Threshold: 9, Description: "Point-and-click with public tooling"},
					{Threshold: 7, Description: "Scriptable by a moderately skilled attacker"},
					{Threshold: 5, Description: "Requires custom tooling or protocol knowledge"},
					{Threshold: 3, Description: "Requires deep expertise and significant effort"},
					{Threshold: 0, Description: "Practically unexploitable"},
				},
			},
			{
				Name:     "affected_users",
				Question: "How many users would be impacted?",
				Guidelines: []WorksheetGuideline{
					{Threshold: 9, Description: "All users"},
					{Threshold: 7, Description: "Most users or all of a major tenant"},
					{Threshold: 5, Description: "A significant subset of users"},
					{Threshold: 3, Description: "A handful of users"},
					{Threshold: 0, Description: "Only the attacker"},
				},
			},
			{
				Name:     "discoverability",
				Question: "How easy is it to find the vulnerability?",
				Guidelines: []WorksheetGuideline{
					{Threshold: 9, Description: "Visible in public traffic or documentation"},
					{Threshold: 7, Description: "Found by routine automated scanning"},
					{Threshold: 5, Description: "Found through focused manual probing"},
					{Threshold: 3, Description: "Requires source access or insider knowledge"},
					{Threshold: 0, Description: "Effectively undiscoverable"},
				},
			},
		},
	}
}

// CalibrationExamples returns worked examples spanning the score range
func CalibrationExamples() []CalibrationExample {
	return []CalibrationExample{
		{
			Scenario:        "Unauthenticated SQL injection on a public login form",
			Damage:          9,
			Reproducibility: 9,
			Exploitability:  8,
			AffectedUsers:   9,
			Discoverability: 9,
			Rationale:       "Public entry point, trivially automated, full database compromise",
		},
		{
			Scenario:        "Stored XSS in an admin-only dashboard",
			Damage:          7,
			Reproducibility: 8,
			Exploitability:  6,
			AffectedUsers:   3,
			Discoverability: 4,
			Rationale:       "High damage per victim but the victim pool is small and access-gated",
		},
		{
			Scenario:        "Verbose error pages leaking framework versions",
			Damage:          2,
			Reproducibility: 9,
			Exploitability:  9,
			AffectedUsers:   1,
			Discoverability: 9,
			Rationale:       "Trivial to trigger and find, but direct damage is reconnaissance value only",
		},
		{
			Scenario:        "Race condition corrupting a single user's session state",
			Damage:          4,
			Reproducibility: 2,
			Exploitability:  3,
			AffectedUsers:   2,
			Discoverability: 2,
			Rationale:       "Hard to win the race and the blast radius is one session",
		},
	}
}
