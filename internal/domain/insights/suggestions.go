// Package insights holds the advisory stubs: KPI suggestions per
// department and a threshold-based anomaly scan over reported actuals.
// Both produce fixed, deterministic output; neither feeds back into
// scoring or approval.
package insights

// SmartAnalysis accompanies a suggestion with a canned SMART assessment.
type SmartAnalysis struct {
	Specific    bool     `json:"specific"`
	Measurable  bool     `json:"measurable"`
	Achievable  bool     `json:"achievable"`
	Relevant    bool     `json:"relevant"`
	TimeBound   bool     `json:"timeBound"`
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// Suggestion is one proposed KPI for a department.
type Suggestion struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Target      float64       `json:"target"`
	Unit        string        `json:"unit"`
	Formula     string        `json:"formula"`
	Weight      float64       `json:"weight"`
	Rationale   string        `json:"rationale"`
	Smart       SmartAnalysis `json:"smartAnalysis"`
}

var suggestionCatalogue = map[string][]Suggestion{
	"Sales": {
		{
			Name:        "Monthly Revenue Growth",
			Description: "Percentage increase in monthly revenue compared to previous month",
			Target:      15,
			Unit:        "%",
			Formula:     "((Current Month Revenue - Previous Month Revenue) / Previous Month Revenue) * 100",
			Weight:      25,
			Rationale:   "Revenue growth is a key indicator of sales performance and business expansion",
			Smart: SmartAnalysis{
				Specific: true, Measurable: true, Achievable: true, Relevant: true, TimeBound: true,
				Score:       95,
				Suggestions: []string{"Consider seasonal variations", "Set realistic targets based on market conditions"},
			},
		},
		{
			Name:        "Customer Acquisition Rate",
			Description: "Number of new customers acquired per month",
			Target:      50,
			Unit:        "customers",
			Formula:     "COUNT(new_customers_this_month)",
			Weight:      20,
			Rationale:   "New customer acquisition drives long-term business growth",
			Smart: SmartAnalysis{
				Specific: true, Measurable: true, Achievable: true, Relevant: true, TimeBound: true,
				Score:       90,
				Suggestions: []string{"Define clear criteria for a new customer", "Consider lead quality metrics"},
			},
		},
	},
	"Marketing": {
		{
			Name:        "Lead Conversion Rate",
			Description: "Percentage of leads that convert to customers",
			Target:      12,
			Unit:        "%",
			Formula:     "(Converted Leads / Total Leads) * 100",
			Weight:      30,
			Rationale:   "Measures marketing effectiveness in generating quality leads",
			Smart: SmartAnalysis{
				Specific: true, Measurable: true, Achievable: true, Relevant: true, TimeBound: true,
				Score:       92,
				Suggestions: []string{"Track by lead source", "Consider lead scoring implementation"},
			},
		},
	},
	"HR": {
		{
			Name:        "Employee Retention Rate",
			Description: "Percentage of employees retained over a 12-month period",
			Target:      85,
			Unit:        "%",
			Formula:     "((Employees at End - New Hires) / Employees at Start) * 100",
			Weight:      25,
			Rationale:   "High retention reduces recruitment costs and maintains institutional knowledge",
			Smart: SmartAnalysis{
				Specific: true, Measurable: true, Achievable: true, Relevant: true, TimeBound: true,
				Score:       88,
				Suggestions: []string{"Exclude involuntary terminations", "Consider department-specific targets"},
			},
		},
	},
}

// Suggestions returns the canned catalogue entries for a department, or an
// empty slice for departments without entries.
func Suggestions(department string) []Suggestion {
	out := suggestionCatalogue[department]
	return append([]Suggestion(nil), out...)
}
