package kpi

import "kpm/internal/domain/scoring"

// Template is a department starter pack of KPI fields with default weights.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Department  string          `json:"department"`
	Description string          `json:"description"`
	Fields      []TemplateField `json:"kpiFields"`
}

type TemplateField struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Type              scoring.KpiType `json:"type"`
	Unit              string          `json:"unit"`
	Description       string          `json:"description"`
	DataSource        string          `json:"dataSource,omitempty"`
	Formula           string          `json:"formula,omitempty"`
	RecommendedTarget float64         `json:"recommendedTarget"`
	Weight            float64         `json:"weight"`
	Required          bool            `json:"isRequired"`
	EvidenceRequired  bool            `json:"evidenceRequired"`
}

// Templates is the built-in catalogue. Weights within each template sum to
// 100 so an accepted template submits cleanly.
var Templates = []Template{
	{
		ID:          "sales",
		Name:        "Sales Performance Template",
		Department:  "Sales",
		Description: "Standard KPI template for sales team performance evaluation",
		Fields: []TemplateField{
			{ID: "s1", Title: "Monthly Revenue Growth", Type: scoring.TypeQuantHigherBetter, Unit: "%", Description: "Percentage increase in monthly revenue compared to previous month", DataSource: "CRM System", Formula: "((Current Month Revenue - Previous Month Revenue) / Previous Month Revenue) * 100", RecommendedTarget: 15, Weight: 30, Required: true, EvidenceRequired: true},
			{ID: "s2", Title: "Customer Acquisition Rate", Type: scoring.TypeQuantHigherBetter, Unit: "customers", Description: "Number of new customers acquired per month", DataSource: "CRM System", RecommendedTarget: 50, Weight: 25, Required: true, EvidenceRequired: true},
			{ID: "s3", Title: "Customer Retention Rate", Type: scoring.TypeQuantHigherBetter, Unit: "%", Description: "Percentage of customers retained over the evaluation period", DataSource: "CRM System", RecommendedTarget: 90, Weight: 25, Required: true},
			{ID: "s4", Title: "Sales Target Achievement", Type: scoring.TypeQuantHigherBetter, Unit: "%", Description: "Percentage of individual sales target achieved", DataSource: "Sales System", RecommendedTarget: 100, Weight: 20, Required: true, EvidenceRequired: true},
		},
	},
	{
		ID:          "hr",
		Name:        "HR Performance Template",
		Department:  "HR",
		Description: "Human Resources team KPI template focusing on talent management",
		Fields: []TemplateField{
			{ID: "h1", Title: "Employee Retention Rate", Type: scoring.TypeQuantHigherBetter, Unit: "%", Description: "Percentage of employees retained over a 12-month period", DataSource: "HRIS", Formula: "((Employees at End - New Hires) / Employees at Start) * 100", RecommendedTarget: 85, Weight: 35, Required: true, EvidenceRequired: true},
			{ID: "h2", Title: "Time to Fill Positions", Type: scoring.TypeQuantLowerBetter, Unit: "days", Description: "Average number of days to fill open positions", DataSource: "HRIS", RecommendedTarget: 30, Weight: 25, Required: true, EvidenceRequired: true},
			{ID: "h3", Title: "Employee Satisfaction Score", Type: scoring.TypeQuantHigherBetter, Unit: "score", Description: "Average employee satisfaction score from surveys", DataSource: "Survey System", RecommendedTarget: 4, Weight: 25, Required: true, EvidenceRequired: true},
			{ID: "h4", Title: "Training Completion Rate", Type: scoring.TypeQuantHigherBetter, Unit: "%", Description: "Percentage of required training completed by employees", DataSource: "LMS", RecommendedTarget: 95, Weight: 15},
		},
	},
	{
		ID:          "quality",
		Name:        "Quality Assurance Template",
		Department:  "Quality",
		Description: "Quality control and assurance KPI template",
		Fields: []TemplateField{
			{ID: "q1", Title: "Reduce Internal NCR Cases", Type: scoring.TypeQuantLowerBetter, Unit: "cases", Description: "Number of internal non-conformance reports", DataSource: "eQMS System", RecommendedTarget: 5, Weight: 40, Required: true, EvidenceRequired: true},
			{ID: "q2", Title: "Customer Complaint Resolution Time", Type: scoring.TypeQuantLowerBetter, Unit: "days", Description: "Average time to resolve customer complaints", DataSource: "CRM System", RecommendedTarget: 3, Weight: 30, Required: true, EvidenceRequired: true},
			{ID: "q3", Title: "Quality Audit Score", Type: scoring.TypeQuantHigherBetter, Unit: "score", Description: "Average score from quality audits", DataSource: "Audit System", RecommendedTarget: 95, Weight: 30, Required: true, EvidenceRequired: true},
		},
	},
	{
		ID:          "marketing",
		Name:        "Marketing Performance Template",
		Department:  "Marketing",
		Description: "Marketing team performance and campaign effectiveness KPIs",
		Fields: []TemplateField{
			{ID: "m1", Title: "Lead Conversion Rate", Type: scoring.TypeQuantHigherBetter, Unit: "%", Description: "Percentage of leads that convert to customers", DataSource: "Marketing Automation", Formula: "(Converted Leads / Total Leads) * 100", RecommendedTarget: 12, Weight: 35, Required: true, EvidenceRequired: true},
			{ID: "m2", Title: "Cost Per Acquisition", Type: scoring.TypeQuantLowerBetter, Unit: "USD", Description: "Average cost to acquire a new customer", DataSource: "Marketing Analytics", RecommendedTarget: 100, Weight: 25, Required: true, EvidenceRequired: true},
			{ID: "m3", Title: "Brand Awareness Score", Type: scoring.TypeQuantHigherBetter, Unit: "%", Description: "Brand recognition percentage in target market", DataSource: "Market Research", RecommendedTarget: 75, Weight: 25, EvidenceRequired: true},
			{ID: "m4", Title: "Campaign ROI", Type: scoring.TypeQuantHigherBetter, Unit: "%", Description: "Return on investment for marketing campaigns", DataSource: "Analytics Platform", RecommendedTarget: 300, Weight: 15, Required: true, EvidenceRequired: true},
		},
	},
}

// TemplateByID looks up a built-in template.
func TemplateByID(id string) (Template, error) {
	for _, tpl := range Templates {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	return Template{}, ErrTemplateNotFound
}

// TemplatesForDepartment filters the catalogue; empty department returns all.
func TemplatesForDepartment(department string) []Template {
	if department == "" {
		return Templates
	}
	var out []Template
	for _, tpl := range Templates {
		if tpl.Department == department {
			out = append(out, tpl)
		}
	}
	return out
}
