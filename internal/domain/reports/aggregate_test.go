package reports

import "testing"

func reportRows() []Row {
	return []Row{
		{UserID: "u1", Name: "Amal", Role: "STAFF", OrgUnitID: "o1", OrgUnitName: "Sales", KpiCount: 4, ReportedKpis: 4, OverallScore: 4.2, OverallPercentage: 108},
		{UserID: "u2", Name: "Bilal", Role: "STAFF", OrgUnitID: "o1", OrgUnitName: "Sales", KpiCount: 3, ReportedKpis: 2, OverallScore: 3.1, OverallPercentage: 88},
		{UserID: "u3", Name: "Chamari", Role: "LINE_MANAGER", OrgUnitID: "o2", OrgUnitName: "HR", KpiCount: 3, ReportedKpis: 0},
		{UserID: "u4", Name: "Dinesh", Role: "STAFF", OrgUnitID: "o2", OrgUnitName: "HR", KpiCount: 0, ReportedKpis: 0},
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(reportRows())

	if summary.TotalEmployees != 4 {
		t.Fatalf("total employees = %d, want 4", summary.TotalEmployees)
	}
	if summary.TotalKpis != 10 {
		t.Fatalf("total kpis = %d, want 10", summary.TotalKpis)
	}
	// Only u1 and u2 carry scores: (4.2 + 3.1) / 2 = 3.65
	if summary.AverageScore != 3.65 {
		t.Fatalf("average score = %v, want 3.65", summary.AverageScore)
	}
	// 6 of 10 KPIs reported.
	if summary.CompletionRate != 60 {
		t.Fatalf("completion rate = %v, want 60", summary.CompletionRate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary.AverageScore != 0 || summary.CompletionRate != 0 {
		t.Fatalf("empty summary = %+v", summary)
	}
}

func TestByDepartment(t *testing.T) {
	breakdown := ByDepartment(reportRows())

	if len(breakdown) != 2 {
		t.Fatalf("departments = %d, want 2", len(breakdown))
	}
	// Sorted by name: HR first, then Sales.
	hr, sales := breakdown[0], breakdown[1]
	if hr.OrgUnitName != "HR" || sales.OrgUnitName != "Sales" {
		t.Fatalf("order = %s, %s", hr.OrgUnitName, sales.OrgUnitName)
	}
	if hr.Headcount != 2 || hr.KpiCount != 3 || hr.AverageScore != 0 || hr.CompletionRate != 0 {
		t.Fatalf("HR breakdown = %+v", hr)
	}
	if sales.Headcount != 2 || sales.KpiCount != 7 {
		t.Fatalf("Sales breakdown = %+v", sales)
	}
	if sales.AverageScore != 3.65 {
		t.Fatalf("Sales average = %v, want 3.65", sales.AverageScore)
	}
	// 6 of 7 reported: 85.71
	if sales.CompletionRate != 85.71 {
		t.Fatalf("Sales completion = %v, want 85.71", sales.CompletionRate)
	}
}

func TestApplyFilters(t *testing.T) {
	rows := reportRows()

	if got := Apply(rows, Filter{OrgUnitID: "o1"}); len(got) != 2 {
		t.Fatalf("org filter = %d rows, want 2", len(got))
	}
	if got := Apply(rows, Filter{UserID: "u3"}); len(got) != 1 || got[0].Name != "Chamari" {
		t.Fatalf("user filter = %+v", got)
	}
	if got := Apply(rows, Filter{Role: "STAFF"}); len(got) != 3 {
		t.Fatalf("role filter = %d rows, want 3", len(got))
	}
	if got := Apply(rows, Filter{OrgUnitID: "o2", Role: "STAFF"}); len(got) != 1 || got[0].Name != "Dinesh" {
		t.Fatalf("combined filter = %+v", got)
	}
	if got := Apply(rows, Filter{}); len(got) != len(rows) {
		t.Fatalf("empty filter = %d rows, want %d", len(got), len(rows))
	}
	if got := Apply(rows, Filter{ScoreMin: 4}); len(got) != 1 || got[0].Name != "Amal" {
		t.Fatalf("score min filter = %+v", got)
	}
	if got := Apply(rows, Filter{ScoreMax: 3.5}); len(got) != 3 {
		t.Fatalf("score max filter = %d rows, want 3", len(got))
	}
	if got := Apply(rows, Filter{ScoreMin: 3, ScoreMax: 3.5}); len(got) != 1 || got[0].Name != "Bilal" {
		t.Fatalf("score range filter = %+v", got)
	}
}
