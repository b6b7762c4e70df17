package reports

import (
	"math"
	"sort"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Apply keeps the rows matching the filter. Cycle filtering happens at
// load time; the remaining fields filter in memory.
func Apply(rows []Row, filter Filter) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if filter.OrgUnitID != "" && row.OrgUnitID != filter.OrgUnitID {
			continue
		}
		if filter.UserID != "" && row.UserID != filter.UserID {
			continue
		}
		if filter.Role != "" && row.Role != filter.Role {
			continue
		}
		if filter.ScoreMin > 0 && row.OverallScore < filter.ScoreMin {
			continue
		}
		if filter.ScoreMax > 0 && row.OverallScore > filter.ScoreMax {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Summarize folds rows into the headline block. The average score counts
// only employees with a computed score; the completion rate is reported
// actuals over defined KPIs.
func Summarize(rows []Row) Summary {
	summary := Summary{TotalEmployees: len(rows)}

	scoreSum := 0.0
	scored := 0
	reported := 0
	for _, row := range rows {
		summary.TotalKpis += row.KpiCount
		reported += row.ReportedKpis
		if row.OverallScore > 0 {
			scoreSum += row.OverallScore
			scored++
		}
	}
	if scored > 0 {
		summary.AverageScore = round2(scoreSum / float64(scored))
	}
	if summary.TotalKpis > 0 {
		summary.CompletionRate = round2(float64(reported) / float64(summary.TotalKpis) * 100)
	}
	return summary
}

// ByDepartment groups rows per org unit, sorted by name for stable output.
func ByDepartment(rows []Row) []DepartmentBreakdown {
	byUnit := map[string]*DepartmentBreakdown{}
	scoreSums := map[string]float64{}
	scoredCounts := map[string]int{}
	reported := map[string]int{}

	for _, row := range rows {
		unit := byUnit[row.OrgUnitID]
		if unit == nil {
			unit = &DepartmentBreakdown{OrgUnitID: row.OrgUnitID, OrgUnitName: row.OrgUnitName}
			byUnit[row.OrgUnitID] = unit
		}
		unit.Headcount++
		unit.KpiCount += row.KpiCount
		reported[row.OrgUnitID] += row.ReportedKpis
		if row.OverallScore > 0 {
			scoreSums[row.OrgUnitID] += row.OverallScore
			scoredCounts[row.OrgUnitID]++
		}
	}

	out := make([]DepartmentBreakdown, 0, len(byUnit))
	for id, unit := range byUnit {
		if scoredCounts[id] > 0 {
			unit.AverageScore = round2(scoreSums[id] / float64(scoredCounts[id]))
		}
		if unit.KpiCount > 0 {
			unit.CompletionRate = round2(float64(reported[id]) / float64(unit.KpiCount) * 100)
		}
		out = append(out, *unit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrgUnitName < out[j].OrgUnitName })
	return out
}
