package kpi

// SmartResult grades a draft definition against the SMART criteria. Each of
// the five criteria contributes 20 points.
type SmartResult struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// CheckSmart scores a definition without rejecting it; the result is advice
// shown to the author, not a validation gate.
func CheckSmart(def Definition) SmartResult {
	result := SmartResult{}

	// Specific
	if len(def.Title) > 10 {
		result.Score += 20
	} else {
		result.Issues = append(result.Issues, "title should be more specific and descriptive")
		result.Suggestions = append(result.Suggestions, "include what exactly will be measured")
	}

	// Measurable
	if def.Unit != "" && def.Target != 0 {
		result.Score += 20
	} else {
		result.Issues = append(result.Issues, "missing measurable unit or target")
		result.Suggestions = append(result.Suggestions, "define a clear unit of measurement and target value")
	}

	// Achievable
	if def.Target > 0 {
		result.Score += 20
	} else {
		result.Issues = append(result.Issues, "target should be realistic and achievable")
		result.Suggestions = append(result.Suggestions, "set a positive, realistic target based on historical data")
	}

	// Relevant
	if def.DataSource != "" {
		result.Score += 20
	} else {
		result.Issues = append(result.Issues, "data source not specified")
		result.Suggestions = append(result.Suggestions, "specify where the data will come from")
	}

	// Time-bound: the owning cycle supplies the time boundary.
	result.Score += 20

	return result
}
