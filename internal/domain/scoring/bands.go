package scoring

// ScoreBand is the display record for one slice of the 1-5 scale.
// MaxPercentage is exclusive; the top band has no upper bound.
type ScoreBand struct {
	Score         int     `json:"score"`
	MinPercentage float64 `json:"minPercentage"`
	MaxPercentage float64 `json:"maxPercentage,omitempty"`
	Label         string  `json:"label"`
	Description   string  `json:"description"`
}

// Bands is ordered top score first, same as it renders.
var Bands = []ScoreBand{
	{Score: 5, MinPercentage: 120, Label: "Exceptional", Description: "Significantly exceeds expectations (>=120%)"},
	{Score: 4, MinPercentage: 100, MaxPercentage: 120, Label: "Exceeds", Description: "Exceeds expectations (100-119%)"},
	{Score: 3, MinPercentage: 80, MaxPercentage: 100, Label: "Meets", Description: "Meets expectations (80-99%)"},
	{Score: 2, MinPercentage: 60, MaxPercentage: 80, Label: "Below", Description: "Below expectations (60-79%)"},
	{Score: 1, MinPercentage: 0, MaxPercentage: 60, Label: "Poor", Description: "Significantly below expectations (<60%)"},
}

// Band classifies a percentage into its score band. It agrees with Score on
// every boundary; anything below the lowest threshold falls into the bottom
// band.
func Band(percentage float64) ScoreBand {
	for _, band := range Bands {
		if percentage >= band.MinPercentage {
			return band
		}
	}
	return Bands[len(Bands)-1]
}
