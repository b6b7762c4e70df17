package scoring

import "testing"

func TestBandAgreesWithScore(t *testing.T) {
	// Sweep [0,200] at 1-unit steps so the 60/80/100/120 boundaries cannot
	// drift between the two classifiers.
	for pct := 0.0; pct <= 200; pct++ {
		band := Band(pct)
		if band.Score != Score(pct) {
			t.Fatalf("percentage %v: band score %d disagrees with Score %d", pct, band.Score, Score(pct))
		}
	}
}

func TestBandBoundsAreContiguous(t *testing.T) {
	for i := 0; i < len(Bands)-1; i++ {
		upper := Bands[i]
		lower := Bands[i+1]
		if lower.MaxPercentage != upper.MinPercentage {
			t.Fatalf("gap between band %d and band %d: %v vs %v", upper.Score, lower.Score, lower.MaxPercentage, upper.MinPercentage)
		}
	}
	if Bands[len(Bands)-1].MinPercentage != 0 {
		t.Fatalf("bottom band must start at 0")
	}
}

func TestBandLabels(t *testing.T) {
	if got := Band(135).Label; got != "Exceptional" {
		t.Fatalf("expected Exceptional, got %s", got)
	}
	if got := Band(88).Label; got != "Meets" {
		t.Fatalf("expected Meets, got %s", got)
	}
	if got := Band(10).Label; got != "Poor" {
		t.Fatalf("expected Poor, got %s", got)
	}
}
