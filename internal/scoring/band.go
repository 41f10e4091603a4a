package scoring

// Band is a coarse performance classification derived from a success rate.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Band thresholds, inclusive on the lower bound.
const (
	HighBandMin   = 75
	MediumBandMin = 50
)

// PerformanceBand classifies a success rate percentage.
func PerformanceBand(successRate int) Band {
	if successRate >= HighBandMin {
		return BandHigh
	}
	if successRate >= MediumBandMin {
		return BandMedium
	}
	return BandLow
}
