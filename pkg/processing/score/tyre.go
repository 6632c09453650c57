package score

import "github.com/strathub/strathub-service/pkg/model"

// TyreDegradationIndex is a proxy for tyre wear, higher means more degradation
func TyreDegradationIndex(r *model.DriverRaceRecord) int {
	switch {
	case r.LongestStint >= 30:
		return 25
	case r.LongestStint <= 18:
		return 80
	default:
		return 50
	}
}

const (
	PitEfficient   = "Efficient"
	PitInefficient = "Inefficient"
	PitNeutral     = "Neutral"
)

func PitEfficiency(r *model.DriverRaceRecord) string {
	switch {
	case r.Stops <= 2 && r.PositionsGained > 0:
		return PitEfficient
	case r.Stops >= 3 && r.PositionsGained <= 0:
		return PitInefficient
	default:
		return PitNeutral
	}
}
