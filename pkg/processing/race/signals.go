package race

import (
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/utils/stats"
)

const (
	LevelHigh     = "High"
	LevelMedium   = "Medium"
	LevelLow      = "Low"
	LevelModerate = "Moderate"
)

// TrackSignals derives qualitative track labels from all drivers.
// Returns nil for an empty driver set.
func TrackSignals(records []model.DriverRaceRecord) *model.TrackSignals {
	if len(records) == 0 {
		return nil
	}
	longest := stats.Mean(longestStints(records))
	gained := stats.Mean(positionsGained(records))
	stopsMean := stats.Mean(stops(records))

	ret := &model.TrackSignals{
		DegradationLevel:   LevelLow,
		OvertakingPressure: LevelLow,
		CornerStress:       LevelModerate,
	}
	switch {
	case longest < 20:
		ret.DegradationLevel = LevelHigh
	case longest < 26:
		ret.DegradationLevel = LevelMedium
	}
	if gained > 1.2 {
		ret.OvertakingPressure = LevelHigh
	}
	if stopsMean >= 2.5 && longest < 22 {
		ret.CornerStress = LevelHigh
	}
	return ret
}
