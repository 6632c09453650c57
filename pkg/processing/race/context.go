package race

import (
	"github.com/samber/lo"

	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/utils/stats"
)

// NewContext computes the race wide averages over all drivers
func NewContext(records []model.DriverRaceRecord) model.RaceContext {
	return model.RaceContext{
		AvgStops:        stats.SafeMean(stops(records)),
		AvgLongestStint: stats.SafeMean(longestStints(records)),
	}
}

func stops(records []model.DriverRaceRecord) []int {
	return lo.Map(records, func(r model.DriverRaceRecord, _ int) int { return r.Stops })
}

func longestStints(records []model.DriverRaceRecord) []int {
	return lo.Map(records, func(r model.DriverRaceRecord, _ int) int { return r.LongestStint })
}

func positionsGained(records []model.DriverRaceRecord) []int {
	return lo.Map(records, func(r model.DriverRaceRecord, _ int) int {
		return r.PositionsGained
	})
}
