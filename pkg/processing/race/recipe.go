package race

import (
	"math"
	"strings"

	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/processing/driver"
	"github.com/strathub/strathub-service/pkg/utils/stats"
)

const UnknownSequence = "Unknown"

// WinningRecipeOf derives the typical strategy of the finishers.
// The result is nil if nobody finished.
func WinningRecipeOf(records []model.DriverRaceRecord) *model.WinningRecipe {
	finishers := driver.Finishers(records)
	if len(finishers) == 0 {
		return nil
	}
	typicalStops, _ := stats.StableMode(stops(finishers))

	sequences := make([]string, 0, len(finishers))
	for i := range finishers {
		if len(finishers[i].TyreSequence) > 1 {
			sequences = append(sequences, strings.Join(finishers[i].TyreSequence, "-"))
		}
	}
	common, ok := stats.StableMode(sequences)
	if !ok {
		common = UnknownSequence
	}
	return &model.WinningRecipe{
		TypicalStops:       typicalStops,
		CommonTyreSequence: common,
		AvgLongestStint:    int(math.Floor(stats.Mean(longestStints(finishers)))),
	}
}
