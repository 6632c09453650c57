package score

import (
	"errors"

	"github.com/strathub/strathub-service/pkg/model"
)

var ErrNoWinningRecipe = errors.New("no winning recipe available")

const (
	VerdictFewerStops = "Could gain positions with fewer stops"
	VerdictMoreStops  = "Likely slower without extra tyre advantage"
	VerdictAligned    = "Strategy aligned with race winner"
)

// StrategySwap estimates the effect of switching to the winning stop count.
// The recipe must exist, otherwise ErrNoWinningRecipe is returned.
//
//nolint:whitespace // can't make both editor and linter happy
func StrategySwap(
	r *model.DriverRaceRecord,
	recipe *model.WinningRecipe,
) (*model.StrategySimulation, error) {
	if recipe == nil {
		return nil, ErrNoWinningRecipe
	}
	switch {
	case r.Stops > recipe.TypicalStops:
		return &model.StrategySimulation{EstimatedPositionChange: 2, Verdict: VerdictFewerStops}, nil
	case r.Stops < recipe.TypicalStops:
		return &model.StrategySimulation{EstimatedPositionChange: -1, Verdict: VerdictMoreStops}, nil
	default:
		return &model.StrategySimulation{EstimatedPositionChange: 0, Verdict: VerdictAligned}, nil
	}
}
