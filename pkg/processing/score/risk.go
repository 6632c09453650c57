package score

import (
	"math"

	"github.com/strathub/strathub-service/pkg/model"
)

const (
	RiskLow    = "Low Risk"
	RiskMedium = "Medium Risk"
	RiskHigh   = "High Risk"
)

// StrategyRisk rates how far a driver's strategy deviates from the race average.
// More stops and shorter runs than average increase the score.
func StrategyRisk(r *model.DriverRaceRecord, ctx model.RaceContext) model.StrategyRisk {
	avgStops := valueOrZero(ctx.AvgStops)
	avgLongest := valueOrZero(ctx.AvgLongestStint)

	raw := 50 +
		(float64(r.Stops)-avgStops)*12 -
		(float64(r.LongestStint)-avgLongest)*1.5
	riskScore := int(math.Max(0, math.Min(100, math.Trunc(raw))))

	return model.StrategyRisk{RiskScore: riskScore, RiskLabel: riskLabel(riskScore)}
}

func riskLabel(riskScore int) string {
	switch {
	case riskScore < 35:
		return RiskLow
	case riskScore < 70:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}
