package insight

import (
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/utils/stats"
)

const (
	TagAggressive = "Aggressive"
	TagTyreSaver  = "Tyre Saver"
	TagDefensive  = "Defensive"
	TagConsistent = "Consistent"
	TagHighRisk   = "High Risk"
	TagBalanced   = "Balanced"
)

// TeamPerformance aggregates the drivers of each team in order of first
// appearance. Non finishers count with finish 0.
func TeamPerformance(doc *model.RaceAnalyticsDocument) []model.TeamPerformance {
	type acc struct {
		count  int
		finish int
		gained int
	}
	order := make([]string, 0)
	byTeam := make(map[string]*acc)
	for i := range doc.Drivers {
		d := &doc.Drivers[i]
		a, ok := byTeam[d.Team]
		if !ok {
			a = &acc{}
			byTeam[d.Team] = a
			order = append(order, d.Team)
		}
		a.count++
		a.finish += d.Finish
		a.gained += d.PositionsGained
	}
	ret := make([]model.TeamPerformance, 0, len(order))
	for _, team := range order {
		a := byTeam[team]
		ret = append(ret, model.TeamPerformance{
			Team:               team,
			Drivers:            a.count,
			AvgFinish:          stats.Round(float64(a.finish)/float64(a.count), 1),
			NetPositionsGained: a.gained,
		})
	}
	return ret
}

// StyleTags describes the driving style of a driver.
// If no tag applies the driver is "Balanced".
func StyleTags(d *model.DriverAnalytics) []string {
	tags := make([]string, 0, 5)
	if d.PositionsGained >= 5 {
		tags = append(tags, TagAggressive)
	}
	if d.LongestStint >= 25 {
		tags = append(tags, TagTyreSaver)
	}
	if d.PositionsGained <= 0 && d.Stops <= 1 {
		tags = append(tags, TagDefensive)
	}
	if d.ConsistencyIndex != nil && *d.ConsistencyIndex >= 80 {
		tags = append(tags, TagConsistent)
	}
	if d.StrategyRisk.RiskScore >= 70 {
		tags = append(tags, TagHighRisk)
	}
	if len(tags) == 0 {
		return []string{TagBalanced}
	}
	return tags
}

// Driver returns the entry of the given driver code with its style tags
func Driver(doc *model.RaceAnalyticsDocument, code string) (*model.DriverInsight, bool) {
	for i := range doc.Drivers {
		if doc.Drivers[i].DriverCode == code {
			return &model.DriverInsight{
				DriverAnalytics: doc.Drivers[i],
				StyleTags:       StyleTags(&doc.Drivers[i]),
			}, true
		}
	}
	return nil, false
}
