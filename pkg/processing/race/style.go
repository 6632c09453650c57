package race

import (
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/processing/driver"
	"github.com/strathub/strathub-service/pkg/utils/stats"
)

const (
	TagTyreSaving       = "Tyre Saving Track"
	TagHighDegradation  = "High Degradation Track"
	TagOvertaking       = "Overtaking Friendly"
	TagPositionCritical = "Track Position Critical"
)

// StyleProfile tags the character of the race based on the finishers.
// The tags are evaluated independently in a fixed order.
func StyleProfile(records []model.DriverRaceRecord) []string {
	ret := make([]string, 0, 4)
	finishers := driver.Finishers(records)
	if len(finishers) == 0 {
		return ret
	}
	longest := stats.Mean(longestStints(finishers))
	gained := stats.Mean(positionsGained(finishers))

	if longest >= 28 {
		ret = append(ret, TagTyreSaving)
	}
	if longest <= 20 {
		ret = append(ret, TagHighDegradation)
	}
	if gained > 1.5 {
		ret = append(ret, TagOvertaking)
	}
	if gained < 0.5 {
		ret = append(ret, TagPositionCritical)
	}
	return ret
}
