package lap

import (
	"strings"

	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/utils/stats"
)

// Summary is the reduced form of a driver's laps
type Summary struct {
	TyreSequence []string
	Stops        int
	LongestStint int
	Consistency  *float64
}

// Normalize reduces the laps of one driver. Laps must be in lap order.
func Normalize(laps []model.LapFact) Summary {
	seq := TyreSequence(laps)
	return Summary{
		TyreSequence: seq,
		Stops:        Stops(seq),
		LongestStint: LongestStint(laps),
		Consistency:  Consistency(laps),
	}
}

// TyreSequence returns the compounds in usage order with consecutive
// duplicates collapsed. Laps without a readable compound are skipped.
func TyreSequence(laps []model.LapFact) []string {
	ret := make([]string, 0, 4)
	for i := range laps {
		c, ok := compound(&laps[i])
		if !ok {
			continue
		}
		if len(ret) == 0 || ret[len(ret)-1] != c {
			ret = append(ret, c)
		}
	}
	return ret
}

// Stops is the number of compound changes in the sequence
func Stops(seq []string) int {
	return max(len(seq)-1, 0)
}

// LongestStint returns the largest number of laps driven on one compound.
// Laps are grouped by compound over the whole race, so a compound used in
// two separate stints counts as one run.
func LongestStint(laps []model.LapFact) int {
	counts := make(map[string]int)
	longest := 0
	for i := range laps {
		c, ok := compound(&laps[i])
		if !ok {
			continue
		}
		counts[c]++
		longest = max(longest, counts[c])
	}
	return longest
}

// Consistency is the population standard deviation of the valid lap times
// in seconds, rounded to 3 decimals. Nil if there is no valid lap time.
func Consistency(laps []model.LapFact) *float64 {
	times := make([]float64, 0, len(laps))
	for i := range laps {
		if laps[i].LapTime != nil {
			times = append(times, *laps[i].LapTime)
		}
	}
	std := stats.PopulationStdDev(times)
	if std == nil {
		return nil
	}
	ret := stats.Round(*std, 3)
	return &ret
}

func compound(l *model.LapFact) (string, bool) {
	if l.Compound == nil {
		return "", false
	}
	c := strings.TrimSpace(*l.Compound)
	return c, c != ""
}
