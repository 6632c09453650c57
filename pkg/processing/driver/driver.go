package driver

import (
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/processing/lap"
)

// BuildRecord merges the classification of a driver with the lap summary
func BuildRecord(result model.DriverResult, laps []model.LapFact) model.DriverRaceRecord {
	s := lap.Normalize(laps)
	return model.DriverRaceRecord{
		DriverCode:       result.DriverCode,
		Team:             result.Team,
		Grid:             result.Grid,
		Finish:           result.Finish,
		PositionsGained:  result.Grid - result.Finish,
		Stops:            s.Stops,
		TyreSequence:     s.TyreSequence,
		LongestStint:     s.LongestStint,
		ConsistencyIndex: s.Consistency,
	}
}

// BuildRecords creates one record per result entry in result order.
// Drivers without laps get empty lap derived values.
func BuildRecords(input *model.RaceInput) []model.DriverRaceRecord {
	ret := make([]model.DriverRaceRecord, 0, len(input.Results))
	for _, r := range input.Results {
		ret = append(ret, BuildRecord(r, input.Laps[r.DriverCode]))
	}
	return ret
}

// Finishers returns the records of classified drivers
func Finishers(records []model.DriverRaceRecord) []model.DriverRaceRecord {
	ret := make([]model.DriverRaceRecord, 0, len(records))
	for i := range records {
		if records[i].IsFinisher() {
			ret = append(ret, records[i])
		}
	}
	return ret
}
