package basedata

import (
	"github.com/strathub/strathub-service/pkg/model"
)

type Stint struct {
	Compound string
	Laps     int
}

// Laps creates consecutive laps for the given stints.
// Lap times vary slightly around base, pit laps are flagged.
func Laps(base float64, stints ...Stint) []model.LapFact {
	ret := make([]model.LapFact, 0)
	lapNo := 0
	for si, s := range stints {
		compound := s.Compound
		for i := 0; i < s.Laps; i++ {
			lapNo++
			lapTime := base + 0.1*float64(lapNo%3)
			pos := 1
			ret = append(ret, model.LapFact{
				LapNumber: lapNo,
				Compound:  &compound,
				LapTime:   &lapTime,
				Position:  &pos,
				PitOutLap: si > 0 && i == 0,
				PitInLap:  si < len(stints)-1 && i == s.Laps-1,
			})
		}
	}
	return ret
}

// SampleRaceInput is a small race with three finishers and one retirement
func SampleRaceInput() *model.RaceInput {
	return &model.RaceInput{
		RaceID:    model.RaceID{Season: 2023, Round: 1},
		EventName: "Bahrain Grand Prix",
		Location:  "Sakhir",
		Results: []model.DriverResult{
			{DriverCode: "VER", Team: "Red Bull Racing", Grid: 1, Finish: 1},
			{DriverCode: "PER", Team: "Red Bull Racing", Grid: 2, Finish: 2},
			{DriverCode: "ALO", Team: "Aston Martin", Grid: 5, Finish: 3},
			{DriverCode: "LEC", Team: "Ferrari", Grid: 3, Finish: 0},
		},
		Laps: map[string][]model.LapFact{
			"VER": Laps(95.0, Stint{"MEDIUM", 15}, Stint{"HARD", 20}),
			"PER": Laps(95.4, Stint{"SOFT", 10}, Stint{"HARD", 15}, Stint{"MEDIUM", 10}),
			"ALO": Laps(95.8, Stint{"MEDIUM", 18}, Stint{"HARD", 17}),
			"LEC": Laps(95.6, Stint{"SOFT", 8}, Stint{"HARD", 5}),
		},
	}
}

// SampleNoFinisherInput is a race nobody finished
func SampleNoFinisherInput() *model.RaceInput {
	return &model.RaceInput{
		RaceID:    model.RaceID{Season: 2023, Round: 2},
		EventName: "Saudi Arabian Grand Prix",
		Location:  "Jeddah",
		Results: []model.DriverResult{
			{DriverCode: "SAI", Team: "Ferrari", Grid: 4, Finish: 0},
			{DriverCode: "HAM", Team: "Mercedes", Grid: 7, Finish: 0},
		},
		Laps: map[string][]model.LapFact{
			"SAI": Laps(91.0, Stint{"MEDIUM", 10}),
			"HAM": Laps(91.2, Stint{"HARD", 6}, Stint{"SOFT", 3}),
		},
	}
}

// SampleIndex matches the documents of SampleRaceInput and SampleNoFinisherInput
func SampleIndex() []model.RaceIndexEntry {
	return []model.RaceIndexEntry{
		{Season: 2023, Round: 1, EventName: "Bahrain Grand Prix", Location: "Sakhir"},
		{Season: 2023, Round: 2, EventName: "Saudi Arabian Grand Prix", Location: "Jeddah"},
	}
}

// SampleDocument is a small stored document for store and api tests
func SampleDocument(season, round int, eventName, location string) *model.RaceAnalyticsDocument {
	consistency := 91.5
	return &model.RaceAnalyticsDocument{
		Season:    season,
		Round:     round,
		EventName: eventName,
		Location:  location,
		Drivers: []model.DriverAnalytics{
			{
				DriverRaceRecord: model.DriverRaceRecord{
					DriverCode:       "VER",
					Team:             "Red Bull Racing",
					Grid:             6,
					Finish:           1,
					PositionsGained:  5,
					Stops:            1,
					TyreSequence:     []string{"MEDIUM", "HARD"},
					LongestStint:     26,
					ConsistencyIndex: &consistency,
				},
				StrategyRisk:         model.StrategyRisk{RiskScore: 38, RiskLabel: "Medium Risk"},
				StrategySimulation:   &model.StrategySimulation{
					Verdict: "Strategy aligned with race winner",
				},
				TyreDegradationIndex: 50,
				PitEfficiency:        "Efficient",
			},
			{
				DriverRaceRecord: model.DriverRaceRecord{
					DriverCode:      "SAR",
					Team:            "Williams",
					Grid:            12,
					Finish:          0,
					PositionsGained: 12,
					Stops:           0,
					TyreSequence:    []string{"SOFT"},
					LongestStint:    4,
				},
				StrategyRisk:         model.StrategyRisk{RiskScore: 44, RiskLabel: "Medium Risk"},
				StrategySimulation:   &model.StrategySimulation{
					EstimatedPositionChange: 2,
					Verdict:                 "Could gain positions with fewer stops",
				},
				TyreDegradationIndex: 80,
				PitEfficiency:        "Efficient",
			},
		},
		Derived: model.Derived{
			WinningRecipe: &model.WinningRecipe{
				TypicalStops:       1,
				CommonTyreSequence: "MEDIUM-HARD",
				AvgLongestStint:    26,
			},
			StyleProfile: []string{"Tyre Saving Track"},
			TrackSignals: &model.TrackSignals{
				DegradationLevel:   "Low",
				OvertakingPressure: "Medium",
				CornerStress:       "Moderate",
			},
		},
	}
}
