package model

import "fmt"

// RaceID identifies a race within a season
type RaceID struct {
	Season int `json:"season"`
	Round  int `json:"round"`
}

func (r RaceID) String() string {
	return fmt.Sprintf("%d/%02d", r.Season, r.Round)
}

// LapFact is one lap of one driver. Times are in seconds.
// Nil values are missing or unreadable in the telemetry export.
type LapFact struct {
	LapNumber   int      `json:"lap_number"`
	Compound    *string  `json:"compound"`
	LapTime     *float64 `json:"lap_time"`
	Sector1Time *float64 `json:"sector1_time"`
	Sector2Time *float64 `json:"sector2_time"`
	Sector3Time *float64 `json:"sector3_time"`
	Position    *int     `json:"position"`
	PitInLap    bool     `json:"is_pit_in_lap"`
	PitOutLap   bool     `json:"is_pit_out_lap"`
}

// DriverResult holds the classification of a driver.
// Finish is 0 if the driver did not finish.
type DriverResult struct {
	DriverCode string `json:"driver_code"`
	Team       string `json:"team"`
	Grid       int    `json:"grid"`
	Finish     int    `json:"finish"`
}

// RaceInput is everything needed to analyze one race
type RaceInput struct {
	RaceID
	EventName string         `json:"event_name"`
	Location  string         `json:"location"`
	Results   []DriverResult `json:"results"`
	// laps per driver code, ordered by lap number
	Laps map[string][]LapFact `json:"laps"`
}
