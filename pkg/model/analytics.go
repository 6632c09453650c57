package model

import (
	"bytes"
	"encoding/json"
)

// DriverRaceRecord is the per driver summary of a race
type DriverRaceRecord struct {
	DriverCode       string   `json:"driver_code"`
	Team             string   `json:"team"`
	Grid             int      `json:"grid"`
	Finish           int      `json:"finish"`
	PositionsGained  int      `json:"positions_gained"`
	Stops            int      `json:"stops"`
	TyreSequence     []string `json:"tyre_sequence"`
	LongestStint     int      `json:"longest_stint"`
	ConsistencyIndex *float64 `json:"consistency_index"`
}

// IsFinisher reports whether the driver was classified
func (d *DriverRaceRecord) IsFinisher() bool {
	return d.Finish > 0
}

// RaceContext holds race wide averages over all drivers.
// A nil value means there was no usable input.
type RaceContext struct {
	AvgStops        *float64
	AvgLongestStint *float64
}

type WinningRecipe struct {
	TypicalStops       int    `json:"typical_stops"`
	CommonTyreSequence string `json:"common_tyre_sequence"`
	AvgLongestStint    int    `json:"avg_longest_stint"`
}

type StrategyRisk struct {
	RiskScore int    `json:"risk_score"`
	RiskLabel string `json:"risk_label"`
}

type StrategySimulation struct {
	EstimatedPositionChange int    `json:"estimated_position_change"`
	Verdict                 string `json:"verdict"`
}

type TrackSignals struct {
	DegradationLevel   string `json:"degradation_level"`
	OvertakingPressure string `json:"overtaking_pressure"`
	CornerStress       string `json:"corner_stress"`
}

// DriverAnalytics is a DriverRaceRecord enriched with the scores
type DriverAnalytics struct {
	DriverRaceRecord
	StrategyRisk StrategyRisk `json:"strategy_risk"`
	// nil if the race has no finishers
	StrategySimulation   *StrategySimulation `json:"strategy_simulation"`
	TyreDegradationIndex int                 `json:"tyre_degradation_index"`
	PitEfficiency        string              `json:"pit_efficiency"`
}

// Derived holds the race level results.
// A nil WinningRecipe is serialized as {}, a nil StyleProfile as [].
type Derived struct {
	WinningRecipe *WinningRecipe
	StyleProfile  []string
	TrackSignals  *TrackSignals
	// free text remarks for special case races
	Context []string
}

type derivedJSON struct {
	WinningRecipe any           `json:"winning_recipe"`
	StyleProfile  []string      `json:"style_profile"`
	TrackSignals  *TrackSignals `json:"track_signals,omitempty"`
	Context       []string      `json:"context,omitempty"`
}

func (d Derived) MarshalJSON() ([]byte, error) {
	out := derivedJSON{
		WinningRecipe: struct{}{},
		StyleProfile:  d.StyleProfile,
		TrackSignals:  d.TrackSignals,
		Context:       d.Context,
	}
	if d.WinningRecipe != nil {
		out.WinningRecipe = d.WinningRecipe
	}
	if out.StyleProfile == nil {
		out.StyleProfile = []string{}
	}
	return json.Marshal(out)
}

func (d *Derived) UnmarshalJSON(data []byte) error {
	var in struct {
		WinningRecipe json.RawMessage `json:"winning_recipe"`
		StyleProfile  []string        `json:"style_profile"`
		TrackSignals  *TrackSignals   `json:"track_signals"`
		Context       []string        `json:"context"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*d = Derived{
		StyleProfile: in.StyleProfile,
		TrackSignals: in.TrackSignals,
		Context:      in.Context,
	}
	if d.StyleProfile == nil {
		d.StyleProfile = []string{}
	}
	raw := bytes.TrimSpace(in.WinningRecipe)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	if len(probe) == 0 {
		return nil
	}
	d.WinningRecipe = &WinningRecipe{}
	return json.Unmarshal(raw, d.WinningRecipe)
}

// RaceAnalyticsDocument is the analysis result of one race
type RaceAnalyticsDocument struct {
	Season      int               `json:"season"`
	Round       int               `json:"round"`
	EventName   string            `json:"event_name"`
	Location    string            `json:"location"`
	SpecialCase bool              `json:"special_case,omitempty"`
	Note        string            `json:"note,omitempty"`
	Drivers     []DriverAnalytics `json:"drivers"`
	Derived     Derived           `json:"derived"`
}

func (d *RaceAnalyticsDocument) RaceID() RaceID {
	return RaceID{Season: d.Season, Round: d.Round}
}

func (d *RaceAnalyticsDocument) IndexEntry() RaceIndexEntry {
	return RaceIndexEntry{
		Season:    d.Season,
		Round:     d.Round,
		EventName: d.EventName,
		Location:  d.Location,
	}
}

// RaceIndexEntry is the lightweight listing record of a race
type RaceIndexEntry struct {
	Season    int    `json:"season"`
	Round     int    `json:"round"`
	EventName string `json:"event_name"`
	Location  string `json:"location"`
}

// TeamPerformance summarizes the drivers of a team in one race
type TeamPerformance struct {
	Team               string  `json:"team"`
	Drivers            int     `json:"drivers"`
	AvgFinish          float64 `json:"avg_finish"`
	NetPositionsGained int     `json:"net_positions_gained"`
}

// DriverInsight is a driver entry with its style tags
type DriverInsight struct {
	DriverAnalytics
	StyleTags []string `json:"style_tags"`
}
