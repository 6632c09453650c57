package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedMarshal(t *testing.T) {
	tests := []struct {
		name    string
		derived Derived
		want    string
	}{
		{
			name:    "empty",
			derived: Derived{},
			want:    `{"winning_recipe":{},"style_profile":[]}`,
		},
		{
			name: "filled",
			derived: Derived{
				WinningRecipe: &WinningRecipe{
					TypicalStops:       1,
					CommonTyreSequence: "MEDIUM-HARD",
					AvgLongestStint:    31,
				},
				StyleProfile: []string{"Tyre Saving Track"},
				TrackSignals: &TrackSignals{
					DegradationLevel:   "Low",
					OvertakingPressure: "Low",
					CornerStress:       "Moderate",
				},
			},
			//nolint:lll // json
			want: `{"winning_recipe":{"typical_stops":1,"common_tyre_sequence":"MEDIUM-HARD","avg_longest_stint":31},"style_profile":["Tyre Saving Track"],"track_signals":{"degradation_level":"Low","overtaking_pressure":"Low","corner_stress":"Moderate"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.derived)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestDerivedUnmarshal(t *testing.T) {
	var d Derived
	require.NoError(t, json.Unmarshal(
		[]byte(`{"winning_recipe":{},"style_profile":null,"context":["Late safety car"]}`), &d))
	assert.Nil(t, d.WinningRecipe)
	assert.Equal(t, []string{}, d.StyleProfile)
	assert.Equal(t, []string{"Late safety car"}, d.Context)

	require.NoError(t, json.Unmarshal(
		[]byte(`{"winning_recipe":{"typical_stops":2,"common_tyre_sequence":"SOFT-HARD","avg_longest_stint":20},"style_profile":[]}`), &d))
	assert.Equal(t, &WinningRecipe{
		TypicalStops: 2, CommonTyreSequence: "SOFT-HARD", AvgLongestStint: 20,
	}, d.WinningRecipe)
}

func TestDocumentNullSimulation(t *testing.T) {
	doc := RaceAnalyticsDocument{
		Season: 2023, Round: 1,
		Drivers: []DriverAnalytics{{
			DriverRaceRecord: DriverRaceRecord{DriverCode: "VER", TyreSequence: []string{}},
		}},
	}
	got, err := json.Marshal(&doc)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"strategy_simulation":null`)
	assert.Contains(t, string(got), `"consistency_index":null`)
	assert.Contains(t, string(got), `"tyre_sequence":[]`)
	assert.NotContains(t, string(got), "special_case")
}
