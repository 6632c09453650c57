//nolint:lll,funlen // ok for tests
package lap

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/strathub/strathub-service/pkg/model"
)

func laps(compounds ...string) []model.LapFact {
	ret := make([]model.LapFact, len(compounds))
	for i, c := range compounds {
		ret[i].LapNumber = i + 1
		if c != "" {
			ret[i].Compound = &c
		}
	}
	return ret
}

func TestTyreSequence(t *testing.T) {
	tests := []struct {
		name string
		laps []model.LapFact
		want []string
	}{
		{"no laps", nil, []string{}},
		{"single compound", laps("SOFT", "SOFT"), []string{"SOFT"}},
		{"three compounds", laps("SOFT", "SOFT", "MEDIUM", "HARD", "HARD"), []string{"SOFT", "MEDIUM", "HARD"}},
		{"missing compound skipped", laps("SOFT", "", "SOFT", "HARD"), []string{"SOFT", "HARD"}},
		{"reused compound", laps("MEDIUM", "HARD", "MEDIUM"), []string{"MEDIUM", "HARD", "MEDIUM"}},
		{"only unreadable", laps("", " "), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TyreSequence(tt.laps)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TyreSequence() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStopsInvariant(t *testing.T) {
	for _, seq := range [][]string{{}, {"SOFT"}, {"SOFT", "HARD"}, {"SOFT", "MEDIUM", "HARD"}} {
		assert.Equal(t, max(len(seq)-1, 0), Stops(seq))
	}
	// Scenario A
	assert.Equal(t, 2, Stops([]string{"SOFT", "MEDIUM", "HARD"}))
}

func TestLongestStint(t *testing.T) {
	tests := []struct {
		name string
		laps []model.LapFact
		want int
	}{
		{"no laps", nil, 0},
		{"no compounds", laps("", ""), 0},
		{"contiguous", laps("SOFT", "SOFT", "HARD", "HARD", "HARD"), 3},
		// grouped by compound, not by stint
		{"reused compound", laps("MEDIUM", "MEDIUM", "HARD", "HARD", "HARD", "MEDIUM", "MEDIUM"), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LongestStint(tt.laps)
			assert.Equal(t, tt.want, got)
			withCompound := 0
			for _, l := range tt.laps {
				if l.Compound != nil && *l.Compound != "" {
					withCompound++
				}
			}
			assert.LessOrEqual(t, got, withCompound)
		})
	}
}

func TestConsistency(t *testing.T) {
	lt := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		laps []model.LapFact
		want *float64
	}{
		{"no laps", nil, nil},
		{"no valid times", []model.LapFact{{LapNumber: 1}, {LapNumber: 2}}, nil},
		{"single lap", []model.LapFact{{LapTime: lt(92.1)}}, lt(0)},
		{
			"population std",
			[]model.LapFact{{LapTime: lt(90)}, {LapTime: nil}, {LapTime: lt(92)}, {LapTime: lt(94)}},
			lt(1.633),
		},
		{"NaN ignored", []model.LapFact{{LapTime: lt(90)}, {LapTime: lt(math.NaN())}, {LapTime: lt(92)}}, lt(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consistency(tt.laps)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.InDelta(t, *tt.want, *got, 1e-9)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	s := Normalize(laps("SOFT", "SOFT", "MEDIUM", "HARD"))
	assert.Equal(t, Summary{
		TyreSequence: []string{"SOFT", "MEDIUM", "HARD"},
		Stops:        2,
		LongestStint: 2,
	}, s)
}
