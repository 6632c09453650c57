//nolint:lll,funlen // ok for tests
package race

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/strathub/strathub-service/pkg/model"
)

func rec(code string, grid, finish int, seq []string, longest int) model.DriverRaceRecord {
	return model.DriverRaceRecord{
		DriverCode:      code,
		Grid:            grid,
		Finish:          finish,
		PositionsGained: grid - finish,
		Stops:           max(len(seq)-1, 0),
		TyreSequence:    seq,
		LongestStint:    longest,
	}
}

func TestNewContext(t *testing.T) {
	ctx := NewContext(nil)
	assert.Nil(t, ctx.AvgStops)
	assert.Nil(t, ctx.AvgLongestStint)

	ctx = NewContext([]model.DriverRaceRecord{
		rec("A", 1, 1, []string{"SOFT", "HARD"}, 30),
		rec("B", 2, 0, []string{"SOFT", "MEDIUM", "HARD"}, 20),
	})
	assert.InDelta(t, 1.5, *ctx.AvgStops, 1e-9)
	assert.InDelta(t, 25.0, *ctx.AvgLongestStint, 1e-9)
}

func TestWinningRecipeOf(t *testing.T) {
	tests := []struct {
		name    string
		records []model.DriverRaceRecord
		want    *model.WinningRecipe
	}{
		{
			name:    "no drivers",
			records: nil,
			want:    nil,
		},
		{
			name: "no finishers",
			records: []model.DriverRaceRecord{
				rec("A", 1, 0, []string{"SOFT", "HARD"}, 20),
			},
			want: nil,
		},
		{
			name: "clear mode",
			records: []model.DriverRaceRecord{
				rec("A", 1, 1, []string{"MEDIUM", "HARD"}, 35),
				rec("B", 2, 2, []string{"SOFT", "HARD", "SOFT"}, 25),
				rec("C", 3, 3, []string{"MEDIUM", "HARD"}, 30),
				rec("D", 4, 0, []string{"SOFT", "MEDIUM", "SOFT"}, 10),
				rec("E", 5, 4, []string{"SOFT", "HARD"}, 33),
			},
			want: &model.WinningRecipe{
				TypicalStops:       1,
				CommonTyreSequence: "MEDIUM-HARD",
				AvgLongestStint:    30, // 123/4 = 30.75
			},
		},
		{
			name: "ties go to first encountered",
			records: []model.DriverRaceRecord{
				rec("A", 1, 1, []string{"SOFT", "MEDIUM", "HARD"}, 20),
				rec("B", 2, 2, []string{"MEDIUM", "HARD"}, 30),
				rec("C", 3, 3, []string{"MEDIUM", "HARD"}, 30),
				rec("D", 4, 4, []string{"SOFT", "MEDIUM", "HARD"}, 21),
			},
			want: &model.WinningRecipe{
				TypicalStops:       2,
				CommonTyreSequence: "SOFT-MEDIUM-HARD",
				AvgLongestStint:    25,
			},
		},
		{
			name: "single compound finishers",
			records: []model.DriverRaceRecord{
				rec("A", 1, 1, []string{"HARD"}, 50),
				rec("B", 2, 2, []string{}, 0),
			},
			want: &model.WinningRecipe{
				TypicalStops:       0,
				CommonTyreSequence: UnknownSequence,
				AvgLongestStint:    25,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WinningRecipeOf(tt.records)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("WinningRecipeOf() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStyleProfile(t *testing.T) {
	tests := []struct {
		name    string
		records []model.DriverRaceRecord
		want    []string
	}{
		{
			name:    "no finishers",
			records: []model.DriverRaceRecord{rec("A", 1, 0, nil, 10)},
			want:    []string{},
		},
		{
			name: "tyre saving and overtaking",
			records: []model.DriverRaceRecord{
				rec("A", 5, 1, nil, 30),
				rec("B", 4, 2, nil, 28),
			},
			want: []string{TagTyreSaving, TagOvertaking},
		},
		{
			name: "high degradation and position critical",
			records: []model.DriverRaceRecord{
				rec("A", 1, 1, nil, 20),
				rec("B", 2, 2, nil, 18),
				rec("C", 3, 0, nil, 50), // not a finisher
			},
			want: []string{TagHighDegradation, TagPositionCritical},
		},
		{
			name: "nothing fires",
			records: []model.DriverRaceRecord{
				rec("A", 2, 1, nil, 24),
			},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StyleProfile(tt.records)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrackSignals(t *testing.T) {
	tests := []struct {
		name    string
		records []model.DriverRaceRecord
		want    *model.TrackSignals
	}{
		{
			name: "empty",
			want: nil,
		},
		{
			// mean longest is exactly 20
			name: "boundary medium degradation",
			records: []model.DriverRaceRecord{
				rec("A", 1, 1, []string{"S", "M", "H"}, 30),
				rec("B", 2, 2, []string{"S", "M", "H", "S", "M"}, 10),
			},
			want: &model.TrackSignals{
				DegradationLevel:   LevelMedium,
				OvertakingPressure: LevelLow,
				CornerStress:       LevelHigh,
			},
		},
		{
			name: "high degradation includes non finishers",
			records: []model.DriverRaceRecord{
				rec("A", 5, 1, []string{"S", "M"}, 15),
				rec("B", 6, 0, []string{"S", "M"}, 18),
			},
			want: &model.TrackSignals{
				DegradationLevel:   LevelHigh,
				OvertakingPressure: LevelHigh,
				CornerStress:       LevelModerate,
			},
		},
		{
			name: "low degradation",
			records: []model.DriverRaceRecord{
				rec("A", 1, 1, []string{"M", "H"}, 40),
			},
			want: &model.TrackSignals{
				DegradationLevel:   LevelLow,
				OvertakingPressure: LevelLow,
				CornerStress:       LevelModerate,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrackSignals(tt.records)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TrackSignals() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
