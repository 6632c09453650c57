package file

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"golang.org/x/mod/semver"

	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/source"
)

const (
	MinFormatVersion = "v1.0.0"
	maxFormatMajor   = "v1"
)

var (
	versionPath  = jp.MustParseString("$.format_version")
	seasonPath   = jp.MustParseString("$.race_info.year")
	roundPath    = jp.MustParseString("$.race_info.round")
	eventPath    = jp.MustParseString("$.race_info.event_name")
	locationPath = jp.MustParseString("$.race_info.location")
	driversPath  = jp.MustParseString("$.drivers[*]")

	codePath   = jp.C("driver_code")
	teamPath   = jp.C("team")
	gridPath   = jp.C("grid_position")
	finishPath = jp.C("finish_position")
	lapsPath   = jp.C("laps").W()

	validate = validator.New(validator.WithRequiredStructEnabled())
)

type raceHeader struct {
	Season    int           `validate:"gte=1950"`
	Round     int           `validate:"gte=1"`
	EventName string        `validate:"required"`
	Drivers   []driverEntry `validate:"dive"`
}

type driverEntry struct {
	DriverCode string `validate:"required"`
	Grid       int    `validate:"gte=0"`
	Finish     int    `validate:"gte=0"`
}

// Parse reads a telemetry export.
// Unreadable compounds and non numeric times become nil, a missing finish
// position counts as not finished.
func Parse(data []byte) (*model.RaceInput, error) {
	obj, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrInvalidTelemetry, err)
	}
	if err := checkFormatVersion(stringOf(versionPath.First(obj))); err != nil {
		return nil, err
	}

	season, _ := intOf(seasonPath.First(obj))
	round, _ := intOf(roundPath.First(obj))
	input := &model.RaceInput{
		RaceID:    model.RaceID{Season: season, Round: round},
		EventName: stringOf(eventPath.First(obj)),
		Location:  stringOf(locationPath.First(obj)),
		Results:   make([]model.DriverResult, 0),
		Laps:      make(map[string][]model.LapFact),
	}
	header := raceHeader{Season: season, Round: round, EventName: input.EventName}

	for _, d := range driversPath.Get(obj) {
		grid, _ := intOf(gridPath.First(d))
		finish, _ := intOf(finishPath.First(d))
		result := model.DriverResult{
			DriverCode: stringOf(codePath.First(d)),
			Team:       stringOf(teamPath.First(d)),
			Grid:       grid,
			Finish:     finish,
		}
		header.Drivers = append(header.Drivers, driverEntry{
			DriverCode: result.DriverCode,
			Grid:       result.Grid,
			Finish:     result.Finish,
		})
		if _, dup := input.Laps[result.DriverCode]; dup {
			return nil, fmt.Errorf("%w: duplicate driver %s",
				source.ErrInvalidTelemetry, result.DriverCode)
		}
		input.Results = append(input.Results, result)
		input.Laps[result.DriverCode] = parseLaps(lapsPath.Get(d))
	}

	if err := validate.Struct(header); err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrInvalidTelemetry, describe(err))
	}
	return input, nil
}

func checkFormatVersion(v string) error {
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: format version %q", source.ErrInvalidTelemetry, v)
	}
	if semver.Compare(v, MinFormatVersion) < 0 || semver.Major(v) != maxFormatMajor {
		return fmt.Errorf("%w: unsupported format version %s",
			source.ErrInvalidTelemetry, v)
	}
	return nil
}

// laps without a lap number are dropped, the rest is sorted by lap number
func parseLaps(raw []any) []model.LapFact {
	ret := make([]model.LapFact, 0, len(raw))
	for _, l := range raw {
		m, ok := l.(map[string]any)
		if !ok {
			continue
		}
		lapNo, ok := intOf(m["lap_number"])
		if !ok || lapNo < 1 {
			continue
		}
		lap := model.LapFact{
			LapNumber:   lapNo,
			Compound:    compoundOf(m["compound"]),
			LapTime:     floatOf(m["lap_time"]),
			Sector1Time: floatOf(m["sector1_time"]),
			Sector2Time: floatOf(m["sector2_time"]),
			Sector3Time: floatOf(m["sector3_time"]),
			PitInLap:    boolOf(m["is_pit_in_lap"]),
			PitOutLap:   boolOf(m["is_pit_out_lap"]),
		}
		if pos, ok := intOf(m["position"]); ok {
			lap.Position = &pos
		}
		ret = append(ret, lap)
	}
	slices.SortStableFunc(ret, func(a, b model.LapFact) int {
		return a.LapNumber - b.LapNumber
	})
	return ret
}

func compoundOf(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null":
		return nil
	}
	return &s
}

func floatOf(v any) *float64 {
	var f float64
	switch tv := v.(type) {
	case int64:
		f = float64(tv)
	case float64:
		f = tv
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(tv), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func intOf(v any) (int, bool) {
	f := floatOf(v)
	if f == nil || *f != math.Trunc(*f) {
		return 0, false
	}
	return int(*f), true
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func boolOf(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func describe(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s=%s",
			fe.Namespace(), fe.Tag(), fe.Param()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
