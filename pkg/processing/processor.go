package processing

import (
	"errors"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/processing/driver"
	"github.com/strathub/strathub-service/pkg/processing/race"
	"github.com/strathub/strathub-service/pkg/processing/score"
)

var (
	ErrNoWinningRecipe = score.ErrNoWinningRecipe
	ErrNoInput         = errors.New("no race input")
)

// Processor computes the analytics document of a single race.
// It holds no race state and may be shared between goroutines.
type Processor struct {
	l *log.Logger
}

type ProcessorOption func(proc *Processor)

func WithLogger(l *log.Logger) ProcessorOption {
	return func(proc *Processor) {
		proc.l = l
	}
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	ret := &Processor{
		l: log.Default().Named("processing"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Analyze processes input with a default Processor
func Analyze(input *model.RaceInput) (*model.RaceAnalyticsDocument, error) {
	return NewProcessor().Process(input)
}

// Process builds the driver records, derives the race level values once
// and scores every driver against them.
func (p *Processor) Process(input *model.RaceInput) (*model.RaceAnalyticsDocument, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	records := driver.BuildRecords(input)

	raceCtx := race.NewContext(records)
	recipe := race.WinningRecipeOf(records)
	derived := model.Derived{
		WinningRecipe: recipe,
		StyleProfile:  race.StyleProfile(records),
		TrackSignals:  race.TrackSignals(records),
	}

	drivers := make([]model.DriverAnalytics, 0, len(records))
	for i := range records {
		entry, err := p.scoreDriver(&records[i], raceCtx, recipe)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, entry)
	}

	p.l.Debug("race processed",
		log.String("race", input.RaceID.String()),
		log.Int("drivers", len(drivers)),
		log.Bool("recipe", recipe != nil))

	return &model.RaceAnalyticsDocument{
		Season:    input.Season,
		Round:     input.Round,
		EventName: input.EventName,
		Location:  input.Location,
		Drivers:   drivers,
		Derived:   derived,
	}, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (p *Processor) scoreDriver(
	r *model.DriverRaceRecord,
	raceCtx model.RaceContext,
	recipe *model.WinningRecipe,
) (model.DriverAnalytics, error) {
	ret := model.DriverAnalytics{
		DriverRaceRecord:     *r,
		StrategyRisk:         score.StrategyRisk(r, raceCtx),
		TyreDegradationIndex: score.TyreDegradationIndex(r),
		PitEfficiency:        score.PitEfficiency(r),
	}
	// without finishers there is nothing to compare with
	if recipe != nil {
		sim, err := score.StrategySwap(r, recipe)
		if err != nil {
			return ret, err
		}
		ret.StrategySimulation = sim
	}
	return ret, nil
}
