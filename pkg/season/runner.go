package season

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/processing"
	"github.com/strathub/strathub-service/pkg/source"
	"github.com/strathub/strathub-service/pkg/store"
)

const DefaultWorkers = 4

// ErrPanic marks a race whose processing panicked
var ErrPanic = errors.New("race processing panicked")

var meter = otel.Meter("season-runner")

type (
	Option func(r *Runner)

	// Runner computes the documents of a season.
	// Races are processed concurrently, a failing race does not stop the others.
	Runner struct {
		src      source.Source
		out      store.Writer
		proc     *processing.Processor
		workers  int
		tracer   trace.Tracer
		l        *log.Logger
		races    metric.Int64Counter
		duration metric.Float64Histogram
	}

	Failure struct {
		Race model.RaceID
		Err  error
	}

	Result struct {
		Season int
		// index entries of the stored races ordered by round
		Processed []model.RaceIndexEntry
		Failures  []Failure
	}
)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithProcessor(p *processing.Processor) Option {
	return func(r *Runner) {
		r.proc = p
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		r.l = l
	}
}

func NewRunner(src source.Source, out store.Writer, opts ...Option) *Runner {
	ret := &Runner{
		src:     src,
		out:     out,
		workers: DefaultWorkers,
		l:       log.Default().Named("season"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.proc == nil {
		ret.proc = processing.NewProcessor()
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("strathub")
	}
	ret.races, _ = meter.Int64Counter("races_processed",
		metric.WithDescription("number of processed races"))
	ret.duration, _ = meter.Float64Histogram("race_processing",
		metric.WithDescription("load, compute and store of a race"),
		metric.WithUnit("s"))
	return ret
}

// Err joins the errors of all failed races
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("race %s: %w", f.Race, f.Err))
	}
	return errors.Join(errs...)
}

// Run processes the given rounds of a season, all rounds of the source if
// none are given. The season index is written for the successful races.
// With explicit rounds these are merged into the existing index.
// An error is returned only if the run as a whole could not be done.
func (r *Runner) Run(ctx context.Context, season int, rounds ...int) (*Result, error) {
	partial := len(rounds) > 0
	if !partial {
		var err error
		if rounds, err = r.src.Rounds(ctx, season); err != nil {
			return nil, fmt.Errorf("rounds of season %d: %w", season, err)
		}
	}
	r.l.Info("processing season",
		log.Int("season", season),
		log.Ints("rounds", rounds),
		log.Int("workers", r.workers))

	res := &Result{
		Season:    season,
		Processed: make([]model.RaceIndexEntry, 0, len(rounds)),
		Failures:  make([]Failure, 0),
	}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, round := range rounds {
		id := model.RaceID{Season: season, Round: round}
		g.Go(func() error {
			entry, err := r.processRace(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.l.Error("race failed",
					log.String("race", id.String()), log.ErrorField(err))
				res.Failures = append(res.Failures, Failure{Race: id, Err: err})
				return nil
			}
			res.Processed = append(res.Processed, *entry)
			return nil
		})
	}
	//nolint:errcheck // workers report into res
	g.Wait()

	slices.SortFunc(res.Processed, func(a, b model.RaceIndexEntry) int {
		return a.Round - b.Round
	})
	slices.SortFunc(res.Failures, func(a, b Failure) int {
		return a.Race.Round - b.Race.Round
	})
	if err := r.saveIndex(ctx, season, res.Processed, partial); err != nil {
		return res, fmt.Errorf("season index %d: %w", season, err)
	}
	r.l.Info("season done",
		log.Int("season", season),
		log.Int("processed", len(res.Processed)),
		log.Int("failed", len(res.Failures)))
	return res, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (r *Runner) saveIndex(
	ctx context.Context,
	season int,
	entries []model.RaceIndexEntry,
	partial bool,
) error {
	if partial {
		return store.MergeSeasonIndex(ctx, r.out, season, entries)
	}
	return r.out.SaveSeasonIndex(ctx, season, entries)
}

// processRace loads, computes and stores a single race
//
//nolint:whitespace // can't make both editor and linter happy
func (r *Runner) processRace(
	ctx context.Context,
	id model.RaceID,
) (entry *model.RaceIndexEntry, err error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "race",
		trace.WithAttributes(
			attribute.Int("season", id.Season),
			attribute.Int("round", id.Round)))
	defer func() {
		status := "ok"
		if err != nil {
			status = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		attrs := metric.WithAttributes(attribute.String("status", status))
		r.races.Add(ctx, 1, attrs)
		r.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		span.End()
	}()
	defer func() {
		if p := recover(); p != nil {
			entry = nil
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	input, err := r.src.LoadRace(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := r.proc.Process(input)
	if err != nil {
		return nil, err
	}
	if err := r.out.SaveRace(ctx, doc); err != nil {
		return nil, err
	}
	ret := doc.IndexEntry()
	r.l.Debug("race stored",
		log.String("race", id.String()),
		log.Duration("took", time.Since(start)))
	return &ret, nil
}
