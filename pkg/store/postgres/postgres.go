package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/repository/race"
	"github.com/strathub/strathub-service/pkg/store"
)

// Store keeps race documents in the race_analytics table.
// The season index is derived from the stored rows.
type Store struct {
	pool  *pgxpool.Pool
	db    bob.DB
	runID uuid.UUID
	l     *log.Logger
}

var _ store.ReadWriter = (*Store)(nil)

type Option func(s *Store)

// WithRunID sets the id stored with each written document.
// A new V7 id is used by default.
func WithRunID(id uuid.UUID) Option {
	return func(s *Store) {
		s.runID = id
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.l = l
	}
}

func New(pool *pgxpool.Pool, opts ...Option) *Store {
	ret := &Store{
		pool:  pool,
		db:    bob.NewDB(stdlib.OpenDBFromPool(pool)),
		runID: uuid.Must(uuid.NewV7()),
		l:     log.Default().Named("store.postgres"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (s *Store) RunID() uuid.UUID {
	return s.runID
}

func (s *Store) SaveRace(ctx context.Context, doc *model.RaceAnalyticsDocument) error {
	if err := race.Upsert(ctx, s.pool, doc, s.runID); err != nil {
		return fmt.Errorf("save race %s: %w", doc.RaceID(), err)
	}
	s.l.Debug("race saved",
		log.String("race", doc.RaceID().String()),
		log.String("runId", s.runID.String()))
	return nil
}

// SaveSeasonIndex does nothing. The index is read from the stored rows.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Store) SaveSeasonIndex(
	ctx context.Context,
	season int,
	entries []model.RaceIndexEntry,
) error {
	s.l.Debug("season index is derived from stored races",
		log.Int("season", season), log.Int("entries", len(entries)))
	return nil
}

// MergeSeasonIndex does nothing for the same reason as SaveSeasonIndex
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Store) MergeSeasonIndex(
	ctx context.Context,
	season int,
	entries []model.RaceIndexEntry,
) error {
	return s.SaveSeasonIndex(ctx, season, entries)
}

func (s *Store) ListSeasons(ctx context.Context) ([]int, error) {
	return race.ListSeasons(ctx, s.db)
}

func (s *Store) ListRaces(ctx context.Context, season int) ([]model.RaceIndexEntry, error) {
	ret, err := race.ListRaces(ctx, s.db, season)
	if err != nil {
		return nil, err
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("season %d: %w", season, store.ErrNotFound)
	}
	return ret, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *Store) LoadRace(
	ctx context.Context,
	id model.RaceID,
) (*model.RaceAnalyticsDocument, error) {
	ret, err := race.LoadByID(ctx, s.pool, id)
	if race.IsNotFound(err) {
		return nil, fmt.Errorf("race %s: %w", id, store.ErrNotFound)
	}
	return ret, err
}

// ReplaceSeason removes all documents of the season and stores docs
// within one transaction
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Store) ReplaceSeason(
	ctx context.Context,
	season int,
	docs []*model.RaceAnalyticsDocument,
) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		deleted, err := race.DeleteSeason(ctx, tx, season)
		if err != nil {
			return err
		}
		s.l.Info("replacing season",
			log.Int("season", season),
			log.Int64("deleted", deleted),
			log.Int("new", len(docs)))
		for _, doc := range docs {
			if doc.Season != season {
				return fmt.Errorf("race %s does not belong to season %d",
					doc.RaceID(), season)
			}
			if err := race.Upsert(ctx, tx, doc, s.runID); err != nil {
				return fmt.Errorf("save race %s: %w", doc.RaceID(), err)
			}
		}
		return nil
	})
}

// InsertIfMissing stores doc unless the race already exists.
// The result reports whether doc was stored.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Store) InsertIfMissing(
	ctx context.Context,
	doc *model.RaceAnalyticsDocument,
) (bool, error) {
	return race.InsertIfMissing(ctx, s.pool, doc)
}
