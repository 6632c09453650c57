package race

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/repository"
)

const table = "race_analytics"

// Upsert stores the document of a race, replacing an existing one
//
//nolint:whitespace // can't make both editor and linter happy
func Upsert(
	ctx context.Context,
	conn repository.Querier,
	doc *model.RaceAnalyticsDocument,
	runID uuid.UUID,
) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, `
insert into race_analytics (season, round, event_name, location, run_id, special, document)
values ($1, $2, $3, $4, $5, $6, $7)
on conflict (season, round) do update set
	event_name=excluded.event_name,
	location=excluded.location,
	run_id=excluded.run_id,
	special=excluded.special,
	document=excluded.document,
	created_at=now()
	`,
		doc.Season, doc.Round, doc.EventName, doc.Location,
		runID, doc.SpecialCase, data)
	return err
}

// InsertIfMissing stores the document only if no document exists for the race.
// The result reports whether a row was inserted.
//
//nolint:whitespace // can't make both editor and linter happy
func InsertIfMissing(
	ctx context.Context,
	conn repository.Querier,
	doc *model.RaceAnalyticsDocument,
) (bool, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return false, err
	}
	tag, err := conn.Exec(ctx, `
insert into race_analytics (season, round, event_name, location, special, document)
values ($1, $2, $3, $4, $5, $6)
on conflict (season, round) do nothing
	`,
		doc.Season, doc.Round, doc.EventName, doc.Location, doc.SpecialCase, data)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// LoadByID returns the document of a race.
// pgx.ErrNoRows is returned (wrapped) if there is none.
//
//nolint:whitespace // can't make both editor and linter happy
func LoadByID(
	ctx context.Context,
	conn repository.Querier,
	id model.RaceID,
) (*model.RaceAnalyticsDocument, error) {
	row := conn.QueryRow(ctx,
		"select document from race_analytics where season=$1 and round=$2",
		id.Season, id.Round)
	var data []byte
	if err := row.Scan(&data); err != nil {
		return nil, fmt.Errorf("race %s: %w", id, err)
	}
	ret := &model.RaceAnalyticsDocument{}
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("race %s: %w", id, err)
	}
	return ret, nil
}

// LoadRunID returns the id of the batch run which stored the race.
// uuid.Nil is returned for documents stored outside a batch run.
func LoadRunID(ctx context.Context, conn repository.Querier, id model.RaceID) (uuid.UUID, error) {
	var ret uuid.NullUUID
	err := conn.QueryRow(ctx,
		"select run_id from race_analytics where season=$1 and round=$2",
		id.Season, id.Round).Scan(&ret)
	if err != nil {
		return uuid.Nil, err
	}
	if !ret.Valid {
		return uuid.Nil, nil
	}
	return ret.UUID, nil
}

// DeleteSeason removes all documents of a season.
// The number of deleted rows is returned.
func DeleteSeason(ctx context.Context, conn repository.Querier, season int) (int64, error) {
	tag, err := conn.Exec(ctx, "delete from race_analytics where season=$1", season)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListSeasons returns the seasons with stored documents, newest first
func ListSeasons(ctx context.Context, exec bob.Executor) ([]int, error) {
	q := psql.Select(
		sm.Columns("season"),
		sm.From(table),
		sm.GroupBy("season"),
		sm.OrderBy("season").Desc(),
	)
	return bob.All(ctx, exec, q, scan.SingleColumnMapper[int])
}

// ListRaces returns the index entries of a season ordered by round
//
//nolint:whitespace // can't make both editor and linter happy
func ListRaces(
	ctx context.Context,
	exec bob.Executor,
	season int,
) ([]model.RaceIndexEntry, error) {
	q := psql.Select(
		sm.Columns("season", "round", "event_name", "location"),
		sm.From(table),
		sm.Where(psql.Quote("season").EQ(psql.Arg(season))),
		sm.OrderBy("round").Asc(),
	)
	return bob.All(ctx, exec, q, scan.StructMapper[model.RaceIndexEntry]())
}

// IsNotFound reports whether err signals a missing row
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
