//nolint:funlen // ok for tests
package race

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"gotest.tools/v3/assert"

	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/testsupport/basedata"
	"github.com/strathub/strathub-service/testsupport/testdb"
)

func TestUpsertAndLoad(t *testing.T) {
	pool := testdb.InitTestDB()
	ctx := context.Background()
	doc := basedata.SampleDocument(2023, 1, "Bahrain Grand Prix", "Sakhir")
	runID := uuid.Must(uuid.NewV7())

	err := Upsert(ctx, pool, doc, runID)
	assert.NilError(t, err)

	got, err := LoadByID(ctx, pool, doc.RaceID())
	assert.NilError(t, err)
	assert.DeepEqual(t, got, doc)

	gotRunID, err := LoadRunID(ctx, pool, doc.RaceID())
	assert.NilError(t, err)
	assert.Equal(t, gotRunID, runID)

	// replace
	doc.EventName = "Bahrain GP"
	otherRun := uuid.Must(uuid.NewV7())
	err = Upsert(ctx, pool, doc, otherRun)
	assert.NilError(t, err)
	got, err = LoadByID(ctx, pool, doc.RaceID())
	assert.NilError(t, err)
	assert.Equal(t, got.EventName, "Bahrain GP")
	gotRunID, err = LoadRunID(ctx, pool, doc.RaceID())
	assert.NilError(t, err)
	assert.Equal(t, gotRunID, otherRun)
}

func TestLoadMissing(t *testing.T) {
	pool := testdb.InitTestDB()
	_, err := LoadByID(context.Background(), pool, model.RaceID{Season: 1999, Round: 1})
	assert.Assert(t, IsNotFound(err))
}

func TestInsertIfMissing(t *testing.T) {
	pool := testdb.InitTestDB()
	ctx := context.Background()
	doc := &model.RaceAnalyticsDocument{
		Season:      2022,
		Round:       7,
		EventName:   "Emilia Romagna Grand Prix",
		Location:    "Imola",
		SpecialCase: true,
		Note:        "Race cancelled",
		Drivers:     []model.DriverAnalytics{},
		Derived:     model.Derived{StyleProfile: []string{}, Context: []string{"Flooding"}},
	}
	inserted, err := InsertIfMissing(ctx, pool, doc)
	assert.NilError(t, err)
	assert.Assert(t, inserted)

	runID, err := LoadRunID(ctx, pool, doc.RaceID())
	assert.NilError(t, err)
	assert.Equal(t, runID, uuid.Nil)

	doc.Note = "changed"
	inserted, err = InsertIfMissing(ctx, pool, doc)
	assert.NilError(t, err)
	assert.Assert(t, !inserted)
	got, err := LoadByID(ctx, pool, doc.RaceID())
	assert.NilError(t, err)
	assert.Equal(t, got.Note, "Race cancelled")
	assert.Assert(t, got.SpecialCase)
}

func TestListAndDelete(t *testing.T) {
	pool := testdb.InitTestDB()
	ctx := context.Background()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	runID := uuid.Must(uuid.NewV7())
	for _, d := range []*model.RaceAnalyticsDocument{
		basedata.SampleDocument(2023, 2, "Saudi Arabian Grand Prix", "Jeddah"),
		basedata.SampleDocument(2023, 1, "Bahrain Grand Prix", "Sakhir"),
		basedata.SampleDocument(2022, 1, "Bahrain Grand Prix", "Sakhir"),
	} {
		assert.NilError(t, Upsert(ctx, pool, d, runID))
	}

	seasons, err := ListSeasons(ctx, db)
	assert.NilError(t, err)
	assert.DeepEqual(t, seasons, []int{2023, 2022})

	races, err := ListRaces(ctx, db, 2023)
	assert.NilError(t, err)
	assert.DeepEqual(t, races, basedata.SampleIndex())

	races, err = ListRaces(ctx, db, 2021)
	assert.NilError(t, err)
	assert.Equal(t, len(races), 0)

	n, err := DeleteSeason(ctx, pool, 2023)
	assert.NilError(t, err)
	assert.Equal(t, n, int64(2))

	seasons, err = ListSeasons(ctx, db)
	assert.NilError(t, err)
	assert.DeepEqual(t, seasons, []int{2022})
}
