package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/cmd/util"
	"github.com/strathub/strathub-service/pkg/config"
	"github.com/strathub/strathub-service/pkg/model"
	storeFile "github.com/strathub/strathub-service/pkg/store/file"
	storePostgres "github.com/strathub/strathub-service/pkg/store/postgres"
)

var ErrNoDocuments = errors.New("no documents found")

func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest season",
		Short: "copies the documents of a season from the data dir into the database",
		Long: `Replaces all database documents of the season with the documents
found in the data dir.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			season, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid season %q: %w", args[0], err)
			}
			return ingest(cmd.Context(), season)
		},
	}
	return cmd
}

func ingest(ctx context.Context, season int) error {
	docs, err := collectSeason(ctx, storeFile.New(config.DataDir), season)
	if err != nil {
		return err
	}
	if err := util.WaitForDB(); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}
	pool, err := util.OpenPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	pg := storePostgres.New(pool)
	if err := pg.ReplaceSeason(ctx, season, docs); err != nil {
		return err
	}
	log.Info("Season ingested",
		log.Int("season", season),
		log.Int("races", len(docs)),
		log.String("runId", pg.RunID().String()))
	return nil
}

// collectSeason loads all documents of a season in round order
//
//nolint:whitespace // can't make both editor and linter happy
func collectSeason(
	ctx context.Context,
	fs *storeFile.Store,
	season int,
) ([]*model.RaceAnalyticsDocument, error) {
	rounds, err := fs.Rounds(season)
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, fmt.Errorf("season %d in %s: %w", season, fs.Dir(), ErrNoDocuments)
	}
	ret := make([]*model.RaceAnalyticsDocument, 0, len(rounds))
	for _, round := range rounds {
		doc, err := fs.LoadRace(ctx, model.RaceID{Season: season, Round: round})
		if err != nil {
			return nil, err
		}
		ret = append(ret, doc)
	}
	return ret, nil
}
