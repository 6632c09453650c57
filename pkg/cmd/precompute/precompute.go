package precompute

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/cmd/util"
	"github.com/strathub/strathub-service/pkg/config"
	"github.com/strathub/strathub-service/pkg/processing"
	"github.com/strathub/strathub-service/pkg/season"
	sourceFile "github.com/strathub/strathub-service/pkg/source/file"
	"github.com/strathub/strathub-service/pkg/store"
	storeFile "github.com/strathub/strathub-service/pkg/store/file"
	"github.com/strathub/strathub-service/pkg/store/natsstore"
	storePostgres "github.com/strathub/strathub-service/pkg/store/postgres"
)

func NewPrecomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "precompute season [round]",
		Short: "computes the analytics documents of a season",
		Long: `Reads the telemetry exports of a season, computes the analytics document
of each race and stores the documents together with the season index.
A failing race is reported and does not stop the other races.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return precompute(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVar(&config.TelemetryDir,
		"telemetry-dir",
		"telemetry",
		"root directory of the telemetry exports (<dir>/<season>/round_<n>.json)")
	cmd.Flags().IntVarP(&config.Workers,
		"workers",
		"w",
		season.DefaultWorkers,
		"number of races processed concurrently")
	cmd.Flags().StringSliceVar(&config.Outputs,
		"output",
		[]string{},
		"stores to write to (file, postgres, nats). Default is the value of --store.\n"+
			"NATS is always written when --nats-url is set")
	return cmd
}

//nolint:funlen,cyclop // by design
func precompute(ctx context.Context, args []string) error {
	seasonYear, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid season %q: %w", args[0], err)
	}
	rounds := make([]int, 0, 1)
	if len(args) == 2 {
		round, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid round %q: %w", args[1], err)
		}
		rounds = append(rounds, round)
	}

	if telemetry := util.SetupTelemetry(ctx); telemetry != nil {
		defer telemetry.Shutdown()
	}

	outputs := config.Outputs
	if len(outputs) == 0 {
		outputs = []string{config.Store}
	}
	writers := make([]store.Writer, 0, len(outputs)+1)
	for _, o := range outputs {
		switch o {
		case config.StoreFile:
			writers = append(writers, storeFile.New(config.DataDir))
		case config.StorePostgres:
			if err := util.WaitForServices(util.DBAddr()); err != nil {
				log.Fatal("database not ready", log.ErrorField(err))
			}
			pool, err := util.OpenPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			pg := storePostgres.New(pool)
			log.Info("Writing to database", log.String("runId", pg.RunID().String()))
			writers = append(writers, pg)
		case config.StoreNats:
			if config.NatsURL == "" {
				return fmt.Errorf("output %q requires --nats-url", o)
			}
		default:
			return fmt.Errorf("unknown output %q", o)
		}
	}
	if config.NatsURL != "" {
		if err := util.WaitForServices(util.NatsAddr()); err != nil {
			log.Fatal("nats not ready", log.ErrorField(err))
		}
		nc, err := util.ConnectNats()
		if err != nil {
			return err
		}
		defer nc.Close()
		ns, err := natsstore.New(ctx, nc)
		if err != nil {
			return err
		}
		writers = append(writers, ns)
	}

	runner := season.NewRunner(sourceFile.New(config.TelemetryDir), store.Multi(writers...),
		season.WithWorkers(config.Workers),
		season.WithProcessor(processing.NewProcessor()))

	start := time.Now()
	res, err := runner.Run(ctx, seasonYear, rounds...)
	if err != nil {
		return err
	}
	log.Info("Precompute done",
		log.Int("season", seasonYear),
		log.Int("processed", len(res.Processed)),
		log.Int("failed", len(res.Failures)),
		log.Duration("took", time.Since(start)))
	for _, f := range res.Failures {
		log.Warn("race not computed",
			log.String("race", f.Race.String()),
			log.ErrorField(f.Err))
	}
	return nil
}
