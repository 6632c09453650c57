package migrate

import (
	"github.com/spf13/cobra"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/cmd/util"
	"github.com/strathub/strathub-service/pkg/config"
	"github.com/strathub/strathub-service/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSource,
		"migration-source",
		"m",
		"",
		"url to migration files (default: embedded migrations)")

	return cmd
}

func startMigration() error {
	if err := util.WaitForDB(); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}
	source := config.MigrationSource
	if source == "" {
		source = "embedded"
	}
	log.Info("Using migrations", log.String("source", source))

	if err := migrate.MigrateDB(config.DB, config.MigrationSource); err != nil {
		log.Error("Migration failed", log.ErrorField(err))
		return err
	}
	log.Info("Migration done")
	return nil
}
