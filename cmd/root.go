/*
Copyright 2025 StratHub
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	ingestCmd "github.com/strathub/strathub-service/pkg/cmd/ingest"
	migrateCmd "github.com/strathub/strathub-service/pkg/cmd/migrate"
	precomputeCmd "github.com/strathub/strathub-service/pkg/cmd/precompute"
	serverCmd "github.com/strathub/strathub-service/pkg/cmd/server"
	specialCmd "github.com/strathub/strathub-service/pkg/cmd/special"
	"github.com/strathub/strathub-service/pkg/cmd/util"
	"github.com/strathub/strathub-service/pkg/config"
	"github.com/strathub/strathub-service/version"
)

const envPrefix = "STRATHUB"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "strathub",
	Short:   "Race strategy analytics for per-lap telemetry",
	Long:    ``,
	Version: version.FullVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return util.SetupLogger(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag definitions
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.strathub.yml)")

	rootCmd.PersistentFlags().StringVar(&config.DB, "db",
		"postgresql://DB_USERNAME:DB_USER_PASSWORD@DB_HOST:5432/strathub",
		"Connection string for the database")
	rootCmd.PersistentFlags().StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for other services to be ready")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"info",
		"controls the log level for sql methods")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules applied to named loggers, e.g. 'info+:* debug+:processing'")
	rootCmd.PersistentFlags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	rootCmd.PersistentFlags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data ('stdout' prints to console)")
	rootCmd.PersistentFlags().StringVar(&config.DataDir,
		"data-dir",
		"data",
		"root directory of the computed race documents")
	rootCmd.PersistentFlags().StringVar(&config.Store,
		"store",
		config.StoreFile,
		"document store (file, postgres, nats)")
	rootCmd.PersistentFlags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"NATS server url; race documents are published when set")

	// add commands here
	rootCmd.AddCommand(precomputeCmd.NewPrecomputeCmd())
	rootCmd.AddCommand(serverCmd.NewServerCmd())
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
	rootCmd.AddCommand(ingestCmd.NewIngestCmd())
	rootCmd.AddCommand(specialCmd.NewSpecialCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".strathub")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// --data-dir is bound to STRATHUB_DATA_DIR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
