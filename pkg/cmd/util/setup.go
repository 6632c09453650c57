package util

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/pgx-contrib/pgxtrace"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/config"
	"github.com/strathub/strathub-service/pkg/db/postgres"
	"github.com/strathub/strathub-service/pkg/utils"
)

var sqlLogger *log.Logger

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger configures the default logger from the resolved config values
// and stores it in the command context.
func SetupLogger(cmd *cobra.Command) error {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	filtered, err := logger.WithFilter(config.LogFilter)
	if err != nil {
		return err
	}
	log.ResetDefault(filtered)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(log.AddToContext(ctx, filtered))
	return nil
}

// SetupTelemetry starts the otel providers and runtime metrics if enabled.
// The returned value is nil when telemetry is disabled or could not be set up.
func SetupTelemetry(ctx context.Context) *config.Telemetry {
	if !config.EnableTelemetry {
		return nil
	}
	log.Info("Enabling telemetry")
	telemetry, err := config.SetupTelemetry(ctx)
	if err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return nil
	}
	err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
	if err != nil {
		log.Warn("Could not start runtime metrics", log.ErrorField(err))
	}
	return telemetry
}

// WaitForDB waits until the database configured by config.DB accepts connections
func WaitForDB() error {
	return utils.WaitForTCP(utils.ExtractFromDBURL(config.DB), WaitTimeout())
}

// WaitTimeout returns the configured wait-for-services duration
func WaitTimeout() time.Duration {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	return timeout
}

// OpenPool creates a database pool using the sql logger as query tracer.
// With telemetry active the otel tracer is added.
func OpenPool(ctx context.Context) (*pgxpool.Pool, error) {
	tracer := pgxtrace.CompositeQueryTracer{
		postgres.NewMyTracer(sqlLogger, log.DebugLevel),
	}
	if config.EnableTelemetry {
		tracer = append(tracer, postgres.NewOtlpTracer())
	}
	return postgres.InitWithURL(ctx, config.DB, postgres.WithTracer(tracer))
}

// WaitForServices waits until all given addresses accept connections.
// Empty addresses are ignored.
func WaitForServices(addrs ...string) error {
	timeout := WaitTimeout()
	var mu sync.Mutex
	errs := make([]error, 0)
	wg := sync.WaitGroup{}
	for _, addr := range addrs {
		if addr == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := utils.WaitForTCP(addr, timeout); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	return errors.Join(errs...)
}

// ConnectNats connects to config.NatsURL
func ConnectNats() (*nats.Conn, error) {
	return nats.Connect(config.NatsURL, nats.Name("strathub"))
}

// NatsAddr returns the address of the configured NATS server, empty if none
func NatsAddr() string {
	if config.NatsURL == "" {
		return ""
	}
	return utils.ExtractFromNatsURL(config.NatsURL)
}

// DBAddr returns the address of the configured database
func DBAddr() string {
	return utils.ExtractFromDBURL(config.DB)
}
