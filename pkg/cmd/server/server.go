package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/api"
	"github.com/strathub/strathub-service/pkg/cmd/util"
	"github.com/strathub/strathub-service/pkg/config"
	"github.com/strathub/strathub-service/pkg/model"
	"github.com/strathub/strathub-service/pkg/store"
	storeFile "github.com/strathub/strathub-service/pkg/store/file"
	"github.com/strathub/strathub-service/pkg/store/natsstore"
	storePostgres "github.com/strathub/strathub-service/pkg/store/postgres"
	"github.com/strathub/strathub-service/pkg/store/rediscache"
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"server-addr",
		"a",
		"localhost:8080",
		"HTTP server listen address")
	cmd.Flags().StringVar(&config.RedisAddr,
		"redis-addr",
		"",
		"redis server used as document cache (host:port)")
	cmd.Flags().StringVar(&config.RedisCacheTTL,
		"redis-cache-ttl",
		"10m",
		"duration a document stays in the redis cache")
	cmd.Flags().StringVar(&config.CacheExpiration,
		"cache-expiration",
		"5m",
		"duration a document stays in the in-process cache")
	return cmd
}

type (
	invalidator interface {
		Invalidate(ctx context.Context, id model.RaceID)
	}
	// changeWatcher reports changed documents of a store
	changeWatcher interface {
		Watch(ctx context.Context, onChange func(id model.RaceID)) error
	}
)

//nolint:funlen,cyclop // by design
func startServer(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	addrs := []string{config.RedisAddr}
	switch config.Store {
	case config.StorePostgres:
		addrs = append(addrs, util.DBAddr())
	case config.StoreNats:
		addrs = append(addrs, util.NatsAddr())
	}
	if err := util.WaitForServices(addrs...); err != nil {
		log.Fatal("required services not ready", log.ErrorField(err))
	}
	log.Debug("Required services are available")

	if telemetry := util.SetupTelemetry(ctx); telemetry != nil {
		defer telemetry.Shutdown()
	}

	var reader store.Reader
	var watcher changeWatcher
	switch config.Store {
	case config.StoreFile:
		fileStore := storeFile.New(config.DataDir)
		reader, watcher = fileStore, fileStore
	case config.StorePostgres:
		pool, err := util.OpenPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		reader = storePostgres.New(pool)
	case config.StoreNats:
		if config.NatsURL == "" {
			return errors.New("store nats requires --nats-url")
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
		reader, watcher = ns, ns
	default:
		return fmt.Errorf("unknown store %q", config.Store)
	}

	invalidators := make([]invalidator, 0, 2)
	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		defer client.Close()
		rc := rediscache.New(reader, client,
			rediscache.WithTTL(parseDuration(config.RedisCacheTTL, rediscache.DefaultTTL)))
		invalidators = append(invalidators, rc)
		reader = rc
	}
	cached := store.NewCachedReader(reader,
		parseDuration(config.CacheExpiration, 5*time.Minute))
	invalidators = append(invalidators, cached)

	if watcher != nil {
		err := watcher.Watch(ctx, func(id model.RaceID) {
			log.Debug("document changed", log.String("race", id.String()))
			for _, inv := range invalidators {
				inv.Invalidate(ctx, id)
			}
		})
		if err != nil {
			log.Warn("Could not watch store, changes need a restart",
				log.ErrorField(err))
		}
	}

	apiServer := api.New(cached)
	apiServer.Warmup(ctx)
	server := api.NewHTTPServer(config.ServerAddr, apiServer.Handler())
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", log.String("addr", config.ServerAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case v := <-sigChan:
		log.Debug("Got signal", log.Any("signal", v))
	case err := <-errChan:
		if err != nil {
			log.Error("server could not be started", log.ErrorField(err))
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", log.ErrorField(err))
	}
	log.Info("Server terminated")
	return nil
}

func parseDuration(v string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("Invalid duration value, using default",
			log.String("value", v),
			log.Duration("default", defaultVal))
		return defaultVal
	}
	return d
}
