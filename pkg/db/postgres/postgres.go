package postgres

import (
	"context"
	"fmt"

	"github.com/exaring/otelpgx"
	pgxuuid "github.com/jackc/pgx-gofrs-uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strathub/strathub-service/log"
)

type PoolConfigOption func(cfg *pgxpool.Config)

func WithTracer(tracer pgx.QueryTracer) PoolConfigOption {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.Tracer = tracer
	}
}

func WithMaxConns(n int32) PoolConfigOption {
	return func(cfg *pgxpool.Config) {
		cfg.MaxConns = n
	}
}

// InitWithURL creates a pool and checks the connection
func InitWithURL(
	ctx context.Context,
	url string,
	opts ...PoolConfigOption,
) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	dbConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}
	for _, opt := range opts {
		opt(dbConfig)
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create the database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to get a valid database connection: %w", err)
	}
	return pool, nil
}

func NewOtlpTracer() pgx.QueryTracer {
	return otelpgx.NewTracer(otelpgx.WithIncludeQueryParameters())
}

// NewMyTracer logs each query with its arguments at the given level
func NewMyTracer(logger *log.Logger, level log.Level) pgx.QueryTracer {
	if logger == nil {
		logger = log.Default()
	}
	return &myQueryTracer{log: logger.Named("sql"), level: level}
}

type myQueryTracer struct {
	log   *log.Logger
	level log.Level
}

type ctxQueryKey struct{}

func (tracer *myQueryTracer) TraceQueryStart(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	if tracer.level < tracer.log.Level() {
		return ctx
	}
	tracer.log.Zap().Log(tracer.level, "Executing",
		log.String("sql", data.SQL),
		log.Any("args", data.Args))
	return context.WithValue(ctx, ctxQueryKey{}, data.SQL)
}

//nolint:whitespace // can't make the linters happy
func (tracer *myQueryTracer) TraceQueryEnd(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	if data.Err == nil {
		return
	}
	sql, _ := ctx.Value(ctxQueryKey{}).(string)
	tracer.log.Warn("Query failed",
		log.String("sql", sql),
		log.ErrorField(data.Err))
}
