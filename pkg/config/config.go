package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string   // connection string for the database
	NatsURL           string   // url of the NATS server (optional publishing)
	RedisAddr         string   // address of redis server used as document cache
	RedisCacheTTL     string   // duration a cached race document stays in redis
	WaitForServices   string   // duration to wait for other services to be ready
	LogLevel          string   // sets the log level (zap log level values)
	SQLLogLevel       string   // sets the log level for sql subsystem
	LogFormat         string   // text vs json
	LogFilter         string   // zapfilter rules, e.g. "info+:* debug+:processing"
	EnableTelemetry   bool     // enable telemetry
	TelemetryEndpoint string   // endpoint for telemetry ("stdout" writes to console)
	TelemetryDir      string   // root directory of the telemetry exports
	DataDir           string   // root directory of the computed race documents
	Store             string   // document store to use (file, postgres, nats)
	Outputs           []string // stores written by precompute (default: Store)
	Workers           int      // number of races processed concurrently
	ServerAddr        string   // listen addr for the HTTP API
	CacheExpiration   string   // expiration of in-process document cache entries
	MigrationSource   string   // location of migration files (empty: embedded)
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreNats     = "nats"
)
