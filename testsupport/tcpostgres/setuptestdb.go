//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/strathub/strathub-service/pkg/db/migrate"
	database "github.com/strathub/strathub-service/pkg/db/postgres"
)

const (
	containerName = "strathub-service-test-postgres"
	dbUser        = "postgres"
	dbPassword    = "password"
	dbName        = "postgres"
)

// SetupTestDB starts (or reuses) a postgres container and returns a pool
// for the migrated database
func SetupTestDB() *pgxpool.Pool {
	ctx := context.Background()
	port := nat.Port("5432/tcp")
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image: "postgres:16",
				Name:  containerName,
				Env: map[string]string{
					"POSTGRES_USER":     dbUser,
					"POSTGRES_PASSWORD": dbPassword,
					"POSTGRES_DB":       dbName,
				},
				ExposedPorts: []string{string(port)},
				Cmd:          []string{"postgres", "-c", "fsync=off"},
				// the server restarts once after running the init scripts
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			},
			Started: true,
			Reuse:   true,
		})
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		dbUser, dbPassword, host, containerPort.Port(), dbName)
	return migrateAndConnect(ctx, dbURL)
}

// SetupExternalTestDB uses the database referenced by TESTDB_URL
func SetupExternalTestDB() *pgxpool.Pool {
	return migrateAndConnect(context.Background(), os.Getenv("TESTDB_URL"))
}

func migrateAndConnect(ctx context.Context, dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDB(dbURL, ""); err != nil {
		log.Fatal(err)
	}
	pool, err := database.InitWithURL(ctx, dbURL)
	if err != nil {
		log.Fatal(err)
	}
	return pool
}

func ClearRaceAnalyticsTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from race_analytics")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearRaceAnalyticsTable(pool)
}
