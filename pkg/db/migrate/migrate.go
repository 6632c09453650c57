package migrate

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// MigrateDB applies the embedded migrations.
// If sourceURL is not empty the migrations are read from there instead
// (for example file:///migrations).
func MigrateDB(dbURI, sourceURL string) error {
	m, err := newMigrate(toPgxURL(dbURI), sourceURL)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func newMigrate(dbURL, sourceURL string) (*migrate.Migrate, error) {
	if sourceURL != "" {
		return migrate.New(sourceURL, dbURL)
	}
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", source, dbURL)
}

func toPgxURL(dbURI string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dbURI, prefix) {
			return "pgx5://" + strings.TrimPrefix(dbURI, prefix)
		}
	}
	return dbURI
}
