package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp applies all pending schema migrations.
func MigrateUp(databaseURL string, logger zerolog.Logger) error {
	return runMigrations(databaseURL, logger, "up", func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// MigrateDown reverts every applied schema migration.
func MigrateDown(databaseURL string, logger zerolog.Logger) error {
	return runMigrations(databaseURL, logger, "down", func(m *migrate.Migrate) error {
		return m.Down()
	})
}

func runMigrations(databaseURL string, logger zerolog.Logger, direction string, apply func(*migrate.Migrate) error) error {
	logger = logger.With().Str("component", "migrations").Str("direction", direction).Logger()

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn().AnErr("source_error", srcErr).AnErr("database_error", dbErr).Msg("failed to close migrate instance")
		}
	}()

	if err := apply(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info().Msg("schema already up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations (%s): %w", direction, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info().Msg("all migrations reverted")
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	default:
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	}

	return nil
}
