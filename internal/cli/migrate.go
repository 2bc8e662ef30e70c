package cli

import (
	"fmt"

	"product-api/internal/config"
	"product-api/internal/database"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply or revert the PostgreSQL schema",
		Long: `Apply or revert the embedded PostgreSQL schema migrations.

The SQLite store creates its schema on open and the memory store needs none,
so both are rejected here.`,
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(*configPath, cmd, database.MigrateUp)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(*configPath, cmd, database.MigrateDown)
		},
	})

	return migrateCmd
}

func runMigrate(configPath string, cmd *cobra.Command, apply func(string, zerolog.Logger) error) error {
	cfg, logger, err := loadConfig(configPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to the %s store, configured store is %s", config.DriverPostgres, cfg.Store.Driver)
	}

	return apply(cfg.Database.ConnectionString(), logger)
}
