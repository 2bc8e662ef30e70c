// Package cli implements the product-api command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"product-api/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the product-api command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "product-api",
		Short: "Product catalogue HTTP service",
		Long: `product-api serves a REST API for products backed by PostgreSQL, SQLite or memory.

Available commands:
  serve    - Run the HTTP server
  migrate  - Apply or revert the PostgreSQL schema
  seed     - Import products from a newline-delimited JSON file

Configuration is read from config.yaml (or --config), an optional .env file and
the environment, in increasing order of precedence.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newMigrateCommand(&configPath))
	rootCmd.AddCommand(newSeedCommand(&configPath))

	return rootCmd
}

// Execute runs the command line until it completes or the process receives
// SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

// loadConfig loads the configuration and builds the logger writing to out.
func loadConfig(path string, out io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, config.NewLogger(cfg.Logger, out), nil
}
