package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"product-api/internal/app"
	"product-api/internal/config"

	"github.com/go-extras/cobraflags"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const storeFlag = "store"

var serveFlags = map[string]cobraflags.Flag{
	storeFlag: &cobraflags.StringFlag{
		Name:  storeFlag,
		Value: "",
		Usage: "Store driver override (postgres, sqlite, memory)",
	},
}

func newServeCommand(configPath *string) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the product HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if driver := serveFlags[storeFlag].GetString(); driver != "" {
				cfg.Store.Driver = driver
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid --%s: %w", storeFlag, err)
				}
			}

			return runServe(cmd.Context(), cfg, logger)
		},
	}

	cobraflags.RegisterMap(serveCmd, serveFlags)
	return serveCmd
}

// runServe serves HTTP until ctx is cancelled, then shuts down gracefully.
func runServe(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().Str("store", cfg.Store.Driver).Msg("starting product-api server")

	deps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to release application resources")
		}
	}()

	server := app.SetupHTTPServer(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("address", server.Addr).
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
