// Package app wires the product store, event publisher, service and HTTP
// stack together from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"product-api/internal/config"
	"product-api/internal/database"
	"product-api/internal/events"
	"product-api/internal/handler"
	"product-api/internal/repository"
	"product-api/internal/router"
	"product-api/internal/seed"
	"product-api/internal/service"

	"github.com/rs/zerolog"
)

// Dependencies holds the long-lived components of a running application.
type Dependencies struct {
	Repository     repository.ProductRepository
	Publisher      events.Publisher
	ProductService service.ProductService
	Logger         zerolog.Logger

	closers []func() error
}

// NewDependencies builds the service layer on top of an existing store.
// A nil publisher disables product events.
func NewDependencies(repo repository.ProductRepository, publisher events.Publisher, logger zerolog.Logger) *Dependencies {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}

	return &Dependencies{
		Repository:     repo,
		Publisher:      publisher,
		ProductService: service.NewProductService(repo, publisher, logger),
		Logger:         logger,
	}
}

// Open connects the configured product store and event publisher.
// Callers must Close the returned dependencies.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn().Err(err).Msg("failed to release resource")
			}
		}
	}

	repo, closer, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closer)

	publisher := events.NewNoopPublisher()
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to connect to event broker, product events disabled")
		} else {
			publisher = amqpPublisher
			closers = append(closers, amqpPublisher.Close)
		}
	} else {
		logger.Info().Msg("product events disabled")
	}

	if err := repo.Ping(ctx); err != nil {
		closeAll()
		return nil, fmt.Errorf("product store is not reachable: %w", err)
	}

	deps := NewDependencies(repo, publisher, logger)
	deps.closers = closers

	return deps, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.ProductRepository, func() error, error) {
	logger = logger.With().Str("store", cfg.Store.Driver).Logger()

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		connString := cfg.Database.ConnectionString()

		if cfg.Database.AutoMigrate {
			if err := database.MigrateUp(connString, logger); err != nil {
				return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		pool, err := database.NewPool(ctx, connString, database.PoolConfigFrom(cfg.Database), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		return repository.NewProductRepository(pool, logger), func() error {
			pool.Close()
			return nil
		}, nil

	case config.DriverSQLite:
		db, err := repository.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to access sqlite connection: %w", err)
		}

		logger.Info().Str("path", cfg.Store.SQLitePath).Msg("sqlite store opened")

		return repository.NewGormProductRepository(db, logger), sqlDB.Close, nil

	case config.DriverMemory:
		logger.Info().Msg("using in-memory store, data is lost on shutdown")
		return repository.NewMemoryProductRepository(logger), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// Close releases the store and publisher in reverse order of acquisition.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil

	return errors.Join(errs...)
}

// SetupHTTPHandler builds the routed HTTP handler for the product API.
func SetupHTTPHandler(deps *Dependencies) http.Handler {
	productHandler := handler.NewProductHandler(deps.ProductService, deps.Logger)
	healthHandler := handler.NewHealthHandler(deps.Repository, deps.Logger)

	return router.New(productHandler, healthHandler, deps.Logger)
}

// SetupHTTPServer creates the HTTP server for the product API.
func SetupHTTPServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      SetupHTTPHandler(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewSeedLoader returns a loader reading seed files from S3 when enabled,
// falling back to the local file system.
func NewSeedLoader(ctx context.Context, cfg config.SeedConfig, logger zerolog.Logger) seed.Loader {
	fileLoader := seed.NewFileLoader(logger)

	if !cfg.S3.Enabled {
		logger.Info().Msg("using local file system for seed files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := seed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return seed.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
}
