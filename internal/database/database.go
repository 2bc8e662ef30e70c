package database

import (
	"context"
	"fmt"
	"time"

	"product-api/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolConfig holds database connection pool configuration.
type PoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPoolConfig returns sensible default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:          25,
		MinConns:          5,
		MaxConnLifetime:   1 * time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 1 * time.Minute,
	}
}

// PoolConfigFrom derives pool settings from the database configuration.
func PoolConfigFrom(cfg config.DatabaseConfig) PoolConfig {
	poolCfg := DefaultPoolConfig()
	poolCfg.MaxConns = int32(cfg.MaxConnections)
	poolCfg.MinConns = int32(cfg.MinConnections)
	poolCfg.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	return poolCfg
}

// NewPool creates a new PostgreSQL connection pool and verifies connectivity by
// pinging the database.
func NewPool(ctx context.Context, connString string, poolCfg PoolConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	pgCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pgCfg.MaxConns = poolCfg.MaxConns
	pgCfg.MinConns = poolCfg.MinConns
	pgCfg.MaxConnLifetime = poolCfg.MaxConnLifetime
	pgCfg.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	pgCfg.HealthCheckPeriod = poolCfg.HealthCheckPeriod

	logger.Info().
		Str("host", pgCfg.ConnConfig.Host).
		Uint16("port", pgCfg.ConnConfig.Port).
		Str("database", pgCfg.ConnConfig.Database).
		Int32("max_connections", poolCfg.MaxConns).
		Int32("min_connections", poolCfg.MinConns).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}
