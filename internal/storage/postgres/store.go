// Package postgres persists build reports in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/buildcalc/internal/config"
)

// ErrSchemaMissing is returned by Open when the report table has not been migrated.
var ErrSchemaMissing = errors.New("report schema missing: run cmd/migrate first")

// Store owns the connection pool of the report store and its repositories.
type Store struct {
	pool    *pgxpool.Pool
	logger  *zap.Logger
	Reports *ReportRepository
}

// Open connects to the database described by cfg and verifies that the
// report schema is present.
//
// Precondition: cfg.Enabled must be true; logger must be non-nil.
// Postcondition: returns a ready Store, or a non-nil error with no open
// connections. ErrSchemaMissing is wrapped when migrations were not applied.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if !cfg.Enabled {
		return nil, errors.New("postgres: database.enabled is false")
	}
	start := time.Now()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	var exists bool
	if err := pool.QueryRow(ctx, `SELECT to_regclass('build_reports') IS NOT NULL`).Scan(&exists); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: checking schema: %w", err)
	}
	if !exists {
		pool.Close()
		return nil, fmt.Errorf("postgres: %s: %w", cfg.Name, ErrSchemaMissing)
	}

	logger.Info("report store connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Store{pool: pool, logger: logger, Reports: NewReportRepository(pool)}, nil
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: the store must not be closed.
func (s *Store) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases all pool resources.
func (s *Store) Close() {
	s.pool.Close()
	s.logger.Debug("report store closed")
}
