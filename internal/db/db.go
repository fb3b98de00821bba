// Package db persists the unreachable-cell registry and the spawn cycle
// journal in PostgreSQL.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The journal is the only writer and startup restore the only reader, so a
// handful of connections is enough.
const (
	maxConns        = 4
	applicationName = "swarmspawn"
)

// DB owns the pool shared by the spawn repositories.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s: %w", cfg.ConnConfig.Database, err)
	}

	slog.Debug("database pool ready",
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
		"maxConns", cfg.MaxConns)

	return &DB{pool: pool}, nil
}

// Unreachable returns the repository for the unreachable-cell registry.
func (d *DB) Unreachable() *UnreachableRepository {
	return NewUnreachableRepository(d.pool)
}

// Cycles returns the repository for the spawn cycle journal.
func (d *DB) Cycles() *CycleRepository {
	return NewCycleRepository(d.pool)
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

func (d *DB) Close() {
	d.pool.Close()
}
