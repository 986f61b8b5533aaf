// Package postgres caches computed probability cells in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/risus/internal/config"
)

// applicationName tags cache connections in pg_stat_activity.
const applicationName = "risus"

// Pool is the connection pool of the probability cache.
type Pool struct {
	db *pgxpool.Pool
}

// Open connects to the cache database described by cfg and verifies it
// answers a ping.
//
// Precondition: cfg holds valid connection settings; cfg.Enabled is not consulted.
// Postcondition: Returns a connected Pool or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{db: db}, nil
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.db.Ping(ctx)
}

// Cells returns the probability cell repository on this pool.
func (p *Pool) Cells() *CellRepository {
	return NewCellRepository(p.db)
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.db
}

// Close releases all connections; the Pool is unusable afterwards.
func (p *Pool) Close() {
	p.db.Close()
}
