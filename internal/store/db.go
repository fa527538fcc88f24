// Package store implements Postgres persistence for the vehicle
// registry, the vehicle_metas attribute bag, and the csv_headers
// mapping configuration, using pgx repositories.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB wraps an established pool. Pool configuration and ping happen in
// main so startup failures surface before any repository exists.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{Pool: pool}
}

// Close releases the pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate applies the schema migrations in order. Statements are
// idempotent; running Migrate on every startup is safe.
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateVehicles,
		migrationCreateVehicleMetas,
		migrationCreateCSVHeaders,
		migrationSeedCSVHeaders,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
