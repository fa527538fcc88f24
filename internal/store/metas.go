package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/salvageops/yardbook/internal/importer"
)

// MetaRepository persists the flexible attribute bag. It satisfies
// importer.MetaStore.
type MetaRepository struct {
	db *DB
}

func NewMetaRepository(db *DB) *MetaRepository {
	return &MetaRepository{db: db}
}

// Replace deletes all metadata for the vehicle and inserts the fresh set
// in one transaction, so a failed insert cannot leave the vehicle
// stripped of its previous snapshot.
func (r *MetaRepository) Replace(ctx context.Context, vehicleID uuid.UUID, metas []importer.Meta) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace metas: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM vehicle_metas WHERE vehicle_id = $1`, vehicleID); err != nil {
		return fmt.Errorf("delete metas: %w", err)
	}

	for _, meta := range metas {
		if _, err := tx.Exec(ctx, `
			INSERT INTO vehicle_metas (vehicle_id, meta_key, meta_value)
			VALUES ($1, $2, $3)
		`, vehicleID, meta.Key, meta.Value); err != nil {
			return fmt.Errorf("insert meta %s: %w", meta.Key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace metas: %w", err)
	}
	return nil
}

// Upsert inserts or updates a single (vehicle, key) entry.
func (r *MetaRepository) Upsert(ctx context.Context, vehicleID uuid.UUID, key, value string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO vehicle_metas (vehicle_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (vehicle_id, meta_key)
		DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = now()
	`, vehicleID, key, value)
	if err != nil {
		return fmt.Errorf("upsert meta %s: %w", key, err)
	}
	return nil
}

// Map returns all metadata for a vehicle keyed by meta_key.
func (r *MetaRepository) Map(ctx context.Context, vehicleID uuid.UUID) (map[string]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT meta_key, meta_value
		FROM vehicle_metas
		WHERE vehicle_id = $1
	`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list metas: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list metas: %w", err)
	}
	return out, nil
}
