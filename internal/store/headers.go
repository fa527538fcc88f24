package store

import (
	"context"
	"fmt"

	"github.com/salvageops/yardbook/internal/importer"
)

// HeaderRepository reads the csv_headers mapping configuration. It
// satisfies importer.MappingSource. The import core never writes here;
// mappings are maintained by operators.
type HeaderRepository struct {
	db *DB
}

func NewHeaderRepository(db *DB) *HeaderRepository {
	return &HeaderRepository{db: db}
}

// StageMappings returns the canonical-field to source-header mapping for
// a stage, in configured order. An empty result means the stage is not
// configured.
func (r *HeaderRepository) StageMappings(ctx context.Context, stage string) ([]importer.HeaderMapping, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT database_field, csv_header
		FROM csv_headers
		WHERE filename = $1
		ORDER BY position
	`, stage)
	if err != nil {
		return nil, fmt.Errorf("load header mappings for %s: %w", stage, err)
	}
	defer rows.Close()

	var out []importer.HeaderMapping
	for rows.Next() {
		var m importer.HeaderMapping
		if err := rows.Scan(&m.Field, &m.Header); err != nil {
			return nil, fmt.Errorf("scan header mapping: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load header mappings for %s: %w", stage, err)
	}
	return out, nil
}
