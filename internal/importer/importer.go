package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/salvageops/yardbook/internal/csvutil"
	"github.com/salvageops/yardbook/internal/logging"
	"github.com/salvageops/yardbook/internal/schema"
)

// Engine drives import runs. One Engine is safe to reuse across runs;
// each run builds its own match index. Concurrent runs over the same
// vehicle population are not coordinated here and should be serialized by
// the caller to preserve VIN uniqueness.
type Engine struct {
	vehicles VehicleStore
	metas    MetaStore
	mappings MappingSource
}

// New creates an import engine over the given collaborators.
func New(vehicles VehicleStore, metas MetaStore, mappings MappingSource) *Engine {
	return &Engine{
		vehicles: vehicles,
		metas:    metas,
		mappings: mappings,
	}
}

// Run performs one full pass over a CSV file for the given stage.
//
// The header row is validated against the stage's configured mapping
// before any data row is touched; a missing header aborts the whole run
// with a *HeaderNotFoundError naming the field. After that, row-level
// problems (short rows, unparseable dates or amounts, unmatched sale
// rows) are recorded in the report and never abort the run.
func (e *Engine) Run(ctx context.Context, stageKey string, file io.Reader, window RowWindow) (*ImportReport, error) {
	log := logging.FromContext(ctx).With("stage", stageKey)

	stage, ok := schema.ByKey(stageKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, stageKey)
	}

	mappings, err := e.mappings.StageMappings(ctx, stage.Key)
	if err != nil {
		return nil, fmt.Errorf("load header mappings: %w", err)
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMapping, stage.Key)
	}

	rows, err := csvutil.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	positions, err := validateHeaders(mappings, rows[0])
	if err != nil {
		return nil, err
	}

	identities, err := e.vehicles.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("build match index: %w", err)
	}
	index := newMatchIndex(identities)

	report := &ImportReport{Stage: stage.Key}

	for i, raw := range rows[1:] {
		line := i + 1 // 1-based data row number

		if window.Active() {
			if line < window.Start {
				continue
			}
			if line > window.End {
				break
			}
		}

		if csvutil.IsBlankRow(raw) {
			continue
		}
		if len(raw) < len(mappings) {
			report.Skipped++
			continue
		}

		row, err := normalizeRow(stage, raw, positions, line)
		if err != nil {
			report.Failed = append(report.Failed, FailedRow{Line: line, Reason: err.Error()})
			continue
		}

		if err := e.processRow(ctx, stage, row, index, report); err != nil {
			report.Failed = append(report.Failed, FailedRow{Line: line, Reason: err.Error()})
		}
	}

	log.Info("import run complete",
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
		"unresolved", len(report.Unresolved),
	)

	return report, nil
}

// validateHeaders resolves each configured mapping to a column index in
// the file's header row. Fails on the first missing header; import never
// proceeds with a partial mapping.
func validateHeaders(mappings []HeaderMapping, headerRow []string) (map[string]int, error) {
	header := csvutil.CleanHeader(headerRow)

	columns := make(map[string]int, len(header))
	for i, h := range header {
		if _, ok := columns[h]; !ok {
			columns[h] = i
		}
	}

	positions := make(map[string]int, len(mappings))
	for _, m := range mappings {
		pos, ok := columns[m.Header]
		if !ok {
			return nil, &HeaderNotFoundError{
				Field:    m.Field,
				Header:   m.Header,
				Required: requiredHeaders(mappings),
			}
		}
		positions[m.Field] = pos
	}
	return positions, nil
}

func requiredHeaders(mappings []HeaderMapping) []string {
	out := make([]string, len(mappings))
	for i, m := range mappings {
		out[i] = m.Header
	}
	return out
}

// processRow resolves the row's identity and applies the stage policy.
func (e *Engine) processRow(ctx context.Context, stage schema.Stage, row *NormalizedRow, index *matchIndex, report *ImportReport) error {
	switch stage.Phase {
	case schema.PhasePurchase:
		return e.processPurchaseRow(ctx, stage, row, index, report)
	case schema.PhaseInventory:
		return e.processInventoryRow(ctx, stage, row, index, report)
	case schema.PhaseSale:
		return e.processSaleRow(ctx, row, index, report)
	default:
		return fmt.Errorf("stage %q has no merge policy", stage.Key)
	}
}

// processPurchaseRow creates a vehicle for each VIN not yet in the
// registry. Rows carrying an already-known VIN are left untouched: the
// purchase export is the first sighting, later stages own updates.
func (e *Engine) processPurchaseRow(ctx context.Context, stage schema.Stage, row *NormalizedRow, index *matchIndex, report *ImportReport) error {
	if row.VIN == "" {
		// Copart purchase files track identifier-less rows for operator
		// follow-up; IAAI files simply drop them.
		if stage.Key == schema.CopartBuy.Key {
			report.Unresolved = append(report.Unresolved, UnresolvedRow{Line: row.Line, Lot: row.PurchaseLot})
		} else {
			report.Skipped++
		}
		return nil
	}

	if _, ok := index.byVIN(row.VIN); ok {
		report.Skipped++
		return nil
	}

	v, err := e.createFromPurchase(ctx, stage, row)
	if err != nil {
		return err
	}
	index.insert(VehicleIdentity{ID: v.ID, VIN: v.VIN, PurchaseLot: v.PurchaseLot})
	report.Created++
	return nil
}

// processInventoryRow matches by VIN and either refreshes the existing
// record (replace-all metadata) or creates the vehicle if no purchase
// record preceded it.
func (e *Engine) processInventoryRow(ctx context.Context, stage schema.Stage, row *NormalizedRow, index *matchIndex, report *ImportReport) error {
	if row.VIN == "" {
		report.Skipped++
		return nil
	}

	if id, ok := index.byVIN(row.VIN); ok {
		v, err := e.vehicles.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("load vehicle: %w", err)
		}
		if err := e.updateFromInventory(ctx, v, row); err != nil {
			return err
		}
		index.insert(VehicleIdentity{ID: v.ID, AuctionLot: v.AuctionLot})
		report.Updated++
		return nil
	}

	v, err := e.createFromInventory(ctx, stage, row)
	if err != nil {
		return err
	}
	index.insert(VehicleIdentity{ID: v.ID, VIN: v.VIN, AuctionLot: v.AuctionLot})
	report.Created++
	return nil
}

// processSaleRow matches by VIN first, then by lot number across the
// auction_lot/purchase_lot namespace. Sale rows never originate
// vehicles; an unmatched row goes on the unresolved list untouched.
func (e *Engine) processSaleRow(ctx context.Context, row *NormalizedRow, index *matchIndex, report *ImportReport) error {
	id, matched := index.byVIN(row.VIN)
	if !matched {
		var collision bool
		id, matched, collision = index.byLot(row.Lot)
		if collision {
			report.Collisions = append(report.Collisions, LotCollision{Line: row.Line, Lot: row.Lot})
		}
	}

	if !matched {
		report.Unresolved = append(report.Unresolved, UnresolvedRow{Line: row.Line, Lot: row.Lot, VIN: row.VIN})
		return nil
	}

	v, err := e.vehicles.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load vehicle: %w", err)
	}
	if err := e.mergeSale(ctx, v, row); err != nil {
		return err
	}
	index.insert(VehicleIdentity{ID: v.ID, AuctionLot: v.AuctionLot})
	report.Updated++
	return nil
}
