// Package importer implements the CSV reconciliation engine: header
// validation against the configured stage mapping, row normalization,
// vehicle identity resolution by VIN and lot number, and the
// stage-specific metadata merge policies.
//
// The package has no HTTP or database dependencies; persistence is
// reached through the VehicleStore, MetaStore, and MappingSource
// interfaces so the engine can run against any backend.
package importer

import (
	"context"

	"github.com/google/uuid"
)

// Vehicle is the identity and summary record for one unit in the yard.
// Dates are canonical YYYY-MM-DD strings and InvoiceAmount is a plain
// decimal string; empty means not set.
type Vehicle struct {
	ID            uuid.UUID `json:"id"`
	VIN           string    `json:"vin"`
	PurchaseLot   string    `json:"purchase_lot,omitempty"`
	AuctionLot    string    `json:"auction_lot,omitempty"`
	Location      string    `json:"location,omitempty"`
	Description   string    `json:"description,omitempty"`
	Source        string    `json:"source,omitempty"`
	LeftLocation  string    `json:"left_location,omitempty"`
	DatePaid      string    `json:"date_paid,omitempty"`
	InvoiceAmount string    `json:"invoice_amount,omitempty"`
	DaysInYard    int       `json:"days_in_yard,omitempty"`
}

// Meta is one entry of a vehicle's flexible attribute bag. At most one
// entry exists per (vehicle, key) pair.
type Meta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// VehicleIdentity is the slice of a vehicle record needed to build the
// per-run match index.
type VehicleIdentity struct {
	ID          uuid.UUID
	VIN         string
	PurchaseLot string
	AuctionLot  string
}

// HeaderMapping pairs a canonical field with the literal source-header
// text configured for a stage.
type HeaderMapping struct {
	Field  string
	Header string
}

// VehicleStore is the persistent vehicle registry.
type VehicleStore interface {
	// ListIdentities returns the match keys of every stored vehicle.
	// Called once at the start of an import run.
	ListIdentities(ctx context.Context) ([]VehicleIdentity, error)
	Get(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	// Create persists a new vehicle and assigns its ID.
	Create(ctx context.Context, v *Vehicle) error
	Update(ctx context.Context, v *Vehicle) error
}

// MetaStore is the flexible key-value attribute store.
type MetaStore interface {
	// Replace deletes all metadata for the vehicle and inserts the given
	// set in one operation.
	Replace(ctx context.Context, vehicleID uuid.UUID, metas []Meta) error
	// Upsert inserts or updates a single (vehicle, key) entry.
	Upsert(ctx context.Context, vehicleID uuid.UUID, key, value string) error
}

// MappingSource resolves a stage key to its configured header mappings,
// in canonical-field order. An empty result means the stage is not
// configured.
type MappingSource interface {
	StageMappings(ctx context.Context, stage string) ([]HeaderMapping, error)
}

// RowWindow restricts an import run to an inclusive 1-based range of data
// rows. The window is only applied when both bounds are non-zero; large
// files are processed in batches by advancing it between runs.
type RowWindow struct {
	Start int
	End   int
}

// Active reports whether the window restricts the run.
func (w RowWindow) Active() bool {
	return w.Start != 0 && w.End != 0
}

// Contains reports whether the 1-based data row falls inside the window.
func (w RowWindow) Contains(line int) bool {
	return !w.Active() || (line >= w.Start && line <= w.End)
}

// FailedRow records a row that errored during normalization or merge.
// Row-level failures never abort the run.
type FailedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// UnresolvedRow records a sale row (or a blank-VIN purchase row) that
// could not be matched to any vehicle, for operator follow-up.
type UnresolvedRow struct {
	Line int    `json:"line"`
	Lot  string `json:"lot,omitempty"`
	VIN  string `json:"vin,omitempty"`
}

// LotCollision records a sale-stage lot value that matched different
// vehicles in the auction_lot and purchase_lot namespaces. The
// auction_lot match wins, but the ambiguity is surfaced rather than
// silently resolved.
type LotCollision struct {
	Line int    `json:"line"`
	Lot  string `json:"lot"`
}

// ImportReport is the outcome of one import run.
type ImportReport struct {
	Stage      string          `json:"stage"`
	Created    int             `json:"created"`
	Updated    int             `json:"updated"`
	Skipped    int             `json:"skipped"`
	Failed     []FailedRow     `json:"failed,omitempty"`
	Unresolved []UnresolvedRow `json:"unresolved,omitempty"`
	Collisions []LotCollision  `json:"collisions,omitempty"`
}

// Summary returns the human-readable counts message.
func (r *ImportReport) Summary() string {
	return formatSummary(r.Created, r.Updated)
}
