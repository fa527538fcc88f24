package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/salvageops/yardbook/internal/importer"
)

// ErrNotFound is returned when a vehicle does not exist.
var ErrNotFound = errors.New("vehicle not found")

// VehicleRepository persists vehicles. It satisfies importer.VehicleStore.
type VehicleRepository struct {
	db *DB
}

func NewVehicleRepository(db *DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// ListIdentities returns the match keys of every stored vehicle. The
// import engine calls this once per run to build its in-memory index.
func (r *VehicleRepository) ListIdentities(ctx context.Context) ([]importer.VehicleIdentity, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, vin, purchase_lot, auction_lot
		FROM vehicles
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list vehicle identities: %w", err)
	}
	defer rows.Close()

	var out []importer.VehicleIdentity
	for rows.Next() {
		var id importer.VehicleIdentity
		if err := rows.Scan(&id.ID, &id.VIN, &id.PurchaseLot, &id.AuctionLot); err != nil {
			return nil, fmt.Errorf("scan vehicle identity: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicle identities: %w", err)
	}
	return out, nil
}

// Get loads one vehicle by primary key.
func (r *VehicleRepository) Get(ctx context.Context, id uuid.UUID) (*importer.Vehicle, error) {
	v := &importer.Vehicle{}
	var (
		leftLocation  pgtype.Date
		datePaid      pgtype.Date
		invoiceAmount pgtype.Text
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, vin, purchase_lot, auction_lot, location, description, source,
			left_location, date_paid, invoice_amount::text, days_in_yard
		FROM vehicles WHERE id = $1
	`, id).Scan(
		&v.ID,
		&v.VIN,
		&v.PurchaseLot,
		&v.AuctionLot,
		&v.Location,
		&v.Description,
		&v.Source,
		&leftLocation,
		&datePaid,
		&invoiceAmount,
		&v.DaysInYard,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}

	v.LeftLocation = dateString(leftLocation)
	v.DatePaid = dateString(datePaid)
	v.InvoiceAmount = textString(invoiceAmount)
	return v, nil
}

// Create inserts a new vehicle and assigns its ID.
func (r *VehicleRepository) Create(ctx context.Context, v *importer.Vehicle) error {
	v.ID = uuid.New()
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO vehicles (id, vin, purchase_lot, auction_lot, location, description,
			source, left_location, date_paid, invoice_amount, days_in_yard)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		v.ID,
		v.VIN,
		v.PurchaseLot,
		v.AuctionLot,
		v.Location,
		v.Description,
		v.Source,
		pgDate(v.LeftLocation),
		pgDate(v.DatePaid),
		pgNumeric(v.InvoiceAmount),
		v.DaysInYard,
	)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// Update rewrites a vehicle's summary fields.
func (r *VehicleRepository) Update(ctx context.Context, v *importer.Vehicle) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE vehicles
		SET vin = $2, purchase_lot = $3, auction_lot = $4, location = $5,
			description = $6, source = $7, left_location = $8, date_paid = $9,
			invoice_amount = $10, days_in_yard = $11, updated_at = now()
		WHERE id = $1
	`,
		v.ID,
		v.VIN,
		v.PurchaseLot,
		v.AuctionLot,
		v.Location,
		v.Description,
		v.Source,
		pgDate(v.LeftLocation),
		pgDate(v.DatePaid),
		pgNumeric(v.InvoiceAmount),
		v.DaysInYard,
	)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a vehicle; its metadata cascades. The import pipeline
// never calls this, it backs the administrative delete only.
func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DuplicateVIN is one VIN held by more than one vehicle record.
type DuplicateVIN struct {
	VIN   string `json:"vin"`
	Count int    `json:"count"`
}

// DuplicateVINs reports VINs that violate the uniqueness invariant.
// Used by the hygiene endpoint; a healthy registry returns nothing.
func (r *VehicleRepository) DuplicateVINs(ctx context.Context) ([]DuplicateVIN, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT vin, COUNT(*) AS count
		FROM vehicles
		WHERE vin <> ''
		GROUP BY vin
		HAVING COUNT(*) > 1
		ORDER BY vin
	`)
	if err != nil {
		return nil, fmt.Errorf("list duplicate vins: %w", err)
	}
	defer rows.Close()

	var out []DuplicateVIN
	for rows.Next() {
		var d DuplicateVIN
		if err := rows.Scan(&d.VIN, &d.Count); err != nil {
			return nil, fmt.Errorf("scan duplicate vin: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list duplicate vins: %w", err)
	}
	return out, nil
}
