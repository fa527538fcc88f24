package importer

import (
	"context"
	"fmt"

	"github.com/salvageops/yardbook/internal/schema"
)

// merge.go applies the stage-specific merge policy once identity is
// resolved. Purchase creates minimal records, inventory treats each
// re-export as an authoritative snapshot (replace-all), and sale layers
// targeted upserts onto vehicles it expects to already exist.

// createFromPurchase inserts the minimal vehicle record for a purchase
// row and mirrors location and invoice_amount into the attribute bag for
// reporting.
func (e *Engine) createFromPurchase(ctx context.Context, stage schema.Stage, row *NormalizedRow) (*Vehicle, error) {
	v := &Vehicle{
		VIN:           row.VIN,
		PurchaseLot:   row.PurchaseLot,
		Location:      row.Location,
		Description:   row.Description,
		Source:        stage.Source,
		LeftLocation:  row.LeftLocation,
		DatePaid:      row.DatePaid,
		InvoiceAmount: row.InvoiceAmount,
	}
	if err := e.vehicles.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	if err := e.metas.Upsert(ctx, v.ID, schema.MetaLocation, row.Location); err != nil {
		return nil, fmt.Errorf("upsert location meta: %w", err)
	}
	if err := e.metas.Upsert(ctx, v.ID, schema.MetaInvoiceAmount, row.InvoiceAmount); err != nil {
		return nil, fmt.Errorf("upsert invoice_amount meta: %w", err)
	}
	return v, nil
}

// createFromInventory inserts a vehicle first seen at yard intake (no
// purchase record exists) along with its full metadata snapshot.
func (e *Engine) createFromInventory(ctx context.Context, stage schema.Stage, row *NormalizedRow) (*Vehicle, error) {
	v := &Vehicle{
		VIN:         row.VIN,
		AuctionLot:  row.AuctionLot,
		Location:    row.Location,
		Description: row.Description,
		Source:      stage.Source,
	}
	if days, ok := row.daysInYard(); ok {
		v.DaysInYard = days
	}
	if err := e.vehicles.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	if err := e.metas.Replace(ctx, v.ID, inventoryMetas(row)); err != nil {
		return nil, fmt.Errorf("insert metas: %w", err)
	}
	return v, nil
}

// updateFromInventory refreshes an existing vehicle from an inventory
// re-export. All prior metadata is dropped and the fresh snapshot
// inserted; the re-export is authoritative for every key it carries.
func (e *Engine) updateFromInventory(ctx context.Context, v *Vehicle, row *NormalizedRow) error {
	v.AuctionLot = row.AuctionLot
	v.Location = row.Location
	if days, ok := row.daysInYard(); ok {
		// Mirrored onto the summary record so listings can sort on it
		// without joining the attribute bag.
		v.DaysInYard = days
	}
	if err := e.vehicles.Update(ctx, v); err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}

	if err := e.metas.Replace(ctx, v.ID, inventoryMetas(row)); err != nil {
		return fmt.Errorf("replace metas: %w", err)
	}
	return nil
}

// inventoryMetas builds the metadata snapshot for an inventory row.
// Required keys are always written; damage and title keys only when the
// source cell is non-empty.
func inventoryMetas(row *NormalizedRow) []Meta {
	metas := []Meta{
		{Key: schema.MetaClaimNumber, Value: row.ClaimNumber},
		{Key: schema.MetaStatus, Value: row.Status},
		{Key: schema.MetaPrimaryDamage, Value: row.PrimaryDamage},
		{Key: schema.MetaKeys, Value: row.Keys},
		{Key: schema.MetaDrivabilityRating, Value: row.DrivabilityRating},
		{Key: schema.MetaOdometer, Value: row.Odometer},
		{Key: schema.MetaOdometerBrand, Value: row.OdometerBrand},
		{Key: schema.MetaDaysInYard, Value: row.DaysInYard},
	}
	if row.SecondaryDamage != "" {
		metas = append(metas, Meta{Key: schema.MetaSecondaryDamage, Value: row.SecondaryDamage})
	}
	if row.SaleTitleType != "" {
		metas = append(metas, Meta{Key: schema.MetaSaleTitleType, Value: row.SaleTitleType})
	}
	if row.SaleTitleState != "" {
		metas = append(metas, Meta{Key: schema.MetaSaleTitleState, Value: row.SaleTitleState})
	}
	return metas
}

// mergeSale applies the sale-stage upserts to a matched vehicle: sale
// date and price, a terminal SOLD status, and the auction lot the unit
// actually sold under. Other metadata is untouched.
func (e *Engine) mergeSale(ctx context.Context, v *Vehicle, row *NormalizedRow) error {
	if err := e.metas.Upsert(ctx, v.ID, schema.MetaSaleDate, row.SaleDate); err != nil {
		return fmt.Errorf("upsert sale_date meta: %w", err)
	}
	if err := e.metas.Upsert(ctx, v.ID, schema.MetaSalePrice, row.SalePrice); err != nil {
		return fmt.Errorf("upsert sale_price meta: %w", err)
	}
	if err := e.metas.Upsert(ctx, v.ID, schema.MetaStatus, schema.StatusSold); err != nil {
		return fmt.Errorf("upsert status meta: %w", err)
	}

	v.AuctionLot = row.Lot
	if err := e.vehicles.Update(ctx, v); err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return nil
}
