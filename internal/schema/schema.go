// Package schema defines the import stages and the canonical fields each
// stage reads from its CSV export. Canonical field names are internal and
// stage-independent; the literal header text they map to lives in the
// csv_headers configuration table and varies per auction source.
package schema

// FieldType is the expected data type of a canonical field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldVIN            // trimmed, internal whitespace removed
	FieldLot            // trimmed, internal whitespace removed
	FieldDate           // normalized to YYYY-MM-DD
	FieldAmount         // currency symbols and separators stripped
)

// Field is one canonical field of a stage's row schema.
type Field struct {
	Key      string    // canonical name, e.g. "invoice_amount"
	Type     FieldType
	Optional bool // blank source cell is accepted and yields an empty value
}

// Phase is the lifecycle position of an import stage. The merge policy is
// keyed off the phase; the header mapping is keyed off the stage.
type Phase int

const (
	PhasePurchase Phase = iota
	PhaseInventory
	PhaseSale
)

// Stage couples a header-mapping key with a source and a merge policy.
type Stage struct {
	Key    string // mapping lookup key, e.g. "copart_buy"
	Source string // originating auction house recorded on created vehicles
	Phase  Phase
	Fields []Field // ordered canonical fields required from the file
}

// FieldKeys returns the canonical field names in declaration order.
func (s Stage) FieldKeys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Field returns the stage field with the given canonical key.
func (s Stage) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Canonical field names.
const (
	FieldKeyVIN               = "vin"
	FieldKeyLot               = "lot"
	FieldKeyPurchaseLot       = "purchase_lot"
	FieldKeyAuctionLot        = "auction_lot"
	FieldKeyLocation          = "location"
	FieldKeyDescription       = "description"
	FieldKeyYear              = "year"
	FieldKeyMake              = "make"
	FieldKeyModel             = "model"
	FieldKeyLeftLocation      = "left_location"
	FieldKeyDatePaid          = "date_paid"
	FieldKeyInvoiceAmount     = "invoice_amount"
	FieldKeyClaimNumber       = "claim_number"
	FieldKeyStatus            = "status"
	FieldKeyPrimaryDamage     = "primary_damage"
	FieldKeySecondaryDamage   = "secondary_damage"
	FieldKeyKeys              = "keys"
	FieldKeyDrivabilityRating = "drivability_rating"
	FieldKeyOdometer          = "odometer"
	FieldKeyOdometerBrand     = "odometer_brand"
	FieldKeySaleTitleType     = "sale_title_type"
	FieldKeySaleTitleState    = "sale_title_state"
	FieldKeyDaysInYard        = "days_in_yard"
	FieldKeySaleDate          = "sale_date"
	FieldKeySalePrice         = "sale_price"
)

// Metadata keys written to the vehicle_metas attribute bag. Numeric and
// date values are stored as normalized strings.
const (
	MetaClaimNumber       = "claim_number"
	MetaStatus            = "status"
	MetaPrimaryDamage     = "primary_damage"
	MetaSecondaryDamage   = "secondary_damage"
	MetaKeys              = "keys"
	MetaDrivabilityRating = "drivability_rating"
	MetaOdometer          = "odometer"
	MetaOdometerBrand     = "odometer_brand"
	MetaSaleTitleType     = "sale_title_type"
	MetaSaleTitleState    = "sale_title_state"
	MetaDaysInYard        = "days_in_yard"
	MetaSaleDate          = "sale_date"
	MetaSalePrice         = "sale_price"
	MetaLocation          = "location"
	MetaInvoiceAmount     = "invoice_amount"
)

// StatusSold is the terminal status written by the sale stage.
const StatusSold = "SOLD"
