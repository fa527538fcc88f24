package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/salvageops/yardbook/internal/csvutil"
	"github.com/salvageops/yardbook/internal/schema"
)

// normalize.go turns raw CSV cells into canonical values. Auction exports
// are messy: currency cells carry symbols and separators, dates arrive in
// whatever format the portal felt like that week, and identifiers pick up
// stray whitespace in transit.

// numericRegex validates a cleaned amount string. Matches integers,
// decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// whitespaceRegex matches runs of whitespace inside identifiers.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// TwoDigitYearPivot defines how 2-digit years are interpreted: parsed
// years more than this many years in the future are shifted back a
// century.
var TwoDigitYearPivot = 20

// canonicalDateLayout is the normalized form all dates are rendered to.
const canonicalDateLayout = "2006-01-02"

// Date layouts split by year format for proper 2-digit year handling.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// NormalizedRow holds the canonical values extracted from one data row.
// Only the fields belonging to the row's stage are populated.
type NormalizedRow struct {
	Line int // 1-based data row number (header row excluded)

	VIN         string
	Lot         string // sale-stage match lot
	PurchaseLot string
	AuctionLot  string
	Location    string
	Description string

	ClaimNumber       string
	Status            string
	PrimaryDamage     string
	SecondaryDamage   string
	Keys              string
	DrivabilityRating string
	Odometer          string
	OdometerBrand     string
	SaleTitleType     string
	SaleTitleState    string
	DaysInYard        string

	LeftLocation string // YYYY-MM-DD, empty when optional and absent
	DatePaid     string
	SaleDate     string

	InvoiceAmount string
	SalePrice     string
}

// NormalizeIdentifier trims surrounding whitespace and removes all
// internal whitespace. VINs and lot numbers must compare byte-equal after
// passing through any number of spreadsheet round-trips.
func NormalizeIdentifier(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), "")
}

// ParseDate parses a calendar date permissively and renders it canonical.
// Returns an error when no known layout matches.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	// 4-digit year layouts first; they are unambiguous.
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalDateLayout), nil
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t.Format(canonicalDateLayout), nil
		}
	}

	return "", fmt.Errorf("unparseable date %q", s)
}

// ParseAmount strips currency decoration from a money cell and validates
// the remainder as a decimal. Handles "$", the literal "USD", thousands
// separators, and accounting-style negatives "(123.45)".
func ParseAmount(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "USD", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return "", fmt.Errorf("unparseable amount %q", s)
	}
	return s, nil
}

// normalizeRow extracts and normalizes the stage's canonical fields from
// a raw row using the validated column positions. A returned error is a
// row-level failure; the run continues with the next row.
func normalizeRow(stage schema.Stage, raw []string, positions map[string]int, line int) (*NormalizedRow, error) {
	row := &NormalizedRow{Line: line}

	cell := func(key string) string {
		pos, ok := positions[key]
		if !ok || pos >= len(raw) {
			return ""
		}
		return csvutil.CleanCell(raw[pos])
	}

	for _, f := range stage.Fields {
		value := cell(f.Key)

		switch f.Type {
		case schema.FieldVIN, schema.FieldLot:
			value = NormalizeIdentifier(value)
		case schema.FieldDate:
			if value == "" && f.Optional {
				break
			}
			parsed, err := ParseDate(value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Key, err)
			}
			value = parsed
		case schema.FieldAmount:
			if value == "" && f.Optional {
				// Blank sale prices are zero-filled rather than null.
				value = "0"
				break
			}
			parsed, err := ParseAmount(value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Key, err)
			}
			value = parsed
		}

		if err := row.set(f.Key, value); err != nil {
			return nil, err
		}
	}

	if stage.Key == schema.IaaiBuy.Key {
		row.Description = composeDescription(cell(schema.FieldKeyYear), cell(schema.FieldKeyMake), cell(schema.FieldKeyModel))
	}

	return row, nil
}

// composeDescription joins year/make/model, collapsing to a single value
// when all three cells carry identical text (some IAAI exports repeat the
// full description in each of the three columns).
func composeDescription(year, make, model string) string {
	if year == make && make == model {
		return year
	}
	return fmt.Sprintf("%s %s %s", year, make, model)
}

// set assigns a canonical value to its struct field.
func (r *NormalizedRow) set(key, value string) error {
	switch key {
	case schema.FieldKeyVIN:
		r.VIN = value
	case schema.FieldKeyLot:
		r.Lot = value
	case schema.FieldKeyPurchaseLot:
		r.PurchaseLot = value
	case schema.FieldKeyAuctionLot:
		r.AuctionLot = value
	case schema.FieldKeyLocation:
		r.Location = value
	case schema.FieldKeyDescription:
		r.Description = value
	case schema.FieldKeyYear, schema.FieldKeyMake, schema.FieldKeyModel:
		// Folded into Description after field extraction.
	case schema.FieldKeyClaimNumber:
		r.ClaimNumber = value
	case schema.FieldKeyStatus:
		r.Status = value
	case schema.FieldKeyPrimaryDamage:
		r.PrimaryDamage = value
	case schema.FieldKeySecondaryDamage:
		r.SecondaryDamage = value
	case schema.FieldKeyKeys:
		r.Keys = value
	case schema.FieldKeyDrivabilityRating:
		r.DrivabilityRating = value
	case schema.FieldKeyOdometer:
		r.Odometer = value
	case schema.FieldKeyOdometerBrand:
		r.OdometerBrand = value
	case schema.FieldKeySaleTitleType:
		r.SaleTitleType = value
	case schema.FieldKeySaleTitleState:
		r.SaleTitleState = value
	case schema.FieldKeyDaysInYard:
		r.DaysInYard = value
	case schema.FieldKeyLeftLocation:
		r.LeftLocation = value
	case schema.FieldKeyDatePaid:
		r.DatePaid = value
	case schema.FieldKeySaleDate:
		r.SaleDate = value
	case schema.FieldKeyInvoiceAmount:
		r.InvoiceAmount = value
	case schema.FieldKeySalePrice:
		r.SalePrice = value
	default:
		return fmt.Errorf("unrecognized canonical field %q", key)
	}
	return nil
}

// daysInYard parses the mirrored sort field, tolerating blank cells.
func (r *NormalizedRow) daysInYard() (int, bool) {
	if r.DaysInYard == "" {
		return 0, false
	}
	n, err := strconv.Atoi(r.DaysInYard)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatSummary(created, updated int) string {
	return fmt.Sprintf("%d new vehicles inserted, %d updated", created, updated)
}
