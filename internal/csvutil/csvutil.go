// Package csvutil provides CSV reading and cell cleanup helpers shared by
// the import pipeline. Auction exports arrive with a UTF-8 BOM, ragged row
// widths, and Excel artifacts, so reading is deliberately permissive.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadAll parses an entire CSV stream into rows. Rows may have differing
// column counts; width checks are the caller's responsibility.
func ReadAll(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// StripBOM removes a leading UTF-8 byte-order mark. Exports from auction
// portals prefix the first header cell with one.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// CleanHeader prepares a raw header row for position lookup: the BOM is
// stripped from the first cell and surrounding whitespace from every cell.
// Header text is otherwise left exact; matching is case-sensitive.
func CleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = StripBOM(h)
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// CleanCell trims surrounding whitespace and unwraps the Excel formula
// quoting (="value") that some exports apply to preserve leading zeros.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// IsBlankRow reports whether every cell in the row is empty or whitespace.
func IsBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
