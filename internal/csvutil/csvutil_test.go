package csvutil

import (
	"strings"
	"testing"
)

func TestReadAll_RaggedRows(t *testing.T) {
	input := "a,b,c\n1,2\nx,y,z,w\n"

	rows, err := ReadAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if len(rows[1]) != 2 {
		t.Errorf("expected short row to keep 2 columns, got %d", len(rows[1]))
	}
	if len(rows[2]) != 4 {
		t.Errorf("expected wide row to keep 4 columns, got %d", len(rows[2]))
	}
}

func TestCleanHeader(t *testing.T) {
	header := []string{"\uFEFFVIN", " Lot/Inv # ", "Location"}

	got := CleanHeader(header)

	want := []string{"VIN", "Lot/Inv #", "Location"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCleanHeader_BOMOnlyFirstCell(t *testing.T) {
	header := []string{"VIN", "\uFEFFLot"}

	got := CleanHeader(header)

	if got[1] != "\uFEFFLot" {
		t.Errorf("BOM should only be stripped from the first cell, got %q", got[1])
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "abc", "abc"},
		{"whitespace", "  abc  ", "abc"},
		{"excel formula wrapper", `="00123"`, "00123"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
		{"formula wrapper with spaces", ` ="X7" `, "X7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsBlankRow(t *testing.T) {
	if !IsBlankRow([]string{"", "  ", "\t"}) {
		t.Error("expected whitespace-only row to be blank")
	}
	if IsBlankRow([]string{"", "x"}) {
		t.Error("expected row with content to not be blank")
	}
}
