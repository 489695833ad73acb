package xlsxparser

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

// writeWorkbook saves rows into the first sheet of a new workbook.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "15467510000244_20250422_055526.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	return path
}

var header = []interface{}{
	"S.No", "Item Code", "HSN Code", " Product Description ", "Grammage", "Quantity", "Landing Rate", "MRP",
}

func TestParse(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		header,
		{1, 590001234, 19059020, "Rusk Premium", "300 g", 24, 38.5, 45},
		{},
		{2, 590001235, 19059020, "  Toast  ", "200 g", "12", "n/a", 30},
		{3, 590001236, 19053100, "Cookies", "", 6},
	})

	table, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if table.SourceFile != path {
		t.Errorf("SourceFile = %q", table.SourceFile)
	}
	if table.Headers[3] != types.ColDescription {
		t.Errorf("header not trimmed: %q", table.Headers[3])
	}
	if len(table.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3 (empty row skipped)", len(table.Rows))
	}

	first := table.Rows[0]
	checks := map[string]string{
		types.ColItemCode:    "590001234",
		types.ColHSNCode:     "19059020",
		types.ColDescription: "Rusk Premium",
		types.ColQuantity:    "24",
		types.ColLandingRate: "38.5",
	}
	for col, want := range checks {
		if got := first[col]; got != want {
			t.Errorf("row 1 %s = %q, want %q", col, got, want)
		}
	}

	// Raw text is passed through untouched; coercion happens later.
	if got := table.Rows[1][types.ColDescription]; got != "  Toast  " {
		t.Errorf("row 2 description = %q", got)
	}
	if got := table.Rows[1][types.ColLandingRate]; got != "n/a" {
		t.Errorf("row 2 landing rate = %q", got)
	}

	// A short row has no entry for the trailing columns.
	if _, ok := table.Rows[2][types.ColLandingRate]; ok {
		t.Errorf("row 3 has a landing rate entry: %v", table.Rows[2])
	}
}

func TestParseMissingColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Item Code", "HSN Code", "Product Description", "Grammage", "Quantity"},
		{1, 2, "x", "y", 3},
	})

	_, err := Parse(path)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Parse() error = %v, want ErrMissingColumn", err)
	}
}

func TestParseEmptySheet(t *testing.T) {
	path := writeWorkbook(t, nil)

	if _, err := Parse(path); !errors.Is(err, ErrEmptyWorkbook) {
		t.Fatalf("Parse() error = %v, want ErrEmptyWorkbook", err)
	}
}

func TestParseHeaderOnly(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{header})

	table, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("len(Rows) = %d, want 0", len(table.Rows))
	}
}

func TestParseWithOptionsHeaderRow(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Purchase Order 15467510000244"},
		header,
		{1, 590001234, 19059020, "Rusk", "300 g", 24, 38.5},
	})

	opts := DefaultOptions()
	opts.HeaderRow = 1

	table, err := ParseWithOptions(path, opts)
	if err != nil {
		t.Fatalf("ParseWithOptions() error = %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0][types.ColQuantity] != "24" {
		t.Errorf("Rows = %v", table.Rows)
	}
}

func TestParseNotAWorkbook(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatal("Parse() of missing file succeeded")
	}
}
