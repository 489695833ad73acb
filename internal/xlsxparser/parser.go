// =============================================================================
// Tax Invoice Generator - XLSX Purchase Order Parser
// =============================================================================
//
// This module reads a purchase-order workbook exported by the customer's
// ordering portal. The first sheet holds a header row followed by one row per
// ordered article:
//
//   | S.No | Item Code | HSN Code | Product Description | Grammage | Quantity | Landing Rate | ... |
//   |------|-----------|----------|---------------------|----------|----------|--------------|-----|
//   | 1    | 590001234 | 19059020 | Rusk Premium        | 300 g    | 24       | 38.5         |     |
//
// Only the columns named in types.RequiredColumns are used; others are carried
// in the row maps and ignored downstream. Cells are returned as raw text (the
// stored value, not the display format) so numeric coercion sees "38.5" rather
// than "₹38.50".
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

// ErrMissingColumn is returned (wrapped with the column name) when the header
// row lacks a required column.
var ErrMissingColumn = types.ErrMissingColumn

// ErrEmptyWorkbook is returned when the workbook has no sheets or the selected
// sheet has no header row.
var ErrEmptyWorkbook = errors.New("workbook has no header row")

// =============================================================================
// OPTIONS
// =============================================================================

// Options selects where the purchase-order table lives in the workbook.
type Options struct {
	// SheetName is the sheet to read. Empty means the first sheet.
	SheetName string

	// HeaderRow is the 0-based row holding the column headers. Data starts on
	// the next row.
	// Default: 0 (Row 1)
	HeaderRow int

	// RequiredColumns are checked against the header row.
	// Default: types.RequiredColumns
	RequiredColumns []string
}

// DefaultOptions returns the layout used by the ordering portal exports.
func DefaultOptions() Options {
	return Options{
		HeaderRow:       0,
		RequiredColumns: types.RequiredColumns,
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a purchase-order workbook using the default layout.
func Parse(path string) (*types.SourceTable, error) {
	return ParseWithOptions(path, DefaultOptions())
}

// ParseWithOptions reads a purchase-order workbook.
//
// PARAMETERS:
//   - path: The path to the .xlsx/.xlsm workbook, or a legacy .xls one.
//   - opts: Sheet and header layout.
//
// RETURNS:
//   - The header-keyed rows of the sheet. Fully empty rows are skipped.
//   - An error if the file cannot be opened, has no header row, or lacks a
//     required column (ErrMissingColumn).
func ParseWithOptions(path string, opts Options) (*types.SourceTable, error) {
	var (
		sheetName string
		rows      [][]string
		err       error
	)
	if IsLegacy(path) {
		sheetName, rows, err = readLegacySheet(path, opts.SheetName)
	} else {
		sheetName, rows, err = readSheet(path, opts.SheetName)
	}
	if err != nil {
		return nil, err
	}

	if opts.HeaderRow >= len(rows) || isRowEmpty(rows[opts.HeaderRow]) {
		return nil, fmt.Errorf("%w: sheet %q", ErrEmptyWorkbook, sheetName)
	}

	table := &types.SourceTable{
		SourceFile: path,
		Headers:    cleanHeaders(rows[opts.HeaderRow]),
	}

	if err := table.RequireColumns(opts.RequiredColumns); err != nil {
		return nil, err
	}

	for i := opts.HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		table.Rows = append(table.Rows, rowToMap(table.Headers, row))
	}

	return table, nil
}

// readSheet returns the raw cell text of one sheet of an .xlsx/.xlsm
// workbook. An empty sheetName selects the first sheet.
func readSheet(path, sheetName string) (string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return "", nil, fmt.Errorf("%w: no sheets", ErrEmptyWorkbook)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}
	return sheetName, rows, nil
}

// cleanHeaders trims header cells. Headers are otherwise matched exactly.
func cleanHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// rowToMap keys a row by header. Cells beyond the last header and cells under
// a blank header are dropped. When a header repeats, the first column wins.
func rowToMap(headers, row []string) map[string]string {
	m := make(map[string]string, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		if i < len(row) {
			m[h] = row[i]
		}
	}
	return m
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
