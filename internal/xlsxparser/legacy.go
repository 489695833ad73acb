// =============================================================================
// Tax Invoice Generator - Legacy XLS Reader
// =============================================================================
//
// Some portals still hand out purchase orders as Excel 97-2003 workbooks
// (BIFF8 inside an OLE2 container). excelize only reads the OOXML formats, so
// these files go through extrame/xls and then share the table building in
// parser.go.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
)

// legacyCharset is used for 8-bit strings in BIFF records.
const legacyCharset = "utf-8"

// IsLegacy reports whether path names an Excel 97-2003 workbook.
func IsLegacy(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xls")
}

// readLegacySheet returns the cell text of one sheet of an .xls workbook. An
// empty sheetName selects the first sheet. Rows keep their column positions;
// missing rows come back empty.
func readLegacySheet(path, sheetName string) (name string, rows [][]string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	// The BIFF decoder panics on some truncated records.
	defer func() {
		if r := recover(); r != nil {
			name, rows = "", nil
			err = fmt.Errorf("failed to read workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(file, legacyCharset)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet, err := findLegacySheet(wb, sheetName)
	if err != nil {
		return "", nil, err
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}

	return sheet.Name, rows, nil
}

// findLegacySheet picks the named sheet, or the first one.
func findLegacySheet(wb *xls.WorkBook, sheetName string) (*xls.WorkSheet, error) {
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrEmptyWorkbook)
	}
	if sheetName == "" {
		return wb.GetSheet(0), nil
	}

	for i := 0; i < wb.NumSheets(); i++ {
		if sheet := wb.GetSheet(i); sheet != nil && sheet.Name == sheetName {
			return sheet, nil
		}
	}
	return nil, fmt.Errorf("sheet %q not found", sheetName)
}
