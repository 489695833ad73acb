// =============================================================================
// Tax Invoice Generator - XLSX Invoice Writer
// =============================================================================
//
// This module renders a BillRecord as a styled, print-ready workbook with a
// single "Invoice" sheet spanning columns A..L.
//
// SHEET LAYOUT:
//
//   Row  1      TAX INVOICE                                   (A:L, green)
//   Rows 2-4    company name / address / GST number           (A:L, green)
//   Row  5      BILL TO (A:D) | PLACE OF SUPPLY (E:H) | BILL DETAILS: (I:L)  (amber)
//   Rows 6-7    bill-to text  | place of supply     | invoice no, delivery date,
//                                                     vendor code, site code   (blue)
//   Row  8      GST: ... (A:F) | PO-... (G:L)                                  (blue)
//   Row  9      twelve column headers                                         (amber)
//   Row 10..    one row per line item, alternating fill
//   next        Sub Total with SUM formulas over the item rows
//   then        misc charges note, grand total label, thank-you line, signature
//
// PRINT SETUP:
//   A4 landscape, fitted to one page wide, print area covering the sheet.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

// =============================================================================
// LAYOUT CONSTANTS
// =============================================================================

const (
	// SheetName is the name of the only sheet in the workbook.
	SheetName = "Invoice"

	// LastColumn is the rightmost column used by the layout.
	LastColumn = "L"

	// TableHeaderRow is the row holding the item table headers.
	TableHeaderRow = 9

	// FirstItemRow is the row of the first line item.
	FirstItemRow = TableHeaderRow + 1

	minColumnWidth = 10
	maxColumnWidth = 40
)

// Fill colours.
const (
	colorHeader   = "92D050"
	colorSection  = "FFC000"
	colorDetails  = "D9E1F2"
	colorStripe   = "FFF2CC"
	colorPlainRow = "FFFFFF"
)

// Built-in number formats.
const (
	numFmtInteger = 1  // 0
	numFmtAmount  = 4  // #,##0.00
	numFmtPercent = 10 // 0.00%
	numFmtText    = 49 // @
)

// columnKind selects the number format of an item column.
type columnKind int

const (
	kindCode columnKind = iota
	kindText
	kindAmount
	kindPercent
)

// itemColumnKinds follows types.ItemHeaders.
var itemColumnKinds = [12]columnKind{
	kindCode, kindCode, kindText, kindText, kindAmount, kindAmount,
	kindAmount, kindPercent, kindAmount, kindPercent, kindAmount, kindAmount,
}

// sumColumns are the 1-based item columns totalled in the Sub Total row.
var sumColumns = []int{5, 7, 8, 9, 10, 11, 12}

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls the static text of the invoice header.
type Options struct {
	CompanyName    string
	CompanyAddress string
}

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// Render writes the invoice workbook for bill to path.
//
// PARAMETERS:
//   - bill: the assembled bill
//   - path: destination .xlsx path; its directory must exist
//   - opts: header text
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Render(bill types.BillRecord, path string, opts Options) error {
	f, err := Build(bill, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Write renders the invoice workbook for bill to w.
func Write(bill types.BillRecord, w io.Writer, opts Options) error {
	f, err := Build(bill, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build lays out the invoice in a new workbook. The caller owns the returned
// file and must close it.
func Build(bill types.BillRecord, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	w := &sheetWriter{f: f, styles: make(map[string]int)}

	w.header(bill, opts)
	w.sections(bill)
	w.itemTable(bill)
	lastRow := w.footer(FirstItemRow + len(bill.Items))
	w.pageSetup(lastRow)

	if w.err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build invoice sheet: %w", w.err)
	}
	return f, nil
}

// =============================================================================
// SHEET WRITER
// =============================================================================

// sheetWriter keeps the first error so the layout code reads top to bottom.
type sheetWriter struct {
	f      *excelize.File
	styles map[string]int
	err    error

	// widths tracks the longest text per item column for auto-width.
	widths [12]int
}

func (w *sheetWriter) do(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *sheetWriter) style(key string, s *excelize.Style) int {
	if id, ok := w.styles[key]; ok {
		return id
	}
	id, err := w.f.NewStyle(s)
	w.do(err)
	w.styles[key] = id
	return id
}

func (w *sheetWriter) set(cell string, value interface{}) {
	w.do(w.f.SetCellValue(SheetName, cell, value))
}

func (w *sheetWriter) merge(from, to string) {
	w.do(w.f.MergeCell(SheetName, from, to))
}

func (w *sheetWriter) apply(from, to string, styleID int) {
	w.do(w.f.SetCellStyle(SheetName, from, to, styleID))
}

func (w *sheetWriter) height(row int, h float64) {
	w.do(w.f.SetRowHeight(SheetName, row, h))
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// =============================================================================
// HEADER AND SECTIONS (rows 1-8)
// =============================================================================

func (w *sheetWriter) header(bill types.BillRecord, opts Options) {
	lines := []string{"TAX INVOICE", opts.CompanyName, opts.CompanyAddress, bill.GST}

	for i, text := range lines {
		row := i + 1
		size, h := 12.0, 14.0
		if row == 1 {
			size, h = 15, 36
		}

		from, to := cellName(1, row), LastColumn+strconv.Itoa(row)
		w.merge(from, to)
		w.set(from, text)
		w.apply(from, to, w.style(fmt.Sprintf("header-%v", size), &excelize.Style{
			Fill:      solid(colorHeader),
			Font:      &excelize.Font{Bold: true, Italic: true, Size: size},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}))
		w.height(row, h)
	}
}

func (w *sheetWriter) sections(bill types.BillRecord) {
	titleStyle := w.style("section-title", &excelize.Style{
		Fill:      solid(colorSection),
		Font:      &excelize.Font{Bold: true, Italic: true},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	bodyStyle := w.style("section-body", &excelize.Style{
		Fill:      solid(colorDetails),
		Font:      &excelize.Font{Bold: true, Italic: true, Size: 9},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	lineStyle := w.style("gst-po", &excelize.Style{
		Fill:      solid(colorDetails),
		Font:      &excelize.Font{Bold: true, Italic: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	details := fmt.Sprintf("INVOICE NO: %s\nDATE: %s\nVENDOR: %s\nSITE CODE: %s",
		bill.InvoiceNo, bill.DeliveryDate, bill.VendorCode, bill.SiteCode)

	blocks := []struct {
		first, last string
		title, body string
	}{
		{"A", "D", "BILL TO", bill.BillTo},
		{"E", "H", "PLACE OF SUPPLY", bill.PlaceOfSupply},
		{"I", "L", "BILL DETAILS:", details},
	}

	for _, b := range blocks {
		w.merge(b.first+"5", b.last+"5")
		w.set(b.first+"5", b.title)
		w.apply(b.first+"5", b.last+"5", titleStyle)

		w.merge(b.first+"6", b.last+"7")
		w.set(b.first+"6", b.body)
	}
	w.apply("A6", "L7", bodyStyle)

	w.height(5, 12)
	w.height(6, 36)
	w.height(7, 36)

	w.merge("A8", "F8")
	w.merge("G8", "L8")
	w.set("A8", "GST: "+bill.GST)
	w.set("G8", "PO-"+bill.PO)
	w.apply("A8", "L8", lineStyle)
	w.height(8, 12)
}

// =============================================================================
// ITEM TABLE (row 9 onwards)
// =============================================================================

func (w *sheetWriter) itemTable(bill types.BillRecord) {
	headStyle := w.style("table-head", &excelize.Style{
		Fill:      solid(colorSection),
		Font:      &excelize.Font{Bold: true, Italic: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})

	for i, h := range types.ItemHeaders {
		w.set(cellName(i+1, TableHeaderRow), h)
		w.widths[i] = len(h)
	}
	w.apply(cellName(1, TableHeaderRow), LastColumn+strconv.Itoa(TableHeaderRow), headStyle)
	w.height(TableHeaderRow, 30)

	for n, item := range bill.Items {
		row := FirstItemRow + n
		values := itemValues(item)

		fill := colorPlainRow
		if row%2 == 0 {
			fill = colorStripe
		}

		for col, v := range values {
			cell := cellName(col+1, row)
			w.set(cell, v)
			w.apply(cell, cell, w.itemStyle(itemColumnKinds[col], fill))
			w.track(col, v)
		}
	}
}

func (w *sheetWriter) itemStyle(kind columnKind, fill string) int {
	numFmt := numFmtText
	switch kind {
	case kindCode:
		numFmt = numFmtInteger
	case kindAmount:
		numFmt = numFmtAmount
	case kindPercent:
		numFmt = numFmtPercent
	}

	return w.style(fmt.Sprintf("item-%d-%s", kind, fill), &excelize.Style{
		Fill:      solid(fill),
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    thinBorder,
		NumFmt:    numFmt,
	})
}

// itemValues returns the twelve cell values of an item in column order.
func itemValues(item types.LineItem) []interface{} {
	return []interface{}{
		item.ArticleCode,
		item.HSNCode,
		item.Description,
		item.Grammage,
		item.Quantity,
		item.Rate.InexactFloat64(),
		item.TaxableValue.InexactFloat64(),
		item.SGSTRate.InexactFloat64(),
		item.SGSTAmount.InexactFloat64(),
		item.CGSTRate.InexactFloat64(),
		item.CGSTAmount.InexactFloat64(),
		item.TotalAmount.InexactFloat64(),
	}
}

// track records the text length of a value for column auto-width.
func (w *sheetWriter) track(col int, v interface{}) {
	var text string
	switch x := v.(type) {
	case string:
		text = x
	case float64:
		text = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		text = fmt.Sprint(x)
	}
	if len(text) > w.widths[col] {
		w.widths[col] = len(text)
	}
}

// =============================================================================
// FOOTER
// =============================================================================

// footer writes the Sub Total row at subtotalRow and the closing lines below
// it. It returns the last row used.
func (w *sheetWriter) footer(subtotalRow int) int {
	labelStyle := w.style("subtotal-label", &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:    thinBorder,
	})

	label := cellName(1, subtotalRow)
	w.set(label, types.SubTotalLabel)
	w.apply(label, label, labelStyle)

	lastItemRow := subtotalRow - 1
	for _, col := range sumColumns {
		cell := cellName(col, subtotalRow)
		colName, _ := excelize.ColumnNumberToName(col)

		numFmt := numFmtAmount
		if itemColumnKinds[col-1] == kindPercent {
			numFmt = numFmtPercent
		}

		if lastItemRow < FirstItemRow {
			// No items: a SUM over an inverted range would count the header.
			w.set(cell, 0)
		} else {
			formula := fmt.Sprintf("SUM(%s%d:%s%d)", colName, FirstItemRow, colName, lastItemRow)
			w.do(w.f.SetCellFormula(SheetName, cell, formula))
			w.track(col-1, "="+formula)
		}

		w.apply(cell, cell, w.style(fmt.Sprintf("subtotal-%d", numFmt), &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorder,
			NumFmt:    numFmt,
		}))
	}

	w.columnWidths()

	noteStyle := w.style("footer-note", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Italic: true, Size: 9},
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
	})

	row := subtotalRow + 1
	for _, text := range []string{types.MiscChargesNote, types.GrandTotalLabel} {
		w.merge(cellName(1, row), cellName(6, row))
		w.set(cellName(1, row), text)
		w.apply(cellName(1, row), cellName(1, row), noteStyle)
		row++
	}

	// Blank row, then the thank-you line.
	row++
	w.merge(cellName(1, row), LastColumn+strconv.Itoa(row))
	w.set(cellName(1, row), types.ThankYouLine)
	w.apply(cellName(1, row), cellName(1, row), w.style("thank-you", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Italic: true, Size: 8},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}))

	// Signature four rows further down, bottom-left.
	row += 4
	w.set(cellName(1, row), types.SignatureLine)
	w.apply(cellName(1, row), cellName(1, row), w.style("signature", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 8},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}))

	return row
}

// columnWidths sizes each column to its longest text, clamped to
// [minColumnWidth, maxColumnWidth].
func (w *sheetWriter) columnWidths() {
	for i, n := range w.widths {
		width := n
		if width < minColumnWidth {
			width = minColumnWidth
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.do(w.f.SetColWidth(SheetName, col, col, float64(width)))
	}
}

// =============================================================================
// PRINT SETUP
// =============================================================================

func (w *sheetWriter) pageSetup(lastRow int) {
	size := 9 // A4
	orientation := "landscape"
	fitWidth, fitHeight := 1, 0
	fitToPage := true

	w.do(w.f.SetPageLayout(SheetName, &excelize.PageLayoutOptions{
		Size:        &size,
		Orientation: &orientation,
		FitToWidth:  &fitWidth,
		FitToHeight: &fitHeight,
	}))
	w.do(w.f.SetSheetProps(SheetName, &excelize.SheetPropsOptions{FitToPage: &fitToPage}))

	side, edge := 0.5, 0.75
	w.do(w.f.SetPageMargins(SheetName, &excelize.PageLayoutMarginsOptions{
		Left:   &side,
		Right:  &side,
		Top:    &edge,
		Bottom: &edge,
	}))

	w.do(w.f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: fmt.Sprintf("%s!$A$1:$%s$%d", SheetName, LastColumn, lastRow),
		Scope:    SheetName,
	}))
}
