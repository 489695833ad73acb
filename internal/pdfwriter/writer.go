// =============================================================================
// Tax Invoice Generator - PDF Invoice Writer
// =============================================================================
//
// This module renders a BillRecord as a landscape A4 PDF that mirrors the
// workbook produced by xlsxwriter:
//
//   - green four-line header (TAX INVOICE, company, address, GST number)
//   - amber BILL TO / PLACE OF SUPPLY / BILL DETAILS: titles over a blue block
//   - blue GST / PO line
//   - twelve-column item table; the header row repeats on every new page
//   - Sub Total row, misc charges note, grand total label, thank-you line,
//     signature
//
// Amounts are printed with thousands separators and two decimals, rates as
// percentages, codes as plain integers.
//
// =============================================================================

package pdfwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

// =============================================================================
// LAYOUT CONSTANTS
// =============================================================================

const (
	pageMargin  = 10.0
	cellPadding = 4.0
	lineHeight  = 10.0
)

// columnRatios are the relative widths of the twelve item columns.
var columnRatios = [12]float64{1, 1, 3, 1.8, 0.8, 0.8, 1.2, 1, 1, 1, 1, 1.2}

// sumColumns are the 0-based item columns totalled in the Sub Total row.
var sumColumns = map[int]bool{4: true, 6: true, 7: true, 8: true, 9: true, 10: true, 11: true}

type rgb struct{ r, g, b int }

var (
	colorHeader  = rgb{0x92, 0xD0, 0x50}
	colorSection = rgb{0xFF, 0xC0, 0x00}
	colorDetails = rgb{0xD9, 0xE1, 0xF2}
	colorStripe  = rgb{0xFF, 0xF2, 0xCC}
	colorWhite   = rgb{0xFF, 0xFF, 0xFF}
	colorLabel   = rgb{0xF5, 0xF5, 0xF5}
)

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

// Render writes the invoice PDF for bill to path.
//
// PARAMETERS:
//   - bill: the assembled bill
//   - path: destination .pdf path; its directory must exist
//   - opts: header text
//
// RETURNS:
//   - An error if layout or writing fails.
func Render(bill types.BillRecord, path string, opts Options) error {
	pdf := build(bill, opts)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// Write renders the invoice PDF for bill to w.
func Write(bill types.BillRecord, w io.Writer, opts Options) error {
	pdf := build(bill, opts)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// build lays out the whole document. Layout errors are kept inside the Fpdf
// and surface from Output.
func build(bill types.BillRecord, opts Options) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle("Tax Invoice "+bill.InvoiceNo, true)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	d := &document{
		pdf:     pdf,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		printer: message.NewPrinter(language.English),
		width:   pageW - 2*pageMargin,
		bottom:  pageH - pageMargin,
	}

	total := 0.0
	for _, r := range columnRatios {
		total += r
	}
	for i, r := range columnRatios {
		d.cols[i] = d.width * r / total
	}

	d.header(bill, opts)
	d.sections(bill)
	d.itemTable(bill)
	d.subTotal(bill.Totals())
	d.closing()

	return pdf
}

// =============================================================================
// DOCUMENT
// =============================================================================

type document struct {
	pdf     *gofpdf.Fpdf
	tr      func(string) string
	printer *message.Printer

	width  float64
	bottom float64
	cols   [12]float64
}

func (d *document) fill(c rgb) {
	d.pdf.SetFillColor(c.r, c.g, c.b)
}

// ensureSpace starts a new page when h points do not fit below the cursor.
// It reports whether a page was added.
func (d *document) ensureSpace(h float64) bool {
	if d.pdf.GetY()+h <= d.bottom {
		return false
	}
	d.pdf.AddPage()
	return true
}

// fullWidth prints one centered, filled line across the page.
func (d *document) fullWidth(text string, h float64, c rgb) {
	d.fill(c)
	d.pdf.CellFormat(d.width, h, d.tr(text), "", 1, "C", true, 0, "")
}

// =============================================================================
// HEADER AND SECTIONS
// =============================================================================

func (d *document) header(bill types.BillRecord, opts Options) {
	lines := []string{"TAX INVOICE", opts.CompanyName, opts.CompanyAddress, bill.GST}
	for i, text := range lines {
		size, h := 12.0, 14.0
		if i == 0 {
			size, h = 15, 36
		}
		d.pdf.SetFont("Helvetica", "BI", size)
		d.fullWidth(text, h, colorHeader)
	}
}

func (d *document) sections(bill types.BillRecord) {
	third := d.width / 3

	d.pdf.SetFont("Helvetica", "BI", 10)
	d.fill(colorSection)
	for i, title := range []string{"BILL TO", "PLACE OF SUPPLY", "BILL DETAILS:"} {
		ln := 0
		if i == 2 {
			ln = 1
		}
		d.pdf.CellFormat(third, 12, d.tr(title), "", ln, "L", true, 0, "")
	}

	details := strings.Join([]string{
		"INVOICE NO: " + bill.InvoiceNo,
		"DATE: " + bill.DeliveryDate,
		"VENDOR: " + bill.VendorCode,
		"SITE CODE: " + bill.SiteCode,
	}, "\n")

	const blockH = 72.0
	x, y := d.pdf.GetXY()
	d.fill(colorDetails)
	d.pdf.Rect(x, y, d.width, blockH, "F")

	d.pdf.SetFont("Helvetica", "BI", 9)
	for i, text := range []string{bill.BillTo, bill.PlaceOfSupply, details} {
		d.pdf.SetXY(x+float64(i)*third+cellPadding, y+2)
		d.pdf.MultiCell(third-2*cellPadding, 11, d.tr(text), "", "L", false)
	}
	d.pdf.SetXY(x, y+blockH)

	half := d.width / 2
	d.fill(colorDetails)
	d.pdf.CellFormat(half, 12, d.tr("GST: "+bill.GST), "", 0, "C", true, 0, "")
	d.pdf.CellFormat(half, 12, d.tr("PO-"+bill.PO), "", 1, "C", true, 0, "")
}

// =============================================================================
// ITEM TABLE
// =============================================================================

func (d *document) tableHeader() {
	d.pdf.SetFont("Helvetica", "BI", 7)
	d.pdf.SetLineWidth(0.5)
	d.fill(colorSection)
	for i, h := range types.ItemHeaders {
		ln := 0
		if i == len(types.ItemHeaders)-1 {
			ln = 1
		}
		d.pdf.CellFormat(d.cols[i], 23, d.tr(h), "1", ln, "CM", true, 0, "")
	}
}

func (d *document) itemTable(bill types.BillRecord) {
	d.ensureSpace(23 + lineHeight)
	d.tableHeader()

	for n, item := range bill.Items {
		cells := d.itemCells(item)

		d.pdf.SetFont("Helvetica", "", 8)
		rowH := d.rowHeight(cells)
		if d.ensureSpace(rowH) {
			d.tableHeader()
			d.pdf.SetFont("Helvetica", "", 8)
		}

		c := colorWhite
		if (n+1)%2 == 1 {
			c = colorStripe
		}
		d.row(cells, rowH, c, itemAlign)
	}
}

// itemCells formats an item's twelve columns.
func (d *document) itemCells(item types.LineItem) []string {
	return []string{
		strconv.FormatInt(item.ArticleCode, 10),
		strconv.FormatInt(item.HSNCode, 10),
		item.Description,
		item.Grammage,
		d.amount(decimal.NewFromInt(item.Quantity)),
		d.amount(item.Rate),
		d.amount(item.TaxableValue),
		percent(item.SGSTRate),
		d.amount(item.SGSTAmount),
		percent(item.CGSTRate),
		d.amount(item.CGSTAmount),
		d.amount(item.TotalAmount),
	}
}

func itemAlign(col int) string {
	switch {
	case col <= 1:
		return "C"
	case col >= 4:
		return "R"
	default:
		return "L"
	}
}

// rowHeight is the height needed for the tallest wrapped cell of a row.
func (d *document) rowHeight(cells []string) float64 {
	lines := 1
	for i, text := range cells {
		n := len(d.pdf.SplitLines([]byte(d.tr(text)), d.cols[i]-cellPadding))
		if n > lines {
			lines = n
		}
	}
	return float64(lines)*lineHeight + 2
}

// row draws one bordered table row with wrapped cell text.
func (d *document) row(cells []string, h float64, c rgb, align func(int) string) {
	x, y := d.pdf.GetXY()

	for i, text := range cells {
		d.fill(c)
		d.pdf.Rect(x, y, d.cols[i], h, "FD")

		lines := d.pdf.SplitLines([]byte(d.tr(text)), d.cols[i]-cellPadding)
		for j, line := range lines {
			d.pdf.SetXY(x+cellPadding/2, y+1+float64(j)*lineHeight)
			d.pdf.CellFormat(d.cols[i]-cellPadding, lineHeight, string(line), "", 0, align(i), false, 0, "")
		}
		x += d.cols[i]
	}

	d.pdf.SetXY(pageMargin, y+h)
}

// =============================================================================
// FOOTER
// =============================================================================

func (d *document) subTotal(t types.Totals) {
	sums := map[int]string{
		4:  d.amount(decimal.NewFromInt(t.Quantity)),
		6:  d.amount(t.TaxableValue),
		7:  percent(t.SGSTRate),
		8:  d.amount(t.SGSTAmount),
		9:  percent(t.CGSTRate),
		10: d.amount(t.CGSTAmount),
		11: d.amount(t.TotalAmount),
	}

	const h = 14.0
	if d.ensureSpace(h) {
		d.tableHeader()
	}

	d.pdf.SetFont("Helvetica", "B", 9)
	for i := 0; i < 12; i++ {
		text, fill, align := "", false, "R"
		switch {
		case i == 0:
			text, fill = types.SubTotalLabel, true
			d.fill(colorLabel)
		case sumColumns[i]:
			text = sums[i]
		}
		ln := 0
		if i == 11 {
			ln = 1
		}
		d.pdf.CellFormat(d.cols[i], h, d.tr(text), "1", ln, align, fill, 0, "")
	}
}

func (d *document) closing() {
	d.ensureSpace(11*2 + 12 + 8 + 10 + 12 + 10)

	d.pdf.Ln(4)
	d.pdf.SetFont("Helvetica", "BI", 9)
	d.pdf.CellFormat(d.width, 11, d.tr(types.MiscChargesNote), "", 1, "C", false, 0, "")
	d.pdf.Ln(4)
	d.pdf.CellFormat(d.width, 11, d.tr(types.GrandTotalLabel), "", 1, "C", false, 0, "")
	d.pdf.Ln(8)

	// Blank row.
	d.pdf.Ln(12)

	d.pdf.SetFont("Helvetica", "BI", 8)
	d.pdf.CellFormat(d.width, 10, d.tr(types.ThankYouLine), "", 1, "C", false, 0, "")
	d.pdf.Ln(12)

	d.pdf.SetFont("Helvetica", "B", 8)
	d.pdf.CellFormat(d.width, 10, d.tr(types.SignatureLine), "", 1, "L", false, 0, "")
}

// =============================================================================
// NUMBER FORMATTING
// =============================================================================

// amount formats a value with thousands separators and two decimals.
func (d *document) amount(v decimal.Decimal) string {
	return d.printer.Sprintf("%.2f", v.Round(2).InexactFloat64())
}

// percent formats a rate (0.09) as a percentage ("9.00%").
func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
