// =============================================================================
// Tax Invoice Generator - Shared Types
// =============================================================================
//
// This package contains the bill types shared by the converter, the validation
// engine and both document writers. Keeping them here avoids import cycles:
//   - converter   builds BillRecords
//   - validation  inspects them
//   - xlsxwriter  renders them as a workbook
//   - pdfwriter   renders them as a PDF
//
// =============================================================================

package types

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SOURCE COLUMNS
// =============================================================================

// Column headers expected in the purchase-order worksheet. Matching is exact
// (case and spacing included).
const (
	ColQuantity    = "Quantity"
	ColLandingRate = "Landing Rate"
	ColItemCode    = "Item Code"
	ColHSNCode     = "HSN Code"
	ColDescription = "Product Description"
	ColGrammage    = "Grammage"
)

// RequiredColumns lists the source columns in the order they are looked up.
var RequiredColumns = []string{
	ColQuantity,
	ColLandingRate,
	ColItemCode,
	ColHSNCode,
	ColDescription,
	ColGrammage,
}

// =============================================================================
// SOURCE TABLE
// =============================================================================

// SourceTable is a purchase-order sheet read from disk, before any coercion.
type SourceTable struct {
	// SourceFile is the path the table was read from.
	SourceFile string

	// Headers are the trimmed header cells of the first row, in sheet order.
	Headers []string

	// Rows maps header -> raw cell text for each data row.
	// A header that has no cell in a row is absent from that row's map.
	Rows []map[string]string
}

// ErrMissingColumn is returned when a source table lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

// RequireColumns checks that every required column is present in the header
// row. The first missing column is reported.
func (t *SourceTable) RequireColumns(columns []string) error {
	present := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		present[h] = true
	}
	for _, col := range columns {
		if !present[col] {
			return fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	return nil
}

// =============================================================================
// BILL TYPES
// =============================================================================

// LineItem is one row of the invoice table.
type LineItem struct {
	ArticleCode int64
	HSNCode     int64
	Description string
	Grammage    string
	Quantity    int64
	Rate        decimal.Decimal

	// TaxableValue is Quantity x Rate rounded to two places.
	TaxableValue decimal.Decimal

	// The tax columns are carried on the invoice but are always zero.
	SGSTRate   decimal.Decimal
	SGSTAmount decimal.Decimal
	CGSTRate   decimal.Decimal
	CGSTAmount decimal.Decimal

	// TotalAmount equals TaxableValue while the tax columns are zero.
	TotalAmount decimal.Decimal
}

// BillRecord is a fully assembled invoice. It is built once per input file
// and handed, unchanged, to each document writer.
type BillRecord struct {
	GST           string
	VendorCode    string
	PO            string
	DeliveryDate  string
	InvoiceNo     string
	BillTo        string
	PlaceOfSupply string
	SiteCode      string
	Items         []LineItem
}

// Totals is the "Sub Total" footer row.
//
// SGSTRate and CGSTRate are plain sums of the per-item rates, not averages.
// Both writers print them that way.
type Totals struct {
	Quantity     int64
	TaxableValue decimal.Decimal
	SGSTRate     decimal.Decimal
	SGSTAmount   decimal.Decimal
	CGSTRate     decimal.Decimal
	CGSTAmount   decimal.Decimal
	TotalAmount  decimal.Decimal
}

// Totals sums the footer columns over all items.
func (b BillRecord) Totals() Totals {
	t := Totals{
		TaxableValue: decimal.Zero,
		SGSTRate:     decimal.Zero,
		SGSTAmount:   decimal.Zero,
		CGSTRate:     decimal.Zero,
		CGSTAmount:   decimal.Zero,
		TotalAmount:  decimal.Zero,
	}
	for _, item := range b.Items {
		t.Quantity += item.Quantity
		t.TaxableValue = t.TaxableValue.Add(item.TaxableValue)
		t.SGSTRate = t.SGSTRate.Add(item.SGSTRate)
		t.SGSTAmount = t.SGSTAmount.Add(item.SGSTAmount)
		t.CGSTRate = t.CGSTRate.Add(item.CGSTRate)
		t.CGSTAmount = t.CGSTAmount.Add(item.CGSTAmount)
		t.TotalAmount = t.TotalAmount.Add(item.TotalAmount)
	}
	return t
}

// =============================================================================
// TABLE LAYOUT
// =============================================================================

// ItemHeaders are the twelve invoice table headers shared by both writers.
var ItemHeaders = []string{
	"ARTICLE CODE", "HSN CODE", "Article Description", "Grammage", "Quantity",
	"Rate", "Taxable Value", "SGST Rate", "SGST Amount",
	"CGST Rate", "CGST Amount", "Total Amount",
}

// Static footer text printed under the item table.
const (
	MiscChargesNote = "Misc. Charges (Including Freight, Octroi, Loading, Unloading, etc.)"
	GrandTotalLabel = "Grand Total (Rounded Off)"
	ThankYouLine    = "THANK YOU FOR YOUR BUSINESS"
	SignatureLine   = "Signature"
	SubTotalLabel   = "Sub Total"
)
