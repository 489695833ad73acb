// =============================================================================
// Tax Invoice Generator - Row Transformer
// =============================================================================
//
// This module turns the raw rows of a purchase-order sheet into typed invoice
// line items.
//
// TRANSFORMATION STEPS:
//   1. Coerce each of the six source fields to its target type
//        Item Code, HSN Code, Quantity  -> integer (not a number -> 0)
//        Landing Rate                    -> decimal (not a number -> 0)
//        Product Description, Grammage   -> trimmed text (missing -> "")
//   2. Drop rows that still lack a field after coercion
//   3. Compute Taxable Value = round(Quantity x Rate, 2); Total = Taxable;
//      the SGST/CGST columns are zero
//   4. Drop the trailing rows of the export (see DropTrailingRows)
//
// Nothing in this module returns an error: bad cells degrade to zero.
//
// =============================================================================

package converter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

// TrailingRows is the number of rows at the end of every purchase-order
// export that are not articles.
const TrailingRows = 3

// coercedRow is a source row after type coercion. filled records which of the
// required columns received a value.
type coercedRow struct {
	item   types.LineItem
	filled map[string]bool
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// TransformRows converts raw purchase-order rows into invoice line items.
//
// PARAMETERS:
//   - rows: header-keyed raw cell text, in sheet order.
//
// RETURNS:
//   - The line items in sheet order, with the trailing rows removed.
func TransformRows(rows []map[string]string) []types.LineItem {
	coerced := make([]coercedRow, 0, len(rows))
	for _, row := range rows {
		coerced = append(coerced, coerceRow(row))
	}

	coerced = filterComplete(coerced)

	items := make([]types.LineItem, 0, len(coerced))
	for _, c := range coerced {
		items = append(items, computeTotals(c.item))
	}

	return DropTrailingRows(items)
}

// DropTrailingRows removes the last TrailingRows items when there are at least
// that many; shorter lists are returned unchanged. Order is preserved.
//
//   5 items -> first 2
//   3 items -> none
//   2 items -> both
func DropTrailingRows(items []types.LineItem) []types.LineItem {
	if len(items) >= TrailingRows {
		return items[:len(items)-TrailingRows]
	}
	return items
}

// coerceRow applies the per-column coercion rules to one raw row.
func coerceRow(row map[string]string) coercedRow {
	filled := make(map[string]bool, len(types.RequiredColumns))

	intField := func(col string) int64 {
		filled[col] = true
		return toInt(row[col])
	}
	textField := func(col string) string {
		filled[col] = true
		return strings.TrimSpace(row[col])
	}

	item := types.LineItem{
		Quantity:    intField(types.ColQuantity),
		ArticleCode: intField(types.ColItemCode),
		HSNCode:     intField(types.ColHSNCode),
		Description: textField(types.ColDescription),
		Grammage:    textField(types.ColGrammage),
	}
	item.Rate = toDecimal(row[types.ColLandingRate])
	filled[types.ColLandingRate] = true

	return coercedRow{item: item, filled: filled}
}

// filterComplete keeps rows that have every required column filled. Coercion
// fills every column with a value or a default, so this removes nothing from
// coerceRow output.
func filterComplete(rows []coercedRow) []coercedRow {
	kept := rows[:0]
	for _, r := range rows {
		complete := true
		for _, col := range types.RequiredColumns {
			if !r.filled[col] {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, r)
		}
	}
	return kept
}

// computeTotals fills in the amount columns of an item. The taxable value is
// rounded on the exact decimal product with halves away from zero, so a rate
// of 2.675 on one unit gives 2.68. Binary floating point would give 2.67.
func computeTotals(item types.LineItem) types.LineItem {
	item.TaxableValue = decimal.NewFromInt(item.Quantity).Mul(item.Rate).Round(2)
	item.SGSTRate = decimal.Zero
	item.SGSTAmount = decimal.Zero
	item.CGSTRate = decimal.Zero
	item.CGSTAmount = decimal.Zero
	item.TotalAmount = item.TaxableValue
	return item
}

// =============================================================================
// COERCION HELPERS
// =============================================================================

// toDecimal parses a cell as a number. Anything unparsable is zero.
func toDecimal(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// toInt parses a cell as a number and truncates it toward zero.
func toInt(raw string) int64 {
	return toDecimal(raw).IntPart()
}
