// =============================================================================
// Tax Invoice Generator - Filename Parser
// =============================================================================
//
// Purchase-order exports are named:
//
//   <PO>_<YYYYMMDD>_<anything>.<ext>
//   15467510000244_20250422_055526.xlsx
//
// Parse extracts the PO number and the delivery date from that name. It never
// fails: anything that does not fit the convention degrades to a fallback.
//
//   Input                                   PO               Date
//   15467510000244_20250422_055526.xlsx     15467510000244   22-04-2025
//   ABC.xlsx                                ABC              N/A
//   PO1_notadate_x.xlsx                     PO1              notadate
//
// =============================================================================

package filename

import (
	"path/filepath"
	"strings"
	"time"
)

// NotAvailable is the placeholder used for a missing PO number or date.
const NotAvailable = "N/A"

// Layouts for the date segment of the filename and for the bill.
const (
	SourceDateLayout = "20060102"
	BillDateLayout   = "02-01-2006"
)

// Parsed holds the fields derived from an input filename.
type Parsed struct {
	PO           string
	DeliveryDate string
}

// Parse extracts the PO number and delivery date from name. Directory
// components are ignored and only the final extension is stripped.
func Parse(name string) Parsed {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.SplitN(stem, "_", 3)

	result := Parsed{PO: NotAvailable, DeliveryDate: NotAvailable}

	if parts[0] != "" {
		result.PO = parts[0]
	}

	if len(parts) >= 2 && parts[1] != "" {
		result.DeliveryDate = formatDate(parts[1])
	}

	return result
}

// formatDate reformats YYYYMMDD as DD-MM-YYYY, or returns raw unchanged.
func formatDate(raw string) string {
	t, err := time.Parse(SourceDateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format(BillDateLayout)
}
