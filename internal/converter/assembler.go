// =============================================================================
// Tax Invoice Generator - Bill Assembler
// =============================================================================
//
// The assembler merges the independent inputs of one invoice into a
// BillRecord:
//
//   metadata  ->  GST, vendor code, bill-to / place-of-supply / site code
//   filename  ->  PO number, delivery date
//   counter   ->  invoice number
//   rows      ->  line items
//
// It also derives the output file stem {place}_{YYYY-MM-DD}_{po} shared by
// the workbook and the PDF.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ginjaninja78/tax-invoice-generator/internal/filename"
	"github.com/ginjaninja78/tax-invoice-generator/internal/metadata"
	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

// ErrInvalidDeliveryDate is returned when the delivery date cannot be turned
// into the YYYY-MM-DD segment of an output filename.
var ErrInvalidDeliveryDate = errors.New("delivery date is not DD-MM-YYYY")

// OutputDateLayout is the date format used in output filenames.
const OutputDateLayout = "2006-01-02"

// Assemble builds the bill for one input file.
//
// PARAMETERS:
//   - meta: the parsed metadata file (global fields)
//   - place: the resolved billing destination
//   - invoiceNo: the number issued by the counter
//   - parsed: PO number and delivery date from the input filename
//   - items: transformed line items
func Assemble(meta *metadata.Metadata, place metadata.Place, invoiceNo int, parsed filename.Parsed, items []types.LineItem) types.BillRecord {
	return types.BillRecord{
		GST:           meta.GST,
		VendorCode:    meta.VendorCode,
		PO:            parsed.PO,
		DeliveryDate:  parsed.DeliveryDate,
		InvoiceNo:     strconv.Itoa(invoiceNo),
		BillTo:        place.BillTo,
		PlaceOfSupply: place.PlaceOfSupply,
		SiteCode:      place.SiteCode,
		Items:         items,
	}
}

// OutputStem returns the file name, without extension, of the documents
// generated for a bill.
//
// RETURNS:
//   - "{place}_{YYYY-MM-DD}_{po}", e.g. "DMART_2025-04-22_15467510000244"
//   - ErrInvalidDeliveryDate if deliveryDate is not a valid DD-MM-YYYY date
//     (this includes the "N/A" and raw fallbacks of the filename parser)
func OutputStem(place, deliveryDate, po string) (string, error) {
	stamp, err := FileDateStamp(deliveryDate)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s", place, stamp, po), nil
}

// FileDateStamp reformats a DD-MM-YYYY delivery date as YYYY-MM-DD.
func FileDateStamp(deliveryDate string) (string, error) {
	t, err := time.Parse(filename.BillDateLayout, deliveryDate)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDeliveryDate, deliveryDate)
	}
	return t.Format(OutputDateLayout), nil
}
