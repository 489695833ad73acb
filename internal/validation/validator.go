// =============================================================================
// Tax Invoice Generator - Bill Validation
// =============================================================================
//
// This module checks an assembled bill before it is rendered. The transformer
// never rejects a row, so odd data (a zero quantity, a negative rate, an empty
// description) would otherwise slip onto an invoice unnoticed.
//
// SEVERITIES:
//   - error:   the bill breaks an amount invariant and must not be rendered
//   - warning: the bill is rendered but the finding is logged and reported
//
// CHECKS:
//   Bill level
//     - GST number or vendor code missing                 warning
//     - PO number or delivery date unavailable ("N/A")    warning
//     - no line items                                     warning
//   Item level
//     - Taxable Value != round(Quantity x Rate, 2)        error
//     - Total Amount != Taxable Value                     error
//     - SGST/CGST columns not zero                        error
//     - negative quantity or rate                         warning
//     - zero quantity                                     warning
//     - empty description                                 warning
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/tax-invoice-generator/internal/filename"
	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Item is the 1-based line item number, or 0 for bill-level findings.
	Item int

	// Field is the bill or item field concerned.
	Field string

	// Value is the offending value as printed.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	where := "Bill"
	if e.Item > 0 {
		where = fmt.Sprintf("Item %d", e.Item)
	}
	return fmt.Sprintf("[%s] %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		where,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors. Warnings do not affect it.
	IsValid bool

	// Errors contains all findings, warnings included, in check order.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// ItemsValidated is the number of line items checked.
	ItemsValidated int
}

// Warnings returns the warning-level findings.
func (r *ValidationResult) Warnings() []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks a bill and returns every finding.
func Validate(bill types.BillRecord) *ValidationResult {
	result := &ValidationResult{
		IsValid:        true,
		Errors:         make([]*ValidationError, 0),
		ItemsValidated: len(bill.Items),
	}

	for _, ve := range validateBill(bill) {
		result.add(ve)
	}
	for i := range bill.Items {
		for _, ve := range ValidateLineItem(i+1, bill.Items[i]) {
			result.add(ve)
		}
	}

	return result
}

func (r *ValidationResult) add(ve *ValidationError) {
	r.Errors = append(r.Errors, ve)
	if ve.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// validateBill runs the bill-level checks.
func validateBill(bill types.BillRecord) []*ValidationError {
	var errs []*ValidationError

	warn := func(field, value, msg string) {
		errs = append(errs, &ValidationError{Severity: SeverityWarning, Field: field, Value: value, Message: msg})
	}

	if strings.TrimSpace(bill.GST) == "" {
		warn("GST", bill.GST, "GST number is missing from metadata")
	}
	if strings.TrimSpace(bill.VendorCode) == "" {
		warn("VendorCode", bill.VendorCode, "vendor code is missing from metadata")
	}
	if bill.PO == filename.NotAvailable {
		warn("PO", bill.PO, "PO number could not be read from the filename")
	}
	if bill.DeliveryDate == filename.NotAvailable {
		warn("DeliveryDate", bill.DeliveryDate, "delivery date could not be read from the filename")
	}
	if len(bill.Items) == 0 {
		warn("Items", "0", "bill has no line items")
	}

	return errs
}

// ValidateLineItem checks a single line item. n is its 1-based position.
func ValidateLineItem(n int, item types.LineItem) []*ValidationError {
	var errs []*ValidationError

	add := func(severity, field string, value interface{}, msg string) {
		errs = append(errs, &ValidationError{
			Severity: severity,
			Item:     n,
			Field:    field,
			Value:    fmt.Sprint(value),
			Message:  msg,
		})
	}

	// =========================================================================
	// AMOUNT INVARIANTS
	// =========================================================================

	expected := decimal.NewFromInt(item.Quantity).Mul(item.Rate).Round(2)
	if !item.TaxableValue.Equal(expected) {
		add(SeverityError, "TaxableValue", item.TaxableValue,
			fmt.Sprintf("expected quantity x rate = %s", expected.StringFixed(2)))
	}
	if !item.TotalAmount.Equal(item.TaxableValue) {
		add(SeverityError, "TotalAmount", item.TotalAmount, "total amount must equal taxable value")
	}
	taxColumns := []struct {
		field string
		value decimal.Decimal
	}{
		{"SGSTRate", item.SGSTRate},
		{"SGSTAmount", item.SGSTAmount},
		{"CGSTRate", item.CGSTRate},
		{"CGSTAmount", item.CGSTAmount},
	}
	for _, tc := range taxColumns {
		if !tc.value.IsZero() {
			add(SeverityError, tc.field, tc.value, "tax columns must be zero")
		}
	}

	// =========================================================================
	// SOURCE DATA CHECKS
	// =========================================================================

	if item.Quantity < 0 {
		add(SeverityWarning, "Quantity", item.Quantity, "quantity is negative")
	} else if item.Quantity == 0 {
		add(SeverityWarning, "Quantity", item.Quantity, "quantity is zero or was not a number")
	}
	if item.Rate.IsNegative() {
		add(SeverityWarning, "Rate", item.Rate, "rate is negative")
	}
	if item.Description == "" {
		add(SeverityWarning, "Description", "", "description is empty")
	}

	return errs
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats findings for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
