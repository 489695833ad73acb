// =============================================================================
// Tax Invoice Generator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It checks that the configuration,
// the metadata file and the counter can be loaded, and optionally previews
// the bill for one purchase order without issuing an invoice number.
//
// COMMAND USAGE:
//   invoicegen validate [--file PATH] [--place NAME]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tax-invoice-generator/internal/converter"
	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
	"github.com/ginjaninja78/tax-invoice-generator/internal/validation"
)

var (
	validateFile  string
	validatePlace string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and metadata, and preview a bill",
	Long: `Validate loads the configuration, the metadata file and the invoice counter
and reports what it finds. With --file it also reads and transforms that
purchase order and prints the bill it would produce, together with any
validation findings. No invoice number is issued and nothing is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFile, "file", "", "Purchase-order spreadsheet to preview")
	validateCmd.Flags().StringVar(&validatePlace, "place", "", "Place to bill (default: first place in metadata)")
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(out, "Config:        %s\n", cfgFile)
	fmt.Fprintf(out, "Metadata:      %s\n", a.cfg.MetadataFile)
	fmt.Fprintf(out, "  GST:         %s\n", a.meta.GST)
	fmt.Fprintf(out, "  Vendor code: %s\n", a.meta.VendorCode)
	fmt.Fprintf(out, "  Places:      %d\n", len(a.meta.Places()))
	for _, name := range a.meta.Places() {
		p, _ := a.meta.Place(name)
		fmt.Fprintf(out, "    - %s (site %s, %s)\n", name, p.SiteCode, p.PlaceOfSupply)
	}

	last, err := a.counter.Peek()
	if err != nil {
		return fmt.Errorf("failed to read counter: %w", err)
	}
	fmt.Fprintf(out, "Counter:       %s (next invoice %d)\n", a.counter.Path(), last+1)

	if validateFile == "" {
		return nil
	}

	// =========================================================================
	// BILL PREVIEW
	// =========================================================================

	result := converter.New(validateFile, a.cfg, a.meta, a.counter, converter.Options{
		Place:  validatePlace,
		DryRun: true,
		Logger: a.logger,
	}).Run()

	if result.Bill != nil {
		fmt.Fprintln(out)
		printBill(out, *result.Bill)
	}
	if result.Validation != nil {
		fmt.Fprintln(out)
		fmt.Fprint(out, validation.FormatErrors(result.Validation.Errors))
		fmt.Fprintln(out)
	}

	return result.Error
}

// printBill writes a plain-text preview of a bill.
func printBill(w io.Writer, bill types.BillRecord) {
	fmt.Fprintf(w, "Invoice No:    %s (preview)\n", bill.InvoiceNo)
	fmt.Fprintf(w, "PO:            %s\n", bill.PO)
	fmt.Fprintf(w, "Delivery date: %s\n", bill.DeliveryDate)
	fmt.Fprintf(w, "Site code:     %s\n", bill.SiteCode)
	fmt.Fprintf(w, "Items:         %d\n", len(bill.Items))

	for i, item := range bill.Items {
		fmt.Fprintf(w, "  %3d. %-40.40s %6d x %10s = %12s\n",
			i+1, item.Description, item.Quantity, item.Rate.StringFixed(2), item.TotalAmount.StringFixed(2))
	}

	t := bill.Totals()
	fmt.Fprintf(w, "%s: quantity %d, amount %s\n", types.SubTotalLabel, t.Quantity, t.TotalAmount.StringFixed(2))
}
