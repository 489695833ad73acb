// =============================================================================
// Tax Invoice Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the single-file flow. One
// purchase order becomes one invoice, written flat into output_dir.
//
// COMMAND USAGE:
//   invoicegen generate --file PATH [--place NAME] [--json]
//
// An unknown or missing --place falls back to the first place in the
// metadata file.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tax-invoice-generator/internal/config"
	"github.com/ginjaninja78/tax-invoice-generator/internal/converter"
)

var (
	generateFile  string
	generatePlace string
	generateJSON  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the invoice for a single purchase order",
	Long: `Generate reads one purchase-order spreadsheet, issues the next invoice
number and writes the Excel and PDF invoice into output_dir.

The PO number and delivery date come from the filename
(<PO>_<YYYYMMDD>_<anything>.xlsx). If --place is missing or unknown the first
place in the metadata file is billed.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateFile, "file", "", "Purchase-order spreadsheet to invoice")
	generateCmd.Flags().StringVar(&generatePlace, "place", "", "Place to bill (default: first place in metadata)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the result as JSON")
	generateCmd.MarkFlagRequired("file")
}

// generateOutput is the --json result.
type generateOutput struct {
	Excel     string `json:"excel"`
	PDF       string `json:"pdf,omitempty"`
	Place     string `json:"place"`
	InvoiceNo int    `json:"invoice_no"`
	Warnings  int    `json:"warnings"`
}

func runGenerate(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := config.EnsureOutputDirs(a.cfg); err != nil {
		return err
	}

	result := converter.New(generateFile, a.cfg, a.meta, a.counter, converter.Options{
		Place:  generatePlace,
		Logger: a.logger,
	}).Run()

	if !result.Success {
		if result.InvoiceNo > 0 {
			return fmt.Errorf("invoice %d not generated: %w", result.InvoiceNo, result.Error)
		}
		return result.Error
	}

	out := cmd.OutOrStdout()

	if generateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(generateOutput{
			Excel:     result.ExcelFile,
			PDF:       result.PDFFile,
			Place:     result.Place,
			InvoiceNo: result.InvoiceNo,
			Warnings:  result.Stats.Warnings,
		})
	}

	fmt.Fprintf(out, "Invoice %d (%s)\n", result.InvoiceNo, result.Place)
	fmt.Fprintf(out, "  Excel: %s\n", result.ExcelFile)
	if result.PDFFile != "" {
		fmt.Fprintf(out, "  PDF:   %s\n", result.PDFFile)
	}
	return nil
}
