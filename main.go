// =============================================================================
// Tax Invoice Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the invoice generator CLI. It delegates
// command execution to the cmd package.
//
// USAGE:
//   invoicegen process    - Generate invoices for every place folder
//   invoicegen generate   - Generate the invoice for one purchase order
//   invoicegen validate   - Check configuration, metadata and an input file
//   invoicegen counter    - Show the invoice counter
//   invoicegen version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : Core logic (parsing, counter, metadata, rendering)
//   - pkg/        : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/tax-invoice-generator/cmd"
)

func main() {
	cmd.Execute()
}
