// =============================================================================
// Tax Invoice Generator - Converter Module
// =============================================================================
//
// This module contains the per-file pipeline. It turns one purchase-order
// spreadsheet into an invoice workbook and an invoice PDF.
//
// CONVERSION PIPELINE:
//   1. Derive the PO number and delivery date from the filename
//   2. Read the purchase-order sheet (workbook or CSV export)
//   3. Transform the rows into line items
//   4. Resolve the billing place from metadata
//   5. Compute the output file stem
//   6. Issue the invoice number
//   7. Assemble and validate the bill
//   8. Render the workbook and the PDF
//
// The output stem is computed before the counter is touched, so a file whose
// delivery date cannot be read never consumes an invoice number. A failure
// after step 6 does consume one; it is logged with the number.
//
// CONCURRENCY:
//   A Converter handles one file. Several converters may run at once; the
//   counter.Store they share serializes number issue.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/tax-invoice-generator/internal/config"
	"github.com/ginjaninja78/tax-invoice-generator/internal/counter"
	"github.com/ginjaninja78/tax-invoice-generator/internal/csvparser"
	"github.com/ginjaninja78/tax-invoice-generator/internal/filename"
	"github.com/ginjaninja78/tax-invoice-generator/internal/logging"
	"github.com/ginjaninja78/tax-invoice-generator/internal/metadata"
	"github.com/ginjaninja78/tax-invoice-generator/internal/pdfwriter"
	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
	"github.com/ginjaninja78/tax-invoice-generator/internal/validation"
	"github.com/ginjaninja78/tax-invoice-generator/internal/xlsxparser"
	"github.com/ginjaninja78/tax-invoice-generator/internal/xlsxwriter"
)

// ErrValidationFailed is returned when an assembled bill has validation errors.
var ErrValidationFailed = errors.New("bill failed validation")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// ExcelFile and PDFFile are the generated documents. They are empty if
	// processing failed, in dry-run mode, and (PDFFile) when PDFs are disabled.
	ExcelFile string
	PDFFile   string

	// Place is the resolved billing place.
	Place string

	// InvoiceNo is the number issued for this file, or 0 if none was issued.
	// In dry-run mode it is the number a real run would issue, counting the
	// files already previewed through the same counter.
	InvoiceNo int

	// Bill is the assembled bill. Nil if processing stopped before assembly.
	Bill *types.BillRecord

	// Validation holds the bill findings. Nil if processing stopped before
	// validation.
	Validation *validation.ValidationResult

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of non-empty data rows in the source sheet.
	RowsRead int

	// LineItems is the number of items on the invoice.
	LineItems int

	// Warnings is the number of validation warnings.
	Warnings int

	// ValidationErrors is the number of validation errors.
	ValidationErrors int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options adjusts a single run.
type Options struct {
	// Place is the requested billing place. Empty or unknown names fall back
	// to the first place in the metadata file.
	Place string

	// OutputDir overrides the configured output directory.
	OutputDir string

	// DryRun builds and validates the bill without issuing an invoice number
	// or writing any file.
	DryRun bool

	// Logger receives progress messages. Default: info level to stdout.
	Logger logging.Logger
}

// Converter handles the conversion of a single purchase-order file.
type Converter struct {
	inputPath  string
	mainConfig *config.MainConfig
	meta       *metadata.Metadata
	counter    *counter.Store
	opts       Options
	logger     logging.Logger
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The purchase-order file.
//   - mainConfig: The application configuration.
//   - meta: The parsed metadata file.
//   - store: The invoice counter.
//   - opts: Place, output directory, dry-run and logger.
func New(inputPath string, mainConfig *config.MainConfig, meta *metadata.Metadata, store *counter.Store, opts Options) *Converter {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(os.Stdout, logging.LevelInfo)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = mainConfig.OutputDir
	}

	return &Converter{
		inputPath:  inputPath,
		mainConfig: mainConfig,
		meta:       meta,
		counter:    store,
		opts:       opts,
		logger:     logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{
		FilePath: c.inputPath,
		Success:  false,
	}
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	c.logger.Info("Processing file: %s", c.inputPath)

	// =========================================================================
	// STEP 1: PARSE FILENAME
	// =========================================================================
	// Never fails; unreadable parts become "N/A" or the raw segment.

	parsed := filename.Parse(c.inputPath)
	c.logger.Debug("PO: %s, delivery date: %s", parsed.PO, parsed.DeliveryDate)

	// =========================================================================
	// STEP 2: READ SOURCE SHEET
	// =========================================================================

	table, err := c.readSource()
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		return result
	}

	result.Stats.RowsRead = len(table.Rows)
	c.logger.Debug("Read %d rows", len(table.Rows))

	// =========================================================================
	// STEP 3: TRANSFORM ROWS
	// =========================================================================

	items := TransformRows(table.Rows)
	result.Stats.LineItems = len(items)
	c.logger.Debug("Transformed into %d line items", len(items))

	// =========================================================================
	// STEP 4: RESOLVE PLACE
	// =========================================================================

	place, fellBack, err := c.meta.ResolvePlace(c.opts.Place)
	if err != nil {
		result.Error = fmt.Errorf("failed to resolve place: %w", err)
		return result
	}
	if fellBack && c.opts.Place != "" {
		c.logger.Warn("Place %q not found in metadata, using %q", c.opts.Place, place.Name)
	}
	result.Place = place.Name

	// =========================================================================
	// STEP 5: OUTPUT FILE STEM
	// =========================================================================

	stem, err := OutputStem(place.Name, parsed.DeliveryDate, parsed.PO)
	if err != nil {
		result.Error = fmt.Errorf("failed to name output: %w", err)
		return result
	}

	// =========================================================================
	// STEP 6: ISSUE INVOICE NUMBER
	// =========================================================================

	invoiceNo, err := c.issueNumber()
	if err != nil {
		result.Error = fmt.Errorf("failed to issue invoice number: %w", err)
		return result
	}
	result.InvoiceNo = invoiceNo

	// =========================================================================
	// STEP 7: ASSEMBLE AND VALIDATE
	// =========================================================================

	bill := Assemble(c.meta, place, invoiceNo, parsed, items)
	result.Bill = &bill

	vr := validation.Validate(bill)
	result.Validation = vr
	result.Stats.Warnings = vr.WarningCount
	result.Stats.ValidationErrors = vr.ErrorCount

	for _, w := range vr.Warnings() {
		c.logger.Warn("%s: %s", filepath.Base(c.inputPath), w.Error())
	}
	for _, ve := range vr.Errors {
		if ve.Severity != validation.SeverityWarning {
			c.logger.Error("%s: %s", filepath.Base(c.inputPath), ve.Error())
		}
	}

	if !vr.IsValid {
		result.Error = fmt.Errorf("%w: %d error(s)", ErrValidationFailed, vr.ErrorCount)
		c.numberLost(invoiceNo)
		return result
	}

	if c.opts.DryRun {
		c.logger.Info("Dry run: invoice %d for %s would be written as %s", invoiceNo, place.Name, stem)
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 8: RENDER DOCUMENTS
	// =========================================================================

	if err := os.MkdirAll(c.opts.OutputDir, 0755); err != nil {
		result.Error = fmt.Errorf("failed to create output directory: %w", err)
		c.numberLost(invoiceNo)
		return result
	}

	excelPath := filepath.Join(c.opts.OutputDir, stem+".xlsx")
	xlsxOpts := xlsxwriter.Options{
		CompanyName:    c.mainConfig.CompanyName,
		CompanyAddress: c.mainConfig.CompanyAddress,
	}
	if err := xlsxwriter.Render(bill, excelPath, xlsxOpts); err != nil {
		result.Error = fmt.Errorf("failed to write workbook: %w", err)
		c.numberLost(invoiceNo)
		return result
	}
	result.ExcelFile = excelPath
	c.logger.Info("Wrote workbook: %s", excelPath)

	if c.mainConfig.PDFEnabled() {
		pdfPath := filepath.Join(c.opts.OutputDir, stem+".pdf")
		pdfOpts := pdfwriter.Options{
			CompanyName:    c.mainConfig.CompanyName,
			CompanyAddress: c.mainConfig.CompanyAddress,
		}
		if err := pdfwriter.Render(bill, pdfPath, pdfOpts); err != nil {
			result.Error = fmt.Errorf("failed to write PDF: %w", err)
			c.numberLost(invoiceNo)
			return result
		}
		result.PDFFile = pdfPath
		c.logger.Info("Wrote PDF: %s", pdfPath)
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	c.logger.Info("Invoice %d generated for %s (%d items)", invoiceNo, place.Name, len(items))

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readSource picks the reader by file extension.
func (c *Converter) readSource() (*types.SourceTable, error) {
	if strings.EqualFold(filepath.Ext(c.inputPath), ".csv") {
		return csvparser.Parse(c.inputPath, c.mainConfig.CSV)
	}
	return xlsxparser.Parse(c.inputPath)
}

// issueNumber consumes the next invoice number, or previews it in dry-run
// mode.
func (c *Converter) issueNumber() (int, error) {
	if c.opts.DryRun {
		return c.counter.Preview()
	}

	n, err := c.counter.Next()
	if err != nil {
		return 0, err
	}
	c.logger.Debug("Issued invoice number %d", n)
	return n, nil
}

func (c *Converter) numberLost(invoiceNo int) {
	if c.opts.DryRun {
		return
	}
	c.logger.Warn("Invoice number %d was issued for %s but no invoice was written", invoiceNo, filepath.Base(c.inputPath))
}
