// =============================================================================
// Tax Invoice Generator - Process Command
// =============================================================================
//
// This file defines the 'process' command, the batch flow. Every place in the
// metadata file has an input folder; each purchase order found there becomes
// one invoice in that place's output folder.
//
// COMMAND USAGE:
//   invoicegen process [flags]
//
// FLAGS:
//   --place     : Process only one place
//   --dry-run   : Build and validate every bill without issuing numbers or
//                 writing files
//
// PROCESSING PIPELINE:
//   1. Load configuration, metadata and the counter
//   2. Create the per-place folders
//   3. Discover input files, place by place in metadata order
//   4. Run the converter on each file (max_concurrency at a time)
//   5. Archive successful inputs
//   6. Print the summary and write the summary and error logs
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/tax-invoice-generator/internal/config"
	"github.com/ginjaninja78/tax-invoice-generator/internal/converter"
	"github.com/ginjaninja78/tax-invoice-generator/internal/counter"
	"github.com/ginjaninja78/tax-invoice-generator/internal/metadata"
	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
	"github.com/ginjaninja78/tax-invoice-generator/internal/xlsxparser"
	"github.com/ginjaninja78/tax-invoice-generator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processPlace limits the run to one place.
var processPlace string

// dryRun simulates processing without writing output files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Generate invoices for every purchase order in the place folders",
	Long: `The process command walks the input folder of every place listed in the
metadata file (input_dir/<place>/) and generates an Excel and a PDF invoice
for each purchase order found there, in output_dir/<place>/.

Each file is processed independently; a failure in one file does not stop
the others. Invoice numbers are issued from the counter file in processing
order.

On successful processing:
  - Both documents are written to the place's output folder
  - The input is moved to input_archive_dir/<place>/ when archive_on_success is set

On error:
  - The input remains in place
  - The failure is recorded in an error log in the output directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&processPlace,
		"place",
		"",
		"Process only this place",
	)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Build and validate bills without issuing invoice numbers or writing files",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// job is one input file and the place it belongs to.
type job struct {
	place string
	path  string
}

func runProcess(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	startTime := time.Now()
	runID := utils.NewRunID()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Fprintln(out, "=== Tax Invoice Generator ===")

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg

	places, err := selectPlaces(a.meta, processPlace)
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.InputExtensions)
	fm.ArchiveOnSuccess = cfg.ArchiveOnSuccess && !dryRun

	// =========================================================================
	// STEP 2: PREPARE FOLDERS
	// =========================================================================

	if !dryRun {
		if err := config.EnsureOutputDirs(cfg); err != nil {
			return err
		}
		if err := fm.EnsurePlaceDirectories(places); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: DISCOVER INPUT FILES
	// =========================================================================

	var jobs []job
	for _, place := range places {
		files, err := fm.DiscoverPlaceFiles(place)
		if err != nil {
			return fmt.Errorf("failed to discover input files for %s: %w", place, err)
		}
		if len(files) == 0 {
			a.logger.Info("No purchase orders for %s in %s", place, fm.PlaceInputDir(place))
			continue
		}
		for _, f := range files {
			jobs = append(jobs, job{place: place, path: f})
		}
	}

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No purchase orders found in the place folders.")
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) across %d place(s)\n", len(jobs), len(places))

	// =========================================================================
	// STEP 4: PROCESS FILES
	// =========================================================================
	// With max_concurrency 1 the group runs the jobs one after another, in
	// discovery order.

	results := runJobs(a, fm, jobs)

	// =========================================================================
	// STEP 5: ARCHIVE AND COLLECT RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		Places:     len(places),
		TotalFiles: len(jobs),
	}
	var errorEntries []utils.ErrorLogEntry

	for i, result := range results {
		place := jobs[i].place
		name := filepath.Base(result.FilePath)

		summary.TotalRows += result.Stats.RowsRead
		summary.Warnings += result.Stats.Warnings

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				Place:        place,
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			errorEntries = append(errorEntries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				Place:        place,
				FileName:     result.FilePath,
				ErrorType:    errorType(result.Error),
				ErrorMessage: result.Error.Error(),
				InvoiceNo:    issuedNumber(result),
			})
			fmt.Fprintf(out, "  ✗ [%s] %s: %v\n", place, name, result.Error)
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalLineItems += result.Stats.LineItems

		archivePath, err := fm.ArchiveInputFile(place, result.FilePath)
		if err != nil {
			a.logger.Warn("Failed to archive %s: %v", name, err)
			archivePath = ""
		}

		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			Place:       place,
			InputFile:   result.FilePath,
			ExcelFile:   result.ExcelFile,
			PDFFile:     result.PDFFile,
			ArchivePath: archivePath,
			InvoiceNo:   result.InvoiceNo,
			LineItems:   result.Stats.LineItems,
			ProcessTime: result.Stats.ProcessingTime,
		})

		if dryRun {
			fmt.Fprintf(out, "  ✓ [%s] %s -> invoice %d (dry run)\n", place, name, result.InvoiceNo)
		} else {
			fmt.Fprintf(out, "  ✓ [%s] %s -> invoice %d, %s\n", place, name, result.InvoiceNo, filepath.Base(result.ExcelFile))
		}
	}

	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 6: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Warnings:        %d\n", summary.Warnings)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if dryRun {
		return nil
	}

	summaryPath, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
	if err != nil {
		a.logger.Warn("Failed to write summary log: %v", err)
	} else {
		fmt.Fprintf(out, "Summary:         %s\n", summaryPath)
	}

	errorLogPath, err := utils.WriteErrorLog(runID, errorEntries, cfg.OutputDir)
	if err != nil {
		a.logger.Warn("Failed to write error log: %v", err)
	} else if errorLogPath != "" {
		fmt.Fprintf(out, "Error log:       %s\n", errorLogPath)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// runJobs runs the converter over jobs with at most cfg.MaxConcurrency files
// in flight. Results are returned in job order.
func runJobs(a *app, fm *utils.FileManager, jobs []job) []converter.Result {
	results := make([]converter.Result, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(a.cfg.MaxConcurrency)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			results[i] = converter.New(j.path, a.cfg, a.meta, a.counter, converter.Options{
				Place:     j.place,
				OutputDir: fm.PlaceOutputDir(j.place),
				DryRun:    dryRun,
				Logger:    a.logger,
			}).Run()
			return nil
		})
	}

	// Failures are carried in each Result.
	_ = g.Wait()

	return results
}

// selectPlaces returns every place, or only the requested one.
func selectPlaces(meta *metadata.Metadata, requested string) ([]string, error) {
	if requested == "" {
		places := meta.Places()
		if len(places) == 0 {
			return nil, metadata.ErrNoPlaces
		}
		return places, nil
	}
	if _, ok := meta.Place(requested); !ok {
		return nil, fmt.Errorf("place %q is not defined in the metadata file", requested)
	}
	return []string{requested}, nil
}

// errorType classifies a failure for the error log.
func errorType(err error) string {
	switch {
	case errors.Is(err, types.ErrMissingColumn), errors.Is(err, xlsxparser.ErrEmptyWorkbook):
		return "input"
	case errors.Is(err, converter.ErrInvalidDeliveryDate):
		return "filename"
	case errors.Is(err, converter.ErrValidationFailed):
		return "validation"
	case errors.Is(err, counter.ErrCorruptCounter):
		return "counter"
	case errors.Is(err, metadata.ErrNoPlaces):
		return "metadata"
	default:
		return "processing"
	}
}

// issuedNumber is the invoice number a failed file consumed, or 0.
func issuedNumber(result converter.Result) int {
	if dryRun {
		return 0
	}
	return result.InvoiceNo
}
