// =============================================================================
// Tax Invoice Generator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for batch runs:
//   - Per-place input and output directories
//   - Input file discovery by extension
//   - Input archival (moving processed purchase orders)
//   - Summary and error log generation
//
// DIRECTORY LAYOUT:
//   data/<place>/<PO>_<YYYYMMDD>_<suffix>.xlsx      input
//   output/<place>/<place>_<YYYY-MM-DD>_<PO>.xlsx   generated invoice
//   output/<place>/<place>_<YYYY-MM-DD>_<PO>.pdf
//   data_archive/<place>/...                        archived input
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the archive after both documents are written
//   - Failed files remain in their original location
//   - Summary and error logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for batch runs.
type FileManager struct {
	// InputDir holds one subdirectory per place.
	InputDir string

	// OutputDir receives one subdirectory per place plus the run logs.
	OutputDir string

	// InputArchiveDir receives processed inputs, one subdirectory per place.
	InputArchiveDir string

	// Extensions are the lower-case input extensions, with leading dot.
	Extensions []string

	// ArchiveOnSuccess determines whether inputs are moved after success.
	ArchiveOnSuccess bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string, extensions []string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		Extensions:      extensions,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// PlaceInputDir returns the input folder of a place.
func (fm *FileManager) PlaceInputDir(place string) string {
	return filepath.Join(fm.InputDir, place)
}

// PlaceOutputDir returns the output folder of a place.
func (fm *FileManager) PlaceOutputDir(place string) string {
	return filepath.Join(fm.OutputDir, place)
}

// EnsurePlaceDirectories creates the input and output folders of each place.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsurePlaceDirectories(places []string) error {
	for _, place := range places {
		for _, dir := range []string{fm.PlaceInputDir(place), fm.PlaceOutputDir(place)} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverPlaceFiles lists the input files of a place, sorted by name.
//
// RETURNS:
//   - The matching file paths. A missing place folder yields no files.
//   - An error if the folder exists but cannot be read.
func (fm *FileManager) DiscoverPlaceFiles(place string) ([]string, error) {
	return fm.DiscoverFiles(fm.PlaceInputDir(place))
}

// DiscoverFiles lists the files in dir whose extension is one of
// fm.Extensions. Subdirectories and hidden files (including Excel "~$" lock
// files) are skipped.
func (fm *FileManager) DiscoverFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if fm.matchesExtension(name) {
			result = append(result, filepath.Join(dir, name))
		}
	}

	sort.Strings(result)
	return result, nil
}

func (fm *FileManager) matchesExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range fm.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed input into the place's archive folder.
// An existing archived file of the same name is kept and the new one gets a
// timestamp suffix.
//
// RETURNS:
//   - The archived path, or filePath unchanged when archiving is off.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(place, filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archiveDir := filepath.Join(fm.InputArchiveDir, place)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, filepath.Base(filePath))

	// A purchase order dropped in again must not replace the earlier copy.
	if FileExists(archivePath) {
		ext := filepath.Ext(archivePath)
		archivePath = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(archivePath, ext), time.Now().Format("20060102_150405"), ext)
	}

	// Move the file.
	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// NewRunID returns an identifier for one batch run. It appears in the log
// file names and headers so a summary can be matched with its error log.
func NewRunID() string {
	return uuid.New().String()
}

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	Timestamp    time.Time
	Place        string
	FileName     string
	ErrorType    string
	ErrorMessage string
	InvoiceNo    int
}

// WriteErrorLog writes error entries to a log file.
//
// PARAMETERS:
//   - runID: The batch run identifier.
//   - entries: The error entries to write.
//   - outputDir: The directory to write the log file.
//
// RETURNS:
//   - The path to the error log file, or "" when there are no entries.
//   - An error if writing fails.
func WriteErrorLog(runID string, entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s_%s.txt", time.Now().Format("20060102_150405"), shortID(runID)))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Tax Invoice Generator - Error Log\n"+
		"Run ID: %s\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		runID,
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  Place:          %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Place,
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.InvoiceNo > 0 {
			fmt.Fprintf(writer, "  Invoice No:     %d (consumed)\n", entry.InvoiceNo)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	Places          int
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalRows       int
	TotalLineItems  int
	Warnings        int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	Place       string
	InputFile   string
	ExcelFile   string
	PDFFile     string
	ArchivePath string
	InvoiceNo   int
	LineItems   int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	Place        string
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s_%s.txt", summary.StartTime.Format("20060102_150405"), shortID(summary.RunID)))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Tax Invoice Generator - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Places:             %d\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Total Rows:         %d\n"+
		"  Total Line Items:   %d\n"+
		"  Warnings:           %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.Places,
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRows,
		summary.TotalLineItems,
		summary.Warnings)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Place:        %s\n", pf.Place)
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Invoice No:   %d\n", pf.InvoiceNo)
			fmt.Fprintf(writer, "  Excel:        %s\n", pf.ExcelFile)
			if pf.PDFFile != "" {
				fmt.Fprintf(writer, "  PDF:          %s\n", pf.PDFFile)
			}
			if pf.ArchivePath != "" && pf.ArchivePath != pf.InputFile {
				fmt.Fprintf(writer, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Line Items:   %d\n", pf.LineItems)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  Place: %s\n", ff.Place)
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// shortID is the first block of a UUID, used in file names.
func shortID(runID string) string {
	if i := strings.IndexByte(runID, '-'); i > 0 {
		return runID[:i]
	}
	return runID
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
