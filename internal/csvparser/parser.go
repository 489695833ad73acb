// =============================================================================
// Tax Invoice Generator - CSV Purchase Order Parser
// =============================================================================
//
// Some ordering portals offer the purchase order as a CSV export instead of a
// workbook. This module reads such an export into the same header-keyed table
// the XLSX parser produces, so the rest of the pipeline does not care which
// format arrived.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - Legacy single-byte encodings (windows-1252, iso-8859-1)
//   - UTF-8 byte order marks (as written by spreadsheet "Save as CSV") stripped
//   - Fully empty rows skipped
//
// CSV input is only picked up when ".csv" is listed in input_extensions.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/tax-invoice-generator/internal/config"
	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV export of a purchase order.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - The header-keyed rows. The first record is the header row.
//   - An error if the file cannot be read, is empty, or lacks a required
//     column (types.ErrMissingColumn).
func Parse(filePath string, settings config.CSVSettings) (*types.SourceTable, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader reads CSV data from r. See Parse.
func ParseReader(r io.Reader, settings config.CSVSettings) (*types.SourceTable, error) {
	dec, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := bufio.NewReader(transform.NewReader(r, dec))

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 || isRowEmpty(allRows[0]) {
		return nil, fmt.Errorf("CSV file is empty")
	}

	table := &types.SourceTable{
		Headers: cleanHeaders(allRows[0]),
	}

	if err := table.RequireColumns(types.RequiredColumns); err != nil {
		return nil, err
	}

	table.Rows = extractDataRows(allRows[1:], table.Headers)

	return table, nil
}

// decoderFor returns the transformer that turns the file bytes into UTF-8.
func decoderFor(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		enc = unicode.UTF8
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "iso-8859-1", "latin1":
		enc = charmap.ISO8859_1
	default:
		return nil, fmt.Errorf("unsupported CSV encoding %q", name)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Portal exports are not always rectangular.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// cleanHeaders trims header values.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// extractDataRows converts records to header-keyed maps. A record shorter
// than the header row has no entry for the missing columns.
func extractDataRows(records [][]string, headers []string) []map[string]string {
	dataRows := make([]map[string]string, 0, len(records))

	for _, row := range records {
		if isRowEmpty(row) {
			continue
		}

		rowMap := make(map[string]string, len(headers))
		for colIndex, header := range headers {
			if header == "" || colIndex >= len(row) {
				continue
			}
			if _, seen := rowMap[header]; seen {
				continue
			}
			rowMap[header] = row[colIndex]
		}

		dataRows = append(dataRows, rowMap)
	}

	return dataRows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
