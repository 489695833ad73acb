package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/tax-invoice-generator/internal/converter"
	"github.com/ginjaninja78/tax-invoice-generator/internal/counter"
	"github.com/ginjaninja78/tax-invoice-generator/internal/metadata"
	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
	"github.com/ginjaninja78/tax-invoice-generator/internal/xlsxparser"
)

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("read: %w", types.ErrMissingColumn), "input"},
		{fmt.Errorf("read: %w", xlsxparser.ErrEmptyWorkbook), "input"},
		{fmt.Errorf("name: %w", converter.ErrInvalidDeliveryDate), "filename"},
		{fmt.Errorf("%w: 1 error(s)", converter.ErrValidationFailed), "validation"},
		{fmt.Errorf("issue: %w", counter.ErrCorruptCounter), "counter"},
		{metadata.ErrNoPlaces, "metadata"},
		{errors.New("disk full"), "processing"},
	}

	for _, tt := range tests {
		if got := errorType(tt.err); got != tt.want {
			t.Errorf("errorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// workspace lays out a config file, metadata and one purchase order for
// DMART, and returns the config path.
func workspace(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()

	metadataJSON := `{
  "GST": "10ABCDE1234F1Z5",
  "vendor_code": "V-778",
  "DMART": {"bill_to": "Avenue Supermarts Ltd", "place_of_supply": "Bihar", "site_code": "D42"},
  "RELIANCE": {"bill_to": "Reliance Retail", "place_of_supply": "Bihar", "site_code": "R7"}
}`
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(metadataJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := fmt.Sprintf(`input_dir: %q
output_dir: %q
input_archive_dir: %q
archive_on_success: true
metadata_file: %q
counter_file: %q
log_level: error
`,
		filepath.Join(dir, "data"),
		filepath.Join(dir, "output"),
		filepath.Join(dir, "archive"),
		filepath.Join(dir, "metadata.json"),
		filepath.Join(dir, "invoice_counter.json"),
	)
	cfgPath = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	writePO(t, filepath.Join(dir, "data", "DMART", "PO1_20250422_a.xlsx"), [][]interface{}{
		{"Item Code", "HSN Code", "Product Description", "Grammage", "Quantity", "Landing Rate"},
		{590001234, 19059020, "Rusk Premium", "300 g", 24, 38.5},
		{"", "", "Total", "", 24, ""},
		{"", "", "Amount in words", "", "", ""},
		{"", "", "Generated by PO portal", "", "", ""},
	})

	return dir, cfgPath
}

// writePO saves rows as a purchase-order workbook, creating its folder.
func writePO(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		row := row
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := wb.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()

	// Flag variables outlive a single Execute call.
	processPlace, dryRun = "", false
	generateFile, generatePlace, generateJSON = "", "", false
	validateFile, validatePlace = "", ""
	verbose = false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute(%v) error = %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

func TestProcessCommand(t *testing.T) {
	dir, cfgPath := workspace(t)
	envPath := filepath.Join(dir, "missing.env")

	out := execute(t, "--config", cfgPath, "--env-file", envPath, "process")

	if !strings.Contains(out, "Successful:      1") {
		t.Errorf("output:\n%s", out)
	}

	for _, name := range []string{"DMART_2025-04-22_PO1.xlsx", "DMART_2025-04-22_PO1.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, "output", "DMART", name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "archive", "DMART", "PO1_20250422_a.xlsx")); err != nil {
		t.Errorf("input not archived: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "output", "RELIANCE")); err != nil {
		t.Errorf("place output folder not created: %v", err)
	}

	out = execute(t, "--config", cfgPath, "--env-file", envPath, "counter")
	if !strings.Contains(out, "Last issued:  1001") || !strings.Contains(out, "Next invoice: 1002") {
		t.Errorf("counter output:\n%s", out)
	}
}

func TestProcessDryRun(t *testing.T) {
	dir, cfgPath := workspace(t)

	out := execute(t, "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"), "process", "--dry-run")

	if !strings.Contains(out, "invoice 1001 (dry run)") {
		t.Errorf("output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "output")); !os.IsNotExist(err) {
		t.Error("dry run created the output folder")
	}
	if _, err := os.Stat(filepath.Join(dir, "invoice_counter.json")); !os.IsNotExist(err) {
		t.Error("dry run created the counter file")
	}
}

func TestProcessContinuesAfterFailedFile(t *testing.T) {
	dir, cfgPath := workspace(t)
	bad := filepath.Join(dir, "data", "DMART", "PO0_20250421_b.xlsx")
	writePO(t, bad, [][]interface{}{
		{"Item Code", "HSN Code", "Product Description", "Quantity"},
		{590001234, 19059020, "Rusk Premium", 24},
	})

	out := execute(t, "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"), "process")

	for _, want := range []string{"Successful:      1", "Errors:          1", "✗ [DMART] PO0_20250421_b.xlsx", "✓ [DMART] PO1_20250422_a.xlsx -> invoice 1001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := os.Stat(bad); err != nil {
		t.Errorf("failed input was moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "output", "DMART", "DMART_2025-04-22_PO1.xlsx")); err != nil {
		t.Errorf("good file not generated: %v", err)
	}

	logs, _ := filepath.Glob(filepath.Join(dir, "output", "error_log_*.txt"))
	if len(logs) != 1 {
		t.Fatalf("error logs = %v, want one", logs)
	}
	data, err := os.ReadFile(logs[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "PO0_20250421_b.xlsx") {
		t.Errorf("error log:\n%s", data)
	}
}

func TestProcessDryRunNumbersInOrder(t *testing.T) {
	dir, cfgPath := workspace(t)
	writePO(t, filepath.Join(dir, "data", "RELIANCE", "PO2_20250423_c.xlsx"), [][]interface{}{
		{"Item Code", "HSN Code", "Product Description", "Grammage", "Quantity", "Landing Rate"},
		{590001235, 19059020, "Toast", "200 g", 12, 30},
		{"", "", "Total", "", 12, ""},
		{"", "", "Amount in words", "", "", ""},
		{"", "", "Generated by PO portal", "", "", ""},
	})

	out := execute(t, "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"), "process", "--dry-run")

	for _, want := range []string{"PO1_20250422_a.xlsx -> invoice 1001 (dry run)", "PO2_20250423_c.xlsx -> invoice 1002 (dry run)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "invoice_counter.json")); !os.IsNotExist(err) {
		t.Error("dry run created the counter file")
	}
}

func TestGenerateJSON(t *testing.T) {
	dir, cfgPath := workspace(t)
	input := filepath.Join(dir, "data", "DMART", "PO1_20250422_a.xlsx")

	out := execute(t, "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"),
		"generate", "--file", input, "--place", "NOWHERE", "--json")

	var got generateOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}

	if got.Place != "DMART" {
		t.Errorf("place = %q, want fallback DMART", got.Place)
	}
	if got.InvoiceNo != 1001 {
		t.Errorf("invoice_no = %d, want 1001", got.InvoiceNo)
	}
	if want := filepath.Join(dir, "output", "DMART_2025-04-22_PO1.xlsx"); got.Excel != want {
		t.Errorf("excel = %q, want %q", got.Excel, want)
	}
	if want := filepath.Join(dir, "output", "DMART_2025-04-22_PO1.pdf"); got.PDF != want {
		t.Errorf("pdf = %q, want %q", got.PDF, want)
	}
	for _, path := range []string{got.Excel, got.PDF} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &keys); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"excel", "pdf", "place", "invoice_no"} {
		if _, ok := keys[key]; !ok {
			t.Errorf("JSON output has no %q key", key)
		}
	}
}

func TestValidatePreviewKeepsCounter(t *testing.T) {
	dir, cfgPath := workspace(t)
	input := filepath.Join(dir, "data", "DMART", "PO1_20250422_a.xlsx")

	out := execute(t, "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"), "validate", "--file", input)

	for _, want := range []string{"Places:      2", "next invoice 1001", "Rusk Premium", "PO:            PO1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "invoice_counter.json")); !os.IsNotExist(err) {
		t.Error("validate created the counter file")
	}
	if _, err := os.Stat(filepath.Join(dir, "output")); !os.IsNotExist(err) {
		t.Error("validate created the output folder")
	}
}
