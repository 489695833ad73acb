package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMainConfigMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadMainConfig(filepath.Join(dir, "config.yaml"), "")
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}

	if cfg.InputDir != DefaultInputDir || cfg.OutputDir != DefaultOutputDir {
		t.Errorf("dirs = %q, %q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.MetadataFile != DefaultMetadataFile || cfg.CounterFile != DefaultCounterFile {
		t.Errorf("files = %q, %q", cfg.MetadataFile, cfg.CounterFile)
	}
	if cfg.Seed() != 1000 {
		t.Errorf("Seed() = %d, want 1000", cfg.Seed())
	}
	if !cfg.PDFEnabled() {
		t.Error("PDFEnabled() = false, want true")
	}
	if cfg.MaxConcurrency != 1 {
		t.Errorf("MaxConcurrency = %d, want 1", cfg.MaxConcurrency)
	}
	if !reflect.DeepEqual(cfg.InputExtensions, DefaultInputExtensions) {
		t.Errorf("InputExtensions = %v", cfg.InputExtensions)
	}
	if cfg.CompanyName != "A.G AGRO" {
		t.Errorf("CompanyName = %q", cfg.CompanyName)
	}
	if cfg.CSV.Delimiter != "," {
		t.Errorf("CSV.Delimiter = %q", cfg.CSV.Delimiter)
	}
}

func TestLoadMainConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
input_dir: ./po
output_dir: ./bills
counter_file: ./state/counter.json
counter_seed: 0
generate_pdf: false
max_concurrency: 3
input_extensions: [XLSX, csv]
log_level: debug
company_name: Test Traders
csv:
  delimiter: ";"
`)

	cfg, err := LoadMainConfig(path, "")
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}

	if cfg.InputDir != "./po" || cfg.OutputDir != "./bills" {
		t.Errorf("dirs = %q, %q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.CounterFile != "./state/counter.json" {
		t.Errorf("CounterFile = %q", cfg.CounterFile)
	}
	// An explicit zero seed is kept.
	if cfg.Seed() != 0 {
		t.Errorf("Seed() = %d, want 0", cfg.Seed())
	}
	if cfg.PDFEnabled() {
		t.Error("PDFEnabled() = true, want false")
	}
	if cfg.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %d", cfg.MaxConcurrency)
	}
	if want := []string{".xlsx", ".csv"}; !reflect.DeepEqual(cfg.InputExtensions, want) {
		t.Errorf("InputExtensions = %v, want %v", cfg.InputExtensions, want)
	}
	if cfg.CompanyName != "Test Traders" || cfg.CompanyAddress != DefaultCompanyAddress {
		t.Errorf("company = %q, %q", cfg.CompanyName, cfg.CompanyAddress)
	}
	if cfg.CSV.Delimiter != ";" {
		t.Errorf("CSV.Delimiter = %q", cfg.CSV.Delimiter)
	}
}

func TestLoadMainConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "counter_seed: 1000\nmetadata_file: ./a.json\n")

	t.Setenv(EnvCounterSeed, "1150")
	t.Setenv(EnvMetadataFile, "./mobile/metadata.json")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := LoadMainConfig(path, "")
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}
	if cfg.Seed() != 1150 {
		t.Errorf("Seed() = %d, want 1150", cfg.Seed())
	}
	if cfg.MetadataFile != "./mobile/metadata.json" {
		t.Errorf("MetadataFile = %q", cfg.MetadataFile)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadMainConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "INVOICEGEN_COUNTER_FILE=/tmp/mobile_counter.json\n")
	t.Cleanup(func() { os.Unsetenv(EnvCounterFile) })

	cfg, err := LoadMainConfig(filepath.Join(dir, "none.yaml"), envPath)
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}
	if cfg.CounterFile != "/tmp/mobile_counter.json" {
		t.Errorf("CounterFile = %q", cfg.CounterFile)
	}

	// A missing .env file is ignored.
	if _, err := LoadMainConfig(filepath.Join(dir, "none.yaml"), filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("LoadMainConfig() with missing env file error = %v", err)
	}
}

func TestLoadMainConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     string
		wantErr string
	}{
		{"negative seed", "counter_seed: -5\n", "", "counter_seed"},
		{"negative concurrency", "max_concurrency: -1\n", "", "max_concurrency"},
		{"bad log level", "log_level: loud\n", "", "log_level"},
		{"bad yaml", "input_dir: [\n", "", "parse"},
		{"bad seed env", "", "abc", EnvCounterSeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.yaml)
			if tt.env != "" {
				t.Setenv(EnvCounterSeed, tt.env)
			}
			_, err := LoadMainConfig(path, "")
			if err == nil {
				t.Fatal("LoadMainConfig() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureOutputDirs(t *testing.T) {
	cfg := &MainConfig{OutputDir: filepath.Join(t.TempDir(), "out", "nested")}
	if err := EnsureOutputDirs(cfg); err != nil {
		t.Fatalf("EnsureOutputDirs() error = %v", err)
	}
	if info, err := os.Stat(cfg.OutputDir); err != nil || !info.IsDir() {
		t.Errorf("output dir not created: %v", err)
	}
}
