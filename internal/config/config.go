// =============================================================================
// Tax Invoice Generator - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later ones win):
//   1. Built-in defaults
//   2. Main config file (config.yaml), optional
//   3. Environment variables, optionally loaded from a .env file
//
// ENVIRONMENT OVERRIDES:
//   INVOICEGEN_METADATA_FILE   metadata_file
//   INVOICEGEN_COUNTER_FILE    counter_file
//   INVOICEGEN_COUNTER_SEED    counter_seed
//   INVOICEGEN_INPUT_DIR       input_dir
//   INVOICEGEN_OUTPUT_DIR      output_dir
//   INVOICEGEN_LOG_LEVEL       log_level
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir holds one subdirectory per place with that place's purchase
	// orders (batch mode).
	// Default: "./data"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated invoices. Batch mode writes into a
	// per-place subdirectory.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where processed purchase orders are moved when
	// ArchiveOnSuccess is set.
	// Default: "./data_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveOnSuccess moves each input file into InputArchiveDir after both
	// documents were generated.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// =========================================================================
	// BILLING DATA
	// =========================================================================

	// MetadataFile is the JSON file with GST, vendor code and places.
	// Default: "./metadata.json"
	MetadataFile string `yaml:"metadata_file"`

	// CounterFile is the JSON file holding the last issued invoice number.
	// Default: "./invoice_counter.json"
	CounterFile string `yaml:"counter_file"`

	// CounterSeed is written to a fresh counter file. The first invoice issued
	// is CounterSeed+1.
	// Default: 1000
	CounterSeed *int `yaml:"counter_seed"`

	// CompanyName and CompanyAddress are printed in the invoice header.
	CompanyName    string `yaml:"company_name"`
	CompanyAddress string `yaml:"company_address"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// InputExtensions lists the file extensions picked up from input folders.
	// Add ".csv" to accept CSV exports of the purchase-order sheet.
	// Default: [".xlsx", ".xlsm", ".xls"]
	InputExtensions []string `yaml:"input_extensions"`

	// CSV contains settings for CSV input files.
	CSV CSVSettings `yaml:"csv"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file. Messages always go to stdout as well.
	// Default: "" (stdout only)
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of files processed at once in batch mode.
	// With more than one worker invoice numbers follow completion order.
	// Default: 1
	MaxConcurrency int `yaml:"max_concurrency"`

	// GeneratePDF controls whether a PDF is written next to each workbook.
	// Default: true
	GeneratePDF *bool `yaml:"generate_pdf"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the field separator. Only the first character is used.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the file. A UTF-8 byte order mark
	// is always stripped.
	// Valid values: "utf-8", "windows-1252", "iso-8859-1"
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`
}

// Seed returns the configured counter seed.
func (c *MainConfig) Seed() int {
	if c.CounterSeed == nil {
		return DefaultCounterSeed
	}
	return *c.CounterSeed
}

// PDFEnabled reports whether PDFs should be generated.
func (c *MainConfig) PDFEnabled() bool {
	return c.GeneratePDF == nil || *c.GeneratePDF
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultInputDir        = "./data"
	DefaultOutputDir       = "./output"
	DefaultInputArchiveDir = "./data_archive"
	DefaultMetadataFile    = "./metadata.json"
	DefaultCounterFile     = "./invoice_counter.json"
	DefaultCounterSeed     = 1000
	DefaultCompanyName     = "A.G AGRO"
	DefaultCompanyAddress  = "TEGHRA,BEGUSARAI-851133"
	DefaultLogLevel        = "info"
)

// DefaultInputExtensions are the spreadsheet formats read in batch mode.
var DefaultInputExtensions = []string{".xlsx", ".xlsm", ".xls"}

// Environment variable names.
const (
	EnvMetadataFile = "INVOICEGEN_METADATA_FILE"
	EnvCounterFile  = "INVOICEGEN_COUNTER_FILE"
	EnvCounterSeed  = "INVOICEGEN_COUNTER_SEED"
	EnvInputDir     = "INVOICEGEN_INPUT_DIR"
	EnvOutputDir    = "INVOICEGEN_OUTPUT_DIR"
	EnvLogLevel     = "INVOICEGEN_LOG_LEVEL"
)

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the YAML config file. A missing file is not an
//     error; defaults are used instead.
//   - envFile: An optional .env file loaded into the environment before the
//     overrides are read. A missing file is ignored.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if a file cannot be parsed or a value is invalid.
func LoadMainConfig(configPath, envFile string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if envFile != "" {
		// godotenv.Load never overrides variables that are already set.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := applyEnvOverrides(&config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides copies INVOICEGEN_* variables over the file values.
func applyEnvOverrides(config *MainConfig) error {
	if v := os.Getenv(EnvMetadataFile); v != "" {
		config.MetadataFile = v
	}
	if v := os.Getenv(EnvCounterFile); v != "" {
		config.CounterFile = v
	}
	if v := os.Getenv(EnvInputDir); v != "" {
		config.InputDir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		config.OutputDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv(EnvCounterSeed); v != "" {
		seed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCounterSeed, err)
		}
		config.CounterSeed = &seed
	}
	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = DefaultInputDir
	}
	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = DefaultInputArchiveDir
	}
	if config.MetadataFile == "" {
		config.MetadataFile = DefaultMetadataFile
	}
	if config.CounterFile == "" {
		config.CounterFile = DefaultCounterFile
	}
	if config.CounterSeed == nil {
		seed := DefaultCounterSeed
		config.CounterSeed = &seed
	}
	if config.CompanyName == "" {
		config.CompanyName = DefaultCompanyName
	}
	if config.CompanyAddress == "" {
		config.CompanyAddress = DefaultCompanyAddress
	}
	if len(config.InputExtensions) == 0 {
		config.InputExtensions = append([]string(nil), DefaultInputExtensions...)
	}
	for i, ext := range config.InputExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		config.InputExtensions[i] = ext
	}
	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
	if config.CSV.Encoding == "" {
		config.CSV.Encoding = "utf-8"
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 1
	}
	if config.GeneratePDF == nil {
		enabled := true
		config.GeneratePDF = &enabled
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if *config.CounterSeed < 0 {
		return fmt.Errorf("counter_seed must not be negative, got %d", *config.CounterSeed)
	}
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}
	return nil
}

// EnsureOutputDirs creates the output directory.
func EnsureOutputDirs(config *MainConfig) error {
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", config.OutputDir, err)
	}
	return nil
}
