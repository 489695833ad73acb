// =============================================================================
// Tax Invoice Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI and the loader shared
// by the subcommands.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoicegen)
//   ├── generateCmd (invoicegen generate)
//   ├── processCmd  (invoicegen process)
//   ├── validateCmd (invoicegen validate)
//   ├── counterCmd  (invoicegen counter)
//   └── versionCmd  (invoicegen version)
//
// CONFIGURATION:
//   Every command that touches billing data goes through loadApp:
//   1. Load config.yaml (missing file -> defaults) and the .env overlay
//   2. Set up logging
//   3. Load the metadata file
//   4. Open the invoice counter
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tax-invoice-generator/internal/config"
	"github.com/ginjaninja78/tax-invoice-generator/internal/counter"
	"github.com/ginjaninja78/tax-invoice-generator/internal/logging"
	"github.com/ginjaninja78/tax-invoice-generator/internal/metadata"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile is an optional dotenv file applied on top of the environment.
var envFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoicegen",
	Short: "Tax Invoice Generator - Excel and PDF invoices from purchase orders",
	Long: `Tax Invoice Generator turns purchase-order spreadsheets into numbered tax
invoices. Each purchase order produces an Excel workbook and a PDF with the
same layout.

The PO number and delivery date come from the input filename
(<PO>_<YYYYMMDD>_<anything>.xlsx). Billing details for each place come from
the metadata file, and invoice numbers from a persistent counter file.

Example Usage:
  invoicegen process                          # Every file in data/<place>/
  invoicegen generate --file PO.xlsx --place DMART
  invoicegen validate --file PO.xlsx          # Preview without issuing a number
  invoicegen counter                          # Show the last issued number`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Optional dotenv file with INVOICEGEN_* overrides",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// APPLICATION LOADER
// =============================================================================

// app bundles what the subcommands need.
type app struct {
	cfg     *config.MainConfig
	logger  logging.Logger
	meta    *metadata.Metadata
	counter *counter.Store

	logCloser io.Closer
}

// loadApp loads configuration, logging, metadata and the counter.
func loadApp() (*app, error) {
	cfg, err := config.LoadMainConfig(cfgFile, envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	logger, closer, err := logging.NewFromConfig(cfg.LogFile, cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}

	meta, err := metadata.Load(cfg.MetadataFile)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}

	logger.Debug("Loaded %d place(s) from %s", len(meta.Places()), cfg.MetadataFile)

	return &app{
		cfg:       cfg,
		logger:    logger,
		meta:      meta,
		counter:   counter.New(cfg.CounterFile, cfg.Seed()),
		logCloser: closer,
	}, nil
}

// Close releases the log file.
func (a *app) Close() error {
	return a.logCloser.Close()
}
