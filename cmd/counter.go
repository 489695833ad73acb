// =============================================================================
// Tax Invoice Generator - Counter Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicegen counter
//
// OUTPUT:
//   Counter file: ./invoice_counter.json
//   Last issued:  1004
//   Next invoice: 1005
//
// The counter is only read. A missing file reports the configured seed.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tax-invoice-generator/internal/config"
	"github.com/ginjaninja78/tax-invoice-generator/internal/counter"
)

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Show the last issued and the next invoice number",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile, envFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}

		store := counter.New(cfg.CounterFile, cfg.Seed())
		last, err := store.Peek()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Counter file: %s\n", store.Path())
		fmt.Fprintf(out, "Last issued:  %d\n", last)
		fmt.Fprintf(out, "Next invoice: %d\n", last+1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(counterCmd)
}
