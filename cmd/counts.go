package cmd

import (
	"github.com/epiforge/epitrend/core"
	"github.com/epiforge/epitrend/internal/contract"
	"github.com/spf13/cobra"
)

// countsCmd aggregates a linelist into a binned incidence table.
var countsCmd = &cobra.Command{
	Use:   "counts <linelist>",
	Short: "Aggregate case dates into binned incidence counts.",
	Long: `Read a linelist CSV of case dates and bin them into fixed-width intervals.

Each row of the linelist is one event. Events are floored to UTC days and
assigned to the interval containing their date. An optional group column
stratifies the counts into one series per group.

Examples:
  # Weekly counts from a linelist
  epitrend counts cases.csv

  # Daily counts for a fixed reporting window
  epitrend counts cases.csv --interval 1 --from 2024-01-01 --to 2024-03-31

  # Stratify by region and export to CSV
  epitrend counts cases.csv --group-column region --output csv --output-file counts.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCounts(cfg, storeManager); err != nil {
			contract.LogFatal("Cannot aggregate counts", err)
		}
	},
}
