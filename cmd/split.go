package cmd

import (
	"github.com/epiforge/epitrend/core"
	"github.com/epiforge/epitrend/internal/contract"
	"github.com/spf13/cobra"
)

// splitCmd searches for the changepoint between growth and decay.
var splitCmd = &cobra.Command{
	Use:   "split <linelist>",
	Short: "Locate the turning point between epidemic growth and decay.",
	Long: `Search every admissible bin for the split that best divides the series
into two log-linear phases.

For each candidate the series is fitted before and after the split and the
candidate maximizing the summed r-squared wins. Ties prefer the split
closest to the peak bin. Each side must keep at least --min-window bins.

Examples:
  # Find the epidemic turning point
  epitrend split cases.csv

  # Search only bins 5 through 20 with wider phase windows
  epitrend split cases.csv --candidate-start 5 --candidate-end 20 --min-window 3

  # Per-region turning points as JSON
  epitrend split cases.csv --group-column region --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSplit(cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run split search", err)
		}
	},
}
