package cmd

import (
	"github.com/epiforge/epitrend/core"
	"github.com/epiforge/epitrend/internal/contract"
	"github.com/spf13/cobra"
)

// fitCmd fits a log-linear growth model to binned incidence.
var fitCmd = &cobra.Command{
	Use:   "fit <linelist>",
	Short: "Fit a log-linear growth model and report the epidemic trend.",
	Long: `Aggregate a linelist and fit log(count+1) against bin index by least squares.

The slope is the exponential growth rate per interval, reported with a
confidence interval, r-squared and the implied doubling or halving time.
A trend is only called Growing or Declining when the confidence interval
excludes zero.

Examples:
  # Weekly growth rate across the full series
  epitrend fit cases.csv

  # Restrict the fit to bins 4 through 12
  epitrend fit cases.csv --window-start 4 --window-end 12

  # Per-region trends at 90% confidence
  epitrend fit cases.csv --group-column region --level 0.90

  # Track fits over time in a local store
  epitrend fit cases.csv --store-backend sqlite`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFit(cfg, storeManager); err != nil {
			contract.LogFatal("Cannot fit trend model", err)
		}
	},
}
