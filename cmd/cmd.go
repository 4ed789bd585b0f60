// Package cmd defines the command-line interface for epitrend.
package cmd

import (
	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(countsCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("date-column", contract.DefaultDateColumn, "CSV column holding event dates")
	rootCmd.PersistentFlags().String("group-column", "", "Optional CSV column to stratify counts by")
	rootCmd.PersistentFlags().String("date-format", contract.DefaultDateFormat, "Go layout used to parse event dates")
	rootCmd.PersistentFlags().IntP("interval", "i", contract.DefaultIntervalDays, "Bin width in days")
	rootCmd.PersistentFlags().String("from", "", "Start date of the aggregation range (inclusive)")
	rootCmd.PersistentFlags().String("to", "", "End date of the aggregation range (inclusive)")
	rootCmd.PersistentFlags().Bool("sort-groups", false, "Sort groups lexically instead of first appearance")
	rootCmd.PersistentFlags().StringP("group", "g", "", "Analyze only this group")
	rootCmd.PersistentFlags().Float64("level", contract.DefaultLevel, "Confidence level for rate intervals")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.NoneBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql run tracking")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of fitCmd to Viper
	fitCmd.Flags().Int("window-start", -1, "First bin index of the fit window")
	fitCmd.Flags().Int("window-end", -1, "Last bin index of the fit window")
	if err := viper.BindPFlags(fitCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fit flags", err)
	}

	// Bind all flags of splitCmd to Viper
	splitCmd.Flags().Int("candidate-start", -1, "First bin index considered as a split point")
	splitCmd.Flags().Int("candidate-end", -1, "Last bin index considered as a split point")
	splitCmd.Flags().Int("min-window", contract.DefaultMinWindow, "Minimum bins on each side of the split")
	if err := viper.BindPFlags(splitCmd.Flags()); err != nil {
		contract.LogFatal("Error binding split flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
