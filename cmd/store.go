package cmd

import (
	"fmt"

	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/internal/runstore"
	"github.com/epiforge/epitrend/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store operations. This
// avoids linelist validation for simple data-management commands.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	backend := schema.DatabaseBackend(backendStr)
	if backendStr == "" || backend == schema.NoneBackend {
		// Store commands operate on real storage; default to the local file
		backend = schema.SQLiteBackend
	}

	if err := contract.ValidateStoreConnect(backend, connStr); err != nil {
		return err
	}

	if err := runstore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads configuration for migrations without initializing
// the store, so migrations can run on a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	backend := schema.DatabaseBackend(backendStr)
	if backendStr == "" || backend == schema.NoneBackend {
		backend = schema.SQLiteBackend
	}

	if err := contract.ValidateStoreConnect(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on run-tracking data management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage historical run tracking and exports",
	Long: `Manage historical run data recorded by the fit and split commands.

When enabled, epitrend tracks every run, storing:
- Run metadata (timestamp, source linelist, configuration, duration)
- Every fitted segment (full fits plus growth/decay phases of splits)

Supported backends: SQLite (default), MySQL, PostgreSQL

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  epitrend store status

  # Export for analysis in pandas/DuckDB
  epitrend store export --output-file epitrend-data`,
}

// storeStatusCmd shows run store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about the run-tracking store.

Displays the backend type, storage location, total recorded runs and the
row counts of the underlying tables.

Examples:
  # Check run tracking status
  epitrend store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := runstore.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		runstore.PrintStoreStatus(status)
	},
}

// storeClearCmd clears the run data.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all historical run tracking data",
	Long: `Delete all stored runs and fitted models.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  epitrend store export --output-file backup
  epitrend store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.Manager.GetRunStore().Clear(); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// storeExportCmd exports run data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical data to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format.

Exports two datasets:
- Runs - metadata about each fit or split execution
- Fits - every fitted segment with rates, intervals and diagnostics

Requires: --output-file parameter

Examples:
  # Export all data
  epitrend store export --output-file epitrend-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('epitrend-data.fits.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ExecuteStoreExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the run store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run-tracking store.

By default, migrates to the latest version. Use --target-version for
specific versions.

Examples:
  # Migrate to latest version (default)
  epitrend store migrate

  # Rollback all migrations
  epitrend store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
