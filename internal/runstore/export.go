package runstore

import (
	"errors"
	"fmt"

	"github.com/epiforge/epitrend/internal/parquet"
)

// ExecuteStoreExport exports all recorded runs and fits to Parquet files.
func ExecuteStoreExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run tracking is disabled; configure --store-backend first")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total fit records: %d\n", status.TableSizes[fitsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	fits, err := store.GetAllFits()
	if err != nil {
		return fmt.Errorf("failed to retrieve fits: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetFits := parquet.ConvertFitRecords(fits)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	fitsFile := outputFile + ".fits.parquet"
	if err := parquet.WriteFitRecordsParquet(parquetFits, fitsFile); err != nil {
		return fmt.Errorf("failed to write fits: %w", err)
	}
	fmt.Printf("Exported %d fit records to: %s\n", len(parquetFits), fitsFile)

	return nil
}
