// Package parquet provides data structures and functions for exporting
// epitrend results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/epiforge/epitrend/schema"
)

// IncidenceRow is one (bin, group) cell of an incidence table.
type IncidenceRow struct {
	BinIndex int32     `parquet:"bin_index,snappy"`
	BinStart time.Time `parquet:"bin_start,snappy"`
	Width    int32     `parquet:"width_days,snappy"`
	Group    string    `parquet:"group,snappy"`
	Count    int32     `parquet:"count,snappy"`
}

// FitRow is one fitted model, either a standalone fit or one segment of a
// split. Optional fields are nil for inconclusive fits.
type FitRow struct {
	Group        string   `parquet:"group,snappy"`
	Segment      string   `parquet:"segment,snappy"`
	WindowStart  int32    `parquet:"window_start,snappy"`
	WindowEnd    int32    `parquet:"window_end,snappy"`
	Rate         float64  `parquet:"rate,snappy"`
	StdErr       float64  `parquet:"std_err,snappy"`
	RateLower    *float64 `parquet:"rate_lower,optional,snappy"`
	RateUpper    *float64 `parquet:"rate_upper,optional,snappy"`
	Level        float64  `parquet:"level,snappy"`
	RSquared     float64  `parquet:"r_squared,snappy"`
	Conclusive   bool     `parquet:"conclusive,snappy"`
	DoublingTime *float64 `parquet:"doubling_time,optional,snappy"`
	HalvingTime  *float64 `parquet:"halving_time,optional,snappy"`
	SplitBin     *int32   `parquet:"split_bin,optional,snappy"`
}

// RunRow maps to the epitrend_runs database table for store exports.
type RunRow struct {
	RunID         int64      `parquet:"run_id,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalFits     int32      `parquet:"total_fits,snappy"`
	Source        string     `parquet:"source,snappy"`
	ConfigParams  *string    `parquet:"config_params,optional,snappy"`
}

// FitRecordRow maps to the epitrend_fits database table for store exports.
type FitRecordRow struct {
	RunID        int64     `parquet:"run_id,snappy"`
	Group        string    `parquet:"group,snappy"`
	Segment      string    `parquet:"segment,snappy"`
	WindowStart  int32     `parquet:"window_start,snappy"`
	WindowEnd    int32     `parquet:"window_end,snappy"`
	Rate         float64   `parquet:"rate,snappy"`
	StdErr       float64   `parquet:"std_err,snappy"`
	RateLower    float64   `parquet:"rate_lower,snappy"`
	RateUpper    float64   `parquet:"rate_upper,snappy"`
	Level        float64   `parquet:"level,snappy"`
	RSquared     float64   `parquet:"r_squared,snappy"`
	Conclusive   bool      `parquet:"conclusive,snappy"`
	DoublingTime *float64  `parquet:"doubling_time,optional,snappy"`
	HalvingTime  *float64  `parquet:"halving_time,optional,snappy"`
	SplitBin     *int32    `parquet:"split_bin,optional,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
}

// ConvertIncidenceTable flattens an incidence table into parquet rows.
func ConvertIncidenceTable(table *schema.IncidenceTable) []IncidenceRow {
	rows := make([]IncidenceRow, 0, len(table.Bins)*len(table.Groups))
	for b, start := range table.Bins {
		for gi, g := range table.Groups {
			rows = append(rows, IncidenceRow{
				BinIndex: int32(b),
				BinStart: start,
				Width:    int32(table.Width),
				Group:    g,
				Count:    int32(table.Counts[b][gi]),
			})
		}
	}
	return rows
}

// ConvertFittedModels converts fitted models into parquet rows.
func ConvertFittedModels(models []schema.FittedModel, segment schema.Segment, splitBin *int32) []FitRow {
	rows := make([]FitRow, 0, len(models))
	for _, m := range models {
		rows = append(rows, FitRow{
			Group:        m.Group,
			Segment:      string(segment),
			WindowStart:  int32(m.Window.Start),
			WindowEnd:    int32(m.Window.End),
			Rate:         m.Rate,
			StdErr:       m.StdErr,
			RateLower:    m.RateLower,
			RateUpper:    m.RateUpper,
			Level:        m.Level,
			RSquared:     m.RSquared,
			Conclusive:   m.Conclusive,
			DoublingTime: m.DoublingTime,
			HalvingTime:  m.HalvingTime,
			SplitBin:     splitBin,
		})
	}
	return rows
}

// ConvertSplitFits converts split results into parquet rows, two per split.
func ConvertSplitFits(splits []schema.SplitFit) []FitRow {
	rows := make([]FitRow, 0, 2*len(splits))
	for _, s := range splits {
		bin := int32(s.SplitBin)
		rows = append(rows, ConvertFittedModels([]schema.FittedModel{s.Before}, schema.GrowthSegment, &bin)...)
		rows = append(rows, ConvertFittedModels([]schema.FittedModel{s.After}, schema.DecaySegment, &bin)...)
	}
	return rows
}

// ConvertRunRecords converts stored run records into parquet rows.
func ConvertRunRecords(runs []schema.RunRecord) []RunRow {
	rows := make([]RunRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, RunRow{
			RunID:         r.RunID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			TotalFits:     r.TotalFits,
			Source:        r.Source,
			ConfigParams:  r.ConfigParams,
		})
	}
	return rows
}

// ConvertFitRecords converts stored fit records into parquet rows.
func ConvertFitRecords(fits []schema.FitRecord) []FitRecordRow {
	rows := make([]FitRecordRow, 0, len(fits))
	for _, f := range fits {
		rows = append(rows, FitRecordRow{
			RunID:        f.RunID,
			Group:        f.Group,
			Segment:      string(f.Segment),
			WindowStart:  f.WindowStart,
			WindowEnd:    f.WindowEnd,
			Rate:         f.Rate,
			StdErr:       f.StdErr,
			RateLower:    f.RateLower,
			RateUpper:    f.RateUpper,
			Level:        f.Level,
			RSquared:     f.RSquared,
			Conclusive:   f.Conclusive,
			DoublingTime: f.DoublingTime,
			HalvingTime:  f.HalvingTime,
			SplitBin:     f.SplitBin,
			RecordedAt:   f.RecordedAt,
		})
	}
	return rows
}

// writeParquetFile writes rows to a Parquet file using struct schema
// inference from the row type's tags.
func writeParquetFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// WriteIncidenceParquet writes incidence rows to a Parquet file.
func WriteIncidenceParquet(data []IncidenceRow, outputPath string) error {
	return writeParquetFile(data, outputPath)
}

// WriteFitsParquet writes fit rows to a Parquet file.
func WriteFitsParquet(data []FitRow, outputPath string) error {
	return writeParquetFile(data, outputPath)
}

// WriteRunsParquet writes stored run rows to a Parquet file.
func WriteRunsParquet(data []RunRow, outputPath string) error {
	return writeParquetFile(data, outputPath)
}

// WriteFitRecordsParquet writes stored fit record rows to a Parquet file.
func WriteFitRecordsParquet(data []FitRecordRow, outputPath string) error {
	return writeParquetFile(data, outputPath)
}
