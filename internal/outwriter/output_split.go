package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/internal/parquet"
	"github.com/epiforge/epitrend/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintSplitResults outputs one changepoint search result per group,
// dispatching on the configured output format.
func PrintSplitResults(splits []schema.SplitFit, table *schema.IncidenceTable, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONSplits(w, splits)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVSplits(w, splits, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetSplits(splits, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSplitTable(w, splits, table, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeSplitTable renders split results with one before/after pair per row.
func writeSplitTable(w io.Writer, splits []schema.SplitFit, table *schema.IncidenceTable, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	t := tablewriter.NewWriter(w)

	t.Header([]string{"Group", "Split", "Date", "Before", "Trend", "After", "Trend", "Score"})
	t.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := GetMaxGroupWidth(cfg)
	data := make([][]string, 0, len(splits))
	for _, s := range splits {
		row := []string{
			truncateLabel(s.Group, maxWidth),
			fmt.Sprintf("%d", s.SplitBin),
			s.SplitDate.Format(time.DateOnly),
			fmtFloat(s.Before.Rate),
			labelFor(s.Before, cfg),
			fmtFloat(s.After.Rate),
			labelFor(s.After, cfg),
			fmtFloat(s.Score),
		}
		data = append(data, row)
	}
	if err := t.Bulk(data); err != nil {
		return err
	}
	if err := t.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Score is the sum of before/after r-squared; rates per %d-day interval\n", table.Width); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Searched %d group(s) in %v with %d workers\n", len(splits), duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// writeCSVSplits writes two CSV rows per split, one per segment.
func writeCSVSplits(w io.Writer, splits []schema.SplitFit, fmtFloat func(float64) string) error {
	header := []string{
		"group",
		"split_bin",
		"split_date",
		"segment",
		"window_start",
		"window_end",
		"rate",
		"r_squared",
		"trend",
		"score",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range splits {
			segments := []struct {
				name  schema.Segment
				model schema.FittedModel
			}{
				{schema.GrowthSegment, s.Before},
				{schema.DecaySegment, s.After},
			}
			for _, seg := range segments {
				rec := []string{
					s.Group,
					fmt.Sprintf("%d", s.SplitBin),
					s.SplitDate.Format(time.DateOnly),
					string(seg.name),
					fmt.Sprintf("%d", seg.model.Window.Start),
					fmt.Sprintf("%d", seg.model.Window.End),
					fmtFloat(seg.model.Rate),
					fmtFloat(seg.model.RSquared),
					string(schema.Trend(seg.model)),
					fmtFloat(s.Score),
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// writeJSONSplits writes split results with trend labels attached.
func writeJSONSplits(w io.Writer, splits []schema.SplitFit) error {
	type jsonSplit struct {
		BeforeTrend string `json:"before_trend"`
		AfterTrend  string `json:"after_trend"`
		schema.SplitFit
	}
	out := make([]jsonSplit, len(splits))
	for i, s := range splits {
		out[i] = jsonSplit{
			BeforeTrend: string(schema.Trend(s.Before)),
			AfterTrend:  string(schema.Trend(s.After)),
			SplitFit:    s,
		}
	}
	return writeJSON(w, out)
}

// writeParquetSplits writes split results to a Parquet file.
func writeParquetSplits(splits []schema.SplitFit, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	rows := parquet.ConvertSplitFits(splits)
	if err := parquet.WriteFitsParquet(rows, cfg.OutputFile); err != nil {
		return fmt.Errorf("error writing parquet output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote parquet to %s\n", cfg.OutputFile)
	return nil
}
