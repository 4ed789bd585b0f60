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

// PrintCountsResult outputs a binned incidence table, dispatching on the
// configured output format.
func PrintCountsResult(table *schema.IncidenceTable, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONCounts(w, table)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVCounts(w, table)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetCounts(table, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCountsTable(w, table, cfg, duration)
		}, "Wrote table")
	}
}

// writeCountsTable renders the incidence table with one column per group.
func writeCountsTable(w io.Writer, table *schema.IncidenceTable, cfg *contract.Config, duration time.Duration) error {
	t := tablewriter.NewWriter(w)

	maxWidth := GetMaxGroupWidth(cfg)
	headers := []string{"Bin", "Start"}
	for _, g := range table.Groups {
		headers = append(headers, truncateLabel(g, maxWidth))
	}
	t.Header(headers)

	t.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(table.Bins))
	for b, start := range table.Bins {
		row := []string{
			fmt.Sprintf("%d", b),
			start.Format(time.DateOnly),
		}
		for gi := range table.Groups {
			row = append(row, fmt.Sprintf("%d", table.Counts[b][gi]))
		}
		data = append(data, row)
	}
	if err := t.Bulk(data); err != nil {
		return err
	}
	if err := t.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%d bin(s) of %d day(s), %d event(s) counted, %d excluded\n",
		len(table.Bins), table.Width, table.Total(), table.Excluded); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Aggregation completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeCSVCounts writes the table in long form, one row per (bin, group).
func writeCSVCounts(w io.Writer, table *schema.IncidenceTable) error {
	header := []string{"bin_index", "bin_start", "width_days", "group", "count"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for b, start := range table.Bins {
			for gi, g := range table.Groups {
				rec := []string{
					fmt.Sprintf("%d", b),
					start.Format(time.DateOnly),
					fmt.Sprintf("%d", table.Width),
					g,
					fmt.Sprintf("%d", table.Counts[b][gi]),
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// writeJSONCounts writes the table as a single JSON document.
func writeJSONCounts(w io.Writer, table *schema.IncidenceTable) error {
	type jsonBin struct {
		Index  int            `json:"index"`
		Start  string         `json:"start"`
		Counts map[string]int `json:"counts"`
	}
	type jsonTable struct {
		WidthDays int       `json:"width_days"`
		Groups    []string  `json:"groups"`
		Bins      []jsonBin `json:"bins"`
		Excluded  int       `json:"excluded"`
	}

	out := jsonTable{
		WidthDays: table.Width,
		Groups:    table.Groups,
		Bins:      make([]jsonBin, 0, len(table.Bins)),
		Excluded:  table.Excluded,
	}
	for b, start := range table.Bins {
		counts := make(map[string]int, len(table.Groups))
		for gi, g := range table.Groups {
			counts[g] = table.Counts[b][gi]
		}
		out.Bins = append(out.Bins, jsonBin{
			Index:  b,
			Start:  start.Format(time.DateOnly),
			Counts: counts,
		})
	}
	return writeJSON(w, out)
}

// writeParquetCounts writes the table to a Parquet file. Parquet output is
// file-only because the format is not stream-friendly on stdout.
func writeParquetCounts(table *schema.IncidenceTable, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	rows := parquet.ConvertIncidenceTable(table)
	if err := parquet.WriteIncidenceParquet(rows, cfg.OutputFile); err != nil {
		return fmt.Errorf("error writing parquet output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote parquet to %s\n", cfg.OutputFile)
	return nil
}
