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

// PrintFitResults outputs one fitted trend model per group, dispatching on
// the configured output format.
func PrintFitResults(models []schema.FittedModel, table *schema.IncidenceTable, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONFits(w, models)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFits(w, models, fmtFloat, fmtOptional)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFits(models, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFitTable(w, models, table, cfg, fmtFloat, fmtOptional, duration)
		}, "Wrote table")
	}
}

// writeFitTable renders the fitted models in a human-readable table.
func writeFitTable(w io.Writer, models []schema.FittedModel, table *schema.IncidenceTable, cfg *contract.Config, fmtFloat func(float64) string, fmtOptional func(*float64) string, duration time.Duration) error {
	t := tablewriter.NewWriter(w)

	t.Header([]string{"Group", "Window", "Rate", "CI", "R2", "Trend", "Doubling", "Halving"})
	t.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := GetMaxGroupWidth(cfg)
	data := make([][]string, 0, len(models))
	for _, m := range models {
		row := []string{
			truncateLabel(m.Group, maxWidth),
			fmt.Sprintf("[%d, %d]", m.Window.Start, m.Window.End),
			fmtFloat(m.Rate),
			formatCI(m, fmtFloat),
			fmtFloat(m.RSquared),
			labelFor(m, cfg),
			fmtOptional(m.DoublingTime),
			fmtOptional(m.HalvingTime),
		}
		data = append(data, row)
	}
	if err := t.Bulk(data); err != nil {
		return err
	}
	if err := t.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Rates are per %d-day interval at %.0f%% confidence; doubling/halving in intervals\n",
		table.Width, 100*cfg.Level); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Fitted %d group(s) in %v\n", len(models), duration); err != nil {
		return err
	}
	return nil
}

// writeCSVFits writes one CSV row per fitted model.
func writeCSVFits(w io.Writer, models []schema.FittedModel, fmtFloat func(float64) string, fmtOptional func(*float64) string) error {
	header := []string{
		"group",
		"window_start",
		"window_end",
		"rate",
		"std_err",
		"rate_lower",
		"rate_upper",
		"level",
		"r_squared",
		"trend",
		"doubling_time",
		"halving_time",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range models {
			rec := []string{
				m.Group,
				fmt.Sprintf("%d", m.Window.Start),
				fmt.Sprintf("%d", m.Window.End),
				fmtFloat(m.Rate),
				fmtFloat(m.StdErr),
				fmtOptional(m.RateLower),
				fmtOptional(m.RateUpper),
				fmtFloat(m.Level),
				fmtFloat(m.RSquared),
				string(schema.Trend(m)),
				fmtOptional(m.DoublingTime),
				fmtOptional(m.HalvingTime),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeJSONFits writes the fitted models with a trend label attached.
func writeJSONFits(w io.Writer, models []schema.FittedModel) error {
	type jsonFit struct {
		Trend string `json:"trend"`
		schema.FittedModel
	}
	out := make([]jsonFit, len(models))
	for i, m := range models {
		out[i] = jsonFit{
			Trend:       string(schema.Trend(m)),
			FittedModel: m,
		}
	}
	return writeJSON(w, out)
}

// writeParquetFits writes the fitted models to a Parquet file.
func writeParquetFits(models []schema.FittedModel, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	rows := parquet.ConvertFittedModels(models, schema.FullSegment, nil)
	if err := parquet.WriteFitsParquet(rows, cfg.OutputFile); err != nil {
		return fmt.Errorf("error writing parquet output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote parquet to %s\n", cfg.OutputFile)
	return nil
}
