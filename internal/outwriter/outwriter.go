// Package outwriter has output and writer logic for incidence tables, fits
// and split results.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it,
// and cleaning up. It accepts a writer function that takes an io.Writer.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "%s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	return writeRows(csvWriter)
}

// createFormatters creates the common formatter closures used across
// multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtOptional func(*float64) string) {
	fmtFloat = func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	fmtOptional = func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmtFloat(*v)
	}
	return fmtFloat, fmtOptional
}

// formatCI renders the confidence interval of a fit, or "n/a" when the
// window left no residual degrees of freedom.
func formatCI(m schema.FittedModel, fmtFloat func(float64) string) string {
	if m.RateLower == nil || m.RateUpper == nil {
		return "n/a"
	}
	return fmt.Sprintf("[%s, %s]", fmtFloat(*m.RateLower), fmtFloat(*m.RateUpper))
}

// labelFor picks the colored or plain trend label per configuration.
func labelFor(m schema.FittedModel, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(m)
	}
	return contract.GetPlainLabel(m)
}
