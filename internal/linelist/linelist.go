// Package linelist loads raw case events from CSV files. It is the input
// collaborator that normalizes heterogeneous date text into day values
// before anything reaches the aggregation core.
package linelist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Options holds options for linelist loading.
type Options struct {
	DateColumn  string // Column name for event dates (default: "date")
	GroupColumn string // Column name for group labels (optional)
	DateFormat  string // Go reference layout for dates (default: "2006-01-02")
}

// Linelist is a parsed sequence of events. Groups is nil when no group
// column was requested, and otherwise runs parallel to Dates.
type Linelist struct {
	Dates  []time.Time
	Groups []string
}

// DefaultOptions returns default options for linelist loading.
func DefaultOptions() Options {
	return Options{
		DateColumn: "date",
		DateFormat: time.DateOnly,
	}
}

// Load reads a linelist from a CSV file.
func Load(path string, opts Options) (*Linelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadFromReader(f, opts)
}

// LoadFromReader reads a linelist from an io.Reader. The first record must
// be a header row naming the configured columns.
func LoadFromReader(r io.Reader, opts Options) (*Linelist, error) {
	if opts.DateColumn == "" {
		opts.DateColumn = "date"
	}
	if opts.DateFormat == "" {
		opts.DateFormat = time.DateOnly
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dateIdx, groupIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(h)
		if strings.EqualFold(h, opts.DateColumn) {
			dateIdx = i
		}
		if opts.GroupColumn != "" && strings.EqualFold(h, opts.GroupColumn) {
			groupIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("date column %q not found in header %v", opts.DateColumn, header)
	}
	if opts.GroupColumn != "" && groupIdx < 0 {
		return nil, fmt.Errorf("group column %q not found in header %v", opts.GroupColumn, header)
	}

	list := &Linelist{}
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row+1, err)
		}
		row++

		raw := strings.TrimSpace(record[dateIdx])
		if raw == "" {
			continue // blank date cells are not events
		}
		d, err := time.Parse(opts.DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", row, raw, err)
		}
		list.Dates = append(list.Dates, d)
		if groupIdx >= 0 {
			list.Groups = append(list.Groups, strings.TrimSpace(record[groupIdx]))
		}
	}

	return list, nil
}
