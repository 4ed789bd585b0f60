// Package schema has configs, models and shared constants for all parts of epitrend.
package schema

import "time"

// DayDuration is the length of one calendar day on the binning axis.
const DayDuration = 24 * time.Hour

// ImplicitGroup is the single group label used when events carry no group column.
const ImplicitGroup = "all"

// IncidenceTable holds event counts binned into fixed-width date intervals,
// stratified by group. It is constructed once by core.Aggregate and treated
// as read-only by every consumer.
type IncidenceTable struct {
	// Bins holds the start date of every interval, strictly increasing and
	// spaced exactly Width days apart. The last interval is reported at full
	// width even when the data span is not an exact multiple.
	Bins []time.Time `json:"bins"`

	// Width is the number of days per interval, always >= 1.
	Width int `json:"width"`

	// Groups lists the distinct group labels in first-seen order (or sorted
	// when requested at aggregation time). Ungrouped input yields the single
	// ImplicitGroup label.
	Groups []string `json:"groups"`

	// Counts is indexed as Counts[bin][groupIdx]. A group absent from a bin
	// contributes a zero count, never a missing entry.
	Counts [][]int `json:"counts"`

	// Excluded is the number of input events that fell outside the declared
	// date bounds. It is reported as data so callers can warn; it is never
	// an error.
	Excluded int `json:"excluded"`
}

// GroupIndex returns the column index for a group label, or -1 when the
// label is not part of the table.
func (t *IncidenceTable) GroupIndex(group string) int {
	for i, g := range t.Groups {
		if g == group {
			return i
		}
	}
	return -1
}

// Count returns the count for one bin and group label. Out-of-range bins
// and unknown groups return 0.
func (t *IncidenceTable) Count(bin int, group string) int {
	if bin < 0 || bin >= len(t.Bins) {
		return 0
	}
	gi := t.GroupIndex(group)
	if gi < 0 {
		return 0
	}
	return t.Counts[bin][gi]
}

// Series returns the per-bin counts of one group as float64 values, in bin
// order. Unknown groups return nil.
func (t *IncidenceTable) Series(group string) []float64 {
	gi := t.GroupIndex(group)
	if gi < 0 {
		return nil
	}
	out := make([]float64, len(t.Bins))
	for b := range t.Bins {
		out[b] = float64(t.Counts[b][gi])
	}
	return out
}

// Total returns the sum of all counts across bins and groups.
func (t *IncidenceTable) Total() int {
	total := 0
	for _, row := range t.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// PeakBin returns the index of the bin holding the maximum count for a
// group. The lowest index wins on ties. Unknown groups return -1.
func (t *IncidenceTable) PeakBin(group string) int {
	gi := t.GroupIndex(group)
	if gi < 0 || len(t.Bins) == 0 {
		return -1
	}
	peak := 0
	for b := 1; b < len(t.Bins); b++ {
		if t.Counts[b][gi] > t.Counts[peak][gi] {
			peak = b
		}
	}
	return peak
}

// BinDate returns the start date of a bin index. The index is not range
// checked; callers derive it from the table itself.
func (t *IncidenceTable) BinDate(bin int) time.Time {
	return t.Bins[bin]
}
