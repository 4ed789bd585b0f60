package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/epiforge/epitrend/schema"
)

// DateRange is a closed interval of dates used as explicit aggregation bounds.
type DateRange struct {
	Min time.Time
	Max time.Time
}

// AggregateOptions controls how raw event dates are binned.
type AggregateOptions struct {
	// Width is the interval width in days. Must be >= 1.
	Width int

	// Bounds optionally fixes the date range. When nil, the range is derived
	// from the observed minimum and maximum event dates.
	Bounds *DateRange

	// SortGroups orders the group labels lexicographically instead of the
	// default first-seen order.
	SortGroups bool
}

// Aggregate bins raw event dates into per-group counts over a fixed interval
// grid and returns the resulting incidence table. groups may be nil for
// ungrouped input, otherwise it must run parallel to dates. Events outside
// the bounds are dropped and tallied in the table's Excluded field.
func Aggregate(dates []time.Time, groups []string, opts AggregateOptions) (*schema.IncidenceTable, error) {
	if groups != nil && len(groups) != len(dates) {
		return nil, fmt.Errorf("%w: %d labels for %d dates", ErrLengthMismatch, len(groups), len(dates))
	}

	minDate, maxDate, err := resolveBounds(dates, opts.Bounds)
	if err != nil {
		return nil, err
	}

	bins, err := BuildGrid(minDate, maxDate, opts.Width)
	if err != nil {
		return nil, err
	}

	labels := collectGroups(groups, len(dates), opts.SortGroups)
	index := make(map[string]int, len(labels))
	for i, g := range labels {
		index[g] = i
	}

	counts := make([][]int, len(bins))
	for b := range counts {
		counts[b] = make([]int, len(labels))
	}

	excluded := 0
	for i, d := range dates {
		d = DayFloor(d)
		if d.Before(minDate) || d.After(maxDate) {
			excluded++
			continue
		}
		bin := daysBetween(minDate, d) / opts.Width
		label := schema.ImplicitGroup
		if groups != nil {
			label = groups[i]
		}
		counts[bin][index[label]]++
	}

	return &schema.IncidenceTable{
		Bins:     bins,
		Width:    opts.Width,
		Groups:   labels,
		Counts:   counts,
		Excluded: excluded,
	}, nil
}

// resolveBounds returns the day-floored date range, deriving it from the
// observed events when no explicit bounds are given.
func resolveBounds(dates []time.Time, bounds *DateRange) (time.Time, time.Time, error) {
	if bounds != nil {
		minDate := DayFloor(bounds.Min)
		maxDate := DayFloor(bounds.Max)
		if maxDate.Before(minDate) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %s < %s",
				ErrInvalidRange, maxDate.Format(time.DateOnly), minDate.Format(time.DateOnly))
		}
		return minDate, maxDate, nil
	}

	if len(dates) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: cannot derive a grid", ErrEmptyInput)
	}

	minDate := DayFloor(dates[0])
	maxDate := minDate
	for _, d := range dates[1:] {
		d = DayFloor(d)
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	return minDate, maxDate, nil
}

// collectGroups fixes the group label set at construction time. The default
// ordering is first-seen over the full input, including events that later
// fall outside the bounds.
func collectGroups(groups []string, n int, sorted bool) []string {
	if groups == nil {
		return []string{schema.ImplicitGroup}
	}

	seen := make(map[string]struct{}, 8)
	labels := make([]string, 0, 8)
	for i := 0; i < n; i++ {
		if _, ok := seen[groups[i]]; ok {
			continue
		}
		seen[groups[i]] = struct{}{}
		labels = append(labels, groups[i])
	}
	if sorted {
		sort.Strings(labels)
	}
	return labels
}
