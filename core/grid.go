package core

import (
	"fmt"
	"time"

	"github.com/epiforge/epitrend/schema"
)

// DayFloor normalizes a timestamp to midnight UTC of its calendar day. All
// binning arithmetic runs on day-floored dates so that wall-clock noise in
// the input can never shift an event across a bin boundary.
func DayFloor(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole number of days from a to b. Both arguments
// must already be day-floored.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / schema.DayDuration)
}

// BuildGrid produces the ordered bin start dates covering [minDate, maxDate]
// with the given width in days. The first bin starts exactly at minDate and
// the grid stops once a bin start would exceed maxDate; the final bin is
// reported at full width even when it extends past maxDate.
func BuildGrid(minDate, maxDate time.Time, width int) ([]time.Time, error) {
	if width < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInterval, width)
	}

	minDate = DayFloor(minDate)
	maxDate = DayFloor(maxDate)
	if maxDate.Before(minDate) {
		return nil, fmt.Errorf("%w: %s < %s",
			ErrInvalidRange, maxDate.Format(time.DateOnly), minDate.Format(time.DateOnly))
	}

	span := daysBetween(minDate, maxDate)
	bins := make([]time.Time, 0, span/width+1)
	for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, width) {
		bins = append(bins, d)
	}
	return bins, nil
}
