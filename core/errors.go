package core

import "errors"

// Sentinel errors for every validation failure the core can raise. All are
// deterministic and detected at the call site; none are retried.
var (
	// ErrInvalidInterval is returned when the interval width is below one day.
	ErrInvalidInterval = errors.New("interval width must be at least one day")

	// ErrInvalidRange is returned when the maximum date precedes the minimum.
	ErrInvalidRange = errors.New("maximum date precedes minimum date")

	// ErrEmptyInput is returned when no event dates are given and no explicit
	// bounds allow a grid to be derived.
	ErrEmptyInput = errors.New("no event dates and no explicit date bounds")

	// ErrLengthMismatch is returned when the group labels do not pair up with
	// the event dates.
	ErrLengthMismatch = errors.New("group labels and event dates differ in length")

	// ErrInsufficientData is returned when a fit window has fewer than two
	// bins or carries no information (all counts zero).
	ErrInsufficientData = errors.New("window has insufficient data for a fit")

	// ErrNoValidSplit is returned when no candidate split yields two valid fits.
	ErrNoValidSplit = errors.New("no candidate split yields two valid fits")
)
