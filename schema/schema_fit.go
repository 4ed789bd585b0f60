package schema

import "time"

// Window is an inclusive range of bin indexes used for fitting.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Bins returns the number of bins covered by the window.
func (w Window) Bins() int {
	return w.End - w.Start + 1
}

// FittedModel is the result of one log-linear regression of log(count+1)
// against bin index. It is immutable once produced by core.Fit.
type FittedModel struct {
	Group  string `json:"group"`
	Window Window `json:"window"`

	// Rate is the estimated per-interval log-growth coefficient.
	Rate   float64 `json:"rate"`
	StdErr float64 `json:"std_err"`

	// RateLower and RateUpper bound the rate at the configured confidence
	// level. They are nil when the window leaves no residual degrees of
	// freedom (a two-bin window fits a slope but cannot bound it).
	RateLower *float64 `json:"rate_lower,omitempty"`
	RateUpper *float64 `json:"rate_upper,omitempty"`
	Level     float64  `json:"level"`

	RSquared float64 `json:"r_squared"`

	// Conclusive is true when the confidence interval excludes zero. Only
	// then are the doubling/halving times populated.
	Conclusive bool `json:"conclusive"`

	// DoublingTime is ln(2)/Rate in intervals for a conclusive growth fit,
	// nil otherwise. HalvingTime is the mirror for decay.
	DoublingTime *float64 `json:"doubling_time,omitempty"`
	HalvingTime  *float64 `json:"halving_time,omitempty"`
}

// SplitFit pairs a growth-phase fit and a decay-phase fit around the chosen
// changepoint bin. Both windows share the split bin.
type SplitFit struct {
	Group     string      `json:"group"`
	SplitBin  int         `json:"split_bin"`
	SplitDate time.Time   `json:"split_date"`
	Before    FittedModel `json:"before"`
	After     FittedModel `json:"after"`

	// Score is the combined fit quality, r_squared(before) + r_squared(after).
	Score float64 `json:"score"`
}
