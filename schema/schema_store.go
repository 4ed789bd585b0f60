package schema

import "time"

// RunRecord mirrors one row of the epitrend_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalFits     int32
	Source        string
	ConfigParams  *string
}

// FitRecord mirrors one row of the epitrend_fits table. Optional fields are
// nil when the fit was inconclusive or the record is not part of a split.
type FitRecord struct {
	RunID        int64
	Group        string
	Segment      Segment
	WindowStart  int32
	WindowEnd    int32
	Rate         float64
	StdErr       float64
	RateLower    float64
	RateUpper    float64
	Level        float64
	RSquared     float64
	Conclusive   bool
	DoublingTime *float64
	HalvingTime  *float64
	SplitBin     *int32
	RecordedAt   time.Time
}

// StoreStatus holds status information about the run-tracking store.
type StoreStatus struct {
	Backend    DatabaseBackend
	Location   string
	TotalRuns  int64
	TableSizes map[string]int64
}
