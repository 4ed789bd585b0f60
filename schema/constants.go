package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string

	// TrendLabel classifies a fitted model for human-readable output.
	TrendLabel string

	// Segment identifies which phase of a series a fit covers.
	Segment string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run-store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default when tracking is on
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All trend labels supported.
const (
	GrowingLabel      TrendLabel = "Growing"
	DecliningLabel    TrendLabel = "Declining"
	InconclusiveLabel TrendLabel = "Inconclusive"
)

// All fit segments supported.
const (
	FullSegment   Segment = "full"   // single fit over one window
	GrowthSegment Segment = "growth" // before-split phase
	DecaySegment  Segment = "decay"  // after-split phase
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidStoreBackends lists all valid run-store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Trend returns the label for a fitted model: Growing when the confidence
// interval sits above zero, Declining when below, Inconclusive otherwise.
func Trend(m FittedModel) TrendLabel {
	switch {
	case m.Conclusive && m.Rate > 0:
		return GrowingLabel
	case m.Conclusive && m.Rate < 0:
		return DecliningLabel
	default:
		return InconclusiveLabel
	}
}
