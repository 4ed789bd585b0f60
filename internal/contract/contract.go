// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/epiforge/epitrend/schema"
)

// StoreManager defines the interface for accessing the run-tracking store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking fit runs and storing their
// results. A nil RunStore means tracking is disabled.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(startTime time.Time, source string, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data.
	EndRun(runID int64, endTime time.Time, totalFits int) error

	// RecordFit stores one fitted segment. splitBin is non-nil only for
	// segments produced by a changepoint search.
	RecordFit(runID int64, segment schema.Segment, model schema.FittedModel, splitBin *int32) error

	// GetAllRuns returns every recorded run.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFits returns every recorded fit.
	GetAllFits() ([]schema.FitRecord, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all recorded runs and fits.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}
