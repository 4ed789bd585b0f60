package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/schema"
)

// RunStoreImpl implements the RunStore interface over database/sql.
type RunStoreImpl struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	location string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &RunStoreImpl{db: nil, backend: backend}, nil
	}

	db, location, err := openBackendDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend, location: location}, nil
}

// createRunTables creates the run-tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{fitsTable, getCreateFitsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for epitrend_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_fits INT,
				source VARCHAR(512) NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_fits INT,
				source TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_fits INTEGER,
				source TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateFitsQuery returns the CREATE TABLE query for epitrend_fits.
func getCreateFitsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(fitsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				group_name VARCHAR(255) NOT NULL,
				segment VARCHAR(16) NOT NULL,
				window_start INT NOT NULL,
				window_end INT NOT NULL,
				rate DOUBLE NOT NULL,
				std_err DOUBLE NOT NULL,
				rate_lower DOUBLE,
				rate_upper DOUBLE,
				level DOUBLE NOT NULL,
				r_squared DOUBLE NOT NULL,
				conclusive BOOLEAN NOT NULL,
				doubling_time DOUBLE,
				halving_time DOUBLE,
				split_bin INT,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, group_name, segment)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				group_name TEXT NOT NULL,
				segment TEXT NOT NULL,
				window_start INT NOT NULL,
				window_end INT NOT NULL,
				rate DOUBLE PRECISION NOT NULL,
				std_err DOUBLE PRECISION NOT NULL,
				rate_lower DOUBLE PRECISION,
				rate_upper DOUBLE PRECISION,
				level DOUBLE PRECISION NOT NULL,
				r_squared DOUBLE PRECISION NOT NULL,
				conclusive BOOLEAN NOT NULL,
				doubling_time DOUBLE PRECISION,
				halving_time DOUBLE PRECISION,
				split_bin INT,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, group_name, segment)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				group_name TEXT NOT NULL,
				segment TEXT NOT NULL,
				window_start INTEGER NOT NULL,
				window_end INTEGER NOT NULL,
				rate REAL NOT NULL,
				std_err REAL NOT NULL,
				rate_lower REAL,
				rate_upper REAL,
				level REAL NOT NULL,
				r_squared REAL NOT NULL,
				conclusive INTEGER NOT NULL,
				doubling_time REAL,
				halving_time REAL,
				split_bin INTEGER,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, group_name, segment)
			);
		`, quotedTableName)
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, source string, configParams map[string]any) (int64, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, source, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, source, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, source, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), source, string(configJSON))
		if err != nil {
			return 0, err
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalFits int) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName)
	}

	row := rs.db.QueryRow(query, runID)

	var startTime time.Time
	switch rs.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		var err error
		startTime, err = time.Parse(time.RFC3339Nano, startTimeStr)
		if err != nil {
			return fmt.Errorf("failed to parse start_time: %w", err)
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&startTime); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	var args []any
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_fits = $3 WHERE run_id = $4`, quotedTableName)
		args = []any{endTime, durationMs, totalFits, runID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_fits = ? WHERE run_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, rs.backend), durationMs, totalFits, runID}
	}

	if _, err := rs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// RecordFit stores one fitted segment for a run.
func (rs *RunStoreImpl) RecordFit(runID int64, segment schema.Segment, model schema.FittedModel, splitBin *int32) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(fitsTable, rs.backend)

	columns := `run_id, group_name, segment, window_start, window_end, rate, std_err,
	            rate_lower, rate_upper, level, r_squared, conclusive,
	            doubling_time, halving_time, split_bin, recorded_at`

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			quotedTableName, columns)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			quotedTableName, columns)
	}

	args := []any{
		runID, model.Group, string(segment), model.Window.Start, model.Window.End,
		model.Rate, model.StdErr, optionalFloat(model.RateLower), optionalFloat(model.RateUpper),
		model.Level, model.RSquared, model.Conclusive,
		optionalFloat(model.DoublingTime), optionalFloat(model.HalvingTime),
		optionalInt32(splitBin), formatTime(time.Now().UTC(), rs.backend),
	}

	if _, err := rs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert fit record: %w", err)
	}

	return nil
}

// optionalFloat converts a *float64 into a SQL-nullable argument.
func optionalFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// optionalInt32 converts a *int32 into a SQL-nullable argument.
func optionalInt32(v *int32) any {
	if v == nil {
		return nil
	}
	return *v
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_fits, source, config_params
		FROM %s ORDER BY run_id`, quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord

	for rows.Next() {
		var record schema.RunRecord
		var totalFits sql.NullInt32

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &totalFits, &record.Source, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &totalFits, &record.Source, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		if totalFits.Valid {
			record.TotalFits = totalFits.Int32
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetAllFits retrieves all fit records from the store.
func (rs *RunStoreImpl) GetAllFits() ([]schema.FitRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(fitsTable, rs.backend)
	query := fmt.Sprintf(`SELECT run_id, group_name, segment, window_start, window_end, rate, std_err,
		rate_lower, rate_upper, level, r_squared, conclusive,
		doubling_time, halving_time, split_bin, recorded_at
		FROM %s ORDER BY run_id, group_name, segment`, quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FitRecord

	for rows.Next() {
		var record schema.FitRecord
		var segment string
		var rateLower, rateUpper sql.NullFloat64

		switch rs.backend {
		case schema.SQLiteBackend:
			var recordedAtStr string
			if err := rows.Scan(&record.RunID, &record.Group, &segment, &record.WindowStart, &record.WindowEnd,
				&record.Rate, &record.StdErr, &rateLower, &rateUpper, &record.Level, &record.RSquared,
				&record.Conclusive, &record.DoublingTime, &record.HalvingTime, &record.SplitBin, &recordedAtStr); err != nil {
				return nil, fmt.Errorf("failed to scan fit record: %w", err)
			}
			recordedAt, err := time.Parse(time.RFC3339Nano, recordedAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
			record.RecordedAt = recordedAt
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Group, &segment, &record.WindowStart, &record.WindowEnd,
				&record.Rate, &record.StdErr, &rateLower, &rateUpper, &record.Level, &record.RSquared,
				&record.Conclusive, &record.DoublingTime, &record.HalvingTime, &record.SplitBin, &record.RecordedAt); err != nil {
				return nil, fmt.Errorf("failed to scan fit record: %w", err)
			}
		}

		record.Segment = schema.Segment(segment)
		record.RateLower = rateLower.Float64
		record.RateUpper = rateUpper.Float64
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fits: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    rs.backend,
		Location:   rs.location,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, rs.backend))
	if err := rs.db.QueryRow(runsQuery).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	for _, table := range []string{runsTable, fitsTable} {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		var count int64
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// Clear removes all recorded runs and fits.
func (rs *RunStoreImpl) Clear() error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	for _, table := range []string{fitsTable, runsTable} {
		query := fmt.Sprintf("DELETE FROM %s", quoteTableName(table, rs.backend))
		if _, err := rs.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
