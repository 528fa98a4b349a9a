package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/schema"
)

// Table names for search run tracking.
const (
	searchRunsTable = "transit_search_runs"
	candidatesTable = "transit_candidates"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported runs backend: %s", backend)
	}

	db, err := openSQL(backend, connStr, contract.GetRunDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := applySchema(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new search run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(inputPath string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(searchRunsTable, rs.backend)
	args := []any{uuid.NewString(), inputPath, formatTime(startTime, rs.backend), string(configJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, input_path, start_time, config_params) VALUES (%s) RETURNING run_id`,
			quotedTableName, placeholders(rs.backend, 1, len(args)))
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, input_path, start_time, config_params) VALUES (%s)`,
			quotedTableName, placeholders(rs.backend, 1, len(args)))
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert search run: %w", err)
	}
	return runID, nil
}

// EndRun updates the search run with completion data. A nil best marks a run
// that finished without a candidate.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, nSamples, nPeriods int, best *schema.BestCandidate) error {
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(searchRunsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(rs.backend, 1, 1))
	startTime, err := scanTime(rs.db.QueryRow(query, runID), rs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	var bestPeriod, bestPower *float64
	if best != nil {
		bestPeriod, bestPower = &best.BestPeriod, &best.BestPower
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	var updateQuery string
	if rs.backend == schema.PostgreSQLBackend {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, n_samples = $3, n_periods = $4, best_period = $5, best_power = $6 WHERE run_id = $7`, quotedTableName)
	} else {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, n_samples = ?, n_periods = ?, best_period = ?, best_power = ? WHERE run_id = ?`, quotedTableName)
	}
	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, nSamples, nPeriods, bestPeriod, bestPower, runID); err != nil {
		return fmt.Errorf("failed to update search run: %w", err)
	}
	return nil
}

// RecordCandidates stores the ranked peaks of a run in one transaction.
// Ranks start at 1 in the order given.
func (rs *RunStoreImpl) RecordCandidates(runID int64, peaks []schema.Peak) error {
	if rs.disabled() || len(peaks) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin candidates transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, candidate_rank, period, power, duration, sde) VALUES (%s)`,
		quoteTableName(candidatesTable, rs.backend), placeholders(rs.backend, 1, 6))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare candidate insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range peaks {
		if _, err := stmt.Exec(runID, i+1, p.Period, p.Power, p.Duration, p.SDE); err != nil {
			return fmt.Errorf("failed to insert candidate %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	runsTable := quoteTableName(searchRunsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runsTable))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		var err error
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable))
		if status.LastRunTime, err = scanTime(row, rs.backend); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable))
		if status.OldestRunTime, err = scanTime(row, rs.backend); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
	}

	for _, table := range []string{searchRunsTable, candidatesTable} {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalCandidates = int(status.TableSizes[candidatesTable])
	return status, nil
}

// GetAllRuns retrieves all search runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, input_path, start_time, end_time, run_duration_ms,
		n_samples, n_periods, best_period, best_power, config_params FROM %s ORDER BY run_id`,
		quoteTableName(searchRunsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query search runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var nSamples, nPeriods sql.NullInt32
		dest := []any{&record.RunID, &record.RunUUID, &record.InputPath}

		var startStr string
		var endStr *string
		if rs.backend == schema.SQLiteBackend {
			dest = append(dest, &startStr, &endStr)
		} else {
			dest = append(dest, &record.StartTime, &record.EndTime)
		}
		dest = append(dest, &record.RunDuration, &nSamples, &nPeriods, &record.BestPeriod, &record.BestPower, &record.ConfigParams)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan search run: %w", err)
		}
		if rs.backend == schema.SQLiteBackend {
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		}
		record.NSamples = nSamples.Int32
		record.NPeriods = nPeriods.Int32
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search runs: %w", err)
	}
	return results, nil
}

// GetAllCandidates retrieves all candidates ordered by run and rank.
func (rs *RunStoreImpl) GetAllCandidates() ([]schema.CandidateRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, candidate_rank, period, power, duration, sde FROM %s ORDER BY run_id, candidate_rank`,
		quoteTableName(candidatesTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CandidateRecord
	for rows.Next() {
		var record schema.CandidateRecord
		if err := rows.Scan(&record.RunID, &record.Rank, &record.Period, &record.Power, &record.Duration, &record.SDE); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// scanTime reads a single time column stored by formatTime.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}
