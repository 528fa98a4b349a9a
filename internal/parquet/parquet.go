// Package parquet provides data structures and functions for exporting transit
// search data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/huangsam/transit/schema"
	"github.com/parquet-go/parquet-go"
)

// PeriodogramRow is one trial period of a BLS periodogram.
type PeriodogramRow struct {
	Period float64 `parquet:"period,snappy"`
	Power  float64 `parquet:"power,snappy"`
}

// FoldBinRow is one phase bin of a folded light curve.
type FoldBinRow struct {
	Phase float64 `parquet:"phase,snappy"`

	// Mean is null for an empty bin
	Mean *float64 `parquet:"mean,optional,snappy"`

	Count int32 `parquet:"count,snappy"`
}

// SearchRun represents a single search run with metadata.
// This struct maps to the transit_search_runs database table.
type SearchRun struct {
	RunID     int64  `parquet:"run_id,snappy"`
	RunUUID   string `parquet:"run_uuid,snappy"`
	InputPath string `parquet:"input_path,snappy"`

	// StartTime is when the search began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the search completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the search in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	NSamples int32 `parquet:"n_samples,snappy"`
	NPeriods int32 `parquet:"n_periods,snappy"`

	// BestPeriod and BestPower are null when the search found no candidate
	BestPeriod *float64 `parquet:"best_period,optional,snappy"`
	BestPower  *float64 `parquet:"best_power,optional,snappy"`

	// ConfigParams contains the JSON-encoded search parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Candidate represents one ranked periodogram peak of a search run.
// This struct maps to the transit_candidates database table.
type Candidate struct {
	RunID    int64   `parquet:"run_id,snappy"`
	Rank     int32   `parquet:"candidate_rank,snappy"`
	Period   float64 `parquet:"period,snappy"`
	Power    float64 `parquet:"power,snappy"`
	Duration float64 `parquet:"duration,snappy"`
	SDE      float64 `parquet:"sde,snappy"`
}

// Write writes rows to w as a single Parquet file. The schema is derived
// from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](outputPath string, rows []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertPeriodogram flattens a periodogram into period/power rows in grid order.
func ConvertPeriodogram(pg *schema.Periodogram) []PeriodogramRow {
	if pg == nil {
		return nil
	}
	result := make([]PeriodogramRow, len(pg.Periods))
	for i := range pg.Periods {
		result[i] = PeriodogramRow{Period: pg.Periods[i], Power: pg.Power[i]}
	}
	return result
}

// ConvertFoldBins converts phase bins, mapping NaN means to null.
func ConvertFoldBins(bins []schema.FoldBin) []FoldBinRow {
	result := make([]FoldBinRow, len(bins))
	for i, b := range bins {
		row := FoldBinRow{Phase: b.Phase, Count: int32(b.Count)}
		if !math.IsNaN(b.Mean) {
			mean := b.Mean
			row.Mean = &mean
		}
		result[i] = row
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to SearchRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []SearchRun {
	result := make([]SearchRun, len(records))
	for i, record := range records {
		result[i] = SearchRun{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			InputPath:     record.InputPath,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDuration,
			NSamples:      record.NSamples,
			NPeriods:      record.NPeriods,
			BestPeriod:    record.BestPeriod,
			BestPower:     record.BestPower,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertCandidateRecords converts schema.CandidateRecord to Candidate for Parquet export.
func ConvertCandidateRecords(records []schema.CandidateRecord) []Candidate {
	result := make([]Candidate, len(records))
	for i, record := range records {
		result[i] = Candidate{
			RunID:    record.RunID,
			Rank:     record.Rank,
			Period:   record.Period,
			Power:    record.Power,
			Duration: record.Duration,
			SDE:      record.SDE,
		}
	}
	return result
}
