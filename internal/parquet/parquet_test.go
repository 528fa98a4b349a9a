package parquet

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/transit/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll reads every row of a Parquet file back into memory.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"periodogram", new(PeriodogramRow), []string{"period", "power"}},
		{"fold", new(FoldBinRow), []string{"phase", "mean", "count"}},
		{"runs", new(SearchRun), []string{
			"run_id", "run_uuid", "input_path", "start_time", "end_time", "run_duration_ms",
			"n_samples", "n_periods", "best_period", "best_power", "config_params",
		}},
		{"candidates", new(Candidate), []string{"run_id", "candidate_rank", "period", "power", "duration", "sde"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestWritePeriodogram(t *testing.T) {
	pg := &schema.Periodogram{
		Periods:   []float64{1, 2, 3},
		Power:     []float64{0.1, 0.5, 0.2},
		Durations: []float64{0.05, 0.1, 0.15},
	}
	rows := ConvertPeriodogram(pg)
	require.Len(t, rows, 3)

	outputPath := filepath.Join(t.TempDir(), "lc.bls.parquet")
	require.NoError(t, WriteFile(outputPath, rows))

	got := readAll[PeriodogramRow](t, outputPath)
	assert.Equal(t, rows, got)
}

func TestConvertPeriodogramNil(t *testing.T) {
	assert.Nil(t, ConvertPeriodogram(nil))
}

func TestWriteFoldBins(t *testing.T) {
	bins := []schema.FoldBin{
		{Phase: -0.25, Mean: 1.0, Count: 4},
		{Phase: 0.25, Mean: math.NaN(), Count: 0},
	}
	rows := ConvertFoldBins(bins)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Mean)
	assert.Nil(t, rows[1].Mean)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))
	assert.NotZero(t, buf.Len())

	outputPath := filepath.Join(t.TempDir(), "fold.parquet")
	require.NoError(t, os.WriteFile(outputPath, buf.Bytes(), 0o644))
	got := readAll[FoldBinRow](t, outputPath)
	require.Len(t, got, 2)
	assert.InDelta(t, 1.0, *got[0].Mean, 1e-12)
	assert.Nil(t, got[1].Mean)
	assert.Equal(t, int32(4), got[0].Count)
}

func TestWriteRunsAndCandidates(t *testing.T) {
	now := time.Now()
	end := now.Add(2 * time.Second)
	duration := int64(2000)
	period, power := 3.5, 0.012
	params := `{"n_periods":100}`

	records := []schema.RunRecord{
		{
			RunID: 1, RunUUID: "a", InputPath: "lc.csv", StartTime: now, EndTime: &end,
			RunDuration: &duration, NSamples: 500, NPeriods: 100,
			BestPeriod: &period, BestPower: &power, ConfigParams: &params,
		},
		{RunID: 2, RunUUID: "b", StartTime: now},
	}
	runs := ConvertRunRecords(records)
	runsPath := filepath.Join(t.TempDir(), "export.runs.parquet")
	require.NoError(t, WriteFile(runsPath, runs))

	got := readAll[SearchRun](t, runsPath)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, "lc.csv", got[0].InputPath)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Microsecond)
	require.NotNil(t, got[0].BestPeriod)
	assert.InDelta(t, period, *got[0].BestPeriod, 1e-12)
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].BestPeriod)
	assert.Nil(t, got[1].ConfigParams)

	candidates := ConvertCandidateRecords([]schema.CandidateRecord{
		{RunID: 1, Rank: 1, Period: 3.5, Power: 0.012, Duration: 0.1, SDE: 9.4},
		{RunID: 1, Rank: 2, Period: 7.0, Power: 0.006, Duration: 0.1, SDE: 4.1},
	})
	candidatesPath := filepath.Join(t.TempDir(), "export.candidates.parquet")
	require.NoError(t, WriteFile(candidatesPath, candidates))
	assert.Equal(t, candidates, readAll[Candidate](t, candidatesPath))
}

func TestWriteFileEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteFile(outputPath, []Candidate{}))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteFileInvalidPath(t *testing.T) {
	err := WriteFile("/nonexistent/directory/output.parquet", []PeriodogramRow{{Period: 1}})
	require.Error(t, err)
}
