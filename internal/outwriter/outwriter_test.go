package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/lcio"
	"github.com/huangsam/transit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPeriodogram() *schema.Periodogram {
	return &schema.Periodogram{
		Periods:   []float64{1.0, 1.5, 2.0, 2.5},
		Power:     []float64{0.1, 0.7, math.NaN(), 0.3},
		Durations: []float64{0.05, 0.075, 0.1, 0.125},
	}
}

func newTestWriter() (*OutWriter, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return NewOutWriterTo(&stdout, &stderr), &stdout, &stderr
}

func TestWritePeriodogramCSV(t *testing.T) {
	ow, _, stderr := newTestWriter()
	path := filepath.Join(t.TempDir(), "nested", "lc.bls.csv")

	require.NoError(t, ow.WritePeriodogram(testPeriodogram(), path, schema.CSVOut))
	assert.Contains(t, stderr.String(), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 5)
	assert.Equal(t, []string{"period", "power"}, records[0])
	assert.Equal(t, []string{"1", "0.1"}, records[1])
	assert.Equal(t, []string{"1.5", "0.7"}, records[2])
	assert.Equal(t, "NaN", records[3][1])
}

func TestWritePeriodogramTextIsCSV(t *testing.T) {
	ow, _, _ := newTestWriter()
	path := filepath.Join(t.TempDir(), "lc.bls.csv")
	require.NoError(t, ow.WritePeriodogram(testPeriodogram(), path, schema.TextOut))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "period,power\n"))
}

func TestWritePeriodogramJSON(t *testing.T) {
	ow, _, _ := newTestWriter()
	path := filepath.Join(t.TempDir(), "lc.bls.json")
	require.NoError(t, ow.WritePeriodogram(testPeriodogram(), path, schema.JSONOut))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var points []map[string]any
	require.NoError(t, json.Unmarshal(data, &points))
	require.Len(t, points, 4)
	assert.Equal(t, 1.5, points[1]["period"])
	assert.Equal(t, 0.7, points[1]["power"])
	assert.Nil(t, points[2]["power"])
	_, hasDuration := points[0]["duration"]
	assert.False(t, hasDuration)
}

func TestWritePeriodogramParquet(t *testing.T) {
	ow, _, _ := newTestWriter()
	path := filepath.Join(t.TempDir(), "lc.bls.parquet")
	require.NoError(t, ow.WritePeriodogram(testPeriodogram(), path, schema.ParquetOut))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PAR1")))
}

func TestWritePeriodogramNil(t *testing.T) {
	ow, _, _ := newTestWriter()
	assert.Error(t, ow.WritePeriodogram(nil, filepath.Join(t.TempDir(), "x.csv"), schema.CSVOut))
}

func TestWriteSummary(t *testing.T) {
	ow, _, _ := newTestWriter()
	path := filepath.Join(t.TempDir(), "lc.bls.summary.json")
	require.NoError(t, ow.WriteSummary(schema.BestCandidate{BestPeriod: 3.14, BestPower: 0.02}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var summary map[string]float64
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, map[string]float64{"best_period": 3.14, "best_power": 0.02}, summary)
}

func TestWriteSeries(t *testing.T) {
	ow, _, stderr := newTestWriter()
	path := filepath.Join(t.TempDir(), "lc.clean.csv")
	ts := schema.NewTimeSeries([]float64{1, 2, 3}, []float64{1.0, 0.99, 1.01})

	require.NoError(t, ow.WriteSeries(ts, path, "cleaned lightcurve"))
	assert.Contains(t, stderr.String(), "Wrote cleaned lightcurve")

	got, err := lcio.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ts, got)
}

func testFold() *schema.FoldResult {
	return &schema.FoldResult{
		Period: 3.0,
		Epoch:  0.5,
		Bins: []schema.FoldBin{
			{Phase: -0.375, Mean: 1.0, Count: 3},
			{Phase: -0.125, Mean: 0.99, Count: 2},
			{Phase: 0.125, Mean: math.NaN(), Count: 0},
			{Phase: 0.375, Mean: 0.995, Count: 4},
		},
	}
}

func TestWriteFold(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		ow, _, _ := newTestWriter()
		path := filepath.Join(t.TempDir(), "lc.fold.csv")
		require.NoError(t, ow.WriteFold(testFold(), path, schema.CSVOut))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "phase,mean,count", lines[0])
		assert.Equal(t, "0.125,,0", lines[3])
	})

	t.Run("json", func(t *testing.T) {
		ow, _, _ := newTestWriter()
		path := filepath.Join(t.TempDir(), "lc.fold.json")
		require.NoError(t, ow.WriteFold(testFold(), path, schema.JSONOut))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got struct {
			Period float64          `json:"period"`
			Bins   []map[string]any `json:"bins"`
		}
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, 3.0, got.Period)
		require.Len(t, got.Bins, 4)
		assert.Nil(t, got.Bins[2]["mean"])
	})

	t.Run("parquet", func(t *testing.T) {
		ow, _, _ := newTestWriter()
		path := filepath.Join(t.TempDir(), "lc.fold.parquet")
		require.NoError(t, ow.WriteFold(testFold(), path, schema.ParquetOut))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})
}

func TestDeepestBins(t *testing.T) {
	bins := deepestBins(testFold().Bins, 2)
	require.Len(t, bins, 2)
	assert.Equal(t, 0.99, bins[0].Mean)
	assert.Equal(t, 0.995, bins[1].Mean)

	assert.Len(t, deepestBins(testFold().Bins, 10), 3)
}

func TestPrintSearchReport(t *testing.T) {
	ow, stdout, _ := newTestWriter()
	cfg := contract.DefaultConfig()
	cfg.InputPath = "data/tic_1.csv"
	cfg.UseColors = false
	cfg.Width = 80
	cfg.Workers = 4

	result := &schema.SearchResult{
		NSamples: 1000,
		Best:     schema.BestCandidate{BestPeriod: 3.14, BestPower: 0.02},
		Peaks: []schema.Peak{
			{Period: 3.14, Power: 0.02, Duration: 0.157, SDE: 12.3},
			{Period: 6.28, Power: 0.01, Duration: 0.314, SDE: 5.5},
		},
		Cached: true,
	}
	require.NoError(t, ow.PrintSearchReport(result, cfg, 1500*time.Millisecond))

	out := stdout.String()
	assert.Contains(t, out, "Input: data/tic_1.csv (1000 samples)")
	assert.Contains(t, out, "3.1400")
	assert.Contains(t, out, "Strong")
	assert.Contains(t, out, "Weak")
	assert.Contains(t, out, "Best period: 3.1400 d")
	assert.Contains(t, out, "with 4 workers (cached)")
}

func TestPrintFoldReport(t *testing.T) {
	ow, stdout, _ := newTestWriter()
	cfg := contract.DefaultConfig()
	cfg.ResultLimit = 1

	require.NoError(t, ow.PrintFoldReport(testFold(), cfg))
	out := stdout.String()
	assert.Contains(t, out, "Folded on period 3.0000 d")
	assert.Contains(t, out, "0.9900")
	assert.NotContains(t, out, "0.9950")
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 40, expected: 15},
		{width: 80, expected: 50},
		{width: 300, expected: 100},
	}
	for _, tt := range tests {
		cfg := &contract.Config{Width: tt.width}
		assert.Equal(t, tt.expected, GetMaxTablePathWidth(cfg))
	}
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)
	assert.Equal(t, "3.14", fmtFloat(3.14159))
	assert.Equal(t, "%d", intFmt)
}

func TestExactFloat(t *testing.T) {
	assert.Equal(t, "0.1", exactFloat(0.1))
	assert.Equal(t, "3.141592653589793", exactFloat(math.Pi))
	assert.Nil(t, finiteOrNil(math.Inf(1)))
	assert.Equal(t, 2.0, *finiteOrNil(2))
}
