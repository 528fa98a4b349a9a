package schema_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/huangsam/transit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeSeries(t *testing.T) {
	ts := schema.NewTimeSeries([]float64{1, 2, 3}, []float64{0.9, 1.0})
	assert.Equal(t, 2, ts.Len())
	assert.Equal(t, []float64{1, 2}, ts.Times())
	assert.Equal(t, []float64{0.9, 1.0}, ts.Fluxes())
}

func TestTimeSeriesSlicesAreCopies(t *testing.T) {
	ts := schema.NewTimeSeries([]float64{1, 2}, []float64{5, 6})
	times := ts.Times()
	times[0] = 100
	assert.Equal(t, 1.0, ts.Samples[0].T)
}

func TestBestCandidateJSONKeys(t *testing.T) {
	data, err := json.Marshal(schema.BestCandidate{BestPeriod: 3.14, BestPower: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"best_period": 3.14, "best_power": 0.5}`, string(data))
}

func TestFoldBinJSONEmptyMean(t *testing.T) {
	bins := []schema.FoldBin{
		{Phase: -0.25, Mean: math.NaN(), Count: 0},
		{Phase: 0.25, Mean: 0.99, Count: 4},
	}
	data, err := json.Marshal(bins)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"phase": -0.25, "mean": null, "count": 0}, {"phase": 0.25, "mean": 0.99, "count": 4}]`, string(data))
}
