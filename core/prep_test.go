package core

import (
	"math"
	"testing"

	"github.com/huangsam/transit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareSeries(t *testing.T) {
	ts := schema.NewTimeSeries(
		[]float64{1, 2, 3, math.Inf(1), 5},
		[]float64{2, math.NaN(), 4, 3, 6},
	)

	clean, err := PrepareSeries(ts)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5}, clean.Times())
	assert.InDeltaSlice(t, []float64{0.5, 1, 1.5}, clean.Fluxes(), 1e-12)
}

func TestPrepareSeriesErrors(t *testing.T) {
	_, err := PrepareSeries(schema.TimeSeries{})
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = PrepareSeries(schema.NewTimeSeries([]float64{1, 2, 3}, []float64{0, 0, 0}))
	assert.ErrorContains(t, err, "normalize")
}
