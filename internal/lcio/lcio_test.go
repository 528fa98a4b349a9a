package lcio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/transit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantT     []float64
		wantY     []float64
		wantErrIs error
	}{
		{
			name:  "plain columns",
			input: "time,flux\n1.0,0.99\n2.0,1.01\n",
			wantT: []float64{1, 2},
			wantY: []float64{0.99, 1.01},
		},
		{
			name:  "pdcsap export with extra columns",
			input: "TIME,quality,PDCSAP_FLUX,pdcsap_flux_err\n1325.1,0,1.002,0.001\n",
			wantT: []float64{1325.1},
			wantY: []float64{1.002},
		},
		{
			name:  "first matching flux column wins",
			input: "sap_flux,pdcsap_flux,time\n5,6,7\n",
			wantT: []float64{7},
			wantY: []float64{5},
		},
		{
			name:  "comment lines and spaces",
			input: "# exported\ntime, flux\n1, 2\n",
			wantT: []float64{1},
			wantY: []float64{2},
		},
		{
			name:      "missing flux column",
			input:     "time,mag\n1,2\n",
			wantErrIs: ErrMissingColumns,
		},
		{
			name:      "empty input",
			input:     "",
			wantErrIs: ErrMissingColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ReadCSV(strings.NewReader(tt.input))
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantT, ts.Times())
			assert.Equal(t, tt.wantY, ts.Fluxes())
		})
	}
}

func TestReadCSVBadCellsBecomeNaN(t *testing.T) {
	ts, err := ReadCSV(strings.NewReader("time,flux\n1,nan\n2,\n3\nx,4\n"))
	require.NoError(t, err)
	require.Equal(t, 4, ts.Len())

	assert.True(t, math.IsNaN(ts.Samples[0].Y))
	assert.True(t, math.IsNaN(ts.Samples[1].Y))
	assert.True(t, math.IsNaN(ts.Samples[2].Y), "short row has no flux cell")
	assert.True(t, math.IsNaN(ts.Samples[3].T))
	assert.Equal(t, 4.0, ts.Samples[3].Y)
}

func TestWriteCSVRoundTripKeepsNaN(t *testing.T) {
	ts := schema.NewTimeSeries([]float64{1.5, 2.5}, []float64{math.NaN(), 0.998})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ts))
	assert.Equal(t, "time,flux\n1.5,\n2.5,0.998\n", buf.String())

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(back.Samples[0].Y))
	assert.Equal(t, 0.998, back.Samples[1].Y)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "lc.fits"))
		assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "nope.csv"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("write then read", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "lc.TXT")
		ts := schema.NewTimeSeries([]float64{1, 2, 3}, []float64{1, 0.99, 1})
		require.NoError(t, WriteFile(path, ts))

		got, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, ts, got)
	})
}

func FuzzReadCSV(f *testing.F) {
	f.Add("time,flux\n1,2\n")
	f.Add("TIME,SAP_FLUX\n1e3,-0.5\n,,\n")
	f.Add("a,b\n")

	f.Fuzz(func(t *testing.T, input string) {
		ts, err := ReadCSV(strings.NewReader(input))
		if err == nil {
			assert.Equal(t, len(ts.Times()), len(ts.Fluxes()))
		}
	})
}
