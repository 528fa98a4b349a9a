package contract

import (
	"path/filepath"
	"testing"

	"github.com/huangsam/transit/schema"
	"github.com/stretchr/testify/assert"
)

func TestNewArtifactConfig(t *testing.T) {
	t.Run("stem comes from input", func(t *testing.T) {
		a := NewArtifactConfig("out", "", "data/tic_1.csv", schema.CSVOut)
		assert.Equal(t, filepath.Join("out", "tic_1.bls.csv"), a.PeriodogramPath())
		assert.Equal(t, filepath.Join("out", "tic_1.bls.summary.json"), a.SummaryPath())
		assert.Equal(t, filepath.Join("out", "tic_1.detrended.csv"), a.Path(DetrendedSuffix))
		assert.Equal(t, filepath.Join("out", "tic_1.fold.csv"), a.FoldPath())
	})

	t.Run("no input uses default stem in current dir", func(t *testing.T) {
		a := NewArtifactConfig("", "", "", schema.JSONOut)
		assert.Equal(t, "bls_results.bls.json", a.PeriodogramPath())
	})

	t.Run("explicit output file wins", func(t *testing.T) {
		a := NewArtifactConfig("out", "results/bls_results.csv", "data/tic_1.csv", schema.TextOut)
		assert.Equal(t, "results/bls_results.csv", a.PeriodogramPath())
		assert.Equal(t, "results/bls_results.summary.json", a.SummaryPath())
	})
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, ".csv", FormatExt(schema.TextOut))
	assert.Equal(t, ".csv", FormatExt(schema.CSVOut))
	assert.Equal(t, ".json", FormatExt(schema.JSONOut))
	assert.Equal(t, ".parquet", FormatExt(schema.ParquetOut))
}

func TestSummaryPathFor(t *testing.T) {
	assert.Equal(t, "bls_results.summary.json", SummaryPathFor("bls_results.csv"))
	assert.Equal(t, "noext.summary.json", SummaryPathFor("noext"))
	assert.Equal(t, filepath.Join("a", "b.bls.summary.json"), SummaryPathFor(filepath.Join("a", "b.bls.parquet")))
}

func TestPrimaryPath(t *testing.T) {
	a := NewArtifactConfig("out", "", "tic_1.csv", schema.CSVOut)
	assert.Equal(t, a.Path(DetrendedSuffix), a.PrimaryPath(a.Path(DetrendedSuffix)))

	a = NewArtifactConfig("out", "flat.csv", "tic_1.csv", schema.CSVOut)
	assert.Equal(t, "flat.csv", a.PrimaryPath(a.Path(DetrendedSuffix)))
}
