package contract

import (
	"path/filepath"
	"strings"

	"github.com/huangsam/transit/schema"
)

// DefaultArtifactStem names artifacts when there is no input file to name them after.
const DefaultArtifactStem = "bls_results"

// Artifact suffixes appended to the stem.
const (
	PeriodogramSuffix = ".bls"
	SummarySuffix     = ".summary.json"
	DetrendedSuffix   = ".detrended.csv"
	TrendSuffix       = ".trend.csv"
	CleanSuffix       = ".clean.csv"
	FoldSuffix        = ".fold"
)

// ArtifactConfig locates the files written by a single run.
// It is built once per command from the validated config and never shared.
type ArtifactConfig struct {
	OutDir   string
	Stem     string
	Format   schema.OutputMode
	Explicit string // --output-file; overrides the primary artifact path
}

// NewArtifactConfig derives the artifact locations for one run. The stem is the
// input file name without its extension.
func NewArtifactConfig(outDir, outputFile, inputPath string, format schema.OutputMode) ArtifactConfig {
	if outDir == "" {
		outDir = DefaultOutDir
	}
	stem := DefaultArtifactStem
	if inputPath != "" {
		base := filepath.Base(inputPath)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ArtifactConfig{
		OutDir:   outDir,
		Stem:     stem,
		Format:   format,
		Explicit: outputFile,
	}
}

// FormatExt returns the file extension for a tabular artifact. Text output is
// persisted as CSV since a table is only meant for the terminal.
func FormatExt(format schema.OutputMode) string {
	switch format {
	case schema.JSONOut:
		return ".json"
	case schema.ParquetOut:
		return ".parquet"
	default:
		return ".csv"
	}
}

// Path returns the location of an auxiliary artifact with the given suffix.
func (a ArtifactConfig) Path(suffix string) string {
	return filepath.Join(a.OutDir, a.Stem+suffix)
}

// PrimaryPath returns --output-file when set and defaultPath otherwise.
// Each command decides which of its artifacts is the primary one.
func (a ArtifactConfig) PrimaryPath(defaultPath string) string {
	if a.Explicit != "" {
		return a.Explicit
	}
	return defaultPath
}

// PeriodogramPath returns the location of the periodogram table.
func (a ArtifactConfig) PeriodogramPath() string {
	return a.PrimaryPath(a.Path(PeriodogramSuffix + FormatExt(a.Format)))
}

// SummaryPath returns the summary location next to the periodogram table.
func (a ArtifactConfig) SummaryPath() string {
	return SummaryPathFor(a.PeriodogramPath())
}

// FoldPath returns the location of the binned phase fold table.
func (a ArtifactConfig) FoldPath() string {
	return a.Path(FoldSuffix + FormatExt(a.Format))
}

// SummaryPathFor replaces the extension of a periodogram path with ".summary.json".
func SummaryPathFor(periodogramPath string) string {
	return strings.TrimSuffix(periodogramPath, filepath.Ext(periodogramPath)) + SummarySuffix
}
