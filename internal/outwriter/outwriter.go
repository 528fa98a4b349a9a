// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"os"
	"time"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/lcio"
	"github.com/huangsam/transit/schema"
)

// OutWriter provides a unified interface for all output operations.
// Artifacts go to the files named by the caller; reports go to stdout and
// save notices to stderr.
type OutWriter struct {
	stdout io.Writer
	stderr io.Writer
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return NewOutWriterTo(os.Stdout, os.Stderr)
}

// NewOutWriterTo creates an output writer with custom report streams.
func NewOutWriterTo(stdout, stderr io.Writer) *OutWriter {
	return &OutWriter{stdout: stdout, stderr: stderr}
}

// WritePeriodogram persists the periodogram table in the given format.
// Text mode has no file form of its own and is written as CSV.
func (ow *OutWriter) WritePeriodogram(pg *schema.Periodogram, path string, format schema.OutputMode) error {
	return writePeriodogramFile(ow, pg, path, format)
}

// WriteSummary persists the best candidate as a JSON object.
func (ow *OutWriter) WriteSummary(best schema.BestCandidate, path string) error {
	return ow.writeWithFile(path, func(w io.Writer) error {
		return writeJSON(w, best)
	}, "Wrote summary")
}

// WriteSeries persists a lightcurve as a time,flux CSV.
func (ow *OutWriter) WriteSeries(ts schema.TimeSeries, path, what string) error {
	return ow.writeWithFile(path, func(w io.Writer) error {
		return lcio.WriteCSV(w, ts)
	}, "Wrote "+what)
}

// WriteFold persists the binned phase fold in the given format.
func (ow *OutWriter) WriteFold(fold *schema.FoldResult, path string, format schema.OutputMode) error {
	return writeFoldFile(ow, fold, path, format)
}

// PrintSearchReport renders the top peaks of a search as a table on stdout.
func (ow *OutWriter) PrintSearchReport(result *schema.SearchResult, cfg *contract.Config, duration time.Duration) error {
	return writePeaksTable(ow.stdout, result, cfg, duration)
}

// PrintFoldReport renders the deepest phase bins of a fold as a table on stdout.
func (ow *OutWriter) PrintFoldReport(fold *schema.FoldResult, cfg *contract.Config) error {
	return writeFoldTable(ow.stdout, fold, cfg)
}
