// Package lcio reads and writes lightcurves as CSV time series.
package lcio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/transit/schema"
)

// Errors returned by the lightcurve readers.
var (
	ErrUnsupportedFormat = errors.New("unsupported file extension")
	ErrMissingColumns    = errors.New("CSV must contain time and flux columns")
)

// SupportedExtensions lists the file extensions ReadFile accepts.
var SupportedExtensions = map[string]struct{}{
	".csv": {},
	".txt": {},
}

// ReadFile loads a lightcurve from disk.
func ReadFile(path string) (schema.TimeSeries, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := SupportedExtensions[ext]; !ok {
		return schema.TimeSeries{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return schema.TimeSeries{}, err
	}
	defer func() { _ = f.Close() }()

	ts, err := ReadCSV(f)
	if err != nil {
		return schema.TimeSeries{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ts, nil
}

// ReadCSV parses a CSV lightcurve with a header row. The time column is the
// first header containing "time" and the flux column the first containing
// "flux", both case-insensitive, so pdcsap_flux and sap_flux exports work as-is.
// Cells that do not parse as numbers become NaN.
func ReadCSV(r io.Reader) (schema.TimeSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err == io.EOF {
		return schema.TimeSeries{}, ErrMissingColumns
	}
	if err != nil {
		return schema.TimeSeries{}, fmt.Errorf("read header: %w", err)
	}

	timeCol, fluxCol := locateColumns(header)
	if timeCol < 0 || fluxCol < 0 {
		return schema.TimeSeries{}, fmt.Errorf("%w (header: %s)", ErrMissingColumns, strings.Join(header, ","))
	}

	var samples []schema.Sample
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return schema.TimeSeries{}, fmt.Errorf("read row %d: %w", len(samples)+2, err)
		}
		samples = append(samples, schema.Sample{
			T: parseCell(record, timeCol),
			Y: parseCell(record, fluxCol),
		})
	}
	return schema.TimeSeries{Samples: samples}, nil
}

// WriteCSV writes a time series with a time,flux header.
// NaN values are written as empty cells so they read back as NaN.
func WriteCSV(w io.Writer, ts schema.TimeSeries) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"time", "flux"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, s := range ts.Samples {
		if err := writer.Write([]string{formatCell(s.T), formatCell(s.Y)}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes a time series CSV to path, creating parent directories.
func WriteFile(path string, ts schema.TimeSeries) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, ts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func locateColumns(header []string) (timeCol, fluxCol int) {
	timeCol, fluxCol = -1, -1
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		if timeCol < 0 && strings.Contains(lower, "time") {
			timeCol = i
		}
		if fluxCol < 0 && strings.Contains(lower, "flux") {
			fluxCol = i
		}
	}
	return timeCol, fluxCol
}

func parseCell(record []string, col int) float64 {
	if col >= len(record) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
