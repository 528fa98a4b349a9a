package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/parquet"
	"github.com/huangsam/transit/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// periodogramPoint is one row of the JSON periodogram.
type periodogramPoint struct {
	Period float64  `json:"period"`
	Power  *float64 `json:"power"`
}

// writePeriodogramFile dispatches on the artifact format.
func writePeriodogramFile(ow *OutWriter, pg *schema.Periodogram, path string, format schema.OutputMode) error {
	if pg == nil {
		return fmt.Errorf("no periodogram to write")
	}
	switch format {
	case schema.JSONOut:
		return ow.writeWithFile(path, func(w io.Writer) error {
			return writeJSONPeriodogram(w, pg)
		}, "Wrote JSON periodogram")
	case schema.ParquetOut:
		return ow.writeWithFile(path, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertPeriodogram(pg))
		}, "Wrote Parquet periodogram")
	default:
		return ow.writeWithFile(path, func(w io.Writer) error {
			return writeCSVPeriodogram(w, pg)
		}, "Wrote CSV periodogram")
	}
}

// writeJSONPeriodogram writes the periodogram as an array of period/power objects.
func writeJSONPeriodogram(w io.Writer, pg *schema.Periodogram) error {
	points := make([]periodogramPoint, pg.Len())
	for i := range pg.Periods {
		points[i] = periodogramPoint{Period: pg.Periods[i], Power: finiteOrNil(pg.Power[i])}
	}
	return writeJSON(w, points)
}

// writeCSVPeriodogram writes one period,power row per grid point in grid order.
func writeCSVPeriodogram(w io.Writer, pg *schema.Periodogram) error {
	return writeCSVWithHeader(w, []string{"period", "power"}, func(cw *csv.Writer) error {
		for i := range pg.Periods {
			if err := cw.Write([]string{exactFloat(pg.Periods[i]), exactFloat(pg.Power[i])}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writePeaksTable generates and writes the human-readable peaks table.
func writePeaksTable(w io.Writer, result *schema.SearchResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	if cfg.InputPath != "" {
		_, _ = fmt.Fprintf(w, "Input: %s (%d samples)\n",
			contract.TruncatePath(cfg.InputPath, GetMaxTablePathWidth(cfg)), result.NSamples)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Period", "Power", "Duration", "SDE", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range schema.EnrichPeaks(result.Peaks) {
		label := p.Label
		if cfg.UseColors {
			label = contract.GetColorLabel(p.SDE)
		}
		data = append(data, []string{
			fmt.Sprintf(intFmt, p.Rank),
			fmtFloat(p.Period),
			fmtFloat(p.Power),
			fmtFloat(p.Duration),
			fmt.Sprintf("%.1f", p.SDE),
			label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Best period: %s d (power %s)\n", fmtFloat(result.Best.BestPeriod), fmtFloat(result.Best.BestPower))
	cached := ""
	if result.Cached {
		cached = " (cached)"
	}
	_, _ = fmt.Fprintf(w, "Search completed in %v with %d workers%s. Cache backend: %s\n",
		duration.Round(time.Millisecond), cfg.Workers, cached, cfg.CacheBackend)
	return nil
}
