package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/parquet"
	"github.com/huangsam/transit/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeFoldFile dispatches on the artifact format.
func writeFoldFile(ow *OutWriter, fold *schema.FoldResult, path string, format schema.OutputMode) error {
	if fold == nil {
		return fmt.Errorf("no fold to write")
	}
	switch format {
	case schema.JSONOut:
		return ow.writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, fold)
		}, "Wrote JSON fold")
	case schema.ParquetOut:
		return ow.writeWithFile(path, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertFoldBins(fold.Bins))
		}, "Wrote Parquet fold")
	default:
		return ow.writeWithFile(path, func(w io.Writer) error {
			return writeCSVFold(w, fold)
		}, "Wrote CSV fold")
	}
}

// writeCSVFold writes one phase,mean,count row per bin. Empty bins have an empty mean.
func writeCSVFold(w io.Writer, fold *schema.FoldResult) error {
	return writeCSVWithHeader(w, []string{"phase", "mean", "count"}, func(cw *csv.Writer) error {
		for _, b := range fold.Bins {
			mean := ""
			if !math.IsNaN(b.Mean) {
				mean = exactFloat(b.Mean)
			}
			if err := cw.Write([]string{exactFloat(b.Phase), mean, strconv.Itoa(b.Count)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// deepestBins returns up to limit non-empty bins ordered by ascending mean flux.
func deepestBins(bins []schema.FoldBin, limit int) []schema.FoldBin {
	filled := make([]schema.FoldBin, 0, len(bins))
	for _, b := range bins {
		if b.Count > 0 && !math.IsNaN(b.Mean) {
			filled = append(filled, b)
		}
	}
	slices.SortStableFunc(filled, func(a, b schema.FoldBin) int {
		return cmp.Compare(a.Mean, b.Mean)
	})
	return filled[:min(limit, len(filled))]
}

// writeFoldTable lists the deepest phase bins, which is where a transit sits.
func writeFoldTable(w io.Writer, fold *schema.FoldResult, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	_, _ = fmt.Fprintf(w, "Folded on period %s d, epoch %s, %d bins\n",
		fmtFloat(fold.Period), fmtFloat(fold.Epoch), len(fold.Bins))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Phase", "Mean", "Count"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, b := range deepestBins(fold.Bins, cfg.ResultLimit) {
		data = append(data, []string{
			fmt.Sprintf(intFmt, i+1),
			fmtFloat(b.Phase),
			fmtFloat(b.Mean),
			fmt.Sprintf(intFmt, b.Count),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
