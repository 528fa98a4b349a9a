package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/parquet"
)

// Export file suffixes appended to the --output-file prefix.
const (
	RunsExportSuffix       = ".runs.parquet"
	CandidatesExportSuffix = ".candidates.parquet"
)

// ExecuteRunsExport exports the run history of store to Parquet files and
// reports progress to w.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not enabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no search runs found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total search runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total candidates: %d\n", status.TotalCandidates)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve search runs: %w", err)
	}
	candidates, err := store.GetAllCandidates()
	if err != nil {
		return fmt.Errorf("failed to retrieve candidates: %w", err)
	}

	runsFile := outputFile + RunsExportSuffix
	if err := contract.EnsureParentDir(runsFile); err != nil {
		return err
	}
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteFile(runsFile, parquetRuns); err != nil {
		return fmt.Errorf("failed to write search runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d search runs to: %s\n", len(parquetRuns), runsFile)

	candidatesFile := outputFile + CandidatesExportSuffix
	parquetCandidates := parquet.ConvertCandidateRecords(candidates)
	if err := parquet.WriteFile(candidatesFile, parquetCandidates); err != nil {
		return fmt.Errorf("failed to write candidates: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d candidates to: %s\n", len(parquetCandidates), candidatesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with pandas, DuckDB, or Apache Arrow.")
	return nil
}
