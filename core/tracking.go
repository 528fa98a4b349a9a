package core

import (
	"time"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/schema"
	"github.com/rs/zerolog/log"
)

// recordRun stores a finished search in the run store. Failed searches are
// never recorded. Tracking errors are logged and do not fail the search.
func recordRun(store contract.RunStore, cfg *contract.Config, start time.Time, result *schema.SearchResult) {
	if store == nil {
		return
	}

	runID, err := store.BeginRun(cfg.InputPath, start, cfg.Params())
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return
	}
	if runID <= 0 {
		return // tracking disabled
	}

	if err := store.RecordCandidates(runID, result.Peaks); err != nil {
		contract.LogWarn("Failed to record search candidates", err)
	}

	nPeriods := 0
	if result.Periodogram != nil {
		nPeriods = result.Periodogram.Len()
	}
	best := result.Best
	if err := store.EndRun(runID, time.Now(), result.NSamples, nPeriods, &best); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
		return
	}
	log.Debug().Int64("run_id", runID).Msg("Recorded search run")
}
