// Package core has core logic for preparing, detrending, searching and folding lightcurves.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/transit/core/bls"
	"github.com/huangsam/transit/core/flatten"
	"github.com/huangsam/transit/internal/boxfit"
	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/lcio"
	"github.com/huangsam/transit/internal/outwriter"
	"github.com/huangsam/transit/internal/sink"
	"github.com/huangsam/transit/schema"
	"github.com/rs/zerolog/log"
)

// ExecutorFunc defines the function signature for executing the CLI commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ErrNoInput is returned when a command needs a lightcurve path and none was given.
var ErrNoInput = errors.New("an input lightcurve path is required")

// Collaborators that tests swap out.
var (
	newPowerSpectrum = func(workers int) bls.PowerSpectrum {
		return boxfit.New(workers)
	}
	newUploader = func(ctx context.Context, cfg contract.UploadConfig) (contract.Uploader, error) {
		return sink.NewS3Uploader(ctx, cfg)
	}
	newOutWriter = outwriter.NewOutWriter
)

// ExecuteSearch runs the transit search on the input lightcurve, writes the
// periodogram and summary, and prints the top peaks in text mode.
func ExecuteSearch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	ts, err := loadSeries(cfg)
	if err != nil {
		return err
	}

	result, err := Search(ctx, cfg, ts, mgr)
	if err != nil {
		return err
	}

	ow := newOutWriter()
	paths, err := writeSearchArtifacts(ow, cfg, result)
	if err != nil {
		return err
	}
	if err := reportSearch(ctx, ow, cfg, result, time.Since(start)); err != nil {
		return err
	}
	uploadArtifacts(ctx, cfg, paths)
	return nil
}

// Search runs the BLS search over a loaded series and picks the best candidate.
// Results come from the result cache when possible. Successful searches are
// recorded in the run store; failed ones leave no trace.
func Search(ctx context.Context, cfg *contract.Config, ts schema.TimeSeries, mgr contract.CacheManager) (*schema.SearchResult, error) {
	start := time.Now()
	var results contract.CacheStore
	var runs contract.RunStore
	if mgr != nil {
		results = mgr.GetResultStore()
		runs = mgr.GetRunStore()
	}

	pg, cached, err := cachedRunSearch(ctx, ts, cfg.Grid, newPowerSpectrum(cfg.Workers), results)
	if err != nil {
		return nil, err
	}
	best, err := bls.PickBest(pg.Periods, pg.Power)
	if err != nil {
		return nil, err
	}

	result := &schema.SearchResult{
		NSamples:    bls.FilterFinite(ts).Len(),
		Periodogram: pg,
		Best:        best,
		Peaks:       bls.TopPeaks(pg, cfg.ResultLimit),
		Cached:      cached,
	}
	log.Info().
		Int("n_samples", result.NSamples).
		Int("n_periods", pg.Len()).
		Float64("best_period", best.BestPeriod).
		Float64("best_power", best.BestPower).
		Bool("cached", cached).
		Dur("duration", time.Since(start)).
		Msg("Search complete")

	recordRun(runs, cfg, start, result)
	return result, nil
}

// ExecuteDetrend flattens the input lightcurve and writes the detrended series.
func ExecuteDetrend(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	ts, err := loadSeries(cfg)
	if err != nil {
		return err
	}
	flat, trend, err := Detrend(ts, cfg.Window, cfg.Polyorder)
	if err != nil {
		return err
	}

	ow := newOutWriter()
	paths, err := writeDetrendArtifacts(ow, cfg, flat, trend, cfg.Artifacts.PrimaryPath(cfg.Artifacts.Path(contract.DetrendedSuffix)))
	if err != nil {
		return err
	}
	uploadArtifacts(ctx, cfg, paths)
	return nil
}

// Detrend removes the slow trend with a Savitzky-Golay filter. When the series
// cannot support a filter window, it falls back to median normalization and
// returns an empty trend.
func Detrend(ts schema.TimeSeries, window, polyorder int) (flat, trend schema.TimeSeries, err error) {
	flat, trend, err = flatten.Flatten(ts, window, polyorder)
	if err == nil {
		return flat, trend, nil
	}
	if !errors.Is(err, flatten.ErrWindowTooShort) && !errors.Is(err, flatten.ErrDegenerateTrend) {
		return schema.TimeSeries{}, schema.TimeSeries{}, err
	}

	contract.LogWarn("Savitzky-Golay flatten failed, falling back to median normalization", err)
	flat, err = flatten.MedianNormalize(bls.FilterFinite(ts))
	if err != nil {
		return schema.TimeSeries{}, schema.TimeSeries{}, fmt.Errorf("median normalization fallback failed: %w", err)
	}
	return flat, schema.TimeSeries{}, nil
}

// ExecutePrepare drops non-finite samples, normalizes the flux and writes the cleaned series.
func ExecutePrepare(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	ts, err := loadSeries(cfg)
	if err != nil {
		return err
	}
	clean, err := PrepareSeries(ts)
	if err != nil {
		return err
	}

	path := cfg.Artifacts.PrimaryPath(cfg.Artifacts.Path(contract.CleanSuffix))
	if err := newOutWriter().WriteSeries(clean, path, "cleaned lightcurve"); err != nil {
		return err
	}
	uploadArtifacts(ctx, cfg, []string{path})
	return nil
}

// ExecuteFold folds the input lightcurve on --period and writes the phase bins.
func ExecuteFold(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	if cfg.FoldPeriod <= 0 {
		return errors.New("--period is required for fold")
	}
	ts, err := loadSeries(cfg)
	if err != nil {
		return err
	}
	fold, err := FoldSeries(ts, cfg.FoldPeriod, cfg.Epoch, cfg.Bins)
	if err != nil {
		return err
	}

	path := cfg.Artifacts.PrimaryPath(cfg.Artifacts.FoldPath())
	if err := writeFoldArtifact(ctx, newOutWriter(), cfg, fold, path); err != nil {
		return err
	}
	uploadArtifacts(ctx, cfg, []string{path})
	return nil
}

// ExecutePipeline runs prepare, detrend, search and fold in one pass. The
// fold uses the best period of the search. Every stage runs before anything
// is written, so a failed run leaves no artifacts behind.
func ExecutePipeline(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	ts, err := loadSeries(cfg)
	if err != nil {
		return err
	}

	// --- 1. Prepare ---
	clean, err := PrepareSeries(ts)
	if err != nil {
		return err
	}

	// --- 2. Detrend ---
	flat, trend, err := Detrend(clean, cfg.Window, cfg.Polyorder)
	if err != nil {
		return err
	}

	// --- 3. Search ---
	result, err := Search(ctx, cfg, flat, mgr)
	if err != nil {
		return err
	}

	// --- 4. Fold on the best period ---
	fold, err := FoldSeries(flat, result.Best.BestPeriod, cfg.Epoch, cfg.Bins)
	if err != nil {
		return err
	}

	// --- 5. Write ---
	ow := newOutWriter()
	cleanPath := cfg.Artifacts.Path(contract.CleanSuffix)
	if err := ow.WriteSeries(clean, cleanPath, "cleaned lightcurve"); err != nil {
		return err
	}
	paths := []string{cleanPath}

	written, err := writeDetrendArtifacts(ow, cfg, flat, trend, cfg.Artifacts.Path(contract.DetrendedSuffix))
	if err != nil {
		return err
	}
	paths = append(paths, written...)

	written, err = writeSearchArtifacts(ow, cfg, result)
	if err != nil {
		return err
	}
	paths = append(paths, written...)

	foldPath := cfg.Artifacts.FoldPath()
	if err := writeFoldArtifact(withSuppressReport(ctx), ow, cfg, fold, foldPath); err != nil {
		return err
	}
	paths = append(paths, foldPath)

	if err := reportSearch(ctx, ow, cfg, result, time.Since(start)); err != nil {
		return err
	}
	uploadArtifacts(ctx, cfg, paths)
	return nil
}

// loadSeries reads the input lightcurve named by the config.
func loadSeries(cfg *contract.Config) (schema.TimeSeries, error) {
	if cfg.InputPath == "" {
		return schema.TimeSeries{}, ErrNoInput
	}
	ts, err := lcio.ReadFile(cfg.InputPath)
	if err != nil {
		return schema.TimeSeries{}, fmt.Errorf("failed to read lightcurve: %w", err)
	}
	log.Info().Str("input", cfg.InputPath).Int("n_samples", ts.Len()).Msg("Loaded lightcurve")
	return ts, nil
}

// writeSearchArtifacts writes the periodogram followed by the summary next to it.
func writeSearchArtifacts(ow *outwriter.OutWriter, cfg *contract.Config, result *schema.SearchResult) ([]string, error) {
	pgPath := cfg.Artifacts.PeriodogramPath()
	if err := ow.WritePeriodogram(result.Periodogram, pgPath, cfg.Output); err != nil {
		return nil, fmt.Errorf("failed to write periodogram: %w", err)
	}
	summaryPath := contract.SummaryPathFor(pgPath)
	if err := ow.WriteSummary(result.Best, summaryPath); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}
	return []string{pgPath, summaryPath}, nil
}

// writeDetrendArtifacts writes the flattened series and, when requested and
// available, the fitted trend.
func writeDetrendArtifacts(ow *outwriter.OutWriter, cfg *contract.Config, flat, trend schema.TimeSeries, flatPath string) ([]string, error) {
	if err := ow.WriteSeries(flat, flatPath, "detrended lightcurve"); err != nil {
		return nil, err
	}
	paths := []string{flatPath}
	if cfg.Trend && trend.Len() > 0 {
		trendPath := cfg.Artifacts.Path(contract.TrendSuffix)
		if err := ow.WriteSeries(trend, trendPath, "trend"); err != nil {
			return nil, err
		}
		paths = append(paths, trendPath)
	}
	return paths, nil
}

// writeFoldArtifact writes the fold table and prints the deepest bins in text mode.
func writeFoldArtifact(ctx context.Context, ow *outwriter.OutWriter, cfg *contract.Config, fold *schema.FoldResult, path string) error {
	if err := ow.WriteFold(fold, path, cfg.Output); err != nil {
		return fmt.Errorf("failed to write fold: %w", err)
	}
	if cfg.Output == schema.TextOut && !shouldSuppressReport(ctx) {
		return ow.PrintFoldReport(fold, cfg)
	}
	return nil
}

// reportSearch prints the peaks table in text mode.
func reportSearch(ctx context.Context, ow *outwriter.OutWriter, cfg *contract.Config, result *schema.SearchResult, duration time.Duration) error {
	if cfg.Output != schema.TextOut || shouldSuppressReport(ctx) {
		return nil
	}
	return ow.PrintSearchReport(result, cfg, duration)
}

// uploadArtifacts copies written files to object storage when a bucket is
// configured. Failures are logged and never fail the command.
func uploadArtifacts(ctx context.Context, cfg *contract.Config, paths []string) {
	if !cfg.Upload.Enabled() || len(paths) == 0 {
		return
	}
	uploader, err := newUploader(ctx, cfg.Upload)
	if err != nil {
		contract.LogWarn("Artifact upload is not available", err)
		return
	}
	for _, path := range paths {
		location, err := uploader.Upload(ctx, path)
		if err != nil {
			contract.LogWarn("Failed to upload artifact", err)
			continue
		}
		log.Info().Str("path", path).Str("location", location).Msg("Uploaded artifact")
	}
}
