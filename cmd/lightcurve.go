package cmd

import (
	"github.com/huangsam/transit/core"
	"github.com/huangsam/transit/internal/contract"
	"github.com/spf13/cobra"
)

// detrendCmd flattens a lightcurve.
var detrendCmd = &cobra.Command{
	Use:   "detrend <lightcurve.csv>",
	Short: "Remove slow stellar and instrumental trends from a lightcurve.",
	Long: `Fit a Savitzky-Golay trend to the flux and divide it out.

The window is in samples and must be odd and larger than --polyorder. When
the lightcurve is shorter than the window, the window shrinks to fit. If no
window fits, the flux is divided by its median instead and a warning is logged.

Examples:
  # Default 401-sample window
  transit detrend kepler-10.csv

  # Shorter window and keep the fitted trend
  transit detrend kepler-10.csv --window 101 --trend`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDetrend(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot detrend lightcurve", err)
		}
	},
}

// prepareCmd cleans a lightcurve.
var prepareCmd = &cobra.Command{
	Use:   "prepare <lightcurve.csv>",
	Short: "Drop missing samples and normalize the flux.",
	Long: `Drop samples whose time or flux is missing or not finite, then divide the
flux by its median so the lightcurve centers on 1.0.

Examples:
  transit prepare raw.csv --out-dir clean`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePrepare(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot prepare lightcurve", err)
		}
	},
}

// foldCmd phase folds a lightcurve.
var foldCmd = &cobra.Command{
	Use:   "fold <lightcurve.csv>",
	Short: "Fold a lightcurve on a period and average it in phase bins.",
	Long: `Map every sample to a phase in [-0.5, 0.5) for the given period, with the
epoch at phase 0, then average the flux in equal-width phase bins.

A transit at the right period shows up as a dip around phase 0. Text output
lists the deepest bins; the full table is written to <name>.fold.<ext>.

Examples:
  # Fold on a candidate period found by search
  transit fold kepler-10.csv --period 0.8375

  # Pin the epoch and use fewer bins
  transit fold kepler-10.csv --period 0.8375 --epoch 131.5 --bins 50`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFold(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot fold lightcurve", err)
		}
	},
}
