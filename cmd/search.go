package cmd

import (
	"github.com/huangsam/transit/core"
	"github.com/huangsam/transit/internal/contract"
	"github.com/spf13/cobra"
)

// searchCmd runs the transit search on a lightcurve.
var searchCmd = &cobra.Command{
	Use:   "search <lightcurve.csv>",
	Short: "Find the most likely transit period of a lightcurve.",
	Long: `Run a Box Least Squares search over an evenly spaced grid of trial periods.

For every trial period the lightcurve is folded and fitted with a box-shaped
dip whose duration is a fixed fraction of the period. The period with the
strongest dip is the best candidate.

Writes two artifacts to --out-dir, named after the input file:
- <name>.bls.<ext>           the periodogram (period, power) in the --output format
- <name>.bls.summary.json  the best period and its power

Samples with a missing time or flux are ignored. At least 10 usable samples
are required; nothing is written when the search fails.

Examples:
  # Search the default 0.5 to 10 day range
  transit search kepler-10.csv

  # Narrow the range and use a finer grid
  transit search kepler-10.csv --min-period 0.5 --max-period 1.5 --n-periods 50000

  # Write a Parquet periodogram for later analysis
  transit search kepler-10.csv --output parquet --out-dir results`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSearch(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run transit search", err)
		}
	},
}

// pipelineCmd runs every stage in one pass.
var pipelineCmd = &cobra.Command{
	Use:   "pipeline <lightcurve.csv>",
	Short: "Prepare, detrend, search and fold a lightcurve in one run.",
	Long: `Run the full pipeline on a raw lightcurve:

1. prepare  drop missing samples and normalize the flux to a median of 1.0
2. detrend  divide out a Savitzky-Golay trend
3. search   run the Box Least Squares period search
4. fold     fold the flattened lightcurve on the best period

Every intermediate lightcurve is written next to the search artifacts so a
run can be inspected stage by stage. Nothing is written unless every stage
succeeds.

Examples:
  # Full pipeline with defaults
  transit pipeline kepler-10.csv

  # Keep the fitted trend as well
  transit pipeline kepler-10.csv --trend --out-dir results`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePipeline(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run pipeline", err)
		}
	},
}
