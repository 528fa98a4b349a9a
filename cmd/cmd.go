// Package cmd defines the command-line interface for transit.
package cmd

import (
	"github.com/huangsam/transit/core/bls"
	"github.com/huangsam/transit/core/flatten"
	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(detrendCmd)
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(foldCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Float64("min-period", bls.DefaultMinPeriod, "Shortest trial period in days")
	rootCmd.PersistentFlags().Float64("max-period", bls.DefaultMaxPeriod, "Longest trial period in days")
	rootCmd.PersistentFlags().Int("n-periods", bls.DefaultNPeriods, "Number of trial periods, evenly spaced")
	rootCmd.PersistentFlags().Int("window", flatten.DefaultWindow, "Savitzky-Golay window length in samples (odd)")
	rootCmd.PersistentFlags().Int("polyorder", flatten.DefaultPolyorder, "Savitzky-Golay polynomial order")
	rootCmd.PersistentFlags().Bool("trend", false, "Also write the fitted trend when detrending")
	rootCmd.PersistentFlags().Int("bins", contract.DefaultBins, "Number of phase bins when folding")
	rootCmd.PersistentFlags().String("epoch", "", "Time of phase zero in days (defaults to the first sample time)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of peaks to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path for the primary artifact of a command")
	rootCmd.PersistentFlags().String("out-dir", contract.DefaultOutDir, "Directory for written artifacts")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Result cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for the result cache (e.g., user:pass@tcp(host:port)/dbname or redis://host:6379/0)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Search-run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("upload-bucket", "", "S3 bucket that receives written artifacts")
	rootCmd.PersistentFlags().String("upload-prefix", "", "Key prefix for uploaded artifacts")
	rootCmd.PersistentFlags().String("upload-region", "", "AWS region of the upload bucket")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", string(schema.TextLog), "Log format: text or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of foldCmd to Viper
	foldCmd.Flags().Float64("period", 0, "Folding period in days (required)")
	if err := viper.BindPFlags(foldCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fold flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address for the HTTP API to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
