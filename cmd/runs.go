package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/iocache"
	"github.com/huangsam/transit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackend reads and validates the run tracking backend settings.
func runsBackend() (schema.DatabaseBackend, string, error) {
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("runs-backend")))
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidRunBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
func runsSetup() error {
	if err := setupMaintenance(); err != nil {
		return err
	}
	backend, connStr, err := runsBackend()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no result cache for runs commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := setupMaintenance(); err != nil {
		return err
	}
	backend, connStr, err := runsBackend()
	if err != nil {
		return err
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsCmd focused on search-run tracking.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by search commands.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage search-run tracking and exports",
	Long: `Manage the history of search runs.

When a runs backend is configured, every successful search stores:
- Run metadata (input, timestamps, duration, grid settings)
- The best period and power
- The top periodogram peaks as ranked candidates

Failed searches are never recorded.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export runs and candidates to Parquet
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Track runs in the default SQLite file
  transit search kepler-10.csv --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  transit runs export --runs-backend sqlite --output-file history`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all search-run tracking data",
	Long: `Delete all stored search runs and their candidates.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  transit runs export --runs-backend sqlite --output-file backup
  transit runs clear --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite file before removing it
		iocache.CloseCaching()
		dbPath := sqlitePath(cfg.RunDBConnect, contract.GetRunDBFilePath())
		if err := iocache.ClearRuns(cfg.RunBackend, dbPath, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about search-run tracking.

Displays:
- Backend type and connection status
- Total number of runs and candidates stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  transit runs status --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("no run store configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports the run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export search runs and candidates to Parquet",
	Long: `Export all stored runs and candidates to Parquet for analytics tools.

Writes two files named after --output-file:
- <output-file>.runs.parquet        one row per search run
- <output-file>.candidates.parquet  one row per ranked candidate

Requires: --output-file parameter

Examples:
  transit runs export --runs-backend sqlite --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.candidates.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(os.Stdout, iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  transit runs migrate --runs-backend sqlite

  # Migrate to specific version
  transit runs migrate --runs-backend sqlite --target-version 1

  # Rollback to initial state
  transit runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(os.Stdout, cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
