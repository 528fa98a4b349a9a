package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/transit/internal/httpapi"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve transit searches over HTTP",
	Long: `Start an HTTP server exposing the transit search.

Endpoints:
  GET  /healthz     liveness check
  POST /v1/search   search posted samples and return the best period and peaks

The request body of /v1/search is JSON:
  {"samples": [[t, flux], ...], "min_period": 0.5, "max_period": 10, "n_periods": 20000}

Invalid settings return 400 and too few usable samples return 422.

Examples:
  transit serve --addr 127.0.0.1:8080`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return httpapi.New(cfg, cacheManager).Start(ctx)
	},
}
