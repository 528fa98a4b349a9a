package cmd

import (
	"github.com/huangsam/transit/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Transit MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents run transit searches
and fold lightcurves through standard tools.

Tools:
  search_transits - search a CSV lightcurve for the best transit period
  fold_lightcurve - fold a CSV lightcurve on a period into phase bins

Logs go to stderr so that stdout carries only the protocol.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
