// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/transit/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Transit MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Transit Search Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: search_transits ---
	s.AddTool(mcp.NewTool("search_transits",
		mcp.WithDescription("Run a Box Least Squares transit search on a CSV lightcurve and return the best period and top peaks."),
		mcp.WithString("path", mcp.Description("Path to a CSV lightcurve with time and flux columns."), mcp.Required()),
		mcp.WithNumber("min_period", mcp.Description("Shortest trial period in days. Defaults to 0.5.")),
		mcp.WithNumber("max_period", mcp.Description("Longest trial period in days. Defaults to 10.")),
		mcp.WithNumber("n_periods", mcp.Description("Number of trial periods. Defaults to 20000.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of peaks returned.")),
	), h.handleSearchTransits)

	// --- 2. Tool: fold_lightcurve ---
	s.AddTool(mcp.NewTool("fold_lightcurve",
		mcp.WithDescription("Fold a CSV lightcurve on a period and return the mean flux per phase bin."),
		mcp.WithString("path", mcp.Description("Path to a CSV lightcurve with time and flux columns."), mcp.Required()),
		mcp.WithNumber("period", mcp.Description("Folding period in days."), mcp.Required()),
		mcp.WithNumber("epoch", mcp.Description("Time of phase zero in days. Defaults to the first sample time.")),
		mcp.WithNumber("bins", mcp.Description("Number of phase bins. Defaults to 200.")),
	), h.handleFoldLightcurve)

	return s
}

// StartMCPServer starts the Transit MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
