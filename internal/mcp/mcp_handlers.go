package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/huangsam/transit/core"
	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/lcio"
	"github.com/huangsam/transit/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// searchResponse is the JSON body of a search_transits result.
type searchResponse struct {
	Path     string                `json:"path"`
	NSamples int                   `json:"n_samples"`
	Best     schema.BestCandidate  `json:"best"`
	Peaks    []schema.EnrichedPeak `json:"peaks"`
	Cached   bool                  `json:"cached"`
}

func (h *toolHandler) handleSearchTransits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputPath = request.GetString("path", "")
	if v := request.GetFloat("min_period", 0); v != 0 {
		cfg.Grid.MinPeriod = v
	}
	if v := request.GetFloat("max_period", 0); v != 0 {
		cfg.Grid.MaxPeriod = v
	}
	if v := request.GetInt("n_periods", 0); v != 0 {
		cfg.Grid.NPeriods = v
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}

	if cfg.InputPath == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	if err := cfg.Grid.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid search parameters: %v", err)), nil
	}

	ts, err := lcio.ReadFile(cfg.InputPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read lightcurve: %v", err)), nil
	}
	result, err := core.Search(ctx, cfg, ts, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return jsonResult(searchResponse{
		Path:     cfg.InputPath,
		NSamples: result.NSamples,
		Best:     result.Best,
		Peaks:    schema.EnrichPeaks(result.Peaks),
		Cached:   result.Cached,
	})
}

func (h *toolHandler) handleFoldLightcurve(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	period := request.GetFloat("period", 0)
	epoch := request.GetFloat("epoch", math.NaN())
	bins := request.GetInt("bins", h.baseCfg.Bins)

	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	if !(period > 0) || math.IsInf(period, 0) {
		return mcp.NewToolResultError(fmt.Sprintf("period must be a positive number of days (received %v)", period)), nil
	}
	if bins < 2 || bins > contract.MaxBins {
		return mcp.NewToolResultError(fmt.Sprintf("bins must be between 2 and %d (received %d)", contract.MaxBins, bins)), nil
	}

	ts, err := lcio.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read lightcurve: %v", err)), nil
	}
	fold, err := core.FoldSeries(ts, period, epoch, bins)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fold failed: %v", err)), nil
	}
	return jsonResult(fold)
}

// jsonResult renders v as indented JSON text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
