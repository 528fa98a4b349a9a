package mcp_test

import (
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/lcio"
	mcp_internal "github.com/huangsam/transit/internal/mcp"
	"github.com/huangsam/transit/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLightcurve writes a 600-sample lightcurve with a 2% dip every 2.5 days.
func writeLightcurve(t *testing.T) string {
	t.Helper()
	const n = 600
	times := make([]float64, n)
	fluxes := make([]float64, n)
	for i := range n {
		times[i] = 20 * float64(i) / float64(n-1)
		fluxes[i] = 1 + 0.0002*math.Sin(float64(i)*1.7)
		phase := math.Mod(times[i]-0.7+1.25, 2.5) - 1.25
		if math.Abs(phase) < 0.06 {
			fluxes[i] -= 0.02
		}
	}
	path := filepath.Join(t.TempDir(), "lc.csv")
	require.NoError(t, lcio.WriteFile(path, schema.NewTimeSeries(times, fluxes)))
	return path
}

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	baseCfg := contract.DefaultConfig()
	baseCfg.Workers = 2
	s := mcp_internal.NewMCPServer(baseCfg, nil)

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	path := writeLightcurve(t)
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{"search missing path", "search_transits", map[string]any{}, "path is required"},
		{"search inverted range", "search_transits", map[string]any{"path": path, "min_period": 5.0, "max_period": 1.0}, "invalid search parameters"},
		{"search single period", "search_transits", map[string]any{"path": path, "n_periods": 1.0}, "invalid search parameters"},
		{"search missing file", "search_transits", map[string]any{"path": filepath.Join(t.TempDir(), "nope.csv")}, "failed to read lightcurve"},
		{"fold missing period", "fold_lightcurve", map[string]any{"path": path}, "period must be a positive"},
		{"fold negative period", "fold_lightcurve", map[string]any{"path": path, "period": -2.0}, "period must be a positive"},
		{"fold too few bins", "fold_lightcurve", map[string]any{"path": path, "period": 2.5, "bins": 1.0}, "bins must be between"},
		{"fold missing path", "fold_lightcurve", map[string]any{"period": 2.5}, "path is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.contains)
		})
	}
}

func TestMCPSearchTransits(t *testing.T) {
	res := callTool(t, "search_transits", map[string]any{
		"path":       writeLightcurve(t),
		"min_period": 1.0,
		"max_period": 5.0,
		"n_periods":  800.0,
		"limit":      3.0,
	})
	require.False(t, res.IsError, resultText(t, res))

	var body struct {
		NSamples int                   `json:"n_samples"`
		Best     schema.BestCandidate  `json:"best"`
		Peaks    []schema.EnrichedPeak `json:"peaks"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	assert.Equal(t, 600, body.NSamples)
	assert.InEpsilon(t, 2.5, body.Best.BestPeriod, 0.02)
	require.NotEmpty(t, body.Peaks)
	assert.LessOrEqual(t, len(body.Peaks), 3)
	assert.Equal(t, 1, body.Peaks[0].Rank)
}

func TestMCPFoldLightcurve(t *testing.T) {
	res := callTool(t, "fold_lightcurve", map[string]any{
		"path":   writeLightcurve(t),
		"period": 2.5,
		"epoch":  0.7,
		"bins":   20.0,
	})
	require.False(t, res.IsError, resultText(t, res))

	var body struct {
		Period float64 `json:"period"`
		Epoch  float64 `json:"epoch"`
		Bins   []struct {
			Phase float64  `json:"phase"`
			Mean  *float64 `json:"mean"`
			Count int      `json:"count"`
		} `json:"bins"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	assert.Equal(t, 2.5, body.Period)
	assert.Equal(t, 0.7, body.Epoch)
	require.Len(t, body.Bins, 20)

	// The dip sits at phase 0, which is the lower edge of bin 10.
	require.NotNil(t, body.Bins[10].Mean)
	require.NotNil(t, body.Bins[0].Mean)
	assert.Less(t, *body.Bins[10].Mean, *body.Bins[0].Mean)
}
