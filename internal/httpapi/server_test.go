package httpapi

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/internal/iocache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	cfg := contract.DefaultConfig()
	cfg.Workers = 2
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetRunStore").Return(nil)
	return New(cfg, mgr)
}

// transitSamples returns [t, y] pairs with a 2% dip every 2.5 days.
func transitSamples(n int) [][2]any {
	out := make([][2]any, n)
	for i := range n {
		t := 20 * float64(i) / float64(n-1)
		y := 1 + 0.0002*math.Sin(float64(i)*1.7)
		if math.Abs(math.Mod(t-0.7+1.25, 2.5)-1.25) < 0.06 {
			y -= 0.02
		}
		out[i] = [2]any{t, y}
	}
	return out
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	samples := transitSamples(600)
	samples[10] = [2]any{nil, 1.0}
	samples[20] = [2]any{5.0, nil}

	rec := doRequest(t, newTestServer(), http.MethodPost, "/v1/search", map[string]any{
		"samples":    samples,
		"min_period": 1.0,
		"max_period": 5.0,
		"n_periods":  800,
		"limit":      3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InEpsilon(t, 2.5, resp.BestPeriod, 0.02)
	assert.Equal(t, 598, resp.NSamples)
	require.NotEmpty(t, resp.Peaks)
	assert.LessOrEqual(t, len(resp.Peaks), 3)
	assert.Equal(t, resp.BestPeriod, resp.Peaks[0].Period)
}

func TestSearchErrors(t *testing.T) {
	samples := transitSamples(100)
	tests := []struct {
		name     string
		body     any
		status   int
		contains string
	}{
		{"malformed json", `{"samples": [`, http.StatusBadRequest, "invalid request body"},
		{"unknown field", `{"sample": []}`, http.StatusBadRequest, "invalid request body"},
		{"inverted range", map[string]any{"samples": samples, "min_period": 5.0, "max_period": 1.0}, http.StatusBadRequest, "invalid search range"},
		{"single period", map[string]any{"samples": samples, "n_periods": 1}, http.StatusBadRequest, "invalid period count"},
		{"bad limit", map[string]any{"samples": samples, "limit": 0}, http.StatusBadRequest, "limit must be"},
		{"too few samples", map[string]any{"samples": samples[:5], "n_periods": 100}, http.StatusUnprocessableEntity, "insufficient data"},
		{"all missing", map[string]any{"samples": [][2]any{{nil, nil}, {nil, 1.0}}, "n_periods": 100}, http.StatusUnprocessableEntity, "insufficient data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestServer(), http.MethodPost, "/v1/search", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.contains)
		})
	}
}

func TestSearchWrongMethod(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/v1/search", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/search", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
