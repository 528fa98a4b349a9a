package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/huangsam/transit/core"
	"github.com/huangsam/transit/core/bls"
	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/schema"
)

// searchRequest is the body of POST /v1/search. Samples are [time, flux]
// pairs; a null entry is a missing measurement.
type searchRequest struct {
	Samples          [][2]*float64 `json:"samples"`
	MinPeriod        *float64      `json:"min_period"`
	MaxPeriod        *float64      `json:"max_period"`
	NPeriods         *int          `json:"n_periods"`
	DurationFraction *float64      `json:"duration_fraction"`
	Limit            *int          `json:"limit"`
}

// searchResponse is the body of a successful search.
type searchResponse struct {
	BestPeriod float64               `json:"best_period"`
	BestPower  float64               `json:"best_power"`
	NSamples   int                   `json:"n_samples"`
	Peaks      []schema.EnrichedPeak `json:"peaks"`
	Cached     bool                  `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	cfg := s.baseCfg.Clone()
	if err := applyRequest(cfg, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := core.Search(r.Context(), cfg, req.timeSeries(), s.mgr)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, searchResponse{
		BestPeriod: result.Best.BestPeriod,
		BestPower:  result.Best.BestPower,
		NSamples:   result.NSamples,
		Peaks:      schema.EnrichPeaks(result.Peaks),
		Cached:     result.Cached,
	})
}

// applyRequest overlays the request knobs on cfg and validates the grid.
func applyRequest(cfg *contract.Config, req *searchRequest) error {
	if req.MinPeriod != nil {
		cfg.Grid.MinPeriod = *req.MinPeriod
	}
	if req.MaxPeriod != nil {
		cfg.Grid.MaxPeriod = *req.MaxPeriod
	}
	if req.NPeriods != nil {
		cfg.Grid.NPeriods = *req.NPeriods
	}
	if req.DurationFraction != nil {
		cfg.Grid.DurationFraction = *req.DurationFraction
	}
	if req.Limit != nil {
		if *req.Limit <= 0 || *req.Limit > contract.MaxResultLimit {
			return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", contract.MaxResultLimit, *req.Limit)
		}
		cfg.ResultLimit = *req.Limit
	}
	return cfg.Grid.Validate()
}

// timeSeries converts the request pairs, mapping null to NaN.
func (req *searchRequest) timeSeries() schema.TimeSeries {
	samples := make([]schema.Sample, len(req.Samples))
	for i, pair := range req.Samples {
		samples[i] = schema.Sample{T: valueOrNaN(pair[0]), Y: valueOrNaN(pair[1])}
	}
	return schema.TimeSeries{Samples: samples}
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, bls.ErrInvalidRange), errors.Is(err, bls.ErrInvalidCount):
		return http.StatusBadRequest
	case errors.Is(err, bls.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
