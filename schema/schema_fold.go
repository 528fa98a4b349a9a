package schema

import (
	"encoding/json"
	"math"
)

// FoldBin is the mean flux of all samples whose phase falls into the bin.
// Mean is NaN and Count is zero for empty bins.
type FoldBin struct {
	Phase float64 `json:"phase"` // bin center
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// MarshalJSON renders the mean of an empty bin as null.
func (b FoldBin) MarshalJSON() ([]byte, error) {
	type jsonBin struct {
		Phase float64  `json:"phase"`
		Mean  *float64 `json:"mean"`
		Count int      `json:"count"`
	}
	out := jsonBin{Phase: b.Phase, Count: b.Count}
	if !math.IsNaN(b.Mean) && !math.IsInf(b.Mean, 0) {
		mean := b.Mean
		out.Mean = &mean
	}
	return json.Marshal(out)
}

// FoldResult is a lightcurve folded on a trial period.
type FoldResult struct {
	Period float64   `json:"period"`
	Epoch  float64   `json:"epoch"`
	Phases []float64 `json:"-"` // per-sample phase, sorted ascending
	Fluxes []float64 `json:"-"` // flux matching Phases
	Bins   []FoldBin `json:"bins"`
}
