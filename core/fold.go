package core

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/transit/core/bls"
	"github.com/huangsam/transit/schema"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidFold is returned for a non-positive period or too few bins.
var ErrInvalidFold = errors.New("invalid fold parameters")

// Phase maps a time onto [-0.5, 0.5) for the given period and epoch.
// The epoch lands at phase 0.
func Phase(t, period, epoch float64) float64 {
	p := math.Mod((t-epoch)/period+0.5, 1)
	if p < 0 {
		p++
	}
	if p >= 1 { // rounding of p++ on a tiny negative remainder
		p = 0
	}
	return p - 0.5
}

// FoldSeries folds the finite samples on period and averages the flux in
// bins equal-width phase bins spanning [-0.5, 0.5]. A NaN epoch means the
// first sample time. Empty bins have a NaN mean.
func FoldSeries(ts schema.TimeSeries, period, epoch float64, bins int) (*schema.FoldResult, error) {
	if !(period > 0) || math.IsInf(period, 0) {
		return nil, fmt.Errorf("%w: period must be positive (received %v)", ErrInvalidFold, period)
	}
	if bins < 1 {
		return nil, fmt.Errorf("%w: bins must be at least 1 (received %d)", ErrInvalidFold, bins)
	}

	valid := bls.FilterFinite(ts)
	if valid.Len() == 0 {
		return nil, ErrEmptySeries
	}
	if math.IsNaN(epoch) {
		epoch = valid.Samples[0].T
	}

	n := valid.Len()
	order := make([]int, n)
	phases := make([]float64, n)
	for i, s := range valid.Samples {
		order[i] = i
		phases[i] = Phase(s.T, period, epoch)
	}
	sort.SliceStable(order, func(a, b int) bool { return phases[order[a]] < phases[order[b]] })

	result := &schema.FoldResult{
		Period: period,
		Epoch:  epoch,
		Phases: make([]float64, n),
		Fluxes: make([]float64, n),
		Bins:   make([]schema.FoldBin, bins),
	}
	width := 1.0 / float64(bins)
	members := make([][]float64, bins)
	for i, idx := range order {
		ph := phases[idx]
		result.Phases[i] = ph
		result.Fluxes[i] = valid.Samples[idx].Y
		b := min(int((ph+0.5)/width), bins-1)
		members[b] = append(members[b], valid.Samples[idx].Y)
	}

	for b := range bins {
		bin := schema.FoldBin{Phase: -0.5 + (float64(b)+0.5)*width, Mean: math.NaN()}
		if len(members[b]) > 0 {
			bin.Mean = stat.Mean(members[b], nil)
			bin.Count = len(members[b])
		}
		result.Bins[b] = bin
	}
	return result, nil
}
