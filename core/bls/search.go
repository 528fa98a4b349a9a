package bls

import (
	"context"
	"fmt"
	"math"

	"github.com/huangsam/transit/schema"
)

// PowerSpectrum computes the BLS power for each paired (period, duration) trial.
// Implementations must return one power value per period, in grid order.
type PowerSpectrum interface {
	Power(ctx context.Context, t, y, periods, durations []float64) ([]float64, error)
}

// PowerSpectrumFunc adapts a plain function to the PowerSpectrum interface.
type PowerSpectrumFunc func(ctx context.Context, t, y, periods, durations []float64) ([]float64, error)

// Power calls f.
func (f PowerSpectrumFunc) Power(ctx context.Context, t, y, periods, durations []float64) ([]float64, error) {
	return f(ctx, t, y, periods, durations)
}

// FilterFinite returns the samples whose time and flux are both finite, in order.
func FilterFinite(ts schema.TimeSeries) schema.TimeSeries {
	out := make([]schema.Sample, 0, len(ts.Samples))
	for _, s := range ts.Samples {
		if isFinite(s.T) && isFinite(s.Y) {
			out = append(out, s)
		}
	}
	return schema.TimeSeries{Samples: out}
}

// RunSearch drops non-finite samples, builds the search grids and asks the
// primitive for the power at every trial period. It never retries and keeps
// no state between calls.
func RunSearch(ctx context.Context, ts schema.TimeSeries, grid GridConfig, ps PowerSpectrum) (*schema.Periodogram, error) {
	valid := FilterFinite(ts)
	if valid.Len() < MinSamples {
		return nil, &InsufficientDataError{Valid: valid.Len(), Required: MinSamples}
	}

	periods, durations, err := BuildSearchGrids(grid)
	if err != nil {
		return nil, err
	}

	power, err := ps.Power(ctx, valid.Times(), valid.Fluxes(), periods, durations)
	if err != nil {
		return nil, &SearchPrimitiveError{Err: err}
	}
	if len(power) != len(periods) {
		return nil, &SearchPrimitiveError{Err: fmt.Errorf("returned %d power values for %d periods", len(power), len(periods))}
	}

	return &schema.Periodogram{
		Periods:   periods,
		Power:     power,
		Durations: durations,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
