// Package bls implements the Box Least Squares transit search: search grid
// construction, delegation to a power spectrum primitive and candidate selection.
package bls

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Default search parameters.
const (
	DefaultMinPeriod        = 0.5
	DefaultMaxPeriod        = 10.0
	DefaultNPeriods         = 20000
	DefaultDurationFraction = 0.05
	DefaultMinDuration      = 0.005
	DefaultMaxDuration      = 0.5
)

// MinSamples is the minimum number of finite samples a search needs.
const MinSamples = 10

// GridConfig describes the trial period grid and the duration heuristic.
// All values are in days.
type GridConfig struct {
	MinPeriod        float64
	MaxPeriod        float64
	NPeriods         int
	DurationFraction float64
	MinDuration      float64
	MaxDuration      float64
}

// DefaultGridConfig returns the default search grid.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		MinPeriod:        DefaultMinPeriod,
		MaxPeriod:        DefaultMaxPeriod,
		NPeriods:         DefaultNPeriods,
		DurationFraction: DefaultDurationFraction,
		MinDuration:      DefaultMinDuration,
		MaxDuration:      DefaultMaxDuration,
	}
}

// Validate checks the grid parameters. NaN and infinite bounds are rejected.
func (g GridConfig) Validate() error {
	if !(g.MinPeriod > 0) || math.IsInf(g.MinPeriod, 0) {
		return &InvalidRangeError{Name: "period", Low: g.MinPeriod, High: g.MaxPeriod, Reason: "min-period must be positive and finite"}
	}
	if !(g.MaxPeriod > g.MinPeriod) || math.IsInf(g.MaxPeriod, 0) {
		return &InvalidRangeError{Name: "period", Low: g.MinPeriod, High: g.MaxPeriod, Reason: "max-period must be finite and greater than min-period"}
	}
	if g.NPeriods < 2 {
		return &InvalidCountError{Count: g.NPeriods}
	}
	if !(g.DurationFraction > 0) || math.IsInf(g.DurationFraction, 0) {
		return &InvalidRangeError{Name: "duration", Low: g.MinDuration, High: g.MaxDuration, Reason: "duration-fraction must be positive and finite"}
	}
	if !(g.MinDuration > 0) || !(g.MaxDuration >= g.MinDuration) || math.IsInf(g.MaxDuration, 0) {
		return &InvalidRangeError{Name: "duration", Low: g.MinDuration, High: g.MaxDuration, Reason: "durations must be positive with max-duration >= min-duration"}
	}
	// DurationFor is piecewise linear in the period, so the range ends and
	// the clamp knees are the only places a duration can first exceed its period.
	for _, p := range []float64{g.MinPeriod, g.MaxPeriod, g.MinDuration / g.DurationFraction, g.MaxDuration / g.DurationFraction} {
		if p < g.MinPeriod || p > g.MaxPeriod {
			continue
		}
		if d := g.DurationFor(p); d > p {
			return &InvalidRangeError{
				Name:   "duration",
				Low:    g.MinDuration,
				High:   g.MaxDuration,
				Reason: fmt.Sprintf("duration %g exceeds period %g", d, p),
			}
		}
	}
	return nil
}

// DurationFor returns the trial transit duration for a period:
// DurationFraction * period, clamped to [MinDuration, MaxDuration].
func (g GridConfig) DurationFor(period float64) float64 {
	return math.Min(math.Max(g.DurationFraction*period, g.MinDuration), g.MaxDuration)
}

// BuildSearchGrids returns NPeriods uniformly spaced periods over
// [MinPeriod, MaxPeriod], both endpoints included, and the paired duration
// for every period.
func BuildSearchGrids(g GridConfig) (periods, durations []float64, err error) {
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}

	periods = floats.Span(make([]float64, g.NPeriods), g.MinPeriod, g.MaxPeriod)
	periods[0] = g.MinPeriod
	periods[len(periods)-1] = g.MaxPeriod

	durations = make([]float64, len(periods))
	for i, p := range periods {
		durations[i] = g.DurationFor(p)
	}
	return periods, durations, nil
}
