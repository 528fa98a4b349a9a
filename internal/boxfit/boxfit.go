// Package boxfit computes Box Least Squares power spectra.
//
// For every trial period the samples are folded and binned in phase with a
// bin width of duration/Oversample. A box of Oversample consecutive bins is
// slid across the folded curve (wrapping at the period boundary) and the
// in-transit mean is compared against the out-of-transit mean. The power of
// a trial is the log-likelihood improvement of the best box:
//
//	power = 0.5 * depth^2 * n_in*n_out/(n_in+n_out)
//
// where depth = mean_out - mean_in. Only dips (depth > 0) count. Samples are
// weighted equally.
package boxfit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
)

// DefaultOversample is the number of phase bins per transit duration.
const DefaultOversample = 10

// chunkSize is the number of periods a worker takes at a time.
const chunkSize = 256

// Fit is the best box found for one trial period.
type Fit struct {
	Power    float64 `json:"power"`
	Depth    float64 `json:"depth"`
	Epoch    float64 `json:"epoch"` // mid-transit time of the best box
	Duration float64 `json:"duration"`
	NIn      int     `json:"n_in"`
}

// Spectrum evaluates BLS power over a period grid.
type Spectrum struct {
	Oversample int
	Workers    int
}

// New returns a Spectrum using the given number of workers.
// A non-positive worker count falls back to GOMAXPROCS.
func New(workers int) *Spectrum {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Spectrum{Oversample: DefaultOversample, Workers: workers}
}

// Power returns the power of every (period, duration) pair.
func (s *Spectrum) Power(ctx context.Context, t, y, periods, durations []float64) ([]float64, error) {
	fits, err := s.Evaluate(ctx, t, y, periods, durations)
	if err != nil {
		return nil, err
	}
	power := make([]float64, len(fits))
	for i, f := range fits {
		power[i] = f.Power
	}
	return power, nil
}

// Evaluate returns the best box fit for every (period, duration) pair.
// Periods are sharded across workers; each worker writes only its own indices.
func (s *Spectrum) Evaluate(ctx context.Context, t, y, periods, durations []float64) ([]Fit, error) {
	if err := validate(t, y, periods, durations); err != nil {
		return nil, err
	}

	oversample := s.Oversample
	if oversample <= 0 {
		oversample = DefaultOversample
	}
	workers := max(s.Workers, 1)

	folded := newFoldInput(t, y)
	fits := make([]Fit, len(periods))

	chunkCh := make(chan int, (len(periods)+chunkSize-1)/chunkSize)
	for start := 0; start < len(periods); start += chunkSize {
		chunkCh <- start
	}
	close(chunkCh)

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			var scratch binScratch
			for start := range chunkCh {
				if ctx.Err() != nil {
					continue
				}
				end := min(start+chunkSize, len(periods))
				for i := start; i < end; i++ {
					fits[i] = folded.fit(periods[i], durations[i], oversample, &scratch)
				}
			}
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("power spectrum cancelled: %w", err)
	}
	return fits, nil
}

// validate checks the inputs shared by every trial.
func validate(t, y, periods, durations []float64) error {
	if len(t) != len(y) {
		return fmt.Errorf("time and flux lengths differ: %d != %d", len(t), len(y))
	}
	if len(t) == 0 {
		return errors.New("no samples")
	}
	if len(periods) != len(durations) {
		return fmt.Errorf("period and duration grids differ: %d != %d", len(periods), len(durations))
	}
	for i := range t {
		if math.IsNaN(t[i]) || math.IsInf(t[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return fmt.Errorf("non-finite sample at index %d", i)
		}
	}
	for i, p := range periods {
		d := durations[i]
		if !(p > 0) || math.IsInf(p, 0) {
			return fmt.Errorf("period %g at index %d must be positive and finite", p, i)
		}
		if !(d > 0) || d > p {
			return fmt.Errorf("duration %g at index %d must be positive and no longer than period %g", d, i, p)
		}
	}
	return nil
}
