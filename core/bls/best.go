package bls

import (
	"fmt"
	"sort"

	"github.com/huangsam/transit/schema"
	"gonum.org/v1/gonum/stat"
)

// PickBest returns the period with the maximum finite power.
// Non-finite powers are ignored and ties go to the lowest index.
func PickBest(periods, power []float64) (schema.BestCandidate, error) {
	if len(periods) == 0 || len(power) == 0 {
		return schema.BestCandidate{}, ErrEmptyResult
	}
	if len(periods) != len(power) {
		return schema.BestCandidate{}, fmt.Errorf("%w: %d periods but %d power values", ErrEmptyResult, len(periods), len(power))
	}

	best := -1
	for i, p := range power {
		if !isFinite(p) {
			continue
		}
		if best < 0 || p > power[best] {
			best = i
		}
	}
	if best < 0 {
		return schema.BestCandidate{}, ErrAllNonFinite
	}
	return schema.BestCandidate{BestPeriod: periods[best], BestPower: power[best]}, nil
}

// TopPeaks returns up to n local maxima of the periodogram ordered by power,
// highest first. Equal powers keep grid order. On a plateau only the first
// point counts as a peak.
func TopPeaks(pg *schema.Periodogram, n int) []schema.Peak {
	if pg == nil || n <= 0 || len(pg.Power) == 0 {
		return nil
	}

	finite := make([]float64, 0, len(pg.Power))
	for _, p := range pg.Power {
		if isFinite(p) {
			finite = append(finite, p)
		}
	}
	if len(finite) == 0 {
		return nil
	}
	mean, std := stat.MeanStdDev(finite, nil)
	if !isFinite(std) {
		std = 0
	}

	var peaks []schema.Peak
	last := len(pg.Power) - 1
	for i, p := range pg.Power {
		if !isFinite(p) {
			continue
		}
		risesFromLeft := i == 0 || !isFinite(pg.Power[i-1]) || p > pg.Power[i-1]
		fallsToRight := i == last || !isFinite(pg.Power[i+1]) || p >= pg.Power[i+1]
		if !risesFromLeft || !fallsToRight {
			continue
		}
		peak := schema.Peak{Index: i, Period: pg.Periods[i], Power: p}
		if i < len(pg.Durations) {
			peak.Duration = pg.Durations[i]
		}
		if std > 0 {
			peak.SDE = (p - mean) / std
		}
		peaks = append(peaks, peak)
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Power > peaks[j].Power
	})
	if len(peaks) > n {
		peaks = peaks[:n]
	}
	return peaks
}
