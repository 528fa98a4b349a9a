package boxfit

import (
	"math"
	"slices"
)

// foldInput holds samples relative to the earliest time, plus flux totals.
type foldInput struct {
	t0    float64
	dt    []float64
	y     []float64
	sumY  float64
	count int
}

// binScratch is per-worker storage reused across periods.
type binScratch struct {
	sum []float64
	cnt []int
}

func (s *binScratch) reset(nbins int) {
	if cap(s.sum) < nbins {
		s.sum = make([]float64, nbins)
		s.cnt = make([]int, nbins)
	}
	s.sum = s.sum[:nbins]
	s.cnt = s.cnt[:nbins]
	clear(s.sum)
	clear(s.cnt)
}

func newFoldInput(t, y []float64) *foldInput {
	t0 := slices.Min(t)
	in := &foldInput{
		t0:    t0,
		dt:    make([]float64, len(t)),
		y:     y,
		count: len(t),
	}
	for i, v := range t {
		in.dt[i] = v - t0
		in.sumY += y[i]
	}
	return in
}

// fit finds the best box for one period and duration.
func (in *foldInput) fit(period, duration float64, oversample int, s *binScratch) Fit {
	binWidth := duration / float64(oversample)
	nbins := int(math.Ceil(period / binWidth))
	s.reset(nbins)

	for i, dt := range in.dt {
		bin := int(math.Mod(dt, period) / binWidth)
		if bin >= nbins {
			bin = nbins - 1
		}
		s.sum[bin] += in.y[i]
		s.cnt[bin]++
	}

	width := min(oversample, nbins)
	var inSum float64
	var inCnt int
	for k := range width {
		inSum += s.sum[k]
		inCnt += s.cnt[k]
	}

	best := Fit{Duration: duration}
	for start := range nbins {
		if start > 0 {
			// slide the window one bin to the right, wrapping at the period boundary
			drop := start - 1
			add := (start + width - 1) % nbins
			inSum += s.sum[add] - s.sum[drop]
			inCnt += s.cnt[add] - s.cnt[drop]
		}

		outCnt := in.count - inCnt
		if inCnt == 0 || outCnt == 0 {
			continue
		}
		yIn := inSum / float64(inCnt)
		yOut := (in.sumY - inSum) / float64(outCnt)
		depth := yOut - yIn
		if depth <= 0 {
			continue
		}
		ivar := float64(inCnt) * float64(outCnt) / float64(in.count)
		power := 0.5 * depth * depth * ivar
		if power > best.Power {
			best.Power = power
			best.Depth = depth
			best.NIn = inCnt
			best.Epoch = in.t0 + math.Mod(float64(start)*binWidth+0.5*float64(width)*binWidth, period)
		}
	}
	return best
}
