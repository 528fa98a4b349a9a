// Package flatten removes slow trends from lightcurves with a Savitzky-Golay filter.
package flatten

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/transit/schema"
	"gonum.org/v1/gonum/mat"
)

// Default filter parameters.
const (
	DefaultWindow    = 401
	DefaultPolyorder = 2
)

// Errors returned by the detrending functions.
var (
	ErrInvalidWindow   = errors.New("window must be odd and greater than polyorder")
	ErrWindowTooShort  = errors.New("series too short for a filter window")
	ErrDegenerateTrend = errors.New("trend has zero or non-finite values")
	ErrNoFiniteFlux    = errors.New("no finite flux values")
)

// Flatten fits a Savitzky-Golay trend to the flux and divides it out.
// Non-finite samples are dropped from both results. When the series is
// shorter than window, the window shrinks to the largest odd length that
// fits; it must still exceed polyorder. Edges are filled by evaluating a
// polynomial fitted to the first and last windows.
func Flatten(ts schema.TimeSeries, window, polyorder int) (flat, trend schema.TimeSeries, err error) {
	if polyorder < 0 || window <= polyorder || window%2 == 0 {
		return flat, trend, fmt.Errorf("%w (window=%d, polyorder=%d)", ErrInvalidWindow, window, polyorder)
	}

	valid := finiteSamples(ts)
	n := len(valid)
	if n < window {
		window = n
		if window%2 == 0 {
			window--
		}
	}
	if window <= polyorder {
		return flat, trend, fmt.Errorf("%w: %d samples, polyorder %d", ErrWindowTooShort, n, polyorder)
	}

	y := make([]float64, n)
	for i, s := range valid {
		y[i] = s.Y
	}

	smooth, err := savgol(y, window, polyorder)
	if err != nil {
		return flat, trend, err
	}

	flat.Samples = make([]schema.Sample, n)
	trend.Samples = make([]schema.Sample, n)
	for i, s := range valid {
		tr := smooth[i]
		if tr == 0 || math.IsNaN(tr) || math.IsInf(tr, 0) {
			return schema.TimeSeries{}, schema.TimeSeries{}, fmt.Errorf("%w at t=%g", ErrDegenerateTrend, s.T)
		}
		trend.Samples[i] = schema.Sample{T: s.T, Y: tr}
		flat.Samples[i] = schema.Sample{T: s.T, Y: s.Y / tr}
	}
	return flat, trend, nil
}

// MedianNormalize divides every flux by the median of the finite fluxes.
// Non-finite samples are kept as they are.
func MedianNormalize(ts schema.TimeSeries) (schema.TimeSeries, error) {
	med, err := Median(ts.Fluxes())
	if err != nil {
		return schema.TimeSeries{}, err
	}
	if med == 0 {
		return schema.TimeSeries{}, fmt.Errorf("%w: median flux is zero", ErrDegenerateTrend)
	}

	out := make([]schema.Sample, len(ts.Samples))
	for i, s := range ts.Samples {
		out[i] = schema.Sample{T: s.T, Y: s.Y / med}
	}
	return schema.TimeSeries{Samples: out}, nil
}

// Median returns the median of the finite values, averaging the middle pair
// for an even count.
func Median(values []float64) (float64, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, ErrNoFiniteFlux
	}
	sort.Float64s(finite)
	mid := len(finite) / 2
	if len(finite)%2 == 1 {
		return finite[mid], nil
	}
	return (finite[mid-1] + finite[mid]) / 2, nil
}

func finiteSamples(ts schema.TimeSeries) []schema.Sample {
	out := make([]schema.Sample, 0, len(ts.Samples))
	for _, s := range ts.Samples {
		if !math.IsNaN(s.T) && !math.IsInf(s.T, 0) && !math.IsNaN(s.Y) && !math.IsInf(s.Y, 0) {
			out = append(out, s)
		}
	}
	return out
}

// savgol smooths y with a Savitzky-Golay filter of the given odd window.
func savgol(y []float64, window, polyorder int) ([]float64, error) {
	n := len(y)
	half := window / 2

	proj, err := projector(window, polyorder)
	if err != nil {
		return nil, err
	}

	// The smoothed value at the window center is the constant term of the fit.
	center := mat.Row(nil, 0, proj)
	out := make([]float64, n)
	for i := half; i < n-half; i++ {
		var acc float64
		for j, c := range center {
			acc += c * y[i-half+j]
		}
		out[i] = acc
	}

	scale := windowScale(half)
	head := fitWindow(proj, y[:window])
	tail := fitWindow(proj, y[n-window:])
	for i := range half {
		out[i] = evalPoly(head, float64(i-half)/scale)
		k := n - half + i
		out[k] = evalPoly(tail, float64(k-(n-window)-half)/scale)
	}
	return out, nil
}

// projector returns the least-squares operator mapping a window of samples to
// polynomial coefficients. x is centered on the window and scaled to [-1, 1]
// to keep the normal equations well conditioned.
func projector(window, polyorder int) (*mat.Dense, error) {
	half := window / 2
	scale := windowScale(half)
	cols := polyorder + 1

	a := mat.NewDense(window, cols, nil)
	for i := range window {
		x := float64(i-half) / scale
		v := 1.0
		for j := range cols {
			a.Set(i, j, v)
			v *= x
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	var proj mat.Dense
	if err := proj.Solve(&ata, a.T()); err != nil {
		return nil, fmt.Errorf("savitzky-golay normal equations: %w", err)
	}
	return &proj, nil
}

func windowScale(half int) float64 {
	return float64(max(half, 1))
}

func fitWindow(proj *mat.Dense, y []float64) []float64 {
	var coef mat.VecDense
	coef.MulVec(proj, mat.NewVecDense(len(y), append([]float64(nil), y...)))
	return coef.RawVector().Data
}

func evalPoly(coef []float64, x float64) float64 {
	var acc float64
	for j := len(coef) - 1; j >= 0; j-- {
		acc = acc*x + coef[j]
	}
	return acc
}
