// Package schema has models and constants for all parts of transit.
package schema

// Sample is one lightcurve measurement. Times are in days and flux is normalized.
// Either field may be NaN when the measurement is missing.
type Sample struct {
	T float64 `json:"time"`
	Y float64 `json:"flux"`
}

// TimeSeries is an ordered sequence of samples, ascending in time by convention.
type TimeSeries struct {
	Samples []Sample `json:"samples"`
}

// NewTimeSeries pairs parallel time and flux slices. The shorter slice wins.
func NewTimeSeries(times, fluxes []float64) TimeSeries {
	n := min(len(times), len(fluxes))
	samples := make([]Sample, n)
	for i := range n {
		samples[i] = Sample{T: times[i], Y: fluxes[i]}
	}
	return TimeSeries{Samples: samples}
}

// Len returns the number of samples.
func (ts TimeSeries) Len() int {
	return len(ts.Samples)
}

// Times returns a fresh slice of sample times.
func (ts TimeSeries) Times() []float64 {
	out := make([]float64, len(ts.Samples))
	for i, s := range ts.Samples {
		out[i] = s.T
	}
	return out
}

// Fluxes returns a fresh slice of sample fluxes.
func (ts TimeSeries) Fluxes() []float64 {
	out := make([]float64, len(ts.Samples))
	for i, s := range ts.Samples {
		out[i] = s.Y
	}
	return out
}
