package schema

// Periodogram holds BLS power per trial period.
// Periods, Power and Durations are index-aligned and in grid order.
type Periodogram struct {
	Periods   []float64 `json:"periods" msgpack:"periods"`
	Power     []float64 `json:"power" msgpack:"power"`
	Durations []float64 `json:"durations" msgpack:"durations"`
}

// Len returns the number of grid points.
func (p *Periodogram) Len() int {
	return len(p.Periods)
}

// BestCandidate is the trial period with the highest finite power.
type BestCandidate struct {
	BestPeriod float64 `json:"best_period"`
	BestPower  float64 `json:"best_power"`
}

// Peak is a local maximum of the periodogram.
type Peak struct {
	Index    int     `json:"index"`
	Period   float64 `json:"period"`
	Power    float64 `json:"power"`
	Duration float64 `json:"duration"`
	SDE      float64 `json:"sde"` // signal detection efficiency: (power - mean) / stddev
}

// SearchResult bundles everything a search run produces.
type SearchResult struct {
	NSamples    int           `json:"n_samples"`
	Periodogram *Periodogram  `json:"-"`
	Best        BestCandidate `json:"best"`
	Peaks       []Peak        `json:"peaks"`
	Cached      bool          `json:"cached"`
}
