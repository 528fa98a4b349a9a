package schema

// Signal labels derived from the signal detection efficiency of a peak.
const (
	StrongSignal   = "Strong"
	ModerateSignal = "Moderate"
	WeakSignal     = "Weak"
	NoiseSignal    = "Noise"
)

// EnrichedPeak adds presentation data to a Peak.
type EnrichedPeak struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	Peak
}

// GetPlainLabel maps a signal detection efficiency to a label.
// An SDE of 9 is the usual threshold for a credible transit detection.
func GetPlainLabel(sde float64) string {
	switch {
	case sde >= 9:
		return StrongSignal
	case sde >= 7:
		return ModerateSignal
	case sde >= 5:
		return WeakSignal
	default:
		return NoiseSignal
	}
}

// EnrichPeaks adds rank and label to a list of peaks.
func EnrichPeaks(peaks []Peak) []EnrichedPeak {
	output := make([]EnrichedPeak, len(peaks))
	for i, p := range peaks {
		output[i] = EnrichedPeak{
			Rank:  i + 1,
			Label: GetPlainLabel(p.SDE),
			Peak:  p,
		}
	}
	return output
}
