package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/transit/core/bls"
	"github.com/huangsam/transit/core/flatten"
	"github.com/huangsam/transit/schema"
	"github.com/rs/zerolog/log"
)

// ErrEmptySeries is returned when a lightcurve has no usable samples.
var ErrEmptySeries = errors.New("lightcurve has no finite samples")

// PrepareSeries drops samples with a non-finite time or flux and divides the
// flux by its median so that the series centers on 1.0.
func PrepareSeries(ts schema.TimeSeries) (schema.TimeSeries, error) {
	clean := bls.FilterFinite(ts)
	log.Info().
		Int("n_samples", ts.Len()).
		Int("n_finite", clean.Len()).
		Msg("Dropped non-finite samples")
	if clean.Len() == 0 {
		return schema.TimeSeries{}, ErrEmptySeries
	}

	normalized, err := flatten.MedianNormalize(clean)
	if err != nil {
		return schema.TimeSeries{}, fmt.Errorf("failed to normalize flux: %w", err)
	}
	return normalized, nil
}
