// Package stats provides the numeric helpers of the feature explorer:
// normalisation, extremal selection, percentiles and summary statistics.
// Variance and standard deviation are population statistics (÷n).
package stats

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmptySeries is returned for operations that need at least one value.
	ErrEmptySeries = errors.New("stats: empty series")
	// ErrConstantSeries is returned when min-max normalising a series whose
	// values are all equal.
	ErrConstantSeries = errors.New("stats: constant series cannot be normalised")
	// ErrTooFewValues is returned when more extremes are requested than the
	// series can supply without overlap.
	ErrTooFewValues = errors.New("stats: too few values for extremal selection")
)

// Normalize maps values linearly onto [0, 1]: (v − min) / (max − min).
// The input is not modified.
func Normalize(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 {
		return nil, ErrConstantSeries
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out, nil
}
