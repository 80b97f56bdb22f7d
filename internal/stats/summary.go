package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the statistics shown next to a distribution plot.
type Summary struct {
	Count    int
	Mean     float64
	Max      float64
	Min      float64
	Median   float64
	Variance float64
	Range    float64
	StdDev   float64
}

// Summarize computes a Summary of values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptySeries
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	lo, hi := floats.Min(values), floats.Max(values)
	return Summary{
		Count:    len(values),
		Mean:     mean,
		Max:      hi,
		Min:      lo,
		Median:   Median(values),
		Variance: variance,
		Range:    hi - lo,
		StdDev:   math.Sqrt(variance),
	}, nil
}

// Lines renders the summary as display lines with two decimals.
func (s Summary) Lines() []string {
	return []string{
		fmt.Sprintf("Mean: %.2f", s.Mean),
		fmt.Sprintf("Max: %.2f", s.Max),
		fmt.Sprintf("Min: %.2f", s.Min),
		fmt.Sprintf("Median: %.2f", s.Median),
		fmt.Sprintf("Variance: %.2f", s.Variance),
		fmt.Sprintf("Range: %.2f", s.Range),
		fmt.Sprintf("Standard Deviation: %.2f", s.StdDev),
	}
}
