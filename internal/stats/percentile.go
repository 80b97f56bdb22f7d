package stats

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile (p in [0, 100]) using linear
// interpolation between closest ranks, rank = p/100·(n−1). The input slice is
// not modified. Returns NaN for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

// Median returns the middle value, averaging the two central values for an
// even count. Returns NaN for an empty slice.
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// Outlier filter bounds: percentiles used as the quartile stand-ins and the
// spread multiplier.
const (
	OutlierLowPercentile  = 2
	OutlierHighPercentile = 98
	OutlierIQRMultiplier  = 1.5
)

// OutlierBounds returns the inclusive range outside of which a value counts
// as noise: [q02 − 1.5·iqr, q98 + 1.5·iqr] with iqr = q98 − q02.
func OutlierBounds(values []float64) (lower, upper float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := percentileSorted(sorted, OutlierLowPercentile)
	q3 := percentileSorted(sorted, OutlierHighPercentile)
	iqr := q3 - q1
	return q1 - OutlierIQRMultiplier*iqr, q3 + OutlierIQRMultiplier*iqr
}

// FilterOutliers returns the indices of the values inside OutlierBounds, in
// input order, so callers can keep parallel sequences aligned.
func FilterOutliers(values []float64) []int {
	if len(values) == 0 {
		return nil
	}
	lower, upper := OutlierBounds(values)
	kept := make([]int, 0, len(values))
	for i, v := range values {
		if v >= lower && v <= upper {
			kept = append(kept, i)
		}
	}
	return kept
}
