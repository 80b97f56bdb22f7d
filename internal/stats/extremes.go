package stats

import (
	"container/heap"
	"fmt"
	"sort"
)

// Extremes returns the indices of the n smallest values, ascending, and of
// the n largest values, descending. Equal values are ordered by first
// occurrence. An index never appears in both results; when ties would put
// it in both, the largest-value selection takes the next candidate.
//
// Selection keeps a bounded heap per side, so the cost is O(M log n).
func Extremes(values []float64, n int) (minIdx, maxIdx []int, err error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("stats: negative extreme count %d", n)
	}
	if 2*n > len(values) {
		return nil, nil, fmt.Errorf("%w: want %d of each side, have %d values", ErrTooFewValues, n, len(values))
	}
	if n == 0 {
		return []int{}, []int{}, nil
	}

	smaller := func(a, b int) bool {
		if values[a] != values[b] {
			return values[a] < values[b]
		}
		return a < b
	}
	larger := func(a, b int) bool {
		if values[a] != values[b] {
			return values[a] > values[b]
		}
		return a < b
	}

	minIdx = selectBest(len(values), n, smaller, nil)

	taken := make(map[int]bool, n)
	for _, i := range minIdx {
		taken[i] = true
	}
	maxIdx = selectBest(len(values), n, larger, taken)

	return minIdx, maxIdx, nil
}

// selectBest returns the n indices in [0, m) ranked first by better, in rank
// order, skipping excluded indices.
func selectBest(m, n int, better func(a, b int) bool, exclude map[int]bool) []int {
	h := &worstFirst{better: better}
	for i := 0; i < m; i++ {
		if exclude[i] {
			continue
		}
		if h.Len() < n {
			heap.Push(h, i)
			continue
		}
		if better(i, h.idx[0]) {
			h.idx[0] = i
			heap.Fix(h, 0)
		}
	}

	out := append([]int(nil), h.idx...)
	sort.Slice(out, func(a, b int) bool { return better(out[a], out[b]) })
	return out
}

// worstFirst is a heap of indices whose root is the least preferred entry.
type worstFirst struct {
	idx    []int
	better func(a, b int) bool
}

func (h worstFirst) Len() int           { return len(h.idx) }
func (h worstFirst) Less(i, j int) bool { return h.better(h.idx[j], h.idx[i]) }
func (h worstFirst) Swap(i, j int)      { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *worstFirst) Push(x any) { h.idx = append(h.idx, x.(int)) }

func (h *worstFirst) Pop() any {
	old := h.idx
	n := len(old)
	x := old[n-1]
	h.idx = old[:n-1]
	return x
}
