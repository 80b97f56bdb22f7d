package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// blob returns n points jittered deterministically around c.
func blob(c r3.Vec, n int) []r3.Vec {
	out := make([]r3.Vec, n)
	for i := range out {
		d := float64(i%5) - 2
		out[i] = r3.Vec{X: c.X + d, Y: c.Y - d, Z: c.Z + float64(i%3) - 1}
	}
	return out
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, DefaultK, p.K)
	assert.Equal(t, DefaultMaxIterations, p.MaxIterations)
	assert.Equal(t, DefaultTolerance, p.Tolerance)
}

func TestKMeans_EmptyInput(t *testing.T) {
	_, err := KMeans(nil, DefaultParams())
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestKMeans_InvalidK(t *testing.T) {
	_, err := KMeans([]r3.Vec{{X: 1}}, Params{K: 0})
	assert.Error(t, err)
}

func TestKMeans_SeparatedBlobs(t *testing.T) {
	t.Parallel()

	var points []r3.Vec
	points = append(points, blob(r3.Vec{X: 10, Y: 10, Z: 10}, 5)...)
	points = append(points, blob(r3.Vec{X: 200, Y: 150, Z: 120}, 20)...)
	points = append(points, blob(r3.Vec{X: 250, Y: 30, Z: 240}, 8)...)

	res, err := KMeans(points, DefaultParams())
	require.NoError(t, err)
	require.Len(t, res.Centroids, 3)
	require.Len(t, res.Labels, len(points))

	largest := res.Largest()
	assert.Equal(t, 20, res.Sizes[largest])
	assert.InDelta(t, 200, res.Centroids[largest].X, 2)

	// Every blob must be labelled consistently.
	for i := 1; i < 5; i++ {
		assert.Equal(t, res.Labels[0], res.Labels[i])
	}
	for i := 6; i < 25; i++ {
		assert.Equal(t, res.Labels[5], res.Labels[i])
	}
	members := res.Members(points, largest)
	assert.Len(t, members, 20)
}

func TestKMeans_FewerDistinctPointsThanK(t *testing.T) {
	t.Parallel()
	points := []r3.Vec{{X: 1}, {X: 1}, {X: 1}, {X: 5}}
	res, err := KMeans(points, DefaultParams())
	require.NoError(t, err)
	assert.Len(t, res.Centroids, 2)
	assert.Equal(t, 3, res.Sizes[res.Largest()])
}

func TestResult_LargestTieBreak(t *testing.T) {
	r := Result{Sizes: []int{2, 4, 4}}
	assert.Equal(t, 1, r.Largest())
}

func TestKMeans_Deterministic(t *testing.T) {
	t.Parallel()
	points := append(blob(r3.Vec{X: 50, Y: 60, Z: 70}, 12), blob(r3.Vec{X: 180, Y: 20, Z: 90}, 9)...)
	a, err := KMeans(points, DefaultParams())
	require.NoError(t, err)
	b, err := KMeans(points, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
