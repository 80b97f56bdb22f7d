// Package cluster partitions small 3-D point sets with k-means.
//
// The face pipeline uses it to summarise skin colour: colours are treated as
// points in RGB space and the dominant cluster wins.
package cluster

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Constants for k-means configuration
const (
	// DefaultK is the number of clusters used for skin colour summarisation.
	DefaultK = 3
	// DefaultMaxIterations bounds the number of Lloyd iterations.
	DefaultMaxIterations = 300
	// DefaultTolerance is the largest centroid shift still counted as movement.
	DefaultTolerance = 1e-4
)

// ErrNoPoints is returned when clustering an empty point set.
var ErrNoPoints = errors.New("cluster: no points to cluster")

// Params configures KMeans.
type Params struct {
	K             int
	MaxIterations int
	Tolerance     float64
}

// DefaultParams returns the parameters used for skin colour clustering.
func DefaultParams() Params {
	return Params{
		K:             DefaultK,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// Result is the outcome of a k-means run. Labels[i] is the cluster of the
// i-th input point; Sizes[c] counts the points labelled c.
type Result struct {
	Labels     []int
	Centroids  []r3.Vec
	Sizes      []int
	Iterations int
}

// Largest returns the index of the cluster with the most members. Ties go
// to the lowest cluster index.
func (r Result) Largest() int {
	best := 0
	for c, n := range r.Sizes {
		if n > r.Sizes[best] {
			best = c
		}
	}
	return best
}

// Members returns the points labelled with cluster c, in input order.
func (r Result) Members(points []r3.Vec, c int) []r3.Vec {
	out := make([]r3.Vec, 0, r.Sizes[c])
	for i, l := range r.Labels {
		if l == c {
			out = append(out, points[i])
		}
	}
	return out
}

// KMeans runs Lloyd's algorithm over points.
//
// Seeding is deterministic: the first centroid is the point nearest the
// global mean and each further centroid is the point farthest from those
// already chosen (ties go to the lowest input index). Fewer than K clusters
// are returned when the input has fewer than K distinct points.
func KMeans(points []r3.Vec, params Params) (Result, error) {
	if len(points) == 0 {
		return Result{}, ErrNoPoints
	}
	if params.K <= 0 {
		return Result{}, fmt.Errorf("cluster: k must be positive, got %d", params.K)
	}
	if params.MaxIterations <= 0 {
		params.MaxIterations = DefaultMaxIterations
	}

	centroids := seed(points, params.K)
	labels := make([]int, len(points))

	iter := 0
	for iter < params.MaxIterations {
		iter++
		assign(points, centroids, labels)

		next := recenter(points, labels, centroids)
		shift := 0.0
		for c := range centroids {
			shift = math.Max(shift, r3.Norm(r3.Sub(next[c], centroids[c])))
		}
		centroids = next
		if shift <= params.Tolerance {
			break
		}
	}

	// Final labels must agree with the returned centroids.
	assign(points, centroids, labels)
	sizes := make([]int, len(centroids))
	for _, l := range labels {
		sizes[l]++
	}

	return Result{
		Labels:     labels,
		Centroids:  centroids,
		Sizes:      sizes,
		Iterations: iter,
	}, nil
}

// seed picks up to k initial centroids with farthest-first traversal.
func seed(points []r3.Vec, k int) []r3.Vec {
	var mean r3.Vec
	for _, p := range points {
		mean = r3.Add(mean, p)
	}
	mean = r3.Scale(1/float64(len(points)), mean)

	first := 0
	bestDist := math.Inf(1)
	for i, p := range points {
		if d := r3.Norm2(r3.Sub(p, mean)); d < bestDist {
			first, bestDist = i, d
		}
	}

	centroids := []r3.Vec{points[first]}
	nearest := make([]float64, len(points))
	for i, p := range points {
		nearest[i] = r3.Norm2(r3.Sub(p, points[first]))
	}

	for len(centroids) < k {
		far, farDist := -1, 0.0
		for i, d := range nearest {
			if d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			break // every point coincides with a centroid
		}
		c := points[far]
		centroids = append(centroids, c)
		for i, p := range points {
			if d := r3.Norm2(r3.Sub(p, c)); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return centroids
}

// assign labels every point with its nearest centroid.
func assign(points, centroids []r3.Vec, labels []int) {
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for c, ctr := range centroids {
			if d := r3.Norm2(r3.Sub(p, ctr)); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
}

// recenter returns the mean of each cluster. Empty clusters keep their
// previous centroid.
func recenter(points []r3.Vec, labels []int, prev []r3.Vec) []r3.Vec {
	sums := make([]r3.Vec, len(prev))
	counts := make([]int, len(prev))
	for i, l := range labels {
		sums[l] = r3.Add(sums[l], points[i])
		counts[l]++
	}
	next := make([]r3.Vec, len(prev))
	for c := range prev {
		if counts[c] == 0 {
			next[c] = prev[c]
			continue
		}
		next[c] = r3.Scale(1/float64(counts[c]), sums[c])
	}
	return next
}
