// Package geometry holds the Euclidean helpers used to measure landmark
// distances and orientations.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// PointLineDistance returns the perpendicular distance from p to the line
// through l0 and l1. The result is NaN or Inf when l0 == l1.
func PointLineDistance(p, l0, l1 r3.Vec) float64 {
	line := r3.Sub(l1, l0)
	return r3.Norm(r3.Cross(line, r3.Sub(l0, p))) / r3.Norm(line)
}

// NormalAngle returns the angle in radians between v and the +Z axis,
// arccos(v.Z / |v|).
func NormalAngle(v r3.Vec) float64 {
	return math.Acos(v.Z / r3.Norm(v))
}

// Sum adds the given vectors component-wise.
func Sum(vs ...r3.Vec) r3.Vec {
	var out r3.Vec
	for _, v := range vs {
		out = r3.Add(out, v)
	}
	return out
}

// FrobeniusDistance treats a and b as n×3 matrices and returns the
// Frobenius norm of a − b. Only the common prefix is compared.
func FrobeniusDistance(a, b []r3.Vec) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += r3.Norm2(r3.Sub(a[i], b[i]))
	}
	return math.Sqrt(sum)
}

// Gather returns the points at the given indices, in index order.
func Gather(points []r3.Vec, indices []int) []r3.Vec {
	out := make([]r3.Vec, len(indices))
	for i, idx := range indices {
		out[i] = points[idx]
	}
	return out
}
