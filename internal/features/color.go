package features

import (
	"fmt"

	"github.com/banshee-data/faceon/internal/cluster"
	"github.com/banshee-data/faceon/internal/stats"
	"gonum.org/v1/gonum/spatial/r3"
)

// SkinColor partitions all colours into k=3 clusters and returns the
// per-channel median of the largest one.
func (e *Extractor) SkinColor(colors []Color) (Color, error) {
	if len(colors) == 0 {
		return Color{}, ErrNoColors
	}

	points := make([]r3.Vec, len(colors))
	for i, c := range colors {
		points[i] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}

	res, err := cluster.KMeans(points, e.params)
	if err != nil {
		return Color{}, fmt.Errorf("failed to cluster skin colours: %w", err)
	}
	members := res.Members(points, res.Largest())

	channels := [3][]float64{}
	for _, m := range members {
		channels[0] = append(channels[0], m.X)
		channels[1] = append(channels[1], m.Y)
		channels[2] = append(channels[2], m.Z)
	}
	return Color{
		stats.Median(channels[0]),
		stats.Median(channels[1]),
		stats.Median(channels[2]),
	}, nil
}

// LipColor is the mean colour over the top and bottom lip outlines. Corner
// landmarks shared by both outlines are counted twice.
func (e *Extractor) LipColor(colors []Color) (Color, error) {
	if len(colors) == 0 {
		return Color{}, ErrNoColors
	}

	indices := e.topo.LipIndices()
	var sum Color
	for _, idx := range indices {
		if idx >= len(colors) {
			return Color{}, fmt.Errorf("%w: index %d, %d colours", ErrColorIndex, idx, len(colors))
		}
		for ch := range sum {
			sum[ch] += colors[idx][ch]
		}
	}

	n := float64(len(indices))
	return Color{sum[0] / n, sum[1] / n, sum[2] / n}, nil
}
