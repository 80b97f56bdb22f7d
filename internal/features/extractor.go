package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/faceon/internal/cluster"
	"github.com/banshee-data/faceon/internal/geometry"
	"github.com/banshee-data/faceon/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrPointCount is returned when a landmark set does not match the topology.
	ErrPointCount = errors.New("features: landmark count does not match topology")
	// ErrNoColors is returned when a sample carries no colours.
	ErrNoColors = errors.New("features: no colour samples")
	// ErrColorIndex is returned when a lip landmark has no matching colour.
	ErrColorIndex = errors.New("features: lip index outside colour samples")
	// ErrNonFinite is returned when a degenerate landmark set (for example
	// coincident line endpoints) makes a feature NaN or infinite.
	ErrNonFinite = errors.New("features: non-finite feature value")
)

// Extractor computes FaceFeatures for samples that share one topology.
type Extractor struct {
	topo   topology.Topology
	params cluster.Params
}

// NewExtractor validates topo and returns an extractor bound to it.
func NewExtractor(topo topology.Topology) (*Extractor, error) {
	if err := topo.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology: %w", err)
	}
	return &Extractor{topo: topo, params: cluster.DefaultParams()}, nil
}

// SetClusterParams overrides the k-means parameters used for skin colour.
func (e *Extractor) SetClusterParams(p cluster.Params) {
	e.params = p
}

// Topology returns the landmark layout used by e.
func (e *Extractor) Topology() topology.Topology {
	return e.topo
}

// Extract computes every feature of one sample. Degenerate geometry that
// yields NaN or Inf is reported as ErrNonFinite, since feature mappings are
// stored as JSON and cannot carry non-finite numbers.
func (e *Extractor) Extract(points []r3.Vec, colors []Color) (FaceFeatures, error) {
	if len(points) != e.topo.PointCount {
		return FaceFeatures{}, fmt.Errorf("%w: got %d points, want %d", ErrPointCount, len(points), e.topo.PointCount)
	}

	skin, err := e.SkinColor(colors)
	if err != nil {
		return FaceFeatures{}, err
	}
	lip, err := e.LipColor(colors)
	if err != nil {
		return FaceFeatures{}, err
	}

	f := FaceFeatures{
		EyeBetween: e.EyeBetween(points),
		EyeFront:   e.EyeFront(points),
		EyeBack:    e.EyeBack(points),
		EyeAbove:   e.EyeAbove(points),
		EyeBelow:   e.EyeBelow(points),
		EyeDegree:  e.EyeDegree(points),

		BrowBetween:   e.BrowBetween(points),
		BrowFront:     e.BrowFront(points),
		BrowBack:      e.BrowBack(points),
		BrowDegree:    e.BrowDegree(points),
		BrowThickness: e.BrowThickness(points),
		BrowShape:     e.BrowShape(points),

		NoseLength:          e.NoseLength(points),
		NoseBridgeThickness: e.NoseBridgeThickness(points),
		NoseAlar:            e.NoseAlar(points),
		Philtrum:            e.Philtrum(points),

		LipLength:         e.LipLength(points),
		UpperLipThickness: e.UpperLipThickness(points),
		LowerLipThickness: e.LowerLipThickness(points),

		ForeheadLength: e.ForeheadLength(points),
		ChinLength:     e.ChinLength(points),

		Jaw:         e.Jaw(points),
		JawPosition: e.JawPosition(points),

		SkinColor: skin,
		LipColor:  lip,
	}

	names := ScalarNames()
	for i, v := range f.ScalarValues() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return FaceFeatures{}, fmt.Errorf("%w: %s is %v", ErrNonFinite, names[i], v)
		}
	}
	return f, nil
}

// -----------------------------------------------------------------------------
// Eyes
// -----------------------------------------------------------------------------

// EyeBetween is the distance between the two upper eyelids.
func (e *Extractor) EyeBetween(p []r3.Vec) float64 {
	return geometry.Distance(p[e.topo.RightEye.Top], p[e.topo.LeftEye.Top])
}

// EyeFront sums, over both eyes, the distance from the inner corner to the
// vertical lid line.
func (e *Extractor) EyeFront(p []r3.Vec) float64 {
	return e.eachEye(func(eye topology.Eye) float64 {
		return geometry.PointLineDistance(p[eye.Front], p[eye.Top], p[eye.Bottom])
	})
}

// EyeBack sums, over both eyes, the distance from the outer corner to the
// vertical lid line.
func (e *Extractor) EyeBack(p []r3.Vec) float64 {
	return e.eachEye(func(eye topology.Eye) float64 {
		return geometry.PointLineDistance(p[eye.Back], p[eye.Top], p[eye.Bottom])
	})
}

// EyeAbove sums, over both eyes, the distance from the upper lid to the
// corner-to-corner line.
func (e *Extractor) EyeAbove(p []r3.Vec) float64 {
	return e.eachEye(func(eye topology.Eye) float64 {
		return geometry.PointLineDistance(p[eye.Top], p[eye.Front], p[eye.Back])
	})
}

// EyeBelow sums, over both eyes, the distance from the lower lid to the
// corner-to-corner line.
func (e *Extractor) EyeBelow(p []r3.Vec) float64 {
	return e.eachEye(func(eye topology.Eye) float64 {
		return geometry.PointLineDistance(p[eye.Bottom], p[eye.Front], p[eye.Back])
	})
}

// EyeDegree sums the angle of each eye's corner-to-corner vector against the
// Z axis.
func (e *Extractor) EyeDegree(p []r3.Vec) float64 {
	return e.eachEye(func(eye topology.Eye) float64 {
		return geometry.NormalAngle(r3.Sub(p[eye.Front], p[eye.Back]))
	})
}

func (e *Extractor) eachEye(f func(topology.Eye) float64) float64 {
	return f(e.topo.RightEye) + f(e.topo.LeftEye)
}

// -----------------------------------------------------------------------------
// Brows
//
// A brow location is the sum of its two landmarks, not their mean. The
// historical feature values were produced this way and stay comparable.
// -----------------------------------------------------------------------------

func pairSum(p []r3.Vec, pair [2]int) r3.Vec {
	return geometry.Sum(p[pair[0]], p[pair[1]])
}

// BrowBetween is the distance between the two brow arches.
func (e *Extractor) BrowBetween(p []r3.Vec) float64 {
	return geometry.Distance(pairSum(p, e.topo.RightBrow.Arch), pairSum(p, e.topo.LeftBrow.Arch))
}

// BrowFront sums, over both brows, the start-to-arch distance.
func (e *Extractor) BrowFront(p []r3.Vec) float64 {
	return e.eachBrow(func(b topology.Brow) float64 {
		return geometry.Distance(pairSum(p, b.Start), pairSum(p, b.Arch))
	})
}

// BrowBack sums, over both brows, the end-to-arch distance.
func (e *Extractor) BrowBack(p []r3.Vec) float64 {
	return e.eachBrow(func(b topology.Brow) float64 {
		return geometry.Distance(pairSum(p, b.End), pairSum(p, b.Arch))
	})
}

// BrowDegree sums the angle of each brow's start-to-end vector against the
// Z axis, using the first landmark of each pair.
func (e *Extractor) BrowDegree(p []r3.Vec) float64 {
	return e.eachBrow(func(b topology.Brow) float64 {
		return geometry.NormalAngle(r3.Sub(p[b.Start[0]], p[b.End[0]]))
	})
}

// BrowThickness sums the top-to-bottom width of every landmark pair of both
// brows.
func (e *Extractor) BrowThickness(p []r3.Vec) float64 {
	return e.eachBrow(func(b topology.Brow) float64 {
		var sum float64
		for _, pair := range [][2]int{b.Start, b.Arch, b.End} {
			sum += geometry.Distance(p[pair[0]], p[pair[1]])
		}
		return sum
	})
}

// BrowShape sums, over both brows, the arch height above the start-end chord
// divided by the chord length.
func (e *Extractor) BrowShape(p []r3.Vec) float64 {
	return e.eachBrow(func(b topology.Brow) float64 {
		arch, start, end := pairSum(p, b.Arch), pairSum(p, b.Start), pairSum(p, b.End)
		return geometry.PointLineDistance(arch, start, end) / geometry.Distance(start, end)
	})
}

func (e *Extractor) eachBrow(f func(topology.Brow) float64) float64 {
	return f(e.topo.RightBrow) + f(e.topo.LeftBrow)
}

// -----------------------------------------------------------------------------
// Nose
// -----------------------------------------------------------------------------

// NoseLength is the depth difference between the nose end and start.
func (e *Extractor) NoseLength(p []r3.Vec) float64 {
	return p[e.topo.NoseEnd].Z - p[e.topo.NoseStart].Z
}

// NoseBridgeThickness is the combined norm of the bridge against each of its
// side arrays.
func (e *Extractor) NoseBridgeThickness(p []r3.Vec) float64 {
	bridge := geometry.Gather(p, e.topo.NoseBridge)
	right := geometry.Gather(p, e.topo.NoseBridgeRight)
	left := geometry.Gather(p, e.topo.NoseBridgeLeft)
	return geometry.FrobeniusDistance(bridge, right) + geometry.FrobeniusDistance(bridge, left)
}

// NoseAlar sums the nostril-to-tip distances.
func (e *Extractor) NoseAlar(p []r3.Vec) float64 {
	tip := p[e.topo.NoseTip()]
	return geometry.Distance(p[e.topo.NoseRight], tip) + geometry.Distance(p[e.topo.NoseLeft], tip)
}

// Philtrum is the distance from the nose end to the top of the upper lip.
func (e *Extractor) Philtrum(p []r3.Vec) float64 {
	return geometry.Distance(p[e.topo.NoseEnd], p[e.topo.TopLipTop])
}

// -----------------------------------------------------------------------------
// Lips, forehead, chin, jaw
// -----------------------------------------------------------------------------

// LipLength is the corner-to-corner mouth width.
func (e *Extractor) LipLength(p []r3.Vec) float64 {
	return geometry.Distance(p[e.topo.LipRightEnd], p[e.topo.LipLeftEnd])
}

// UpperLipThickness is the height of the upper lip.
func (e *Extractor) UpperLipThickness(p []r3.Vec) float64 {
	return geometry.Distance(p[e.topo.TopLipTop], p[e.topo.TopLipBottom])
}

// LowerLipThickness is the height of the lower lip.
func (e *Extractor) LowerLipThickness(p []r3.Vec) float64 {
	return geometry.Distance(p[e.topo.BottomLipTop], p[e.topo.BottomLipBottom])
}

// ForeheadLength is the combined norm between the forehead start and end
// landmark arrays.
func (e *Extractor) ForeheadLength(p []r3.Vec) float64 {
	return geometry.FrobeniusDistance(geometry.Gather(p, e.topo.ForeheadStart), geometry.Gather(p, e.topo.ForeheadEnd))
}

// ChinLength is the distance from the bottom of the lower lip to the chin.
func (e *Extractor) ChinLength(p []r3.Vec) float64 {
	return geometry.Distance(p[e.topo.BottomLipBottom], p[e.topo.ChinEnd])
}

// Jaw sums, over both sides, the distance of the jaw landmark sum from the
// chin-to-temple line.
func (e *Extractor) Jaw(p []r3.Vec) float64 {
	chin := p[e.topo.ChinEnd]
	return e.eachJaw(func(j topology.JawSide) float64 {
		jaw := geometry.Sum(p[j.Jaw[0]], p[j.Jaw[1]], p[j.Jaw[2]])
		return geometry.PointLineDistance(jaw, chin, p[j.Temple])
	})
}

// JawPosition sums, over both sides, the depth of the chin relative to the
// first jaw landmark.
func (e *Extractor) JawPosition(p []r3.Vec) float64 {
	chin := p[e.topo.ChinEnd]
	return e.eachJaw(func(j topology.JawSide) float64 {
		return chin.Z - p[j.Jaw[0]].Z
	})
}

func (e *Extractor) eachJaw(f func(topology.JawSide) float64) float64 {
	return f(e.topo.RightJaw) + f(e.topo.LeftJaw)
}
