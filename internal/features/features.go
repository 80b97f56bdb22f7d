// Package features computes named facial measurements from a landmark point
// set and its sampled colours.
package features

import (
	"encoding/json"
	"fmt"
	"io"
)

// Color is an RGB (or similar 3-channel) colour.
type Color [3]float64

// FaceFeatures is the feature mapping of a single face sample. Field tags
// are the canonical feature names used on disk and in the feature store.
type FaceFeatures struct {
	EyeBetween float64 `json:"eyeBetween"`
	EyeFront   float64 `json:"eyeFront"`
	EyeBack    float64 `json:"eyeBack"`
	EyeAbove   float64 `json:"eyeAbove"`
	EyeBelow   float64 `json:"eyeBelow"`
	EyeDegree  float64 `json:"eyeDegree"`

	BrowBetween   float64 `json:"browBetween"`
	BrowFront     float64 `json:"browFront"`
	BrowBack      float64 `json:"browBack"`
	BrowDegree    float64 `json:"browDegree"`
	BrowThickness float64 `json:"browThickness"`
	BrowShape     float64 `json:"browShape"`

	NoseLength          float64 `json:"noseLength"`
	NoseBridgeThickness float64 `json:"noseBridgeThickness"`
	NoseAlar            float64 `json:"noseAlar"`
	Philtrum            float64 `json:"philtrum"`

	LipLength         float64 `json:"lipLength"`
	UpperLipThickness float64 `json:"upperLipThickness"`
	LowerLipThickness float64 `json:"lowerLipThickness"`

	ForeheadLength float64 `json:"foreheadLength"`
	ChinLength     float64 `json:"chinLength"`

	Jaw         float64 `json:"jaw"`
	JawPosition float64 `json:"jawPosition"`

	SkinColor Color `json:"skinColor"`
	LipColor  Color `json:"lipColor"`
}

// Colour feature names. These are never part of the scalar vector.
const (
	SkinColorName = "skinColor"
	LipColorName  = "lipColor"
)

// ScalarNames returns the scalar feature names in canonical order. The order
// matches ScalarValues().
func ScalarNames() []string {
	return []string{
		"eyeBetween",
		"eyeFront",
		"eyeBack",
		"eyeAbove",
		"eyeBelow",
		"eyeDegree",
		"browBetween",
		"browFront",
		"browBack",
		"browDegree",
		"browThickness",
		"browShape",
		"noseLength",
		"noseBridgeThickness",
		"noseAlar",
		"philtrum",
		"lipLength",
		"upperLipThickness",
		"lowerLipThickness",
		"foreheadLength",
		"chinLength",
		"jaw",
		"jawPosition",
	}
}

// ColorNames returns the colour feature names.
func ColorNames() []string {
	return []string{SkinColorName, LipColorName}
}

// ScalarValues converts the scalar features to a flat slice in canonical
// order.
func (f FaceFeatures) ScalarValues() []float64 {
	return []float64{
		f.EyeBetween,
		f.EyeFront,
		f.EyeBack,
		f.EyeAbove,
		f.EyeBelow,
		f.EyeDegree,
		f.BrowBetween,
		f.BrowFront,
		f.BrowBack,
		f.BrowDegree,
		f.BrowThickness,
		f.BrowShape,
		f.NoseLength,
		f.NoseBridgeThickness,
		f.NoseAlar,
		f.Philtrum,
		f.LipLength,
		f.UpperLipThickness,
		f.LowerLipThickness,
		f.ForeheadLength,
		f.ChinLength,
		f.Jaw,
		f.JawPosition,
	}
}

// Scalars returns the scalar features keyed by name.
func (f FaceFeatures) Scalars() map[string]float64 {
	names := ScalarNames()
	values := f.ScalarValues()
	out := make(map[string]float64, len(names))
	for i, n := range names {
		out[n] = values[i]
	}
	return out
}

// Colors returns the colour features keyed by name.
func (f FaceFeatures) Colors() map[string]Color {
	return map[string]Color{
		SkinColorName: f.SkinColor,
		LipColorName:  f.LipColor,
	}
}

// Encode writes f as an indented JSON object.
func (f FaceFeatures) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}
	return nil
}

// Decode reads a feature mapping previously written by Encode.
func Decode(data []byte) (FaceFeatures, error) {
	var f FaceFeatures
	if err := json.Unmarshal(data, &f); err != nil {
		return FaceFeatures{}, fmt.Errorf("failed to decode features: %w", err)
	}
	return f, nil
}
