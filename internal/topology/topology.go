// Package topology describes the fixed landmark layout of a face mesh.
//
// Every feature computed by the extractor addresses landmarks by anatomical
// role through a Topology value. The default layout is the 468-point
// MediaPipe face mesh; a JSON override can be loaded once at startup for
// meshes that number their vertices differently.
package topology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MediaPipePointCount is the number of landmarks in the MediaPipe face mesh.
const MediaPipePointCount = 468

// Eye holds the four corner landmarks of one eye.
type Eye struct {
	Front  int `json:"front"`  // inner corner (towards the nose)
	Back   int `json:"back"`   // outer corner
	Top    int `json:"top"`    // upper lid
	Bottom int `json:"bottom"` // lower lid
}

// Brow holds three landmark pairs along one eyebrow. Each pair straddles the
// brow from top to bottom edge.
type Brow struct {
	Start [2]int `json:"start"`
	Arch  [2]int `json:"arch"`
	End   [2]int `json:"end"`
}

// JawSide holds the jaw-line landmarks and temple of one side of the face.
type JawSide struct {
	Jaw    [3]int `json:"jaw"`
	Temple int    `json:"temple"`
}

// Topology maps anatomical roles to landmark indices. A Topology is built
// once and treated as read-only afterwards.
type Topology struct {
	PointCount int `json:"point_count"`

	RightEye Eye `json:"right_eye"`
	LeftEye  Eye `json:"left_eye"`

	RightBrow Brow `json:"right_brow"`
	LeftBrow  Brow `json:"left_brow"`

	// Lip outlines. The two lists share their corner landmarks.
	TopLip          []int `json:"top_lip"`
	BottomLip       []int `json:"bottom_lip"`
	TopLipTop       int   `json:"top_lip_top"`
	TopLipBottom    int   `json:"top_lip_bottom"`
	BottomLipTop    int   `json:"bottom_lip_top"`
	BottomLipBottom int   `json:"bottom_lip_bottom"`
	LipRightEnd     int   `json:"lip_right_end"`
	LipLeftEnd      int   `json:"lip_left_end"`

	// Nose bridge runs from between the eyes to the tip; the side arrays
	// are parallel to it.
	NoseBridge      []int `json:"nose_bridge"`
	NoseBridgeRight []int `json:"nose_bridge_right"`
	NoseBridgeLeft  []int `json:"nose_bridge_left"`
	NoseRight       int   `json:"nose_right"`
	NoseLeft        int   `json:"nose_left"`
	NoseStart       int   `json:"nose_start"`
	NoseEnd         int   `json:"nose_end"`

	ForeheadStart []int `json:"forehead_start"`
	ForeheadEnd   []int `json:"forehead_end"`

	ChinEnd int `json:"chin_end"`

	RightJaw JawSide `json:"right_jaw"`
	LeftJaw  JawSide `json:"left_jaw"`
}

// MediaPipe returns the landmark layout of the MediaPipe 468-point face
// mesh. Each call returns a fresh copy.
func MediaPipe() Topology {
	return Topology{
		PointCount: MediaPipePointCount,

		RightEye: Eye{Front: 133, Back: 33, Top: 159, Bottom: 145},
		LeftEye:  Eye{Front: 362, Back: 263, Top: 386, Bottom: 374},

		RightBrow: Brow{Start: [2]int{107, 55}, Arch: [2]int{105, 52}, End: [2]int{70, 46}},
		LeftBrow:  Brow{Start: [2]int{336, 285}, Arch: [2]int{334, 282}, End: [2]int{300, 276}},

		TopLip: []int{
			61, 78, 185, 191, 40,
			80, 39, 81, 37, 82,
			0, 13, 267, 312, 269,
			311, 270, 310, 409, 415,
			291, 308,
		},
		BottomLip: []int{
			61, 146, 91, 181, 84,
			17, 314, 405, 321, 375,
			291, 308, 324, 318, 402,
			317, 14, 87, 178, 88,
			95, 78,
		},
		TopLipTop:       0,
		TopLipBottom:    13,
		BottomLipTop:    14,
		BottomLipBottom: 17,
		LipRightEnd:     61,
		LipLeftEnd:      291,

		NoseBridge:      []int{168, 6, 197, 195, 5, 4, 1, 19, 94},
		NoseBridgeRight: []int{193, 122, 196, 3, 51, 45, 44, 125, 141},
		NoseBridgeLeft:  []int{417, 351, 419, 248, 281, 275, 274, 354, 370},
		NoseRight:       64,
		NoseLeft:        294,
		NoseStart:       168,
		NoseEnd:         94,

		ForeheadStart: []int{109, 10, 338},
		ForeheadEnd:   []int{107, 9, 136},

		ChinEnd: 152,

		RightJaw: JawSide{Jaw: [3]int{132, 58, 172}, Temple: 127},
		LeftJaw:  JawSide{Jaw: [3]int{361, 288, 397}, Temple: 356},
	}
}

// LipIndices returns the top lip outline followed by the bottom lip outline.
// Shared landmarks appear once per list.
func (t Topology) LipIndices() []int {
	out := make([]int, 0, len(t.TopLip)+len(t.BottomLip))
	out = append(out, t.TopLip...)
	return append(out, t.BottomLip...)
}

// NoseTip is the last landmark of the nose bridge.
func (t Topology) NoseTip() int {
	return t.NoseBridge[len(t.NoseBridge)-1]
}

// Validate checks that every index addresses a landmark and that parallel
// index arrays have matching lengths.
func (t Topology) Validate() error {
	if t.PointCount <= 0 {
		return fmt.Errorf("point_count must be positive, got %d", t.PointCount)
	}
	if len(t.NoseBridge) == 0 {
		return fmt.Errorf("nose_bridge must not be empty")
	}
	if len(t.NoseBridgeRight) != len(t.NoseBridge) || len(t.NoseBridgeLeft) != len(t.NoseBridge) {
		return fmt.Errorf("nose bridge arrays must have equal length: bridge=%d right=%d left=%d",
			len(t.NoseBridge), len(t.NoseBridgeRight), len(t.NoseBridgeLeft))
	}
	if len(t.ForeheadStart) == 0 || len(t.ForeheadStart) != len(t.ForeheadEnd) {
		return fmt.Errorf("forehead arrays must be non-empty and of equal length: start=%d end=%d",
			len(t.ForeheadStart), len(t.ForeheadEnd))
	}
	if len(t.TopLip) == 0 || len(t.BottomLip) == 0 {
		return fmt.Errorf("lip outlines must not be empty")
	}
	for name, idx := range t.namedIndices() {
		for _, i := range idx {
			if i < 0 || i >= t.PointCount {
				return fmt.Errorf("%s index %d out of range [0, %d)", name, i, t.PointCount)
			}
		}
	}
	return nil
}

func (t Topology) namedIndices() map[string][]int {
	eye := func(e Eye) []int { return []int{e.Front, e.Back, e.Top, e.Bottom} }
	brow := func(b Brow) []int { return []int{b.Start[0], b.Start[1], b.Arch[0], b.Arch[1], b.End[0], b.End[1]} }
	jaw := func(j JawSide) []int { return []int{j.Jaw[0], j.Jaw[1], j.Jaw[2], j.Temple} }

	return map[string][]int{
		"right_eye":         eye(t.RightEye),
		"left_eye":          eye(t.LeftEye),
		"right_brow":        brow(t.RightBrow),
		"left_brow":         brow(t.LeftBrow),
		"top_lip":           t.TopLip,
		"bottom_lip":        t.BottomLip,
		"lip":               {t.TopLipTop, t.TopLipBottom, t.BottomLipTop, t.BottomLipBottom, t.LipRightEnd, t.LipLeftEnd},
		"nose_bridge":       t.NoseBridge,
		"nose_bridge_right": t.NoseBridgeRight,
		"nose_bridge_left":  t.NoseBridgeLeft,
		"nose":              {t.NoseRight, t.NoseLeft, t.NoseStart, t.NoseEnd},
		"forehead_start":    t.ForeheadStart,
		"forehead_end":      t.ForeheadEnd,
		"chin_end":          {t.ChinEnd},
		"right_jaw":         jaw(t.RightJaw),
		"left_jaw":          jaw(t.LeftJaw),
	}
}

// Load reads a topology override from a JSON file. Fields omitted from the
// file keep their MediaPipe values, so partial overrides are safe.
func Load(path string) (Topology, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Topology{}, fmt.Errorf("topology file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return Topology{}, fmt.Errorf("failed to stat topology file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return Topology{}, fmt.Errorf("topology file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Topology{}, fmt.Errorf("failed to read topology file: %w", err)
	}

	t := MediaPipe()
	if err := json.Unmarshal(data, &t); err != nil {
		return Topology{}, fmt.Errorf("failed to parse topology JSON: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Topology{}, fmt.Errorf("invalid topology: %w", err)
	}
	return t, nil
}
