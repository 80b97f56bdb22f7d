// Package sample loads landmark samples produced by the external landmark
// extractor. A sample is a NumPy .npz archive holding two arrays: the
// landmark points (N×3) and the sampled colours (M×3).
//
// Pickled .npy object arrays are not read. Convert them once with
// numpy.savez(out, points=data[0][0], colors=data[1][0]).
package sample

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/faceon/internal/features"
	"github.com/banshee-data/faceon/internal/fsutil"
)

// Ext is the file extension of sample archives.
const Ext = ".npz"

// Array names. numpy.savez without keywords writes arr_0, arr_1.
const (
	PointsKey = "points"
	ColorsKey = "colors"
)

var (
	// ErrMissingArray is returned when an archive lacks the points or colours array.
	ErrMissingArray = errors.New("sample: missing array")
	// ErrShape is returned when an array is not a sequence of 3-vectors.
	ErrShape = errors.New("sample: array is not N×3")
)

// Sample is one decoded landmark sample.
type Sample struct {
	Name   string
	Points []r3.Vec
	Colors []features.Color
}

// Stem returns the name without directory or extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads and decodes the archive at path.
func Load(fsys fsutil.FileSystem, path string) (*Sample, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample %s: %w", path, err)
	}
	return Decode(Stem(path), data)
}

// Decode parses an in-memory .npz archive.
func Decode(name string, data []byte) (*Sample, error) {
	r, err := npz.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", name, err)
	}

	keys := arrayKeys(r.Keys())
	pointsKey, ok := lookup(keys, PointsKey, "arr_0")
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrMissingArray, PointsKey)
	}
	colorsKey, ok := lookup(keys, ColorsKey, "arr_1")
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrMissingArray, ColorsKey)
	}

	pts, err := readTriples(r, pointsKey)
	if err != nil {
		return nil, fmt.Errorf("%s: points: %w", name, err)
	}
	cols, err := readTriples(r, colorsKey)
	if err != nil {
		return nil, fmt.Errorf("%s: colors: %w", name, err)
	}

	s := &Sample{
		Name:   name,
		Points: make([]r3.Vec, pts.RawMatrix().Rows),
		Colors: make([]features.Color, cols.RawMatrix().Rows),
	}
	for i := range s.Points {
		s.Points[i] = r3.Vec{X: pts.At(i, 0), Y: pts.At(i, 1), Z: pts.At(i, 2)}
	}
	for i := range s.Colors {
		s.Colors[i] = features.Color{cols.At(i, 0), cols.At(i, 1), cols.At(i, 2)}
	}
	return s, nil
}

// arrayKeys maps normalised array names (without the .npy suffix) to the raw
// archive keys.
func arrayKeys(raw []string) map[string]string {
	out := make(map[string]string, len(raw))
	for _, k := range raw {
		out[strings.TrimSuffix(k, ".npy")] = k
	}
	return out
}

func lookup(keys map[string]string, names ...string) (string, bool) {
	for _, n := range names {
		if k, ok := keys[n]; ok {
			return k, true
		}
	}
	return "", false
}

// readTriples reads an array of any leading shape whose element count is a
// multiple of three, so both (N,3) and (1,N,3) layouts are accepted.
func readTriples(r *npz.Reader, key string) (*mat.Dense, error) {
	flat, err := readFloats(r, key)
	if err != nil {
		return nil, err
	}
	if len(flat) == 0 || len(flat)%3 != 0 {
		return nil, fmt.Errorf("%w: %d values", ErrShape, len(flat))
	}
	return mat.NewDense(len(flat)/3, 3, flat), nil
}

// readFloats reads a numeric array as float64. Landmark arrays are usually
// float32 or float64; colour arrays are often uint8.
func readFloats(r *npz.Reader, key string) ([]float64, error) {
	var f64 []float64
	err := r.Read(key, &f64)
	if err == nil {
		return f64, nil
	}

	var f32 []float32
	if r.Read(key, &f32) == nil {
		out := make([]float64, len(f32))
		for i, v := range f32 {
			out[i] = float64(v)
		}
		return out, nil
	}

	var u8 []uint8
	if r.Read(key, &u8) == nil {
		out := make([]float64, len(u8))
		for i, v := range u8 {
			out[i] = float64(v)
		}
		return out, nil
	}

	return nil, fmt.Errorf("failed to read array %s: %w", key, err)
}

// Encode writes s as an .npz archive with named points and colors arrays.
func Encode(w io.Writer, s *Sample) error {
	if len(s.Points) == 0 || len(s.Colors) == 0 {
		return fmt.Errorf("%w: empty sample", ErrShape)
	}
	pts := mat.NewDense(len(s.Points), 3, nil)
	for i, p := range s.Points {
		pts.SetRow(i, []float64{p.X, p.Y, p.Z})
	}
	cols := mat.NewDense(len(s.Colors), 3, nil)
	for i, c := range s.Colors {
		cols.SetRow(i, c[:])
	}

	zw := npz.NewWriter(w)
	if err := zw.Write(PointsKey, pts); err != nil {
		return fmt.Errorf("failed to write points: %w", err)
	}
	if err := zw.Write(ColorsKey, cols); err != nil {
		return fmt.Errorf("failed to write colors: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}

// Names returns the sorted archive keys of data, without the .npy suffix.
// Used by diagnostics when an archive is rejected.
func Names(data []byte) ([]string, error) {
	r, err := npz.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	keys := arrayKeys(r.Keys())
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
