// Package featurestore aggregates per-sample feature mappings into one
// column-oriented store that the explorer reads.
//
// Two on-disk forms exist: a flat JSON object (one array per feature, plus
// fileNames) and a SQLite database that keeps every gather run.
package featurestore

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/banshee-data/faceon/internal/features"
	"github.com/banshee-data/faceon/internal/fsutil"
	"github.com/banshee-data/faceon/internal/monitoring"
)

// FileNamesKey is the store key holding the source file of each row.
const FileNamesKey = "fileNames"

// ErrLengthMismatch is returned when a feature column is not parallel to FileNames.
var ErrLengthMismatch = errors.New("featurestore: column length does not match file names")

// Store holds one row per sample. Every slice in Values and Colors is
// parallel to FileNames.
type Store struct {
	FileNames []string
	Values    map[string][]float64
	Colors    map[string][]features.Color
}

// New returns an empty store.
func New() *Store {
	return &Store{
		Values: make(map[string][]float64),
		Colors: make(map[string][]features.Color),
	}
}

// Len returns the number of rows.
func (s *Store) Len() int {
	return len(s.FileNames)
}

// Add appends one sample.
func (s *Store) Add(fileName string, f features.FaceFeatures) {
	s.FileNames = append(s.FileNames, fileName)
	for name, v := range f.Scalars() {
		s.Values[name] = append(s.Values[name], v)
	}
	for name, c := range f.Colors() {
		s.Colors[name] = append(s.Colors[name], c)
	}
}

// FeatureNames returns the scalar columns present in s: known features in
// canonical order first, then any extra columns sorted by name.
func (s *Store) FeatureNames() []string {
	known := make(map[string]bool)
	var out []string
	for _, n := range features.ScalarNames() {
		known[n] = true
		if _, ok := s.Values[n]; ok {
			out = append(out, n)
		}
	}
	var extra []string
	for n := range s.Values {
		if !known[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Validate checks that every column is parallel to FileNames.
func (s *Store) Validate() error {
	for name, v := range s.Values {
		if len(v) != len(s.FileNames) {
			return fmt.Errorf("%w: %s has %d values, %d file names", ErrLengthMismatch, name, len(v), len(s.FileNames))
		}
	}
	for name, c := range s.Colors {
		if len(c) != len(s.FileNames) {
			return fmt.Errorf("%w: %s has %d colours, %d file names", ErrLengthMismatch, name, len(c), len(s.FileNames))
		}
	}
	return nil
}

// Gather reads every .json feature mapping in dir, in lexical order, into a
// new store. A mapping that cannot be read or decoded fails the gather.
func Gather(fsys fsutil.FileSystem, dir string) (*Store, error) {
	names, err := fsys.ListFiles(dir, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings in %s: %w", dir, err)
	}

	s := New()
	for _, name := range names {
		data, err := fsys.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read mapping %s: %w", name, err)
		}
		f, err := features.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("mapping %s: %w", name, err)
		}
		s.Add(name, f)
	}

	monitoring.Logf("[gather] %d mappings from %s", s.Len(), dir)
	return s, nil
}
