package featurestore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/banshee-data/faceon/internal/features"
	"github.com/banshee-data/faceon/internal/fsutil"
	"github.com/banshee-data/faceon/internal/monitoring"
)

// legacySkipKeys are keys older stores carry that are not feature columns.
var legacySkipKeys = map[string]bool{
	"symmetry": true,
}

// SaveJSON writes s as one flat JSON object: fileNames, then one array per
// scalar and colour feature.
func SaveJSON(fsys fsutil.FileSystem, path string, s *Store) error {
	if err := s.Validate(); err != nil {
		return err
	}

	obj := make(map[string]any, len(s.Values)+len(s.Colors)+1)
	fileNames := s.FileNames
	if fileNames == nil {
		fileNames = []string{}
	}
	obj[FileNamesKey] = fileNames
	for name, v := range s.Values {
		obj[name] = v
	}
	for name, c := range s.Colors {
		obj[name] = c
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write store %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a store written by SaveJSON or by the older tooling.
// Non-numeric keys other than fileNames and the colour features are ignored.
func LoadJSON(fsys fsutil.FileSystem, path string) (*Store, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read store %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse store %s: %w", path, err)
	}

	s := New()
	if fn, ok := raw[FileNamesKey]; ok {
		if err := json.Unmarshal(fn, &s.FileNames); err != nil {
			return nil, fmt.Errorf("store %s: %s: %w", path, FileNamesKey, err)
		}
	}

	colorKeys := make(map[string]bool)
	for _, name := range features.ColorNames() {
		colorKeys[name] = true
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch {
		case key == FileNamesKey || legacySkipKeys[key]:
			continue
		case colorKeys[key]:
			var c []features.Color
			if err := json.Unmarshal(raw[key], &c); err != nil {
				return nil, fmt.Errorf("store %s: %s: %w", path, key, err)
			}
			s.Colors[key] = c
		default:
			var v []float64
			if err := json.Unmarshal(raw[key], &v); err != nil {
				monitoring.Logf("[featurestore] ignoring non-numeric key %q in %s", key, path)
				continue
			}
			s.Values[key] = v
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("store %s: %w", path, err)
	}
	return s, nil
}
