// Package extract runs the feature extractor over a directory of landmark
// samples and writes one feature mapping per sample.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/faceon/internal/features"
	"github.com/banshee-data/faceon/internal/fsutil"
	"github.com/banshee-data/faceon/internal/monitoring"
	"github.com/banshee-data/faceon/internal/sample"
	"github.com/banshee-data/faceon/internal/timeutil"
)

// MappingExt is the extension of written feature mappings.
const MappingExt = ".json"

// Failure records a sample that produced no mapping.
type Failure struct {
	Name string
	Err  error
}

// Report summarises one batch run.
type Report struct {
	Processed int
	Written   int
	Failures  []Failure
}

// Runner extracts features for every sample in a directory.
type Runner struct {
	fs        fsutil.FileSystem
	extractor *features.Extractor
	clock     timeutil.Clock
}

// NewRunner returns a Runner reading and writing through fsys.
func NewRunner(fsys fsutil.FileSystem, extractor *features.Extractor) *Runner {
	return &Runner{fs: fsys, extractor: extractor, clock: timeutil.RealClock{}}
}

// Run processes every .npz archive in samplesDir in lexical order and writes
// <stem>.json into featuresDir, creating it if needed. Per-sample failures
// are logged and collected in the report; only directory-level problems and
// cancellation abort the run.
func (r *Runner) Run(ctx context.Context, samplesDir, featuresDir string) (Report, error) {
	var rep Report
	start := r.clock.Now()

	names, err := r.fs.ListFiles(samplesDir, sample.Ext)
	if err != nil {
		return rep, fmt.Errorf("failed to list samples in %s: %w", samplesDir, err)
	}
	if err := r.fs.MkdirAll(featuresDir, 0755); err != nil {
		return rep, fmt.Errorf("failed to create output directory %s: %w", featuresDir, err)
	}
	monitoring.Logf("[extract] %d samples in %s", len(names), samplesDir)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Processed++

		stem := sample.Stem(name)
		if err := r.processOne(filepath.Join(samplesDir, name), filepath.Join(featuresDir, stem+MappingExt)); err != nil {
			monitoring.Logf("[extract] skipping %s: %v", name, err)
			rep.Failures = append(rep.Failures, Failure{Name: name, Err: err})
			continue
		}
		rep.Written++
	}

	monitoring.Logf("[extract] wrote %d of %d mappings to %s in %s", rep.Written, rep.Processed, featuresDir, r.clock.Since(start))
	return rep, nil
}

func (r *Runner) processOne(inPath, outPath string) error {
	data, err := r.fs.ReadFile(inPath)
	if err != nil {
		return err
	}
	s, err := sample.Decode(sample.Stem(inPath), data)
	if err != nil {
		if errors.Is(err, sample.ErrMissingArray) {
			if keys, kerr := sample.Names(data); kerr == nil {
				monitoring.Diagf("%s holds arrays %v", inPath, keys)
			}
		}
		return err
	}

	f, err := r.extractor.Extract(s.Points, s.Colors)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", s.Name, err)
	}
	if monitoring.DiagEnabled() {
		printFeatures(s.Name, f)
	}

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return err
	}
	if err := r.fs.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}

func printFeatures(name string, f features.FaceFeatures) {
	monitoring.Diagf("%s", name)
	names := features.ScalarNames()
	for i, v := range f.ScalarValues() {
		monitoring.Diagf("  %s: %v", names[i], v)
	}
	for _, n := range features.ColorNames() {
		monitoring.Diagf("  %s: %v", n, f.Colors()[n])
	}
}
