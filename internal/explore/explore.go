// Package explore runs the statistics pass over an aggregated feature store:
// for every scalar feature it normalises the values, picks the most extreme
// samples, copies their images into per-feature folders and renders the
// distribution.
package explore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/faceon/internal/featurestore"
	"github.com/banshee-data/faceon/internal/fsutil"
	"github.com/banshee-data/faceon/internal/monitoring"
	"github.com/banshee-data/faceon/internal/sample"
	"github.com/banshee-data/faceon/internal/stats"
)

// DefaultExtremes is the number of smallest and largest samples exported per feature.
const DefaultExtremes = 50

// Output file names inside each feature folder.
const (
	PlotFile  = "distribution.png"
	ChartFile = "distribution.html"
	MinDir    = "min"
	MaxDir    = "max"
	ImageExt  = ".jpg"
)

// ErrNoImagesDir is returned when the sample image directory does not exist.
var ErrNoImagesDir = errors.New("explore: images directory not found")

// Options configures an Explorer.
type Options struct {
	ImagesDir      string
	ExportDir      string
	Extremes       int
	FilterOutliers bool

	// AfterFeature, when set, is called once a feature's outputs are
	// written. Returning an error stops the run.
	AfterFeature func(FeatureResult) error
}

// FeatureResult describes the outputs of one explored feature.
type FeatureResult struct {
	Name string
	// Rows holds the store rows that survived outlier filtering.
	Rows []int
	// MinRows and MaxRows are store rows of the exported samples, most
	// extreme first.
	MinRows []int
	MaxRows []int
	Summary stats.Summary
	Dir     string
	Chart   string
}

// Explorer exports extremal examples and plots for a feature store.
type Explorer struct {
	fs   fsutil.FileSystem
	opts Options
}

// New returns an Explorer writing through fsys.
func New(fsys fsutil.FileSystem, opts Options) *Explorer {
	if opts.Extremes <= 0 {
		opts.Extremes = DefaultExtremes
	}
	return &Explorer{fs: fsys, opts: opts}
}

// Run explores every scalar feature of st in FeatureNames order. Features
// whose values are all equal are logged and skipped. A feature with fewer
// than twice Extremes values exports half its values on each side. Any
// other error aborts the run.
func (e *Explorer) Run(ctx context.Context, st *featurestore.Store) ([]FeatureResult, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if !e.fs.Exists(e.opts.ImagesDir) {
		return nil, fmt.Errorf("%w: %s", ErrNoImagesDir, e.opts.ImagesDir)
	}
	if err := e.fs.MkdirAll(e.opts.ExportDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", e.opts.ExportDir, err)
	}

	var results []FeatureResult
	for _, name := range st.FeatureNames() {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := e.exploreFeature(st, name)
		if errors.Is(err, stats.ErrConstantSeries) {
			monitoring.Logf("[explore] skipping %s: %v", name, err)
			continue
		}
		if err != nil {
			return results, fmt.Errorf("feature %s: %w", name, err)
		}
		results = append(results, res)

		if e.opts.AfterFeature != nil {
			if err := e.opts.AfterFeature(res); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func (e *Explorer) exploreFeature(st *featurestore.Store, name string) (FeatureResult, error) {
	values := st.Values[name]
	res := FeatureResult{Name: name, Dir: filepath.Join(e.opts.ExportDir, SafeDirName(name))}

	if e.opts.FilterOutliers {
		res.Rows = stats.FilterOutliers(values)
	} else {
		res.Rows = make([]int, len(values))
		for i := range values {
			res.Rows[i] = i
		}
	}
	kept := make([]float64, len(res.Rows))
	for i, row := range res.Rows {
		kept[i] = values[row]
	}
	monitoring.Logf("[explore] %s: %d values (%d kept)", name, len(values), len(kept))

	norm, err := stats.Normalize(kept)
	if err != nil {
		return res, err
	}

	n := e.opts.Extremes
	if 2*n > len(norm) {
		n = len(norm) / 2
		monitoring.Logf("[explore] %s: only %d values, exporting %d of each side", name, len(norm), n)
	}
	minIdx, maxIdx, err := stats.Extremes(norm, n)
	if err != nil {
		return res, err
	}
	res.MinRows = rowsOf(res.Rows, minIdx)
	res.MaxRows = rowsOf(res.Rows, maxIdx)

	if err := e.exportImages(st, filepath.Join(res.Dir, MinDir), res.MinRows); err != nil {
		return res, err
	}
	if err := e.exportImages(st, filepath.Join(res.Dir, MaxDir), res.MaxRows); err != nil {
		return res, err
	}

	res.Summary, err = stats.Summarize(norm)
	if err != nil {
		return res, err
	}

	title := "Normalized " + name
	if err := e.writePlot(filepath.Join(res.Dir, PlotFile), title, norm, res.Summary); err != nil {
		return res, err
	}
	res.Chart = filepath.Join(res.Dir, ChartFile)
	if err := e.writeChart(res.Chart, title, norm, res.Summary); err != nil {
		return res, err
	}
	return res, nil
}

func rowsOf(rows, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

// ImagePath returns the example image of a stored file name: its stem with a
// .jpg extension inside imagesDir.
func ImagePath(imagesDir, fileName string) string {
	return filepath.Join(imagesDir, sample.Stem(fileName)+ImageExt)
}

// SafeDirName makes a directory name from a feature key read from a store.
// Characters other than ASCII letters, digits, dot, underscore and dash
// become a single underscore; leading and trailing dots and underscores are
// trimmed, so a key can never address a parent directory.
func SafeDirName(key string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range key {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_' || !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unnamed"
	}
	return out
}
