// Package config loads the JSON configuration shared by the pipeline tools.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/faceon/internal/cluster"
)

// PipelineConfig holds the paths and parameters shared by the pipeline tools.
// Every field is optional; the Get* methods supply defaults for omitted ones
// and command-line flags override whatever the file sets.
type PipelineConfig struct {
	// Topology override; empty means the built-in MediaPipe layout.
	TopologyPath *string `json:"topology_path,omitempty"`

	// Extraction
	SamplesDir  *string `json:"samples_dir,omitempty"`
	FeaturesDir *string `json:"features_dir,omitempty"`

	// Aggregation
	StorePath *string `json:"store_path,omitempty"` // .json or .db

	// Exploration
	ImagesDir      *string `json:"images_dir,omitempty"`
	ExportDir      *string `json:"export_dir,omitempty"`
	ExtremesCount  *int    `json:"extremes_count,omitempty"`
	FilterOutliers *bool   `json:"filter_outliers,omitempty"`

	// Skin colour clustering
	SkinClusters     *int     `json:"skin_clusters,omitempty"`
	KMeansIterations *int     `json:"kmeans_iterations,omitempty"`
	KMeansTolerance  *float64 `json:"kmeans_tolerance,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// EmptyPipelineConfig returns a PipelineConfig with all fields set to nil.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// DefaultPipelineConfig returns a PipelineConfig with every field populated
// from the defaults.
func DefaultPipelineConfig() *PipelineConfig {
	c := EmptyPipelineConfig()
	return &PipelineConfig{
		TopologyPath:     ptrString(c.GetTopologyPath()),
		SamplesDir:       ptrString(c.GetSamplesDir()),
		FeaturesDir:      ptrString(c.GetFeaturesDir()),
		StorePath:        ptrString(c.GetStorePath()),
		ImagesDir:        ptrString(c.GetImagesDir()),
		ExportDir:        ptrString(c.GetExportDir()),
		ExtremesCount:    ptrInt(c.GetExtremesCount()),
		FilterOutliers:   ptrBool(c.GetFilterOutliers()),
		SkinClusters:     ptrInt(c.GetSkinClusters()),
		KMeansIterations: ptrInt(c.GetKMeansIterations()),
		KMeansTolerance:  ptrFloat64(c.GetKMeansTolerance()),
	}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *PipelineConfig) Validate() error {
	if c.ExtremesCount != nil && *c.ExtremesCount <= 0 {
		return fmt.Errorf("extremes_count must be positive, got %d", *c.ExtremesCount)
	}

	if c.SkinClusters != nil && *c.SkinClusters <= 0 {
		return fmt.Errorf("skin_clusters must be positive, got %d", *c.SkinClusters)
	}

	if c.KMeansIterations != nil && *c.KMeansIterations <= 0 {
		return fmt.Errorf("kmeans_iterations must be positive, got %d", *c.KMeansIterations)
	}

	if c.KMeansTolerance != nil && *c.KMeansTolerance < 0 {
		return fmt.Errorf("kmeans_tolerance must be non-negative, got %f", *c.KMeansTolerance)
	}

	if c.StorePath != nil && *c.StorePath != "" {
		switch ext := filepath.Ext(*c.StorePath); ext {
		case ".json", ".db":
		default:
			return fmt.Errorf("store_path must end in .json or .db, got %q", ext)
		}
	}

	if c.TopologyPath != nil && *c.TopologyPath != "" && filepath.Ext(*c.TopologyPath) != ".json" {
		return fmt.Errorf("topology_path must be a .json file, got %q", *c.TopologyPath)
	}

	return nil
}

// GetTopologyPath returns the topology override path, empty for the built-in layout.
func (c *PipelineConfig) GetTopologyPath() string {
	if c.TopologyPath == nil {
		return ""
	}
	return *c.TopologyPath
}

// GetSamplesDir returns the samples_dir value or the default.
func (c *PipelineConfig) GetSamplesDir() string {
	if c.SamplesDir == nil || *c.SamplesDir == "" {
		return "samples"
	}
	return *c.SamplesDir
}

// GetFeaturesDir returns the features_dir value or the default.
func (c *PipelineConfig) GetFeaturesDir() string {
	if c.FeaturesDir == nil || *c.FeaturesDir == "" {
		return "features"
	}
	return *c.FeaturesDir
}

// GetStorePath returns the store_path value or the default.
func (c *PipelineConfig) GetStorePath() string {
	if c.StorePath == nil || *c.StorePath == "" {
		return "features.json"
	}
	return *c.StorePath
}

// GetImagesDir returns the images_dir value or the default.
func (c *PipelineConfig) GetImagesDir() string {
	if c.ImagesDir == nil || *c.ImagesDir == "" {
		return "images"
	}
	return *c.ImagesDir
}

// GetExportDir returns the export_dir value or the default.
func (c *PipelineConfig) GetExportDir() string {
	if c.ExportDir == nil || *c.ExportDir == "" {
		return "export"
	}
	return *c.ExportDir
}

// GetExtremesCount returns the extremes_count value or the default.
func (c *PipelineConfig) GetExtremesCount() int {
	if c.ExtremesCount == nil {
		return 50
	}
	return *c.ExtremesCount
}

// GetFilterOutliers returns the filter_outliers value or the default.
func (c *PipelineConfig) GetFilterOutliers() bool {
	if c.FilterOutliers == nil {
		return false
	}
	return *c.FilterOutliers
}

// GetSkinClusters returns the skin_clusters value or the default.
func (c *PipelineConfig) GetSkinClusters() int {
	if c.SkinClusters == nil {
		return cluster.DefaultParams().K
	}
	return *c.SkinClusters
}

// GetKMeansIterations returns the kmeans_iterations value or the default.
func (c *PipelineConfig) GetKMeansIterations() int {
	if c.KMeansIterations == nil {
		return cluster.DefaultParams().MaxIterations
	}
	return *c.KMeansIterations
}

// GetKMeansTolerance returns the kmeans_tolerance value or the default.
func (c *PipelineConfig) GetKMeansTolerance() float64 {
	if c.KMeansTolerance == nil {
		return cluster.DefaultParams().Tolerance
	}
	return *c.KMeansTolerance
}

// ClusterParams returns the skin colour clustering parameters.
func (c *PipelineConfig) ClusterParams() cluster.Params {
	return cluster.Params{
		K:             c.GetSkinClusters(),
		MaxIterations: c.GetKMeansIterations(),
		Tolerance:     c.GetKMeansTolerance(),
	}
}

// LoadOrEmpty loads the config at path, or returns an empty config when path
// is empty.
func LoadOrEmpty(path string) (*PipelineConfig, error) {
	if path == "" {
		return EmptyPipelineConfig(), nil
	}
	return LoadPipelineConfig(path)
}

// ApplyFlags copies the flags that were set on the command line into c.
// Flag names match the JSON field names with dashes, e.g. -samples-dir.
func (c *PipelineConfig) ApplyFlags(fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "topology":
			c.TopologyPath = ptrString(v)
		case "samples-dir":
			c.SamplesDir = ptrString(v)
		case "features-dir":
			c.FeaturesDir = ptrString(v)
		case "store":
			c.StorePath = ptrString(v)
		case "images-dir":
			c.ImagesDir = ptrString(v)
		case "export-dir":
			c.ExportDir = ptrString(v)
		case "n":
			var n int
			n, err = strconv.Atoi(v)
			c.ExtremesCount = ptrInt(n)
		case "filter-outliers":
			var b bool
			b, err = strconv.ParseBool(v)
			c.FilterOutliers = ptrBool(b)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid flag value: %w", err)
	}
	return c.Validate()
}
