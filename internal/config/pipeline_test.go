package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/faceon/internal/cluster"
)

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()

	if cfg.ExtremesCount == nil || *cfg.ExtremesCount != 50 {
		t.Errorf("Expected ExtremesCount 50, got %v", cfg.ExtremesCount)
	}
	if cfg.FilterOutliers == nil || *cfg.FilterOutliers != false {
		t.Errorf("Expected FilterOutliers false, got %v", cfg.FilterOutliers)
	}
	if cfg.GetStorePath() != "features.json" {
		t.Errorf("GetStorePath() = %q, want features.json", cfg.GetStorePath())
	}
	if cfg.GetTopologyPath() != "" {
		t.Errorf("GetTopologyPath() = %q, want empty", cfg.GetTopologyPath())
	}
	if cfg.ClusterParams() != cluster.DefaultParams() {
		t.Errorf("ClusterParams() = %+v, want %+v", cfg.ClusterParams(), cluster.DefaultParams())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadPipelineConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pipeline.json")

	testJSON := `{
  "samples_dir": "/data/npz",
  "store_path": "/data/features.db",
  "extremes_count": 10,
  "filter_outliers": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadPipelineConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetSamplesDir() != "/data/npz" {
		t.Errorf("GetSamplesDir() = %q", cfg.GetSamplesDir())
	}
	if cfg.GetStorePath() != "/data/features.db" {
		t.Errorf("GetStorePath() = %q", cfg.GetStorePath())
	}
	if cfg.GetExtremesCount() != 10 {
		t.Errorf("GetExtremesCount() = %d, want 10", cfg.GetExtremesCount())
	}
	if !cfg.GetFilterOutliers() {
		t.Error("Expected FilterOutliers true")
	}
	// Omitted fields fall back to defaults.
	if cfg.GetFeaturesDir() != "features" {
		t.Errorf("GetFeaturesDir() = %q, want features", cfg.GetFeaturesDir())
	}
}

func TestLoadPipelineConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"wrong extension", "config.yaml", `{}`},
		{"malformed json", "bad.json", `{`},
		{"zero extremes", "zero.json", `{"extremes_count": 0}`},
		{"negative clusters", "clusters.json", `{"skin_clusters": -1}`},
		{"negative tolerance", "tol.json", `{"kmeans_tolerance": -0.5}`},
		{"bad store extension", "store.json", `{"store_path": "features.csv"}`},
		{"bad topology extension", "topo.json", `{"topology_path": "mesh.yaml"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			if _, err := LoadPipelineConfig(path); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadPipelineConfig_MissingFile(t *testing.T) {
	if _, err := LoadPipelineConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadPipelineConfig_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.json")
	data := make([]byte, 1024*1024+1)
	for i := range data {
		data[i] = ' '
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	if _, err := LoadPipelineConfig(path); err == nil {
		t.Error("expected error for oversized file")
	}
}

func TestApplyFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("samples-dir", "samples", "")
	fs.String("store", "", "")
	fs.Int("n", 50, "")
	fs.Bool("filter-outliers", false, "")
	fs.String("unrelated", "", "")
	if err := fs.Parse([]string{"-store", "out.db", "-n", "7", "-filter-outliers", "-unrelated", "x"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg := EmptyPipelineConfig()
	cfg.SamplesDir = ptrString("/from/file")
	if err := cfg.ApplyFlags(fs); err != nil {
		t.Fatalf("ApplyFlags failed: %v", err)
	}

	// Unset flags keep the file value.
	if cfg.GetSamplesDir() != "/from/file" {
		t.Errorf("GetSamplesDir() = %q, want /from/file", cfg.GetSamplesDir())
	}
	if cfg.GetStorePath() != "out.db" {
		t.Errorf("GetStorePath() = %q, want out.db", cfg.GetStorePath())
	}
	if cfg.GetExtremesCount() != 7 {
		t.Errorf("GetExtremesCount() = %d, want 7", cfg.GetExtremesCount())
	}
	if !cfg.GetFilterOutliers() {
		t.Error("Expected FilterOutliers true")
	}
}

func TestApplyFlags_Invalid(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("n", 50, "")
	if err := fs.Parse([]string{"-n", "0"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := EmptyPipelineConfig().ApplyFlags(fs); err == nil {
		t.Error("expected validation error for -n 0")
	}
}

func TestLoadOrEmpty(t *testing.T) {
	cfg, err := LoadOrEmpty("")
	if err != nil {
		t.Fatalf("LoadOrEmpty failed: %v", err)
	}
	if cfg.ExtremesCount != nil {
		t.Error("expected empty config")
	}
}
