// Command face-extract computes a feature mapping for every landmark sample
// in a directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/banshee-data/faceon/internal/config"
	"github.com/banshee-data/faceon/internal/extract"
	"github.com/banshee-data/faceon/internal/features"
	"github.com/banshee-data/faceon/internal/fsutil"
	"github.com/banshee-data/faceon/internal/monitoring"
	"github.com/banshee-data/faceon/internal/topology"
	"github.com/banshee-data/faceon/internal/version"
)

func main() {
	var configPath string
	var printFeatures bool
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "path to pipeline config (JSON)")
	flag.String("samples-dir", "samples", "directory of .npz landmark samples")
	flag.String("features-dir", "features", "output directory for feature mappings")
	flag.String("topology", "", "landmark topology override (JSON); default MediaPipe 468")
	flag.BoolVar(&printFeatures, "print", false, "log every feature value of each sample")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.String("face-extract"))
		return
	}

	cfg, err := config.LoadOrEmpty(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ApplyFlags(flag.CommandLine); err != nil {
		log.Fatalf("config: %v", err)
	}

	topo := topology.MediaPipe()
	if p := cfg.GetTopologyPath(); p != "" {
		if topo, err = topology.Load(p); err != nil {
			log.Fatalf("load topology: %v", err)
		}
	}

	extractor, err := features.NewExtractor(topo)
	if err != nil {
		log.Fatalf("create extractor: %v", err)
	}
	extractor.SetClusterParams(cfg.ClusterParams())

	if printFeatures {
		monitoring.SetDiagWriter(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := extract.NewRunner(fsutil.OSFileSystem{}, extractor)
	report, err := runner.Run(ctx, cfg.GetSamplesDir(), cfg.GetFeaturesDir())
	if err != nil {
		log.Fatalf("extract: %v", err)
	}

	fmt.Printf("processed %d samples: %d written, %d failed\n", report.Processed, report.Written, len(report.Failures))
}
