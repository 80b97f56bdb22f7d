// Command face-gather aggregates feature mappings into a single store for
// the explorer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/banshee-data/faceon/internal/config"
	"github.com/banshee-data/faceon/internal/featurestore"
	"github.com/banshee-data/faceon/internal/fsutil"
	"github.com/banshee-data/faceon/internal/version"
)

func main() {
	var configPath string
	var listRuns bool
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "path to pipeline config (JSON)")
	flag.String("features-dir", "features", "directory of feature mappings")
	flag.String("store", "features.json", "output store (.json file or .db SQLite database)")
	flag.BoolVar(&listRuns, "runs", false, "list gather runs recorded in a .db store and exit")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.String("face-gather"))
		return
	}

	cfg, err := config.LoadOrEmpty(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ApplyFlags(flag.CommandLine); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if listRuns {
		if filepath.Ext(cfg.GetStorePath()) != ".db" {
			log.Fatalf("-runs needs a .db store, got %s", cfg.GetStorePath())
		}
		db, err := featurestore.OpenSQLite(cfg.GetStorePath())
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer db.Close()
		runs, err := db.Runs(ctx)
		if err != nil {
			log.Fatalf("list runs: %v", err)
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %5d samples  %s\n", r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.SampleCount, r.Source)
		}
		return
	}

	fsys := fsutil.OSFileSystem{}
	st, err := featurestore.Gather(fsys, cfg.GetFeaturesDir())
	if err != nil {
		log.Fatalf("gather: %v", err)
	}
	if err := featurestore.Save(ctx, fsys, cfg.GetStorePath(), st, cfg.GetFeaturesDir()); err != nil {
		log.Fatalf("save store: %v", err)
	}

	fmt.Printf("gathered %d samples into %s\n", st.Len(), cfg.GetStorePath())
}
