// Command face-explore normalises every feature in a store, exports the most
// extreme example images per feature and renders the distributions.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/banshee-data/faceon/internal/config"
	"github.com/banshee-data/faceon/internal/explore"
	"github.com/banshee-data/faceon/internal/featurestore"
	"github.com/banshee-data/faceon/internal/fsutil"
	"github.com/banshee-data/faceon/internal/version"
)

// openBrowser opens the specified URL in the default browser
func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		log.Printf("Unsupported platform: %s", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

func main() {
	var configPath string
	var runID string
	var show bool
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "path to pipeline config (JSON)")
	flag.String("store", "features.json", "feature store (.json file or .db SQLite database)")
	flag.StringVar(&runID, "run", "", "gather run id to explore (.db stores; default newest)")
	flag.String("images-dir", "images", "directory of sample images (<stem>.jpg)")
	flag.String("export-dir", "export", "output root for example folders and plots")
	flag.Int("n", explore.DefaultExtremes, "number of smallest and largest samples to export per feature")
	flag.Bool("filter-outliers", false, "drop values outside the 2nd/98th percentile fences before normalising")
	flag.BoolVar(&show, "show", false, "open each distribution chart in the browser and wait for Enter")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.String("face-explore"))
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

	fsys := fsutil.OSFileSystem{}
	var st *featurestore.Store
	if runID != "" {
		if st, err = featurestore.LoadRun(ctx, cfg.GetStorePath(), runID); err != nil {
			log.Fatalf("load run %s: %v", runID, err)
		}
	} else if st, err = featurestore.Load(ctx, fsys, cfg.GetStorePath()); err != nil {
		log.Fatalf("load store: %v", err)
	}
	log.Printf("[explore] %d samples, %d features", st.Len(), len(st.FeatureNames()))

	opts := explore.Options{
		ImagesDir:      cfg.GetImagesDir(),
		ExportDir:      cfg.GetExportDir(),
		Extremes:       cfg.GetExtremesCount(),
		FilterOutliers: cfg.GetFilterOutliers(),
	}
	if show {
		stdin := bufio.NewReader(os.Stdin)
		opts.AfterFeature = func(r explore.FeatureResult) error {
			abs, err := filepath.Abs(r.Chart)
			if err != nil {
				return err
			}
			openBrowser("file://" + abs)
			fmt.Printf("%s: press Enter for the next feature", r.Name)
			_, err = stdin.ReadString('\n')
			return err
		}
	}

	results, err := explore.New(fsys, opts).Run(ctx, st)
	if err != nil {
		log.Fatalf("explore: %v", err)
	}

	fmt.Printf("explored %d features into %s\n", len(results), opts.ExportDir)
}
