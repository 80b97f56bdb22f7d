package explore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/faceon/internal/featurestore"
	"github.com/banshee-data/faceon/internal/fsutil"
	"github.com/banshee-data/faceon/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

// fixture builds a store of 101 samples: "spread" holds 1..100 plus one
// far outlier, "flat" is constant. Every sample has an image.
func fixture(t *testing.T) (*fsutil.MemoryFileSystem, *featurestore.Store) {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	st := featurestore.New()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 120, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))

	for i := 0; i < 101; i++ {
		name := fmt.Sprintf("face%03d.json", i)
		st.FileNames = append(st.FileNames, name)
		v := float64(i + 1)
		if i == 100 {
			v = 1e6
		}
		st.Values["spread"] = append(st.Values["spread"], v)
		st.Values["flat"] = append(st.Values["flat"], 3)
		require.NoError(t, mfs.WriteFile(ImagePath("/images", name), buf.Bytes(), 0644))
	}
	return mfs, st
}

func TestRun_ExportsExtremes(t *testing.T) {
	t.Parallel()
	mfs, st := fixture(t)

	var seen []string
	ex := New(mfs, Options{
		ImagesDir: "/images",
		ExportDir: "/export",
		Extremes:  2,
		AfterFeature: func(r FeatureResult) error {
			seen = append(seen, r.Name)
			return nil
		},
	})
	results, err := ex.Run(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, []string{"spread"}, seen)
	res := results[0]
	assert.Equal(t, []int{0, 1}, res.MinRows)
	assert.Equal(t, []int{100, 99}, res.MaxRows)
	assert.Len(t, res.Rows, 101)
	assert.Equal(t, 1.0, res.Summary.Max)
	assert.Equal(t, 0.0, res.Summary.Min)

	assert.Equal(t, []string{
		"/export/spread/distribution.html",
		"/export/spread/distribution.png",
		"/export/spread/max/0.jpg",
		"/export/spread/max/1.jpg",
		"/export/spread/min/0.jpg",
		"/export/spread/min/1.jpg",
	}, mfs.Paths("/export"))
	assert.False(t, mfs.Exists("/export/flat"))

	chart, err := mfs.ReadFile(res.Chart)
	require.NoError(t, err)
	assert.Contains(t, string(chart), "Normalized spread Distribution")

	png, err := mfs.ReadFile("/export/spread/distribution.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	out, err := mfs.Open("/export/spread/max/0.jpg")
	require.NoError(t, err)
	defer out.Close()
	decoded, err := imaging.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 4, decoded.Bounds().Dx())
}

func TestRun_FilterOutliers(t *testing.T) {
	t.Parallel()
	mfs, st := fixture(t)

	ex := New(mfs, Options{ImagesDir: "/images", ExportDir: "/export", Extremes: 2, FilterOutliers: true})
	results, err := ex.Run(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, results, 1)
	res := results[0]
	assert.Len(t, res.Rows, 100)
	assert.NotContains(t, res.Rows, 100)
	assert.Equal(t, []int{99, 98}, res.MaxRows)
	assert.Equal(t, []int{0, 1}, res.MinRows)
}

func TestRun_MissingImageIsFatal(t *testing.T) {
	t.Parallel()
	_, st := fixture(t)
	empty := fsutil.NewMemoryFileSystem()
	require.NoError(t, empty.MkdirAll("/images", 0755))

	ex := New(empty, Options{ImagesDir: "/images", ExportDir: "/export", Extremes: 2})
	_, err := ex.Run(context.Background(), st)
	assert.ErrorContains(t, err, "face000.jpg")
}

func TestRun_MissingImagesDir(t *testing.T) {
	t.Parallel()
	_, st := fixture(t)

	ex := New(fsutil.NewMemoryFileSystem(), Options{ImagesDir: "/images", ExportDir: "/export"})
	_, err := ex.Run(context.Background(), st)
	assert.ErrorIs(t, err, ErrNoImagesDir)
}

func TestRun_FewerSamplesThanTwiceExtremes(t *testing.T) {
	t.Parallel()
	mfs, st := fixture(t)

	// 101 samples with the default of 50 per side would overlap.
	ex := New(mfs, Options{ImagesDir: "/images", ExportDir: "/export", Extremes: 60})
	results, err := ex.Run(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, results, 1)
	res := results[0]
	assert.Len(t, res.MinRows, 50)
	assert.Len(t, res.MaxRows, 50)
	assert.Equal(t, 0, res.MinRows[0])
	assert.Equal(t, 100, res.MaxRows[0])
	for _, r := range res.MinRows {
		assert.NotContains(t, res.MaxRows, r)
	}
	assert.True(t, mfs.Exists("/export/spread/min/49.jpg"))
	assert.False(t, mfs.Exists("/export/spread/min/50.jpg"))
}

func TestRun_OddSampleCount(t *testing.T) {
	t.Parallel()
	mfs, _ := fixture(t)
	st := featurestore.New()
	st.FileNames = []string{"face000.json", "face001.json", "face002.json"}
	st.Values["eyeBetween"] = []float64{0.3, 0.1, 0.2}

	results, err := New(mfs, Options{ImagesDir: "/images", ExportDir: "/export"}).Run(context.Background(), st)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []int{1}, results[0].MinRows)
	assert.Equal(t, []int{0}, results[0].MaxRows)
}

func TestRun_AfterFeatureStops(t *testing.T) {
	t.Parallel()
	mfs, st := fixture(t)
	stop := errors.New("stop")

	ex := New(mfs, Options{
		ImagesDir:    "/images",
		ExportDir:    "/export",
		Extremes:     1,
		AfterFeature: func(FeatureResult) error { return stop },
	})
	_, err := ex.Run(context.Background(), st)
	assert.ErrorIs(t, err, stop)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()
	mfs, st := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(mfs, Options{ImagesDir: "/images", ExportDir: "/export"}).Run(ctx, st)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestNew_DefaultExtremes(t *testing.T) {
	t.Parallel()
	ex := New(fsutil.NewMemoryFileSystem(), Options{})
	assert.Equal(t, DefaultExtremes, ex.opts.Extremes)
}

func TestImagePath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("/img", "a.jpg"), ImagePath("/img", "a.json"))
	assert.Equal(t, filepath.Join("/img", "b.jpg"), ImagePath("/img", "b.pickle"))
}

func TestSafeDirName(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"noseLength":    "noseLength",
		"../etc/passwd": "etc_passwd",
		"a b\tc":        "a_b_c",
		"..":            "unnamed",
		"":              "unnamed",
		"jaw_position":  "jaw_position",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeDirName(in), "input %q", in)
	}
}
