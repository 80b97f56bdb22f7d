package explore

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/faceon/internal/stats"
)

// writePlot renders values as blue dots against their index with the
// summary statistics overlaid, and writes the PNG to path.
func (e *Explorer) writePlot(path, title string, values []float64, sum stats.Summary) error {
	p := plot.New()
	p.Title.Text = title + " Distribution"
	p.X.Label.Text = "Index"
	p.Y.Label.Text = title

	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to create scatter: %w", err)
	}
	scatter.GlyphStyle.Color = color.RGBA{B: 255, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter)

	// Normalised values span [0, 1]; the overlay sits in the upper half of
	// that range, centred on the index axis.
	lines := sum.Lines()
	overlay := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(lines)),
		Labels: lines,
	}
	mid := float64(len(values)-1) / 2
	for i := range lines {
		overlay.XYs[i] = plotter.XY{X: mid, Y: 0.9 - 0.05*float64(i)}
	}
	labels, err := plotter.NewLabels(overlay)
	if err != nil {
		return fmt.Errorf("failed to create labels: %w", err)
	}
	p.Add(labels)

	p.Y.Min = 0
	p.Y.Max = 1

	wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode plot: %w", err)
	}
	if err := e.fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write plot %s: %w", path, err)
	}
	return nil
}
