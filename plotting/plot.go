package plotting

import (
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// Run is a named history to draw.
type Run struct {
	Name    string
	History *History
}

// Chart describes one comparison figure.
type Chart struct {
	File   string
	Title  string
	YLabel string
	Series func(*History) []float64
}

// DefaultCharts are the loss, Micro-F1 and RP@5 comparisons.
var DefaultCharts = []Chart{
	{File: "training_loss.png", Title: "Training Loss vs. Epochs", YLabel: "Loss",
		Series: func(h *History) []float64 { return h.TrainLoss }},
	{File: "validation_loss.png", Title: "Validation Loss vs. Epochs", YLabel: "Loss",
		Series: func(h *History) []float64 { return h.ValLoss }},
	{File: "micro_f1.png", Title: "Validation Micro-F1 vs. Epochs", YLabel: "Micro-F1",
		Series: func(h *History) []float64 { return h.ValMicroF1 }},
	{File: "rp_at_5.png", Title: "Validation RP@5 vs. Epochs", YLabel: "RP@5",
		Series: func(h *History) []float64 { return h.ValRP5 }},
}

// 図のサイズ（10x6インチ）
const (
	figWidth  = 10 * vg.Inch
	figHeight = 6 * vg.Inch
)

// PlotComparison draws every chart with one line per run into outDir and
// returns the written paths. Runs with an empty series are left out of that
// chart; a chart with no data is skipped.
func PlotComparison(runs []Run, outDir string, charts ...Chart) ([]string, error) {
	if len(runs) == 0 {
		return nil, errors.NewValidationError("runs", "at least one run is required", 0)
	}
	if len(charts) == 0 {
		charts = DefaultCharts
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", outDir)
	}

	var written []string
	for _, c := range charts {
		p := plot.New()
		p.Title.Text = c.Title
		p.X.Label.Text = "Epochs"
		p.Y.Label.Text = c.YLabel
		p.Add(plotter.NewGrid())

		drawn := 0
		for i, r := range runs {
			ys := c.Series(r.History)
			if len(ys) == 0 {
				continue
			}
			pts := make(plotter.XYs, len(ys))
			for e, y := range ys {
				pts[e].X = float64(e + 1)
				pts[e].Y = y
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return written, errors.Wrapf(err, "%s: %s", c.File, r.Name)
			}
			line.Color = plotutil.Color(i)
			line.Dashes = plotutil.Dashes(0)
			p.Add(line)
			p.Legend.Add(r.Name, line)
			drawn++
		}
		if drawn == 0 {
			continue
		}

		path := filepath.Join(outDir, c.File)
		if err := p.Save(figWidth, figHeight, path); err != nil {
			return written, errors.Wrapf(err, "save %s", path)
		}
		written = append(written, path)
	}
	return written, nil
}
