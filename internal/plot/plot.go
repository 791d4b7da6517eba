// Package plot renders running-average reward curves as PNG line charts.
package plot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is one labelled curve; point t is drawn at x = t.
type Series struct {
	Label string
	Curve []float64
}

// Render draws every series on one set of axes and saves the chart to path.
// The image format follows the file extension.
func Render(path, title string, series []Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "step"
	p.Y.Label.Text = "average reward"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Curve) == 0 {
			continue
		}
		line, err := plotter.NewLine(points(s.Curve))
		if err != nil {
			return fmt.Errorf("plotting %s: %w", s.Label, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}

func points(curve []float64) plotter.XYs {
	pts := make(plotter.XYs, len(curve))
	for t, v := range curve {
		pts[t].X = float64(t)
		pts[t].Y = v
	}
	return pts
}
