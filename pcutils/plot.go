package pcutils

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var axisColors = [3]color.RGBA{
	{R: 220, A: 255},
	{G: 180, A: 255},
	{B: 220, A: 255},
}

// PlotAxes writes a top down (XY) picture of the cloud with its centroid and
// principal axes. Axis lengths shrink by a third for each weaker axis.
func PlotAxes(c Cloud, axes Axes, fn string) error {
	p := plot.New()
	p.Title.Text = "principal axes"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	pts := make(plotter.XYs, len(c))
	for i, pt := range c {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(1)
	scatter.GlyphStyle.Color = color.RGBA{R: 200, G: 200, A: 255}
	p.Add(scatter)

	lo, hi := c.Bounds()
	length := hi.Sub(lo).Norm() / 2
	if length == 0 {
		length = 1
	}

	for i, v := range axes.Vectors {
		end := axes.Centroid.Add(v.Mul(length))
		line, err := plotter.NewLine(plotter.XYs{
			{X: axes.Centroid.X, Y: axes.Centroid.Y},
			{X: end.X, Y: end.Y},
		})
		if err != nil {
			return err
		}
		line.Width = vg.Points(2)
		line.Color = axisColors[i]
		p.Add(line)
		length /= 3
	}

	center, err := plotter.NewScatter(plotter.XYs{{X: axes.Centroid.X, Y: axes.Centroid.Y}})
	if err != nil {
		return err
	}
	center.GlyphStyle.Radius = vg.Points(4)
	center.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	p.Add(center)

	return p.Save(6*vg.Inch, 6*vg.Inch, fn)
}
