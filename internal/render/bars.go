package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// TimeBars draws vertical bars on a continuous time axis. gonum/plot's
// BarChart places bars at category indices, which does not work for samples
// positioned at arbitrary timestamps, so this plotter fills one rectangle per
// sample instead. Bars are edge-aligned: each extends from its x value to
// x+Width, matching the sample-interval width of the reading.
type TimeBars struct {
	XYs plotter.XYs

	// Bottom holds an optional per-bar base value for stacking. When nil all
	// bars start at zero.
	Bottom []float64

	// Width is the bar width in x units (seconds).
	Width float64

	Color color.Color
}

// NewTimeBars builds a bar plotter with the given width in seconds.
func NewTimeBars(xys plotter.XYs, width float64, c color.Color) *TimeBars {
	return &TimeBars{XYs: xys, Width: width, Color: c}
}

// Plot implements plot.Plotter.
func (b *TimeBars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i, xy := range b.XYs {
		base := 0.0
		if b.Bottom != nil {
			base = b.Bottom[i]
		}
		xmin := trX(xy.X)
		xmax := trX(xy.X + b.Width)
		ymin := trY(base)
		ymax := trY(base + xy.Y)

		poly := []vg.Point{
			{X: xmin, Y: ymin},
			{X: xmin, Y: ymax},
			{X: xmax, Y: ymax},
			{X: xmax, Y: ymin},
		}
		c.FillPolygon(b.Color, c.ClipPolygonXY(poly))
	}
}

// DataRange implements plot.DataRanger so autoscaled axes include the bars.
func (b *TimeBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(b.XYs) == 0 {
		return 0, 1, 0, 1
	}
	xmin = b.XYs[0].X
	xmax = b.XYs[0].X + b.Width
	ymin = 0
	ymax = 0
	for i, xy := range b.XYs {
		if xy.X < xmin {
			xmin = xy.X
		}
		if xy.X+b.Width > xmax {
			xmax = xy.X + b.Width
		}
		top := xy.Y
		if b.Bottom != nil {
			top += b.Bottom[i]
		}
		if top > ymax {
			ymax = top
		}
		if top < ymin {
			ymin = top
		}
	}
	return xmin, xmax, ymin, ymax
}

// Thumbnail implements plot.Thumbnailer for legend entries.
func (b *TimeBars) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(b.Color, pts)
}
