package render

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/jgoulah/meterplot/internal/timeseries"
	"github.com/jgoulah/meterplot/pkg/models"
)

// Bar widths in seconds. Cumulative readings arrive every 30 minutes,
// instantaneous readings every minute.
const (
	cumulativeBarWidth = 30 * 60
	instantBarWidth    = 60
)

var (
	colorBlue      = color.RGBA{B: 255, A: 255}
	colorLightBlue = color.RGBA{R: 173, G: 216, B: 230, A: 255}
	colorTomato    = color.RGBA{R: 255, G: 99, B: 71, A: 255}
	colorRed       = color.RGBA{R: 255, A: 255}
)

// Options selects the chart variant.
type Options struct {
	// SplitPhases renders the R and T currents on two separate panels
	// instead of one stacked panel, producing a four-panel figure.
	SplitPhases bool

	// Figure dimensions; zero values get defaults.
	Width  vg.Length
	Height vg.Length
}

// Renderer draws one day's observation table as a vertical stack of panels
// sharing a time axis, and writes the figure to a PNG file.
type Renderer struct {
	loc  *time.Location
	opts Options
}

// New creates a renderer for the given display timezone.
func New(loc *time.Location, opts Options) *Renderer {
	if opts.Width == 0 {
		opts.Width = 24 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 12 * vg.Inch
	}
	return &Renderer{loc: loc, opts: opts}
}

// Render draws the table for one partition and writes path. The table must be
// non-empty; the x axis spans local midnight to the last observed sample. The
// figure is written to a temporary file and renamed into place, so an
// interrupted run never leaves a partial output that a later run would skip.
func (r *Renderer) Render(tbl *models.Table, part timeseries.Partition, path string) error {
	tbl.Sort()
	_, last, ok := tbl.Bounds()
	if !ok {
		return fmt.Errorf("no samples to render")
	}

	xMin := float64(part.Begin.Unix())
	xMax := float64(last.Unix())
	if xMax <= xMin {
		// single sample right at midnight; keep a visible axis
		xMax = xMin + instantBarWidth
	}

	panels := []*plot.Plot{
		r.energyPanel(tbl, xMin, xMax),
		r.powerPanel(tbl, xMin, xMax),
	}
	if r.opts.SplitPhases {
		panels = append(panels,
			r.phasePanel(tbl, "instantaneous electric current (R-phase)",
				func(o models.Observation) *float64 { return o.InstantAmpereR }, colorTomato, xMin, xMax),
			r.phasePanel(tbl, "instantaneous electric current (T-phase)",
				func(o models.Observation) *float64 { return o.InstantAmpereT }, colorBlue, xMin, xMax),
		)
	} else {
		panels = append(panels, r.currentPanel(tbl, xMin, xMax))
	}

	img := vgimg.New(r.opts.Width, r.opts.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(panels),
		Cols: 1,
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 4,
	}

	grid := make([][]*plot.Plot, len(panels))
	for i, p := range panels {
		grid[i] = []*plot.Plot{p}
	}
	canvases := plot.Align(grid, tiles, dc)
	for i, p := range panels {
		p.Draw(canvases[i][0])
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) newPanel(title, yLabel string, xMin, xMax float64) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.X.Min = xMin
	p.X.Max = xMax
	p.X.Tick.Marker = dayTicker{loc: r.loc}
	p.Add(plotter.NewGrid())
	return p
}

// energyPanel draws the cumulative counter as connected markers over wide
// bars. With three or more samples the y-range hugs the observed min/max so
// the day's consumption fills the panel.
func (r *Renderer) energyPanel(tbl *models.Table, xMin, xMax float64) *plot.Plot {
	p := r.newPanel("cumulative amounts of electric power", "kWh", xMin, xMax)

	series := tbl.Extract(func(o models.Observation) *float64 { return o.CumulativeKWh })
	xys := seriesXYs(series)

	p.Add(NewTimeBars(xys, cumulativeBarWidth, colorLightBlue))

	line, points, err := plotter.NewLinePoints(xys)
	if err == nil {
		line.Color = colorBlue
		points.Color = colorBlue
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)
	}

	if series.Len() >= 3 {
		p.Y.Min = series.Min()
		p.Y.Max = series.Max()
	}
	return p
}

// powerPanel draws instantaneous power as narrow bars and annotates the peak.
func (r *Renderer) powerPanel(tbl *models.Table, xMin, xMax float64) *plot.Plot {
	p := r.newPanel("instantaneous electric power", "W", xMin, xMax)

	series := tbl.Extract(func(o models.Observation) *float64 { return o.InstantWatt })
	p.Add(NewTimeBars(seriesXYs(series), instantBarWidth, colorBlue))

	if at, peak, ok := series.Peak(); ok {
		r.annotatePeak(p, at, peak, xMax, fmt.Sprintf(" %.0f W", peak))
	}
	return p
}

// currentPanel draws the two phase currents as one stacked bar series,
// R below and T on top, and annotates the combined peak.
func (r *Renderer) currentPanel(tbl *models.Table, xMin, xMax float64) *plot.Plot {
	p := r.newPanel("instantaneous electric current", "A", xMin, xMax)

	times, bottom, top, combined := tbl.StackedCurrent()

	rBars := NewTimeBars(valueXYs(times, bottom), instantBarWidth, colorTomato)
	tBars := NewTimeBars(valueXYs(times, top), instantBarWidth, colorBlue)
	tBars.Bottom = bottom
	p.Add(rBars, tBars)

	p.Legend.Add("R-phase", rBars)
	p.Legend.Add("T-phase", tBars)
	p.Legend.Top = true
	p.Legend.Left = true

	peak := models.Series{Times: times, Values: combined}
	if at, v, ok := peak.Peak(); ok {
		r.annotatePeak(p, at, v, xMax, fmt.Sprintf(" %.1f A", v))
	}
	return p
}

// phasePanel draws a single unstacked phase current.
func (r *Renderer) phasePanel(tbl *models.Table, title string, field func(models.Observation) *float64, c color.Color, xMin, xMax float64) *plot.Plot {
	p := r.newPanel(title, "A", xMin, xMax)

	series := tbl.Extract(field)
	p.Add(NewTimeBars(seriesXYs(series), instantBarWidth, c))

	if at, peak, ok := series.Peak(); ok {
		r.annotatePeak(p, at, peak, xMax, fmt.Sprintf(" %.1f A", peak))
	}
	return p
}

// annotatePeak places a red label at the right edge of the axis with the
// peak's local time of day and magnitude, connected to the peak by a line.
func (r *Renderer) annotatePeak(p *plot.Plot, at time.Time, value, xMax float64, magnitude string) {
	local := at.In(r.loc)
	text := fmt.Sprintf(" %s as %s\n%s", local.Format("15:04:05"), local.Format("MST"), magnitude)

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: xMax, Y: value}},
		Labels: []string{text},
	})
	if err != nil {
		return
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = colorRed
	}

	arrow, err := plotter.NewLine(plotter.XYs{
		{X: float64(at.Unix()), Y: value},
		{X: xMax, Y: value},
	})
	if err != nil {
		return
	}
	arrow.Color = colorRed

	p.Add(arrow, labels)
}

func seriesXYs(s models.Series) plotter.XYs {
	return valueXYs(s.Times, s.Values)
}

func valueXYs(times []time.Time, values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i := range values {
		xys[i] = plotter.XY{X: float64(times[i].Unix()), Y: values[i]}
	}
	return xys
}
