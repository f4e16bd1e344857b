package viz

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// ErrNoData reports a figure with no plottable series.
var ErrNoData = errors.New("viz: figure has no series")

// Series is a single labeled curve.
type Series struct {
	Label string
	X     []float64
	Y     []float64
}

// Figure collects the curves of one parameter study on a shared axis.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

// Renderer writes figures as high-resolution PNG files.
type Renderer struct {
	WidthIn  float64
	HeightIn float64
	DPI      int
}

// NewRenderer returns a renderer with the given page geometry. Non-positive
// values fall back to an 8x6 inch page at 300 DPI.
func NewRenderer(widthIn, heightIn float64, dpi int) *Renderer {
	if widthIn <= 0 {
		widthIn = 8.0
	}
	if heightIn <= 0 {
		heightIn = 6.0
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &Renderer{WidthIn: widthIn, HeightIn: heightIn, DPI: dpi}
}

// Save renders fig and writes it to path, creating directories as needed.
func (r *Renderer) Save(fig Figure, path string) error {
	p, err := r.build(fig)
	if err != nil {
		return err
	}
	return r.writePNG(p, path)
}

// SaveSVG renders fig as a vector figure for embedding in documents.
func (r *Renderer) SaveSVG(fig Figure, path string) error {
	p, err := r.build(fig)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("viz: create output dir: %w", err)
	}

	c := vgsvg.New(vg.Length(r.WidthIn)*vg.Inch, vg.Length(r.HeightIn)*vg.Inch)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("viz: create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := c.WriteTo(f); err != nil {
		return fmt.Errorf("viz: write %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) build(fig Figure) (*plot.Plot, error) {
	if len(fig.Series) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	stylePlot(p)
	p.Add(plotter.NewGrid())

	for i, s := range fig.Series {
		if len(s.X) == 0 || len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("viz: series %q: mismatched points (%d x, %d y)", s.Label, len(s.X), len(s.Y))
		}
		pts := make(plotter.XYs, len(s.X))
		for j := range s.X {
			pts[j].X = s.X[j]
			pts[j].Y = s.Y[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle = lineStyleFor(i)
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(12)
	p.Legend.Padding = vg.Points(4)
	return p, nil
}

func (r *Renderer) writePNG(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("viz: create output dir: %w", err)
	}
	w := vg.Length(r.WidthIn) * vg.Inch
	h := vg.Length(r.HeightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(r.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("viz: create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(bw); err != nil {
		return fmt.Errorf("viz: write %s: %w", path, err)
	}
	return bw.Flush()
}

var (
	linePalette = []color.RGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	}
	lineDashes = [][]vg.Length{
		nil,
		{vg.Points(6), vg.Points(3)},
		{vg.Points(8), vg.Points(3), vg.Points(2), vg.Points(3)},
		{vg.Points(1.5), vg.Points(2.5)},
	}
)

// lineStyleFor cycles through the palette and dash table so every curve on a
// shared figure stays distinguishable, in color and in grayscale print.
func lineStyleFor(i int) draw.LineStyle {
	return draw.LineStyle{
		Color:  linePalette[i%len(linePalette)],
		Width:  vg.Points(2),
		Dashes: lineDashes[i%len(lineDashes)],
	}
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)

	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)
	p.X.Tick.Marker = limitedTicker(8, "%.2f")
	p.Y.Tick.Marker = limitedTicker(8, "%.2f")
}

// limitedTicker caps the number of axis labels so dense adaptive grids do
// not crowd the tick row.
func limitedTicker(maxTicks int, format string) plot.Ticker {
	if maxTicks < 2 {
		maxTicks = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(format, min)}}
		}
		step := (max - min) / float64(maxTicks-1)
		ticks := make([]plot.Tick, 0, maxTicks)
		for i := 0; i < maxTicks; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(format, v)})
		}
		return ticks
	})
}
