package viz

import (
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/interp"
)

// Preview renders the figure as an ANSI line chart for quick terminal
// inspection without opening the PNG output.
func Preview(fig Figure, width, height int) string {
	if len(fig.Series) == 0 {
		return "(no data)"
	}
	if width < 16 {
		width = 16
	}
	if height < 4 {
		height = 4
	}

	data := make([][]float64, 0, len(fig.Series))
	legends := make([]string, 0, len(fig.Series))
	for _, s := range fig.Series {
		data = append(data, resample(s.X, s.Y, width))
		legends = append(legends, s.Label)
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fig.Title),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Purple),
		asciigraph.SeriesLegends(legends...),
	)
}

// resample maps a curve onto n evenly spaced samples so curves recorded on
// different adaptive grids can share one chart column layout.
func resample(xs, ys []float64, n int) []float64 {
	var pl interp.PiecewiseLinear
	if n < 2 || pl.Fit(xs, ys) != nil {
		out := make([]float64, len(ys))
		copy(out, ys)
		return out
	}
	x0, x1 := xs[0], xs[len(xs)-1]
	out := make([]float64, n)
	for i := range out {
		out[i] = pl.Predict(x0 + (x1-x0)*float64(i)/float64(n-1))
	}
	return out
}
