package viz

import "github.com/nadeemsk/sheetflow/internal/sweep"

// StudyFigure converts one sweep study into a renderable figure. Curve
// order is preserved so line styles track the factor table.
func StudyFigure(res *sweep.StudyResult) Figure {
	fig := Figure{
		Title:  res.Study.Title,
		XLabel: "η",
		YLabel: res.Profile.AxisLabel(),
		Series: make([]Series, 0, len(res.Curves)),
	}
	for _, c := range res.Curves {
		fig.Series = append(fig.Series, Series{Label: c.Label, X: c.Etas, Y: c.Values})
	}
	return fig
}
