package bench

import (
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is one engine's measurements across data sizes.
type Series struct {
	Name   string
	Sizes  []int
	Values []float64
}

// SavePlot writes a line chart of the series to dir/name.png.
func SavePlot(dir, name, title, yLabel string, series []Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "keys"
	p.Y.Label.Text = yLabel

	args := make([]interface{}, 0, 2*len(series))
	for _, s := range series {
		pts := make(plotter.XYs, len(s.Sizes))
		for i := range s.Sizes {
			pts[i].X = float64(s.Sizes[i])
			pts[i].Y = s.Values[i]
		}
		args = append(args, s.Name, pts)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return err
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(dir, name+".png"))
}
