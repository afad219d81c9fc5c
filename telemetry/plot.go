package telemetry

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot charts vertex and leaf tetrahedron counts over elapsed time.
func Plot(samples []Sample) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	verts := make(plotter.XYs, len(samples))
	tets := make(plotter.XYs, len(samples))
	for i, s := range samples {
		verts[i] = plotter.XY{X: s.ElapsedMs, Y: float64(s.Vertices)}
		tets[i] = plotter.XY{X: s.ElapsedMs, Y: float64(s.Tetrahedra)}
	}
	p := plot.New()
	p.Title.Text = "Refinement convergence"
	p.X.Label.Text = "elapsed [ms]"
	p.Y.Label.Text = "count"
	p.Add(plotter.NewGrid())

	vl, err := plotter.NewLine(verts)
	if err != nil {
		return nil, err
	}
	tl, err := plotter.NewLine(tets)
	if err != nil {
		return nil, err
	}
	tl.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(vl, tl)
	p.Legend.Add("vertices", vl)
	p.Legend.Add("tetrahedra", tl)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// SavePlot writes the convergence plot to path. The format follows the
// file extension (png, svg, pdf...).
func SavePlot(path string, samples []Sample) error {
	p, err := Plot(samples)
	if err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
