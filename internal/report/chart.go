package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/verte-zerg/wsec/internal/analysis"
)

// SaveDCRChart writes a bar chart of DCR per section. The format follows the
// file extension (.png or .svg).
func SaveDCRChart(path string, results []analysis.Result) error {
	p, err := DCRChart(results)
	if err != nil {
		return err
	}
	width := vg.Length(len(results))*0.6*vg.Inch + 2*vg.Inch
	if width < 6*vg.Inch {
		width = 6 * vg.Inch
	}
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// DCRChart builds the bar chart with a dashed line at DCR = 1.
func DCRChart(results []analysis.Result) (*plot.Plot, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no results to chart")
	}
	p := plot.New()
	p.Title.Text = "Demand-capacity ratio"
	p.Y.Label.Text = "DCR (σvm / fy)"

	values := make(plotter.Values, len(results))
	names := make([]string, len(results))
	maxDCR := 1.0
	for i, r := range results {
		values[i] = r.DCR
		names[i] = r.Record.Name
		if r.DCR > maxDCR {
			maxDCR = r.DCR
		}
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, err
	}
	bars.Color = color.RGBA{R: 100, G: 149, B: 237, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	limit, err := plotter.NewLine(plotter.XYs{
		{X: -0.5, Y: 1},
		{X: float64(len(results)) - 0.5, Y: 1},
	})
	if err != nil {
		return nil, err
	}
	limit.LineStyle.Width = vg.Points(1.5)
	limit.LineStyle.Color = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	limit.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	p.Add(limit)

	p.Y.Min = 0
	p.Y.Max = maxDCR * 1.1
	return p, nil
}
