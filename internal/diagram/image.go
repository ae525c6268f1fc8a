package diagram

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/alexiusacademia/gowing/internal/transfer"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ExportLoadPlot exports the spanwise node forces to an image file. The
// format follows the extension (.png, .svg, .pdf); anything else gets .png
// appended.
func ExportLoadPlot(nodes []r3.Vec, loads []transfer.NodeLoad, filename string) error {
	if len(nodes) != len(loads) {
		return fmt.Errorf("%d nodes for %d loads", len(nodes), len(loads))
	}

	p := plot.New()
	p.Title.Text = "Spanwise Node Loads"
	p.X.Label.Text = "Span y (m)"
	p.Y.Label.Text = "Force (N)"
	p.Legend.Top = true

	components := []struct {
		name  string
		value func(transfer.NodeLoad) float64
		color color.Color
	}{
		{"Fz", func(l transfer.NodeLoad) float64 { return l.Force.Z }, color.RGBA{R: 0, G: 0, B: 139, A: 255}},
		{"Fx", func(l transfer.NodeLoad) float64 { return l.Force.X }, color.RGBA{R: 255, G: 0, B: 0, A: 255}},
		{"Fy", func(l transfer.NodeLoad) float64 { return l.Force.Y }, color.RGBA{R: 0, G: 100, B: 0, A: 255}},
	}

	for _, c := range components {
		pts := make(plotter.XYs, len(nodes))
		for k, n := range nodes {
			pts[k] = plotter.XY{X: n.Y, Y: c.value(loads[k])}
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = c.color
		points.GlyphStyle.Color = c.color
		points.GlyphStyle.Radius = vg.Points(3)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(c.name, line)
	}

	// Zero reference line
	if len(nodes) > 0 {
		zero, err := plotter.NewLine(plotter.XYs{
			{X: nodes[0].Y, Y: 0},
			{X: nodes[len(nodes)-1].Y, Y: 0},
		})
		if err != nil {
			return err
		}
		zero.LineStyle.Color = color.Gray{Y: 128}
		zero.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(zero)
	}

	return save(p, 8*vg.Inch, 6*vg.Inch, filename)
}

func save(p *plot.Plot, width, height vg.Length, filename string) error {
	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}
