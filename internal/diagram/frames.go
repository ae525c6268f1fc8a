package diagram

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/alexiusacademia/gowing/internal/viewer"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// FrameRenderer draws viewer scenes as numbered PNG frames in a directory:
// the wing view on top, one spanwise plot per series below it.
type FrameRenderer struct {
	Dir    string
	Width  vg.Length
	Height vg.Length

	frames []string
}

// NewFrameRenderer creates the output directory
func NewFrameRenderer(dir string) (*FrameRenderer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &FrameRenderer{Dir: dir, Width: 8 * vg.Inch, Height: 10 * vg.Inch}, nil
}

// Frames returns the files written so far, in order
func (r *FrameRenderer) Frames() []string {
	return append([]string(nil), r.frames...)
}

// Draw implements viewer.Renderer
func (r *FrameRenderer) Draw(ctx context.Context, sc viewer.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := [][]*plot.Plot{{wingPlot(sc)}}
	for _, s := range sc.Series {
		p, err := seriesPlot(s)
		if err != nil {
			return err
		}
		rows = append(rows, []*plot.Plot{p})
	}

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(rows),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}

	path := filepath.Join(r.Dir, fmt.Sprintf("frame_%04d.png", len(r.frames)))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	r.frames = append(r.frames, path)
	return nil
}

// Project maps a point onto the view plane for the given azimuth and
// elevation (deg), looking at the origin.
func Project(p r3.Vec, azimuth, elevation float64) plotter.XY {
	az := azimuth * math.Pi / 180
	el := elevation * math.Pi / 180
	sa, ca := math.Sincos(az)
	se, ce := math.Sincos(el)

	return plotter.XY{
		X: -sa*p.X + ca*p.Y,
		Y: -se*ca*p.X - se*sa*p.Y + ce*p.Z,
	}
}

func wingPlot(sc viewer.Scene) *plot.Plot {
	p := plot.New()
	p.Title.Text = sc.Title
	p.HideAxes()

	az, el := sc.State.Azimuth, sc.State.Elevation
	project := func(pts []r3.Vec) plotter.XYs {
		xy := make(plotter.XYs, len(pts))
		for i, v := range pts {
			xy[i] = Project(v, az, el)
		}
		return xy
	}

	for _, ring := range sc.Rings {
		poly, err := plotter.NewPolygon(project(ring.Points))
		if err != nil {
			continue
		}
		poly.Color = heat(ring.Color)
		poly.LineStyle.Width = 0
		p.Add(poly)
	}

	for _, pl := range sc.Wireframe {
		line, err := plotter.NewLine(project(pl))
		if err != nil {
			continue
		}
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = color.Black
		p.Add(line)
	}

	// Keep the wing at the same scale while the view rotates
	centre := r3.Scale(0.5, r3.Add(sc.Min, sc.Max))
	radius := r3.Norm(r3.Sub(sc.Max, sc.Min)) / 2
	c := Project(centre, az, el)
	p.X.Min, p.X.Max = c.X-radius, c.X+radius
	p.Y.Min, p.Y.Max = c.Y-radius/2, c.Y+radius/2

	return p
}

func seriesPlot(s viewer.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = s.Name
	p.X.Min, p.X.Max = -1, 1

	pts := make(plotter.XYs, len(s.X))
	for i := range s.X {
		pts[i] = plotter.XY{X: s.X[i], Y: s.Y[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", s.Name, err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = color.RGBA{B: 255, A: 255}
	p.Add(line)
	return p, nil
}

// heat maps 0..1 onto a yellow-to-red ramp
func heat(v float64) color.Color {
	v = math.Max(0, math.Min(1, v))
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + v*(float64(b)-float64(a))))
	}
	return color.RGBA{R: lerp(255, 189), G: lerp(255, 0), B: lerp(178, 38), A: 255}
}
