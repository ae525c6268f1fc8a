package viewer

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gowing/internal/material"
	"github.com/alexiusacademia/gowing/internal/snapshot"
	"github.com/alexiusacademia/gowing/internal/spar"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Series names
const (
	SeriesTwist     = "twist"
	SeriesLift      = "lift"
	SeriesThickness = "thickness"
	SeriesVonMises  = "von mises"
)

// Options selects what a scene contains
type Options struct {
	ShowWing      bool
	ShowTube      bool
	FEMOrigin     float64 // chord fraction of the spar axis
	Circumference int     // points per tube ring
}

// DefaultOptions shows everything the iteration carries
func DefaultOptions() Options {
	return Options{
		ShowWing:      true,
		ShowTube:      true,
		FEMOrigin:     material.FEMOrigin,
		Circumference: 12,
	}
}

// Polyline is a connected run of points
type Polyline []r3.Vec

// Ring is one tube cross-section drawn around the spar axis
type Ring struct {
	Points []r3.Vec
	Color  float64 // wall thickness relative to the thickest element, 0..1
}

// Series is a spanwise plot; X is the normalised span in [-1, 1]
type Series struct {
	Name string
	X, Y []float64
}

// Scene is the full set of draw instructions for one frame
type Scene struct {
	Title     string
	State     State
	Wireframe []Polyline
	Rings     []Ring
	Series    []Series
	Min, Max  r3.Vec  // mesh bounding box
	Mass      float64 // spar mass (kg) in the default material, 0 when the tube is hidden
}

// Render builds the scene for state s. It has no side effects.
func Render(s State, h *snapshot.History, opts Options) (Scene, error) {
	if h.Len() == 0 {
		return Scene{}, fmt.Errorf("history is empty")
	}
	it, err := h.At(wrap(s.Iteration, h.Len()))
	if err != nil {
		return Scene{}, err
	}

	sc := Scene{
		Title: fmt.Sprintf("Iteration: %d", it.Index),
		State: s,
	}
	sc.Min, sc.Max = bounds(it.Mesh)

	span, mid, err := spanStations(it.Mesh[0])
	if err != nil {
		return Scene{}, fmt.Errorf("iteration %d: %w", it.Index, err)
	}

	if opts.ShowWing {
		sc.Wireframe = wireframe(it.Mesh)
		if it.Aero != nil {
			sc.Series = append(sc.Series,
				Series{Name: SeriesTwist, X: span, Y: it.Aero.Twist},
				Series{Name: SeriesLift, X: mid, Y: it.Aero.Lift},
			)
		}
	}

	if opts.ShowTube && it.Structure != nil {
		tubes, err := spar.Elements(it.Structure.Radius, it.Structure.Thickness)
		if err != nil {
			return Scene{}, fmt.Errorf("iteration %d: %w", it.Index, err)
		}
		axis := sparAxis(it.Mesh, opts.FEMOrigin)
		sc.Rings = rings(axis, tubes, opts)
		lengths := make([]float64, len(tubes))
		for k := range lengths {
			lengths[k] = r3.Norm(r3.Sub(axis[k+1], axis[k]))
		}
		if sc.Mass, err = spar.SparMass(tubes, lengths, material.Defaults()); err != nil {
			return Scene{}, fmt.Errorf("iteration %d: %w", it.Index, err)
		}
		sc.Series = append(sc.Series,
			Series{Name: SeriesThickness, X: mid, Y: it.Structure.Thickness},
			Series{Name: SeriesVonMises, X: mid, Y: it.Structure.VonMises},
		)
	}

	return sc, nil
}

// spanStations normalises the leading-edge stations to [-1, 1] and returns
// them with their midpoints.
func spanStations(le []r3.Vec) (span, mid []float64, err error) {
	tip := le[len(le)-1].Y
	if tip == 0 {
		return nil, nil, fmt.Errorf("mesh has zero span")
	}
	span = make([]float64, len(le))
	for j, p := range le {
		span[j] = (p.Y/tip - 0.5) * 2
	}
	mid = make([]float64, len(le)-1)
	for j := range mid {
		y := (le[j].Y + le[j+1].Y) / 2
		mid[j] = (y/tip - 0.5) * 2
	}
	return span, mid, nil
}

func wireframe(mesh [][]r3.Vec) []Polyline {
	var lines []Polyline
	for _, row := range mesh {
		lines = append(lines, append(Polyline(nil), row...))
	}
	for j := range mesh[0] {
		line := make(Polyline, len(mesh))
		for i := range mesh {
			line[i] = mesh[i][j]
		}
		lines = append(lines, line)
	}
	return lines
}

// sparAxis returns the spar axis point of every spanwise station, at
// femOrigin of the local chord behind the leading edge
func sparAxis(mesh [][]r3.Vec, femOrigin float64) []r3.Vec {
	le, te := mesh[0], mesh[len(mesh)-1]
	axis := make([]r3.Vec, len(le))
	for j := range le {
		axis[j] = r3.Add(le[j], r3.Scale(femOrigin, r3.Sub(te[j], le[j])))
	}
	return axis
}

// rings draws a tube section at every spanwise station. The last station
// reuses the tip element.
func rings(axis []r3.Vec, tubes []spar.Tube, opts Options) []Ring {
	n := opts.Circumference
	if n < 3 {
		n = 3
	}

	thick := make([]float64, len(tubes))
	for k, t := range tubes {
		thick[k] = t.Thickness
	}
	maxThick := floats.Max(thick)

	out := make([]Ring, len(axis))
	for j, centre := range axis {
		t := tubes[min(j, len(tubes)-1)]

		pts := make([]r3.Vec, n)
		for k := range pts {
			phi := 2 * math.Pi * float64(k) / float64(n-1)
			pts[k] = r3.Add(centre, r3.Vec{X: t.Radius * math.Cos(phi), Z: t.Radius * math.Sin(phi)})
		}
		out[j] = Ring{Points: pts, Color: t.Thickness / maxThick}
	}
	return out
}

func bounds(mesh [][]r3.Vec) (lo, hi r3.Vec) {
	lo, hi = mesh[0][0], mesh[0][0]
	for _, row := range mesh {
		for _, p := range row {
			lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
			hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
		}
	}
	return lo, hi
}
