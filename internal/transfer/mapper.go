package transfer

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gowing/internal/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Input names used in error messages
const (
	InputNodes  = "nodes"
	InputPoints = "panel points"
	InputForces = "panel forces"
	InputLoads  = "node loads"
)

// Split describes how one panel's force is shared between nodes.
//
// Node A carries F - T·F and node B carries T·F. With nearest weighting
// A == B and T == 0, so node A carries the whole force.
type Split struct {
	A, B    int
	T       float64
	Clamped bool // T was clamped to [0, 1] and does not vary with position
}

// Shared reports whether the force is divided between two distinct nodes
func (s Split) Shared() bool {
	return s.A != s.B
}

// Check validates the configuration and the shape and values of the inputs.
// It runs before any load is computed.
func Check(cfg surface.Config, geom Geometry, forces []r3.Vec) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(geom.Nodes) != cfg.NumNodes {
		return &DimensionError{Input: InputNodes, Want: cfg.NumNodes, Got: len(geom.Nodes)}
	}
	if len(geom.Points) != cfg.NumPanels() {
		return &DimensionError{Input: InputPoints, Want: cfg.NumPanels(), Got: len(geom.Points)}
	}
	if len(forces) != cfg.NumPanels() {
		return &DimensionError{Input: InputForces, Want: cfg.NumPanels(), Got: len(forces)}
	}

	for _, in := range []struct {
		name string
		vs   []r3.Vec
	}{
		{InputNodes, geom.Nodes},
		{InputPoints, geom.Points},
		{InputForces, forces},
	} {
		for i, v := range in.vs {
			if !finite(v) {
				return &ValueError{Input: in.name, Index: i}
			}
		}
	}

	if cfg.Weighting == surface.Linear && cfg.NumPanels() > 0 {
		for j := 0; j+1 < len(geom.Nodes); j++ {
			d := r3.Sub(geom.Nodes[j+1], geom.Nodes[j])
			dd := r3.Dot(d, d)
			if dd == 0 {
				return &surface.ConfigError{
					Field: surface.KeyWeighting,
					Msg:   fmt.Sprintf("nodes %d and %d coincide; linear weighting is undefined", j, j+1),
				}
			}
			if math.IsInf(dd, 0) {
				return &surface.ConfigError{
					Field: surface.KeyWeighting,
					Msg:   fmt.Sprintf("segment between nodes %d and %d is too long to project onto", j, j+1),
				}
			}
		}
	}

	return nil
}

// SplitPanel returns the node split for the panel in spanwise strip j whose
// reference point is p. Inputs must have passed Check.
func SplitPanel(cfg surface.Config, nodes []r3.Vec, j int, p r3.Vec) Split {
	if cfg.Weighting == surface.Nearest {
		return Split{A: j, B: j}
	}

	a, b := nodes[j], nodes[j+1]
	d := r3.Sub(b, a)
	t := r3.Dot(r3.Sub(p, a), d) / r3.Dot(d, d)

	s := Split{A: j, B: j + 1, T: t}
	if t < 0 {
		s.T, s.Clamped = 0, true
	} else if t > 1 {
		s.T, s.Clamped = 1, true
	}
	return s
}

// Map transfers panel forces onto the structural nodes.
//
// Each node receives the forces of the panels mapped to it and the moment of
// those forces about the node. The result has one entry per node, root first.
// An empty panel grid yields all-zero loads. Finite inputs whose forces or
// moments overflow give a ValueError naming the node.
func Map(cfg surface.Config, geom Geometry, forces []r3.Vec) ([]NodeLoad, error) {
	if err := Check(cfg, geom, forces); err != nil {
		return nil, err
	}
	loads := mapChecked(cfg, geom, forces)
	for i, l := range loads {
		if !finite(l.Force) || !finite(l.Moment) {
			return nil, &ValueError{Input: InputLoads, Index: i}
		}
	}
	return loads, nil
}

func mapChecked(cfg surface.Config, geom Geometry, forces []r3.Vec) []NodeLoad {
	loads := make([]NodeLoad, cfg.NumNodes)

	for i := 0; i < cfg.NumChordwise; i++ {
		for j := 0; j < cfg.NumSpanwise; j++ {
			k := cfg.PanelIndex(i, j)
			p, f := geom.Points[k], forces[k]

			s := SplitPanel(cfg, geom.Nodes, j, p)
			if !s.Shared() {
				loads[s.A].accumulate(p, geom.Nodes[s.A], f)
				continue
			}

			fb := r3.Scale(s.T, f)
			fa := r3.Sub(f, fb)
			loads[s.A].accumulate(p, geom.Nodes[s.A], fa)
			loads[s.B].accumulate(p, geom.Nodes[s.B], fb)
		}
	}

	return loads
}

func finite(v r3.Vec) bool {
	for _, x := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
