package sensitivity

import (
	"fmt"

	"github.com/alexiusacademia/gowing/internal/rhs"
	"github.com/alexiusacademia/gowing/internal/surface"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultStep is the central-difference step used by the CLI check
const DefaultStep = 1e-6

// FiniteDifference approximates the block k by central differences with
// step h. It is intended for verifying the analytic blocks.
func FiniteDifference(cfg surface.Config, geom transfer.Geometry, forces []r3.Vec, k Key, h float64) (*mat.Dense, error) {
	if err := transfer.Check(cfg, geom, forces); err != nil {
		return nil, err
	}
	if h <= 0 {
		return nil, fmt.Errorf("finite difference step must be positive, got %g", h)
	}

	// Work on copies so the caller's slices are never touched
	nodes := append([]r3.Vec(nil), geom.Nodes...)
	points := append([]r3.Vec(nil), geom.Points...)
	fs := append([]r3.Vec(nil), forces...)

	var target []r3.Vec
	switch k {
	case ForcesKey:
		target = fs
	case NodesKey:
		target = nodes
	case PointsKey:
		target = points
	default:
		return nil, fmt.Errorf("unknown jacobian block %s", k)
	}

	jac := newBlock(cfg.RHSLength(), 3*len(target))
	if jac.IsEmpty() {
		return jac, nil
	}

	eval := func() (*mat.VecDense, error) {
		v, _, err := rhs.Build(cfg, transfer.Geometry{Nodes: nodes, Points: points}, fs)
		return v, err
	}

	var diff mat.VecDense
	for i := range target {
		orig := target[i]
		for c := 0; c < 3; c++ {
			target[i] = perturb(orig, c, h)
			plus, err := eval()
			if err != nil {
				return nil, err
			}
			target[i] = perturb(orig, c, -h)
			minus, err := eval()
			if err != nil {
				return nil, err
			}
			target[i] = orig

			diff.SubVec(plus, minus)
			diff.ScaleVec(1/(2*h), &diff)
			jac.SetCol(3*i+c, diff.RawVector().Data)
		}
	}
	if err := checkFinite(k, jac); err != nil {
		return nil, err
	}
	return jac, nil
}

func perturb(v r3.Vec, c int, h float64) r3.Vec {
	switch c {
	case 0:
		v.X += h
	case 1:
		v.Y += h
	default:
		v.Z += h
	}
	return v
}
