package rhs

import (
	"fmt"

	"github.com/alexiusacademia/gowing/internal/surface"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DOFPerNode is the number of load rows per node: Fx, Fy, Fz, Mx, My, Mz
	DOFPerNode = 6

	// ConstraintRows is the number of trailing rows matching the rigid-body
	// constraint equations of the augmented stiffness matrix. Their entries
	// are target relative displacements and are always zero.
	ConstraintRows = 6
)

// Length returns the augmented vector length for n nodes
func Length(n int) int {
	return DOFPerNode*n + ConstraintRows
}

// Assemble concatenates per-node loads, root first, and appends the zero
// constraint rows.
func Assemble(loads []transfer.NodeLoad) *mat.VecDense {
	data := make([]float64, Length(len(loads)))
	for i, l := range loads {
		c := l.Components()
		copy(data[DOFPerNode*i:DOFPerNode*(i+1)], c[:])
	}
	return mat.NewVecDense(len(data), data)
}

// Build validates the inputs, transfers the panel forces to the nodes and
// assembles the augmented load vector.
func Build(cfg surface.Config, geom transfer.Geometry, forces []r3.Vec) (*mat.VecDense, []transfer.NodeLoad, error) {
	loads, err := transfer.Map(cfg, geom, forces)
	if err != nil {
		return nil, nil, fmt.Errorf("load transfer failed: %w", err)
	}
	return Assemble(loads), loads, nil
}

// Split recovers the per-node loads from an augmented load vector
func Split(v mat.Vector) ([]transfer.NodeLoad, error) {
	n := v.Len() - ConstraintRows
	if n < 0 || n%DOFPerNode != 0 {
		return nil, fmt.Errorf("invalid load vector length %d: want %d·n + %d", v.Len(), DOFPerNode, ConstraintRows)
	}

	loads := make([]transfer.NodeLoad, n/DOFPerNode)
	for i := range loads {
		r := DOFPerNode * i
		loads[i] = transfer.NodeLoad{
			Force:  r3.Vec{X: v.AtVec(r), Y: v.AtVec(r + 1), Z: v.AtVec(r + 2)},
			Moment: r3.Vec{X: v.AtVec(r + 3), Y: v.AtVec(r + 4), Z: v.AtVec(r + 5)},
		}
	}
	return loads, nil
}

// Constraints returns a view of the trailing constraint rows
func Constraints(v *mat.VecDense) mat.Vector {
	return v.SliceVec(v.Len()-ConstraintRows, v.Len())
}
