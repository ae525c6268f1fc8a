package transfer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry holds the positions a load transfer is evaluated at.
//
// Points are laid out chordwise-major: panel (i, j) is at index i*ns + j,
// where ns is the number of spanwise strips. Forces share the same layout.
type Geometry struct {
	Nodes  []r3.Vec // structural nodes, root to tip
	Points []r3.Vec // panel reference points (quarter-chord centres)
}

// NodeLoad is the equivalent force and moment acting at one node
type NodeLoad struct {
	Force  r3.Vec
	Moment r3.Vec
}

// Components returns Fx, Fy, Fz, Mx, My, Mz
func (l NodeLoad) Components() [6]float64 {
	return [6]float64{l.Force.X, l.Force.Y, l.Force.Z, l.Moment.X, l.Moment.Y, l.Moment.Z}
}

// accumulate adds the force f applied at p to a load taken about node
func (l *NodeLoad) accumulate(p, node, f r3.Vec) {
	l.Force = r3.Add(l.Force, f)
	l.Moment = r3.Add(l.Moment, r3.Cross(r3.Sub(p, node), f))
}

// TotalForce sums the force part of every node load
func TotalForce(loads []NodeLoad) r3.Vec {
	var sum r3.Vec
	for _, l := range loads {
		sum = r3.Add(sum, l.Force)
	}
	return sum
}

// SumVecs sums a slice of vectors in order
func SumVecs(vs []r3.Vec) r3.Vec {
	var sum r3.Vec
	for _, v := range vs {
		sum = r3.Add(sum, v)
	}
	return sum
}

// DimensionError reports an input array whose length does not match the
// shape implied by the surface configuration
type DimensionError struct {
	Input string
	Want  int
	Got   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: %s has %d entries, configuration implies %d", e.Input, e.Got, e.Want)
}

// ValueError reports a non-finite coordinate or force component
type ValueError struct {
	Input string
	Index int
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("non-finite value in %s[%d]", e.Input, e.Index)
}
