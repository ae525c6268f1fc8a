package snapshot

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// History is the ordered, read-only list of a run's iterations. It is built
// once and never changes; At hands out copies.
type History struct {
	run   string
	iters []Iteration
}

// NewHistory resolves every record in order. Iteration indices follow the
// record order.
func NewHistory(run string, recs []Record) (*History, error) {
	h := &History{run: run, iters: make([]Iteration, 0, len(recs))}
	for i, r := range recs {
		it, err := Resolve(i, r)
		if err != nil {
			return nil, err
		}
		h.iters = append(h.iters, it)
	}
	return h, nil
}

// Run returns the run id the history was loaded from
func (h *History) Run() string { return h.run }

// Len returns the number of iterations
func (h *History) Len() int { return len(h.iters) }

// At returns a copy of iteration i
func (h *History) At(i int) (Iteration, error) {
	if i < 0 || i >= len(h.iters) {
		return Iteration{}, fmt.Errorf("iteration %d out of range [0, %d)", i, len(h.iters))
	}
	return h.iters[i].copy(), nil
}

// Kinds returns the tag of every iteration in order
func (h *History) Kinds() []Kind {
	ks := make([]Kind, len(h.iters))
	for i, it := range h.iters {
		ks[i] = it.Kind
	}
	return ks
}

func (it Iteration) copy() Iteration {
	out := it
	out.Mesh = make([][]r3.Vec, len(it.Mesh))
	for i, row := range it.Mesh {
		out.Mesh[i] = append([]r3.Vec(nil), row...)
	}
	if it.Structure != nil {
		out.Structure = &Structure{
			Radius:    clone(it.Structure.Radius),
			Thickness: clone(it.Structure.Thickness),
			VonMises:  clone(it.Structure.VonMises),
		}
	}
	if it.Aero != nil {
		out.Aero = &Aero{Twist: clone(it.Aero.Twist), Lift: clone(it.Aero.Lift)}
	}
	return out
}
