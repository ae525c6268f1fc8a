package sensitivity

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gowing/internal/rhs"
	"github.com/alexiusacademia/gowing/internal/surface"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Segment names
const (
	OfRHS     = "rhs"
	WrtForces = "panel_forces"
	WrtNodes  = "node_positions"
	WrtPoints = "panel_points"
)

// Key identifies a Jacobian block by output and input segment
type Key struct {
	Of  string
	Wrt string
}

func (k Key) String() string {
	return fmt.Sprintf("d(%s)/d(%s)", k.Of, k.Wrt)
}

// Block keys
var (
	ForcesKey = Key{Of: OfRHS, Wrt: WrtForces}
	NodesKey  = Key{Of: OfRHS, Wrt: WrtNodes}
	PointsKey = Key{Of: OfRHS, Wrt: WrtPoints}
)

// AllKeys lists every block the provider can compute
func AllKeys() []Key {
	return []Key{ForcesKey, NodesKey, PointsKey}
}

// Provider computes partial derivatives of the augmented load vector.
//
// It holds a private copy of one node/force snapshot so every block, and the
// load vector from RHS, are evaluated against the same inputs. Blocks are
// computed only when requested.
type Provider struct {
	cfg    surface.Config
	geom   transfer.Geometry
	forces []r3.Vec
}

// New validates the inputs and captures them. A snapshot whose load vector
// would not be finite is rejected.
func New(cfg surface.Config, geom transfer.Geometry, forces []r3.Vec) (*Provider, error) {
	if _, err := transfer.Map(cfg, geom, forces); err != nil {
		return nil, err
	}
	return &Provider{
		cfg: cfg,
		geom: transfer.Geometry{
			Nodes:  append([]r3.Vec(nil), geom.Nodes...),
			Points: append([]r3.Vec(nil), geom.Points...),
		},
		forces: append([]r3.Vec(nil), forces...),
	}, nil
}

// RHS assembles the load vector of the captured snapshot
func (p *Provider) RHS() *mat.VecDense {
	v, _, err := rhs.Build(p.cfg, p.geom, p.forces)
	if err != nil {
		// Inputs were checked by New and are never modified afterwards
		panic(err)
	}
	return v
}

// Block computes the block named by k. A block with an entry that overflows
// gives a ValueError instead of the matrix.
func (p *Provider) Block(k Key) (*mat.Dense, error) {
	switch k {
	case ForcesKey:
		return p.Forces()
	case NodesKey:
		return p.Nodes()
	case PointsKey:
		return p.Points()
	}
	return nil, fmt.Errorf("unknown jacobian block %s", k)
}

// Forces returns d(RHS)/d(panel forces)
func (p *Provider) Forces() (*mat.Dense, error) {
	return checked(ForcesKey, p.forcesBlock())
}

// Nodes returns d(RHS)/d(node positions)
func (p *Provider) Nodes() (*mat.Dense, error) {
	return checked(NodesKey, p.nodesBlock())
}

// Points returns d(RHS)/d(panel reference points)
func (p *Provider) Points() (*mat.Dense, error) {
	return checked(PointsKey, p.pointsBlock())
}

// Blocks computes only the requested blocks
func (p *Provider) Blocks(keys ...Key) (map[Key]*mat.Dense, error) {
	out := make(map[Key]*mat.Dense, len(keys))
	for _, k := range keys {
		if _, ok := out[k]; ok {
			continue
		}
		b, err := p.Block(k)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return out, nil
}

// forcesBlock returns d(RHS)/d(panel forces), of shape (6n+6) × 3P.
//
// The block is linear in the forces: weights and moment arms are fixed by
// the current positions.
func (p *Provider) forcesBlock() *mat.Dense {
	jac := newBlock(p.cfg.RHSLength(), 3*p.cfg.NumPanels())
	if jac.IsEmpty() {
		return jac
	}

	p.eachPanel(func(q int, pt, _ r3.Vec, s transfer.Split) {
		col := 3 * q
		wa := 1 - s.T
		ra := r3.Sub(pt, p.geom.Nodes[s.A])
		identity(wa).addTo(jac, forceRow(s.A), col)
		skew(ra).scale(wa).addTo(jac, momentRow(s.A), col)

		if s.Shared() {
			rb := r3.Sub(pt, p.geom.Nodes[s.B])
			identity(s.T).addTo(jac, forceRow(s.B), col)
			skew(rb).scale(s.T).addTo(jac, momentRow(s.B), col)
		}
	})
	return jac
}

// nodesBlock returns d(RHS)/d(node positions), of shape (6n+6) × 3n
func (p *Provider) nodesBlock() *mat.Dense {
	jac := newBlock(p.cfg.RHSLength(), 3*p.cfg.NumNodes)

	p.eachPanel(func(q int, pt, f r3.Vec, s transfer.Split) {
		wa, wb := weighted(f, s)

		// Moving a node shortens its own arm: d(r×W)/dn = [W]×
		skew(wa).addTo(jac, momentRow(s.A), 3*s.A)
		if !s.Shared() {
			return
		}
		skew(wb).addTo(jac, momentRow(s.B), 3*s.B)

		if s.Clamped {
			return
		}
		_, dtda, dtdb := projectionGradients(pt, p.geom.Nodes[s.A], p.geom.Nodes[s.B])
		p.addWeightTerms(jac, pt, f, s, dtda, 3*s.A)
		p.addWeightTerms(jac, pt, f, s, dtdb, 3*s.B)
	})
	return jac
}

// pointsBlock returns d(RHS)/d(panel reference points), of shape (6n+6) × 3P
func (p *Provider) pointsBlock() *mat.Dense {
	jac := newBlock(p.cfg.RHSLength(), 3*p.cfg.NumPanels())
	if jac.IsEmpty() {
		return jac
	}

	p.eachPanel(func(q int, pt, f r3.Vec, s transfer.Split) {
		col := 3 * q
		wa, wb := weighted(f, s)

		// d(r×W)/dp = -[W]×
		skew(wa).scale(-1).addTo(jac, momentRow(s.A), col)
		if !s.Shared() {
			return
		}
		skew(wb).scale(-1).addTo(jac, momentRow(s.B), col)

		if s.Clamped {
			return
		}
		dtdp, _, _ := projectionGradients(pt, p.geom.Nodes[s.A], p.geom.Nodes[s.B])
		p.addWeightTerms(jac, pt, f, s, dtdp, col)
	})
	return jac
}

// eachPanel visits every panel with its split, in chordwise-major order
func (p *Provider) eachPanel(fn func(q int, pt, f r3.Vec, s transfer.Split)) {
	for i := 0; i < p.cfg.NumChordwise; i++ {
		for j := 0; j < p.cfg.NumSpanwise; j++ {
			q := p.cfg.PanelIndex(i, j)
			pt := p.geom.Points[q]
			fn(q, pt, p.forces[q], transfer.SplitPanel(p.cfg, p.geom.Nodes, j, pt))
		}
	}
}

// addWeightTerms adds the rows produced by a change of the split parameter,
// dt/dx = g, for the input occupying columns col..col+2.
//
// Node A carries (1-t)F and node B carries tF, so their force rows change by
// ∓F gᵀ and their moment rows by ∓(r×F) gᵀ.
func (p *Provider) addWeightTerms(jac *mat.Dense, pt, f r3.Vec, s transfer.Split, g r3.Vec, col int) {
	ra := r3.Sub(pt, p.geom.Nodes[s.A])
	rb := r3.Sub(pt, p.geom.Nodes[s.B])

	outer(f, g).scale(-1).addTo(jac, forceRow(s.A), col)
	outer(f, g).addTo(jac, forceRow(s.B), col)
	outer(r3.Cross(ra, f), g).scale(-1).addTo(jac, momentRow(s.A), col)
	outer(r3.Cross(rb, f), g).addTo(jac, momentRow(s.B), col)
}

// weighted returns the force carried by node A and node B, computed the same
// way as the load transfer
func weighted(f r3.Vec, s transfer.Split) (wa, wb r3.Vec) {
	if !s.Shared() {
		return f, r3.Vec{}
	}
	wb = r3.Scale(s.T, f)
	return r3.Sub(f, wb), wb
}

// projectionGradients returns the gradients of t = ((p-a)·(b-a)) / |b-a|²
// with respect to p, a and b.
func projectionGradients(p, a, b r3.Vec) (dtdp, dtda, dtdb r3.Vec) {
	u := r3.Sub(p, a)
	d := r3.Sub(b, a)
	n := r3.Dot(u, d)
	dd := r3.Dot(d, d)

	dtdp = r3.Scale(1/dd, d)
	dtdb = r3.Sub(r3.Scale(1/dd, u), r3.Scale(2*n/(dd*dd), d))
	dtda = r3.Sub(r3.Scale(2*n/(dd*dd), d), r3.Scale(1/dd, r3.Add(d, u)))
	return dtdp, dtda, dtdb
}

func forceRow(node int) int  { return rhs.DOFPerNode * node }
func momentRow(node int) int { return rhs.DOFPerNode*node + 3 }

// newBlock allocates a zeroed block; an input segment with no entries gives
// an empty matrix
func newBlock(rows, cols int) *mat.Dense {
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, cols, nil)
}

func checked(k Key, jac *mat.Dense) (*mat.Dense, error) {
	if err := checkFinite(k, jac); err != nil {
		return nil, err
	}
	return jac, nil
}

// checkFinite reports the first entry of jac, in row-major order, that is
// NaN or infinite
func checkFinite(k Key, jac *mat.Dense) error {
	if jac.IsEmpty() {
		return nil
	}
	for i, v := range jac.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &transfer.ValueError{Input: k.String(), Index: i}
		}
	}
	return nil
}
