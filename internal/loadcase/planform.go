package loadcase

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gowing/internal/surface"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"gonum.org/v1/gonum/spatial/r3"
)

// Planform describes a straight-tapered, swept half wing with its root at
// y = 0 and its tip at y = SemiSpan
type Planform struct {
	SemiSpan  float64 `yaml:"semi_span"`  // m
	RootChord float64 `yaml:"root_chord"` // m
	TipChord  float64 `yaml:"tip_chord"`  // m, defaults to the root chord
	Sweep     float64 `yaml:"sweep"`      // leading-edge sweep (deg)
	Dihedral  float64 `yaml:"dihedral"`   // deg
}

// Validate checks the planform dimensions
func (p Planform) Validate() error {
	if p.SemiSpan <= 0 {
		return fmt.Errorf("invalid planform: semi_span=%.3f", p.SemiSpan)
	}
	if p.RootChord <= 0 || p.TipChord < 0 {
		return fmt.Errorf("invalid planform chords: root=%.3f, tip=%.3f", p.RootChord, p.TipChord)
	}
	if math.Abs(p.Sweep) >= 90 || math.Abs(p.Dihedral) >= 90 {
		return fmt.Errorf("invalid planform angles: sweep=%.1f, dihedral=%.1f", p.Sweep, p.Dihedral)
	}
	return nil
}

func (p Planform) chord(y float64) float64 {
	tip := p.TipChord
	if tip == 0 {
		tip = p.RootChord
	}
	return p.RootChord + (tip-p.RootChord)*y/p.SemiSpan
}

// leadingEdge returns the leading-edge point of the section at span y
func (p Planform) leadingEdge(y float64) r3.Vec {
	rad := math.Pi / 180
	return r3.Vec{X: y * math.Tan(p.Sweep*rad), Y: y, Z: y * math.Tan(p.Dihedral*rad)}
}

// stations returns the spanwise node locations, root to tip
func (p Planform) stations(n int) []float64 {
	ys := make([]float64, n)
	if n == 1 {
		return ys
	}
	for j := range ys {
		ys[j] = p.SemiSpan * float64(j) / float64(n-1)
	}
	return ys
}

// stripCentres returns the spanwise location and width of each strip
func (p Planform) stripCentres(cfg surface.Config) (ys, widths []float64) {
	st := p.stations(cfg.NumNodes)
	ys = make([]float64, cfg.NumSpanwise)
	widths = make([]float64, cfg.NumSpanwise)

	for j := range ys {
		if cfg.Weighting == surface.Linear {
			ys[j] = (st[j] + st[j+1]) / 2
			widths[j] = st[j+1] - st[j]
			continue
		}

		// Nearest: strips are centred on the nodes with tributary widths
		ys[j] = st[j]
		switch {
		case len(st) == 1:
			widths[j] = p.SemiSpan
		case j == 0:
			widths[j] = (st[1] - st[0]) / 2
		case j == len(st)-1:
			widths[j] = (st[j] - st[j-1]) / 2
		default:
			widths[j] = (st[j+1] - st[j-1]) / 2
		}
	}
	return ys, widths
}

// Geometry lays out the spar nodes at the configured chord fraction and the
// panel reference points at each panel's quarter chord.
func (p Planform) Geometry(cfg surface.Config) (transfer.Geometry, error) {
	if err := p.Validate(); err != nil {
		return transfer.Geometry{}, err
	}
	if err := cfg.Validate(); err != nil {
		return transfer.Geometry{}, err
	}

	geom := transfer.Geometry{
		Nodes:  make([]r3.Vec, cfg.NumNodes),
		Points: make([]r3.Vec, cfg.NumPanels()),
	}

	for j, y := range p.stations(cfg.NumNodes) {
		geom.Nodes[j] = r3.Add(p.leadingEdge(y), r3.Vec{X: cfg.FEMOrigin * p.chord(y)})
	}

	ys, _ := p.stripCentres(cfg)
	for i := 0; i < cfg.NumChordwise; i++ {
		for j, y := range ys {
			frac := (float64(i) + 0.25) / float64(cfg.NumChordwise)
			geom.Points[cfg.PanelIndex(i, j)] = r3.Add(p.leadingEdge(y), r3.Vec{X: frac * p.chord(y)})
		}
	}

	return geom, nil
}

// Distribution names a spanwise lift shape
type Distribution string

const (
	Elliptic Distribution = "elliptic"
	Uniform  Distribution = "uniform"
)

// Lift describes a synthetic aerodynamic load
type Lift struct {
	Distribution Distribution `yaml:"distribution"`
	Total        float64      `yaml:"total"`      // N, on this surface
	DragRatio    float64      `yaml:"drag_ratio"` // streamwise force per unit lift
}

// Forces spreads the total lift over the strips by the chosen distribution
// and evenly over the chordwise panels of each strip.
func (l Lift) Forces(cfg surface.Config, p Planform) ([]r3.Vec, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	forces := make([]r3.Vec, cfg.NumPanels())
	if len(forces) == 0 {
		return forces, nil
	}

	ys, widths := p.stripCentres(cfg)
	weights := make([]float64, len(ys))
	var sum float64
	for j, y := range ys {
		switch l.Distribution {
		case Elliptic, "":
			eta := y / p.SemiSpan
			weights[j] = math.Sqrt(math.Max(0, 1-eta*eta)) * widths[j]
		case Uniform:
			weights[j] = widths[j]
		default:
			return nil, fmt.Errorf("unknown lift distribution %q", l.Distribution)
		}
		sum += weights[j]
	}
	if sum == 0 {
		return nil, fmt.Errorf("lift distribution %q has no area on this planform", l.Distribution)
	}

	for i := 0; i < cfg.NumChordwise; i++ {
		for j, w := range weights {
			fz := l.Total * w / sum / float64(cfg.NumChordwise)
			forces[cfg.PanelIndex(i, j)] = r3.Vec{X: l.DragRatio * fz, Z: fz}
		}
	}
	return forces, nil
}
