package surface

import (
	"fmt"

	"github.com/alexiusacademia/gowing/internal/material"
)

// Weighting selects how a spanwise strip of panels is shared between nodes
type Weighting string

const (
	// Nearest maps strip j wholly onto node j; strips and nodes coincide.
	Nearest Weighting = "nearest"

	// Linear splits strip j between nodes j and j+1 by projecting each panel
	// reference point onto the node segment; strips sit between nodes.
	Linear Weighting = "linear"
)

// Recognised configuration keys
const (
	KeyName      = "name"
	KeyNumNodes  = "num_nodes"
	KeyChordwise = "num_chordwise_panels"
	KeySpanwise  = "num_spanwise_panels"
	KeySymmetry  = "symmetry"
	KeyWeighting = "weighting"
	KeyFEMOrigin = "fem_origin"
	KeyE         = "E"
	KeyG         = "G"
	KeyYield     = "yield"
	KeyMrho      = "mrho"
)

const (
	defaultName   = "wing"
	dofsPerNode   = 6
	constraintDOF = 6
)

// Config is the immutable discretization of one wing surface.
//
// Panels form a chordwise-by-spanwise grid; nodes run root to tip along the
// structural spar, one per spanwise station.
type Config struct {
	Name         string
	NumNodes     int
	NumChordwise int
	NumSpanwise  int
	Symmetry     bool // half-wing: panels describe one side only
	Weighting    Weighting
	FEMOrigin    float64 // spar location as a fraction of the chord
	Material     material.Properties
}

// NumPanels returns the total number of aerodynamic panels
func (c Config) NumPanels() int {
	return c.NumChordwise * c.NumSpanwise
}

// PanelIndex returns the flat index of panel (chordwise i, spanwise j)
func (c Config) PanelIndex(i, j int) int {
	return i*c.NumSpanwise + j
}

// NumDOF returns the number of load rows, excluding constraint padding
func (c Config) NumDOF() int {
	return dofsPerNode * c.NumNodes
}

// RHSLength returns the length of the augmented load vector
func (c Config) RHSLength() int {
	return c.NumDOF() + constraintDOF
}

// Validate checks counts and their consistency with the weighting strategy
func (c Config) Validate() error {
	if c.NumNodes < 1 {
		return &ConfigError{Field: KeyNumNodes, Msg: fmt.Sprintf("must be at least 1, got %d", c.NumNodes)}
	}
	if c.NumChordwise < 0 {
		return &ConfigError{Field: KeyChordwise, Msg: fmt.Sprintf("must not be negative, got %d", c.NumChordwise)}
	}
	if c.NumSpanwise < 0 {
		return &ConfigError{Field: KeySpanwise, Msg: fmt.Sprintf("must not be negative, got %d", c.NumSpanwise)}
	}
	if c.FEMOrigin < 0 || c.FEMOrigin > 1 {
		return &ConfigError{Field: KeyFEMOrigin, Msg: fmt.Sprintf("must lie in [0, 1], got %g", c.FEMOrigin)}
	}
	if err := c.Material.Validate(); err != nil {
		return &ConfigError{Field: "material", Msg: err.Error()}
	}

	// An empty grid carries no load and fits any node layout
	if c.NumSpanwise == 0 {
		if c.Weighting != Nearest && c.Weighting != Linear {
			return &ConfigError{Field: KeyWeighting, Msg: fmt.Sprintf("unknown strategy %q", c.Weighting)}
		}
		return nil
	}

	switch c.Weighting {
	case Nearest:
		if c.NumSpanwise != c.NumNodes {
			return &ConfigError{
				Field: KeySpanwise,
				Msg:   fmt.Sprintf("nearest weighting needs one strip per node: %d strips, %d nodes", c.NumSpanwise, c.NumNodes),
			}
		}
	case Linear:
		if c.NumNodes < 2 {
			return &ConfigError{Field: KeyNumNodes, Msg: "linear weighting needs at least 2 nodes"}
		}
		if c.NumSpanwise != c.NumNodes-1 {
			return &ConfigError{
				Field: KeySpanwise,
				Msg:   fmt.Sprintf("linear weighting needs one strip between each node pair: %d strips, %d nodes", c.NumSpanwise, c.NumNodes),
			}
		}
	default:
		return &ConfigError{Field: KeyWeighting, Msg: fmt.Sprintf("unknown strategy %q", c.Weighting)}
	}

	return nil
}

// ConfigError reports a missing, malformed or inconsistent configuration field
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("surface config: %s: %s", e.Field, e.Msg)
}
