package loadcase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexiusacademia/gowing/internal/rhs"
	"github.com/alexiusacademia/gowing/internal/surface"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a load case.
//
// Geometry and forces are given either explicitly (nodes, points, forces) or
// generated from a planform and a lift distribution.
type File struct {
	Name     string         `yaml:"name"`
	Surface  map[string]any `yaml:"surface"`
	Nodes    [][]float64    `yaml:"nodes,omitempty"`
	Points   [][]float64    `yaml:"points,omitempty"`
	Forces   [][]float64    `yaml:"forces,omitempty"`
	Planform *Planform      `yaml:"planform,omitempty"`
	Lift     *Lift          `yaml:"lift,omitempty"`
}

// Load reads a YAML or JSON load case file. The case is named after the
// file when the document does not name it.
func Load(path string) (rhs.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rhs.Case{}, fmt.Errorf("failed to read load case: %w", err)
	}

	c, err := Decode(data)
	if err != nil {
		return rhs.Case{}, fmt.Errorf("%s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// Decode parses a load case document
func Decode(data []byte) (rhs.Case, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return rhs.Case{}, fmt.Errorf("failed to parse load case: %w", err)
	}
	return f.Case()
}

// Case validates the file and resolves it into a load case
func (f File) Case() (rhs.Case, error) {
	if f.Surface == nil {
		return rhs.Case{}, &surface.ConfigError{Field: "surface", Msg: "missing required section"}
	}
	cfg, err := surface.FromMap(f.Surface)
	if err != nil {
		return rhs.Case{}, err
	}

	c := rhs.Case{Name: f.Name, Config: cfg}
	if _, named := f.Surface[surface.KeyName]; c.Name == "" && named {
		c.Name = cfg.Name
	}

	explicit := f.Nodes != nil || f.Points != nil || f.Forces != nil
	generated := f.Planform != nil || f.Lift != nil

	switch {
	case explicit && generated:
		return rhs.Case{}, fmt.Errorf("load case gives both explicit arrays and a planform")
	case generated:
		if f.Planform == nil || f.Lift == nil {
			return rhs.Case{}, fmt.Errorf("generated load case needs both planform and lift")
		}
		if c.Geometry, err = f.Planform.Geometry(cfg); err != nil {
			return rhs.Case{}, err
		}
		if c.Forces, err = f.Lift.Forces(cfg, *f.Planform); err != nil {
			return rhs.Case{}, err
		}
	default:
		if c.Geometry.Nodes, err = vectors(transfer.InputNodes, f.Nodes); err != nil {
			return rhs.Case{}, err
		}
		if c.Geometry.Points, err = vectors(transfer.InputPoints, f.Points); err != nil {
			return rhs.Case{}, err
		}
		if c.Forces, err = vectors(transfer.InputForces, f.Forces); err != nil {
			return rhs.Case{}, err
		}
	}

	if err := transfer.Check(c.Config, c.Geometry, c.Forces); err != nil {
		return rhs.Case{}, err
	}
	return c, nil
}

// fromCase converts a resolved case back into its explicit file form
func fromCase(c rhs.Case) File {
	return File{
		Name:    c.Name,
		Surface: c.Config.Map(),
		Nodes:   rows(c.Geometry.Nodes),
		Points:  rows(c.Geometry.Points),
		Forces:  rows(c.Forces),
	}
}

// Save writes the case as an explicit YAML load case file
func Save(path string, c rhs.Case) error {
	data, err := yaml.Marshal(fromCase(c))
	if err != nil {
		return fmt.Errorf("failed to encode load case: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func vectors(input string, rs [][]float64) ([]r3.Vec, error) {
	vs := make([]r3.Vec, len(rs))
	for i, r := range rs {
		if len(r) != 3 {
			return nil, fmt.Errorf("%s[%d]: %w", input, i, &transfer.DimensionError{Input: input + " row", Want: 3, Got: len(r)})
		}
		vs[i] = r3.Vec{X: r[0], Y: r[1], Z: r[2]}
	}
	return vs, nil
}

func rows(vs []r3.Vec) [][]float64 {
	rs := make([][]float64, len(vs))
	for i, v := range vs {
		rs[i] = []float64{v.X, v.Y, v.Z}
	}
	return rs
}
