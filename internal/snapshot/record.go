package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind tags what an iteration carries
type Kind string

const (
	Structural  Kind = "structural"
	Aerodynamic Kind = "aerodynamic"
	Coupled     Kind = "coupled"
)

// HasStructure reports whether iterations of this kind carry spar data
func (k Kind) HasStructure() bool { return k == Structural || k == Coupled }

// HasAero reports whether iterations of this kind carry aerodynamic data
func (k Kind) HasAero() bool { return k == Aerodynamic || k == Coupled }

// Record is one optimizer iteration as written by the analysis. The mesh is
// indexed [chordwise][spanwise]; spar and strip arrays have one entry per
// spanwise element, twist one per spanwise station.
type Record struct {
	Mesh [][][3]float64 `json:"mesh"`

	Radius    []float64 `json:"r,omitempty"`
	Thickness []float64 `json:"t,omitempty"`
	VonMises  []float64 `json:"vonmises,omitempty"`

	Twist     []float64    `json:"twist,omitempty"`
	SecForces [][3]float64 `json:"sec_forces,omitempty"`
	Normals   [][3]float64 `json:"normals,omitempty"`
	CosDih    []float64    `json:"cos_dih,omitempty"`
}

func (r Record) structureFields() (present, total int) {
	for _, ok := range []bool{r.Radius != nil, r.Thickness != nil, r.VonMises != nil} {
		if ok {
			present++
		}
	}
	return present, 3
}

func (r Record) aeroFields() (present, total int) {
	for _, ok := range []bool{r.Twist != nil, r.SecForces != nil, r.Normals != nil, r.CosDih != nil} {
		if ok {
			present++
		}
	}
	return present, 4
}

// Kind resolves the record's tag from the groups of fields it carries. A
// group must be complete or absent.
func (r Record) Kind() (Kind, error) {
	sp, st := r.structureFields()
	ap, at := r.aeroFields()

	if sp != 0 && sp != st {
		return "", fmt.Errorf("incomplete structural data: need r, t and vonmises")
	}
	if ap != 0 && ap != at {
		return "", fmt.Errorf("incomplete aerodynamic data: need twist, sec_forces, normals and cos_dih")
	}

	switch {
	case sp > 0 && ap > 0:
		return Coupled, nil
	case sp > 0:
		return Structural, nil
	case ap > 0:
		return Aerodynamic, nil
	}
	return "", fmt.Errorf("record carries neither structural nor aerodynamic data")
}

var structureNames = [...]string{"r", "t", "vonmises"}

// Iteration is a resolved, validated record
type Iteration struct {
	Index int
	Kind  Kind
	Mesh  [][]r3.Vec // [chordwise][spanwise]

	Structure *Structure // set when Kind.HasStructure()
	Aero      *Aero      // set when Kind.HasAero()
}

// Structure holds the spar state of an iteration, one entry per element
type Structure struct {
	Radius    []float64
	Thickness []float64
	VonMises  []float64
}

// Aero holds the aerodynamic state of an iteration
type Aero struct {
	Twist []float64 // per spanwise station
	Lift  []float64 // per strip, Fz / nz · cos_dih
}

// NumStations returns the number of spanwise mesh stations
func (it Iteration) NumStations() int {
	if len(it.Mesh) == 0 {
		return 0
	}
	return len(it.Mesh[0])
}

// Resolve validates a record and builds its iteration
func Resolve(index int, r Record) (Iteration, error) {
	kind, err := r.Kind()
	if err != nil {
		return Iteration{}, fmt.Errorf("iteration %d: %w", index, err)
	}

	it := Iteration{Index: index, Kind: kind}
	if it.Mesh, err = mesh(r.Mesh); err != nil {
		return Iteration{}, fmt.Errorf("iteration %d: %w", index, err)
	}
	ny := it.NumStations()

	if kind.HasStructure() {
		for k, vs := range [][]float64{r.Radius, r.Thickness, r.VonMises} {
			if len(vs) != ny-1 {
				return Iteration{}, fmt.Errorf("iteration %d: %s has %d entries, mesh implies %d",
					index, structureNames[k], len(vs), ny-1)
			}
		}
		it.Structure = &Structure{
			Radius:    clone(r.Radius),
			Thickness: clone(r.Thickness),
			VonMises:  clone(r.VonMises),
		}
	}

	if kind.HasAero() {
		if len(r.Twist) != ny {
			return Iteration{}, fmt.Errorf("iteration %d: twist has %d entries, mesh implies %d", index, len(r.Twist), ny)
		}
		lift, err := Lift(r.SecForces, r.Normals, r.CosDih)
		if err != nil {
			return Iteration{}, fmt.Errorf("iteration %d: %w", index, err)
		}
		if len(lift) != ny-1 {
			return Iteration{}, fmt.Errorf("iteration %d: %d strips, mesh implies %d", index, len(lift), ny-1)
		}
		it.Aero = &Aero{Twist: clone(r.Twist), Lift: lift}
	}

	return it, nil
}

// Lift derives the spanwise lift of each strip from its section force, panel
// normal and dihedral cosine.
func Lift(secForces, normals [][3]float64, cosDih []float64) ([]float64, error) {
	if len(normals) != len(secForces) || len(cosDih) != len(secForces) {
		return nil, fmt.Errorf("sec_forces, normals and cos_dih lengths differ: %d, %d, %d",
			len(secForces), len(normals), len(cosDih))
	}
	lift := make([]float64, len(secForces))
	for j := range lift {
		nz := normals[j][2]
		if nz == 0 {
			return nil, fmt.Errorf("strip %d has a vertical normal component of zero", j)
		}
		lift[j] = secForces[j][2] / nz * cosDih[j]
	}
	return lift, nil
}

func mesh(m [][][3]float64) ([][]r3.Vec, error) {
	if len(m) < 2 || len(m[0]) < 2 {
		return nil, fmt.Errorf("mesh needs at least 2 chordwise and 2 spanwise points")
	}
	ny := len(m[0])
	out := make([][]r3.Vec, len(m))
	for i, row := range m {
		if len(row) != ny {
			return nil, fmt.Errorf("mesh row %d has %d points, want %d", i, len(row), ny)
		}
		out[i] = make([]r3.Vec, ny)
		for j, p := range row {
			for _, c := range p {
				if math.IsNaN(c) || math.IsInf(c, 0) {
					return nil, fmt.Errorf("mesh point (%d, %d) is not finite", i, j)
				}
			}
			out[i][j] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
		}
	}
	return out, nil
}

func clone(vs []float64) []float64 {
	return append([]float64(nil), vs...)
}

// LoadRecords reads a JSON array of records from a file
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read iterations: %w", err)
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to parse iterations: %w", err)
	}
	return recs, nil
}
