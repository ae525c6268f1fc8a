package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// wing returns a 2 x 3 mesh record; scale changes every value so iterations
// can be told apart.
func wing(kind Kind, scale float64) Record {
	r := Record{
		Mesh: [][][3]float64{
			{{0, 0, 0}, {0.2, 5, 0}, {0.4, 10, 0}},
			{{2, 0, 0}, {2.1, 5, 0}, {2.2, 10, 0}},
		},
	}
	if kind.HasStructure() {
		r.Radius = []float64{0.3 * scale, 0.2 * scale}
		r.Thickness = []float64{0.02 * scale, 0.01 * scale}
		r.VonMises = []float64{1e8 * scale, 5e7 * scale}
	}
	if kind.HasAero() {
		r.Twist = []float64{2 * scale, 1 * scale, 0}
		r.SecForces = [][3]float64{{10, 0, 900 * scale}, {5, 0, 400 * scale}}
		r.Normals = [][3]float64{{0, 0, 1}, {0, 0.1, 0.5}}
		r.CosDih = []float64{1, 0.5}
	}
	return r
}

func TestRecordKind(t *testing.T) {
	for _, k := range []Kind{Structural, Aerodynamic, Coupled} {
		got, err := wing(k, 1).Kind()
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	r := wing(Coupled, 1)
	r.Normals = nil
	_, err := r.Kind()
	assert.ErrorContains(t, err, "incomplete aerodynamic")

	r = wing(Structural, 1)
	r.VonMises = nil
	_, err = r.Kind()
	assert.ErrorContains(t, err, "incomplete structural")

	_, err = Record{Mesh: wing(Coupled, 1).Mesh}.Kind()
	assert.ErrorContains(t, err, "neither")
}

func TestResolve(t *testing.T) {
	it, err := Resolve(3, wing(Coupled, 1))
	require.NoError(t, err)

	assert.Equal(t, 3, it.Index)
	assert.Equal(t, 3, it.NumStations())
	assert.Equal(t, r3.Vec{X: 2.1, Y: 5}, it.Mesh[1][1])
	require.NotNil(t, it.Structure)
	require.NotNil(t, it.Aero)

	// 900 / 1 * 1, 400 / 0.5 * 0.5
	assert.InDeltaSlice(t, []float64{900, 400}, it.Aero.Lift, 1e-12)

	it, err = Resolve(0, wing(Structural, 1))
	require.NoError(t, err)
	assert.Nil(t, it.Aero)
	assert.Equal(t, []float64{0.3, 0.2}, it.Structure.Radius)
}

func TestResolveRejectsInconsistentRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"short mesh", func(r *Record) { r.Mesh = r.Mesh[:1] }},
		{"ragged mesh", func(r *Record) { r.Mesh[1] = r.Mesh[1][:2] }},
		{"radius length", func(r *Record) { r.Radius = []float64{1} }},
		{"twist length", func(r *Record) { r.Twist = []float64{1, 2} }},
		{"strip count", func(r *Record) {
			r.SecForces = r.SecForces[:1]
			r.Normals = r.Normals[:1]
			r.CosDih = r.CosDih[:1]
		}},
		{"zero normal", func(r *Record) { r.Normals[1] = [3]float64{1, 0, 0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := wing(Coupled, 1)
			tt.mutate(&r)
			_, err := Resolve(0, r)
			assert.Error(t, err)
		})
	}
}

func TestLift(t *testing.T) {
	lift, err := Lift(
		[][3]float64{{0, 0, 10}, {0, 0, -4}},
		[][3]float64{{0, 0, 2}, {0, 0, 0.5}},
		[]float64{1, 0.5},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, -4}, lift)

	_, err = Lift([][3]float64{{0, 0, 1}}, nil, []float64{1})
	assert.Error(t, err)

	_, err = Lift([][3]float64{{0, 0, 1}}, [][3]float64{{1, 0, 0}}, []float64{1})
	assert.ErrorContains(t, err, "strip 0")
}

func TestHistoryIsReadOnly(t *testing.T) {
	h, err := NewHistory("run", []Record{wing(Coupled, 1), wing(Structural, 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []Kind{Coupled, Structural}, h.Kinds())

	it, err := h.At(0)
	require.NoError(t, err)
	it.Mesh[0][0] = r3.Vec{X: 99}
	it.Aero.Lift[0] = -1
	it.Structure.Radius[0] = -1

	again, err := h.At(0)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{}, again.Mesh[0][0])
	assert.Equal(t, 900.0, again.Aero.Lift[0])
	assert.Equal(t, 0.3, again.Structure.Radius[0])

	_, err = h.At(2)
	assert.Error(t, err)
	_, err = h.At(-1)
	assert.Error(t, err)
}

func TestNewHistoryReportsBadIteration(t *testing.T) {
	bad := wing(Coupled, 1)
	bad.CosDih = nil
	_, err := NewHistory("run", []Record{wing(Coupled, 1), bad})
	assert.ErrorContains(t, err, "iteration 1")
}
