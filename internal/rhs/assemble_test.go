package rhs

import (
	"errors"
	"math"
	"testing"

	"github.com/alexiusacademia/gowing/internal/surface"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func wing(t *testing.T, nodes, chordwise, spanwise int) surface.Config {
	t.Helper()
	cfg, err := surface.FromMap(map[string]any{
		surface.KeyNumNodes:  nodes,
		surface.KeyChordwise: chordwise,
		surface.KeySpanwise:  spanwise,
		surface.KeySymmetry:  true,
	})
	require.NoError(t, err)
	return cfg
}

// linearGeometry builds a straight spar along +y with panel reference points
// at quarter chord and strip midspan
func linearGeometry(nodes, chordwise int) transfer.Geometry {
	ns := nodes - 1
	g := transfer.Geometry{
		Nodes:  make([]r3.Vec, nodes),
		Points: make([]r3.Vec, chordwise*ns),
	}
	for j := range g.Nodes {
		g.Nodes[j] = r3.Vec{X: 0.35, Y: 1.5 * float64(j), Z: 0.02 * float64(j)}
	}
	for i := 0; i < chordwise; i++ {
		for j := 0; j < ns; j++ {
			g.Points[i*ns+j] = r3.Vec{X: (float64(i) + 0.25) / float64(chordwise), Y: 1.5 * (float64(j) + 0.5), Z: 0.01}
		}
	}
	return g
}

func panelForces(n int) []r3.Vec {
	fs := make([]r3.Vec, n)
	for k := range fs {
		x := float64(k + 1)
		fs[k] = r3.Vec{X: -0.2 * x, Y: 0.1, Z: 50 + 7*math.Cos(x)}
	}
	return fs
}

func TestBuildFourNodeScenario(t *testing.T) {
	cfg := wing(t, 4, 1, 4)
	require.Equal(t, surface.Nearest, cfg.Weighting)

	nodes := []r3.Vec{{}, {Y: 1}, {Y: 2}, {Y: 3}}
	forces := []r3.Vec{{Z: 100}, {Z: 100}, {Z: 100}, {Z: 100}}

	v, loads, err := Build(cfg, transfer.Geometry{Nodes: nodes, Points: nodes}, forces)
	require.NoError(t, err)
	require.Len(t, loads, 4)

	want := make([]float64, 30)
	for j := 0; j < 4; j++ {
		want[6*j+2] = 100
	}
	assert.Equal(t, 30, v.Len())
	assert.Equal(t, want, v.RawVector().Data)
}

func TestBuildLengthAndConstraintRows(t *testing.T) {
	for _, n := range []int{2, 3, 5, 9} {
		cfg := wing(t, n, 3, n-1)
		v, _, err := Build(cfg, linearGeometry(n, 3), panelForces(cfg.NumPanels()))
		require.NoError(t, err)

		assert.Equal(t, 6*n+6, v.Len())
		assert.Equal(t, cfg.RHSLength(), v.Len())
		c := Constraints(v)
		for i := 0; i < c.Len(); i++ {
			assert.Equal(t, 0.0, c.AtVec(i))
		}
	}
}

func TestBuildZeroForcesGivesZeroVector(t *testing.T) {
	cfg := wing(t, 5, 2, 4)
	v, _, err := Build(cfg, linearGeometry(5, 2), make([]r3.Vec, 8))
	require.NoError(t, err)

	assert.True(t, mat.Equal(v, mat.NewVecDense(36, nil)))
}

func TestBuildConservesForce(t *testing.T) {
	cfg := wing(t, 6, 3, 5)
	forces := panelForces(cfg.NumPanels())
	v, _, err := Build(cfg, linearGeometry(6, 3), forces)
	require.NoError(t, err)

	data := v.RawVector().Data
	want := transfer.SumVecs(forces)
	for c, w := range []float64{want.X, want.Y, want.Z} {
		var col []float64
		for i := 0; i < cfg.NumNodes; i++ {
			col = append(col, data[6*i+c])
		}
		assert.InDelta(t, w, floats.Sum(col), 1e-10, "component %d", c)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	cfg := wing(t, 5, 2, 4)
	geom := linearGeometry(5, 2)
	forces := panelForces(8)

	a, _, err := Build(cfg, geom, forces)
	require.NoError(t, err)
	b, _, err := Build(cfg, geom, forces)
	require.NoError(t, err)

	ad, bd := a.RawVector().Data, b.RawVector().Data
	require.Equal(t, len(ad), len(bd))
	for i := range ad {
		assert.Equal(t, math.Float64bits(ad[i]), math.Float64bits(bd[i]), "entry %d", i)
	}
	assert.NotSame(t, &ad[0], &bd[0])
}

func TestBuildDimensionMismatch(t *testing.T) {
	cfg := wing(t, 5, 2, 4)
	v, loads, err := Build(cfg, linearGeometry(5, 2), panelForces(9))

	assert.Nil(t, v)
	assert.Nil(t, loads)
	var derr *transfer.DimensionError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, transfer.InputForces, derr.Input)
}

func TestSplitRecoversNodeLoads(t *testing.T) {
	cfg := wing(t, 4, 2, 3)
	v, loads, err := Build(cfg, linearGeometry(4, 2), panelForces(6))
	require.NoError(t, err)

	back, err := Split(v)
	require.NoError(t, err)
	assert.Equal(t, loads, back)

	_, err = Split(mat.NewVecDense(13, nil))
	assert.Error(t, err)
}

func TestAssembleEmpty(t *testing.T) {
	v := Assemble(nil)
	assert.Equal(t, ConstraintRows, v.Len())
}

func TestBuildNeverReturnsNonFiniteEntries(t *testing.T) {
	cfg := wing(t, 2, 1, 1)

	tests := []struct {
		name  string
		geom  transfer.Geometry
		force r3.Vec
	}{
		{"segment length overflows", transfer.Geometry{
			Nodes:  []r3.Vec{{}, {Y: 1e200}},
			Points: []r3.Vec{{Y: 5e199}},
		}, r3.Vec{Z: 1}},
		{"moment overflows", transfer.Geometry{
			Nodes:  []r3.Vec{{}, {Y: 1}},
			Points: []r3.Vec{{X: 1e300, Y: 0.5}},
		}, r3.Vec{Z: 1e300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, loads, err := Build(cfg, tt.geom, []r3.Vec{tt.force})
			assert.Error(t, err)
			assert.Nil(t, v)
			assert.Nil(t, loads)
		})
	}
}
