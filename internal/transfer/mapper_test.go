package transfer

import (
	"errors"
	"math"
	"testing"

	"github.com/alexiusacademia/gowing/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func config(t *testing.T, nodes, chordwise, spanwise int, w surface.Weighting) surface.Config {
	t.Helper()
	cfg, err := surface.FromMap(map[string]any{
		surface.KeyNumNodes:  nodes,
		surface.KeyChordwise: chordwise,
		surface.KeySpanwise:  spanwise,
		surface.KeySymmetry:  true,
		surface.KeyWeighting: string(w),
	})
	require.NoError(t, err)
	return cfg
}

// straightSpar places nodes along +y with unit spacing
func straightSpar(n int) []r3.Vec {
	nodes := make([]r3.Vec, n)
	for j := range nodes {
		nodes[j] = r3.Vec{X: 0.35, Y: float64(j)}
	}
	return nodes
}

// stripPoints puts the panel reference points of a linear grid at the strip
// midspan, staggered chordwise
func stripPoints(nc, ns int) []r3.Vec {
	pts := make([]r3.Vec, nc*ns)
	for i := 0; i < nc; i++ {
		for j := 0; j < ns; j++ {
			pts[i*ns+j] = r3.Vec{X: 0.25 + 0.5*float64(i), Y: float64(j) + 0.5, Z: 0.01 * float64(j)}
		}
	}
	return pts
}

func testForces(n int) []r3.Vec {
	fs := make([]r3.Vec, n)
	for k := range fs {
		x := float64(k)
		fs[k] = r3.Vec{X: 0.1 * x, Y: -0.3 + 0.05*x, Z: 10 + 3*math.Sin(x)}
	}
	return fs
}

func TestMapSinglePanelPerStation(t *testing.T) {
	cfg := config(t, 4, 1, 4, surface.Nearest)
	nodes := straightSpar(4)
	forces := make([]r3.Vec, 4)
	for j := range forces {
		forces[j] = r3.Vec{Z: 100}
	}

	loads, err := Map(cfg, Geometry{Nodes: nodes, Points: nodes}, forces)
	require.NoError(t, err)
	require.Len(t, loads, 4)

	for j, l := range loads {
		assert.Equal(t, [6]float64{0, 0, 100, 0, 0, 0}, l.Components(), "node %d", j)
	}
}

func TestMapMomentMatchesCrossProduct(t *testing.T) {
	cfg := config(t, 1, 1, 1, surface.Nearest)
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	f := r3.Vec{X: 4, Y: 5, Z: 6}

	loads, err := Map(cfg, Geometry{Nodes: []r3.Vec{{}}, Points: []r3.Vec{p}}, []r3.Vec{f})
	require.NoError(t, err)

	assert.Equal(t, f, loads[0].Force)
	assert.Equal(t, r3.Vec{X: -3, Y: 6, Z: -3}, loads[0].Moment)
	assert.Equal(t, r3.Cross(p, f), loads[0].Moment)
}

func TestMapZeroForces(t *testing.T) {
	cfg := config(t, 5, 2, 4, surface.Linear)
	geom := Geometry{Nodes: straightSpar(5), Points: stripPoints(2, 4)}

	loads, err := Map(cfg, geom, make([]r3.Vec, 8))
	require.NoError(t, err)
	for _, l := range loads {
		assert.Equal(t, [6]float64{}, l.Components())
	}
}

func TestMapConservesForce(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  surface.Config
		geom Geometry
	}{
		{"linear", config(t, 5, 2, 4, surface.Linear), Geometry{Nodes: straightSpar(5), Points: stripPoints(2, 4)}},
		{"nearest", config(t, 5, 3, 5, surface.Nearest), Geometry{Nodes: straightSpar(5), Points: stripPoints(3, 5)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			forces := testForces(tc.cfg.NumPanels())
			loads, err := Map(tc.cfg, tc.geom, forces)
			require.NoError(t, err)

			want := SumVecs(forces)
			got := TotalForce(loads)
			assert.InDelta(t, want.X, got.X, 1e-12)
			assert.InDelta(t, want.Y, got.Y, 1e-12)
			assert.InDelta(t, want.Z, got.Z, 1e-12)
		})
	}
}

func TestMapLinearSplitsAtMidspan(t *testing.T) {
	cfg := config(t, 2, 1, 1, surface.Linear)
	nodes := []r3.Vec{{}, {Y: 2}}
	p := r3.Vec{X: 0.5, Y: 1}
	f := r3.Vec{Z: 8}

	loads, err := Map(cfg, Geometry{Nodes: nodes, Points: []r3.Vec{p}}, []r3.Vec{f})
	require.NoError(t, err)

	assert.Equal(t, r3.Vec{Z: 4}, loads[0].Force)
	assert.Equal(t, r3.Vec{Z: 4}, loads[1].Force)
	assert.Equal(t, r3.Cross(p, r3.Vec{Z: 4}), loads[0].Moment)
	assert.Equal(t, r3.Cross(r3.Sub(p, nodes[1]), r3.Vec{Z: 4}), loads[1].Moment)
}

func TestSplitPanelClamps(t *testing.T) {
	cfg := config(t, 2, 1, 1, surface.Linear)
	nodes := []r3.Vec{{}, {Y: 1}}

	s := SplitPanel(cfg, nodes, 0, r3.Vec{Y: 1.5})
	assert.True(t, s.Clamped)
	assert.Equal(t, 1.0, s.T)

	s = SplitPanel(cfg, nodes, 0, r3.Vec{Y: -0.5})
	assert.True(t, s.Clamped)
	assert.Equal(t, 0.0, s.T)

	s = SplitPanel(cfg, nodes, 0, r3.Vec{X: 3, Y: 0.25})
	assert.False(t, s.Clamped)
	assert.InDelta(t, 0.25, s.T, 1e-15)
	assert.True(t, s.Shared())
}

func TestMapCoincidentPointAndNode(t *testing.T) {
	cfg := config(t, 2, 1, 1, surface.Linear)
	nodes := []r3.Vec{{}, {Y: 1}}

	// The point sits on node B, so the whole force lands there with no arm
	loads, err := Map(cfg, Geometry{Nodes: nodes, Points: []r3.Vec{{Y: 1}}}, []r3.Vec{{X: 1, Z: 2}})
	require.NoError(t, err)

	assert.Equal(t, r3.Vec{}, loads[0].Force)
	assert.Equal(t, r3.Vec{X: 1, Z: 2}, loads[1].Force)
	assert.Equal(t, r3.Vec{}, loads[1].Moment)
	for _, l := range loads {
		for _, c := range l.Components() {
			assert.False(t, math.IsNaN(c))
		}
	}
}

func TestMapCoincidentNodes(t *testing.T) {
	cfg := config(t, 3, 1, 2, surface.Linear)
	nodes := []r3.Vec{{}, {Y: 1}, {Y: 1}}

	loads, err := Map(cfg, Geometry{Nodes: nodes, Points: stripPoints(1, 2)}, testForces(2))
	assert.Nil(t, loads)

	var cerr *surface.ConfigError
	require.True(t, errors.As(err, &cerr), "expected ConfigError, got %v", err)
	assert.Equal(t, surface.KeyWeighting, cerr.Field)
	assert.Contains(t, err.Error(), "nodes 1 and 2")
}

func TestMapDimensionErrors(t *testing.T) {
	cfg := config(t, 5, 2, 4, surface.Linear)
	good := Geometry{Nodes: straightSpar(5), Points: stripPoints(2, 4)}

	tests := []struct {
		name   string
		geom   Geometry
		forces []r3.Vec
		input  string
		want   int
		got    int
	}{
		{"short forces", good, testForces(7), InputForces, 8, 7},
		{"empty forces", good, nil, InputForces, 8, 0},
		{"long points", Geometry{Nodes: good.Nodes, Points: stripPoints(2, 5)}, testForces(8), InputPoints, 8, 10},
		{"missing node", Geometry{Nodes: straightSpar(4), Points: good.Points}, testForces(8), InputNodes, 5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loads, err := Map(cfg, tt.geom, tt.forces)
			assert.Nil(t, loads)

			var derr *DimensionError
			require.True(t, errors.As(err, &derr), "expected DimensionError, got %v", err)
			assert.Equal(t, tt.input, derr.Input)
			assert.Equal(t, tt.want, derr.Want)
			assert.Equal(t, tt.got, derr.Got)
		})
	}
}

func TestMapRejectsNonFinite(t *testing.T) {
	cfg := config(t, 5, 2, 4, surface.Linear)
	forces := testForces(8)
	forces[3].Y = math.NaN()

	loads, err := Map(cfg, Geometry{Nodes: straightSpar(5), Points: stripPoints(2, 4)}, forces)
	assert.Nil(t, loads)

	var verr *ValueError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, InputForces, verr.Input)
	assert.Equal(t, 3, verr.Index)
}

func TestMapRejectsOverflowingSegment(t *testing.T) {
	cfg := config(t, 2, 1, 1, surface.Linear)
	geom := Geometry{
		Nodes:  []r3.Vec{{}, {Y: 1e200}},
		Points: []r3.Vec{{Y: 5e199}},
	}

	loads, err := Map(cfg, geom, []r3.Vec{{Z: 1}})
	assert.Nil(t, loads)

	var cerr *surface.ConfigError
	require.True(t, errors.As(err, &cerr), "expected ConfigError, got %v", err)
	assert.Equal(t, surface.KeyWeighting, cerr.Field)
	assert.Contains(t, err.Error(), "nodes 0 and 1")
}

func TestMapRejectsOverflowingMoment(t *testing.T) {
	cfg := config(t, 2, 1, 1, surface.Linear)
	geom := Geometry{
		Nodes:  []r3.Vec{{}, {Y: 1}},
		Points: []r3.Vec{{X: 1e300, Y: 0.5}},
	}

	loads, err := Map(cfg, geom, []r3.Vec{{Z: 1e300}})
	assert.Nil(t, loads)

	var verr *ValueError
	require.True(t, errors.As(err, &verr), "expected ValueError, got %v", err)
	assert.Equal(t, InputLoads, verr.Input)
	assert.Equal(t, 0, verr.Index)
}

func TestMapEmptyGrid(t *testing.T) {
	cfg := config(t, 3, 0, 2, surface.Linear)

	loads, err := Map(cfg, Geometry{Nodes: straightSpar(3)}, nil)
	require.NoError(t, err)
	require.Len(t, loads, 3)
	for _, l := range loads {
		assert.Equal(t, NodeLoad{}, l)
	}
}

func TestMapDoesNotMutateInputs(t *testing.T) {
	cfg := config(t, 5, 2, 4, surface.Linear)
	geom := Geometry{Nodes: straightSpar(5), Points: stripPoints(2, 4)}
	forces := testForces(8)

	nodes := append([]r3.Vec(nil), geom.Nodes...)
	points := append([]r3.Vec(nil), geom.Points...)
	fs := append([]r3.Vec(nil), forces...)

	_, err := Map(cfg, geom, forces)
	require.NoError(t, err)
	assert.Equal(t, nodes, geom.Nodes)
	assert.Equal(t, points, geom.Points)
	assert.Equal(t, fs, forces)
}
