package viewer

import (
	"math"
	"testing"

	"github.com/alexiusacademia/gowing/internal/material"
	"github.com/alexiusacademia/gowing/internal/snapshot"
	"github.com/alexiusacademia/gowing/internal/spar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func record(structure, aero bool, scale float64) snapshot.Record {
	r := snapshot.Record{
		Mesh: [][][3]float64{
			{{0, 0, 0}, {0, 5, 0}, {0, 10, 0}},
			{{2, 0, 0}, {2, 5, 0}, {2, 10, 0}},
		},
	}
	if structure {
		r.Radius = []float64{0.3, 0.2}
		r.Thickness = []float64{0.04 * scale, 0.01 * scale}
		r.VonMises = []float64{1e8, 5e7}
	}
	if aero {
		r.Twist = []float64{2, 1, 0}
		r.SecForces = [][3]float64{{0, 0, 900 * scale}, {0, 0, 400 * scale}}
		r.Normals = [][3]float64{{0, 0, 1}, {0, 0, 1}}
		r.CosDih = []float64{1, 1}
	}
	return r
}

func history(t *testing.T, recs ...snapshot.Record) *snapshot.History {
	t.Helper()
	h, err := snapshot.NewHistory("test", recs)
	require.NoError(t, err)
	return h
}

func series(sc Scene, name string) *Series {
	for i := range sc.Series {
		if sc.Series[i].Name == name {
			return &sc.Series[i]
		}
	}
	return nil
}

func TestRenderCoupled(t *testing.T) {
	h := history(t, record(true, true, 1), record(true, true, 2))

	sc, err := Render(State{Iteration: 1}, h, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Iteration: 1", sc.Title)
	// 2 chordwise rows + 3 spanwise lines
	assert.Len(t, sc.Wireframe, 5)
	assert.Equal(t, r3.Vec{}, sc.Min)
	assert.Equal(t, r3.Vec{X: 2, Y: 10}, sc.Max)

	twist := series(sc, SeriesTwist)
	require.NotNil(t, twist)
	assert.Equal(t, []float64{-1, 0, 1}, twist.X)

	lift := series(sc, SeriesLift)
	require.NotNil(t, lift)
	assert.Equal(t, []float64{-0.5, 0.5}, lift.X)
	assert.Equal(t, []float64{1800, 800}, lift.Y)

	require.NotNil(t, series(sc, SeriesThickness))
	require.NotNil(t, series(sc, SeriesVonMises))
}

func TestRenderTubeRings(t *testing.T) {
	h := history(t, record(true, false, 1))

	sc, err := Render(State{}, h, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, sc.Rings, 3)

	first := sc.Rings[0]
	require.Len(t, first.Points, 12)
	// Centred on the spar axis at 35% chord; the ring closes on itself
	assert.InDelta(t, 0.7+0.3, first.Points[0].X, 1e-12)
	assert.InDelta(t, first.Points[0].X, first.Points[11].X, 1e-12)
	assert.InDelta(t, first.Points[0].Z, first.Points[11].Z, 1e-12)
	for _, p := range first.Points {
		assert.InDelta(t, 0.3, math.Hypot(p.X-0.7, p.Z), 1e-12)
	}

	// Thickest element is colour 1; the tip station reuses the tip element
	assert.InDelta(t, 1.0, sc.Rings[0].Color, 1e-12)
	assert.InDelta(t, 0.25, sc.Rings[1].Color, 1e-12)
	assert.InDelta(t, 0.25, sc.Rings[2].Color, 1e-12)

	// Two 5 m elements along the spar axis
	root, err := spar.Tube{Radius: 0.3, Thickness: 0.04}.Mass(5, material.Defaults())
	require.NoError(t, err)
	tip, err := spar.Tube{Radius: 0.2, Thickness: 0.01}.Mass(5, material.Defaults())
	require.NoError(t, err)
	assert.InDelta(t, root+tip, sc.Mass, 1e-9)

	// No aerodynamic data, so no twist or lift
	assert.Nil(t, series(sc, SeriesTwist))
	assert.Nil(t, series(sc, SeriesLift))
}

func TestRenderHonoursOptions(t *testing.T) {
	h := history(t, record(true, true, 1))

	sc, err := Render(State{}, h, Options{ShowWing: true, FEMOrigin: 0.35, Circumference: 12})
	require.NoError(t, err)
	assert.Empty(t, sc.Rings)
	assert.Zero(t, sc.Mass)
	assert.Nil(t, series(sc, SeriesThickness))

	sc, err = Render(State{}, h, Options{ShowTube: true, FEMOrigin: 0.35, Circumference: 12})
	require.NoError(t, err)
	assert.Empty(t, sc.Wireframe)
	assert.Nil(t, series(sc, SeriesLift))
	assert.Len(t, sc.Rings, 3)
}

func TestRenderIsPure(t *testing.T) {
	h := history(t, record(true, true, 1))
	s := State{Azimuth: 30}

	a, err := Render(s, h, DefaultOptions())
	require.NoError(t, err)
	a.Series[0].Y[0] = 99
	a.Rings[0].Points[0] = r3.Vec{}

	b, err := Render(s, h, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2.0, b.Series[0].Y[0])
	assert.Equal(t, s, b.State)
}

func TestRenderRejectsZeroSpan(t *testing.T) {
	r := record(false, true, 1)
	for i := range r.Mesh {
		for j := range r.Mesh[i] {
			r.Mesh[i][j][1] = 0
		}
	}
	_, err := Render(State{}, history(t, r), DefaultOptions())
	assert.ErrorContains(t, err, "zero span")
}
