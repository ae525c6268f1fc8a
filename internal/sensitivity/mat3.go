package sensitivity

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// mat3 is a dense 3×3 block in row-major order
type mat3 [3][3]float64

// identity returns s·I
func identity(s float64) mat3 {
	return mat3{{s, 0, 0}, {0, s, 0}, {0, 0, s}}
}

// skew returns [v]× such that [v]× w = v × w
func skew(v r3.Vec) mat3 {
	return mat3{
		{0, -v.Z, v.Y},
		{v.Z, 0, -v.X},
		{-v.Y, v.X, 0},
	}
}

// outer returns u vᵀ
func outer(u, v r3.Vec) mat3 {
	a := [3]float64{u.X, u.Y, u.Z}
	b := [3]float64{v.X, v.Y, v.Z}
	var m mat3
	for i := range a {
		for j := range b {
			m[i][j] = a[i] * b[j]
		}
	}
	return m
}

func (m mat3) scale(s float64) mat3 {
	for i := range m {
		for j := range m[i] {
			m[i][j] *= s
		}
	}
	return m
}

// addTo accumulates m into dst with its top-left corner at (r, c)
func (m mat3) addTo(dst *mat.Dense, r, c int) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if m[i][j] != 0 {
				dst.Set(r+i, c+j, dst.At(r+i, c+j)+m[i][j])
			}
		}
	}
}
