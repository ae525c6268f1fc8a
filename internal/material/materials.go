package material

import "fmt"

// Default spar material: 7075-class aluminium
const (
	// Elastic constants (Pa)
	YoungsModulus = 70.0e9 // E
	ShearModulus  = 30.0e9 // G

	// Allowable stress (Pa)
	UltimateStrength = 500.0e6
	SafetyFactor     = 2.5
	YieldStress      = UltimateStrength / SafetyFactor

	// Density (kg/m³)
	Density = 3.0e3

	// FEMOrigin is the chordwise location of the spar as a fraction of the
	// local chord, measured from the leading edge.
	FEMOrigin = 0.35
)

// Properties holds the material values carried by a surface
type Properties struct {
	E     float64 // Young's modulus (Pa)
	G     float64 // Shear modulus (Pa)
	Yield float64 // Allowable stress (Pa)
	Mrho  float64 // Density (kg/m³)
}

// Defaults returns the default spar material
func Defaults() Properties {
	return Properties{
		E:     YoungsModulus,
		G:     ShearModulus,
		Yield: YieldStress,
		Mrho:  Density,
	}
}

// Validate checks that every property is strictly positive
func (p Properties) Validate() error {
	switch {
	case p.E <= 0:
		return fmt.Errorf("E must be positive: %g", p.E)
	case p.G <= 0:
		return fmt.Errorf("G must be positive: %g", p.G)
	case p.Yield <= 0:
		return fmt.Errorf("yield must be positive: %g", p.Yield)
	case p.Mrho <= 0:
		return fmt.Errorf("mrho must be positive: %g", p.Mrho)
	}
	return nil
}

// PoissonRatio returns ν = E/(2G) - 1 for an isotropic material
func (p Properties) PoissonRatio() float64 {
	return p.E/(2*p.G) - 1
}
