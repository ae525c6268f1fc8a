package spar

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gowing/internal/material"
	"gonum.org/v1/gonum/floats"
)

// Tube is one thin-walled circular spar element
type Tube struct {
	Radius    float64 `json:"radius"`    // outer radius (m)
	Thickness float64 `json:"thickness"` // wall thickness (m)
}

// Properties holds the section properties of a tube
type Properties struct {
	Area float64 // m²
	Iy   float64 // m⁴
	Iz   float64 // m⁴
	J    float64 // polar, m⁴
}

// Validate checks the tube dimensions
func (t Tube) Validate() error {
	if t.Radius <= 0 || math.IsNaN(t.Radius) || math.IsInf(t.Radius, 0) {
		return &ValidationError{msg: fmt.Sprintf("radius must be positive, got %g", t.Radius)}
	}
	if t.Thickness <= 0 || math.IsNaN(t.Thickness) {
		return &ValidationError{msg: fmt.Sprintf("thickness must be positive, got %g", t.Thickness)}
	}
	if t.Thickness > t.Radius {
		return &ValidationError{msg: fmt.Sprintf("thickness %g exceeds radius %g", t.Thickness, t.Radius)}
	}
	return nil
}

// InnerRadius returns the radius of the bore
func (t Tube) InnerRadius() float64 {
	return t.Radius - t.Thickness
}

// Properties calculates area and second moments of the annulus
func (t Tube) Properties() (Properties, error) {
	if err := t.Validate(); err != nil {
		return Properties{}, err
	}

	ro, ri := t.Radius, t.InnerRadius()
	i := math.Pi * (math.Pow(ro, 4) - math.Pow(ri, 4)) / 4

	return Properties{
		Area: math.Pi * (ro*ro - ri*ri),
		Iy:   i,
		Iz:   i,
		J:    2 * i,
	}, nil
}

// Mass returns the mass of an element of the given length
func (t Tube) Mass(length float64, m material.Properties) (float64, error) {
	p, err := t.Properties()
	if err != nil {
		return 0, err
	}
	return p.Area * length * m.Mrho, nil
}

// Elements pairs per-element radii and thicknesses into tubes
func Elements(radius, thickness []float64) ([]Tube, error) {
	if len(radius) != len(thickness) {
		return nil, &ValidationError{msg: fmt.Sprintf("%d radii for %d thicknesses", len(radius), len(thickness))}
	}
	tubes := make([]Tube, len(radius))
	for i := range tubes {
		tubes[i] = Tube{Radius: radius[i], Thickness: thickness[i]}
		if err := tubes[i].Validate(); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return tubes, nil
}

// SparMass sums the element masses, lengths[i] being the length of element i
func SparMass(tubes []Tube, lengths []float64, m material.Properties) (float64, error) {
	if len(tubes) != len(lengths) {
		return 0, &ValidationError{msg: fmt.Sprintf("%d elements for %d lengths", len(tubes), len(lengths))}
	}
	masses := make([]float64, len(tubes))
	for i, t := range tubes {
		var err error
		if masses[i], err = t.Mass(lengths[i], m); err != nil {
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return floats.Sum(masses), nil
}

// ValidationError represents a tube validation error
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}
