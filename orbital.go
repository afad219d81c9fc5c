// Package orbital defines the scalar field abstraction visualized by the
// progressive tetrahedral mesher in package mesh and drawn by package render.
package orbital

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r3"
)

// Golden ratio, used by the detail level growth sequence.
const phi = 1.6180339887498948482045868343656381177203091798057628621354486227

// Field is the interface to a scalar field over a bounded region of 3D space.
// A Field must be a pure function: the same point always evaluates to the same value.
type Field interface {
	// Evaluate returns the complex amplitude of the field at p. The modulus is
	// the field's value and the argument (phase) its classification.
	Evaluate(p r3.Vec) complex128
	// Bounds returns the box outside of which the field is considered negligible.
	Bounds() r3.Box
	// Equal reports whether f describes the same function as the receiver.
	// Two fields that are Equal may share a mesh.
	Equal(f Field) bool
}

// Squarer is implemented by fields whose displayed quantity is the squared
// modulus. Renderers square their brightness for these fields.
type Squarer interface {
	Squared() bool
}

// Radiuser is implemented by fields with a natural radius of significance.
type Radiuser interface {
	Radius() float64
}

// TargetVertices maps a detail level to the number of mesh vertices refinement
// should reach. Each level is roughly the golden ratio times the previous one:
//
//	round(100 * phi^(detail+4) / sqrt(5))
func TargetVertices(detail int) int {
	return int(math.Round(100 * math.Pow(phi, float64(detail)+4) / math.Sqrt(5)))
}

// Density returns the probability density of an amplitude, |z|^2.
func Density(z complex128) float64 {
	a := cmplx.Abs(z)
	return a * a
}

// Phase returns the argument of z in [-pi, pi]. Zero amplitudes have phase 0.
func Phase(z complex128) float64 {
	if z == 0 {
		return 0
	}
	return cmplx.Phase(z)
}

// Radius returns the radius of significance of f. Fields not implementing
// Radiuser use the half diagonal of their bounding box.
func Radius(f Field) float64 {
	if r, ok := f.(Radiuser); ok {
		return r.Radius()
	}
	b := f.Bounds()
	return 0.5 * r3.Norm(r3.Sub(b.Max, b.Min))
}

// IsSquared reports whether f displays its squared modulus.
func IsSquared(f Field) bool {
	s, ok := f.(Squarer)
	return ok && s.Squared()
}
