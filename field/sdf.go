package field

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/orbital"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is a signed distance function in 3D. Negative values are inside the solid.
type SDF3 interface {
	Evaluate(p r3.Vec) float64
	Bounds() r3.Box
}

// Solid turns a signed distance function into a density field: 1 deep inside the
// solid falling off smoothly to 0 over a shell of thickness Skin around its surface.
type Solid struct {
	s     SDF3
	skin  float64
	shape *Shape // set by NewShape.
}

// FromSDF returns the density field of s. skin must be positive.
func FromSDF(s SDF3, skin float64) *Solid {
	if skin <= 0 {
		panic("skin must be positive")
	}
	return &Solid{s: s, skin: skin}
}

// FromSDFX adapts a deadsy/sdfx solid. See FromSDF.
func FromSDFX(s sdf.SDF3, skin float64) *Solid {
	return FromSDF(sdfxAdapter{s}, skin)
}

func (f *Solid) Evaluate(p r3.Vec) complex128 {
	d := f.s.Evaluate(p)
	// logistic falloff centered on the surface.
	return complex(1/(1+math.Exp(4*d/f.skin)), 0)
}

// Bounds returns the solid's bounds grown by twice the skin thickness.
func (f *Solid) Bounds() r3.Box {
	b := f.s.Bounds()
	g := r3.Vec{X: 2 * f.skin, Y: 2 * f.skin, Z: 2 * f.skin}
	return r3.Box{Min: r3.Sub(b.Min, g), Max: r3.Add(b.Max, g)}
}

// Equal reports whether o is the same solid instance or was built by
// NewShape from an equal Shape.
func (f *Solid) Equal(o orbital.Field) bool {
	s, ok := o.(*Solid)
	if !ok {
		return false
	}
	if f.shape != nil && s.shape != nil {
		return *f.shape == *s.shape
	}
	return s == f
}

type sdfxAdapter struct {
	s sdf.SDF3
}

func (a sdfxAdapter) Evaluate(p r3.Vec) float64 {
	return a.s.Evaluate(sdf.V3{X: p.X, Y: p.Y, Z: p.Z})
}

func (a sdfxAdapter) Bounds() r3.Box {
	bb := a.s.BoundingBox()
	return r3.Box{
		Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}
