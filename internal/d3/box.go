package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d bounding box.
type Box r3.Box

// NewBox creates a 3d box with a given center and size.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// CenteredBox creates a Box with a given center and size.
// Negative components of size will be interpreted as zero.
func CenteredBox(center, size r3.Vec) Box {
	size = MaxElem(size, r3.Vec{}) // set negative values to zero.
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// ScaleAboutCenter returns a new 3d box scaled about the center of a box.
func (a Box) ScaleAboutCenter(k float64) Box {
	return NewBox(a.Center(), r3.Scale(k, a.Size()))
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// Empty returns true if the box has no volume or is inverted on any axis.
func (a Box) Empty() bool {
	sz := a.Size()
	return !(sz.X > 0 && sz.Y > 0 && sz.Z > 0)
}

// Vertices returns the 8 corners of the box. The bottom face (minimum Z) comes
// first in counter-clockwise order starting at Min, followed by the top face in
// the same order:
//
//	0:(x0,y0,z0) 1:(x1,y0,z0) 2:(x1,y1,z0) 3:(x0,y1,z0)
//	4:(x0,y0,z1) 5:(x1,y0,z1) 6:(x1,y1,z1) 7:(x0,y1,z1)
func (a Box) Vertices() Set {
	x0, y0, z0 := a.Min.X, a.Min.Y, a.Min.Z
	x1, y1, z1 := a.Max.X, a.Max.Y, a.Max.Z
	return Set{
		{X: x0, Y: y0, Z: z0},
		{X: x1, Y: y0, Z: z0},
		{X: x1, Y: y1, Z: z0},
		{X: x0, Y: y1, Z: z0},
		{X: x0, Y: y0, Z: z1},
		{X: x1, Y: y0, Z: z1},
		{X: x1, Y: y1, Z: z1},
		{X: x0, Y: y1, Z: z1},
	}
}
