package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tetra is a tetrahedron given by its four corners.
type Tetra [4]r3.Vec

// SignedVolume returns the signed volume of the tetrahedron. It is positive
// when the corners 1,2,3 wind counter-clockwise seen from corner 0.
func (t Tetra) SignedVolume() float64 {
	a := r3.Sub(t[1], t[0])
	b := r3.Sub(t[2], t[0])
	c := r3.Sub(t[3], t[0])
	return r3.Dot(a, r3.Cross(b, c)) / 6
}

// Volume returns the unsigned volume of the tetrahedron.
func (t Tetra) Volume() float64 {
	return math.Abs(t.SignedVolume())
}

// Centroid returns the arithmetic mean of the four corners.
func (t Tetra) Centroid() r3.Vec {
	sum := r3.Add(r3.Add(t[0], t[1]), r3.Add(t[2], t[3]))
	return r3.Scale(0.25, sum)
}

// Barycentric returns the point with barycentric weights w. The weights
// are not normalized.
func (t Tetra) Barycentric(w [4]float64) r3.Vec {
	var p r3.Vec
	for i := range t {
		p = r3.Add(p, r3.Scale(w[i], t[i]))
	}
	return p
}

// Bounds returns the axis aligned bounding box of the tetrahedron.
func (t Tetra) Bounds() Box {
	s := Set(t[:])
	return Box{Min: s.Min(), Max: s.Max()}
}
