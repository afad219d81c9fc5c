package render

import "gonum.org/v1/gonum/spatial/r3"

// Triangle3 is a 3D triangle. Vertices are counter-clockwise seen from the
// side the normal points to.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}
