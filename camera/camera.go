// Package camera implements an orbit camera looking at the origin.
package camera

import (
	"math"

	"github.com/fogleman/fauxgl"
	"gonum.org/v1/gonum/num/quat"
)

const (
	MinRadius = 1.0
	MaxRadius = 2048.0
)

// Orbit is a camera on a sphere of Radius around the origin, always looking
// at the origin. Its orientation is kept as a unit quaternion.
type Orbit struct {
	radius   float64
	rotation quat.Number
}

// NewOrbit returns a camera at radius looking down the -Z axis.
func NewOrbit(radius float64) *Orbit {
	return &Orbit{radius: clamp(radius), rotation: quat.Number{Real: 1}}
}

// rotationAbout returns the unit quaternion rotating by angle radians about axis.
func rotationAbout(angle float64, x, y, z float64) quat.Number {
	s := math.Sin(angle / 2)
	return quat.Number{Real: math.Cos(angle / 2), Imag: x * s, Jmag: y * s, Kmag: z * s}
}

// Rotate turns the camera around the origin. 1.0 is 180 degrees of motion:
// x rotates in the XZ plane and y in the YZ plane.
func (c *Orbit) Rotate(x, y float64) {
	xz := rotationAbout(x*math.Pi, 0, 1, 0)
	yz := rotationAbout(y*math.Pi, 1, 0, 0)
	c.setRotation(quat.Mul(quat.Mul(xz, yz), c.rotation))
}

// Spin rolls the camera around its line of sight. 1.0 is 180 degrees.
func (c *Orbit) Spin(s float64) {
	xy := rotationAbout(s*math.Pi, 0, 0, 1)
	c.setRotation(quat.Mul(xy, c.rotation))
}

// Zoom scales the radius by 2^f. Negative f zooms in.
func (c *Orbit) Zoom(f float64) {
	c.radius = clamp(c.radius * math.Pow(2, f))
}

func (c *Orbit) setRotation(q quat.Number) {
	c.rotation = quat.Scale(1/quat.Abs(q), q)
}

// Distance returns the camera distance to the origin.
func (c *Orbit) Distance() float64 { return c.radius }

// ViewMatrix rotates the world by the camera orientation and pushes it
// Distance along -Z.
func (c *Orbit) ViewMatrix() fauxgl.Matrix {
	return fauxgl.Translate(fauxgl.V(0, 0, -c.radius)).Mul(c.rotationMatrix())
}

func (c *Orbit) rotationMatrix() fauxgl.Matrix {
	q := c.rotation
	w := math.Max(-1, math.Min(1, q.Real))
	s := math.Sqrt(1 - w*w)
	if s < 1e-12 {
		return fauxgl.Identity()
	}
	axis := fauxgl.V(q.Imag/s, q.Jmag/s, q.Kmag/s)
	return fauxgl.Rotate(axis, 2*math.Acos(w))
}

func clamp(r float64) float64 {
	return math.Max(MinRadius, math.Min(MaxRadius, r))
}
