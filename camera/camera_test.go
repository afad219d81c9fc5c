package camera

import (
	"math"
	"testing"

	"github.com/fogleman/fauxgl"
	"github.com/stretchr/testify/assert"
)

func eyeOf(c *Orbit) fauxgl.Vector {
	return c.ViewMatrix().Inverse().MulPosition(fauxgl.Vector{})
}

func TestOrbitDefault(t *testing.T) {
	c := NewOrbit(10)
	eye := eyeOf(c)
	assert.InDelta(t, 0, eye.X, 1e-12)
	assert.InDelta(t, 0, eye.Y, 1e-12)
	assert.InDelta(t, 10, eye.Z, 1e-12)
	origin := c.ViewMatrix().MulPosition(fauxgl.Vector{})
	assert.InDelta(t, -10, origin.Z, 1e-12)
}

func TestOrbitRotateKeepsDistance(t *testing.T) {
	c := NewOrbit(7)
	for i := 0; i < 20; i++ {
		c.Rotate(0.13, -0.07)
		c.Spin(0.05)
		assert.InDelta(t, 7, eyeOf(c).Length(), 1e-9)
	}
}

func TestOrbitQuarterTurn(t *testing.T) {
	c := NewOrbit(10)
	c.Rotate(0.5, 0)
	eye := eyeOf(c)
	assert.InDelta(t, 10, math.Abs(eye.X), 1e-9)
	assert.InDelta(t, 0, eye.Y, 1e-9)
	assert.InDelta(t, 0, eye.Z, 1e-9)
	c.Rotate(1.5, 0) // full turn.
	eye = eyeOf(c)
	assert.InDelta(t, 10, eye.Z, 1e-9)
}

func TestOrbitZoomClamps(t *testing.T) {
	c := NewOrbit(10)
	c.Zoom(1)
	assert.Equal(t, 20.0, c.Distance())
	c.Zoom(20)
	assert.Equal(t, MaxRadius, c.Distance())
	c.Zoom(-40)
	assert.Equal(t, MinRadius, c.Distance())
	assert.Equal(t, MinRadius, NewOrbit(0).Distance())
}
