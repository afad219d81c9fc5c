package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSolidPrimitives(t *testing.T) {
	s := Sphere(r3.Vec{X: 1}, 2)
	assert.InDelta(t, -2, s.Evaluate(r3.Vec{X: 1}), 1e-12)
	assert.InDelta(t, 1, s.Evaluate(r3.Vec{X: 4}), 1e-12)
	assert.Equal(t, r3.Vec{X: -1, Y: -2, Z: -2}, s.Bounds().Min)

	b := Box(r3.Vec{X: 2, Y: 4, Z: 6}, 0)
	assert.InDelta(t, -1, b.Evaluate(r3.Vec{}), 1e-12)
	assert.InDelta(t, 1, b.Evaluate(r3.Vec{X: 2}), 1e-12)
	assert.InDelta(t, math.Sqrt2, b.Evaluate(r3.Vec{X: 2, Y: 3}), 1e-12)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, b.Bounds().Max)

	rb := Box(r3.Vec{X: 2, Y: 2, Z: 2}, 0.5)
	assert.InDelta(t, 0, rb.Evaluate(r3.Vec{X: 1}), 1e-12)
	c := 0.5 + 0.5/math.Sqrt(3)
	assert.InDelta(t, 0, rb.Evaluate(r3.Vec{X: c, Y: c, Z: c}), 1e-12)

	assert.Panics(t, func() { Sphere(r3.Vec{}, 0) })
	assert.Panics(t, func() { Box(r3.Vec{X: 1, Y: 1}, 0) })
	assert.Panics(t, func() { Shell(s, 0) })
}

func TestSolidCombinators(t *testing.T) {
	a := Sphere(r3.Vec{X: -1}, 1)
	b := Sphere(r3.Vec{X: 1}, 1)
	u := Union(nil, a, b)
	assert.InDelta(t, -1, u.Evaluate(r3.Vec{X: 1}), 1e-12)
	assert.InDelta(t, 0, u.Evaluate(r3.Vec{}), 1e-12)
	assert.Equal(t, r3.Box{Min: r3.Vec{X: -2, Y: -1, Z: -1}, Max: r3.Vec{X: 2, Y: 1, Z: 1}}, u.Bounds())

	// Smooth unions fill in the seam between the spheres.
	for _, min := range []MinFunc{RoundMin(0.5), PolyMin(0.5), ExpMin(8)} {
		smooth := Union(min, a, b)
		assert.Less(t, smooth.Evaluate(r3.Vec{Y: 0.5}), u.Evaluate(r3.Vec{Y: 0.5}))
	}

	d := Difference(nil, Sphere(r3.Vec{}, 2), Sphere(r3.Vec{}, 1))
	assert.InDelta(t, 1, d.Evaluate(r3.Vec{}), 1e-12)
	assert.InDelta(t, -0.5, d.Evaluate(r3.Vec{X: 1.5}), 1e-12)
	pd := Difference(PolyMax(0.2), Sphere(r3.Vec{}, 2), Sphere(r3.Vec{}, 1))
	assert.GreaterOrEqual(t, pd.Evaluate(r3.Vec{X: 1.5}), d.Evaluate(r3.Vec{X: 1.5}))

	sh := Shell(Sphere(r3.Vec{}, 2), 0.5)
	assert.InDelta(t, -0.25, sh.Evaluate(r3.Vec{X: 2}), 1e-12)
	assert.InDelta(t, 1.75, sh.Evaluate(r3.Vec{}), 1e-12)

	assert.Panics(t, func() { Union(nil, a) })
	assert.Panics(t, func() { Union(nil, a, nil) })
}

func TestFromSDFDensity(t *testing.T) {
	f := FromSDF(Union(RoundMin(0.2), Sphere(r3.Vec{X: -1}, 1), Sphere(r3.Vec{X: 1}, 1)), 0.1)
	assert.InDelta(t, 0.5, real(f.Evaluate(r3.Vec{X: 2})), 1e-12)
	assert.Greater(t, real(f.Evaluate(r3.Vec{X: 1})), 0.99)
	assert.Less(t, real(f.Evaluate(r3.Vec{X: 3})), 0.01)
	assert.True(t, f.Equal(f))
	assert.Panics(t, func() { FromSDF(Sphere(r3.Vec{}, 1), 0) })
}

func TestNewShape(t *testing.T) {
	density := func(s Shape, p r3.Vec) float64 {
		t.Helper()
		f, err := NewShape(s)
		require.NoError(t, err)
		return real(f.Evaluate(p))
	}
	const skin = 0.2
	for _, s := range []Shape{
		{Kind: "sphere", Radius: 1},
		{Kind: "box", Size: r3.Vec{X: 2, Y: 2, Z: 2}, Round: 0.2},
		{Kind: "cylinder", Radius: 1, Height: 3},
		{Kind: "capsule", Radius: 1, Height: 3},
		{Kind: "cored", Size: r3.Vec{X: 2, Y: 2, Z: 2}, Radius: 0.5, Blend: "poly", Smooth: 0.05},
	} {
		s.Skin = skin
		t.Run(s.Kind, func(t *testing.T) {
			assert.Less(t, density(s, r3.Vec{X: 3}), 0.01)
			if s.Kind == "cored" {
				assert.Less(t, density(s, r3.Vec{}), 0.01)
				assert.Greater(t, density(s, r3.Vec{X: 0.8}), 0.9)
			} else {
				assert.Greater(t, density(s, r3.Vec{}), 0.99)
			}
			f, err := NewShape(s)
			require.NoError(t, err)
			b := f.Bounds()
			assert.True(t, b.Min.X < -1 && b.Max.X > 1, "bounds %v", b)
		})
	}

	// Lobes of radius 1 at x=±1 touch at the origin.
	sharp := Shape{Kind: "dumbbell", Radius: 1, Skin: skin}
	assert.InDelta(t, 0.5, density(sharp, r3.Vec{}), 1e-12)
	assert.Greater(t, density(sharp, r3.Vec{X: 1}), 0.99)
	for _, blend := range []string{"poly", "round", "exp"} {
		s := sharp
		s.Blend, s.Smooth = blend, 0.3
		assert.Greater(t, density(s, r3.Vec{}), 0.5, blend)
	}

	hollow := Shape{Kind: "sphere", Radius: 2, Wall: 0.5, Skin: skin}
	assert.Less(t, density(hollow, r3.Vec{}), 0.01)
	assert.Greater(t, density(hollow, r3.Vec{Z: 2}), 0.99)
}

func TestShapeEqual(t *testing.T) {
	s := Shape{Kind: "sphere", Radius: 1, Skin: 0.1}
	a, err := NewShape(s)
	require.NoError(t, err)
	b, err := NewShape(s)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	s.Radius = 2
	c, err := NewShape(s)
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(FromSDF(Sphere(r3.Vec{}, 1), 0.1)))
	assert.False(t, a.Equal(Gaussian{Sigma: 1}))
}

func TestNewShapeErrors(t *testing.T) {
	for name, s := range map[string]Shape{
		"kind":        {Kind: "torus", Radius: 1},
		"skin":        {Kind: "sphere", Radius: 1, Skin: -0.1},
		"radius":      {Kind: "sphere"},
		"size":        {Kind: "box", Size: r3.Vec{X: 1, Y: 1}},
		"round":       {Kind: "box", Size: r3.Vec{X: 1, Y: 1, Z: 1}, Round: 0.5},
		"wall":        {Kind: "sphere", Radius: 1, Wall: -1},
		"cylinder":    {Kind: "cylinder", Radius: 1, Height: 1, Round: 2},
		"blend":       {Kind: "dumbbell", Radius: 1, Blend: "chamfer", Smooth: 1},
		"smooth":      {Kind: "dumbbell", Radius: 1, Blend: "poly"},
		"carve":       {Kind: "cored", Radius: 1, Size: r3.Vec{X: 3, Y: 3, Z: 3}, Blend: "exp", Smooth: 1},
		"carveSmooth": {Kind: "cored", Radius: 1, Size: r3.Vec{X: 3, Y: 3, Z: 3}, Blend: "poly"},
	} {
		if s.Skin == 0 {
			s.Skin = 0.1
		}
		_, err := NewShape(s)
		assert.ErrorIs(t, err, errShape, name)
	}
}
