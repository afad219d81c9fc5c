package field

import (
	"math"
	"strconv"

	"github.com/soypat/orbital/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Signed distance primitives and combinators for building solids passed to FromSDF.

// MinFunc blends two distances in a union.
type MinFunc func(a, b float64) float64

// MaxFunc blends two distances in a difference.
type MaxFunc func(a, b float64) float64

// RoundMin returns a minimum function that uses a quarter-circle to join the two objects smoothly.
func RoundMin(k float64) MinFunc {
	return func(a, b float64) float64 {
		u := d3.MaxElem(r3.Vec{X: k - a, Y: k - b}, r3.Vec{})
		return math.Max(k, math.Min(a, b)) - r3.Norm(u)
	}
}

// ExpMin returns a minimum function with exponential smoothing (k = 32).
func ExpMin(k float64) MinFunc {
	return func(a, b float64) float64 {
		return -math.Log(math.Exp(-k*a)+math.Exp(-k*b)) / k
	}
}

func polyBlend(a, b, k float64) float64 {
	h := math.Max(0, math.Min(1, 0.5+0.5*(b-a)/k))
	return b + h*(a-b) - k*h*(1-h)
}

// PolyMin returns a minimum function (Try k = 0.1, a bigger k gives a bigger fillet).
func PolyMin(k float64) MinFunc {
	return func(a, b float64) float64 {
		return polyBlend(a, b, k)
	}
}

// PolyMax returns a maximum function (Try k = 0.1, a bigger k gives a bigger fillet).
func PolyMax(k float64) MaxFunc {
	return func(a, b float64) float64 {
		return -polyBlend(-a, -b, k)
	}
}

type sphere struct {
	center r3.Vec
	radius float64
}

// Sphere returns a sphere of radius centered at c. Panics if radius <= 0.
func Sphere(c r3.Vec, radius float64) SDF3 {
	if radius <= 0 {
		panic("radius <= 0")
	}
	return sphere{center: c, radius: radius}
}

func (s sphere) Evaluate(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, s.center)) - s.radius
}

func (s sphere) Bounds() r3.Box {
	return r3.Box(d3.CenteredBox(s.center, d3.Elem(2*s.radius)))
}

type box struct {
	half  r3.Vec // half size minus rounding.
	round float64
}

// Box returns an origin centered box with rounded edges when round > 0.
func Box(size r3.Vec, round float64) SDF3 {
	switch {
	case size.X <= 0 || size.Y <= 0 || size.Z <= 0:
		panic("size <= 0")
	case round < 0:
		panic("round < 0")
	}
	return box{half: r3.Sub(r3.Scale(0.5, size), d3.Elem(round)), round: round}
}

func (s box) Evaluate(p r3.Vec) float64 {
	d := r3.Sub(r3.Vec{X: math.Abs(p.X), Y: math.Abs(p.Y), Z: math.Abs(p.Z)}, s.half)
	outside := r3.Norm(d3.MaxElem(d, r3.Vec{}))
	return outside + math.Min(d3.Max(d), 0) - s.round
}

func (s box) Bounds() r3.Box {
	h := r3.Add(s.half, d3.Elem(s.round))
	return r3.Box{Min: r3.Scale(-1, h), Max: h}
}

type union struct {
	sdf []SDF3
	min MinFunc
	bb  r3.Box
}

// Union returns the union of solids blended with min. A nil min is math.Min.
// Union panics if fewer than 2 solids are given or any of them is nil.
func Union(min MinFunc, sdf ...SDF3) SDF3 {
	if len(sdf) < 2 {
		panic("union require at least 2 sdfs")
	}
	if min == nil {
		min = math.Min
	}
	s := union{sdf: sdf, min: min}
	for i, x := range sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to Union")
		}
	}
	bb := d3.Box(sdf[0].Bounds())
	for _, x := range sdf[1:] {
		xb := x.Bounds()
		bb = bb.Include(xb.Min).Include(xb.Max)
	}
	s.bb = r3.Box(bb)
	return &s
}

func (s *union) Evaluate(p r3.Vec) float64 {
	d := s.sdf[0].Evaluate(p)
	for _, x := range s.sdf[1:] {
		d = s.min(d, x.Evaluate(p))
	}
	return d
}

func (s *union) Bounds() r3.Box { return s.bb }

type difference struct {
	s0, s1 SDF3
	max    MaxFunc
}

// Difference returns s0 with s1 carved out, blended with max. A nil max is math.Max.
func Difference(max MaxFunc, s0, s1 SDF3) SDF3 {
	if s0 == nil || s1 == nil {
		panic("nil argument to Difference")
	}
	if max == nil {
		max = math.Max
	}
	return &difference{s0: s0, s1: s1, max: max}
}

func (s *difference) Evaluate(p r3.Vec) float64 {
	return s.max(s.s0.Evaluate(p), -s.s1.Evaluate(p))
}

func (s *difference) Bounds() r3.Box { return s.s0.Bounds() }

type shell struct {
	sdf   SDF3
	delta float64 // half thickness.
}

// Shell returns a hollow version of s with walls of the given thickness
// centered on its surface. Panics if thickness <= 0.
func Shell(s SDF3, thickness float64) SDF3 {
	if thickness <= 0 {
		panic("thickness <= 0")
	}
	return &shell{sdf: s, delta: thickness / 2}
}

func (s *shell) Evaluate(p r3.Vec) float64 {
	return math.Abs(s.sdf.Evaluate(p)) - s.delta
}

func (s *shell) Bounds() r3.Box {
	bb := s.sdf.Bounds()
	g := d3.Elem(s.delta)
	return r3.Box{Min: r3.Sub(bb.Min, g), Max: r3.Add(bb.Max, g)}
}
