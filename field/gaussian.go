package field

import (
	"math"

	"github.com/soypat/orbital"
	"gonum.org/v1/gonum/spatial/r3"
)

// Gaussian is an isotropic gaussian blob exp(-|p-Center|^2/(2 Sigma^2)).
// It is cheap to evaluate and smooth, which makes it a good field for tests.
type Gaussian struct {
	Center r3.Vec
	Sigma  float64
}

var _ orbital.Field = Gaussian{}

func (g Gaussian) Evaluate(p r3.Vec) complex128 {
	d := r3.Sub(p, g.Center)
	return complex(math.Exp(-r3.Dot(d, d)/(2*g.Sigma*g.Sigma)), 0)
}

// Bounds returns the box within 4 standard deviations of Center.
func (g Gaussian) Bounds() r3.Box {
	h := r3.Vec{X: 4 * g.Sigma, Y: 4 * g.Sigma, Z: 4 * g.Sigma}
	return r3.Box{Min: r3.Sub(g.Center, h), Max: r3.Add(g.Center, h)}
}

func (g Gaussian) Equal(f orbital.Field) bool {
	o, ok := f.(Gaussian)
	return ok && o == g
}
