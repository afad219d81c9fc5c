package mesh

import (
	"math"
	"math/cmplx"

	"github.com/soypat/orbital"
	"github.com/soypat/orbital/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// exactTol is the interpolation error, relative to the sampled magnitudes,
// below which a tetrahedron counts as exact.
const exactTol = 1e-12

// estimator finds the point of a tetrahedron where linear interpolation of the
// corner samples worst approximates the field.
type estimator struct {
	f orbital.Field
	// barycentric weights of the interior lattice points.
	lattice [][4]float64
}

func newEstimator(f orbital.Field, n int) estimator {
	var lattice [][4]float64
	inv := 1 / float64(n)
	for a := 1; a < n; a++ {
		for b := 1; a+b < n; b++ {
			for c := 1; a+b+c < n; c++ {
				d := n - a - b - c
				lattice = append(lattice, [4]float64{
					float64(a) * inv, float64(b) * inv, float64(c) * inv, float64(d) * inv,
				})
			}
		}
	}
	return estimator{f: f, lattice: lattice}
}

// estimation is the outcome of sampling one tetrahedron.
type estimation struct {
	split    r3.Vec
	value    complex128 // field sample at split.
	priority float64
}

// estimate samples the field on the interior lattice of the tetrahedron with the
// given corners and corner samples. Priority is the squared worst absolute error
// times the volume. When the interpolation is exact on the lattice up to rounding,
// the centroid is returned with zero priority.
func (e estimator) estimate(corners d3.Tetra, values [4]complex128) estimation {
	var (
		worst    float64
		best     estimation
		hasWorst bool
		scale    float64
	)
	for _, v := range values {
		scale = math.Max(scale, cmplx.Abs(v))
	}
	for _, w := range e.lattice {
		p := corners.Barycentric(w)
		actual := e.f.Evaluate(p)
		var interp complex128
		for i := range values {
			interp += complex(w[i], 0) * values[i]
		}
		scale = math.Max(scale, cmplx.Abs(actual))
		err := cmplx.Abs(actual - interp)
		if err > worst {
			worst = err
			best.split = p
			best.value = actual
			hasWorst = true
		}
	}
	if !hasWorst || worst <= exactTol*scale {
		best.split = corners.Centroid()
		best.value = e.f.Evaluate(best.split)
		return best
	}
	best.priority = worst * worst * corners.Volume()
	return best
}
