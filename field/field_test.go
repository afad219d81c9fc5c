package field

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestHydrogenGroundState(t *testing.T) {
	h, err := NewHydrogen(Quantum{Z: 1, N: 1})
	require.NoError(t, err)
	// psi_100(0) = 1/sqrt(pi) in atomic units.
	got := real(h.Evaluate(r3.Vec{}))
	assert.InDelta(t, 1/math.Sqrt(math.Pi), got, 1e-12)
	// psi_100(r) = exp(-r)/sqrt(pi).
	got = real(h.Evaluate(r3.Vec{X: 0.6, Y: 0, Z: 0.8}))
	assert.InDelta(t, math.Exp(-1)/math.Sqrt(math.Pi), got, 1e-12)
	assert.InDelta(t, 13.60569253, h.Energy(), 1e-9)
}

func TestHydrogen2s(t *testing.T) {
	h, err := NewHydrogen(Quantum{Z: 1, N: 2})
	require.NoError(t, err)
	// psi_200 = (2-r) exp(-r/2) / (4 sqrt(2 pi)), node at r=2.
	for _, r := range []float64{0, 0.5, 1, 3, 5} {
		want := (2 - r) * math.Exp(-r/2) / (4 * math.Sqrt(2*math.Pi))
		got := real(h.Evaluate(r3.Vec{Z: r}))
		assert.InDelta(t, math.Abs(want), got, 1e-12, "r=%g", r)
	}
}

func TestHydrogen2pz(t *testing.T) {
	h, err := NewHydrogen(Quantum{Z: 1, N: 2, L: 1, Phase: true})
	require.NoError(t, err)
	// psi_210 = r exp(-r/2) cos(theta) / (4 sqrt(2 pi)).
	p := r3.Vec{X: 1, Y: 1, Z: 1}
	r := r3.Norm(p)
	want := r * math.Exp(-r/2) * (p.Z / r) / (4 * math.Sqrt(2*math.Pi))
	assert.InDelta(t, want, cmplx.Abs(h.Evaluate(p)), 1e-12)
	// Below the xy plane the lobe has opposite phase.
	below := h.Evaluate(r3.Vec{X: 1, Y: 1, Z: -1})
	assert.InDelta(t, -want, real(below), 1e-12)
	// Node on the xy plane.
	assert.InDelta(t, 0, cmplx.Abs(h.Evaluate(r3.Vec{X: 1, Y: 2})), 1e-15)
}

func TestHydrogenSquareAndPhase(t *testing.T) {
	q := Quantum{Z: 1, N: 3, L: 2, M: 1, Phase: true}
	h, err := NewHydrogen(q)
	require.NoError(t, err)
	q.Square = true
	hs, err := NewHydrogen(q)
	require.NoError(t, err)
	p := r3.Vec{X: 1.2, Y: -0.7, Z: 2.1}
	a := cmplx.Abs(h.Evaluate(p))
	assert.InDelta(t, a*a, cmplx.Abs(hs.Evaluate(p)), 1e-15)
	assert.True(t, hs.Squared())
	assert.False(t, h.Squared())
	assert.False(t, h.Equal(hs))

	q.Phase = false
	hn, err := NewHydrogen(q)
	require.NoError(t, err)
	v := hn.Evaluate(p)
	assert.Zero(t, imag(v))
	assert.GreaterOrEqual(t, real(v), 0.0)
}

func TestHydrogenRealCombination(t *testing.T) {
	// Real combinations of +-M have no imaginary part.
	h, err := NewHydrogen(Quantum{Z: 1, N: 2, L: 1, M: 1, Real: true, Phase: true})
	require.NoError(t, err)
	for _, p := range []r3.Vec{{X: 1}, {Y: 1}, {X: -1, Y: 0.3, Z: 0.2}} {
		assert.Zero(t, imag(h.Evaluate(p)))
	}
	// For odd M the sum combination goes as sin(phi) and vanishes on the x axis.
	assert.Zero(t, cmplx.Abs(h.Evaluate(r3.Vec{X: 1})))
	assert.NotZero(t, cmplx.Abs(h.Evaluate(r3.Vec{Y: 1})))
}

func TestQuantumValidate(t *testing.T) {
	bad := []Quantum{
		{Z: 0, N: 1},
		{Z: 119, N: 1},
		{Z: 1, N: 0},
		{Z: 1, N: 17},
		{Z: 1, N: 2, L: 2},
		{Z: 1, N: 3, L: 1, M: -2},
	}
	for _, q := range bad {
		_, err := NewHydrogen(q)
		assert.True(t, errors.Is(err, ErrQuantumNumbers), "%v: got %v", q, err)
	}
	q := Quantum{Z: 500, N: 40, L: 50, M: -60}.Clamp()
	assert.Equal(t, Quantum{Z: MaxAtomicNumber, N: MaxEnergyLevel, L: MaxEnergyLevel - 1, M: -(MaxEnergyLevel - 1)}, q)
	require.NoError(t, q.Validate())
}

func TestHydrogenRadius(t *testing.T) {
	h, err := NewHydrogen(Quantum{Z: 1, N: 1})
	require.NoError(t, err)
	assert.Equal(t, 10.0, h.Radius())
	b := h.Bounds()
	assert.Equal(t, r3.Vec{X: 10, Y: 10, Z: 10}, b.Max)
	h, err = NewHydrogen(Quantum{Z: 1, N: 4})
	require.NoError(t, err)
	assert.Equal(t, 40.0, h.Radius())
}

func TestGaussian(t *testing.T) {
	g := Gaussian{Center: r3.Vec{X: 1}, Sigma: 0.5}
	assert.Equal(t, complex(1, 0), g.Evaluate(r3.Vec{X: 1}))
	assert.InDelta(t, math.Exp(-2), real(g.Evaluate(r3.Vec{})), 1e-15)
	assert.True(t, g.Equal(Gaussian{Center: r3.Vec{X: 1}, Sigma: 0.5}))
	assert.False(t, g.Equal(Gaussian{Sigma: 0.5}))
}

type sdfxSphere struct{ r float64 }

func (s sdfxSphere) Evaluate(p sdf.V3) float64 {
	return math.Sqrt(p.X*p.X+p.Y*p.Y+p.Z*p.Z) - s.r
}

func (s sdfxSphere) BoundingBox() sdf.Box3 {
	return sdf.Box3{Min: sdf.V3{X: -s.r, Y: -s.r, Z: -s.r}, Max: sdf.V3{X: s.r, Y: s.r, Z: s.r}}
}

func TestFromSDFX(t *testing.T) {
	f := FromSDFX(sdfxSphere{r: 2}, 0.1)
	assert.InDelta(t, 1, real(f.Evaluate(r3.Vec{})), 1e-12)
	assert.InDelta(t, 0.5, real(f.Evaluate(r3.Vec{X: 2})), 1e-12)
	assert.InDelta(t, 0, real(f.Evaluate(r3.Vec{X: 3})), 1e-12)
	assert.Equal(t, r3.Vec{X: 2.2, Y: 2.2, Z: 2.2}, f.Bounds().Max)
	assert.True(t, f.Equal(f))
	assert.False(t, f.Equal(FromSDFX(sdfxSphere{r: 2}, 0.1)))
}
