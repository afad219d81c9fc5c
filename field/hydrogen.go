package field

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/soypat/orbital"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/combin"
)

// Quantum number limits accepted by NewHydrogen.
const (
	MaxAtomicNumber = 118
	MaxEnergyLevel  = 16
)

// Rydberg energy in electronvolts.
const rydberg = 13.60569253

var ErrQuantumNumbers = errors.New("invalid quantum numbers")

// Quantum selects a hydrogen-like orbital and how it is displayed.
type Quantum struct {
	Z int // Atomic number.
	N int // Principal quantum number.
	L int // Azimuthal quantum number.
	M int // Magnetic quantum number.
	// Real combines the +M and -M states into a real valued orbital.
	Real bool
	// Diff takes the difference of the +M and -M states instead of the sum. Only used with Real.
	Diff bool
	// Square displays the probability density instead of the amplitude.
	Square bool
	// Phase keeps the complex phase. When false the field is real and non-negative.
	Phase bool
}

// Validate checks the quantum numbers are in range.
func (q Quantum) Validate() error {
	switch {
	case q.Z < 1 || q.Z > MaxAtomicNumber:
		return fmt.Errorf("%w: Z=%d out of range [1,%d]", ErrQuantumNumbers, q.Z, MaxAtomicNumber)
	case q.N < 1 || q.N > MaxEnergyLevel:
		return fmt.Errorf("%w: N=%d out of range [1,%d]", ErrQuantumNumbers, q.N, MaxEnergyLevel)
	case q.L < 0 || q.L >= q.N:
		return fmt.Errorf("%w: L=%d must satisfy 0<=L<N=%d", ErrQuantumNumbers, q.L, q.N)
	case q.M < -q.L || q.M > q.L:
		return fmt.Errorf("%w: |M|=%d exceeds L=%d", ErrQuantumNumbers, q.M, q.L)
	}
	return nil
}

// Clamp returns q with every quantum number forced into its valid range.
// L is clamped after N, and M after L.
func (q Quantum) Clamp() Quantum {
	q.Z = clamp(q.Z, 1, MaxAtomicNumber)
	q.N = clamp(q.N, 1, MaxEnergyLevel)
	q.L = clamp(q.L, 0, q.N-1)
	q.M = clamp(q.M, -q.L, q.L)
	return q
}

// Energy returns the ionization energy of the orbital in eV.
func (q Quantum) Energy() float64 {
	return rydberg * float64(q.Z*q.Z) / float64(q.N*q.N)
}

func (q Quantum) String() string {
	return fmt.Sprintf("Z=%d N=%d L=%d M=%d", q.Z, q.N, q.L, q.M)
}

// Hydrogen is the wavefunction of a single electron orbiting a nucleus of charge Z.
// Hydrogen implements orbital.Field.
type Hydrogen struct {
	Quantum
	radius float64

	radialConst float64
	radialExp   float64
	laguerre    poly // Associated Laguerre polynomial in r.

	angularConst float64
	legendre     poly // Derivative of (x^2-1)^L in cos(theta).
}

var _ orbital.Field = (*Hydrogen)(nil)

// NewHydrogen precomputes the radial and angular factors of the orbital q.
func NewHydrogen(q Quantum) (*Hydrogen, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	Z, N, L := float64(q.Z), float64(q.N), q.L
	absM := q.M
	if absM < 0 {
		absM = -absM
	}
	h := &Hydrogen{Quantum: q}
	h.radius = math.Max(10, 2.5*N*N/Z)

	// (2Z/N)^1.5 sqrt((N-L-1)!/(2N(N+L)!)) (2Z/N)^L
	k := 2 * Z / N
	h.radialConst = math.Pow(k, 1.5) * math.Sqrt(factorial(q.N-L-1)/(2*N*factorial(q.N+L))) * math.Pow(k, float64(L))
	h.radialExp = -Z / N
	nr := q.N - L - 1
	h.laguerre = make(poly, nr+1)
	for i := 0; i <= nr; i++ {
		c := float64(combin.Binomial(q.N+L, nr-i)) * math.Pow(k, float64(i)) / factorial(i)
		if i&1 == 1 {
			c = -c
		}
		h.laguerre[i] = c
	}

	// sqrt((2L+1)(L-|M|)!/(4pi(L+|M|)!)) / (2^L L!)
	h.angularConst = math.Sqrt((2*float64(L)+1)*factorial(L-absM)/(4*math.Pi*factorial(L+absM))) /
		(math.Pow(2, float64(L)) * factorial(L))
	h.legendre = poly{-1, 0, 1}.pow(L)
	for i := 0; i < L+absM; i++ {
		h.legendre = h.legendre.derivative()
	}
	return h, nil
}

func (h *Hydrogen) radial(r float64) float64 {
	return h.radialConst * math.Exp(h.radialExp*r) * ipow(r, h.L) * h.laguerre.eval(r)
}

func (h *Hydrogen) angular(sinTheta, cosTheta float64) float64 {
	absM := h.M
	if absM < 0 {
		absM = -absM
	}
	return h.angularConst * h.legendre.eval(cosTheta) * ipow(sinTheta, absM)
}

// Evaluate returns the orbital's amplitude at p. Units are Bohr radii.
func (h *Hydrogen) Evaluate(p r3.Vec) complex128 {
	x2y2 := p.X*p.X + p.Y*p.Y
	rxy := math.Sqrt(x2y2)
	var azimuth float64
	if rxy > 0 {
		azimuth = math.Atan2(p.Y, p.X)
	}
	r := math.Sqrt(x2y2 + p.Z*p.Z)
	sinTheta, cosTheta := 0.0, 1.0
	if r > 0 {
		sinTheta = rxy / r
		cosTheta = p.Z / r
	}
	val := h.radial(r) * h.angular(sinTheta, cosTheta)
	angle := float64(h.M) * azimuth
	sign := 1.0
	if h.M > 0 && h.M&1 == 1 {
		sign = -1
	}

	var mag float64
	var arg complex128
	if h.Real && h.M != 0 {
		factor := 1.0
		if h.Diff {
			factor = -1
		}
		mag = val * ((sign+factor)*math.Cos(angle) + (sign-factor)*math.Sin(angle)) / math.Sqrt2
		arg = 1
	} else {
		mag = sign * val
		arg = cmplx.Rect(1, angle)
	}
	if mag < 0 {
		mag, arg = -mag, -arg
	}
	if h.Square {
		mag *= mag
	}
	if !h.Phase {
		return complex(mag, 0)
	}
	return complex(mag, 0) * arg
}

// Bounds returns a cube of half side Radius centered at the nucleus.
func (h *Hydrogen) Bounds() r3.Box {
	r := h.radius
	return r3.Box{Min: r3.Vec{X: -r, Y: -r, Z: -r}, Max: r3.Vec{X: r, Y: r, Z: r}}
}

// Equal reports whether f is a Hydrogen field with the same quantum numbers and display flags.
func (h *Hydrogen) Equal(f orbital.Field) bool {
	o, ok := f.(*Hydrogen)
	return ok && o.Quantum == h.Quantum
}

// Radius returns the radius of significance of the orbital in Bohr radii.
func (h *Hydrogen) Radius() float64 { return h.radius }

// Squared reports whether the field holds the probability density.
func (h *Hydrogen) Squared() bool { return h.Square }

func ipow(x float64, n int) float64 {
	r := 1.0
	for ; n > 0; n-- {
		r *= x
	}
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
