package orbital

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestTargetVertices(t *testing.T) {
	// round(100*phi^(d+4)/sqrt5) sits next to 100 times the Fibonacci numbers.
	want := []int{307, 496, 802, 1298, 2101, 3399, 5500, 8900}
	for detail, expect := range want {
		got := TargetVertices(detail)
		if got != expect {
			t.Errorf("detail %d: got target %d, want %d", detail, got, expect)
		}
	}
	for detail := 1; detail < 20; detail++ {
		if TargetVertices(detail) <= TargetVertices(detail-1) {
			t.Fatalf("target not increasing at detail %d", detail)
		}
	}
}

func TestDensityPhase(t *testing.T) {
	z := complex(0, 2)
	if got := Density(z); math.Abs(got-4) > 1e-12 {
		t.Errorf("density of 2i: got %g, want 4", got)
	}
	if got := Phase(z); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("phase of 2i: got %g, want pi/2", got)
	}
	if Phase(0) != 0 {
		t.Error("phase of zero amplitude must be zero")
	}
}

type boxField struct{ b r3.Box }

func (f boxField) Evaluate(r3.Vec) complex128 { return 1 }
func (f boxField) Bounds() r3.Box             { return f.b }
func (f boxField) Equal(o Field) bool         { return o == Field(f) }

func TestRadiusFallback(t *testing.T) {
	f := boxField{b: r3.Box{Min: r3.Vec{X: -1, Y: -2, Z: -2}, Max: r3.Vec{X: 1, Y: 2, Z: 2}}}
	if got := Radius(f); math.Abs(got-3) > 1e-12 {
		t.Errorf("got radius %g, want 3", got)
	}
	if IsSquared(f) {
		t.Error("box field does not square")
	}
}
