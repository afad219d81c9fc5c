package field

// poly is a real polynomial with coefficients in increasing degree order.
type poly []float64

func (p poly) eval(x float64) float64 {
	var sum float64
	for i := len(p) - 1; i >= 0; i-- {
		sum = sum*x + p[i]
	}
	return sum
}

func (p poly) derivative() poly {
	if len(p) <= 1 {
		return poly{0}
	}
	d := make(poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		d[i-1] = float64(i) * p[i]
	}
	return d
}

func (p poly) mul(q poly) poly {
	out := make(poly, len(p)+len(q)-1)
	for i, a := range p {
		for j, b := range q {
			out[i+j] += a * b
		}
	}
	return out
}

func (p poly) pow(n int) poly {
	out := poly{1}
	for i := 0; i < n; i++ {
		out = out.mul(p)
	}
	return out
}

func factorial(n int) float64 {
	if n < 0 {
		panic("factorial of negative number")
	}
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
