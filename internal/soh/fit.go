package soh

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

var errTooFewPoints = errors.New("fewer than two distinct x values")

// linearFit is y = Intercept + Slope*x.
type linearFit struct {
	Intercept, Slope float64
}

func (f linearFit) at(x float64) float64 { return f.Intercept + f.Slope*x }

// expFit is y = A*exp(B*x).
type expFit struct {
	A, B float64
}

func (f expFit) at(x float64) float64 { return f.A * math.Exp(f.B*x) }

func distinct(xs []float64) int {
	n := 0
	for i, x := range xs {
		if i == 0 || x != xs[i-1] {
			n++
		}
	}
	return n
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// fitLinear is an ordinary least-squares line. xs must be sorted.
func fitLinear(xs, ys []float64) (linearFit, error) {
	if distinct(xs) < 2 {
		return linearFit{}, errTooFewPoints
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if !finite(alpha, beta) {
		return linearFit{}, errors.New("linear regression is not finite")
	}
	return linearFit{Intercept: alpha, Slope: beta}, nil
}

// fitExponential fits y = A*exp(B*x) by least squares in linear space.
// The log-linear regression over the positive samples seeds a Nelder-Mead
// search on x rescaled to [0,1]; the seed is kept when the search does not
// improve on it.
func fitExponential(xs, ys []float64) (expFit, error) {
	if distinct(xs) < 2 {
		return expFit{}, errTooFewPoints
	}

	scale := math.Max(math.Abs(xs[0]), math.Abs(xs[len(xs)-1]))
	if scale == 0 {
		scale = 1
	}
	us := make([]float64, len(xs))
	floats.ScaleTo(us, 1/scale, xs)

	seed := seedExponential(us, ys)
	sse := func(p []float64) float64 {
		var sum float64
		for i, u := range us {
			r := p[0]*math.Exp(p[1]*u) - ys[i]
			sum += r * r
		}
		if !finite(sum) {
			return math.MaxFloat64
		}
		return sum
	}

	best := []float64{seed.A, seed.B}
	bestF := sse(best)

	// A failed or non-improving search leaves the seed in place.
	res, _ := optimize.Minimize(optimize.Problem{Func: sse}, best, &optimize.Settings{
		FuncEvaluations: 4000,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-14, Iterations: 100},
	}, &optimize.NelderMead{})
	if res != nil && len(res.X) == 2 && finite(res.X...) && res.F < bestF {
		best = res.X
	}

	fit := expFit{A: best[0], B: best[1] / scale}
	if !finite(fit.A, fit.B) {
		return expFit{}, errors.New("exponential fit is not finite")
	}
	return fit, nil
}

// seedExponential linearises y = A*exp(B*u) as ln y = ln A + B*u over the
// positive samples. Without two distinct positive samples it returns the
// constant mean.
func seedExponential(us, ys []float64) expFit {
	var lu, ly []float64
	for i, y := range ys {
		if y > 0 {
			lu = append(lu, us[i])
			ly = append(ly, math.Log(y))
		}
	}
	if distinct(lu) >= 2 {
		lnA, b := stat.LinearRegression(lu, ly, nil, false)
		if finite(lnA, b) {
			return expFit{A: math.Exp(lnA), B: b}
		}
	}
	return expFit{A: stat.Mean(ys, nil), B: 0}
}
