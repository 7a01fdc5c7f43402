package battery

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// QuadraticOCV is the reference curve V(s) = A + B*s + C*s^2.
type QuadraticOCV struct {
	A, B, C float64
}

// ReferenceOCV is the curve used by the synthetic data generator.
var ReferenceOCV = QuadraticOCV{A: 3.2, B: 0.7, C: 0.1}

// Voltage evaluates the curve.
func (q QuadraticOCV) Voltage(soc float64) float64 {
	return q.A + q.B*soc + q.C*soc*soc
}

// Slope is the analytic derivative B + 2*C*s.
func (q QuadraticOCV) Slope(soc float64) float64 {
	return q.B + 2*q.C*soc
}

// OCVPoint is one tabulated (soc, voltage) pair.
type OCVPoint struct {
	SOC     float64
	Voltage float64
}

// TableOCV interpolates a measured OCV table with a monotone cubic, so a
// non-decreasing table yields a non-decreasing curve.
type TableOCV struct {
	lo, hi float64
	fb     interp.FritschButland
}

// NewTableOCV fits the table. Points are sorted by SOC; at least three
// distinct SOC values are required.
func NewTableOCV(points []OCVPoint) (*TableOCV, error) {
	if len(points) < 3 {
		return nil, errors.New("OCV table needs at least 3 points")
	}
	pts := make([]OCVPoint, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].SOC < pts[j].SOC })

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		if i > 0 && p.SOC == pts[i-1].SOC {
			return nil, fmt.Errorf("duplicate SOC %.4f in OCV table", p.SOC)
		}
		xs[i] = p.SOC
		ys[i] = p.Voltage
	}

	t := &TableOCV{lo: xs[0], hi: xs[len(xs)-1]}
	if err := t.fb.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit OCV table: %w", err)
	}
	return t, nil
}

// Voltage evaluates the curve, holding the end values outside the table.
func (t *TableOCV) Voltage(soc float64) float64 {
	return t.fb.Predict(t.within(soc))
}

// Slope evaluates dV/dsoc at the nearest point inside the table.
func (t *TableOCV) Slope(soc float64) float64 {
	return t.fb.PredictDerivative(t.within(soc))
}

func (t *TableOCV) within(soc float64) float64 {
	if soc < t.lo {
		return t.lo
	}
	if soc > t.hi {
		return t.hi
	}
	return soc
}

// slopeStep is the half-width of the central difference used by NumericSlope.
const slopeStep = 1e-4

// NumericSlope approximates dV/dsoc with a central difference. Near the ends
// of [0,1] the stencil is shifted inward so f is only sampled inside the range.
func NumericSlope(f func(float64) float64, soc float64) float64 {
	lo, hi := soc-slopeStep, soc+slopeStep
	if lo < 0 {
		lo, hi = 0, 2*slopeStep
	}
	if hi > 1 {
		lo, hi = 1-2*slopeStep, 1
	}
	return (f(hi) - f(lo)) / (hi - lo)
}
