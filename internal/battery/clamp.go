package battery

import "math"

// Clamp01 restores the [0,1] invariant on a published estimate. NaN maps
// to 0 so a degenerate update never leaks out of an estimator.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Floor returns v, or eps when v is not above eps (including NaN).
func Floor(v, eps float64) float64 {
	if !(v > eps) {
		return eps
	}
	return v
}
