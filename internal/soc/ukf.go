package soc

import (
	"fmt"
	"math"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"
)

// Sigma-point parameters for a one-dimensional state.
const (
	stateDim = 1
	nSigma   = 2*stateDim + 1

	Alpha = 1e-3
	Beta  = 2.0
	Kappa = 0.0
)

// ukfWeights holds the mean and covariance weights of the sigma points.
type ukfWeights struct {
	lambda float64
	mean   [nSigma]float64
	cov    [nSigma]float64
}

func newUKFWeights() ukfWeights {
	var w ukfWeights
	w.lambda = Alpha*Alpha*(stateDim+Kappa) - stateDim
	scale := stateDim + w.lambda

	w.mean[0] = w.lambda / scale
	for i := 1; i < nSigma; i++ {
		w.mean[i] = 0.5 / scale
	}
	w.cov = w.mean
	w.cov[0] += 1 - Alpha*Alpha + Beta
	return w
}

// ukf is the filter state of one UKF run.
type ukf struct {
	p model.Parameters
	w ukfWeights

	x, P float64

	// propagated sigma points and prior, set by predict
	chi          [nSigma]float64
	xPred, PPred float64

	floored int
}

func (f *ukf) reset(soc, cov float64) {
	f.x, f.P = soc, cov
	f.floored = 0
}

func (f *ukf) sigmaPoints() [nSigma]float64 {
	spread := math.Sqrt((stateDim + f.w.lambda) * math.Max(f.P, 0))
	return [nSigma]float64{f.x, f.x - spread, f.x + spread}
}

func (f *ukf) predict(current, dt float64) {
	sigma := f.sigmaPoints()
	for i := range sigma {
		f.chi[i] = coulombStep(sigma[i], current, dt, f.p.NominalCapacity)
	}

	f.xPred = 0
	for i := range f.chi {
		f.xPred += f.w.mean[i] * f.chi[i]
	}
	// A step that overflows holds the previous sigma points.
	if !finite(f.xPred) {
		f.chi = sigma
		f.xPred = f.x
		f.floored++
	}
	f.PPred = ProcessNoise
	for i := range f.chi {
		d := f.chi[i] - f.xPred
		f.PPred += f.w.cov[i] * d * d
	}
}

func (f *ukf) update(current, voltage float64) {
	var z [nSigma]float64
	zPred := 0.0
	for i := range f.chi {
		z[i] = measurement(f.p, f.chi[i], current)
		zPred += f.w.mean[i] * z[i]
	}

	Pzz := MeasurementNoise
	Pxz := 0.0
	for i := range z {
		dz := z[i] - zPred
		Pzz += f.w.cov[i] * dz * dz
		Pxz += f.w.cov[i] * (f.chi[i] - f.xPred) * dz
	}
	if !(Pzz > minInnovation) {
		Pzz = minInnovation
		f.floored++
	}

	K := Pxz / Pzz
	if !finite(K) || !finite(K*(voltage-zPred)) {
		K = 0
		f.floored++
	}
	f.x = battery.Clamp01(f.xPred + K*(voltage-zPred))
	f.P = f.PPred - K*Pzz*K
	if !(f.P >= 0) || math.IsInf(f.P, 0) {
		f.P = 0
		f.floored++
	}
}

func (f *ukf) state() (float64, float64) { return f.x, f.P }

func (f *ukf) guards() int { return f.floored }

// UKF runs the unscented Kalman filter over s. The first estimate is the
// configured initial SOC.
func UKF(p model.Parameters, s *model.DischargeSeries) (*model.EstimateSequence, error) {
	if err := validate(p, s); err != nil {
		return nil, fmt.Errorf("ukf: %w", err)
	}
	return run(model.MethodUKF, p, s, &ukf{p: p, w: newUKFWeights()}), nil
}
