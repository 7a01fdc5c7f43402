package soc

import (
	"fmt"
	"math"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"
)

// ekf is the filter state of one EKF run.
type ekf struct {
	p model.Parameters

	x, P         float64 // posterior
	xPred, PPred float64 // prior, set by predict

	floored int
}

func (f *ekf) reset(soc, cov float64) {
	f.x, f.P = soc, cov
	f.floored = 0
}

// predict applies Coulomb counting; dt == 0 leaves the state unchanged. A
// step that overflows holds the previous estimate.
func (f *ekf) predict(current, dt float64) {
	f.xPred = coulombStep(f.x, current, dt, f.p.NominalCapacity)
	if !finite(f.xPred) {
		f.xPred = f.x
		f.floored++
	}
	f.PPred = f.P + ProcessNoise
}

// update linearises the OCV at the prior and applies the scalar gain.
func (f *ekf) update(current, voltage float64) {
	H := slope(f.p, f.xPred)
	innovation := voltage - measurement(f.p, f.xPred, current)

	S := H*H*f.PPred + MeasurementNoise
	if !(S > minInnovation) {
		S = minInnovation
		f.floored++
	}
	K := f.PPred * H / S
	if !finite(H) || !finite(K) || !finite(K*innovation) {
		K, H = 0, 0
		f.floored++
	}

	f.x = battery.Clamp01(f.xPred + K*innovation)
	f.P = (1 - K*H) * f.PPred
	if !(f.P >= 0) || math.IsInf(f.P, 0) {
		f.P = 0
		f.floored++
	}
}

func (f *ekf) state() (float64, float64) { return f.x, f.P }

func (f *ekf) guards() int { return f.floored }

// EKF runs the extended Kalman filter over s. The first estimate is the
// configured initial SOC; Covariance carries P for every sample.
func EKF(p model.Parameters, s *model.DischargeSeries) (*model.EstimateSequence, error) {
	if err := validate(p, s); err != nil {
		return nil, fmt.Errorf("ekf: %w", err)
	}
	return run(model.MethodEKF, p, s, &ekf{p: p}), nil
}
