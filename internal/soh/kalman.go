package soh

import (
	"fmt"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"
)

// Fixed tuning of the SOH filter.
const (
	ProcessNoise      = 1e-6 // Q
	MeasurementNoise  = 1e-4 // R
	InitialCovariance = 0.01 // P0

	// minResistance floors the measured resistance before R0 is divided by it.
	minResistance = 1e-9
)

// measuredSOH blends normalised capacity and inverted resistance growth.
func measuredSOH(p model.Parameters, capacity, resistance float64) (z float64, floored bool) {
	r := battery.Floor(resistance, minResistance)
	z = battery.CapacityWeight*capacity/p.NominalCapacity +
		battery.ResistanceWeight*p.NominalResistance/r
	return z, r != resistance
}

// filter is the SOH filter state; H = 1.
type filter struct {
	x, P  float64
	decay float64
}

func (f *filter) predict() {
	f.x -= f.decay
	f.P += ProcessNoise
}

func (f *filter) update(z float64) {
	K := f.P / (f.P + MeasurementNoise)
	f.x = battery.Clamp01(f.x + K*(z-f.x))
	f.P = (1 - K) * f.P
}

// Kalman tracks SOH with a linear per-sample degradation of 1/CycleLife.
// The first estimate is always 1.
func Kalman(p model.Parameters, s *model.AgingSeries) (*model.EstimateSequence, error) {
	if err := validate(p, s); err != nil {
		return nil, fmt.Errorf("kalman: %w", err)
	}

	n := s.Len()
	out := &model.EstimateSequence{Method: model.MethodKalman, Values: make([]float64, n)}

	f := filter{x: 1, P: InitialCovariance, decay: 1 / p.CycleLife}
	out.Values[0] = f.x

	floored := 0
	for k := 1; k < n; k++ {
		f.predict()
		z, fl := measuredSOH(p, s.Capacity[k], s.Resistance[k])
		if fl {
			floored++
		}
		f.update(z)
		out.Values[k] = f.x
	}

	if floored > 0 {
		out.Notes = append(out.Notes, fmt.Sprintf("resistance floored on %d samples", floored))
	}
	return out, nil
}
