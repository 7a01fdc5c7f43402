// Package soh estimates state of health from per-cycle capacity and
// resistance measurements.
package soh

import (
	"fmt"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"
)

func validate(p model.Parameters, s *model.AgingSeries) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.Validate()
}

// CurveFit fits an exponential capacity-fade curve and a linear resistance
// growth line over the whole series and blends the fitted values. A term whose
// fit cannot be computed falls back to the raw normalised measurements.
func CurveFit(p model.Parameters, s *model.AgingSeries) (*model.EstimateSequence, error) {
	if err := validate(p, s); err != nil {
		return nil, fmt.Errorf("curve fit: %w", err)
	}

	n := s.Len()
	fade := make([]float64, n)
	growth := make([]float64, n)
	for i := range n {
		fade[i] = (p.NominalCapacity - s.Capacity[i]) / p.NominalCapacity
		growth[i] = (s.Resistance[i] - p.NominalResistance) / p.NominalResistance
	}

	out := &model.EstimateSequence{Method: model.MethodCurveFit, Values: make([]float64, n)}

	fadeAt := func(i int) float64 { return fade[i] }
	if f, err := fitExponential(s.Cycles, fade); err != nil {
		out.Notes = append(out.Notes, fmt.Sprintf("capacity fit unavailable (%v), using raw fade", err))
	} else {
		fadeAt = func(i int) float64 { return f.at(s.Cycles[i]) }
	}

	growthAt := func(i int) float64 { return growth[i] }
	if f, err := fitLinear(s.Cycles, growth); err != nil {
		out.Notes = append(out.Notes, fmt.Sprintf("resistance fit unavailable (%v), using raw growth", err))
	} else {
		growthAt = func(i int) float64 { return f.at(s.Cycles[i]) }
	}

	for i := range n {
		capSOH := 1 - fadeAt(i)
		resSOH := 1 - growthAt(i)
		out.Values[i] = battery.Clamp01(battery.CapacityWeight*capSOH + battery.ResistanceWeight*resSOH)
	}
	return out, nil
}
