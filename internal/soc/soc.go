// Package soc estimates state of charge from a current/voltage series.
//
// Both filters use the same scalar Coulomb-counting process model and the
// same OCV-minus-IR measurement model; they differ only in how the OCV
// nonlinearity is handled.
package soc

import (
	"fmt"
	"math"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"
)

// Fixed filter tuning.
const (
	ProcessNoise      = 1e-5 // Q
	MeasurementNoise  = 0.01 // R
	InitialCovariance = 0.1  // P0

	// minInnovation floors the innovation variance before it is inverted.
	minInnovation = 1e-12
)

const secondsPerHour = 3600.0

// coulombStep advances soc by one sample of Coulomb counting.
func coulombStep(soc, current, dt, capacityAh float64) float64 {
	return soc - current*dt/(capacityAh*secondsPerHour)
}

// measurement predicts terminal voltage for a given soc and load current.
func measurement(p model.Parameters, soc, current float64) float64 {
	return p.OCV(soc) - current*p.NominalResistance
}

// slope returns dOCV/dsoc, analytic when the parameters carry one.
func slope(p model.Parameters, soc float64) float64 {
	if p.OCVSlope != nil {
		return p.OCVSlope(soc)
	}
	return battery.NumericSlope(p.OCV, soc)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func validate(p model.Parameters, s *model.DischargeSeries) error {
	if err := p.ValidateSOC(); err != nil {
		return err
	}
	return s.Validate()
}

// run drives a filter over the series. f is reset to the initial SOC, step
// is called for every sample after the first with the previous current and
// the elapsed time.
func run(method model.Method, p model.Parameters, s *model.DischargeSeries, f filter) *model.EstimateSequence {
	n := s.Len()
	out := &model.EstimateSequence{
		Method:     method,
		Values:     make([]float64, n),
		Covariance: make([]float64, n),
	}

	f.reset(p.InitialSOC, InitialCovariance)
	out.Values[0] = p.InitialSOC
	out.Covariance[0] = InitialCovariance

	for k := 1; k < n; k++ {
		current := s.Current[k-1]
		dt := s.Time[k] - s.Time[k-1]
		f.predict(current, dt)
		f.update(current, s.Voltage[k])
		out.Values[k], out.Covariance[k] = f.state()
	}

	if g := f.guards(); g > 0 {
		out.Notes = append(out.Notes, guardNote(g))
	}
	return out
}

type filter interface {
	reset(soc, cov float64)
	predict(current, dt float64)
	update(current, voltage float64)
	state() (soc, cov float64)
	guards() int
}

func guardNote(n int) string {
	return fmt.Sprintf("numeric guard fired on %d samples", n)
}
