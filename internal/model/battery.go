package model

import (
	"fmt"
	"math"
)

// OCVFunc maps a state of charge in [0,1] to open-circuit voltage in volts.
type OCVFunc func(soc float64) float64

// Parameters describes one cell for the duration of an estimation run.
type Parameters struct {
	NominalCapacity   float64 // Q_nom, Ah
	NominalResistance float64 // R0, ohm
	InitialSOC        float64
	SamplePeriod      float64 // Ts, seconds
	CycleLife         float64 // cycles to end of life

	OCV OCVFunc
	// OCVSlope is dV/dsoc. When nil the SOC filters differentiate OCV numerically.
	OCVSlope OCVFunc
}

// Validate checks the fields shared by the SOC and SOH paths.
func (p Parameters) Validate() error {
	if !(p.NominalCapacity > 0) || math.IsInf(p.NominalCapacity, 0) {
		return fmt.Errorf("%w: nominal capacity must be positive, got %v", ErrInvalidInput, p.NominalCapacity)
	}
	if !(p.NominalResistance > 0) || math.IsInf(p.NominalResistance, 0) {
		return fmt.Errorf("%w: nominal resistance must be positive, got %v", ErrInvalidInput, p.NominalResistance)
	}
	if !(p.CycleLife > 0) || math.IsInf(p.CycleLife, 0) {
		return fmt.Errorf("%w: cycle life must be positive, got %v", ErrInvalidInput, p.CycleLife)
	}
	return nil
}

// ValidateSOC additionally checks what the SOC filters need.
func (p Parameters) ValidateSOC() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !(p.InitialSOC >= 0 && p.InitialSOC <= 1) {
		return fmt.Errorf("%w: initial SOC must be in [0,1], got %v", ErrInvalidInput, p.InitialSOC)
	}
	if !(p.SamplePeriod > 0) {
		return fmt.Errorf("%w: sample period must be positive, got %v", ErrInvalidInput, p.SamplePeriod)
	}
	if p.OCV == nil {
		return fmt.Errorf("%w: OCV curve is required", ErrInvalidInput)
	}
	return nil
}
