package model

import (
	"fmt"
	"math"
)

// DischargeSeries is a current/voltage time series. Positive current drains the cell.
type DischargeSeries struct {
	Time    []float64 // seconds
	Current []float64 // amps
	Voltage []float64 // volts
}

// Len returns the number of samples.
func (s *DischargeSeries) Len() int { return len(s.Time) }

// Validate enforces equal lengths, at least one sample, a non-decreasing
// time axis and finite values.
func (s *DischargeSeries) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil discharge series", ErrInvalidInput)
	}
	return validateColumns("time", s.Time, []column{
		{"current", s.Current},
		{"voltage", s.Voltage},
	})
}

// AgingSeries is a per-cycle capacity/resistance series.
type AgingSeries struct {
	Cycles     []float64
	Capacity   []float64 // Ah
	Resistance []float64 // ohm
}

// Len returns the number of samples.
func (s *AgingSeries) Len() int { return len(s.Cycles) }

// Validate enforces the same invariants as DischargeSeries on the cycle axis.
func (s *AgingSeries) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil aging series", ErrInvalidInput)
	}
	return validateColumns("cycles", s.Cycles, []column{
		{"capacity", s.Capacity},
		{"resistance", s.Resistance},
	})
}

type column struct {
	name   string
	values []float64
}

func validateColumns(axisName string, axis []float64, cols []column) error {
	n := len(axis)
	if n == 0 {
		return fmt.Errorf("%w: empty %s axis", ErrInvalidInput, axisName)
	}
	for _, c := range cols {
		if len(c.values) != n {
			return fmt.Errorf("%w: %s has %d samples, %s has %d", ErrInvalidInput, c.name, len(c.values), axisName, n)
		}
	}
	for i, v := range axis {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d] is not finite", ErrInvalidInput, axisName, i)
		}
		if i > 0 && v < axis[i-1] {
			return fmt.Errorf("%w: %s decreases at index %d (%v < %v)", ErrInvalidInput, axisName, i, v, axis[i-1])
		}
	}
	for _, c := range cols {
		for i, v := range c.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s[%d] is not finite", ErrInvalidInput, c.name, i)
			}
		}
	}
	return nil
}
