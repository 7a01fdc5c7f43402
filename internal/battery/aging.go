package battery

import "math"

// Reference aging run: capacity fade grows exponentially to FadeAtEOL of the
// nominal capacity at the end of the cycle life, resistance grows linearly to
// GrowthAtEOL above nominal.
const (
	FadeAtEOL     = 0.20
	FadeCurvature = 3.0
	GrowthAtEOL   = 0.50
)

// EndOfLifeSOH is the conventional replacement threshold.
const EndOfLifeSOH = 0.80

// CapacityWeight and ResistanceWeight blend capacity and resistance into one
// SOH figure. Both SOH estimators use the same split.
const (
	CapacityWeight   = 0.7
	ResistanceWeight = 0.3
)

// CapacityFade returns the fractional capacity loss after cycle cycles.
func CapacityFade(cycle, cycleLife float64) float64 {
	return FadeAtEOL * math.Exp(FadeCurvature*(cycle/cycleLife-1))
}

// CapacityAt returns the remaining capacity in Ah.
func CapacityAt(nominal, cycle, cycleLife float64) float64 {
	return nominal * (1 - CapacityFade(cycle, cycleLife))
}

// ResistanceAt returns internal resistance in ohm after cycle cycles.
func ResistanceAt(nominal, cycle, cycleLife float64) float64 {
	return nominal * (1 + GrowthAtEOL*cycle/cycleLife)
}
