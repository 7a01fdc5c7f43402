// Package health grades estimator output into a condition report.
package health

import (
	"fmt"
	"math"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Warning thresholds.
const (
	LowSOC        = 0.2
	MaxDivergence = 0.05
)

// Tiers maps blended SOH to a condition label, highest first.
var Tiers = []model.HealthTier{
	{Label: "GOOD", MinSOH: 0.90},
	{Label: "FAIR", MinSOH: battery.EndOfLifeSOH},
	{Label: "AGED", MinSOH: 0.70},
}

// DefaultTier is the tier below every entry of Tiers.
var DefaultTier = model.HealthTier{Label: "END_OF_LIFE", MinSOH: 0}

func mapTier(soh float64) model.HealthTier {
	for _, t := range Tiers {
		if soh >= t.MinSOH {
			return t
		}
	}
	return DefaultTier
}

// RemainingCycles estimates cycles left before SOH reaches EndOfLifeSOH,
// assuming the nominal loss of 1/cycleLife per cycle.
func RemainingCycles(soh, cycleLife float64) float64 {
	return math.Max(0, (soh-battery.EndOfLifeSOH)*cycleLife)
}

// Evaluate builds a report from the latest estimates of a. Either half of the
// assessment may be absent.
func Evaluate(a *model.Assessment, cycleLife float64) *model.HealthReport {
	r := &model.HealthReport{Source: a.Source}

	if a.EKF != nil && a.UKF != nil {
		r.HasSOC = true
		r.SOCEKF = a.EKF.Last()
		r.SOCUKF = a.UKF.Last()
		r.SOCDivergence = math.Abs(r.SOCEKF - r.SOCUKF)

		if math.Min(r.SOCEKF, r.SOCUKF) < LowSOC {
			r.Warnings = append(r.Warnings, fmt.Sprintf("low charge: SOC %.1f%%", 100*math.Min(r.SOCEKF, r.SOCUKF)))
		}
		if r.SOCDivergence > MaxDivergence {
			r.Warnings = append(r.Warnings, fmt.Sprintf("EKF and UKF disagree by %.1f%%", 100*r.SOCDivergence))
		}
	}

	if a.CurveFit != nil && a.Kalman != nil {
		r.HasSOH = true
		r.SOHCurveFit = a.CurveFit.Last()
		r.SOHKalman = a.Kalman.Last()
		r.SOH = stat.Mean([]float64{r.SOHCurveFit, r.SOHKalman}, nil)
		r.Tier = mapTier(r.SOH)
		r.RemainingCycles = RemainingCycles(r.SOH, cycleLife)
	}

	for _, seq := range []*model.EstimateSequence{a.EKF, a.UKF, a.CurveFit, a.Kalman} {
		if seq == nil {
			continue
		}
		for _, note := range seq.Notes {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", seq.Method, note))
		}
	}
	return r
}
