package model

import "time"

// Method names an estimator.
type Method string

const (
	MethodEKF      Method = "EKF"
	MethodUKF      Method = "UKF"
	MethodCurveFit Method = "CURVE_FIT"
	MethodKalman   Method = "KALMAN"
)

// EstimateSequence is one estimator's output, one value per input sample.
type EstimateSequence struct {
	Method     Method
	Values     []float64 // each in [0,1]
	Covariance []float64 // error covariance per sample, SOC filters only
	Notes      []string  // numeric guards that fired during the run
}

// Last returns the final estimate, or 0 for an empty sequence.
func (e *EstimateSequence) Last() float64 {
	if e == nil || len(e.Values) == 0 {
		return 0
	}
	return e.Values[len(e.Values)-1]
}

// Assessment groups the estimates produced by one collection pass.
type Assessment struct {
	Source    string
	StartedAt time.Time
	Duration  time.Duration
	Samples   int

	EKF      *EstimateSequence
	UKF      *EstimateSequence
	CurveFit *EstimateSequence
	Kalman   *EstimateSequence
}
