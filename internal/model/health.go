package model

// HealthTier maps an SOH range to a condition label.
type HealthTier struct {
	Label  string
	MinSOH float64
}

// HealthReport is the graded view of an Assessment.
type HealthReport struct {
	Source string

	SOCEKF        float64
	SOCUKF        float64
	SOCDivergence float64
	HasSOC        bool

	SOHCurveFit     float64
	SOHKalman       float64
	SOH             float64 // mean of the two SOH estimators
	HasSOH          bool
	RemainingCycles float64

	Tier     HealthTier
	Warnings []string
}
