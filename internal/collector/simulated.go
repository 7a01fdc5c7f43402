package collector

import (
	"context"

	"BatterySentinel/internal/model"
	"BatterySentinel/internal/simulate"
)

// SimulatedFetcher produces synthetic data from the reference battery model.
// Fixed series, when set, are returned as-is for tests.
type SimulatedFetcher struct {
	Params    model.Parameters
	Discharge simulate.DischargeConfig
	Aging     simulate.AgingConfig

	DischargeData *model.DischargeSeries
	AgingData     *model.AgingSeries
}

func (f *SimulatedFetcher) Name() string { return "simulated" }

func (f *SimulatedFetcher) FetchDischarge(ctx context.Context) (*model.DischargeSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.DischargeData != nil {
		return f.DischargeData, nil
	}
	return simulate.Discharge(f.Params, f.Discharge)
}

func (f *SimulatedFetcher) FetchAging(ctx context.Context) (*model.AgingSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.AgingData != nil {
		return f.AgingData, nil
	}
	return simulate.Aging(f.Params, f.Aging)
}
