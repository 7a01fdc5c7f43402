package collector

import (
	"context"

	"BatterySentinel/internal/model"
)

// Fetcher defines the interface for fetching battery measurements.
type Fetcher interface {
	FetchDischarge(ctx context.Context) (*model.DischargeSeries, error)
	FetchAging(ctx context.Context) (*model.AgingSeries, error)
	Name() string
}
