package collector

import (
	"context"
	"fmt"
	"time"

	"BatterySentinel/internal/model"
	"BatterySentinel/internal/soc"
	"BatterySentinel/internal/soh"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Collector orchestrates data fetching and estimation.
type Collector struct {
	Fetcher Fetcher
	Params  model.Parameters
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, params model.Parameters) *Collector {
	return &Collector{Fetcher: fetcher, Params: params}
}

// CollectSOC fetches a discharge record and runs both SOC filters on it.
func (c *Collector) CollectSOC(ctx context.Context) (*model.Assessment, error) {
	start := time.Now()
	series, err := c.Fetcher.FetchDischarge(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch discharge: %w", err)
	}

	a := &model.Assessment{Source: c.Fetcher.Name(), StartedAt: start, Samples: series.Len()}
	var g errgroup.Group
	g.Go(func() (err error) {
		a.EKF, err = soc.EKF(c.Params, series)
		return err
	})
	g.Go(func() (err error) {
		a.UKF, err = soc.UKF(c.Params, series)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.Duration = time.Since(start)

	c.logNotes(a, a.EKF, a.UKF)
	return a, nil
}

// CollectSOH fetches an aging record and runs both SOH estimators on it.
func (c *Collector) CollectSOH(ctx context.Context) (*model.Assessment, error) {
	start := time.Now()
	series, err := c.Fetcher.FetchAging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch aging: %w", err)
	}

	a := &model.Assessment{Source: c.Fetcher.Name(), StartedAt: start, Samples: series.Len()}
	var g errgroup.Group
	g.Go(func() (err error) {
		a.CurveFit, err = soh.CurveFit(c.Params, series)
		return err
	})
	g.Go(func() (err error) {
		a.Kalman, err = soh.Kalman(c.Params, series)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.Duration = time.Since(start)

	c.logNotes(a, a.CurveFit, a.Kalman)
	return a, nil
}

func (c *Collector) logNotes(a *model.Assessment, seqs ...*model.EstimateSequence) {
	for _, seq := range seqs {
		for _, note := range seq.Notes {
			log.WithFields(log.Fields{
				"source":  a.Source,
				"method":  seq.Method,
				"samples": a.Samples,
			}).Warn(note)
		}
	}
}
