package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"
	"BatterySentinel/internal/simulate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params() model.Parameters {
	ocv := battery.ReferenceOCV
	return model.Parameters{
		NominalCapacity:   2.3,
		NominalResistance: 0.1,
		InitialSOC:        0.8,
		SamplePeriod:      1,
		CycleLife:         1000,
		OCV:               ocv.Voltage,
		OCVSlope:          ocv.Slope,
	}
}

func simulated() *SimulatedFetcher {
	return &SimulatedFetcher{
		Params:    params(),
		Discharge: simulate.DischargeConfig{Duration: 600, Current: 1, Seed: 1},
		Aging:     simulate.AgingConfig{LastCycle: 200, Seed: 1},
	}
}

func TestCollectSOC(t *testing.T) {
	c := NewCollector(simulated(), params())
	a, err := c.CollectSOC(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "simulated", a.Source)
	assert.Equal(t, 601, a.Samples)
	require.NotNil(t, a.EKF)
	require.NotNil(t, a.UKF)
	assert.Len(t, a.EKF.Values, 601)
	assert.Len(t, a.UKF.Values, 601)
	assert.Equal(t, 0.8, a.EKF.Values[0])
	assert.Nil(t, a.CurveFit)
	assert.Nil(t, a.Kalman)
}

func TestCollectSOH(t *testing.T) {
	c := NewCollector(simulated(), params())
	a, err := c.CollectSOH(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 201, a.Samples)
	require.NotNil(t, a.CurveFit)
	require.NotNil(t, a.Kalman)
	assert.Equal(t, 1.0, a.Kalman.Values[0])
	assert.Nil(t, a.EKF)
}

func TestCollectInvalidSeries(t *testing.T) {
	f := &SimulatedFetcher{
		DischargeData: &model.DischargeSeries{Time: []float64{0, 1}, Current: []float64{1}, Voltage: []float64{3.9, 3.9}},
	}
	_, err := NewCollector(f, params()).CollectSOC(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSimulatedFetcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := simulated().FetchDischarge(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = NewCollector(simulated(), params()).CollectSOH(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCSVFetcher(t *testing.T) {
	f := &CSVFetcher{
		DischargePath: writeFile(t, "discharge.csv", "time,current,voltage\n0,1.0,3.78\n1, 1.0, 3.779\n# pause\n2,1.0,3.778\n"),
		AgingPath:     writeFile(t, "aging.csv", "0,2.3,0.1\n100,2.25,0.105\n"),
	}
	d, err := f.FetchDischarge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, d.Time)
	assert.Equal(t, []float64{3.78, 3.779, 3.778}, d.Voltage)

	a, err := f.FetchAging(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 100}, a.Cycles)
	assert.Equal(t, []float64{0.1, 0.105}, a.Resistance)
}

func TestCSVFetcherErrors(t *testing.T) {
	_, err := (&CSVFetcher{}).FetchDischarge(context.Background())
	assert.Error(t, err)

	f := &CSVFetcher{AgingPath: writeFile(t, "bad.csv", "0,2.3,0.1\n1,abc,0.1\n")}
	_, err = f.FetchAging(context.Background())
	assert.Error(t, err)

	f = &CSVFetcher{AgingPath: writeFile(t, "short.csv", "0,2.3\n")}
	_, err = f.FetchAging(context.Background())
	assert.Error(t, err)

	f = &CSVFetcher{DischargePath: filepath.Join(t.TempDir(), "missing.csv")}
	_, err = f.FetchDischarge(context.Background())
	assert.Error(t, err)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/v1/discharge":
			json.NewEncoder(w).Encode([]dischargeSample{
				{Time: 1, Current: 1, Voltage: 3.77},
				{Time: 0, Current: 1, Voltage: 3.78},
			})
		case "/api/v1/aging":
			json.NewEncoder(w).Encode([]agingSample{
				{Cycle: 100, Capacity: 2.25, Resistance: 0.105},
				{Cycle: 0, Capacity: 2.3, Resistance: 0.1},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, "secret", "")
	d, err := f.FetchDischarge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, d.Time)
	assert.Equal(t, []float64{3.78, 3.77}, d.Voltage)

	a, err := f.FetchAging(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 100}, a.Cycles)
	assert.Equal(t, []float64{2.3, 2.25}, a.Capacity)

	_, err = NewHTTPFetcher(srv.URL, "wrong", "").FetchAging(context.Background())
	assert.ErrorContains(t, err, "status 401")
}
