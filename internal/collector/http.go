package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"BatterySentinel/internal/model"
)

// HTTPFetcher reads series from a battery-management REST API.
type HTTPFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPFetcher creates a new fetcher with optional proxy support.
func NewHTTPFetcher(baseURL, apiKey, proxyURL string) *HTTPFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

// dischargeSample is the expected JSON shape of /api/v1/discharge.
type dischargeSample struct {
	Time    float64 `json:"time"`
	Current float64 `json:"current"`
	Voltage float64 `json:"voltage"`
}

// agingSample is the expected JSON shape of /api/v1/aging.
type agingSample struct {
	Cycle      float64 `json:"cycle"`
	Capacity   float64 `json:"capacity"`
	Resistance float64 `json:"resistance"`
}

func (f *HTTPFetcher) FetchDischarge(ctx context.Context) (*model.DischargeSeries, error) {
	var samples []dischargeSample
	if err := f.getJSON(ctx, "/api/v1/discharge", &samples); err != nil {
		return nil, fmt.Errorf("fetch discharge: %w", err)
	}
	// Ensure chronological order
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Time < samples[j].Time })

	s := &model.DischargeSeries{
		Time:    make([]float64, len(samples)),
		Current: make([]float64, len(samples)),
		Voltage: make([]float64, len(samples)),
	}
	for i, x := range samples {
		s.Time[i], s.Current[i], s.Voltage[i] = x.Time, x.Current, x.Voltage
	}
	return s, nil
}

func (f *HTTPFetcher) FetchAging(ctx context.Context) (*model.AgingSeries, error) {
	var samples []agingSample
	if err := f.getJSON(ctx, "/api/v1/aging", &samples); err != nil {
		return nil, fmt.Errorf("fetch aging: %w", err)
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Cycle < samples[j].Cycle })

	s := &model.AgingSeries{
		Cycles:     make([]float64, len(samples)),
		Capacity:   make([]float64, len(samples)),
		Resistance: make([]float64, len(samples)),
	}
	for i, x := range samples {
		s.Cycles[i], s.Capacity[i], s.Resistance[i] = x.Cycle, x.Capacity, x.Resistance
	}
	return s, nil
}

func (f *HTTPFetcher) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
