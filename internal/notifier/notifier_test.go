package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"BatterySentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSend(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		got = payload["text"]
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "")
	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 0))
	assert.Equal(t, "hello", got)
}

func TestWebhookRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "")
	n.Backoff = time.Millisecond
	require.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
	assert.EqualValues(t, 3, calls.Load())
}

func TestWebhookRetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "")
	n.Backoff = time.Millisecond
	err := n.SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
	assert.Contains(t, err.Error(), "status 400")
}

func TestWebhookRetryCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "")
	n.Backoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.SendWithRetry(ctx, "x", 3), context.DeadlineExceeded)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, LogNotifier{}.SendWithRetry(context.Background(), "report", 3))
}

func TestFormatSOCReport(t *testing.T) {
	a := &model.Assessment{
		Source:    "simulated",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Samples:   3,
		EKF:       &model.EstimateSequence{Method: model.MethodEKF, Values: []float64{0.8, 0.6, 0.4}},
		UKF:       &model.EstimateSequence{Method: model.MethodUKF, Values: []float64{0.8, 0.6, 0.5}},
	}
	rep := &model.HealthReport{HasSOC: true, SOCDivergence: 0.1, Warnings: []string{"EKF and UKF disagree by 10.0%"}}

	text := FormatSOCReport(a, rep)
	assert.Contains(t, text, "2026-03-01 12:00")
	assert.Contains(t, text, "EKF:  40.0% (mean 60.0%, min 40.0%)")
	assert.Contains(t, text, "UKF:  50.0%")
	assert.Contains(t, text, "Divergence: 10.00%")
	assert.Contains(t, text, "- EKF and UKF disagree")
}

func TestFormatSOHReport(t *testing.T) {
	a := &model.Assessment{Source: "csv", Samples: 500}
	rep := &model.HealthReport{
		HasSOH: true, SOHCurveFit: 0.86, SOHKalman: 0.84, SOH: 0.85,
		Tier: model.HealthTier{Label: "FAIR"}, RemainingCycles: 50,
	}
	text := FormatSOHReport(a, rep)
	assert.Contains(t, text, "csv (500 cycles)")
	assert.Contains(t, text, "SOH: 85.0% [FAIR]")
	assert.Contains(t, text, "Remaining cycles: ~50")
	assert.NotContains(t, text, "Warnings")

	assert.Contains(t, FormatHealth(&model.HealthReport{}), "SOH unavailable")
}
