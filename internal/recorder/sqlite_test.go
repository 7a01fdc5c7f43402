package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"BatterySentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordSOCRun(t *testing.T) {
	r := openTemp(t)

	a := &model.Assessment{
		Source:   "simulated",
		Samples:  3,
		Duration: 12 * time.Millisecond,
		EKF:      &model.EstimateSequence{Method: model.MethodEKF, Values: []float64{0.8, 0.7, 0.6}, Covariance: []float64{0.1, 0.05, 0.02}},
		UKF:      &model.EstimateSequence{Method: model.MethodUKF, Values: []float64{0.8, 0.71, 0.61}, Covariance: []float64{0.1, 0.05, 0.02}},
	}
	rep := &model.HealthReport{SOCEKF: 0.6, SOCUKF: 0.61, HasSOC: true, Warnings: []string{"a", "b"}}

	id, err := r.RecordRun(&Run{Kind: KindSOC, Assessment: a, Report: rep})
	require.NoError(t, err)
	assert.Positive(t, id)

	var kind, warnings string
	var samples, durationMS int64
	require.NoError(t, r.db.QueryRow(`SELECT kind, samples, duration_ms, warnings FROM runs WHERE id = ?`, id).
		Scan(&kind, &samples, &durationMS, &warnings))
	assert.Equal(t, KindSOC, kind)
	assert.EqualValues(t, 3, samples)
	assert.EqualValues(t, 12, durationMS)
	assert.Equal(t, "a; b", warnings)

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM estimates WHERE run_id = ?`, id).Scan(&n))
	assert.Equal(t, 6, n)

	var v, cov float64
	require.NoError(t, r.db.QueryRow(`SELECT value, covariance FROM estimates WHERE run_id = ? AND method = 'UKF' AND idx = 2`, id).
		Scan(&v, &cov))
	assert.Equal(t, 0.61, v)
	assert.Equal(t, 0.02, cov)
}

func TestRecordSOHRunWithoutCovariance(t *testing.T) {
	r := openTemp(t)

	a := &model.Assessment{
		Source:   "csv",
		Samples:  2,
		CurveFit: &model.EstimateSequence{Method: model.MethodCurveFit, Values: []float64{1, 0.9}},
		Kalman:   &model.EstimateSequence{Method: model.MethodKalman, Values: []float64{1, 0.95}},
	}
	rep := &model.HealthReport{HasSOH: true, SOH: 0.925, Tier: model.HealthTier{Label: "GOOD", MinSOH: 0.9}}

	first, err := r.RecordRun(&Run{Kind: KindSOH, Assessment: a, Report: rep})
	require.NoError(t, err)
	second, err := r.RecordRun(&Run{Kind: KindSOH, Assessment: a, Report: rep})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	var tier string
	require.NoError(t, r.db.QueryRow(`SELECT tier_label FROM runs WHERE id = ?`, second).Scan(&tier))
	assert.Equal(t, "GOOD", tier)

	var nulls int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM estimates WHERE covariance IS NULL`).Scan(&nulls))
	assert.Equal(t, 8, nulls)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	_, err = r.RecordRun(&Run{Kind: KindSOH, Assessment: &model.Assessment{Source: "simulated"}})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	id, err := r.RecordRun(&Run{Kind: KindSOC})
	assert.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, r.Close())
}
