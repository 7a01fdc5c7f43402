package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"BatterySentinel/internal/model"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists runs and their per-sample estimates to SQLite.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the monitor writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			kind         TEXT NOT NULL,
			source       TEXT,
			samples      INTEGER,
			duration_ms  INTEGER,
			soc_ekf      REAL,
			soc_ukf      REAL,
			soh_curvefit REAL,
			soh_kalman   REAL,
			soh          REAL,
			tier_label   TEXT,
			remaining    REAL,
			warnings     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS estimates (
			run_id     INTEGER NOT NULL REFERENCES runs(id),
			method     TEXT NOT NULL,
			idx        INTEGER NOT NULL,
			value      REAL,
			covariance REAL,
			PRIMARY KEY (run_id, method, idx)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run summary and every estimate sample in one
// transaction and returns the run id.
func (r *SQLiteRecorder) RecordRun(run *Run) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, rep := run.Assessment, run.Report
	if rep == nil {
		rep = &model.HealthReport{}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs
		(timestamp, kind, source, samples, duration_ms,
		 soc_ekf, soc_ukf, soh_curvefit, soh_kalman, soh,
		 tier_label, remaining, warnings)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), run.Kind, a.Source, a.Samples, a.Duration.Milliseconds(),
		rep.SOCEKF, rep.SOCUKF, rep.SOHCurveFit, rep.SOHKalman, rep.SOH,
		rep.Tier.Label, rep.RemainingCycles, strings.Join(rep.Warnings, "; "),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO estimates (run_id, method, idx, value, covariance) VALUES (?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare estimates: %w", err)
	}
	defer stmt.Close()

	for _, seq := range []*model.EstimateSequence{a.EKF, a.UKF, a.CurveFit, a.Kalman} {
		if seq == nil {
			continue
		}
		for i, v := range seq.Values {
			var cov any
			if i < len(seq.Covariance) {
				cov = seq.Covariance[i]
			}
			if _, err := stmt.Exec(id, string(seq.Method), i, v, cov); err != nil {
				return 0, fmt.Errorf("insert %s estimate %d: %w", seq.Method, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
