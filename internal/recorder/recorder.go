package recorder

import "BatterySentinel/internal/model"

// Run kinds.
const (
	KindSOC = "SOC"
	KindSOH = "SOH"
)

// Run holds everything persisted for one collection pass.
type Run struct {
	Kind       string // KindSOC or KindSOH
	Assessment *model.Assessment
	Report     *model.HealthReport
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRun(run *Run) (int64, error)
	Close() error
}
