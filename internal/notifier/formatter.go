package notifier

import (
	"fmt"
	"strings"
	"time"

	"BatterySentinel/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FormatSOCReport formats a state-of-charge run.
func FormatSOCReport(a *model.Assessment, rep *model.HealthReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔋 BatterySentinel SOC | %s\n\n", a.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Source: %s (%d samples, %v)\n", a.Source, a.Samples, a.Duration.Round(time.Millisecond)))
	for _, seq := range []*model.EstimateSequence{a.EKF, a.UKF} {
		if seq == nil || len(seq.Values) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %5.1f%% (mean %.1f%%, min %.1f%%)\n",
			seq.Method, 100*seq.Last(), 100*stat.Mean(seq.Values, nil), 100*floats.Min(seq.Values)))
	}
	if rep.HasSOC {
		b.WriteString(fmt.Sprintf("  Divergence: %.2f%%\n", 100*rep.SOCDivergence))
	}
	b.WriteString(formatWarnings(rep.Warnings))
	return b.String()
}

// FormatSOHReport formats a state-of-health run.
func FormatSOHReport(a *model.Assessment, rep *model.HealthReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🩺 BatterySentinel SOH | %s\n\n", a.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Source: %s (%d cycles)\n", a.Source, a.Samples))
	b.WriteString(FormatHealth(rep))
	return b.String()
}

// FormatHealth formats the graded SOH block of a report.
func FormatHealth(rep *model.HealthReport) string {
	var b strings.Builder
	if rep.HasSOH {
		b.WriteString(fmt.Sprintf("  Curve fit: %5.1f%%\n", 100*rep.SOHCurveFit))
		b.WriteString(fmt.Sprintf("  Kalman:    %5.1f%%\n", 100*rep.SOHKalman))
		b.WriteString("  ─────────────────\n")
		b.WriteString(fmt.Sprintf("  SOH: %.1f%% [%s]\n", 100*rep.SOH, rep.Tier.Label))
		b.WriteString(fmt.Sprintf("  Remaining cycles: ~%.0f\n", rep.RemainingCycles))
	} else {
		b.WriteString("  SOH unavailable\n")
	}
	b.WriteString(formatWarnings(rep.Warnings))
	return b.String()
}

func formatWarnings(ws []string) string {
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n⚠️ Warnings:\n")
	for _, w := range ws {
		b.WriteString("  - " + w + "\n")
	}
	return b.String()
}
