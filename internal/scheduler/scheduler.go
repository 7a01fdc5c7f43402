package scheduler

import (
	"context"
	"fmt"

	"BatterySentinel/internal/collector"
	"BatterySentinel/internal/health"
	"BatterySentinel/internal/model"
	"BatterySentinel/internal/notifier"
	"BatterySentinel/internal/recorder"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. A task still running when its next
// tick fires is skipped.
func NewScheduler(ctx context.Context, col *collector.Collector, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// RegisterAll registers the SOC and SOH tasks.
func (s *Scheduler) RegisterAll(socCron, sohCron string) error {
	if _, err := s.Cron.AddFunc(socCron, s.socTask); err != nil {
		return fmt.Errorf("register soc task: %w", err)
	}
	if _, err := s.Cron.AddFunc(sohCron, s.sohTask); err != nil {
		return fmt.Errorf("register soh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunSOCNow executes the SOC task immediately (for RUN_ON_START).
func (s *Scheduler) RunSOCNow() { s.socTask() }

// RunSOHNow executes the SOH task immediately (for RUN_ON_START).
func (s *Scheduler) RunSOHNow() { s.sohTask() }

func (s *Scheduler) socTask() {
	log.Info("running soc task")
	a, err := s.Collector.CollectSOC(s.Ctx)
	if err != nil {
		log.WithError(err).Error("soc collect")
		s.trySend(fmt.Sprintf("❌ SOC estimation failed: %v", err))
		return
	}
	rep := health.Evaluate(a, s.Collector.Params.CycleLife)
	s.trySend(notifier.FormatSOCReport(a, rep))
	s.record(recorder.KindSOC, a, rep)
}

func (s *Scheduler) sohTask() {
	log.Info("running soh task")
	a, err := s.Collector.CollectSOH(s.Ctx)
	if err != nil {
		log.WithError(err).Error("soh collect")
		s.trySend(fmt.Sprintf("❌ SOH estimation failed: %v", err))
		return
	}
	rep := health.Evaluate(a, s.Collector.Params.CycleLife)
	s.trySend(notifier.FormatSOHReport(a, rep))
	s.record(recorder.KindSOH, a, rep)
}

func (s *Scheduler) record(kind string, a *model.Assessment, rep *model.HealthReport) {
	id, err := s.Recorder.RecordRun(&recorder.Run{Kind: kind, Assessment: a, Report: rep})
	if err != nil {
		log.WithError(err).WithField("kind", kind).Error("record run")
		return
	}
	log.WithFields(log.Fields{
		"kind":     kind,
		"run_id":   id,
		"samples":  a.Samples,
		"duration": a.Duration,
	}).Info("run recorded")
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.WithError(err).Error("send notification")
	}
}
