package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"BatterySentinel/internal/collector"
	"BatterySentinel/internal/config"
	"BatterySentinel/internal/logging"
	"BatterySentinel/internal/model"
	"BatterySentinel/internal/notifier"
	"BatterySentinel/internal/recorder"
	"BatterySentinel/internal/scheduler"
	"BatterySentinel/internal/simulate"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logFile, err := logging.Configure(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		log.Fatalf("configure logging: %v", err)
	}
	defer logFile.Close()
	log.Info("BatterySentinel starting...")

	params, err := cfg.Parameters()
	if err != nil {
		log.Fatalf("battery parameters: %v", err)
	}

	// Init fetcher
	fetcher := newFetcher(cfg, params)
	log.WithField("source", fetcher.Name()).Info("data source ready")

	col := collector.NewCollector(fetcher, params)

	// Init notifier
	var n notifier.Notifier = notifier.LogNotifier{}
	if cfg.Webhook.URL != "" {
		n = notifier.NewWebhookNotifier(cfg.Webhook.URL, cfg.Proxy)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, n, rec)
	if err := sched.RegisterAll(cfg.Schedule.SOCCron, cfg.Schedule.SOHCron); err != nil {
		log.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, executing SOC and SOH tasks now")
		go func() {
			sched.RunSOCNow()
			sched.RunSOHNow()
		}()
	}

	log.Info("BatterySentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
}

func newFetcher(cfg *config.Config, params model.Parameters) collector.Fetcher {
	switch cfg.Source.Type {
	case config.SourceCSV:
		return &collector.CSVFetcher{DischargePath: cfg.Source.DischargeCSV, AgingPath: cfg.Source.AgingCSV}
	case config.SourceHTTP:
		return collector.NewHTTPFetcher(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Proxy)
	default:
		sim := cfg.Simulation
		return &collector.SimulatedFetcher{
			Params: params,
			Discharge: simulate.DischargeConfig{
				Duration:     sim.Duration,
				Current:      sim.Current,
				CurrentNoise: sim.CurrentNoise,
				VoltageNoise: sim.VoltageNoise,
				Seed:         sim.Seed,
			},
			Aging: simulate.AgingConfig{
				LastCycle:       sim.LastCycle,
				CapacityNoise:   sim.CapacityNoise,
				ResistanceNoise: sim.ResistanceNoise,
				Seed:            sim.Seed,
			},
		}
	}
}
