package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"leadtracker_backend/internal/events"
	"leadtracker_backend/internal/leads/repository"
	"leadtracker_backend/internal/leads/scoring"
	"leadtracker_backend/internal/leads/service"
	"leadtracker_backend/platform/config"
	"leadtracker_backend/platform/db"
	"leadtracker_backend/platform/logger"
)

func main() {
	includeInactive := flag.Bool("include-inactive", true, "also rescore soft-deleted leads")
	batchSize := flag.Int("batch-size", 500, "leads loaded per round trip")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting lead rescore backfill", "includeInactive", *includeInactive, "batchSize", *batchSize)

	if cfg.UsesMemoryStore() {
		log.Warn("LEAD_STORE=memory has nothing persistent to backfill, skipping")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	repo := repository.New(pool)
	service.NewActivityRecorder(repo, log).Subscribe(eventBus)
	svc := service.New(repo, scoring.FromSettings(cfg), eventBus, log)

	summary, err := svc.RescoreAll(ctx, service.RescoreOptions{
		IncludeInactive: *includeInactive,
		BatchSize:       *batchSize,
		Trigger:         "backfill",
	})
	eventBus.Wait()
	if err != nil {
		log.Error("lead rescore backfill aborted", "error", err, "processed", summary.Processed, "changed", summary.Changed)
		os.Exit(1)
	}

	log.Info("lead rescore backfill completed", "processed", summary.Processed, "changed", summary.Changed)
}
