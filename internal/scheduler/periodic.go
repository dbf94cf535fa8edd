package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadtracker_backend/platform/config"
	"leadtracker_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the nightly rescoring pass on a cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})

	task, err := NewRescoreAllTask(RescoreAllPayload{Trigger: "scheduled"})
	if err != nil {
		return nil, err
	}

	entryID, err := scheduler.Register(cfg.GetRescoreCron(), task,
		asynq.Queue(queueName(cfg)),
		asynq.Unique(rescoreUniqueTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("register %s on %q: %w", TaskRescoreAll, cfg.GetRescoreCron(), err)
	}
	log.Info("periodic lead rescoring registered", "cron", cfg.GetRescoreCron(), "entryId", entryID)

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run blocks until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
