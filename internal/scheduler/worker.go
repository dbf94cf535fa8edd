package scheduler

import (
	"context"
	"fmt"

	"leadtracker_backend/internal/leads/service"
	"leadtracker_backend/platform/config"
	"leadtracker_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Rescorer runs a bulk rescoring pass.
type Rescorer interface {
	RescoreAll(ctx context.Context, opts service.RescoreOptions) (service.RescoreSummary, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	rescorer Rescorer
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, rescorer Rescorer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		rescorer: rescorer,
		log:      log,
	}

	mux.HandleFunc(TaskRescoreAll, w.handleRescoreAll)

	return w, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
		return err
	}
	return nil
}

func (w *Worker) handleRescoreAll(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRescoreAllPayload(task)
	if err != nil {
		return fmt.Errorf("parse %s payload: %v: %w", TaskRescoreAll, err, asynq.SkipRetry)
	}

	trigger := payload.Trigger
	if trigger == "" {
		trigger = "scheduled"
	}

	summary, err := w.rescorer.RescoreAll(ctx, service.RescoreOptions{
		IncludeInactive: payload.IncludeInactive,
		Trigger:         trigger,
	})
	if err != nil {
		w.log.Error("lead rescore task failed", "error", err, "processed", summary.Processed)
		return err
	}
	return nil
}
