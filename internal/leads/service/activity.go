package service

import (
	"context"

	"leadtracker_backend/internal/events"
	"leadtracker_backend/internal/leads/repository"
	"leadtracker_backend/platform/logger"
)

// ActivityRecorder writes the lead audit trail from domain events.
type ActivityRecorder struct {
	repo repository.ActivityLogger
	log  *logger.Logger
}

func NewActivityRecorder(repo repository.ActivityLogger, log *logger.Logger) *ActivityRecorder {
	return &ActivityRecorder{repo: repo, log: log}
}

// Subscribe registers the recorder for every lead event.
func (r *ActivityRecorder) Subscribe(bus events.Bus) {
	for _, name := range []string{
		events.LeadCreated{}.EventName(),
		events.LeadUpdated{}.EventName(),
		events.LeadStatusChanged{}.EventName(),
		events.LeadRescored{}.EventName(),
		events.LeadDeleted{}.EventName(),
		events.LeadRestored{}.EventName(),
	} {
		bus.Subscribe(name, r)
	}
}

// Handle implements events.Handler.
func (r *ActivityRecorder) Handle(ctx context.Context, event events.Event) error {
	var (
		leadID int64
		action string
		meta   map[string]interface{}
	)

	switch e := event.(type) {
	case events.LeadCreated:
		leadID, action = e.LeadID, "created"
		meta = map[string]interface{}{"source": e.Source, "score": e.Score, "priority": e.Priority}
	case events.LeadUpdated:
		leadID, action = e.LeadID, "updated"
		meta = map[string]interface{}{"score": e.Score, "priority": e.Priority}
	case events.LeadStatusChanged:
		leadID, action = e.LeadID, "status_changed"
		meta = map[string]interface{}{"from": e.OldStatus, "to": e.NewStatus}
	case events.LeadRescored:
		leadID, action = e.LeadID, "rescored"
		meta = map[string]interface{}{
			"oldScore":    e.OldScore,
			"newScore":    e.NewScore,
			"oldPriority": e.OldPriority,
			"newPriority": e.NewPriority,
			"trigger":     e.Trigger,
		}
	case events.LeadDeleted:
		leadID, action = e.LeadID, "deleted"
	case events.LeadRestored:
		leadID, action = e.LeadID, "restored"
	default:
		return nil
	}

	if err := r.repo.AddActivity(ctx, leadID, action, meta); err != nil {
		r.log.Error("failed to record lead activity", "leadId", leadID, "action", action, "error", err)
		return err
	}
	return nil
}
