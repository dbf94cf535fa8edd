// Package events defines the lead events and exposes the platform bus under
// one import path for the leads module and the binaries.
package events

import (
	"leadtracker_backend/platform/events"
	"leadtracker_backend/platform/logger"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEventAt = events.NewBaseEventAt

// NewInMemoryBus returns the process-local bus used by cmd/api and cmd/scheduler.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID   int64  `json:"leadId"`
	Email    string `json:"email"`
	Source   string `json:"source"`
	Score    int    `json:"score"`
	Priority string `json:"priority"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published after a full update.
type LeadUpdated struct {
	BaseEvent
	LeadID   int64  `json:"leadId"`
	Score    int    `json:"score"`
	Priority string `json:"priority"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// LeadStatusChanged is published when the funnel stage changes.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    int64  `json:"leadId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadRescored is published when a recomputation changed score or priority.
type LeadRescored struct {
	BaseEvent
	LeadID      int64  `json:"leadId"`
	OldScore    int    `json:"oldScore"`
	NewScore    int    `json:"newScore"`
	OldPriority string `json:"oldPriority"`
	NewPriority string `json:"newPriority"`
	Trigger     string `json:"trigger"`
}

func (e LeadRescored) EventName() string { return "leads.lead.rescored" }

// LeadDeleted is published on soft-delete.
type LeadDeleted struct {
	BaseEvent
	LeadID int64 `json:"leadId"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// LeadRestored is published when a soft-deleted lead comes back.
type LeadRestored struct {
	BaseEvent
	LeadID int64 `json:"leadId"`
}

func (e LeadRestored) EventName() string { return "leads.lead.restored" }
