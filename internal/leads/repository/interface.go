package repository

import (
	"context"
	"errors"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
)

var (
	ErrNotFound            = errors.New("lead not found")
	ErrDuplicateEmail      = errors.New("a lead with this email already exists")
	ErrDuplicateExternalID = errors.New("a lead with this external id already exists")
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data. includeInactive is
// always explicit: no read path hides soft-deleted rows implicitly.
type LeadReader interface {
	GetByID(ctx context.Context, id int64, includeInactive bool) (domain.Lead, error)
	// GetByEmail matches case-insensitively and always sees soft-deleted leads.
	GetByEmail(ctx context.Context, email string) (domain.Lead, error)
	GetByExternalID(ctx context.Context, externalID string) (domain.Lead, error)
	ListAll(ctx context.Context, includeInactive bool) ([]domain.Lead, error)
	List(ctx context.Context, spec query.Spec) ([]domain.Lead, int, error)
	// ListBatch pages by id for bulk jobs: ids strictly greater than afterID, ascending.
	ListBatch(ctx context.Context, afterID int64, limit int, includeInactive bool) ([]domain.Lead, error)
}

// LeadWriter provides write operations. Duplicate email or external id is
// reported as ErrDuplicateEmail / ErrDuplicateExternalID.
type LeadWriter interface {
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	// Update replaces every mutable field of an active lead.
	Update(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	UpdateScore(ctx context.Context, id int64, score int, priority domain.Priority, at time.Time) error
	SoftDelete(ctx context.Context, id int64, at time.Time) (domain.Lead, error)
	Restore(ctx context.Context, id int64, at time.Time) (domain.Lead, error)
}

// ActivityLogger records activity/audit trail on leads.
type ActivityLogger interface {
	AddActivity(ctx context.Context, leadID int64, action string, meta map[string]interface{}) error
	ListActivity(ctx context.Context, leadID int64, limit int) ([]Activity, error)
}

// Store is everything the lead service needs from persistence.
type Store interface {
	LeadReader
	LeadWriter
	ActivityLogger
}

// Activity is one audit entry.
type Activity struct {
	ID        int64
	LeadID    int64
	Action    string
	Meta      map[string]interface{}
	CreatedAt time.Time
}
