// Package domain holds the lead entity and its enumerations.
// It has no dependencies on storage or transport.
package domain

import (
	"strings"
	"time"
)

// Lead is a prospective customer tracked through the sales funnel.
// Optional attributes are pointers; nil means "not provided".
type Lead struct {
	ID         int64
	ExternalID *string

	Name     string
	Email    string
	Phone    *string
	Company  *string
	JobTitle *string

	// Computed by the scoring engine, never supplied by clients.
	Score    int
	Priority Priority

	Status                Status
	Source                Source
	EstimatedValue        *float64
	ConversionProbability *int

	MarketingConsent bool
	HasResponded     bool
	InteractionCount int
	LastContactDate  *time.Time

	Notes            *string
	Tags             *string
	SourceData       *string
	CaptureIP        *string
	CaptureUserAgent *string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	IsActive  bool
}

// MarkDeleted soft-deletes the lead at the given instant.
func (l *Lead) MarkDeleted(at time.Time) {
	l.DeletedAt = &at
	l.IsActive = false
	l.UpdatedAt = at
}

// MarkRestored reverses MarkDeleted.
func (l *Lead) MarkRestored(at time.Time) {
	l.DeletedAt = nil
	l.IsActive = true
	l.UpdatedAt = at
}

// RegisterResponse records an inbound reply from the lead.
func (l *Lead) RegisterResponse(at time.Time) {
	l.HasResponded = true
	l.InteractionCount++
	l.LastContactDate = &at
	l.UpdatedAt = at
}

// NormalizeEmail is the single canonical form used for storage, lookups and
// uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
