// Package service implements the lead lifecycle on top of the repository,
// the scoring engine and the query processor.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadtracker_backend/internal/events"
	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
	"leadtracker_backend/internal/leads/repository"
	"leadtracker_backend/internal/leads/scoring"
	"leadtracker_backend/internal/leads/transport"
	"leadtracker_backend/platform/apperr"
	"leadtracker_backend/platform/logger"
	"leadtracker_backend/platform/phone"
	"leadtracker_backend/platform/sanitize"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
	defaultBatchSize     = 200
)

// LeadService is the capability set exposed to the HTTP layer and jobs.
type LeadService interface {
	Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error)
	GetByID(ctx context.Context, id int64, includeInactive bool) (transport.LeadResponse, error)
	Update(ctx context.Context, id int64, req transport.UpdateLeadRequest) (transport.LeadResponse, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (transport.LeadResponse, error)
	MarkResponded(ctx context.Context, id int64) (transport.LeadResponse, error)
	Rescore(ctx context.Context, id int64) (transport.LeadResponse, error)
	RescoreAll(ctx context.Context, opts RescoreOptions) (RescoreSummary, error)
	RequestRescoreAll(ctx context.Context) (transport.RescoreResponse, error)
	ScoreBreakdown(ctx context.Context, id int64) (transport.ScoreBreakdownResponse, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (transport.LeadResponse, error)
	List(ctx context.Context, spec query.Spec) (transport.LeadListResponse, error)
	Statistics(ctx context.Context) (query.Statistics, error)
	EmailExists(ctx context.Context, email string) (transport.EmailExistsResponse, error)
	Activity(ctx context.Context, id int64, limit int) ([]transport.ActivityResponse, error)
	Metadata() transport.MetadataResponse
}

// Repository is what the service needs from persistence.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.ActivityLogger
}

// RescoreEnqueuer hands bulk rescoring to a background worker.
type RescoreEnqueuer interface {
	EnqueueRescoreAll(ctx context.Context, includeInactive bool) error
}

// Service handles lead operations.
type Service struct {
	repo     Repository
	scoring  scoring.Config
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
	enqueuer RescoreEnqueuer
}

// Option configures optional collaborators.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRescoreEnqueuer routes RequestRescoreAll to a background queue instead
// of running inline.
func WithRescoreEnqueuer(enqueuer RescoreEnqueuer) Option {
	return func(s *Service) { s.enqueuer = enqueuer }
}

// New creates a new lead service.
func New(repo Repository, cfg scoring.Config, bus events.Bus, log *logger.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, scoring: cfg, bus: bus, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ LeadService = (*Service)(nil)

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// Create inserts a new lead. Status always starts at New regardless of input.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	email := domain.NormalizeEmail(req.Email)
	if err := s.ensureUnique(ctx, 0, email, req.ExternalID); err != nil {
		return transport.LeadResponse{}, err
	}

	now := s.clock()
	lead := domain.Lead{
		ExternalID:            req.ExternalID,
		Name:                  strings.TrimSpace(req.Name),
		Email:                 email,
		Phone:                 phone.NormalizePtr(req.Phone),
		Company:               sanitize.TextPtr(req.Company),
		JobTitle:              sanitize.TextPtr(req.JobTitle),
		Status:                domain.StatusNew,
		Source:                sourceOrDefault(req.Source),
		EstimatedValue:        req.EstimatedValue,
		ConversionProbability: req.ConversionProbability,
		MarketingConsent:      req.MarketingConsent,
		Notes:                 sanitize.TextPtr(req.Notes),
		Tags:                  sanitize.Tags(req.Tags),
		SourceData:            req.SourceData,
		CaptureIP:             req.CaptureIP,
		CaptureUserAgent:      req.CaptureUserAgent,
		CreatedAt:             now,
		UpdatedAt:             now,
		IsActive:              true,
	}
	scoring.Apply(&lead, s.scoring, now)

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	s.publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEventAt(now),
		LeadID:    created.ID,
		Email:     created.Email,
		Source:    string(created.Source),
		Score:     created.Score,
		Priority:  string(created.Priority),
	})
	s.log.WithContext(ctx).LeadEvent("created", created.ID, created.Score, string(created.Priority))

	return transport.ToLeadResponse(created), nil
}

// GetByID retrieves a lead. Soft-deleted leads are visible only with includeInactive.
func (s *Service) GetByID(ctx context.Context, id int64, includeInactive bool) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, includeInactive)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}
	return transport.ToLeadResponse(lead), nil
}

// Update replaces every mutable field and rescores.
func (s *Service) Update(ctx context.Context, id int64, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	current, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	email := domain.NormalizeEmail(req.Email)
	if err := s.ensureUnique(ctx, id, email, req.ExternalID); err != nil {
		return transport.LeadResponse{}, err
	}

	now := s.clock()
	updated := current
	updated.ExternalID = req.ExternalID
	updated.Name = strings.TrimSpace(req.Name)
	updated.Email = email
	updated.Phone = phone.NormalizePtr(req.Phone)
	updated.Company = sanitize.TextPtr(req.Company)
	updated.JobTitle = sanitize.TextPtr(req.JobTitle)
	updated.Status = req.Status
	updated.Source = sourceOrDefault(req.Source)
	updated.EstimatedValue = req.EstimatedValue
	updated.ConversionProbability = req.ConversionProbability
	updated.MarketingConsent = req.MarketingConsent
	updated.HasResponded = req.HasResponded
	updated.InteractionCount = req.InteractionCount
	updated.LastContactDate = req.LastContactDate
	updated.Notes = sanitize.TextPtr(req.Notes)
	updated.Tags = sanitize.Tags(req.Tags)
	updated.SourceData = req.SourceData
	updated.UpdatedAt = now
	scoring.Apply(&updated, s.scoring, now)

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	s.publishUpdate(ctx, current, saved, now)
	return transport.ToLeadResponse(saved), nil
}

// UpdateStatus moves the lead to another funnel stage.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.Status) (transport.LeadResponse, error) {
	if !status.Valid() {
		return transport.LeadResponse{}, apperr.ValidationList([]string{"status: must be one of " + strings.Join(domain.StatusValues(), ", ")})
	}

	current, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	now := s.clock()
	updated := current
	updated.Status = status
	updated.UpdatedAt = now
	scoring.Apply(&updated, s.scoring, now)

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	s.publishUpdate(ctx, current, saved, now)
	return transport.ToLeadResponse(saved), nil
}

// MarkResponded registers an inbound reply and rescores.
func (s *Service) MarkResponded(ctx context.Context, id int64) (transport.LeadResponse, error) {
	current, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	now := s.clock()
	updated := current
	updated.RegisterResponse(now)
	scoring.Apply(&updated, s.scoring, now)

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	s.publishUpdate(ctx, current, saved, now)
	return transport.ToLeadResponse(saved), nil
}

func (s *Service) publishUpdate(ctx context.Context, before, after domain.Lead, now time.Time) {
	s.publish(ctx, events.LeadUpdated{
		BaseEvent: events.NewBaseEventAt(now),
		LeadID:    after.ID,
		Score:     after.Score,
		Priority:  string(after.Priority),
	})
	if before.Status != after.Status {
		s.publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEventAt(now),
			LeadID:    after.ID,
			OldStatus: string(before.Status),
			NewStatus: string(after.Status),
		})
	}
	s.log.WithContext(ctx).LeadEvent("updated", after.ID, after.Score, string(after.Priority))
}

// publish delivers event to every subscriber before returning, in call order.
// Handler failures are logged; the mutation has already committed.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.bus.PublishSync(context.WithoutCancel(ctx), event); err != nil {
		s.log.WithContext(ctx).Error("failed to publish lead event", "event", event.EventName(), "error", err)
	}
}

// Rescore recomputes one active lead's score against the current clock.
func (s *Service) Rescore(ctx context.Context, id int64) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	lead, err = s.rescore(ctx, lead, "manual")
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return transport.ToLeadResponse(lead), nil
}

// rescore persists a new score only when score or priority moved.
func (s *Service) rescore(ctx context.Context, lead domain.Lead, trigger string) (domain.Lead, error) {
	now := s.clock()
	oldScore, oldPriority := lead.Score, lead.Priority
	if !scoring.Apply(&lead, s.scoring, now) {
		return lead, nil
	}

	if err := s.repo.UpdateScore(ctx, lead.ID, lead.Score, lead.Priority, now); err != nil {
		return domain.Lead{}, mapRepoError(err)
	}
	lead.UpdatedAt = now

	s.publish(ctx, events.LeadRescored{
		BaseEvent:   events.NewBaseEventAt(now),
		LeadID:      lead.ID,
		OldScore:    oldScore,
		NewScore:    lead.Score,
		OldPriority: string(oldPriority),
		NewPriority: string(lead.Priority),
		Trigger:     trigger,
	})
	return lead, nil
}

// RescoreOptions controls a bulk rescoring pass.
type RescoreOptions struct {
	IncludeInactive bool
	BatchSize       int
	Trigger         string
}

// RescoreSummary reports what a bulk pass did.
type RescoreSummary struct {
	Processed int
	Changed   int
}

// RescoreAll walks every lead in id order and rescores it. It stops at the
// first storage error; leads already written stay written.
func (s *Service) RescoreAll(ctx context.Context, opts RescoreOptions) (RescoreSummary, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	trigger := opts.Trigger
	if trigger == "" {
		trigger = "bulk"
	}

	var summary RescoreSummary
	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		batch, err := s.repo.ListBatch(ctx, afterID, batchSize, opts.IncludeInactive)
		if err != nil {
			return summary, err
		}
		if len(batch) == 0 {
			break
		}

		for _, lead := range batch {
			before := lead.Score
			beforePriority := lead.Priority
			rescored, err := s.rescore(ctx, lead, trigger)
			if err != nil {
				return summary, err
			}
			summary.Processed++
			if rescored.Score != before || rescored.Priority != beforePriority {
				summary.Changed++
			}
		}
		afterID = batch[len(batch)-1].ID
	}

	s.log.WithContext(ctx).Info("lead rescore pass finished",
		"trigger", trigger,
		"processed", summary.Processed,
		"changed", summary.Changed,
	)
	return summary, nil
}

// RequestRescoreAll queues a bulk pass when a worker is configured and runs
// it inline otherwise.
func (s *Service) RequestRescoreAll(ctx context.Context) (transport.RescoreResponse, error) {
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueRescoreAll(ctx, false); err != nil {
			return transport.RescoreResponse{}, err
		}
		return transport.RescoreResponse{Queued: true}, nil
	}

	summary, err := s.RescoreAll(ctx, RescoreOptions{Trigger: "api"})
	if err != nil {
		return transport.RescoreResponse{}, err
	}
	return transport.RescoreResponse{Processed: summary.Processed, Changed: summary.Changed}, nil
}

// ScoreBreakdown explains how the lead's score is composed right now.
func (s *Service) ScoreBreakdown(ctx context.Context, id int64) (transport.ScoreBreakdownResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return transport.ScoreBreakdownResponse{}, mapRepoError(err)
	}

	now := s.clock()
	return transport.ScoreBreakdownResponse{
		LeadID:      lead.ID,
		Breakdown:   scoring.Explain(lead, s.scoring, now),
		StoredScore: lead.Score,
		ComputedAt:  now,
	}, nil
}

// Delete soft-deletes an active lead.
func (s *Service) Delete(ctx context.Context, id int64) error {
	now := s.clock()
	lead, err := s.repo.SoftDelete(ctx, id, now)
	if err != nil {
		return mapRepoError(err)
	}

	s.publish(ctx, events.LeadDeleted{BaseEvent: events.NewBaseEventAt(now), LeadID: lead.ID})
	s.log.WithContext(ctx).LeadEvent("deleted", lead.ID, lead.Score, string(lead.Priority))
	return nil
}

// Restore reactivates a soft-deleted lead and brings its score up to date.
func (s *Service) Restore(ctx context.Context, id int64) (transport.LeadResponse, error) {
	existing, err := s.repo.GetByID(ctx, id, true)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}
	if existing.IsActive {
		return transport.LeadResponse{}, apperr.Conflict("lead is not deleted")
	}

	now := s.clock()
	restored, err := s.repo.Restore(ctx, id, now)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	s.publish(ctx, events.LeadRestored{BaseEvent: events.NewBaseEventAt(now), LeadID: restored.ID})
	s.log.WithContext(ctx).LeadEvent("restored", restored.ID, restored.Score, string(restored.Priority))
	return transport.ToLeadResponse(restored), nil
}

// List returns one page of leads matching spec.
func (s *Service) List(ctx context.Context, spec query.Spec) (transport.LeadListResponse, error) {
	spec = spec.Normalize()
	items, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	return transport.ToLeadListResponse(query.NewPage(items, total, spec.Page, spec.PageSize)), nil
}

// Statistics aggregates the whole collection.
func (s *Service) Statistics(ctx context.Context) (query.Statistics, error) {
	all, err := s.repo.ListAll(ctx, true)
	if err != nil {
		return query.Statistics{}, err
	}

	active := make([]domain.Lead, 0, len(all))
	for _, lead := range all {
		if lead.IsActive {
			active = append(active, lead)
		}
	}
	return query.Aggregate(active, all, s.clock()), nil
}

// EmailExists checks the address against every lead, deleted ones included.
func (s *Service) EmailExists(ctx context.Context, email string) (transport.EmailExistsResponse, error) {
	normalized := domain.NormalizeEmail(email)
	_, err := s.repo.GetByEmail(ctx, normalized)
	switch {
	case err == nil:
		return transport.EmailExistsResponse{Email: normalized, Exists: true}, nil
	case errors.Is(err, repository.ErrNotFound):
		return transport.EmailExistsResponse{Email: normalized, Exists: false}, nil
	default:
		return transport.EmailExistsResponse{}, err
	}
}

// Activity lists the audit trail of a lead, newest first.
func (s *Service) Activity(ctx context.Context, id int64, limit int) ([]transport.ActivityResponse, error) {
	if _, err := s.repo.GetByID(ctx, id, true); err != nil {
		return nil, mapRepoError(err)
	}

	switch {
	case limit <= 0:
		limit = defaultActivityLimit
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}

	items, err := s.repo.ListActivity(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	return transport.ToActivityResponses(items), nil
}

// Metadata returns the display lookup table.
func (s *Service) Metadata() transport.MetadataResponse {
	return transport.BuildMetadata()
}

// ensureUnique rejects an email or external id held by any lead other than selfID.
func (s *Service) ensureUnique(ctx context.Context, selfID int64, email string, externalID *string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return apperr.Conflict(repository.ErrDuplicateEmail.Error())
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}

	if externalID == nil {
		return nil
	}
	existing, err = s.repo.GetByExternalID(ctx, *externalID)
	switch {
	case err == nil && existing.ID != selfID:
		return apperr.Conflict(repository.ErrDuplicateExternalID.Error())
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}
	return nil
}

// mapRepoError turns repository sentinels into typed errors. Anything else
// is returned untouched.
func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("lead not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict(repository.ErrDuplicateEmail.Error())
	case errors.Is(err, repository.ErrDuplicateExternalID):
		return apperr.Conflict(repository.ErrDuplicateExternalID.Error())
	default:
		return err
	}
}

func sourceOrDefault(source domain.Source) domain.Source {
	if source == "" {
		return domain.SourceOther
	}
	return source
}
