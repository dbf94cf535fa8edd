package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
	"leadtracker_backend/internal/leads/repository"
	"leadtracker_backend/internal/leads/scoring"
	"leadtracker_backend/internal/leads/transport"
	"leadtracker_backend/platform/apperr"
	"leadtracker_backend/platform/events"
	"leadtracker_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStorageDown = errors.New("storage down")

type fixture struct {
	svc   *Service
	store *repository.Memory
	bus   *events.InMemoryBus
	now   time.Time
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store: repository.NewMemory(),
		bus:   events.NewInMemoryBus(nil),
		now:   time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}
	opts = append([]Option{WithClock(func() time.Time { return f.now })}, opts...)
	f.svc = New(f.store, scoring.DefaultConfig(), f.bus, logger.Discard(), opts...)
	return f
}

func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func websiteLead() transport.CreateLeadRequest {
	return transport.CreateLeadRequest{Name: " Ana Souza ", Email: " Ana@Acme.COM ", Source: domain.SourceWebsite}
}

func referralLead() transport.CreateLeadRequest {
	return transport.CreateLeadRequest{
		Name:           "Bruno Lima",
		Email:          "bruno@lima.com.br",
		Source:         domain.SourceReferral,
		Company:        strPtr("Lima & Filhos"),
		JobTitle:       strPtr("CEO"),
		EstimatedValue: floatPtr(12000),
	}
}

func TestCreateNormalizesAndScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)

	assert.Equal(t, "ana@acme.com", created.Email)
	assert.Equal(t, "Ana Souza", created.Name)
	assert.Equal(t, domain.StatusNew, created.Status)
	assert.True(t, created.IsActive)
	assert.Equal(t, 25, created.Score)
	assert.Equal(t, domain.PriorityLow, created.Priority)
	assert.Equal(t, f.now, created.CreatedAt)

	high, err := f.svc.Create(ctx, referralLead())
	require.NoError(t, err)
	assert.Equal(t, 90, high.Score)
	assert.Equal(t, domain.PriorityHigh, high.Priority)
	assert.Equal(t, "Alta", high.PriorityLabel)
}

func TestCreateDefaultsSourceToOther(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), transport.CreateLeadRequest{Name: "Caio", Email: "caio@x.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceOther, created.Source)
}

func TestCreateRejectsDuplicateEmailEvenWhenDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, first.ID))

	dup := websiteLead()
	dup.Email = "ANA@acme.com"
	_, err = f.svc.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCreateRejectsDuplicateExternalID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := websiteLead()
	req.ExternalID = strPtr("crm-7")
	_, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	other := referralLead()
	other.ExternalID = strPtr("crm-7")
	_, err = f.svc.Create(ctx, other)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestUpdateReplacesFieldsAndRescores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)
	f.advance(time.Hour)

	updated, err := f.svc.Update(ctx, created.ID, transport.UpdateLeadRequest{
		Name:           "Ana Souza",
		Email:          "ANA@acme.com",
		Status:         domain.StatusQualified,
		Source:         domain.SourceLinkedIn,
		EstimatedValue: floatPtr(6000),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusQualified, updated.Status)
	assert.Equal(t, 18+20+10, updated.Score)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, f.now, updated.UpdatedAt)
}

func TestUpdateConflictsWithAnotherLeadsEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ana, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, referralLead())
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, ana.ID, transport.UpdateLeadRequest{Name: "Ana", Email: "Bruno@Lima.com.br", Status: domain.StatusNew})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestUpdateMissingLeadIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), 42, transport.UpdateLeadRequest{Name: "Ana", Email: "a@b.com", Status: domain.StatusNew})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, created.ID, domain.Status("Won"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	moved, err := f.svc.UpdateStatus(ctx, created.ID, domain.StatusNegotiating)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNegotiating, moved.Status)
	assert.Equal(t, "Em negociação", moved.StatusLabel)
}

func TestMarkRespondedRaisesEngagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)
	f.advance(time.Minute)

	responded, err := f.svc.MarkResponded(ctx, created.ID)
	require.NoError(t, err)

	assert.True(t, responded.HasResponded)
	assert.Equal(t, 1, responded.InteractionCount)
	require.NotNil(t, responded.LastContactDate)
	assert.Equal(t, f.now, *responded.LastContactDate)
	assert.Equal(t, 25+15+3, responded.Score)
}

func TestDeleteAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)

	_, err = f.svc.Restore(ctx, created.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "restoring an active lead")

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.True(t, apperr.Is(f.svc.Delete(ctx, created.ID), apperr.KindNotFound), "deleting twice")

	_, err = f.svc.GetByID(ctx, created.ID, false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	hidden, err := f.svc.GetByID(ctx, created.ID, true)
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)
	assert.NotNil(t, hidden.DeletedAt)

	f.advance(40 * 24 * time.Hour)
	restored, err := f.svc.Restore(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, created.Score, restored.Score, "restore keeps the stored score")
	assert.Equal(t, created.Priority, restored.Priority)
	assert.Equal(t, created.Status, restored.Status)
	assert.Equal(t, created.CreatedAt, restored.CreatedAt)
	assert.True(t, restored.UpdatedAt.After(created.UpdatedAt))

	_, err = f.svc.Restore(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRescoreAllAppliesRecencyDecay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, req := range []transport.CreateLeadRequest{websiteLead(), referralLead()} {
		_, err := f.svc.Create(ctx, req)
		require.NoError(t, err)
	}

	summary, err := f.svc.RescoreAll(ctx, RescoreOptions{BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, RescoreSummary{Processed: 2, Changed: 0}, summary)

	f.advance(10 * 24 * time.Hour)
	summary, err = f.svc.RescoreAll(ctx, RescoreOptions{BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, RescoreSummary{Processed: 2, Changed: 2}, summary)

	page, err := f.svc.List(ctx, query.Spec{SortBy: query.SortScore, Direction: query.Ascending})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 20, page.Items[0].Score)
	assert.Equal(t, 85, page.Items[1].Score)
}

func TestRescoreAllSkipsInactiveUnlessAsked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, created.ID))

	summary, err := f.svc.RescoreAll(ctx, RescoreOptions{})
	require.NoError(t, err)
	assert.Zero(t, summary.Processed)

	summary, err = f.svc.RescoreAll(ctx, RescoreOptions{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
}

type recordingEnqueuer struct {
	calls int
	err   error
}

func (r *recordingEnqueuer) EnqueueRescoreAll(context.Context, bool) error {
	r.calls++
	return r.err
}

func TestRequestRescoreAllPrefersQueue(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	f := newFixture(t, WithRescoreEnqueuer(enqueuer))

	resp, err := f.svc.RequestRescoreAll(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Queued)
	assert.Equal(t, 1, enqueuer.calls)

	inline := newFixture(t)
	_, err = inline.svc.Create(context.Background(), websiteLead())
	require.NoError(t, err)
	resp, err = inline.svc.RequestRescoreAll(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.Queued)
	assert.Equal(t, 1, resp.Processed)
}

func TestEmailExistsUsesSharedNormalizer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)

	resp, err := f.svc.EmailExists(ctx, "  ANA@ACME.com")
	require.NoError(t, err)
	assert.True(t, resp.Exists)
	assert.Equal(t, "ana@acme.com", resp.Email)

	resp, err = f.svc.EmailExists(ctx, "nobody@acme.com")
	require.NoError(t, err)
	assert.False(t, resp.Exists)
}

func TestStatisticsOverActiveSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ana, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, referralLead())
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, ana.ID))

	stats, err := f.svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLeads)
	assert.Equal(t, 1, stats.ActiveLeads)
	assert.Equal(t, 1, stats.InactiveLeads)
	assert.InDelta(t, 12000, stats.TotalEstimatedValue, 0.001)
}

type failingStore struct {
	*repository.Memory
}

func (failingStore) ListAll(context.Context, bool) ([]domain.Lead, error) {
	return nil, errStorageDown
}

func (failingStore) List(context.Context, query.Spec) ([]domain.Lead, int, error) {
	return nil, 0, errStorageDown
}

// shiftingStore answers the active-only read from a snapshot taken before a
// soft delete, so any split read disagrees with the full read.
type shiftingStore struct {
	*repository.Memory
	staleActive []domain.Lead
}

func (s shiftingStore) ListAll(ctx context.Context, includeInactive bool) ([]domain.Lead, error) {
	if !includeInactive {
		return s.staleActive, nil
	}
	return s.Memory.ListAll(ctx, true)
}

func TestStatisticsReadsOneSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ana, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, referralLead())
	require.NoError(t, err)

	stale, err := f.store.ListAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	require.NoError(t, f.svc.Delete(ctx, ana.ID))

	svc := New(shiftingStore{Memory: f.store, staleActive: stale}, scoring.DefaultConfig(), f.bus, logger.Discard(), WithClock(func() time.Time { return f.now }))
	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLeads)
	assert.Equal(t, 1, stats.ActiveLeads)
	assert.Equal(t, 1, stats.InactiveLeads)
	assert.Equal(t, stats.TotalLeads, stats.ActiveLeads+stats.InactiveLeads)
}

func TestStorageFailuresPropagateUnmodified(t *testing.T) {
	svc := New(failingStore{repository.NewMemory()}, scoring.DefaultConfig(), events.NewInMemoryBus(nil), logger.Discard())

	_, err := svc.Statistics(context.Background())
	assert.ErrorIs(t, err, errStorageDown)
	assert.Equal(t, apperr.KindUnknown, apperr.GetKind(err))

	_, err = svc.List(context.Background(), query.Spec{})
	assert.ErrorIs(t, err, errStorageDown)
}

func TestActivityRecorderWritesAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	NewActivityRecorder(f.store, logger.Discard()).Subscribe(f.bus)

	created, err := f.svc.Create(ctx, websiteLead())
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, created.ID, domain.StatusQualifying)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, created.ID))
	_, err = f.svc.Restore(ctx, created.ID)
	require.NoError(t, err)

	// Recorded synchronously, newest first, with no bus.Wait needed.
	items, err := f.svc.Activity(ctx, created.ID, 0)
	require.NoError(t, err)

	actions := make([]string, 0, len(items))
	for _, item := range items {
		actions = append(actions, item.Action)
	}
	assert.Equal(t, []string{"restored", "deleted", "status_changed", "updated", "created"}, actions)
	assert.Equal(t, map[string]interface{}{"from": "New", "to": "Qualifying"}, items[2].Meta)

	_, err = f.svc.Activity(ctx, 404, 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
