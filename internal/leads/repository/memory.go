package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
)

// Memory is a process-local Store. Listing runs the query package directly,
// so it is also the reference for what the SQL pushdown must return.
type Memory struct {
	mu       sync.RWMutex
	leads    []domain.Lead
	activity []Activity
	nextID   int64
	nextAct  int64
	now      func() time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{nextID: 1, nextAct: 1, now: time.Now}
}

func (m *Memory) indexOf(id int64) int {
	i := sort.Search(len(m.leads), func(i int) bool { return m.leads[i].ID >= id })
	if i < len(m.leads) && m.leads[i].ID == id {
		return i
	}
	return -1
}

// checkUnique reports a duplicate against every lead except skipID.
func (m *Memory) checkUnique(lead domain.Lead, skipID int64) error {
	for _, existing := range m.leads {
		if existing.ID == skipID {
			continue
		}
		if strings.EqualFold(existing.Email, lead.Email) {
			return ErrDuplicateEmail
		}
		if lead.ExternalID != nil && existing.ExternalID != nil && *existing.ExternalID == *lead.ExternalID {
			return ErrDuplicateExternalID
		}
	}
	return nil
}

func (m *Memory) Create(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUnique(lead, 0); err != nil {
		return domain.Lead{}, err
	}
	lead.ID = m.nextID
	m.nextID++
	lead.IsActive = lead.DeletedAt == nil
	m.leads = append(m.leads, lead)
	return lead, nil
}

func (m *Memory) GetByID(_ context.Context, id int64, includeInactive bool) (domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 || (!includeInactive && !m.leads[i].IsActive) {
		return domain.Lead{}, ErrNotFound
	}
	return m.leads[i], nil
}

func (m *Memory) GetByEmail(_ context.Context, email string) (domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, lead := range m.leads {
		if strings.EqualFold(lead.Email, email) {
			return lead, nil
		}
	}
	return domain.Lead{}, ErrNotFound
}

func (m *Memory) GetByExternalID(_ context.Context, externalID string) (domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, lead := range m.leads {
		if lead.ExternalID != nil && *lead.ExternalID == externalID {
			return lead, nil
		}
	}
	return domain.Lead{}, ErrNotFound
}

func (m *Memory) Update(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(lead.ID)
	if i < 0 || !m.leads[i].IsActive {
		return domain.Lead{}, ErrNotFound
	}
	if err := m.checkUnique(lead, lead.ID); err != nil {
		return domain.Lead{}, err
	}

	current := m.leads[i]
	lead.CreatedAt = current.CreatedAt
	lead.DeletedAt = current.DeletedAt
	lead.IsActive = current.IsActive
	lead.CaptureIP = current.CaptureIP
	lead.CaptureUserAgent = current.CaptureUserAgent
	m.leads[i] = lead
	return lead, nil
}

func (m *Memory) UpdateScore(_ context.Context, id int64, score int, priority domain.Priority, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.leads[i].Score = score
	m.leads[i].Priority = priority
	m.leads[i].UpdatedAt = at
	return nil
}

func (m *Memory) SoftDelete(_ context.Context, id int64, at time.Time) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 || !m.leads[i].IsActive {
		return domain.Lead{}, ErrNotFound
	}
	m.leads[i].MarkDeleted(at)
	return m.leads[i], nil
}

func (m *Memory) Restore(_ context.Context, id int64, at time.Time) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 || m.leads[i].IsActive {
		return domain.Lead{}, ErrNotFound
	}
	m.leads[i].MarkRestored(at)
	return m.leads[i], nil
}

func (m *Memory) ListAll(_ context.Context, includeInactive bool) ([]domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		if includeInactive || lead.IsActive {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (m *Memory) ListBatch(_ context.Context, afterID int64, limit int, includeInactive bool) ([]domain.Lead, error) {
	if limit <= 0 {
		return []domain.Lead{}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Lead, 0, limit)
	for _, lead := range m.leads {
		if len(out) == limit {
			break
		}
		if lead.ID > afterID && (includeInactive || lead.IsActive) {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (m *Memory) List(ctx context.Context, spec query.Spec) ([]domain.Lead, int, error) {
	all, err := m.ListAll(ctx, true)
	if err != nil {
		return nil, 0, err
	}
	page := query.Run(all, spec)
	return page.Items, page.TotalCount, nil
}

func (m *Memory) AddActivity(_ context.Context, leadID int64, action string, meta map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(leadID) < 0 {
		return ErrNotFound
	}
	m.activity = append(m.activity, Activity{ID: m.nextAct, LeadID: leadID, Action: action, Meta: meta, CreatedAt: m.now()})
	m.nextAct++
	return nil
}

func (m *Memory) ListActivity(_ context.Context, leadID int64, limit int) ([]Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Activity, 0)
	for i := len(m.activity) - 1; i >= 0 && len(items) < limit; i-- {
		if m.activity[i].LeadID == leadID {
			items = append(items, m.activity[i])
		}
	}
	return items, nil
}

var _ Store = (*Memory)(nil)
