// Package query filters, sorts and paginates materialized lead collections and
// aggregates dashboard statistics over them. It never touches storage; the
// Postgres repository pushes the same predicates down to SQL.
package query

import (
	"math"
	"sort"
	"strings"
	"time"

	"leadtracker_backend/internal/leads/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Criteria are combined with logical AND. Nil fields do not filter.
type Criteria struct {
	Search            string
	Priority          *domain.Priority
	Status            *domain.Status
	Source            *domain.Source
	MinEstimatedValue *float64
	MaxEstimatedValue *float64
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	MarketingConsent  *bool
	HasResponded      *bool
	IncludeInactive   bool
}

// SortField names a sortable lead attribute.
type SortField string

const (
	SortName           SortField = "name"
	SortEmail          SortField = "email"
	SortCompany        SortField = "company"
	SortCreatedAt      SortField = "createdAt"
	SortUpdatedAt      SortField = "updatedAt"
	SortPriority       SortField = "priority"
	SortScore          SortField = "score"
	SortEstimatedValue SortField = "estimatedValue"
	SortStatus         SortField = "status"
	SortSource         SortField = "source"
)

var sortFields = []SortField{SortName, SortEmail, SortCompany, SortCreatedAt, SortUpdatedAt, SortPriority, SortScore, SortEstimatedValue, SortStatus, SortSource}

// SortFields lists every accepted sort key.
func SortFields() []SortField { return append([]SortField(nil), sortFields...) }

// ParseSortField matches raw case-insensitively; anything unknown sorts by createdAt.
func ParseSortField(raw string) SortField {
	raw = strings.TrimSpace(raw)
	for _, field := range sortFields {
		if strings.EqualFold(raw, string(field)) {
			return field
		}
	}
	return SortCreatedAt
}

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection defaults to descending.
func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Ascending)) {
		return Ascending
	}
	return Descending
}

// Spec is a complete list request.
type Spec struct {
	Criteria  Criteria
	SortBy    SortField
	Direction Direction
	Page      int
	PageSize  int
}

// Normalize clamps paging, resolves sort defaults, trims the search term and
// moves date bounds to UTC.
func (s Spec) Normalize() Spec {
	s.SortBy = ParseSortField(string(s.SortBy))
	s.Direction = ParseDirection(string(s.Direction))
	s.Page = ClampPage(s.Page)
	s.PageSize = ClampPageSize(s.PageSize)
	s.Criteria.Search = strings.TrimSpace(s.Criteria.Search)
	s.Criteria.CreatedFrom = utcPtr(s.Criteria.CreatedFrom)
	s.Criteria.CreatedTo = utcPtr(s.Criteria.CreatedTo)
	return s
}

// Offset is the number of items skipped before the requested page.
func (s Spec) Offset() int {
	return (s.Page - 1) * s.PageSize
}

// ClampPage maps anything below 1 to 1.
func ClampPage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	return page
}

// ClampPageSize maps an unset (zero) size to DefaultPageSize and clamps the rest to [1, MaxPageSize].
func ClampPageSize(size int) int {
	switch {
	case size == 0:
		return DefaultPageSize
	case size < 1:
		return 1
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Matches reports whether lead satisfies every supplied criterion.
func (c Criteria) Matches(lead domain.Lead) bool {
	if !c.IncludeInactive && !lead.IsActive {
		return false
	}
	if term := strings.TrimSpace(c.Search); term != "" {
		needle := strings.ToLower(term)
		if !strings.Contains(strings.ToLower(lead.Name), needle) &&
			!strings.Contains(strings.ToLower(lead.Email), needle) &&
			!strings.Contains(strings.ToLower(domain.Deref(lead.Company)), needle) {
			return false
		}
	}
	if c.Priority != nil && lead.Priority != *c.Priority {
		return false
	}
	if c.Status != nil && lead.Status != *c.Status {
		return false
	}
	if c.Source != nil && lead.Source != *c.Source {
		return false
	}
	if c.MinEstimatedValue != nil && (lead.EstimatedValue == nil || *lead.EstimatedValue < *c.MinEstimatedValue) {
		return false
	}
	if c.MaxEstimatedValue != nil && (lead.EstimatedValue == nil || *lead.EstimatedValue > *c.MaxEstimatedValue) {
		return false
	}
	created := lead.CreatedAt.UTC()
	if c.CreatedFrom != nil && created.Before(c.CreatedFrom.UTC()) {
		return false
	}
	if c.CreatedTo != nil && created.After(c.CreatedTo.UTC()) {
		return false
	}
	if c.MarketingConsent != nil && lead.MarketingConsent != *c.MarketingConsent {
		return false
	}
	if c.HasResponded != nil && lead.HasResponded != *c.HasResponded {
		return false
	}
	return true
}

// Filter returns the matching leads in input order and their count.
func Filter(leads []domain.Lead, c Criteria) ([]domain.Lead, int) {
	matched := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if c.Matches(lead) {
			matched = append(matched, lead)
		}
	}
	return matched, len(matched)
}

// Sort returns a stably sorted copy; leads equal on the key keep their input order.
// Missing values sort as the minimum of their type.
func Sort(leads []domain.Lead, field SortField, dir Direction) []domain.Lead {
	sorted := append([]domain.Lead(nil), leads...)
	field = ParseSortField(string(field))
	desc := ParseDirection(string(dir)) == Descending

	sort.SliceStable(sorted, func(i, j int) bool {
		if desc {
			return compare(sorted[j], sorted[i], field) < 0
		}
		return compare(sorted[i], sorted[j], field) < 0
	})
	return sorted
}

func compare(a, b domain.Lead, field SortField) int {
	switch field {
	case SortName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortEmail:
		return strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
	case SortCompany:
		return strings.Compare(strings.ToLower(domain.Deref(a.Company)), strings.ToLower(domain.Deref(b.Company)))
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortPriority:
		return cmpInt(a.Priority.Rank(), b.Priority.Rank())
	case SortScore:
		return cmpInt(a.Score, b.Score)
	case SortEstimatedValue:
		return cmpFloat(derefFloat(a.EstimatedValue), derefFloat(b.EstimatedValue))
	case SortStatus:
		return cmpInt(a.Status.Ordinal(), b.Status.Ordinal())
	case SortSource:
		return cmpInt(a.Source.Ordinal(), b.Source.Ordinal())
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Paginate returns the requested page after clamping page and size.
func Paginate(leads []domain.Lead, page, pageSize int) []domain.Lead {
	page = ClampPage(page)
	pageSize = ClampPageSize(pageSize)

	start := (page - 1) * pageSize
	if start >= len(leads) {
		return []domain.Lead{}
	}
	end := min(start+pageSize, len(leads))
	return append([]domain.Lead(nil), leads[start:end]...)
}

// Page is one slice of a filtered, sorted result.
type Page struct {
	Items           []domain.Lead
	TotalCount      int
	Page            int
	PageSize        int
	TotalPages      int
	HasPreviousPage bool
	HasNextPage     bool
}

// NewPage derives the navigation metadata from the total count.
func NewPage(items []domain.Lead, totalCount, page, pageSize int) Page {
	page = ClampPage(page)
	pageSize = ClampPageSize(pageSize)
	totalPages := int(math.Ceil(float64(totalCount) / float64(pageSize)))
	if items == nil {
		items = []domain.Lead{}
	}
	return Page{
		Items:           items,
		TotalCount:      totalCount,
		Page:            page,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}
}

// Run applies filter, sort and pagination in that order.
func Run(leads []domain.Lead, spec Spec) Page {
	spec = spec.Normalize()
	matched, total := Filter(leads, spec.Criteria)
	sorted := Sort(matched, spec.SortBy, spec.Direction)
	return NewPage(Paginate(sorted, spec.Page, spec.PageSize), total, spec.Page, spec.PageSize)
}
