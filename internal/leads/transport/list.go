package transport

import (
	"fmt"
	"strings"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
)

const dateOnlyLayout = "2006-01-02"

// ListLeadsRequest is bound from the query string.
type ListLeadsRequest struct {
	Search            string   `form:"search" validate:"max=100"`
	Priority          string   `form:"priority" validate:"omitempty,leadpriority"`
	Status            string   `form:"status" validate:"omitempty,leadstatus"`
	Source            string   `form:"source" validate:"omitempty,leadsource"`
	MinEstimatedValue *float64 `form:"minEstimatedValue" validate:"omitempty,gte=0"`
	MaxEstimatedValue *float64 `form:"maxEstimatedValue" validate:"omitempty,gte=0"`
	CreatedFrom       string   `form:"createdFrom"`
	CreatedTo         string   `form:"createdTo"`
	MarketingConsent  *bool    `form:"marketingConsent"`
	HasResponded      *bool    `form:"hasResponded"`
	IncludeInactive   bool     `form:"includeInactive"`
	SortBy            string   `form:"sortBy"`
	SortDirection     string   `form:"sortDirection" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page              int      `form:"page"`
	PageSize          int      `form:"pageSize"`
}

// ToSpec converts the request into a normalized query spec. Problems are
// returned as messages so the caller can report them all at once.
func (r ListLeadsRequest) ToSpec() (query.Spec, []string) {
	var problems []string

	criteria := query.Criteria{
		Search:            r.Search,
		MinEstimatedValue: r.MinEstimatedValue,
		MaxEstimatedValue: r.MaxEstimatedValue,
		MarketingConsent:  r.MarketingConsent,
		HasResponded:      r.HasResponded,
		IncludeInactive:   r.IncludeInactive,
	}
	if r.Priority != "" {
		p := domain.Priority(r.Priority)
		criteria.Priority = &p
	}
	if r.Status != "" {
		s := domain.Status(r.Status)
		criteria.Status = &s
	}
	if r.Source != "" {
		s := domain.Source(r.Source)
		criteria.Source = &s
	}

	from, err := parseDateBound(r.CreatedFrom, false)
	if err != nil {
		problems = append(problems, "createdFrom: "+err.Error())
	}
	to, err := parseDateBound(r.CreatedTo, true)
	if err != nil {
		problems = append(problems, "createdTo: "+err.Error())
	}
	criteria.CreatedFrom = from
	criteria.CreatedTo = to

	if from != nil && to != nil && from.After(*to) {
		problems = append(problems, "createdFrom: must not be after createdTo")
	}
	if r.MinEstimatedValue != nil && r.MaxEstimatedValue != nil && *r.MinEstimatedValue > *r.MaxEstimatedValue {
		problems = append(problems, "minEstimatedValue: must not exceed maxEstimatedValue")
	}

	spec := query.Spec{
		Criteria:  criteria,
		SortBy:    query.SortField(r.SortBy),
		Direction: query.Direction(r.SortDirection),
		Page:      r.Page,
		PageSize:  r.PageSize,
	}
	return spec.Normalize(), problems
}

// parseDateBound accepts RFC 3339 or a bare date. A bare date covers the
// whole UTC day, so an upper bound extends to its last instant.
func parseDateBound(raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		u := t.UTC()
		return &u, nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
