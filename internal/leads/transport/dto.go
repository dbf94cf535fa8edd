package transport

import (
	"strings"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/scoring"
)

// Request DTOs

type CreateLeadRequest struct {
	ExternalID            *string       `json:"externalId,omitempty" validate:"omitempty,min=1,max=100"`
	Name                  string        `json:"name" validate:"required,min=2,max=200"`
	Email                 string        `json:"email" validate:"required,email,max=255"`
	Phone                 *string       `json:"phone,omitempty" validate:"omitempty,max=30"`
	Company               *string       `json:"company,omitempty" validate:"omitempty,max=200"`
	JobTitle              *string       `json:"jobTitle,omitempty" validate:"omitempty,max=100"`
	Source                domain.Source `json:"source,omitempty" validate:"omitempty,leadsource"`
	EstimatedValue        *float64      `json:"estimatedValue,omitempty" validate:"omitempty,gte=0,lte=999999999.99"`
	ConversionProbability *int          `json:"conversionProbability,omitempty" validate:"omitempty,gte=0,lte=100"`
	MarketingConsent      bool          `json:"marketingConsent"`
	Notes                 *string       `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Tags                  *string       `json:"tags,omitempty" validate:"omitempty,max=500"`
	SourceData            *string       `json:"sourceData,omitempty" validate:"omitempty,max=4000"`

	// Filled by the handler from the HTTP request, never from the body.
	CaptureIP        *string `json:"-"`
	CaptureUserAgent *string `json:"-"`
}

// Normalize trims identity fields so length rules apply to the meaningful text.
func (r *CreateLeadRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.ExternalID = trimPtr(r.ExternalID)
}

// UpdateLeadRequest replaces every mutable field of a lead.
type UpdateLeadRequest struct {
	ExternalID            *string       `json:"externalId,omitempty" validate:"omitempty,min=1,max=100"`
	Name                  string        `json:"name" validate:"required,min=2,max=200"`
	Email                 string        `json:"email" validate:"required,email,max=255"`
	Phone                 *string       `json:"phone,omitempty" validate:"omitempty,max=30"`
	Company               *string       `json:"company,omitempty" validate:"omitempty,max=200"`
	JobTitle              *string       `json:"jobTitle,omitempty" validate:"omitempty,max=100"`
	Status                domain.Status `json:"status" validate:"required,leadstatus"`
	Source                domain.Source `json:"source,omitempty" validate:"omitempty,leadsource"`
	EstimatedValue        *float64      `json:"estimatedValue,omitempty" validate:"omitempty,gte=0,lte=999999999.99"`
	ConversionProbability *int          `json:"conversionProbability,omitempty" validate:"omitempty,gte=0,lte=100"`
	MarketingConsent      bool          `json:"marketingConsent"`
	HasResponded          bool          `json:"hasResponded"`
	InteractionCount      int           `json:"interactionCount" validate:"gte=0"`
	LastContactDate       *time.Time    `json:"lastContactDate,omitempty"`
	Notes                 *string       `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Tags                  *string       `json:"tags,omitempty" validate:"omitempty,max=500"`
	SourceData            *string       `json:"sourceData,omitempty" validate:"omitempty,max=4000"`
}

// Normalize trims identity fields so length rules apply to the meaningful text.
func (r *UpdateLeadRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.ExternalID = trimPtr(r.ExternalID)
}

type UpdateLeadStatusRequest struct {
	Status domain.Status `json:"status" validate:"required,leadstatus"`
}

type CheckEmailRequest struct {
	Email string `form:"email" validate:"required,email,max=255"`
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Response DTOs

type LeadResponse struct {
	ID                    int64           `json:"id"`
	ExternalID            *string         `json:"externalId,omitempty"`
	Name                  string          `json:"name"`
	Email                 string          `json:"email"`
	Phone                 *string         `json:"phone,omitempty"`
	Company               *string         `json:"company,omitempty"`
	JobTitle              *string         `json:"jobTitle,omitempty"`
	Score                 int             `json:"score"`
	Priority              domain.Priority `json:"priority"`
	PriorityLabel         string          `json:"priorityLabel"`
	PriorityColor         string          `json:"priorityColor"`
	Status                domain.Status   `json:"status"`
	StatusLabel           string          `json:"statusLabel"`
	Source                domain.Source   `json:"source"`
	SourceLabel           string          `json:"sourceLabel"`
	EstimatedValue        *float64        `json:"estimatedValue,omitempty"`
	ConversionProbability *int            `json:"conversionProbability,omitempty"`
	MarketingConsent      bool            `json:"marketingConsent"`
	HasResponded          bool            `json:"hasResponded"`
	InteractionCount      int             `json:"interactionCount"`
	LastContactDate       *time.Time      `json:"lastContactDate,omitempty"`
	Notes                 *string         `json:"notes,omitempty"`
	Tags                  []string        `json:"tags"`
	SourceData            *string         `json:"sourceData,omitempty"`
	CaptureIP             *string         `json:"captureIp,omitempty"`
	CaptureUserAgent      *string         `json:"captureUserAgent,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
	DeletedAt             *time.Time      `json:"deletedAt,omitempty"`
	IsActive              bool            `json:"isActive"`
}

type LeadListResponse struct {
	Items           []LeadResponse `json:"items"`
	TotalCount      int            `json:"totalCount"`
	Page            int            `json:"page"`
	PageSize        int            `json:"pageSize"`
	TotalPages      int            `json:"totalPages"`
	HasPreviousPage bool           `json:"hasPreviousPage"`
	HasNextPage     bool           `json:"hasNextPage"`
}

type EmailExistsResponse struct {
	Email  string `json:"email"`
	Exists bool   `json:"exists"`
}

type ScoreBreakdownResponse struct {
	LeadID      int64             `json:"leadId"`
	Breakdown   scoring.Breakdown `json:"breakdown"`
	StoredScore int               `json:"storedScore"`
	ComputedAt  time.Time         `json:"computedAt"`
}

type RescoreResponse struct {
	Queued    bool `json:"queued"`
	Processed int  `json:"processed"`
	Changed   int  `json:"changed"`
}

type ActivityResponse struct {
	ID        int64                  `json:"id"`
	Action    string                 `json:"action"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type PriorityOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

type MetadataResponse struct {
	Statuses   []Option         `json:"statuses"`
	Sources    []Option         `json:"sources"`
	Priorities []PriorityOption `json:"priorities"`
	SortFields []string         `json:"sortFields"`
}
