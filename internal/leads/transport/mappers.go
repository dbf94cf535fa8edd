package transport

import (
	"strings"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
	"leadtracker_backend/internal/leads/repository"
)

func ToLeadResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{
		ID:                    lead.ID,
		ExternalID:            lead.ExternalID,
		Name:                  lead.Name,
		Email:                 lead.Email,
		Phone:                 lead.Phone,
		Company:               lead.Company,
		JobTitle:              lead.JobTitle,
		Score:                 lead.Score,
		Priority:              lead.Priority,
		PriorityLabel:         domain.PriorityLabel(lead.Priority),
		PriorityColor:         domain.PriorityColor(lead.Priority),
		Status:                lead.Status,
		StatusLabel:           domain.StatusLabel(lead.Status),
		Source:                lead.Source,
		SourceLabel:           domain.SourceLabel(lead.Source),
		EstimatedValue:        lead.EstimatedValue,
		ConversionProbability: lead.ConversionProbability,
		MarketingConsent:      lead.MarketingConsent,
		HasResponded:          lead.HasResponded,
		InteractionCount:      lead.InteractionCount,
		LastContactDate:       lead.LastContactDate,
		Notes:                 lead.Notes,
		Tags:                  splitTags(lead.Tags),
		SourceData:            lead.SourceData,
		CaptureIP:             lead.CaptureIP,
		CaptureUserAgent:      lead.CaptureUserAgent,
		CreatedAt:             lead.CreatedAt,
		UpdatedAt:             lead.UpdatedAt,
		DeletedAt:             lead.DeletedAt,
		IsActive:              lead.IsActive,
	}
}

func ToLeadListResponse(page query.Page) LeadListResponse {
	items := make([]LeadResponse, 0, len(page.Items))
	for _, lead := range page.Items {
		items = append(items, ToLeadResponse(lead))
	}
	return LeadListResponse{
		Items:           items,
		TotalCount:      page.TotalCount,
		Page:            page.Page,
		PageSize:        page.PageSize,
		TotalPages:      page.TotalPages,
		HasPreviousPage: page.HasPreviousPage,
		HasNextPage:     page.HasNextPage,
	}
}

func ToActivityResponses(items []repository.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ActivityResponse{ID: item.ID, Action: item.Action, Meta: item.Meta, CreatedAt: item.CreatedAt})
	}
	return out
}

// BuildMetadata assembles the display lookup table for clients.
func BuildMetadata() MetadataResponse {
	resp := MetadataResponse{}
	for _, s := range domain.Statuses() {
		resp.Statuses = append(resp.Statuses, Option{Value: string(s), Label: domain.StatusLabel(s)})
	}
	for _, s := range domain.Sources() {
		resp.Sources = append(resp.Sources, Option{Value: string(s), Label: domain.SourceLabel(s)})
	}
	for _, p := range domain.Priorities() {
		resp.Priorities = append(resp.Priorities, PriorityOption{Value: string(p), Label: domain.PriorityLabel(p), Color: domain.PriorityColor(p)})
	}
	for _, f := range query.SortFields() {
		resp.SortFields = append(resp.SortFields, string(f))
	}
	return resp
}

func splitTags(tags *string) []string {
	out := make([]string, 0)
	if tags == nil {
		return out
	}
	for _, tag := range strings.Split(*tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
