package query

import (
	"math"
	"time"

	"leadtracker_backend/internal/leads/domain"
)

const day = 24 * time.Hour

// PriorityStat is the share of active leads in one tier.
type PriorityStat struct {
	Priority   domain.Priority `json:"priority"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// StatusStat is the share of active leads in one funnel stage.
type StatusStat struct {
	Status     domain.Status `json:"status"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
}

// SourceStat is the share and pipeline value of one capture channel.
type SourceStat struct {
	Source              domain.Source `json:"source"`
	Count               int           `json:"count"`
	Percentage          float64       `json:"percentage"`
	TotalEstimatedValue float64       `json:"totalEstimatedValue"`
}

// Statistics is a dashboard snapshot. Rates and percentages are 0-100 with two decimals.
type Statistics struct {
	TotalLeads            int            `json:"totalLeads"`
	ActiveLeads           int            `json:"activeLeads"`
	InactiveLeads         int            `json:"inactiveLeads"`
	CreatedLast7Days      int            `json:"createdLast7Days"`
	CreatedLast30Days     int            `json:"createdLast30Days"`
	ByPriority            []PriorityStat `json:"byPriority"`
	ByStatus              []StatusStat   `json:"byStatus"`
	BySource              []SourceStat   `json:"bySource"`
	TotalEstimatedValue   float64        `json:"totalEstimatedValue"`
	AverageEstimatedValue float64        `json:"averageEstimatedValue"`
	ConvertedLeads        int            `json:"convertedLeads"`
	ConversionRate        float64        `json:"conversionRate"`
	AverageScore          float64        `json:"averageScore"`
	RespondedLeads        int            `json:"respondedLeads"`
	ResponseRate          float64        `json:"responseRate"`
	GeneratedAt           time.Time      `json:"generatedAt"`
}

// Aggregate builds the snapshot from the active set and the full set
// (active plus soft-deleted). An empty active set yields zero for every rate.
// Status and source breakdowns list only values present, in declaration order.
func Aggregate(active, all []domain.Lead, now time.Time) Statistics {
	stats := Statistics{
		TotalLeads:  len(all),
		ActiveLeads: len(active),
		GeneratedAt: now.UTC(),
	}
	for _, lead := range all {
		if !lead.IsActive {
			stats.InactiveLeads++
		}
	}

	priorityCounts := make(map[domain.Priority]int)
	statusCounts := make(map[domain.Status]int)
	sourceCounts := make(map[domain.Source]int)
	sourceValues := make(map[domain.Source]float64)
	scoreSum := 0

	for _, lead := range active {
		age := now.Sub(lead.CreatedAt)
		if age <= 7*day {
			stats.CreatedLast7Days++
		}
		if age <= 30*day {
			stats.CreatedLast30Days++
		}

		priorityCounts[lead.Priority]++
		statusCounts[lead.Status]++
		sourceCounts[lead.Source]++

		if lead.EstimatedValue != nil {
			stats.TotalEstimatedValue += *lead.EstimatedValue
			sourceValues[lead.Source] += *lead.EstimatedValue
		}
		if lead.Status == domain.StatusConverted {
			stats.ConvertedLeads++
		}
		if lead.HasResponded {
			stats.RespondedLeads++
		}
		scoreSum += lead.Score
	}

	denominator := float64(max(len(active), 1))
	share := func(count int) float64 {
		return round2(float64(count) / denominator * 100)
	}

	for _, p := range domain.Priorities() {
		stats.ByPriority = append(stats.ByPriority, PriorityStat{Priority: p, Count: priorityCounts[p], Percentage: share(priorityCounts[p])})
	}

	stats.ByStatus = []StatusStat{}
	for _, s := range domain.Statuses() {
		if n := statusCounts[s]; n > 0 {
			stats.ByStatus = append(stats.ByStatus, StatusStat{Status: s, Count: n, Percentage: share(n)})
		}
	}

	stats.BySource = []SourceStat{}
	for _, s := range domain.Sources() {
		if n := sourceCounts[s]; n > 0 {
			stats.BySource = append(stats.BySource, SourceStat{Source: s, Count: n, Percentage: share(n), TotalEstimatedValue: round2(sourceValues[s])})
		}
	}

	if len(active) > 0 {
		stats.AverageEstimatedValue = round2(stats.TotalEstimatedValue / float64(len(active)))
		stats.AverageScore = round2(float64(scoreSum) / float64(len(active)))
		stats.ConversionRate = share(stats.ConvertedLeads)
		stats.ResponseRate = share(stats.RespondedLeads)
	}
	stats.TotalEstimatedValue = round2(stats.TotalEstimatedValue)

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
