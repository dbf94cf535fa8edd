package repository

import (
	"fmt"
	"strings"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
)

var prefixedLeadColumns = prefixColumns("l", leadColumns)

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

// buildLeadListWhere mirrors query.Criteria.Matches in SQL.
func buildLeadListWhere(c query.Criteria) (string, []interface{}, int) {
	whereClauses := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)
	argIdx := 1

	add := func(format string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(format, argIdx))
		args = append(args, value)
		argIdx++
	}

	if !c.IncludeInactive {
		whereClauses = append(whereClauses, "l.deleted_at IS NULL")
	}
	if term := strings.TrimSpace(c.Search); term != "" {
		searchPattern := "%" + escapeLike(term) + "%"
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.name ILIKE $%d OR l.email ILIKE $%d OR COALESCE(l.company, '') ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, searchPattern)
		argIdx++
	}
	if c.Priority != nil {
		add("l.priority = $%d", string(*c.Priority))
	}
	if c.Status != nil {
		add("l.status = $%d", string(*c.Status))
	}
	if c.Source != nil {
		add("l.source = $%d", string(*c.Source))
	}
	if c.MinEstimatedValue != nil {
		add("l.estimated_value >= $%d", *c.MinEstimatedValue)
	}
	if c.MaxEstimatedValue != nil {
		add("l.estimated_value <= $%d", *c.MaxEstimatedValue)
	}
	if c.CreatedFrom != nil {
		add("l.created_at >= $%d", c.CreatedFrom.UTC())
	}
	if c.CreatedTo != nil {
		add("l.created_at <= $%d", c.CreatedTo.UTC())
	}
	if c.MarketingConsent != nil {
		add("l.marketing_consent = $%d", *c.MarketingConsent)
	}
	if c.HasResponded != nil {
		add("l.has_responded = $%d", *c.HasResponded)
	}

	if len(whereClauses) == 0 {
		return "TRUE", args, argIdx
	}
	return strings.Join(whereClauses, " AND "), args, argIdx
}

// escapeLike neutralises LIKE wildcards so the term matches literally.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// mapLeadSortColumn returns an ORDER BY expression whose ordering matches
// query.Sort: text compares lower-cased bytes, missing values are the
// minimum, and enums follow declaration order.
func mapLeadSortColumn(field query.SortField) string {
	switch query.ParseSortField(string(field)) {
	case query.SortName:
		return `lower(l.name) COLLATE "C"`
	case query.SortEmail:
		return `lower(l.email) COLLATE "C"`
	case query.SortCompany:
		return `lower(COALESCE(l.company, '')) COLLATE "C"`
	case query.SortUpdatedAt:
		return "l.updated_at"
	case query.SortPriority:
		return ordinalCase("l.priority", domain.PriorityValues())
	case query.SortScore:
		return "l.score"
	case query.SortEstimatedValue:
		return "COALESCE(l.estimated_value, 0)"
	case query.SortStatus:
		return ordinalCase("l.status", domain.StatusValues())
	case query.SortSource:
		return ordinalCase("l.source", domain.SourceValues())
	default:
		return "l.created_at"
	}
}

func ordinalCase(column string, values []string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for i, value := range values {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", value, i)
	}
	b.WriteString(" ELSE -1 END")
	return b.String()
}
