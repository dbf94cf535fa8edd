package repository

import (
	"strings"
	"testing"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
)

func TestBuildLeadListWhereDefaultsToActiveOnly(t *testing.T) {
	where, args, next := buildLeadListWhere(query.Criteria{})
	if where != "l.deleted_at IS NULL" || len(args) != 0 || next != 1 {
		t.Fatalf("unexpected default clause %q args=%v next=%d", where, args, next)
	}

	where, _, _ = buildLeadListWhere(query.Criteria{IncludeInactive: true})
	if where != "TRUE" {
		t.Fatalf("includeInactive without filters should match everything, got %q", where)
	}
}

func TestBuildLeadListWhereNumbersPlaceholdersInOrder(t *testing.T) {
	high := domain.PriorityHigh
	minValue := 1000.0
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("BRT", -3*60*60))
	responded := true

	where, args, next := buildLeadListWhere(query.Criteria{
		Search:            "50%_off",
		Priority:          &high,
		MinEstimatedValue: &minValue,
		CreatedFrom:       &from,
		HasResponded:      &responded,
	})

	for _, fragment := range []string{
		"l.deleted_at IS NULL",
		"(l.name ILIKE $1 OR l.email ILIKE $1 OR COALESCE(l.company, '') ILIKE $1)",
		"l.priority = $2",
		"l.estimated_value >= $3",
		"l.created_at >= $4",
		"l.has_responded = $5",
	} {
		if !strings.Contains(where, fragment) {
			t.Fatalf("missing %q in %q", fragment, where)
		}
	}
	if next != 6 || len(args) != 5 {
		t.Fatalf("expected 5 args and next index 6, got %d / %d", len(args), next)
	}
	if args[0] != `%50\%\_off%` {
		t.Fatalf("search wildcards must be escaped, got %v", args[0])
	}
	if args[1] != "High" {
		t.Fatalf("priority should be bound as text, got %#v", args[1])
	}
	if ts, ok := args[3].(time.Time); !ok || ts.Location() != time.UTC {
		t.Fatalf("created bound should be normalized to UTC, got %#v", args[3])
	}
}

func TestMapLeadSortColumn(t *testing.T) {
	if got := mapLeadSortColumn("unknown"); got != "l.created_at" {
		t.Fatalf("unknown sort should fall back to created_at, got %q", got)
	}
	if got := mapLeadSortColumn(query.SortEstimatedValue); got != "COALESCE(l.estimated_value, 0)" {
		t.Fatalf("estimated value nulls should sort as zero, got %q", got)
	}
	want := "CASE l.priority WHEN 'Low' THEN 0 WHEN 'Medium' THEN 1 WHEN 'High' THEN 2 ELSE -1 END"
	if got := mapLeadSortColumn(query.SortPriority); got != want {
		t.Fatalf("unexpected priority ordering %q", got)
	}
}

func TestPrefixedColumnsCoverEveryColumn(t *testing.T) {
	if got, want := strings.Count(prefixedLeadColumns, "l."), strings.Count(leadColumns, ",")+1; got != want {
		t.Fatalf("expected %d prefixed columns, got %d", want, got)
	}
	if strings.Contains(prefixedLeadColumns, "l.\n") || strings.Contains(prefixedLeadColumns, "l. ") {
		t.Fatalf("columns were not trimmed: %q", prefixedLeadColumns)
	}
}
