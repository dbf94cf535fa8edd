package domain

import (
	"testing"
	"time"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  Maria.Silva@Example.COM ": "maria.silva@example.com",
		"joao@empresa.com.br":        "joao@empresa.com.br",
		"":                           "",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lead := Lead{ID: 3, Name: "Ana", Email: "ana@example.com", Score: 42, Priority: PriorityLow, CreatedAt: created, UpdatedAt: created, IsActive: true}
	original := lead

	deletedAt := created.Add(time.Hour)
	lead.MarkDeleted(deletedAt)
	if lead.IsActive || lead.DeletedAt == nil {
		t.Fatalf("expected lead to be inactive with deletedAt set")
	}

	restoredAt := deletedAt.Add(time.Hour)
	lead.MarkRestored(restoredAt)
	if !lead.IsActive || lead.DeletedAt != nil {
		t.Fatalf("expected lead to be active with deletedAt cleared")
	}
	if !lead.UpdatedAt.Equal(restoredAt) {
		t.Fatalf("expected updatedAt %v, got %v", restoredAt, lead.UpdatedAt)
	}

	lead.UpdatedAt = original.UpdatedAt
	if lead != original {
		t.Fatalf("round trip changed fields other than updatedAt: %+v vs %+v", lead, original)
	}
}

func TestRegisterResponse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lead := Lead{InteractionCount: 2}
	lead.RegisterResponse(now)

	if !lead.HasResponded || lead.InteractionCount != 3 {
		t.Fatalf("unexpected engagement state: %+v", lead)
	}
	if lead.LastContactDate == nil || !lead.LastContactDate.Equal(now) {
		t.Fatalf("expected lastContactDate %v, got %v", now, lead.LastContactDate)
	}
}

func TestEnumOrdering(t *testing.T) {
	if PriorityLow.Rank() >= PriorityMedium.Rank() || PriorityMedium.Rank() >= PriorityHigh.Rank() {
		t.Fatalf("priority ranks must increase Low < Medium < High")
	}
	if Priority("Urgent").Valid() || Status("Lost").Valid() || Source("TikTok").Valid() {
		t.Fatalf("unknown enum values must be invalid")
	}
	if StatusArchived.Ordinal() != len(Statuses())-1 {
		t.Fatalf("archived should be the last status")
	}
	if SourceLabel(SourceReferral) != "Indicação" || PriorityColor(Priority("x")) != "#6c757d" {
		t.Fatalf("unexpected label lookups")
	}
}
