package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/internal/leads/query"
)

func TestMemoryEnforcesCaseInsensitiveEmailAcrossSoftDeletes(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	now := time.Now().UTC()

	first, err := store.Create(ctx, domain.Lead{Name: "Ana", Email: "ana@acme.com", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.SoftDelete(ctx, first.ID, now); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	_, err = store.Create(ctx, domain.Lead{Name: "Ana 2", Email: "ANA@acme.com", CreatedAt: now, UpdatedAt: now})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	all, _ := store.ListAll(ctx, true)
	if len(all) != 1 {
		t.Fatalf("duplicate must not be persisted, have %d leads", len(all))
	}
}

func TestMemoryExternalIDUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	ext := "crm-1"

	if _, err := store.Create(ctx, domain.Lead{Email: "a@x.com", ExternalID: &ext}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, domain.Lead{Email: "b@x.com"}); err != nil {
		t.Fatalf("nil external ids must not collide: %v", err)
	}
	if _, err := store.Create(ctx, domain.Lead{Email: "c@x.com", ExternalID: &ext}); !errors.Is(err, ErrDuplicateExternalID) {
		t.Fatalf("expected ErrDuplicateExternalID, got %v", err)
	}
}

func TestMemoryReadPathsRespectIncludeInactive(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	now := time.Now().UTC()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if _, err := store.Create(ctx, domain.Lead{Email: email, CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := store.SoftDelete(ctx, 2, now); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := store.GetByID(ctx, 2, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive lead should be hidden, got %v", err)
	}
	if lead, err := store.GetByID(ctx, 2, true); err != nil || lead.IsActive {
		t.Fatalf("expected inactive lead when included, got %+v %v", lead, err)
	}

	batch, _ := store.ListBatch(ctx, 0, 10, false)
	if len(batch) != 2 || batch[0].ID != 1 || batch[1].ID != 3 {
		t.Fatalf("unexpected active batch %+v", batch)
	}
	batch, _ = store.ListBatch(ctx, 1, 1, true)
	if len(batch) != 1 || batch[0].ID != 2 {
		t.Fatalf("unexpected keyset batch %+v", batch)
	}

	for _, limit := range []int{0, -1} {
		batch, err := store.ListBatch(ctx, 0, limit, true)
		if err != nil || len(batch) != 0 {
			t.Fatalf("limit %d: expected empty batch, got %+v %v", limit, batch, err)
		}
	}

	items, total, _ := store.List(ctx, query.Spec{Criteria: query.Criteria{IncludeInactive: true}}.Normalize())
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected all 3 leads, got %d", total)
	}

	if _, err := store.Restore(ctx, 1, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("restoring an active lead should fail, got %v", err)
	}
	if lead, err := store.Restore(ctx, 2, now); err != nil || !lead.IsActive || lead.DeletedAt != nil {
		t.Fatalf("restore failed: %+v %v", lead, err)
	}
}

func TestMemoryActivityNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	lead, _ := store.Create(ctx, domain.Lead{Email: "a@x.com"})

	_ = store.AddActivity(ctx, lead.ID, "created", nil)
	_ = store.AddActivity(ctx, lead.ID, "rescored", map[string]interface{}{"score": 40})

	items, err := store.ListActivity(ctx, lead.ID, 10)
	if err != nil || len(items) != 2 || items[0].Action != "rescored" {
		t.Fatalf("unexpected activity %+v %v", items, err)
	}
	if err := store.AddActivity(ctx, 99, "created", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("activity for unknown lead should fail, got %v", err)
	}
}
