package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
)

func TestCategoryService_SeedDefaults(t *testing.T) {
	svc := NewCategoryService(newTestStore(t))
	ctx := context.Background()

	svc.SeedDefaults(ctx, "user-1")

	items, err := svc.FetchAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(items) != len(entity.DefaultCategories) {
		t.Fatalf("expected %d seeded categories, got %d", len(entity.DefaultCategories), len(items))
	}
	for i, seed := range entity.DefaultCategories {
		if items[i].Name != seed.Name {
			t.Errorf("position %d: expected %s, got %s", i, seed.Name, items[i].Name)
		}
		if items[i].Icon != seed.Icon {
			t.Errorf("position %d: expected icon %s, got %s", i, seed.Icon, items[i].Icon)
		}
		if items[i].Order != i {
			t.Errorf("position %d: expected order %d, got %d", i, i, items[i].Order)
		}
	}
}

func TestCategoryService_Validation(t *testing.T) {
	svc := NewCategoryService(newTestStore(t))
	ctx := context.Background()

	tests := []struct {
		name     string
		category string
		icon     string
		wantErr  error
	}{
		{"name too long", strings.Repeat("a", 21), "", domainerror.ErrNameTooLong},
		{"name at limit is accepted", strings.Repeat("a", 20), "", nil},
		{"korean name is accepted", "재료비", "🧴", nil},
		{"icon too long", "rent", "abc", domainerror.ErrIconTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, "user-1", tt.category, tt.icon)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCategoryService_UpdateAndDelete(t *testing.T) {
	svc := NewCategoryService(newTestStore(t))
	ctx := context.Background()

	created, err := svc.Add(ctx, "user-1", "월세", "🏠")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	t.Run("update rewrites name and icon", func(t *testing.T) {
		updated := *created
		updated.Name = "임대료"
		if err := svc.Update(ctx, "user-1", updated); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		items, err := svc.FetchAll(ctx, "user-1")
		if err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}
		if items[0].Name != "임대료" {
			t.Errorf("expected updated name, got %s", items[0].Name)
		}
	})

	t.Run("update with empty id is rejected", func(t *testing.T) {
		broken := *created
		broken.ID = ""
		if err := svc.Update(ctx, "user-1", broken); !errors.Is(err, domainerror.ErrInvalidID) {
			t.Errorf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("delete removes the category", func(t *testing.T) {
		if err := svc.Delete(ctx, "user-1", created.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		items, err := svc.FetchAll(ctx, "user-1")
		if err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected empty collection, got %d items", len(items))
		}
	})
}

func TestCategoryService_Reorder(t *testing.T) {
	svc := NewCategoryService(newTestStore(t))
	ctx := context.Background()

	svc.SeedDefaults(ctx, "user-1")
	snap := svc.Snapshot("user-1")
	if len(snap) != 5 {
		t.Fatalf("expected 5 seeded categories, got %d", len(snap))
	}

	// Move the last category to the front.
	reordered := []string{snap[4].ID, snap[0].ID, snap[1].ID, snap[2].ID, snap[3].ID}
	if err := svc.Reorder(ctx, "user-1", reordered); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	items, err := svc.FetchAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if items[0].ID != snap[4].ID {
		t.Errorf("expected %s first after reorder, got %s", snap[4].Name, items[0].Name)
	}
	for i, item := range items {
		if item.Order != i {
			t.Errorf("position %d: expected positional order, got %d", i, item.Order)
		}
	}
}
