package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salon-ledger/backend/internal/application/adapter"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

func newTestStore(t *testing.T) adapter.DocumentStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.DocumentModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return NewDocumentStore(db)
}

type testPayload struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
	Date  string `json:"date,omitempty"`
}

func TestDocumentStore_AddAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddDocument(ctx, "user-1", "treatments", testPayload{Name: "Cut", Order: 0})
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated document id")
	}

	t.Run("GetDocument returns the stored payload", func(t *testing.T) {
		doc, err := store.GetDocument(ctx, "user-1", "treatments", id)
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}

		got := decodeOne[testPayload](t, *doc)
		if got.Name != "Cut" || got.Order != 0 {
			t.Errorf("unexpected payload: %+v", got)
		}
	})

	t.Run("GetDocument for missing id returns ErrDocumentNotFound", func(t *testing.T) {
		_, err := store.GetDocument(ctx, "user-1", "treatments", "no-such-id")
		if !errors.Is(err, domainerror.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound, got %v", err)
		}
	})

	t.Run("GetDocument is scoped by user", func(t *testing.T) {
		_, err := store.GetDocument(ctx, "user-2", "treatments", id)
		if !errors.Is(err, domainerror.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound for foreign user, got %v", err)
		}
	})

	t.Run("GetDocument is scoped by collection", func(t *testing.T) {
		_, err := store.GetDocument(ctx, "user-1", "expenseCategories", id)
		if !errors.Is(err, domainerror.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound for other collection, got %v", err)
		}
	})
}

func TestDocumentStore_SetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("creates the document when absent", func(t *testing.T) {
		err := store.SetDocument(ctx, "user-1", "monthlyExpenses", "exp-1", testPayload{Name: "Rent", Order: 1})
		if err != nil {
			t.Fatalf("SetDocument failed: %v", err)
		}

		doc, err := store.GetDocument(ctx, "user-1", "monthlyExpenses", "exp-1")
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		if got := decodeOne[testPayload](t, *doc); got.Name != "Rent" {
			t.Errorf("expected name Rent, got %s", got.Name)
		}
	})

	t.Run("overwrites the document when present", func(t *testing.T) {
		err := store.SetDocument(ctx, "user-1", "monthlyExpenses", "exp-1", testPayload{Name: "Utilities", Order: 2})
		if err != nil {
			t.Fatalf("SetDocument failed: %v", err)
		}

		doc, err := store.GetDocument(ctx, "user-1", "monthlyExpenses", "exp-1")
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		got := decodeOne[testPayload](t, *doc)
		if got.Name != "Utilities" || got.Order != 2 {
			t.Errorf("expected overwritten payload, got %+v", got)
		}
	})
}

func TestDocumentStore_UpdateDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddDocument(ctx, "user-1", "treatments", testPayload{Name: "Perm", Order: 3})
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	t.Run("merges fields and keeps the rest", func(t *testing.T) {
		err := store.UpdateDocument(ctx, "user-1", "treatments", id, map[string]any{"order": 7})
		if err != nil {
			t.Fatalf("UpdateDocument failed: %v", err)
		}

		doc, err := store.GetDocument(ctx, "user-1", "treatments", id)
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		got := decodeOne[testPayload](t, *doc)
		if got.Order != 7 {
			t.Errorf("expected order 7, got %d", got.Order)
		}
		if got.Name != "Perm" {
			t.Errorf("expected unrelated field preserved, got name %q", got.Name)
		}
	})

	t.Run("updating an absent document fails", func(t *testing.T) {
		err := store.UpdateDocument(ctx, "user-1", "treatments", "no-such-id", map[string]any{"order": 1})
		if err == nil {
			t.Fatal("expected an error for absent document")
		}
		if !errors.Is(err, domainerror.ErrUpdateFailed) {
			t.Errorf("expected ErrUpdateFailed, got %v", err)
		}
	})
}

func TestDocumentStore_DeleteDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddDocument(ctx, "user-1", "dailyRecords", testPayload{Name: "r"})
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	if err := store.DeleteDocument(ctx, "user-1", "dailyRecords", id); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}

	if _, err := store.GetDocument(ctx, "user-1", "dailyRecords", id); !errors.Is(err, domainerror.ErrDocumentNotFound) {
		t.Errorf("expected document gone, got %v", err)
	}

	t.Run("deleting an absent document is not an error", func(t *testing.T) {
		if err := store.DeleteDocument(ctx, "user-1", "dailyRecords", "no-such-id"); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})
}

func TestDocumentStore_GetDocumentsOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"Color", "Cut", "Perm"} {
		// Insert out of order on purpose.
		order := []int{2, 0, 1}[i]
		if _, err := store.AddDocument(ctx, "user-1", "treatments", testPayload{Name: name, Order: order}); err != nil {
			t.Fatalf("AddDocument failed: %v", err)
		}
	}

	t.Run("sorts ascending by field", func(t *testing.T) {
		docs, err := store.GetDocuments(ctx, "user-1", "treatments", adapter.ListOptions{OrderBy: "order"})
		if err != nil {
			t.Fatalf("GetDocuments failed: %v", err)
		}
		assertNames(t, docs, []string{"Cut", "Perm", "Color"})
	})

	t.Run("sorts descending by field", func(t *testing.T) {
		docs, err := store.GetDocuments(ctx, "user-1", "treatments", adapter.ListOptions{OrderBy: "order", Descending: true})
		if err != nil {
			t.Fatalf("GetDocuments failed: %v", err)
		}
		assertNames(t, docs, []string{"Color", "Perm", "Cut"})
	})

	t.Run("documents missing the sort field go last", func(t *testing.T) {
		if err := store.SetDocument(ctx, "user-1", "treatments", "raw-1", map[string]any{"name": "NoOrder"}); err != nil {
			t.Fatalf("SetDocument failed: %v", err)
		}

		docs, err := store.GetDocuments(ctx, "user-1", "treatments", adapter.ListOptions{OrderBy: "order"})
		if err != nil {
			t.Fatalf("GetDocuments failed: %v", err)
		}
		assertNames(t, docs, []string{"Cut", "Perm", "Color", "NoOrder"})
	})

	t.Run("empty collection returns empty slice", func(t *testing.T) {
		docs, err := store.GetDocuments(ctx, "user-9", "treatments", adapter.ListOptions{})
		if err != nil {
			t.Fatalf("GetDocuments failed: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("expected no documents, got %d", len(docs))
		}
	})
}

func TestDocumentStore_QueryDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, p := range []testPayload{
		{Name: "a", Date: "2026-03-01T00:00:00Z"},
		{Name: "b", Date: "2026-03-01T00:00:00Z"},
		{Name: "c", Date: "2026-03-02T00:00:00Z"},
	} {
		if _, err := store.AddDocument(ctx, "user-1", "dailyRecords", p); err != nil {
			t.Fatalf("AddDocument failed: %v", err)
		}
	}

	t.Run("matches by string equality", func(t *testing.T) {
		docs, err := store.QueryDocuments(ctx, "user-1", "dailyRecords", "date", "2026-03-01T00:00:00Z")
		if err != nil {
			t.Fatalf("QueryDocuments failed: %v", err)
		}
		if len(docs) != 2 {
			t.Errorf("expected 2 documents, got %d", len(docs))
		}
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		docs, err := store.QueryDocuments(ctx, "user-1", "dailyRecords", "date", "2026-04-01T00:00:00Z")
		if err != nil {
			t.Fatalf("QueryDocuments failed: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("expected 0 documents, got %d", len(docs))
		}
	})
}

func TestDocumentStore_QueryDocumentsInRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		p := testPayload{Name: "r", Date: fmt.Sprintf("2026-03-%02dT00:00:00Z", day)}
		if _, err := store.AddDocument(ctx, "user-1", "dailyRecords", p); err != nil {
			t.Fatalf("AddDocument failed: %v", err)
		}
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		docs, err := store.QueryDocumentsInRange(ctx, "user-1", "dailyRecords", "date",
			"2026-03-02T00:00:00Z", "2026-03-04T00:00:00Z")
		if err != nil {
			t.Fatalf("QueryDocumentsInRange failed: %v", err)
		}
		if len(docs) != 3 {
			t.Errorf("expected 3 documents, got %d", len(docs))
		}
	})

	t.Run("documents missing the field are skipped", func(t *testing.T) {
		if err := store.SetDocument(ctx, "user-1", "dailyRecords", "raw-1", map[string]any{"name": "no-date"}); err != nil {
			t.Fatalf("SetDocument failed: %v", err)
		}

		docs, err := store.QueryDocumentsInRange(ctx, "user-1", "dailyRecords", "date",
			"2026-03-01T00:00:00Z", "2026-03-31T00:00:00Z")
		if err != nil {
			t.Fatalf("QueryDocumentsInRange failed: %v", err)
		}
		if len(docs) != 5 {
			t.Errorf("expected 5 documents, got %d", len(docs))
		}
	})
}

func TestDocumentStore_BatchUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.AddDocument(ctx, "user-1", "treatments", testPayload{Name: "t", Order: 9})
		if err != nil {
			t.Fatalf("AddDocument failed: %v", err)
		}
		ids = append(ids, id)
	}

	t.Run("applies all field merges", func(t *testing.T) {
		updates := make([]adapter.FieldUpdate, len(ids))
		for i, id := range ids {
			updates[i] = adapter.FieldUpdate{ID: id, Fields: map[string]any{"order": i}}
		}
		if err := store.BatchUpdate(ctx, "user-1", "treatments", updates); err != nil {
			t.Fatalf("BatchUpdate failed: %v", err)
		}

		for i, id := range ids {
			doc, err := store.GetDocument(ctx, "user-1", "treatments", id)
			if err != nil {
				t.Fatalf("GetDocument failed: %v", err)
			}
			if got := decodeOne[testPayload](t, *doc); got.Order != i {
				t.Errorf("document %d: expected order %d, got %d", i, i, got.Order)
			}
		}
	})

	t.Run("fails as a whole when one document is absent", func(t *testing.T) {
		updates := []adapter.FieldUpdate{
			{ID: ids[0], Fields: map[string]any{"order": 99}},
			{ID: "no-such-id", Fields: map[string]any{"order": 1}},
		}
		err := store.BatchUpdate(ctx, "user-1", "treatments", updates)
		if !errors.Is(err, domainerror.ErrUpdateFailed) {
			t.Fatalf("expected ErrUpdateFailed, got %v", err)
		}

		// The first merge must have been rolled back.
		doc, err := store.GetDocument(ctx, "user-1", "treatments", ids[0])
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		if got := decodeOne[testPayload](t, *doc); got.Order == 99 {
			t.Error("expected batch rollback, but first merge persisted")
		}
	})
}

func TestDecodeDocuments_SkipsMalformed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddDocument(ctx, "user-1", "treatments", testPayload{Name: "ok", Order: 1}); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	// A payload whose field types do not match the target struct.
	if err := store.SetDocument(ctx, "user-1", "treatments", "bad-1", map[string]any{"name": 42, "order": "x"}); err != nil {
		t.Fatalf("SetDocument failed: %v", err)
	}

	docs, err := store.GetDocuments(ctx, "user-1", "treatments", adapter.ListOptions{})
	if err != nil {
		t.Fatalf("GetDocuments failed: %v", err)
	}

	decoded := adapter.DecodeDocuments[testPayload](docs, nil)
	if len(decoded) != 1 {
		t.Fatalf("expected 1 decoded payload, got %d", len(decoded))
	}
	if decoded[0].Name != "ok" {
		t.Errorf("expected surviving payload, got %+v", decoded[0])
	}
}

func decodeOne[T any](t *testing.T, doc adapter.Document) T {
	t.Helper()
	decoded := adapter.DecodeDocuments[T]([]adapter.Document{doc}, nil)
	if len(decoded) != 1 {
		t.Fatalf("expected payload to decode, got %d results", len(decoded))
	}
	return decoded[0]
}

func assertNames(t *testing.T, docs []adapter.Document, want []string) {
	t.Helper()
	if len(docs) != len(want) {
		t.Fatalf("expected %d documents, got %d", len(want), len(docs))
	}
	for i, doc := range docs {
		if got := decodeOne[testPayload](t, doc); got.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got.Name)
		}
	}
}
