package service

import (
	"context"
	"testing"
	"time"

	"github.com/salon-ledger/backend/internal/domain/entity"
)

func TestRecordService_AddOrUpdate(t *testing.T) {
	store := newTestStore(t)
	treatments := NewTreatmentService(store)
	records := NewRecordService(store)
	ctx := context.Background()

	cut, err := treatments.Add(ctx, "user-1", "Cut", 30000, "", "#FFA0B9")
	if err != nil {
		t.Fatalf("Add treatment failed: %v", err)
	}

	day := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	t.Run("first selection creates a record with count 1", func(t *testing.T) {
		record, err := records.AddOrUpdate(ctx, "user-1", day, *cut)
		if err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
		if record.Count != 1 {
			t.Errorf("expected count 1, got %d", record.Count)
		}
		if record.TotalAmount != 30000 {
			t.Errorf("expected total 30000, got %d", record.TotalAmount)
		}
		if !record.Date.Equal(entity.StartOfDay(day)) {
			t.Errorf("expected date truncated to start of day, got %v", record.Date)
		}
	})

	t.Run("repeated selection accumulates instead of duplicating", func(t *testing.T) {
		record, err := records.AddOrUpdate(ctx, "user-1", day, *cut)
		if err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
		if record.Count != 2 {
			t.Errorf("expected count 2, got %d", record.Count)
		}
		if record.TotalAmount != 60000 {
			t.Errorf("expected total 60000, got %d", record.TotalAmount)
		}

		items, err := records.FetchByDate(ctx, "user-1", day)
		if err != nil {
			t.Fatalf("FetchByDate failed: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected one record per (date, treatment), got %d", len(items))
		}
	})

	t.Run("a different day gets its own record", func(t *testing.T) {
		nextDay := day.AddDate(0, 0, 1)
		record, err := records.AddOrUpdate(ctx, "user-1", nextDay, *cut)
		if err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
		if record.Count != 1 {
			t.Errorf("expected fresh record with count 1, got %d", record.Count)
		}
	})
}

func TestRecordService_UpdateCount(t *testing.T) {
	store := newTestStore(t)
	treatments := NewTreatmentService(store)
	records := NewRecordService(store)
	ctx := context.Background()

	cut, err := treatments.Add(ctx, "user-1", "Cut", 30000, "", "")
	if err != nil {
		t.Fatalf("Add treatment failed: %v", err)
	}

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	record, err := records.AddOrUpdate(ctx, "user-1", day, *cut)
	if err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}

	t.Run("recomputes the total from the unit price", func(t *testing.T) {
		if err := records.UpdateCount(ctx, "user-1", record.ID, 5); err != nil {
			t.Fatalf("UpdateCount failed: %v", err)
		}
		items, err := records.FetchByDate(ctx, "user-1", day)
		if err != nil {
			t.Fatalf("FetchByDate failed: %v", err)
		}
		if items[0].Count != 5 || items[0].TotalAmount != 150000 {
			t.Errorf("expected count 5 total 150000, got %d / %d", items[0].Count, items[0].TotalAmount)
		}
	})

	t.Run("count zero deletes the record", func(t *testing.T) {
		if err := records.UpdateCount(ctx, "user-1", record.ID, 0); err != nil {
			t.Fatalf("UpdateCount failed: %v", err)
		}
		items, err := records.FetchByDate(ctx, "user-1", day)
		if err != nil {
			t.Fatalf("FetchByDate failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected record removed, got %d records", len(items))
		}
	})
}

func TestRecordService_FetchMonthly(t *testing.T) {
	store := newTestStore(t)
	treatments := NewTreatmentService(store)
	records := NewRecordService(store)
	ctx := context.Background()

	cut, err := treatments.Add(ctx, "user-1", "Cut", 10000, "", "")
	if err != nil {
		t.Fatalf("Add treatment failed: %v", err)
	}

	for _, day := range []time.Time{
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	} {
		if _, err := records.AddOrUpdate(ctx, "user-1", day, *cut); err != nil {
			t.Fatalf("AddOrUpdate failed: %v", err)
		}
	}

	selected := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := records.FetchByDate(ctx, "user-1", selected); err != nil {
		t.Fatalf("FetchByDate failed: %v", err)
	}

	monthly, err := records.FetchMonthly(ctx, "user-1", 2026, time.March)
	if err != nil {
		t.Fatalf("FetchMonthly failed: %v", err)
	}

	t.Run("returns only the month's records, both edges inclusive", func(t *testing.T) {
		if len(monthly) != 2 {
			t.Fatalf("expected 2 records in March, got %d", len(monthly))
		}
	})

	t.Run("does not disturb the day mirror", func(t *testing.T) {
		if !records.MirrorDate("user-1").Equal(selected) {
			t.Errorf("expected mirror still on %v, got %v", selected, records.MirrorDate("user-1"))
		}
		if snap := records.Snapshot("user-1"); len(snap) != 1 {
			t.Errorf("expected day mirror of 1 record, got %d", len(snap))
		}
	})
}

func TestRecordService_DailyTotal(t *testing.T) {
	store := newTestStore(t)
	treatments := NewTreatmentService(store)
	records := NewRecordService(store)
	ctx := context.Background()

	cut, _ := treatments.Add(ctx, "user-1", "Cut", 30000, "", "")
	perm, _ := treatments.Add(ctx, "user-1", "Perm", 80000, "", "")

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if _, err := records.FetchByDate(ctx, "user-1", day); err != nil {
		t.Fatalf("FetchByDate failed: %v", err)
	}
	if _, err := records.AddOrUpdate(ctx, "user-1", day, *cut); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}
	if _, err := records.AddOrUpdate(ctx, "user-1", day, *cut); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}
	if _, err := records.AddOrUpdate(ctx, "user-1", day, *perm); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}

	if total := records.DailyTotal("user-1"); total != 140000 {
		t.Errorf("expected daily total 140000, got %d", total)
	}
}
