package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salon-ledger/backend/internal/application/service"
	"github.com/salon-ledger/backend/internal/integration/persistence"
	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

type fixture struct {
	aggregator  *Aggregator
	treatments  *service.TreatmentService
	records     *service.RecordService
	adjustments *service.AdjustmentService
}

func newFixture(t *testing.T, now time.Time) *fixture {
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

	store := persistence.NewDocumentStore(db)
	treatments := service.NewTreatmentService(store)
	records := service.NewRecordService(store)
	adjustments := service.NewAdjustmentService(store)

	aggregator := NewAggregator(records, adjustments, treatments)
	aggregator.now = func() time.Time { return now }

	return &fixture{
		aggregator:  aggregator,
		treatments:  treatments,
		records:     records,
		adjustments: adjustments,
	}
}

func TestAggregator_MonthNavigation(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	t.Run("starts on the current month", func(t *testing.T) {
		year, month := f.aggregator.VisibleMonth("user-1")
		if year != 2026 || month != time.March {
			t.Errorf("expected 2026 March, got %d %v", year, month)
		}
	})

	t.Run("previous month crosses year boundaries", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			if err := f.aggregator.PreviousMonth(ctx, "user-1"); err != nil {
				t.Fatalf("PreviousMonth failed: %v", err)
			}
		}
		year, month := f.aggregator.VisibleMonth("user-1")
		if year != 2025 || month != time.December {
			t.Errorf("expected 2025 December, got %d %v", year, month)
		}
	})

	t.Run("next month moves forward", func(t *testing.T) {
		if err := f.aggregator.NextMonth(ctx, "user-1"); err != nil {
			t.Fatalf("NextMonth failed: %v", err)
		}
		year, month := f.aggregator.VisibleMonth("user-1")
		if year != 2026 || month != time.January {
			t.Errorf("expected 2026 January, got %d %v", year, month)
		}
	})

	t.Run("go to today resets month and selection", func(t *testing.T) {
		if err := f.aggregator.GoToToday(ctx, "user-1"); err != nil {
			t.Fatalf("GoToToday failed: %v", err)
		}
		year, month := f.aggregator.VisibleMonth("user-1")
		if year != 2026 || month != time.March {
			t.Errorf("expected 2026 March, got %d %v", year, month)
		}
		want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
		if !f.aggregator.SelectedDate("user-1").Equal(want) {
			t.Errorf("expected selection %v, got %v", want, f.aggregator.SelectedDate("user-1"))
		}
	})
}

func TestAggregator_SelectDateToggle(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	before := f.aggregator.DayDetailToggle("user-1")
	if err := f.aggregator.SelectDate(ctx, "user-1", day); err != nil {
		t.Fatalf("SelectDate failed: %v", err)
	}
	if f.aggregator.DayDetailToggle("user-1") == before {
		t.Error("expected toggle to flip on selection")
	}

	// Re-selecting the same date must flip again so the sheet re-presents.
	mid := f.aggregator.DayDetailToggle("user-1")
	if err := f.aggregator.SelectDate(ctx, "user-1", day); err != nil {
		t.Fatalf("SelectDate failed: %v", err)
	}
	if f.aggregator.DayDetailToggle("user-1") == mid {
		t.Error("expected toggle to flip on re-selection of the same date")
	}
}

func TestAggregator_MonthData(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	cut, err := f.treatments.Add(ctx, "user-1", "Cut", 30000, "", "#FFA0B9")
	if err != nil {
		t.Fatalf("Add treatment failed: %v", err)
	}
	perm, err := f.treatments.Add(ctx, "user-1", "Perm", 80000, "", "#A0C4FF")
	if err != nil {
		t.Fatalf("Add treatment failed: %v", err)
	}

	day10 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	day20 := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	if _, err := f.records.AddOrUpdate(ctx, "user-1", day10, *cut); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}
	if _, err := f.records.AddOrUpdate(ctx, "user-1", day10, *perm); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}
	if _, err := f.records.AddOrUpdate(ctx, "user-1", day20, *cut); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}
	if _, err := f.adjustments.Add(ctx, "user-1", day10, -5000, "할인"); err != nil {
		t.Fatalf("Add adjustment failed: %v", err)
	}

	if err := f.aggregator.FetchMonthlyData(ctx, "user-1"); err != nil {
		t.Fatalf("FetchMonthlyData failed: %v", err)
	}

	t.Run("HasRecords", func(t *testing.T) {
		if !f.aggregator.HasRecords("user-1", day10) {
			t.Error("expected records on the 10th")
		}
		if f.aggregator.HasRecords("user-1", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
			t.Error("expected no records on the 11th")
		}
	})

	t.Run("TreatmentColors are distinct", func(t *testing.T) {
		colors := f.aggregator.TreatmentColors("user-1", day10)
		if len(colors) != 2 {
			t.Fatalf("expected 2 colors, got %d", len(colors))
		}
		if colors[0] == colors[1] {
			t.Error("expected distinct colors")
		}
	})

	t.Run("TreatmentColors capped at three", func(t *testing.T) {
		colors := []string{"#111111", "#222222", "#333333", "#444444"}
		for _, c := range colors {
			extra, err := f.treatments.Add(ctx, "user-1", "T"+c, 1000, "", c)
			if err != nil {
				t.Fatalf("Add treatment failed: %v", err)
			}
			if _, err := f.records.AddOrUpdate(ctx, "user-1", day20, *extra); err != nil {
				t.Fatalf("AddOrUpdate failed: %v", err)
			}
		}
		if err := f.aggregator.FetchMonthlyData(ctx, "user-1"); err != nil {
			t.Fatalf("FetchMonthlyData failed: %v", err)
		}

		got := f.aggregator.TreatmentColors("user-1", day20)
		if len(got) != 3 {
			t.Errorf("expected 3 colors at most, got %d", len(got))
		}
	})

	t.Run("DailyTotal includes adjustments", func(t *testing.T) {
		// 30000 + 80000 - 5000
		if total := f.aggregator.DailyTotal("user-1", day10); total != 105000 {
			t.Errorf("expected daily total 105000, got %d", total)
		}
	})

	t.Run("MonthlyRevenue sums records only", func(t *testing.T) {
		// day10: 110000, day20: 30000 + 4 extras at 1000 each
		if total := f.aggregator.MonthlyRevenue("user-1"); total != 144000 {
			t.Errorf("expected monthly revenue 144000, got %d", total)
		}
	})
}

func TestAggregator_StaleFetchDiscarded(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	cut, err := f.treatments.Add(ctx, "user-1", "Cut", 30000, "", "")
	if err != nil {
		t.Fatalf("Add treatment failed: %v", err)
	}
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, err := f.records.AddOrUpdate(ctx, "user-1", day, *cut); err != nil {
		t.Fatalf("AddOrUpdate failed: %v", err)
	}

	if err := f.aggregator.FetchMonthlyData(ctx, "user-1"); err != nil {
		t.Fatalf("FetchMonthlyData failed: %v", err)
	}

	// Simulate a slow fetch issued before a newer one: its token is one
	// behind the latest, so its empty result must be discarded.
	f.aggregator.mu.Lock()
	s := f.aggregator.session("user-1")
	staleToken := s.fetchToken
	s.fetchToken++
	currentToken := s.fetchToken
	f.aggregator.mu.Unlock()

	f.aggregator.applyMonthData("user-1", staleToken, nil, nil)
	if !f.aggregator.HasRecords("user-1", day) {
		t.Error("expected stale fetch result to be discarded")
	}

	// The fetch holding the latest token still lands.
	f.aggregator.applyMonthData("user-1", currentToken, nil, nil)
	if f.aggregator.HasRecords("user-1", day) {
		t.Error("expected current fetch result to be applied")
	}
}
