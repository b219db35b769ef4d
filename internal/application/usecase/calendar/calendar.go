// Package calendar contains the calendar view aggregator: a per-user state
// machine over the visible month and selected day.
package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/salon-ledger/backend/internal/application/service"
	"github.com/salon-ledger/backend/internal/domain/entity"
)

// maxTreatmentColors caps how many distinct colors a day marker shows.
const maxTreatmentColors = 3

// session is one user's calendar state.
type session struct {
	year  int
	month time.Month

	selectedDate time.Time
	// dayDetailToggle flips on every selection so re-selecting the same date
	// still signals presentation.
	dayDetailToggle bool

	monthRecords     []entity.DailyRecord
	monthAdjustments []entity.DailyAdjustment

	// fetchToken guards against stale month fetches: responses carrying an
	// older token than the latest issued one are discarded.
	fetchToken uint64
}

// Aggregator drives the calendar view. It reads entity service snapshots and
// holds only derived month data; the services keep exclusive ownership of
// their lists.
type Aggregator struct {
	records     *service.RecordService
	adjustments *service.AdjustmentService
	treatments  *service.TreatmentService

	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewAggregator creates a new calendar Aggregator instance.
func NewAggregator(records *service.RecordService, adjustments *service.AdjustmentService, treatments *service.TreatmentService) *Aggregator {
	return &Aggregator{
		records:     records,
		adjustments: adjustments,
		treatments:  treatments,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

// session returns the user's calendar state, created at today on first use.
func (a *Aggregator) session(userID string) *session {
	if s, ok := a.sessions[userID]; ok {
		return s
	}
	today := entity.StartOfDay(a.now())
	s := &session{
		year:         today.Year(),
		month:        today.Month(),
		selectedDate: today,
	}
	a.sessions[userID] = s
	return s
}

// VisibleMonth returns the user's visible year and month.
func (a *Aggregator) VisibleMonth(userID string) (int, time.Month) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.session(userID)
	return s.year, s.month
}

// SelectedDate returns the user's selected day.
func (a *Aggregator) SelectedDate(userID string) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session(userID).selectedDate
}

// DayDetailToggle returns the presentation flag that flips on every
// selection.
func (a *Aggregator) DayDetailToggle(userID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session(userID).dayDetailToggle
}

// PreviousMonth shifts the visible month back by one and reloads it.
func (a *Aggregator) PreviousMonth(ctx context.Context, userID string) error {
	a.shiftMonth(userID, -1)
	return a.FetchMonthlyData(ctx, userID)
}

// NextMonth shifts the visible month forward by one and reloads it.
func (a *Aggregator) NextMonth(ctx context.Context, userID string) error {
	a.shiftMonth(userID, 1)
	return a.FetchMonthlyData(ctx, userID)
}

// GoToToday resets the visible month and selected date to the current day,
// then reloads both the month and the day.
func (a *Aggregator) GoToToday(ctx context.Context, userID string) error {
	today := entity.StartOfDay(a.now())

	a.mu.Lock()
	s := a.session(userID)
	s.year = today.Year()
	s.month = today.Month()
	s.selectedDate = today
	a.mu.Unlock()

	if err := a.FetchMonthlyData(ctx, userID); err != nil {
		return err
	}
	return a.FetchDayData(ctx, userID, today)
}

// SetMonth points the visible month at an explicit "yyyy-MM" key and reloads.
func (a *Aggregator) SetMonth(ctx context.Context, userID, yearMonth string) error {
	var year, month int
	if !entity.IsValidYearMonth(yearMonth) {
		return fmt.Errorf("invalid calendar month %q", yearMonth)
	}
	if _, err := fmt.Sscanf(yearMonth, "%4d-%2d", &year, &month); err != nil {
		return fmt.Errorf("invalid calendar month %q", yearMonth)
	}

	a.mu.Lock()
	s := a.session(userID)
	s.year = year
	s.month = time.Month(month)
	a.mu.Unlock()
	return a.FetchMonthlyData(ctx, userID)
}

// SelectDate sets the selected day, reloads its records and adjustments and
// flips the presentation toggle. Re-selecting the current date still flips
// the toggle, so the detail sheet re-presents.
func (a *Aggregator) SelectDate(ctx context.Context, userID string, date time.Time) error {
	day := entity.StartOfDay(date)

	a.mu.Lock()
	s := a.session(userID)
	s.selectedDate = day
	s.dayDetailToggle = !s.dayDetailToggle
	a.mu.Unlock()

	return a.FetchDayData(ctx, userID, day)
}

// FetchMonthlyData loads the visible month's records and adjustments. The
// fetch carries a token; if a newer fetch was issued while this one was in
// flight, its result is discarded.
func (a *Aggregator) FetchMonthlyData(ctx context.Context, userID string) error {
	a.mu.Lock()
	s := a.session(userID)
	s.fetchToken++
	token := s.fetchToken
	year, month := s.year, s.month
	a.mu.Unlock()

	records, err := a.records.FetchMonthly(ctx, userID, year, month)
	if err != nil {
		return fmt.Errorf("failed to load calendar month: %w", err)
	}
	adjustments, err := a.adjustments.FetchMonthly(ctx, userID, year, month)
	if err != nil {
		return fmt.Errorf("failed to load calendar month: %w", err)
	}

	a.applyMonthData(userID, token, records, adjustments)
	return nil
}

// applyMonthData installs a completed month fetch unless a newer fetch was
// issued in the meantime, in which case the result is discarded.
func (a *Aggregator) applyMonthData(userID string, token uint64, records []entity.DailyRecord, adjustments []entity.DailyAdjustment) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.session(userID)
	if s.fetchToken != token {
		return
	}
	s.monthRecords = records
	s.monthAdjustments = adjustments
}

// FetchDayData loads one day's records and adjustments into the entity
// service mirrors.
func (a *Aggregator) FetchDayData(ctx context.Context, userID string, date time.Time) error {
	if _, err := a.records.FetchByDate(ctx, userID, date); err != nil {
		return fmt.Errorf("failed to load day records: %w", err)
	}
	if _, err := a.adjustments.FetchByDate(ctx, userID, date); err != nil {
		return fmt.Errorf("failed to load day adjustments: %w", err)
	}
	return nil
}

// HasRecords reports whether the visible month holds any record on date.
func (a *Aggregator) HasRecords(userID string, date time.Time) bool {
	day := entity.StartOfDay(date)
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.session(userID).monthRecords {
		if r.Date.Equal(day) {
			return true
		}
	}
	return false
}

// TreatmentColors returns the distinct colors of the treatments recorded on
// date, capped at three. Ordering follows the record scan and is not part of
// the contract.
func (a *Aggregator) TreatmentColors(userID string, date time.Time) []string {
	day := entity.StartOfDay(date)

	colorByTreatment := make(map[string]string)
	for _, t := range a.treatments.Snapshot(userID) {
		colorByTreatment[t.ID] = t.Color
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[string]bool)
	colors := make([]string, 0, maxTreatmentColors)
	for _, r := range a.session(userID).monthRecords {
		if !r.Date.Equal(day) {
			continue
		}
		color, ok := colorByTreatment[r.TreatmentID]
		if !ok || color == "" || seen[color] {
			continue
		}
		seen[color] = true
		colors = append(colors, color)
		if len(colors) == maxTreatmentColors {
			break
		}
	}
	return colors
}

// DailyTotal sums one day's record revenue and signed adjustments from the
// loaded month data.
func (a *Aggregator) DailyTotal(userID string, date time.Time) int64 {
	day := entity.StartOfDay(date)
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.session(userID)
	var total int64
	for _, r := range s.monthRecords {
		if r.Date.Equal(day) {
			total += r.TotalAmount
		}
	}
	for _, adj := range s.monthAdjustments {
		if adj.Date.Equal(day) {
			total += adj.Amount
		}
	}
	return total
}

// MonthlyRevenue sums the loaded month's record revenue.
func (a *Aggregator) MonthlyRevenue(userID string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	var total int64
	for _, r := range a.session(userID).monthRecords {
		total += r.TotalAmount
	}
	return total
}

func (a *Aggregator) shiftMonth(userID string, step int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.session(userID)
	shifted := time.Date(s.year, s.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, step, 0)
	s.year = shifted.Year()
	s.month = shifted.Month()
}
