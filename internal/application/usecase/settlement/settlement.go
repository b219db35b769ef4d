// Package settlement contains the monthly settlement aggregator: the
// profit/loss view combining revenue, adjustments and expenses.
package settlement

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/application/service"
	"github.com/salon-ledger/backend/internal/domain/entity"
)

// TreatmentRevenue is one row of the revenue-by-treatment breakdown.
type TreatmentRevenue struct {
	TreatmentID string
	Name        string
	Color       string
	Amount      int64
	// Share is the percentage of the grouped revenue, one decimal place.
	Share decimal.Decimal
}

// session is one user's settlement state over the visible month.
type session struct {
	year  int
	month time.Month

	monthRecords     []entity.DailyRecord
	monthAdjustments []entity.DailyAdjustment
	monthExpenses    []entity.MonthlyExpense
	categories       []entity.ExpenseCategory
	treatments       []entity.Treatment

	fetchToken uint64
}

// Aggregator drives the monthly settlement view.
type Aggregator struct {
	treatments  *service.TreatmentService
	categories  *service.CategoryService
	records     *service.RecordService
	adjustments *service.AdjustmentService
	expenses    *service.ExpenseService
	reportQueue adapter.ReportQueueRepository

	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewAggregator creates a new settlement Aggregator instance.
func NewAggregator(
	treatments *service.TreatmentService,
	categories *service.CategoryService,
	records *service.RecordService,
	adjustments *service.AdjustmentService,
	expenses *service.ExpenseService,
	reportQueue adapter.ReportQueueRepository,
) *Aggregator {
	return &Aggregator{
		treatments:  treatments,
		categories:  categories,
		records:     records,
		adjustments: adjustments,
		expenses:    expenses,
		reportQueue: reportQueue,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

func (a *Aggregator) session(userID string) *session {
	if s, ok := a.sessions[userID]; ok {
		return s
	}
	today := a.now().UTC()
	s := &session{
		year:  today.Year(),
		month: today.Month(),
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

// YearMonth returns the visible month as its "yyyy-MM" key.
func (a *Aggregator) YearMonth(userID string) string {
	year, month := a.VisibleMonth(userID)
	return entity.FormatYearMonth(year, month)
}

// NavigateToPreviousMonth shifts the visible month back by one and reloads.
func (a *Aggregator) NavigateToPreviousMonth(ctx context.Context, userID string) error {
	a.shiftMonth(userID, -1)
	return a.FetchMonthlyData(ctx, userID)
}

// NavigateToNextMonth shifts the visible month forward by one and reloads.
func (a *Aggregator) NavigateToNextMonth(ctx context.Context, userID string) error {
	a.shiftMonth(userID, 1)
	return a.FetchMonthlyData(ctx, userID)
}

// NavigateToCurrentMonth resets the visible month to today's month and
// reloads.
func (a *Aggregator) NavigateToCurrentMonth(ctx context.Context, userID string) error {
	today := a.now().UTC()
	a.mu.Lock()
	s := a.session(userID)
	s.year = today.Year()
	s.month = today.Month()
	a.mu.Unlock()
	return a.FetchMonthlyData(ctx, userID)
}

// SetMonth points the visible month at an explicit "yyyy-MM" key and reloads.
func (a *Aggregator) SetMonth(ctx context.Context, userID, yearMonth string) error {
	var year, month int
	if !entity.IsValidYearMonth(yearMonth) {
		return fmt.Errorf("invalid settlement month %q", yearMonth)
	}
	if _, err := fmt.Sscanf(yearMonth, "%4d-%2d", &year, &month); err != nil {
		return fmt.Errorf("invalid settlement month %q", yearMonth)
	}

	a.mu.Lock()
	s := a.session(userID)
	s.year = year
	s.month = time.Month(month)
	a.mu.Unlock()
	return a.FetchMonthlyData(ctx, userID)
}

// FetchMonthlyData loads everything the settlement view joins: month records
// and adjustments concurrently, then expenses, categories and treatments.
// The fetch is token-guarded; results of superseded fetches are discarded.
func (a *Aggregator) FetchMonthlyData(ctx context.Context, userID string) error {
	a.mu.Lock()
	s := a.session(userID)
	s.fetchToken++
	token := s.fetchToken
	year, month := s.year, s.month
	a.mu.Unlock()

	var (
		records     []entity.DailyRecord
		adjustments []entity.DailyAdjustment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = a.records.FetchMonthly(gctx, userID, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		adjustments, err = a.adjustments.FetchMonthly(gctx, userID, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load settlement month: %w", err)
	}

	expenses, err := a.expenses.FetchByYearMonth(ctx, userID, entity.FormatYearMonth(year, month))
	if err != nil {
		return fmt.Errorf("failed to load settlement expenses: %w", err)
	}
	categories, err := a.categories.FetchAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load settlement categories: %w", err)
	}
	treatments, err := a.treatments.FetchAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load settlement treatments: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if s.fetchToken != token {
		return nil
	}
	s.monthRecords = records
	s.monthAdjustments = adjustments
	s.monthExpenses = expenses
	s.categories = categories
	s.treatments = treatments
	return nil
}

// TotalRevenue sums the month's record revenue and signed adjustments.
func (a *Aggregator) TotalRevenue(userID string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.session(userID)
	var total int64
	for _, r := range s.monthRecords {
		total += r.TotalAmount
	}
	for _, adj := range s.monthAdjustments {
		total += adj.Amount
	}
	return total
}

// TotalExpense sums the month's expense amounts.
func (a *Aggregator) TotalExpense(userID string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	var total int64
	for _, e := range a.session(userID).monthExpenses {
		total += e.Amount
	}
	return total
}

// NetProfit is revenue minus expense; negative when the month ran at a loss.
func (a *Aggregator) NetProfit(userID string) int64 {
	return a.TotalRevenue(userID) - a.TotalExpense(userID)
}

// RevenueByTreatment groups the month's records by treatment, joins names
// and colors, and sorts descending by amount with the treatment display
// order as tie-break. Records whose treatment no longer exists are dropped
// from this breakdown only; TotalRevenue still counts them.
func (a *Aggregator) RevenueByTreatment(userID string) []TreatmentRevenue {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.session(userID)
	amountByTreatment := make(map[string]int64)
	for _, r := range s.monthRecords {
		amountByTreatment[r.TreatmentID] += r.TotalAmount
	}

	rows := make([]TreatmentRevenue, 0, len(amountByTreatment))
	orderByTreatment := make(map[string]int, len(s.treatments))
	var grouped int64
	for _, t := range s.treatments {
		orderByTreatment[t.ID] = t.Order
		amount, ok := amountByTreatment[t.ID]
		if !ok {
			continue
		}
		grouped += amount
		rows = append(rows, TreatmentRevenue{
			TreatmentID: t.ID,
			Name:        t.Name,
			Color:       t.Color,
			Amount:      amount,
		})
	}

	if grouped > 0 {
		total := decimal.NewFromInt(grouped)
		for i := range rows {
			rows[i].Share = decimal.NewFromInt(rows[i].Amount).
				Div(total).
				Mul(decimal.NewFromInt(100)).
				Round(1)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		return orderByTreatment[rows[i].TreatmentID] < orderByTreatment[rows[j].TreatmentID]
	})
	return rows
}

// Expenses returns the loaded month expenses.
func (a *Aggregator) Expenses(userID string) []entity.MonthlyExpense {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.session(userID)
	out := make([]entity.MonthlyExpense, len(s.monthExpenses))
	copy(out, s.monthExpenses)
	return out
}

// Categories returns the loaded expense categories.
func (a *Aggregator) Categories(userID string) []entity.ExpenseCategory {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.session(userID)
	out := make([]entity.ExpenseCategory, len(s.categories))
	copy(out, s.categories)
	return out
}

// AddCategory delegates to the category service and refreshes the join data.
func (a *Aggregator) AddCategory(ctx context.Context, userID, name, icon string) (*entity.ExpenseCategory, error) {
	category, err := a.categories.Add(ctx, userID, name, icon)
	if err != nil {
		return nil, err
	}
	if err := a.refreshCategories(ctx, userID); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory delegates to the category service and refreshes the join data.
func (a *Aggregator) UpdateCategory(ctx context.Context, userID string, category entity.ExpenseCategory) error {
	if err := a.categories.Update(ctx, userID, category); err != nil {
		return err
	}
	return a.refreshCategories(ctx, userID)
}

// DeleteCategory delegates to the category service and refreshes the join data.
func (a *Aggregator) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := a.categories.Delete(ctx, userID, id); err != nil {
		return err
	}
	return a.refreshCategories(ctx, userID)
}

// UpdateExpense upserts one expense of the visible month and patches the
// loaded month data.
func (a *Aggregator) UpdateExpense(ctx context.Context, userID, categoryID string, amount int64) (*entity.MonthlyExpense, error) {
	expense, err := a.expenses.Upsert(ctx, userID, a.YearMonth(userID), categoryID, amount)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	s := a.session(userID)
	replaced := false
	for i := range s.monthExpenses {
		if s.monthExpenses[i].ID == expense.ID {
			s.monthExpenses[i] = *expense
			replaced = true
			break
		}
	}
	if !replaced {
		s.monthExpenses = append(s.monthExpenses, *expense)
	}
	a.mu.Unlock()
	return expense, nil
}

// DeleteExpense removes one expense and drops it from the loaded month data.
func (a *Aggregator) DeleteExpense(ctx context.Context, userID, id string) error {
	if err := a.expenses.Delete(ctx, userID, id); err != nil {
		return err
	}

	a.mu.Lock()
	s := a.session(userID)
	for i := range s.monthExpenses {
		if s.monthExpenses[i].ID == id {
			s.monthExpenses = append(s.monthExpenses[:i], s.monthExpenses[i+1:]...)
			break
		}
	}
	a.mu.Unlock()
	return nil
}

// CopyExpensesFromPreviousMonth copies the previous month's expenses into
// the visible month and reloads the month's expense list.
func (a *Aggregator) CopyExpensesFromPreviousMonth(ctx context.Context, userID string) error {
	yearMonth := a.YearMonth(userID)
	if err := a.expenses.CopyFromPreviousMonth(ctx, userID, yearMonth); err != nil {
		return err
	}

	expenses, err := a.expenses.FetchByYearMonth(ctx, userID, yearMonth)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.session(userID).monthExpenses = expenses
	a.mu.Unlock()
	return nil
}

// RequestReport enqueues a settlement report email carrying the loaded
// month's totals.
func (a *Aggregator) RequestReport(ctx context.Context, user *entity.User) (*entity.ReportJob, error) {
	userID := user.ID.String()
	job := entity.NewReportJob(
		user.ID,
		user.Email,
		a.YearMonth(userID),
		a.TotalRevenue(userID),
		a.TotalExpense(userID),
		a.NetProfit(userID),
	)
	if err := a.reportQueue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue settlement report: %w", err)
	}
	return job, nil
}

func (a *Aggregator) refreshCategories(ctx context.Context, userID string) error {
	categories, err := a.categories.FetchAll(ctx, userID)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.session(userID).categories = categories
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) shiftMonth(userID string, step int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.session(userID)
	shifted := time.Date(s.year, s.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, step, 0)
	s.year = shifted.Year()
	s.month = shifted.Month()
}
