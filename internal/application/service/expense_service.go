package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
)

// expenseDoc is the stored payload of one monthly expense document.
type expenseDoc struct {
	ID         string `json:"-"`
	YearMonth  string `json:"year_month"`
	CategoryID string `json:"category_id"`
	Amount     int64  `json:"amount"`
	CreatedAt  string `json:"created_at"`
}

func (d *expenseDoc) toEntity() entity.MonthlyExpense {
	return entity.MonthlyExpense{
		ID:         d.ID,
		YearMonth:  d.YearMonth,
		CategoryID: d.CategoryID,
		Amount:     d.Amount,
		CreatedAt:  parseDateKey(d.CreatedAt),
	}
}

func expenseDocFromEntity(e *entity.MonthlyExpense) expenseDoc {
	return expenseDoc{
		YearMonth:  e.YearMonth,
		CategoryID: e.CategoryID,
		Amount:     e.Amount,
		CreatedAt:  formatDateKey(e.CreatedAt),
	}
}

// expenseState is one user's mirror: the expenses of the selected month.
type expenseState struct {
	yearMonth string
	items     []entity.MonthlyExpense
	loading   bool
	lastErr   error
}

// ExpenseService manages monthly expenses keyed by (yearMonth, category).
type ExpenseService struct {
	store adapter.DocumentStore

	mu     sync.RWMutex
	states map[string]*expenseState
}

// NewExpenseService creates a new ExpenseService instance.
func NewExpenseService(store adapter.DocumentStore) *ExpenseService {
	return &ExpenseService{
		store:  store,
		states: make(map[string]*expenseState),
	}
}

func (s *ExpenseService) state(userID string) *expenseState {
	if st, ok := s.states[userID]; ok {
		return st
	}
	st := &expenseState{}
	s.states[userID] = st
	return st
}

// Snapshot returns a copy of the user's mirrored month expenses.
func (s *ExpenseService) Snapshot(userID string) []entity.MonthlyExpense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	out := make([]entity.MonthlyExpense, len(st.items))
	copy(out, st.items)
	return out
}

// IsLoading reports whether a fetch is in flight for the user.
func (s *ExpenseService) IsLoading(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	return ok && st.loading
}

// LastError returns the most recent fetch or mutation error for the user.
func (s *ExpenseService) LastError(userID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	return st.lastErr
}

// FetchByYearMonth loads the expenses of one month and replaces the user's
// mirror.
func (s *ExpenseService) FetchByYearMonth(ctx context.Context, userID, yearMonth string) ([]entity.MonthlyExpense, error) {
	if !entity.IsValidYearMonth(yearMonth) {
		return nil, invalidYearMonthError(yearMonth)
	}

	s.mu.Lock()
	s.state(userID).loading = true
	s.mu.Unlock()

	docs, err := s.store.QueryDocuments(ctx, userID, adapter.CollectionMonthlyExpenses, "year_month", yearMonth)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.loading = false
	if err != nil {
		st.lastErr = err
		return nil, fmt.Errorf("failed to fetch monthly expenses: %w", err)
	}

	items := decodeExpenses(docs)
	st.yearMonth = yearMonth
	st.items = items
	st.lastErr = nil

	out := make([]entity.MonthlyExpense, len(items))
	copy(out, items)
	return out, nil
}

// Upsert writes the expense amount for one (yearMonth, category) pair. An
// existing expense has its amount replaced, never accumulated.
func (s *ExpenseService) Upsert(ctx context.Context, userID, yearMonth, categoryID string, amount int64) (*entity.MonthlyExpense, error) {
	if !entity.IsValidYearMonth(yearMonth) {
		return nil, invalidYearMonthError(yearMonth)
	}
	if categoryID == "" {
		return nil, domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "category has no document id", domainerror.ErrInvalidID)
	}
	if amount < 0 {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeNegativeAmount,
			"expense amount must not be negative",
			domainerror.ErrNegativeAmount,
		)
	}

	docs, err := s.store.QueryDocuments(ctx, userID, adapter.CollectionMonthlyExpenses, "year_month", yearMonth)
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to fetch monthly expenses: %w", err)
	}

	for _, existing := range decodeExpenses(docs) {
		if existing.CategoryID != categoryID {
			continue
		}

		if err := s.store.UpdateDocument(ctx, userID, adapter.CollectionMonthlyExpenses, existing.ID,
			map[string]any{"amount": amount}); err != nil {
			s.recordError(userID, err)
			return nil, fmt.Errorf("failed to update monthly expense: %w", err)
		}
		existing.Amount = amount
		s.patchMirror(userID, existing)
		return &existing, nil
	}

	expense := entity.NewMonthlyExpense(yearMonth, categoryID, amount)
	id, err := s.store.AddDocument(ctx, userID, adapter.CollectionMonthlyExpenses, expenseDocFromEntity(expense))
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to add monthly expense: %w", err)
	}
	expense.ID = id
	s.patchMirror(userID, *expense)
	return expense, nil
}

// Delete removes an expense.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "expense has no document id", domainerror.ErrInvalidID)
	}

	if err := s.store.DeleteDocument(ctx, userID, adapter.CollectionMonthlyExpenses, id); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to delete monthly expense: %w", err)
	}

	s.mu.Lock()
	st := s.state(userID)
	for i := range st.items {
		if st.items[i].ID == id {
			st.items = append(st.items[:i], st.items[i+1:]...)
			break
		}
	}
	st.lastErr = nil
	s.mu.Unlock()
	return nil
}

// CopyFromPreviousMonth copies the previous month's expenses into yearMonth
// for every category not yet present there. Per-item failures are logged and
// skipped; the copy never aborts as a whole.
func (s *ExpenseService) CopyFromPreviousMonth(ctx context.Context, userID, yearMonth string) error {
	if !entity.IsValidYearMonth(yearMonth) {
		return invalidYearMonthError(yearMonth)
	}

	previous, err := previousYearMonth(yearMonth)
	if err != nil {
		return invalidYearMonthError(yearMonth)
	}

	sourceDocs, err := s.store.QueryDocuments(ctx, userID, adapter.CollectionMonthlyExpenses, "year_month", previous)
	if err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to fetch previous month expenses: %w", err)
	}
	destDocs, err := s.store.QueryDocuments(ctx, userID, adapter.CollectionMonthlyExpenses, "year_month", yearMonth)
	if err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to fetch monthly expenses: %w", err)
	}

	present := make(map[string]bool)
	for _, e := range decodeExpenses(destDocs) {
		present[e.CategoryID] = true
	}

	for _, source := range decodeExpenses(sourceDocs) {
		if present[source.CategoryID] {
			continue
		}

		expense := entity.NewMonthlyExpense(yearMonth, source.CategoryID, source.Amount)
		id, err := s.store.AddDocument(ctx, userID, adapter.CollectionMonthlyExpenses, expenseDocFromEntity(expense))
		if err != nil {
			slog.Warn("failed to copy expense from previous month",
				"user_id", userID,
				"year_month", yearMonth,
				"category_id", source.CategoryID,
				"error", err)
			continue
		}
		expense.ID = id
		s.patchMirror(userID, *expense)
	}
	return nil
}

// TotalExpense sums the mirrored month's expense amounts.
func (s *ExpenseService) TotalExpense(userID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return 0
	}
	var total int64
	for _, e := range st.items {
		total += e.Amount
	}
	return total
}

// patchMirror applies one upserted expense to the mirror when the mirror
// currently shows the expense's month.
func (s *ExpenseService) patchMirror(userID string, expense entity.MonthlyExpense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.lastErr = nil
	if st.yearMonth != expense.YearMonth {
		return
	}
	for i := range st.items {
		if st.items[i].ID == expense.ID {
			st.items[i] = expense
			return
		}
	}
	st.items = append(st.items, expense)
}

func (s *ExpenseService) recordError(userID string, err error) {
	s.mu.Lock()
	s.state(userID).lastErr = err
	s.mu.Unlock()
}

func decodeExpenses(docs []adapter.Document) []entity.MonthlyExpense {
	decoded := adapter.DecodeDocuments(docs, func(d *expenseDoc, id string) { d.ID = id })
	items := make([]entity.MonthlyExpense, len(decoded))
	for i := range decoded {
		items[i] = decoded[i].toEntity()
	}
	return items
}

// previousYearMonth returns the "yyyy-MM" key one month before yearMonth.
func previousYearMonth(yearMonth string) (string, error) {
	var year, month int
	if _, err := fmt.Sscanf(yearMonth, "%4d-%2d", &year, &month); err != nil {
		return "", err
	}
	month--
	if month < 1 {
		month = 12
		year--
	}
	return fmt.Sprintf("%04d-%02d", year, month), nil
}

func invalidYearMonthError(yearMonth string) error {
	return domainerror.NewLedgerError(
		domainerror.ErrCodeInvalidYearMonth,
		fmt.Sprintf("year-month %q must be in yyyy-MM format", yearMonth),
		domainerror.ErrInvalidYearMonth,
	)
}
