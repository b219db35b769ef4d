package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
)

// adjustmentDoc is the stored payload of one daily adjustment document.
type adjustmentDoc struct {
	ID        string `json:"-"`
	Date      string `json:"date"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (d *adjustmentDoc) toEntity() entity.DailyAdjustment {
	return entity.DailyAdjustment{
		ID:        d.ID,
		Date:      parseDateKey(d.Date),
		Amount:    d.Amount,
		Reason:    d.Reason,
		CreatedAt: parseDateKey(d.CreatedAt),
	}
}

func adjustmentDocFromEntity(a *entity.DailyAdjustment) adjustmentDoc {
	return adjustmentDoc{
		Date:      formatDateKey(a.Date),
		Amount:    a.Amount,
		Reason:    a.Reason,
		CreatedAt: formatDateKey(a.CreatedAt),
	}
}

// adjustmentState is one user's mirror: the adjustments of the selected day.
type adjustmentState struct {
	date    time.Time
	items   []entity.DailyAdjustment
	loading bool
	lastErr error
}

// AdjustmentService manages manual revenue adjustments (discounts and tips).
type AdjustmentService struct {
	store adapter.DocumentStore

	mu     sync.RWMutex
	states map[string]*adjustmentState
}

// NewAdjustmentService creates a new AdjustmentService instance.
func NewAdjustmentService(store adapter.DocumentStore) *AdjustmentService {
	return &AdjustmentService{
		store:  store,
		states: make(map[string]*adjustmentState),
	}
}

func (s *AdjustmentService) state(userID string) *adjustmentState {
	if st, ok := s.states[userID]; ok {
		return st
	}
	st := &adjustmentState{}
	s.states[userID] = st
	return st
}

// Snapshot returns a copy of the user's mirrored day adjustments.
func (s *AdjustmentService) Snapshot(userID string) []entity.DailyAdjustment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	out := make([]entity.DailyAdjustment, len(st.items))
	copy(out, st.items)
	return out
}

// IsLoading reports whether a fetch is in flight for the user.
func (s *AdjustmentService) IsLoading(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	return ok && st.loading
}

// LastError returns the most recent fetch or mutation error for the user.
func (s *AdjustmentService) LastError(userID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	return st.lastErr
}

// FetchByDate loads the adjustments of one day and replaces the user's mirror.
func (s *AdjustmentService) FetchByDate(ctx context.Context, userID string, date time.Time) ([]entity.DailyAdjustment, error) {
	day := entity.StartOfDay(date)

	s.mu.Lock()
	s.state(userID).loading = true
	s.mu.Unlock()

	docs, err := s.store.QueryDocuments(ctx, userID, adapter.CollectionDailyAdjustments, "date", formatDateKey(day))

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.loading = false
	if err != nil {
		st.lastErr = err
		return nil, fmt.Errorf("failed to fetch daily adjustments: %w", err)
	}

	items := decodeAdjustments(docs)
	st.date = day
	st.items = items
	st.lastErr = nil

	out := make([]entity.DailyAdjustment, len(items))
	copy(out, items)
	return out, nil
}

// FetchMonthly returns every adjustment of one month without touching the
// day mirror.
func (s *AdjustmentService) FetchMonthly(ctx context.Context, userID string, year int, month time.Month) ([]entity.DailyAdjustment, error) {
	from, to := entity.MonthRange(year, month)
	docs, err := s.store.QueryDocumentsInRange(ctx, userID, adapter.CollectionDailyAdjustments, "date",
		formatDateKey(from), formatDateKey(to))
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to fetch monthly adjustments: %w", err)
	}
	return decodeAdjustments(docs), nil
}

// Add creates a new adjustment for a day.
func (s *AdjustmentService) Add(ctx context.Context, userID string, date time.Time, amount int64, reason string) (*entity.DailyAdjustment, error) {
	if err := validateAdjustmentReason(reason); err != nil {
		return nil, err
	}

	adjustment := entity.NewDailyAdjustment(date, amount, reason)
	id, err := s.store.AddDocument(ctx, userID, adapter.CollectionDailyAdjustments, adjustmentDocFromEntity(adjustment))
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to add daily adjustment: %w", err)
	}
	adjustment.ID = id

	s.mu.Lock()
	st := s.state(userID)
	if st.date.Equal(adjustment.Date) {
		st.items = append(st.items, *adjustment)
	}
	st.lastErr = nil
	s.mu.Unlock()
	return adjustment, nil
}

// Update rewrites the amount and reason of an existing adjustment.
func (s *AdjustmentService) Update(ctx context.Context, userID, id string, amount int64, reason string) error {
	if id == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "adjustment has no document id", domainerror.ErrInvalidID)
	}
	if err := validateAdjustmentReason(reason); err != nil {
		return err
	}

	fields := map[string]any{
		"amount": amount,
		"reason": reason,
	}
	if err := s.store.UpdateDocument(ctx, userID, adapter.CollectionDailyAdjustments, id, fields); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to update daily adjustment: %w", err)
	}

	s.mu.Lock()
	st := s.state(userID)
	for i := range st.items {
		if st.items[i].ID == id {
			st.items[i].Amount = amount
			st.items[i].Reason = reason
			break
		}
	}
	st.lastErr = nil
	s.mu.Unlock()
	return nil
}

// Delete removes an adjustment.
func (s *AdjustmentService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "adjustment has no document id", domainerror.ErrInvalidID)
	}

	if err := s.store.DeleteDocument(ctx, userID, adapter.CollectionDailyAdjustments, id); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to delete daily adjustment: %w", err)
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

// AdjustmentTotal sums the signed amounts of the mirrored day.
func (s *AdjustmentService) AdjustmentTotal(userID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return 0
	}
	var total int64
	for _, a := range st.items {
		total += a.Amount
	}
	return total
}

func (s *AdjustmentService) recordError(userID string, err error) {
	s.mu.Lock()
	s.state(userID).lastErr = err
	s.mu.Unlock()
}

func decodeAdjustments(docs []adapter.Document) []entity.DailyAdjustment {
	decoded := adapter.DecodeDocuments(docs, func(d *adjustmentDoc, id string) { d.ID = id })
	items := make([]entity.DailyAdjustment, len(decoded))
	for i := range decoded {
		items[i] = decoded[i].toEntity()
	}
	return items
}

func validateAdjustmentReason(reason string) error {
	if len([]rune(reason)) > entity.MaxAdjustmentReasonLength {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeReasonTooLong,
			fmt.Sprintf("adjustment reason must not exceed %d characters", entity.MaxAdjustmentReasonLength),
			domainerror.ErrReasonTooLong,
		)
	}
	return nil
}
