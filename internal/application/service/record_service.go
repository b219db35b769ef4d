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

// recordDoc is the stored payload of one daily record document.
type recordDoc struct {
	ID          string `json:"-"`
	Date        string `json:"date"`
	TreatmentID string `json:"treatment_id"`
	Count       int    `json:"count"`
	TotalAmount int64  `json:"total_amount"`
	CreatedAt   string `json:"created_at"`
}

func (d *recordDoc) toEntity() entity.DailyRecord {
	return entity.DailyRecord{
		ID:          d.ID,
		Date:        parseDateKey(d.Date),
		TreatmentID: d.TreatmentID,
		Count:       d.Count,
		TotalAmount: d.TotalAmount,
		CreatedAt:   parseDateKey(d.CreatedAt),
	}
}

func recordDocFromEntity(r *entity.DailyRecord) recordDoc {
	return recordDoc{
		Date:        formatDateKey(r.Date),
		TreatmentID: r.TreatmentID,
		Count:       r.Count,
		TotalAmount: r.TotalAmount,
		CreatedAt:   formatDateKey(r.CreatedAt),
	}
}

// recordState is one user's mirror: the records of the currently selected day.
type recordState struct {
	date    time.Time
	items   []entity.DailyRecord
	loading bool
	lastErr error
}

// RecordService manages daily treatment records. The mirror holds one day at
// a time; month-wide reads return data without touching it.
type RecordService struct {
	store adapter.DocumentStore

	mu     sync.RWMutex
	states map[string]*recordState
}

// NewRecordService creates a new RecordService instance.
func NewRecordService(store adapter.DocumentStore) *RecordService {
	return &RecordService{
		store:  store,
		states: make(map[string]*recordState),
	}
}

func (s *RecordService) state(userID string) *recordState {
	if st, ok := s.states[userID]; ok {
		return st
	}
	st := &recordState{}
	s.states[userID] = st
	return st
}

// Snapshot returns a copy of the user's mirrored day records.
func (s *RecordService) Snapshot(userID string) []entity.DailyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	out := make([]entity.DailyRecord, len(st.items))
	copy(out, st.items)
	return out
}

// MirrorDate returns the day currently held by the user's mirror.
func (s *RecordService) MirrorDate(userID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return time.Time{}
	}
	return st.date
}

// IsLoading reports whether a fetch is in flight for the user.
func (s *RecordService) IsLoading(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	return ok && st.loading
}

// LastError returns the most recent fetch or mutation error for the user.
func (s *RecordService) LastError(userID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	return st.lastErr
}

// FetchByDate loads the records of one day and replaces the user's mirror.
func (s *RecordService) FetchByDate(ctx context.Context, userID string, date time.Time) ([]entity.DailyRecord, error) {
	day := entity.StartOfDay(date)

	s.mu.Lock()
	s.state(userID).loading = true
	s.mu.Unlock()

	docs, err := s.store.QueryDocuments(ctx, userID, adapter.CollectionDailyRecords, "date", formatDateKey(day))

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.loading = false
	if err != nil {
		st.lastErr = err
		return nil, fmt.Errorf("failed to fetch daily records: %w", err)
	}

	items := decodeRecords(docs)
	st.date = day
	st.items = items
	st.lastErr = nil

	out := make([]entity.DailyRecord, len(items))
	copy(out, items)
	return out, nil
}

// FetchMonthly returns every record of one month. The day mirror is left
// untouched; callers aggregate the returned slice themselves.
func (s *RecordService) FetchMonthly(ctx context.Context, userID string, year int, month time.Month) ([]entity.DailyRecord, error) {
	from, to := entity.MonthRange(year, month)
	docs, err := s.store.QueryDocumentsInRange(ctx, userID, adapter.CollectionDailyRecords, "date",
		formatDateKey(from), formatDateKey(to))
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to fetch monthly records: %w", err)
	}
	return decodeRecords(docs), nil
}

// AddOrUpdate registers one more performance of a treatment on a day. An
// existing (date, treatment) record accumulates count+1 and one unit price;
// otherwise a fresh record with count 1 is created.
func (s *RecordService) AddOrUpdate(ctx context.Context, userID string, date time.Time, treatment entity.Treatment) (*entity.DailyRecord, error) {
	if treatment.ID == "" {
		return nil, domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "treatment has no document id", domainerror.ErrInvalidID)
	}

	day := entity.StartOfDay(date)
	docs, err := s.store.QueryDocuments(ctx, userID, adapter.CollectionDailyRecords, "date", formatDateKey(day))
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to fetch daily records: %w", err)
	}

	for _, existing := range decodeRecords(docs) {
		if existing.TreatmentID != treatment.ID {
			continue
		}

		updated := existing
		updated.Count = existing.Count + 1
		updated.TotalAmount = existing.TotalAmount + treatment.Price
		fields := map[string]any{
			"count":        updated.Count,
			"total_amount": updated.TotalAmount,
		}
		if err := s.store.UpdateDocument(ctx, userID, adapter.CollectionDailyRecords, existing.ID, fields); err != nil {
			s.recordError(userID, err)
			return nil, fmt.Errorf("failed to update daily record: %w", err)
		}
		s.patchMirror(userID, day, updated)
		return &updated, nil
	}

	record := entity.NewDailyRecord(day, treatment.ID, 1, treatment.Price)
	id, err := s.store.AddDocument(ctx, userID, adapter.CollectionDailyRecords, recordDocFromEntity(record))
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to add daily record: %w", err)
	}
	record.ID = id
	s.patchMirror(userID, day, *record)
	return record, nil
}

// UpdateCount sets the count of a record, recomputing the total from the
// record's unit price. A count of zero or less deletes the record.
func (s *RecordService) UpdateCount(ctx context.Context, userID, id string, count int) error {
	if id == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "record has no document id", domainerror.ErrInvalidID)
	}
	if count <= 0 {
		return s.Delete(ctx, userID, id)
	}

	record, err := s.getRecord(ctx, userID, id)
	if err != nil {
		return err
	}

	total := record.UnitPrice() * int64(count)
	fields := map[string]any{
		"count":        count,
		"total_amount": total,
	}
	if err := s.store.UpdateDocument(ctx, userID, adapter.CollectionDailyRecords, id, fields); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to update daily record: %w", err)
	}

	record.Count = count
	record.TotalAmount = total
	s.patchMirror(userID, record.Date, *record)
	return nil
}

// Delete removes a record.
func (s *RecordService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "record has no document id", domainerror.ErrInvalidID)
	}

	if err := s.store.DeleteDocument(ctx, userID, adapter.CollectionDailyRecords, id); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to delete daily record: %w", err)
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

// DailyTotal sums the revenue of the mirrored day.
func (s *RecordService) DailyTotal(userID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return 0
	}
	var total int64
	for _, r := range st.items {
		total += r.TotalAmount
	}
	return total
}

// getRecord fetches one record by id and decodes it.
func (s *RecordService) getRecord(ctx context.Context, userID, id string) (*entity.DailyRecord, error) {
	doc, err := s.store.GetDocument(ctx, userID, adapter.CollectionDailyRecords, id)
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to fetch daily record: %w", err)
	}

	decoded := adapter.DecodeDocuments([]adapter.Document{*doc}, func(d *recordDoc, docID string) { d.ID = docID })
	if len(decoded) == 0 {
		return nil, domainerror.NewLedgerError(domainerror.ErrCodeNotFound, "daily record is malformed", domainerror.ErrNotFound)
	}
	record := decoded[0].toEntity()
	return &record, nil
}

// patchMirror applies one upserted record to the mirror when the mirror
// currently shows the record's day.
func (s *RecordService) patchMirror(userID string, day time.Time, record entity.DailyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.lastErr = nil
	if !st.date.Equal(day) {
		return
	}
	for i := range st.items {
		if st.items[i].ID == record.ID {
			st.items[i] = record
			return
		}
	}
	st.items = append(st.items, record)
}

func (s *RecordService) recordError(userID string, err error) {
	s.mu.Lock()
	s.state(userID).lastErr = err
	s.mu.Unlock()
}

func decodeRecords(docs []adapter.Document) []entity.DailyRecord {
	decoded := adapter.DecodeDocuments(docs, func(d *recordDoc, id string) { d.ID = id })
	items := make([]entity.DailyRecord, len(decoded))
	for i := range decoded {
		items[i] = decoded[i].toEntity()
	}
	return items
}
