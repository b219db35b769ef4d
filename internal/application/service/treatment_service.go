package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
)

// treatmentDoc is the stored payload of one treatment document.
type treatmentDoc struct {
	ID        string `json:"-"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color"`
	Order     int    `json:"order"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (d *treatmentDoc) toEntity() entity.Treatment {
	return entity.Treatment{
		ID:        d.ID,
		Name:      d.Name,
		Price:     d.Price,
		Icon:      d.Icon,
		Color:     d.Color,
		Order:     d.Order,
		CreatedAt: parseDateKey(d.CreatedAt),
		UpdatedAt: parseDateKey(d.UpdatedAt),
	}
}

func treatmentDocFromEntity(t *entity.Treatment) treatmentDoc {
	return treatmentDoc{
		Name:      t.Name,
		Price:     t.Price,
		Icon:      t.Icon,
		Color:     t.Color,
		Order:     t.Order,
		CreatedAt: formatDateKey(t.CreatedAt),
		UpdatedAt: formatDateKey(t.UpdatedAt),
	}
}

// TreatmentService manages the treatment collection and its per-user mirror.
// Mutations patch the mirror only after the remote write succeeds, so the
// mirror never runs ahead of the store.
type TreatmentService struct {
	store adapter.DocumentStore

	mu     sync.RWMutex
	states map[string]*mirrorState[entity.Treatment]
}

// NewTreatmentService creates a new TreatmentService instance.
func NewTreatmentService(store adapter.DocumentStore) *TreatmentService {
	return &TreatmentService{
		store:  store,
		states: make(map[string]*mirrorState[entity.Treatment]),
	}
}

func (s *TreatmentService) state(userID string) *mirrorState[entity.Treatment] {
	if st, ok := s.states[userID]; ok {
		return st
	}
	st := &mirrorState[entity.Treatment]{}
	s.states[userID] = st
	return st
}

// Snapshot returns a copy of the user's mirrored treatments.
func (s *TreatmentService) Snapshot(userID string) []entity.Treatment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	out := make([]entity.Treatment, len(st.items))
	copy(out, st.items)
	return out
}

// IsLoading reports whether a fetch is in flight for the user.
func (s *TreatmentService) IsLoading(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	return ok && st.loading
}

// LastError returns the most recent fetch or mutation error for the user.
func (s *TreatmentService) LastError(userID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	return st.lastErr
}

// FetchAll loads every treatment ordered ascending by display order and
// replaces the user's mirror with the result.
func (s *TreatmentService) FetchAll(ctx context.Context, userID string) ([]entity.Treatment, error) {
	s.mu.Lock()
	s.state(userID).loading = true
	s.mu.Unlock()

	docs, err := s.store.GetDocuments(ctx, userID, adapter.CollectionTreatments, adapter.ListOptions{OrderBy: "order"})

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.loading = false
	if err != nil {
		st.lastErr = err
		return nil, fmt.Errorf("failed to fetch treatments: %w", err)
	}

	decoded := adapter.DecodeDocuments(docs, func(d *treatmentDoc, id string) { d.ID = id })
	items := make([]entity.Treatment, len(decoded))
	for i := range decoded {
		items[i] = decoded[i].toEntity()
	}
	st.items = items
	st.lastErr = nil

	out := make([]entity.Treatment, len(items))
	copy(out, items)
	return out, nil
}

// Add creates a new treatment at the end of the display order.
func (s *TreatmentService) Add(ctx context.Context, userID, name string, price int64, icon, color string) (*entity.Treatment, error) {
	if err := validateTreatment(name, price, icon, color); err != nil {
		return nil, err
	}

	s.mu.RLock()
	order := 0
	if st, ok := s.states[userID]; ok {
		for _, t := range st.items {
			if t.Order >= order {
				order = t.Order + 1
			}
		}
	}
	s.mu.RUnlock()

	treatment := entity.NewTreatment(name, price, icon, color, order)
	id, err := s.store.AddDocument(ctx, userID, adapter.CollectionTreatments, treatmentDocFromEntity(treatment))
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to add treatment: %w", err)
	}
	treatment.ID = id

	s.mu.Lock()
	st := s.state(userID)
	st.items = append(st.items, *treatment)
	st.lastErr = nil
	s.mu.Unlock()

	return treatment, nil
}

// Update rewrites the mutable fields of an existing treatment.
func (s *TreatmentService) Update(ctx context.Context, userID string, treatment entity.Treatment) error {
	if treatment.ID == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "treatment has no document id", domainerror.ErrInvalidID)
	}
	if err := validateTreatment(treatment.Name, treatment.Price, treatment.Icon, treatment.Color); err != nil {
		return err
	}

	treatment.UpdatedAt = time.Now().UTC()
	fields := map[string]any{
		"name":       treatment.Name,
		"price":      treatment.Price,
		"icon":       treatment.Icon,
		"color":      treatment.Color,
		"updated_at": formatDateKey(treatment.UpdatedAt),
	}
	if err := s.store.UpdateDocument(ctx, userID, adapter.CollectionTreatments, treatment.ID, fields); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to update treatment: %w", err)
	}

	s.mu.Lock()
	st := s.state(userID)
	for i := range st.items {
		if st.items[i].ID == treatment.ID {
			treatment.Order = st.items[i].Order
			treatment.CreatedAt = st.items[i].CreatedAt
			st.items[i] = treatment
			break
		}
	}
	st.lastErr = nil
	s.mu.Unlock()
	return nil
}

// Delete removes a treatment.
func (s *TreatmentService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "treatment has no document id", domainerror.ErrInvalidID)
	}

	if err := s.store.DeleteDocument(ctx, userID, adapter.CollectionTreatments, id); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to delete treatment: %w", err)
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

// Reorder persists a new display order: each id receives its position in
// orderedIDs as its order value, written as one atomic batch.
func (s *TreatmentService) Reorder(ctx context.Context, userID string, orderedIDs []string) error {
	updates := make([]adapter.FieldUpdate, len(orderedIDs))
	for i, id := range orderedIDs {
		if id == "" {
			return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "treatment has no document id", domainerror.ErrInvalidID)
		}
		updates[i] = adapter.FieldUpdate{ID: id, Fields: map[string]any{"order": i}}
	}

	if err := s.store.BatchUpdate(ctx, userID, adapter.CollectionTreatments, updates); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to reorder treatments: %w", err)
	}

	s.mu.Lock()
	st := s.state(userID)
	position := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		position[id] = i
	}
	for i := range st.items {
		if p, ok := position[st.items[i].ID]; ok {
			st.items[i].Order = p
		}
	}
	sortTreatmentsByOrder(st.items)
	st.lastErr = nil
	s.mu.Unlock()
	return nil
}

func (s *TreatmentService) recordError(userID string, err error) {
	s.mu.Lock()
	s.state(userID).lastErr = err
	s.mu.Unlock()
}

func sortTreatmentsByOrder(items []entity.Treatment) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
}

func validateTreatment(name string, price int64, icon, color string) error {
	if len([]rune(name)) > entity.MaxTreatmentNameLength {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeNameTooLong,
			fmt.Sprintf("treatment name must not exceed %d characters", entity.MaxTreatmentNameLength),
			domainerror.ErrNameTooLong,
		)
	}
	if len([]rune(icon)) > entity.MaxIconLength {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeIconTooLong,
			fmt.Sprintf("icon must not exceed %d characters", entity.MaxIconLength),
			domainerror.ErrIconTooLong,
		)
	}
	if price < 0 {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeNegativeAmount,
			"treatment price must not be negative",
			domainerror.ErrNegativeAmount,
		)
	}
	if color != "" && !isValidHexColor(color) {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidColorFormat,
			"color must be a valid hex format (#XXXXXX)",
			domainerror.ErrInvalidColorFormat,
		)
	}
	return nil
}
