package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
)

// categoryDoc is the stored payload of one expense category document.
type categoryDoc struct {
	ID        string `json:"-"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	Order     int    `json:"order"`
	CreatedAt string `json:"created_at"`
}

func (d *categoryDoc) toEntity() entity.ExpenseCategory {
	return entity.ExpenseCategory{
		ID:        d.ID,
		Name:      d.Name,
		Icon:      d.Icon,
		Order:     d.Order,
		CreatedAt: parseDateKey(d.CreatedAt),
	}
}

func categoryDocFromEntity(c *entity.ExpenseCategory) categoryDoc {
	return categoryDoc{
		Name:      c.Name,
		Icon:      c.Icon,
		Order:     c.Order,
		CreatedAt: formatDateKey(c.CreatedAt),
	}
}

// CategoryService manages the expense category collection and its per-user
// mirror.
type CategoryService struct {
	store adapter.DocumentStore

	mu     sync.RWMutex
	states map[string]*mirrorState[entity.ExpenseCategory]
}

// NewCategoryService creates a new CategoryService instance.
func NewCategoryService(store adapter.DocumentStore) *CategoryService {
	return &CategoryService{
		store:  store,
		states: make(map[string]*mirrorState[entity.ExpenseCategory]),
	}
}

func (s *CategoryService) state(userID string) *mirrorState[entity.ExpenseCategory] {
	if st, ok := s.states[userID]; ok {
		return st
	}
	st := &mirrorState[entity.ExpenseCategory]{}
	s.states[userID] = st
	return st
}

// Snapshot returns a copy of the user's mirrored categories.
func (s *CategoryService) Snapshot(userID string) []entity.ExpenseCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	out := make([]entity.ExpenseCategory, len(st.items))
	copy(out, st.items)
	return out
}

// IsLoading reports whether a fetch is in flight for the user.
func (s *CategoryService) IsLoading(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	return ok && st.loading
}

// LastError returns the most recent fetch or mutation error for the user.
func (s *CategoryService) LastError(userID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	return st.lastErr
}

// FetchAll loads every category ordered ascending by display order and
// replaces the user's mirror with the result.
func (s *CategoryService) FetchAll(ctx context.Context, userID string) ([]entity.ExpenseCategory, error) {
	s.mu.Lock()
	s.state(userID).loading = true
	s.mu.Unlock()

	docs, err := s.store.GetDocuments(ctx, userID, adapter.CollectionExpenseCategories, adapter.ListOptions{OrderBy: "order"})

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.loading = false
	if err != nil {
		st.lastErr = err
		return nil, fmt.Errorf("failed to fetch expense categories: %w", err)
	}

	decoded := adapter.DecodeDocuments(docs, func(d *categoryDoc, id string) { d.ID = id })
	items := make([]entity.ExpenseCategory, len(decoded))
	for i := range decoded {
		items[i] = decoded[i].toEntity()
	}
	st.items = items
	st.lastErr = nil

	out := make([]entity.ExpenseCategory, len(items))
	copy(out, items)
	return out, nil
}

// Add creates a new category at the end of the display order.
func (s *CategoryService) Add(ctx context.Context, userID, name, icon string) (*entity.ExpenseCategory, error) {
	if err := validateCategory(name, icon); err != nil {
		return nil, err
	}

	s.mu.RLock()
	order := 0
	if st, ok := s.states[userID]; ok {
		for _, c := range st.items {
			if c.Order >= order {
				order = c.Order + 1
			}
		}
	}
	s.mu.RUnlock()

	category := entity.NewExpenseCategory(name, icon, order)
	id, err := s.store.AddDocument(ctx, userID, adapter.CollectionExpenseCategories, categoryDocFromEntity(category))
	if err != nil {
		s.recordError(userID, err)
		return nil, fmt.Errorf("failed to add expense category: %w", err)
	}
	category.ID = id

	s.mu.Lock()
	st := s.state(userID)
	st.items = append(st.items, *category)
	st.lastErr = nil
	s.mu.Unlock()

	return category, nil
}

// Update rewrites the name and icon of an existing category.
func (s *CategoryService) Update(ctx context.Context, userID string, category entity.ExpenseCategory) error {
	if category.ID == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "category has no document id", domainerror.ErrInvalidID)
	}
	if err := validateCategory(category.Name, category.Icon); err != nil {
		return err
	}

	fields := map[string]any{
		"name": category.Name,
		"icon": category.Icon,
	}
	if err := s.store.UpdateDocument(ctx, userID, adapter.CollectionExpenseCategories, category.ID, fields); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to update expense category: %w", err)
	}

	s.mu.Lock()
	st := s.state(userID)
	for i := range st.items {
		if st.items[i].ID == category.ID {
			st.items[i].Name = category.Name
			st.items[i].Icon = category.Icon
			break
		}
	}
	st.lastErr = nil
	s.mu.Unlock()
	return nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "category has no document id", domainerror.ErrInvalidID)
	}

	if err := s.store.DeleteDocument(ctx, userID, adapter.CollectionExpenseCategories, id); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to delete expense category: %w", err)
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
func (s *CategoryService) Reorder(ctx context.Context, userID string, orderedIDs []string) error {
	updates := make([]adapter.FieldUpdate, len(orderedIDs))
	for i, id := range orderedIDs {
		if id == "" {
			return domainerror.NewLedgerError(domainerror.ErrCodeInvalidID, "category has no document id", domainerror.ErrInvalidID)
		}
		updates[i] = adapter.FieldUpdate{ID: id, Fields: map[string]any{"order": i}}
	}

	if err := s.store.BatchUpdate(ctx, userID, adapter.CollectionExpenseCategories, updates); err != nil {
		s.recordError(userID, err)
		return fmt.Errorf("failed to reorder expense categories: %w", err)
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
	sort.SliceStable(st.items, func(i, j int) bool {
		return st.items[i].Order < st.items[j].Order
	})
	st.lastErr = nil
	s.mu.Unlock()
	return nil
}

// SeedDefaults creates the fixed default categories for a new user. Each
// creation failure is logged and skipped so one bad write never blocks the
// remaining seeds.
func (s *CategoryService) SeedDefaults(ctx context.Context, userID string) {
	for i, seed := range entity.DefaultCategories {
		if _, err := s.Add(ctx, userID, seed.Name, seed.Icon); err != nil {
			slog.Warn("failed to seed default category",
				"user_id", userID,
				"name", seed.Name,
				"position", i,
				"error", err)
			continue
		}
	}
}

func (s *CategoryService) recordError(userID string, err error) {
	s.mu.Lock()
	s.state(userID).lastErr = err
	s.mu.Unlock()
}

func validateCategory(name, icon string) error {
	if len([]rune(name)) > entity.MaxCategoryNameLength {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeNameTooLong,
			fmt.Sprintf("category name must not exceed %d characters", entity.MaxCategoryNameLength),
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
	return nil
}
