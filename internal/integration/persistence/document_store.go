// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salon-ledger/backend/internal/application/adapter"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

// documentStore implements the adapter.DocumentStore interface over a single
// GORM-managed documents table. Every operation performs one attempt and
// surfaces failures once; retry policy belongs to no layer of this system.
type documentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a new document store gateway instance.
func NewDocumentStore(db *gorm.DB) adapter.DocumentStore {
	return &documentStore{
		db: db,
	}
}

// AddDocument serializes data and creates a document with a generated id.
func (s *documentStore) AddDocument(ctx context.Context, userID, collection string, data any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", domainerror.NewStoreError(domainerror.ErrCodeAddFailed, "failed to serialize document", err)
	}

	now := time.Now().UTC()
	doc := &model.DocumentModel{
		ID:         uuid.NewString(),
		UserID:     userID,
		Collection: collection,
		Data:       payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if result := s.db.WithContext(ctx).Create(doc); result.Error != nil {
		return "", domainerror.NewStoreError(domainerror.ErrCodeAddFailed, "failed to add document", result.Error)
	}
	return doc.ID, nil
}

// SetDocument creates or overwrites the document at the given id.
func (s *documentStore) SetDocument(ctx context.Context, userID, collection, id string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return domainerror.NewStoreError(domainerror.ErrCodeUpdateFailed, "failed to serialize document", err)
	}

	now := time.Now().UTC()
	doc := &model.DocumentModel{
		ID:         id,
		UserID:     userID,
		Collection: collection,
		Data:       payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(doc)
	if result.Error != nil {
		return domainerror.NewStoreError(domainerror.ErrCodeUpdateFailed, "failed to set document", result.Error)
	}
	return nil
}

// UpdateDocument merges the named fields into an existing document.
func (s *documentStore) UpdateDocument(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return mergeFields(tx, userID, collection, id, fields)
	})
	if err != nil {
		return domainerror.NewStoreError(domainerror.ErrCodeUpdateFailed, "failed to update document", err)
	}
	return nil
}

// DeleteDocument removes a document.
func (s *documentStore) DeleteDocument(ctx context.Context, userID, collection, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND collection = ?", id, userID, collection).
		Delete(&model.DocumentModel{})
	if result.Error != nil {
		return domainerror.NewStoreError(domainerror.ErrCodeDeleteFailed, "failed to delete document", result.Error)
	}
	return nil
}

// GetDocument returns a single document, ErrDocumentNotFound when absent.
func (s *documentStore) GetDocument(ctx context.Context, userID, collection, id string) (*adapter.Document, error) {
	var doc model.DocumentModel
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND collection = ?", id, userID, collection).
		First(&doc)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.NewStoreError(domainerror.ErrCodeDocumentNotFound, "document not found", domainerror.ErrDocumentNotFound)
		}
		return nil, domainerror.NewStoreError(domainerror.ErrCodeFetchFailed, "failed to fetch document", result.Error)
	}

	return &adapter.Document{ID: doc.ID, Data: json.RawMessage(doc.Data)}, nil
}

// GetDocuments scans the whole collection with optional single-field sort.
func (s *documentStore) GetDocuments(ctx context.Context, userID, collection string, opts adapter.ListOptions) ([]adapter.Document, error) {
	rows, err := s.scan(ctx, userID, collection)
	if err != nil {
		return nil, err
	}

	docs := toDocuments(rows)
	if opts.OrderBy != "" {
		sortByField(docs, opts.OrderBy, opts.Descending)
	}
	return docs, nil
}

// QueryDocuments returns documents whose field equals value.
func (s *documentStore) QueryDocuments(ctx context.Context, userID, collection, field string, value any) ([]adapter.Document, error) {
	rows, err := s.scan(ctx, userID, collection)
	if err != nil {
		return nil, err
	}

	want := normalizeJSONValue(value)
	matched := make([]adapter.Document, 0, len(rows))
	for _, doc := range toDocuments(rows) {
		got, ok := fieldValue(doc, field)
		if ok && jsonValueEqual(got, want) {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

// QueryDocumentsInRange returns documents whose field lies in [from, to].
func (s *documentStore) QueryDocumentsInRange(ctx context.Context, userID, collection, field string, from, to any) ([]adapter.Document, error) {
	rows, err := s.scan(ctx, userID, collection)
	if err != nil {
		return nil, err
	}

	lo := normalizeJSONValue(from)
	hi := normalizeJSONValue(to)
	matched := make([]adapter.Document, 0, len(rows))
	for _, doc := range toDocuments(rows) {
		got, ok := fieldValue(doc, field)
		if !ok {
			continue
		}
		if compareJSONValues(got, lo) >= 0 && compareJSONValues(got, hi) <= 0 {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

// BatchUpdate applies all field merges inside one transaction. The batch
// either fully succeeds or fails as a whole; there is no partial-success
// reporting.
func (s *documentStore) BatchUpdate(ctx context.Context, userID, collection string, updates []adapter.FieldUpdate) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			if err := mergeFields(tx, userID, collection, update.ID, update.Fields); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domainerror.NewStoreError(domainerror.ErrCodeUpdateFailed, "failed to apply batch update", err)
	}
	return nil
}

// scan loads all rows of one per-user collection, oldest first.
func (s *documentStore) scan(ctx context.Context, userID, collection string) ([]model.DocumentModel, error) {
	var rows []model.DocumentModel
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND collection = ?", userID, collection).
		Order("created_at ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, domainerror.NewStoreError(domainerror.ErrCodeFetchFailed, "failed to fetch documents", result.Error)
	}
	return rows, nil
}

// mergeFields reads a document, merges fields into its payload and saves it.
// Merging into an absent document is an error.
func mergeFields(tx *gorm.DB, userID, collection, id string, fields map[string]any) error {
	var doc model.DocumentModel
	result := tx.Where("id = ? AND user_id = ? AND collection = ?", id, userID, collection).First(&doc)
	if result.Error != nil {
		return result.Error
	}

	payload := map[string]any{}
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, &payload); err != nil {
			return err
		}
	}
	for name, value := range fields {
		payload[name] = normalizeJSONValue(value)
	}

	merged, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return tx.Model(&model.DocumentModel{}).
		Where("id = ?", doc.ID).
		Updates(map[string]any{"data": merged, "updated_at": time.Now().UTC()}).Error
}

func toDocuments(rows []model.DocumentModel) []adapter.Document {
	docs := make([]adapter.Document, len(rows))
	for i, row := range rows {
		docs[i] = adapter.Document{ID: row.ID, Data: json.RawMessage(row.Data)}
	}
	return docs
}

// fieldValue extracts one top-level field of a document payload.
func fieldValue(doc adapter.Document, field string) (any, bool) {
	var payload map[string]any
	if err := json.Unmarshal(doc.Data, &payload); err != nil {
		return nil, false
	}
	value, ok := payload[field]
	return value, ok
}

// sortByField orders documents by one top-level payload field. Documents
// missing the field keep their relative scan order at the end.
func sortByField(docs []adapter.Document, field string, descending bool) {
	type keyedDoc struct {
		doc   adapter.Document
		value any
		ok    bool
	}
	keyed := make([]keyedDoc, len(docs))
	for i, doc := range docs {
		value, ok := fieldValue(doc, field)
		keyed[i] = keyedDoc{doc: doc, value: value, ok: ok}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		a, b := keyed[i], keyed[j]
		if !a.ok || !b.ok {
			return a.ok && !b.ok
		}
		cmp := compareJSONValues(a.value, b.value)
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})

	for i := range keyed {
		docs[i] = keyed[i].doc
	}
}

// normalizeJSONValue round-trips a value through JSON so comparisons see the
// same types the decoder produces (float64 numbers, RFC3339 strings).
func normalizeJSONValue(value any) any {
	raw, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return value
	}
	return out
}

// jsonValueEqual compares two decoded JSON values.
func jsonValueEqual(a, b any) bool {
	return compareJSONValues(a, b) == 0
}

// compareJSONValues orders two decoded JSON values of the same kind.
// Mixed kinds compare as equal; callers only range-compare homogeneous fields.
func compareJSONValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case bv:
				return -1
			}
			return 1
		}
	}
	return 0
}
