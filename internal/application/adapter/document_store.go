// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"encoding/json"
)

// Collection names under the per-user namespace.
const (
	CollectionTreatments        = "treatments"
	CollectionDailyRecords      = "dailyRecords"
	CollectionDailyAdjustments  = "dailyAdjustments"
	CollectionExpenseCategories = "expenseCategories"
	CollectionMonthlyExpenses   = "monthlyExpenses"
)

// Document is one stored document: its store-assigned id and raw payload.
type Document struct {
	ID   string
	Data json.RawMessage
}

// ListOptions controls optional single-field ordering of a collection scan.
type ListOptions struct {
	OrderBy    string
	Descending bool
}

// FieldUpdate is one entry of a batch update: merge Fields into document ID.
type FieldUpdate struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is the gateway to the per-user document namespace
// (users/{userId}/{collection}). Every operation performs exactly one
// attempt; failures are surfaced once as StoreError values and never retried.
type DocumentStore interface {
	// AddDocument serializes data and creates a document with a
	// store-generated id, which is returned.
	AddDocument(ctx context.Context, userID, collection string, data any) (string, error)

	// SetDocument creates or overwrites the document at the given id.
	SetDocument(ctx context.Context, userID, collection, id string, data any) error

	// UpdateDocument merges the named fields into an existing document.
	UpdateDocument(ctx context.Context, userID, collection, id string, fields map[string]any) error

	// DeleteDocument removes a document.
	DeleteDocument(ctx context.Context, userID, collection, id string) error

	// GetDocument returns a single document, ErrDocumentNotFound when absent.
	GetDocument(ctx context.Context, userID, collection, id string) (*Document, error)

	// GetDocuments scans the whole collection with optional single-field sort.
	GetDocuments(ctx context.Context, userID, collection string, opts ListOptions) ([]Document, error)

	// QueryDocuments returns documents whose field equals value.
	QueryDocuments(ctx context.Context, userID, collection, field string, value any) ([]Document, error)

	// QueryDocumentsInRange returns documents whose field lies in [from, to].
	QueryDocumentsInRange(ctx context.Context, userID, collection, field string, from, to any) ([]Document, error)

	// BatchUpdate applies all field merges as one atomic batch; the batch
	// either fully succeeds or fails as a whole.
	BatchUpdate(ctx context.Context, userID, collection string, updates []FieldUpdate) error
}

// DecodeDocuments decodes raw documents into typed values, assigning each
// document's id via setID when provided. Documents that fail to decode are
// silently skipped; collection reads are intentionally best-effort.
func DecodeDocuments[T any](docs []Document, setID func(*T, string)) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc.Data, &v); err != nil {
			continue
		}
		if setID != nil {
			setID(&v, doc.ID)
		}
		out = append(out, v)
	}
	return out
}
