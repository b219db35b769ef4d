// Package model defines database models for persistence layer.
package model

import "time"

// DocumentModel represents the documents table: one row per document in the
// per-user namespace (users/{userId}/{collection}). Payloads are stored as
// raw JSON so every collection shares the same table.
type DocumentModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	UserID     string    `gorm:"type:varchar(64);not null;index:idx_documents_scope"`
	Collection string    `gorm:"type:varchar(40);not null;index:idx_documents_scope"`
	Data       []byte    `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the DocumentModel.
func (DocumentModel) TableName() string {
	return "documents"
}
