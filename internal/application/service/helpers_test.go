package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/integration/persistence"
	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

// newTestStore opens an isolated in-memory document store for one test.
func newTestStore(t *testing.T) adapter.DocumentStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.DocumentModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return persistence.NewDocumentStore(db)
}
