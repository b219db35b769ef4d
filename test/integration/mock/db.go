// Package mock provides shared in-memory infrastructure for the
// integration suite.
package mock

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

var dbOnce sync.Once
var db *Db

// Db wraps the shared in-memory test database.
type Db struct {
	DbConn *gorm.DB
	models []any
}

// NewDb opens the shared in-memory database and migrates the schema. The
// connection is a singleton; scenarios call Reset between runs.
func NewDb() *Db {
	dbOnce.Do(func() {
		db = open()
	})
	return db
}

func open() *Db {
	dbSQL, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}
	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	models := []any{
		&model.UserModel{},
		&model.RefreshTokenModel{},
		&model.DocumentModel{},
		&model.ReportJobModel{},
	}
	if err := dbConn.AutoMigrate(models...); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &Db{
		DbConn: dbConn,
		models: models,
	}
}

// Reset deletes all rows from every table.
func (d *Db) Reset() error {
	for _, m := range d.models {
		if err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
