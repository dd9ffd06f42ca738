// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/taskflow/internal/database"
)

var dbSeq atomic.Int64

// NewDatabase returns a migrated, isolated in-memory SQLite database service.
func NewDatabase(t *testing.T) database.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:taskflow_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	svc, err := database.Open(sqlite.Open(dsn), logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// one connection keeps every query on the same in-memory database
	sqlDB, err := svc.GetDB().DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(svc.GetDB()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// NewDB is NewDatabase for callers that only need the *gorm.DB.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return NewDatabase(t).GetDB()
}
