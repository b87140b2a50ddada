// Package dbtest поднимает базу в памяти (SQLite) для тестов.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New создает отдельную in-memory базу на каждый тест
func New(t testing.TB) *database.Database {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), database.Config())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// SQLite пишет одним соединением
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := database.NewDatabase(gdb)
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
