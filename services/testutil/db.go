// Package testutil holds fixtures shared by service tests.
package testutil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workshop-backend/pkg/storage"
)

// NewTestDB opens a private in-memory SQLite database named after the test, migrates models
// and closes it on cleanup. A single connection keeps every query on the same memory database.
func NewTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate test database: %v", err)
		}
	}

	return db
}

// NewTestPaths lays out base, reports and logs directories under t.TempDir().
func NewTestPaths(t *testing.T) *storage.Paths {
	t.Helper()

	dir := t.TempDir()
	p := &storage.Paths{
		Base:    dir,
		Reports: filepath.Join(dir, "reports"),
		Logs:    filepath.Join(dir, "logs"),
	}
	if err := p.EnsureBaseDirectories(); err != nil {
		t.Fatalf("create storage directories: %v", err)
	}
	return p
}
