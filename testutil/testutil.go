// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQLite opens a named in-memory SQLite database shared by every
// connection of the returned pool. The pool is closed via t.Cleanup.
func OpenSQLite(t *testing.T, name string) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// Logger returns a logger that writes through t.Log.
func Logger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	return zaptest.NewLogger(t).Sugar()
}
