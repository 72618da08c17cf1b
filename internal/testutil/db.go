// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/monocle-dev/taskdeck/db"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database living in the test's temp dir.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "taskdeck.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	conn, err := db.Connect(db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })

	if err := db.MigrateDatabase(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return conn
}
