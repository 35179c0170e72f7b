package database

import (
	"context"
	"testing"
)

// NewTestDB returns a migrated in-memory SQLite store that is closed when
// the test ends.
func NewTestDB(t testing.TB) *SQLiteDB {
	t.Helper()

	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
