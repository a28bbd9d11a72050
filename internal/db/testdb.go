package db

import (
	"context"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with all migrations
// applied.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(SQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
