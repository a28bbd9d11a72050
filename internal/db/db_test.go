package db

import (
	"context"
	"testing"
)

func TestRebind(t *testing.T) {
	query := `SELECT id FROM users WHERE username = ? AND role = ?`

	sqlite := &DB{Dialect: SQLite}
	if got := sqlite.Rebind(query); got != query {
		t.Errorf("sqlite query rewritten: %s", got)
	}

	pg := &DB{Dialect: Postgres}
	want := `SELECT id FROM users WHERE username = $1 AND role = $2`
	if got := pg.Rebind(query); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestOpenUnknownDialect(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestMigrateCreatesTables(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	tables := []string{
		"sites", "item_types", "personnel", "acquisitions", "transfers",
		"assignments", "consumptions", "users", "settings", "revoked_tokens",
		"item_type_images",
	}
	for _, table := range tables {
		var name string
		err := database.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	// Running again is a no-op.
	if err := Migrate(ctx, database); err != nil {
		t.Errorf("second Migrate: %v", err)
	}
}
