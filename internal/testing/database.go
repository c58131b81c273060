package testing

import (
	"database/sql"
	"testing"

	"github.com/teranos/treelabel/db"
)

// CreateTestDB creates an in-memory SQLite history database with every
// migration applied. Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t testing.TB) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	// each pooled connection would get its own empty :memory: database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() {
		conn.Close()
	})

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := db.Migrate(conn, nil); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return conn
}
