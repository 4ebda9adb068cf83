package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dukerupert/taskminder/internal/database"
	"github.com/dukerupert/taskminder/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(context.Background(), "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func ptr[T any](v T) *T { return &v }
