// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"context"
	"testing"

	"charity-events/internal/database"

	"github.com/uptrace/bun"
)

// New returns an in-memory database with the full schema. It is closed when
// the test ends.
func New(t testing.TB) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.CreateSchema(ctx, db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}
