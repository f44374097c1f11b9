package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestNew_FileSystemDatabase tests database creation with file system persistence
func TestNew_FileSystemDatabase(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	ctx := context.Background()
	db, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file not created: %s", dbPath)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}

	if err := db.RateModule(ctx, ModuleRating{UserID: "u1", ModuleCode: "CS1010", Institution: "NUS", Rating: 8}); err != nil {
		t.Fatalf("RateModule failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Data survives reopening
	db, err = New(ctx, dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ratings, err := db.GetRatings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if len(ratings) != 1 || ratings[0].Rating != 8 {
		t.Errorf("Expected persisted rating 8, got %+v", ratings)
	}
}

func TestDB_Ping(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	if err := InitSchema(context.Background(), db.writer); err != nil {
		t.Errorf("second InitSchema failed: %v", err)
	}
}
