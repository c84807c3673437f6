package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "ibimina-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return newTestStore(t)
	})
}

func TestGetConfigBeforeSave(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.GetConfig(context.Background()); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "ibimina-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "test.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.CreateMember(ctx, &models.Member{ID: "m1", Name: "Eric", Role: models.RoleMember, PayoutRank: 1}); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}
	store.Close()

	// Migrations must be idempotent on an existing database
	store, err = New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()

	got, err := store.GetMember(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMember after reopen failed: %v", err)
	}
	if got.Name != "Eric" {
		t.Errorf("Name = %q, want Eric", got.Name)
	}
}
